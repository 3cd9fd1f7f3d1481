// =============================
// File: internal/jupiter/client.go
// =============================

// Package jupiter talks to the Jupiter v6 aggregator REST API. It only ever
// requests quotes and prebuilt swap transactions; it never signs or submits.
package jupiter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/blinkforge/blinkforge/internal/types"
)

// Client orchestrates quote retrieval and swap-transaction building.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// Quote captures the subset of the quote response the resolver relies on.
type Quote struct {
	InputMint            string          `json:"inputMint"`
	OutputMint           string          `json:"outputMint"`
	InAmount             string          `json:"inAmount"`
	OutAmount            string          `json:"outAmount"`
	OtherAmountThreshold string          `json:"otherAmountThreshold"`
	SlippageBps          int             `json:"slippageBps"`
	PriceImpactPct       string          `json:"priceImpactPct"`
	RoutePlan            json.RawMessage `json:"routePlan"`
}

// NewClient creates a Jupiter client for the given API base URL.
func NewClient(baseURL string, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 8 * time.Second,
		},
		logger: logger.Named("jupiter"),
	}
}

// GetQuote asks for the best route swapping amount base units of inputMint
// into outputMint with the given slippage tolerance.
func (c *Client) GetQuote(ctx context.Context, inputMint, outputMint solana.PublicKey, amount uint64, slippage types.BasisPoints) (*Quote, error) {
	params := url.Values{}
	params.Set("inputMint", inputMint.String())
	params.Set("outputMint", outputMint.String())
	params.Set("amount", fmt.Sprintf("%d", amount))
	params.Set("slippageBps", fmt.Sprintf("%d", slippage))

	reqURL := c.baseURL + "/quote?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create quote request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute quote request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("jupiter quote returned status %d", resp.StatusCode)
	}

	var quote Quote
	if err := json.NewDecoder(resp.Body).Decode(&quote); err != nil {
		return nil, fmt.Errorf("failed to decode quote response: %w", err)
	}

	if quote.OutAmount == "" || quote.OutAmount == "0" {
		return nil, fmt.Errorf("jupiter returned no route for %s", outputMint.String())
	}

	c.logger.Debug("Jupiter quote received",
		zap.String("input_mint", quote.InputMint),
		zap.String("output_mint", quote.OutputMint),
		zap.String("out_amount", quote.OutAmount))

	return &quote, nil
}

// BuildSwapTransaction asks Jupiter for a ready-to-sign transaction for the
// quoted route, addressed to user. The returned string is base64-encoded
// serialized transaction bytes, unsigned.
func (c *Client) BuildSwapTransaction(ctx context.Context, quote *Quote, user solana.PublicKey) (string, error) {
	payload := map[string]any{
		"quoteResponse":    quote,
		"userPublicKey":    user.String(),
		"wrapAndUnwrapSol": true,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal swap request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/swap", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create swap request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute swap request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("jupiter swap returned status %d", resp.StatusCode)
	}

	var swapResponse struct {
		SwapTransaction string `json:"swapTransaction"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&swapResponse); err != nil {
		return "", fmt.Errorf("failed to decode swap response: %w", err)
	}

	if swapResponse.SwapTransaction == "" {
		return "", fmt.Errorf("jupiter swap response missing transaction")
	}

	return swapResponse.SwapTransaction, nil
}
