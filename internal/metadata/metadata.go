// internal/metadata/metadata.go

// Package metadata resolves display metadata for a token mint through an
// off-chain indexer, with a small in-process TTL cache.
package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

const metadataTTL = 5 * time.Minute

// TokenMetadata holds the descriptive fields shown in an action link.
type TokenMetadata struct {
	Name        string
	Symbol      string
	Image       string
	Description string
	UpdatedAt   time.Time
}

// Service fetches and caches token metadata.
type Service struct {
	baseURL    string
	cache      sync.Map
	logger     *zap.Logger
	httpClient *http.Client
}

type indexerCoinResponse struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	ImageURI    string `json:"image_uri"`
	Description string `json:"description"`
}

// NewService creates a metadata service backed by the indexer at baseURL.
func NewService(baseURL string, logger *zap.Logger) *Service {
	return &Service{
		baseURL: baseURL,
		logger:  logger.Named("metadata"),
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// GetTokenMetadata returns metadata for mint, from cache when fresh.
func (s *Service) GetTokenMetadata(ctx context.Context, mint solana.PublicKey) (*TokenMetadata, error) {
	if meta, ok := s.getFromCache(mint.String()); ok {
		s.logger.Debug("token metadata retrieved from cache",
			zap.String("mint", mint.String()),
			zap.String("symbol", meta.Symbol))
		return meta, nil
	}

	meta, err := s.fetchFromIndexer(ctx, mint)
	if err != nil {
		if known, ok := knownToken(mint); ok {
			return known, nil
		}
		return nil, err
	}

	meta.UpdatedAt = time.Now()
	s.cache.Store(mint.String(), meta)

	s.logger.Debug("token metadata retrieved",
		zap.String("mint", mint.String()),
		zap.String("symbol", meta.Symbol),
		zap.String("name", meta.Name))

	return meta, nil
}

func (s *Service) getFromCache(mint string) (*TokenMetadata, bool) {
	if value, ok := s.cache.Load(mint); ok {
		meta := value.(*TokenMetadata)
		if time.Since(meta.UpdatedAt) < metadataTTL {
			return meta, true
		}
		s.cache.Delete(mint)
	}
	return nil, false
}

func (s *Service) fetchFromIndexer(ctx context.Context, mint solana.PublicKey) (*TokenMetadata, error) {
	url := fmt.Sprintf("%s/coins/%s", s.baseURL, mint.String())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("indexer returned status code: %d", resp.StatusCode)
	}

	var coin indexerCoinResponse
	if err := json.NewDecoder(resp.Body).Decode(&coin); err != nil {
		return nil, fmt.Errorf("failed to decode indexer response: %w", err)
	}

	if coin.Name == "" && coin.Symbol == "" {
		return nil, fmt.Errorf("indexer has no metadata for %s", mint.String())
	}

	return &TokenMetadata{
		Name:        coin.Name,
		Symbol:      coin.Symbol,
		Image:       coin.ImageURI,
		Description: coin.Description,
	}, nil
}

func knownToken(mint solana.PublicKey) (*TokenMetadata, bool) {
	switch mint.String() {
	case "So11111111111111111111111111111111111111112":
		return &TokenMetadata{Symbol: "SOL", Name: "Wrapped SOL", UpdatedAt: time.Now()}, true
	case "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v":
		return &TokenMetadata{Symbol: "USDC", Name: "USD Coin", UpdatedAt: time.Now()}, true
	}
	return nil, false
}
