// =============================
// File: internal/server/actions.go
// =============================
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gagliardetto/solana-go"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/blinkforge/blinkforge/internal/metadata"
	"github.com/blinkforge/blinkforge/internal/pumpfun"
	"github.com/blinkforge/blinkforge/internal/resolver"
)

var presetAmounts = []string{"0.1", "0.5", "1"}

// ActionGetResponse is the describe payload rendered by blink clients.
type ActionGetResponse struct {
	Icon        string      `json:"icon"`
	Title       string      `json:"title"`
	Label       string      `json:"label"`
	Description string      `json:"description"`
	Links       ActionLinks `json:"links"`
}

type ActionLinks struct {
	Actions []LinkedAction `json:"actions"`
}

type LinkedAction struct {
	Href       string            `json:"href"`
	Label      string            `json:"label"`
	Type       string            `json:"type"`
	Parameters []ActionParameter `json:"parameters,omitempty"`
}

type ActionParameter struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Required bool   `json:"required"`
}

type actionPostRequest struct {
	Account string `json:"account"`
}

type actionPostResponse struct {
	Transaction string `json:"transaction"`
	Message     string `json:"message"`
	Type        string `json:"type"`
}

// handleDescribeAction renders the buy menu for a token. Metadata and
// curve existence are fetched concurrently; the describe path never
// falls back to the aggregator.
func (s *Server) handleDescribeAction(w http.ResponseWriter, r *http.Request) {
	tokenParam := chi.URLParam(r, "token")
	mint, err := solana.PublicKeyFromBase58(tokenParam)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, resolver.KindInvalidInput, "invalid token address")
		return
	}

	var meta *metadata.TokenMetadata
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		meta, err = s.deps.Metadata.GetTokenMetadata(ctx, mint)
		return err
	})
	g.Go(func() error {
		// Existence check only; completed curves stay tradable through
		// the aggregator on the execute path.
		_, err := pumpfun.FetchBondingCurve(ctx, s.deps.Client, mint)
		if errors.Is(err, pumpfun.ErrCurveComplete) {
			return nil
		}
		return err
	})
	if err := g.Wait(); err != nil {
		s.writeError(w, http.StatusNotFound, resolver.KindNotTradable,
			"token not found or not tradable")
		return
	}

	origin := requestOrigin(r)
	actions := make([]LinkedAction, 0, len(presetAmounts)+1)
	for _, amount := range presetAmounts {
		actions = append(actions, LinkedAction{
			Href:  fmt.Sprintf("%s/actions/%s?action=buy&amount=%s", origin, tokenParam, amount),
			Label: fmt.Sprintf("Buy %s for %s SOL", meta.Symbol, amount),
			Type:  "transaction",
		})
	}
	actions = append(actions, LinkedAction{
		Href:  fmt.Sprintf("%s/actions/%s?action=buy&amount={amount}", origin, tokenParam),
		Label: "Buy Custom Amount",
		Type:  "transaction",
		Parameters: []ActionParameter{
			{Name: "amount", Label: "Enter the amount of SOL to buy", Required: true},
		},
	})

	s.writeJSON(w, http.StatusOK, ActionGetResponse{
		Icon:        meta.Image,
		Title:       fmt.Sprintf("%s (%s)", meta.Name, meta.Symbol),
		Label:       fmt.Sprintf("Buy %s", meta.Symbol),
		Description: meta.Description,
		Links:       ActionLinks{Actions: actions},
	})
}

// handleExecuteAction resolves a buy into an unsigned transaction.
func (s *Server) handleExecuteAction(w http.ResponseWriter, r *http.Request) {
	tokenParam := chi.URLParam(r, "token")

	var body actionPostRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, resolver.KindInvalidInput, "invalid request body")
		return
	}

	if action := r.URL.Query().Get("action"); action != "buy" {
		s.writeError(w, http.StatusBadRequest, resolver.KindInvalidInput,
			fmt.Sprintf("unsupported action %q", action))
		return
	}

	amountParam := r.URL.Query().Get("amount")
	if amountParam == "" {
		amountParam = "0.01"
	}
	amount, err := strconv.ParseFloat(amountParam, 64)
	if err != nil || amount <= 0 {
		s.writeError(w, http.StatusBadRequest, resolver.KindInvalidInput, "invalid amount")
		return
	}

	result, err := s.deps.Resolver.Resolve(r.Context(), tokenParam, body.Account, amount)
	if err != nil {
		s.logger.LogError("Buy resolution failed", err,
			zap.String("token", tokenParam))
		s.writeResolverError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, actionPostResponse{
		Transaction: result.TransactionBase64,
		Message: fmt.Sprintf("Transaction prepared: buy token with %s SOL (via %s)",
			amountParam, routeName(result.Route)),
		Type: "transaction",
	})
}

func routeName(route resolver.Route) string {
	if route == resolver.RouteJupiter {
		return "Jupiter"
	}
	return "Pump.fun"
}

func requestOrigin(r *http.Request) string {
	scheme := "https"
	if r.TLS == nil {
		scheme = "http"
	}
	return scheme + "://" + r.Host
}
