// =============================
// File: internal/server/tokens.go
// =============================
package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/blinkforge/blinkforge/internal/activation"
	"github.com/blinkforge/blinkforge/internal/resolver"
	"github.com/blinkforge/blinkforge/internal/storage/models"
)

type tokenCheckResponse struct {
	IsActive bool          `json:"isActive"`
	Token    *models.Token `json:"token,omitempty"`
}

type tokenActivateRequest struct {
	Address string           `json:"address"`
	Proof   activation.Proof `json:"proof"`
}

type tokenActivateResponse struct {
	Message string        `json:"message"`
	Token   *models.Token `json:"token"`
}

func (s *Server) handleTokenCheck(w http.ResponseWriter, r *http.Request) {
	address := r.URL.Query().Get("address")
	active, token, err := s.deps.Gate.IsActive(r.Context(), address)
	if err != nil {
		if errors.Is(err, activation.ErrInvalidAddress) {
			s.writeError(w, http.StatusBadRequest, resolver.KindInvalidInput, "invalid token address")
			return
		}
		s.logger.LogError("Activation check failed", err, zap.String("address", address))
		s.writeError(w, http.StatusInternalServerError, resolver.KindUpstream, "failed to check token")
		return
	}

	s.writeJSON(w, http.StatusOK, tokenCheckResponse{IsActive: active, Token: token})
}

func (s *Server) handleTokenActivate(w http.ResponseWriter, r *http.Request) {
	var body tokenActivateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, resolver.KindInvalidInput, "invalid request body")
		return
	}

	token, err := s.deps.Gate.Activate(r.Context(), body.Address, body.Proof)
	if err != nil {
		switch {
		case errors.Is(err, activation.ErrInvalidAddress):
			s.writeError(w, http.StatusBadRequest, resolver.KindInvalidInput, "invalid token address")
		case errors.Is(err, activation.ErrProofRejected):
			s.writeError(w, http.StatusUnauthorized, resolver.KindInvalidInput, "activation proof rejected")
		default:
			s.logger.LogError("Activation failed", err, zap.String("address", body.Address))
			s.writeError(w, http.StatusInternalServerError, resolver.KindUpstream, "failed to activate token")
		}
		return
	}

	s.writeJSON(w, http.StatusOK, tokenActivateResponse{
		Message: "token activated",
		Token:   token,
	})
}
