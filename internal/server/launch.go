// =============================
// File: internal/server/launch.go
// =============================
package server

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/blinkforge/blinkforge/internal/launch"
	"github.com/blinkforge/blinkforge/internal/resolver"
)

type launchRequest struct {
	Creator      string  `json:"creator"`
	Name         string  `json:"name"`
	Symbol       string  `json:"symbol"`
	Description  string  `json:"description"`
	Twitter      string  `json:"twitter"`
	Telegram     string  `json:"telegram"`
	Website      string  `json:"website"`
	Image        string  `json:"image"` // base64-encoded
	DevBuyTokens float64 `json:"devBuyTokens"`
}

// launchResponse returns the mint secret so the client can countersign:
// the mint is a newly created account and must partial-sign before the
// creator does.
type launchResponse struct {
	Transaction            string `json:"transaction"`
	Mint                   string `json:"mint"`
	MintSecret             string `json:"mintSecret"`
	AssociatedTokenAccount string `json:"associatedTokenAccount"`
	MetadataURI            string `json:"metadataUri"`
}

func (s *Server) handleLaunch(w http.ResponseWriter, r *http.Request) {
	var body launchRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, resolver.KindInvalidInput, "invalid request body")
		return
	}

	creator, err := solana.PublicKeyFromBase58(body.Creator)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, resolver.KindInvalidInput, "invalid creator address")
		return
	}
	if body.Name == "" || body.Symbol == "" {
		s.writeError(w, http.StatusBadRequest, resolver.KindInvalidInput, "name and symbol are required")
		return
	}

	image, err := base64.StdEncoding.DecodeString(body.Image)
	if err != nil || len(image) == 0 {
		s.writeError(w, http.StatusBadRequest, resolver.KindInvalidInput, "invalid image")
		return
	}

	result, err := s.deps.Assembler.Assemble(r.Context(), launch.Params{
		Creator:      creator,
		Name:         body.Name,
		Symbol:       body.Symbol,
		Description:  body.Description,
		Twitter:      body.Twitter,
		Telegram:     body.Telegram,
		Website:      body.Website,
		Image:        image,
		DevBuyTokens: body.DevBuyTokens,
	})
	if err != nil {
		s.logger.LogError("Launch assembly failed", err,
			zap.String("symbol", body.Symbol))
		kind := resolver.KindUpstream
		if errors.Is(err, launch.ErrCurveAddressTimeout) {
			kind = resolver.KindCurveTimeout
		}
		s.writeError(w, http.StatusInternalServerError, kind, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, launchResponse{
		Transaction:            result.TransactionBase64,
		Mint:                   result.Mint.PublicKey().String(),
		MintSecret:             result.Mint.String(),
		AssociatedTokenAccount: result.AssociatedTokenAccount.String(),
		MetadataURI:            result.MetadataURI,
	})
}

func (s *Server) handleIPFSProxy(w http.ResponseWriter, r *http.Request) {
	status, responseBody, err := s.deps.Uploader.Upload(r.Context(), r.Header.Get("Content-Type"), r.Body)
	if err != nil {
		s.logger.LogError("IPFS proxy failed", err)
		s.writeError(w, http.StatusInternalServerError, resolver.KindUpstream, "upload failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(responseBody); err != nil {
		s.logger.Error("Failed to write proxy response", zap.Error(err))
	}
}
