// =============================
// File: internal/server/server.go
// =============================

// Package server exposes the action-link, activation, launch, and
// storage-proxy HTTP surface.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/blinkforge/blinkforge/internal/activation"
	"github.com/blinkforge/blinkforge/internal/blockchain"
	"github.com/blinkforge/blinkforge/internal/config"
	"github.com/blinkforge/blinkforge/internal/launch"
	"github.com/blinkforge/blinkforge/internal/logger"
	"github.com/blinkforge/blinkforge/internal/metadata"
	"github.com/blinkforge/blinkforge/internal/resolver"
	"github.com/blinkforge/blinkforge/internal/storage/models"
)

// BuyResolver routes buy requests. Satisfied by resolver.Resolver.
type BuyResolver interface {
	Resolve(ctx context.Context, tokenAddress, buyerAddress string, solAmount float64) (*resolver.RouteResult, error)
}

// Gate guards the trading allow-list. Satisfied by activation.Gate.
type Gate interface {
	IsActive(ctx context.Context, address string) (bool, *models.Token, error)
	Activate(ctx context.Context, address string, proof activation.Proof) (*models.Token, error)
}

// MetadataService resolves display metadata for the describe endpoint.
type MetadataService interface {
	GetTokenMetadata(ctx context.Context, mint solana.PublicKey) (*metadata.TokenMetadata, error)
}

// LaunchAssembler builds token-create transactions.
type LaunchAssembler interface {
	Assemble(ctx context.Context, params launch.Params) (*launch.Result, error)
}

// StorageUploader forwards multipart uploads to the content network.
type StorageUploader interface {
	Upload(ctx context.Context, contentType string, body io.Reader) (int, []byte, error)
}

// Deps bundles everything the HTTP handlers touch.
type Deps struct {
	Resolver  BuyResolver
	Gate      Gate
	Metadata  MetadataService
	Assembler LaunchAssembler
	Uploader  StorageUploader
	Client    blockchain.Client
}

// Server is the HTTP front end.
type Server struct {
	config     *config.Config
	logger     *logger.Logger
	deps       Deps
	httpServer *http.Server
}

func New(cfg *config.Config, log *logger.Logger, deps Deps) *Server {
	s := &Server{
		config: cfg,
		logger: log,
		deps:   deps,
	}
	s.httpServer = &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      s.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Router assembles the chi route tree. Exposed for httptest use.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		MaxAge:         300,
	}))

	r.Route("/actions/{token}", func(r chi.Router) {
		r.Get("/", s.handleDescribeAction)
		r.Post("/", s.handleExecuteAction)
		r.Options("/", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	})

	r.Get("/tokens/check", s.handleTokenCheck)
	r.Post("/tokens/activate", s.handleTokenActivate)
	r.Post("/pump/ipfs", s.handleIPFSProxy)
	r.Post("/launch", s.handleLaunch)

	return r
}

// Start serves until ctx is cancelled, then drains with a grace period.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", zap.String("addr", s.config.ListenAddr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.logger.Info("Shutting down HTTP server")
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}
	return nil
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqLogger := s.logger.WithRequest(r.Method, r.URL.Path)
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		reqLogger.Info("Request handled",
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)))
	})
}

// errorResponse carries a human-readable error plus a stable kind.
type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, kind resolver.Kind, message string) {
	s.writeJSON(w, status, errorResponse{Error: message, Kind: string(kind)})
}

// writeResolverError maps the resolver taxonomy onto HTTP statuses.
func (s *Server) writeResolverError(w http.ResponseWriter, err error) {
	kind := resolver.KindOf(err)
	status := http.StatusInternalServerError
	switch kind {
	case resolver.KindInvalidInput:
		status = http.StatusBadRequest
	case resolver.KindNotTradable:
		status = http.StatusNotFound
	}
	s.writeError(w, status, kind, err.Error())
}
