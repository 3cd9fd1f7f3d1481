// ====================================
// File: cmd/server/main.go
// ====================================
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/blinkforge/blinkforge/internal/activation"
	"github.com/blinkforge/blinkforge/internal/blockchain/solbc"
	"github.com/blinkforge/blinkforge/internal/config"
	"github.com/blinkforge/blinkforge/internal/jupiter"
	"github.com/blinkforge/blinkforge/internal/launch"
	"github.com/blinkforge/blinkforge/internal/logger"
	"github.com/blinkforge/blinkforge/internal/metadata"
	"github.com/blinkforge/blinkforge/internal/pumpapi"
	"github.com/blinkforge/blinkforge/internal/resolver"
	"github.com/blinkforge/blinkforge/internal/server"
	"github.com/blinkforge/blinkforge/internal/storage/postgres"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	configPath := "configs/config.json"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fallback, _ := zap.NewDevelopment()
		fallback.Fatal("Failed to load config", zap.Error(err))
	}

	log, err := logger.New(&logger.Config{
		LogFile:     cfg.LogFile,
		MaxSize:     100,
		MaxAge:      7,
		MaxBackups:  3,
		Compress:    true,
		Development: cfg.DebugLogging,
	})
	if err != nil {
		fallback, _ := zap.NewDevelopment()
		fallback.Fatal("Failed to initialize logger", zap.Error(err))
	}
	defer log.Sync()

	log.Info("Starting blinkforge",
		zap.String("listen_addr", cfg.ListenAddr),
		zap.String("rpc_url", cfg.RPCURL))

	commissionWallet, err := solana.PublicKeyFromBase58(cfg.CommissionWallet)
	if err != nil {
		log.Fatal("Invalid commission wallet", zap.Error(err))
	}

	store, err := postgres.NewStorage(cfg.PostgresURL, log.WithComponent("storage"))
	if err != nil {
		log.Fatal("Failed to connect to storage", zap.Error(err))
	}
	if err := store.RunMigrations(); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}

	chainClient := solbc.NewClient(cfg.RPCURL, log.WithComponent("solana"))

	deps := server.Deps{
		Resolver: resolver.New(
			chainClient,
			jupiter.NewClient(cfg.JupiterURL, log.Logger),
			commissionWallet,
			log.Logger,
		),
		Gate:     activation.NewGate(store, log.Logger),
		Metadata: metadata.NewService(cfg.TokenInfoURL, log.Logger),
		Assembler: launch.NewAssembler(
			chainClient,
			pumpapi.NewIPFSClient(cfg.PumpAPIURL, log.Logger),
			pumpapi.NewPortalClient(cfg.PortalURL, log.Logger),
			launch.Config{
				CurvePollTries: uint(cfg.CurvePollTries),
				CurvePollDelay: time.Duration(cfg.CurvePollDelayMs) * time.Millisecond,
			},
			log.Logger,
		),
		Uploader: pumpapi.NewIPFSClient(cfg.PumpAPIURL, log.Logger),
		Client:   chainClient,
	}

	srv := server.New(cfg, log, deps)
	if err := srv.Start(ctx); err != nil {
		log.Fatal("Server failed", zap.Error(err))
	}

	log.Info("Shutdown complete")
}
