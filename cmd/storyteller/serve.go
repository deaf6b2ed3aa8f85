package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cory-johannsen/storyteller/internal/frontend/handlers"
	"github.com/cory-johannsen/storyteller/internal/frontend/telnet"
	"github.com/cory-johannsen/storyteller/internal/game/session"
	"github.com/cory-johannsen/storyteller/internal/observability"
	"github.com/cory-johannsen/storyteller/internal/server"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the Telnet game server",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	start := time.Now()
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	backgrounds, err := loadBackgrounds(cfg.Content)
	if err != nil {
		return fmt.Errorf("loading backgrounds: %w", err)
	}
	logger.Info("backgrounds loaded", zap.Int("count", backgrounds.Len()))

	store, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("opening %s store: %w", cfg.Storage.Driver, err)
	}
	logger.Info("save store ready",
		zap.String("driver", cfg.Storage.Driver),
		zap.String("slot", cfg.Storage.SaveSlot),
	)

	sessions := session.NewManager()
	handler := handlers.NewGameHandler(store, backgrounds, sessions, cfg.Storage.SaveSlot, logger)
	acceptor := telnet.NewAcceptor(cfg.Telnet, handler, logger)

	lc := server.NewLifecycle(logger)
	lc.AddCloser("store", store.Close)
	lc.Add("telnet", &server.FuncService{
		StartFn: acceptor.ListenAndServe,
		StopFn:  acceptor.Stop,
	})

	logger.Info("storyteller starting",
		zap.String("telnet_addr", cfg.Telnet.Addr()),
		zap.Duration("init", time.Since(start)),
	)
	return lc.Run(ctx)
}
