package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/EmpoweredVote/barangay-admin/internal/config"
	"github.com/EmpoweredVote/barangay-admin/internal/logger"
	"github.com/EmpoweredVote/barangay-admin/internal/server"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Setup("info", true)
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger.Setup(cfg.LogLevel, !cfg.IsProduction())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to start server")
	}
	defer srv.Close()

	if err := srv.Run(ctx); err != nil {
		log.Error().Err(err).Msg("Server stopped with error")
		os.Exit(1)
	}
}
