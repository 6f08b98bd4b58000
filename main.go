package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"matching-core/config"
	"matching-core/pipeline"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the exchange configuration file")
	flag.Parse()

	settings, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := newLogger(settings.Logging)

	assembly, err := pipeline.New(settings, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build exchange pipeline")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info().
		Int("risk_shards", settings.RiskEngineShards).
		Int("symbols", len(settings.Symbols)).
		Msg("exchange pipeline starting")

	assembly.Run(ctx)

	logger.Info().Msg("exchange pipeline stopped")
}

func newLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	if cfg.Format == "json" {
		return zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).Level(level).With().Timestamp().Logger()
}
