// Command areas merges the district area table into the feature collection.
//
// It runs once and exits; inputs and outputs come from the environment
// (see internal/config).
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/district-areas-etl/internal/adapter/file"
	kafkaadapter "github.com/couchcryptid/district-areas-etl/internal/adapter/kafka"
	"github.com/couchcryptid/district-areas-etl/internal/config"
	"github.com/couchcryptid/district-areas-etl/internal/observability"
	"github.com/couchcryptid/district-areas-etl/internal/pipeline"
	"github.com/jonboulle/clockwork"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	store := file.NewDocumentFile(cfg.FeaturesPath, cfg.OutputPath, logger)
	source := file.NewAreaFile(cfg.AreasPath, logger)

	var publisher pipeline.Publisher
	if cfg.KafkaEnabled {
		writer := kafkaadapter.NewWriter(cfg, clock, logger)
		defer func() {
			if err := writer.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		publisher = writer
		logger.Info("kafka publishing enabled", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
	}

	p := pipeline.New(store, source, publisher, logger, metrics, clock)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result, err := p.Run(ctx)
	if err != nil {
		logger.Error("run failed", "error", err)
		return 1
	}
	logger.Info("run complete",
		"output", cfg.OutputPath,
		"updated", result.Updated,
		"duration", result.Duration,
	)

	if cfg.MetricsTextfile != "" {
		if err := observability.WriteTextfile(cfg.MetricsTextfile); err != nil {
			logger.Error("metrics export failed", "error", err)
			return 1
		}
	}
	return 0
}
