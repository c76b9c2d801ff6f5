package config

import (
	"errors"
	"os"
	"strings"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all job settings, populated from environment variables.
type Config struct {
	AreasPath    string
	FeaturesPath string
	OutputPath   string

	LogLevel  string
	LogFormat string

	// MetricsTextfile is where run metrics are written for the node_exporter
	// textfile collector. Empty disables the export.
	MetricsTextfile string

	// Kafka publishing of updated districts.
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	featuresPath := sharedcfg.EnvOrDefault("FEATURES_PATH", "public/data/abstract-areas.json")

	var brokers []string
	if s := strings.TrimSpace(os.Getenv("KAFKA_BROKERS")); s != "" {
		brokers = sharedcfg.ParseBrokers(s)
	}
	kafkaEnabled := len(brokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		AreasPath:       sharedcfg.EnvOrDefault("AREAS_PATH", "public/data/areas.txt"),
		FeaturesPath:    featuresPath,
		OutputPath:      sharedcfg.EnvOrDefault("OUTPUT_PATH", featuresPath),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		MetricsTextfile: os.Getenv("METRICS_TEXTFILE"),
		KafkaEnabled:    kafkaEnabled,
		KafkaBrokers:    brokers,
		KafkaTopic:      sharedcfg.EnvOrDefault("KAFKA_TOPIC", "district-areas"),
	}

	if cfg.AreasPath == "" {
		return nil, errors.New("AREAS_PATH is required")
	}
	if cfg.FeaturesPath == "" {
		return nil, errors.New("FEATURES_PATH is required")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.KafkaEnabled && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when Kafka is enabled")
	}

	return cfg, nil
}
