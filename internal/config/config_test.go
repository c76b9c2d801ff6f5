package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	defaultFeatures = "public/data/abstract-areas.json"
	testBrokers     = "broker1:9092,broker2:9092"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "public/data/areas.txt", cfg.AreasPath)
	assert.Equal(t, defaultFeatures, cfg.FeaturesPath)
	assert.Equal(t, defaultFeatures, cfg.OutputPath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Empty(t, cfg.MetricsTextfile)
	assert.False(t, cfg.KafkaEnabled)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "district-areas", cfg.KafkaTopic)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("AREAS_PATH", "/data/areas.txt")
	t.Setenv("FEATURES_PATH", "/data/in.json")
	t.Setenv("OUTPUT_PATH", "/data/out.json")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("METRICS_TEXTFILE", "/var/lib/node_exporter/areas.prom")
	t.Setenv("KAFKA_BROKERS", testBrokers)
	t.Setenv("KAFKA_TOPIC", "powiaty")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/data/areas.txt", cfg.AreasPath)
	assert.Equal(t, "/data/in.json", cfg.FeaturesPath)
	assert.Equal(t, "/data/out.json", cfg.OutputPath)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "/var/lib/node_exporter/areas.prom", cfg.MetricsTextfile)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "powiaty", cfg.KafkaTopic)
}

func TestLoad_OutputDefaultsToFeatures(t *testing.T) {
	t.Setenv("FEATURES_PATH", "/data/in.json")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/data/in.json", cfg.OutputPath)
}

func TestLoad_KafkaExplicitlyDisabled(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", testBrokers)
	t.Setenv("KAFKA_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.KafkaEnabled)
}

func TestLoad_KafkaEnabledWithoutBrokers(t *testing.T) {
	t.Setenv("KAFKA_ENABLED", "true")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KAFKA_BROKERS")
}
