package observability

import (
	"log/slog"

	"github.com/couchcryptid/district-areas-etl/internal/config"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

// NewLogger builds the job logger from the configured level and format
// ("json" or "text").
func NewLogger(cfg *config.Config) *slog.Logger {
	return sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
}
