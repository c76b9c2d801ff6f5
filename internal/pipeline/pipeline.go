package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/district-areas-etl/internal/domain"
	"github.com/couchcryptid/district-areas-etl/internal/observability"
	"github.com/jonboulle/clockwork"
)

// DocumentStore reads the feature collection and persists the merged result.
type DocumentStore interface {
	ReadDocument(ctx context.Context) (*domain.Document, error)
	WriteDocument(ctx context.Context, doc *domain.Document) error
}

// AreaSource loads the area table.
type AreaSource interface {
	LoadAreas(ctx context.Context) (domain.AreaTable, domain.LoadStats, error)
}

// Publisher receives the districts updated by a run.
type Publisher interface {
	PublishDistricts(ctx context.Context, districts []domain.District) error
}

// Result describes a completed run.
type Result struct {
	domain.MergeResult
	Stats    domain.LoadStats
	Duration time.Duration
}

// Pipeline runs the read-merge-write job once per Run call.
type Pipeline struct {
	store     DocumentStore
	source    AreaSource
	publisher Publisher
	logger    *slog.Logger
	metrics   *observability.Metrics
	clock     clockwork.Clock
}

// New creates a Pipeline. publisher may be nil to skip publishing.
func New(store DocumentStore, source AreaSource, publisher Publisher, logger *slog.Logger, metrics *observability.Metrics, clock clockwork.Clock) *Pipeline {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Pipeline{
		store:     store,
		source:    source,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
		clock:     clock,
	}
}

// Run merges the area table into the feature collection and writes it out.
// Nothing is written unless the merge succeeds.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	start := p.clock.Now()

	doc, err := p.store.ReadDocument(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("read document: %w", err)
	}

	table, stats, err := p.source.LoadAreas(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("load areas: %w", err)
	}
	p.recordLoad(stats)

	merged, err := domain.MergeAreas(doc, table)
	if err != nil {
		return Result{}, fmt.Errorf("merge areas: %w", err)
	}
	p.metrics.FeaturesSeen.Add(float64(merged.Total))
	p.metrics.FeaturesUpdated.Add(float64(merged.Updated))
	p.logger.Info("updated areas", "count", merged.Updated, "features", merged.Total, "districts", len(table))

	if err := p.store.WriteDocument(ctx, doc); err != nil {
		return Result{}, fmt.Errorf("write document: %w", err)
	}

	if p.publisher != nil && len(merged.Districts) > 0 {
		if err := p.publisher.PublishDistricts(ctx, merged.Districts); err != nil {
			return Result{}, err
		}
		p.metrics.DistrictsPublished.Add(float64(len(merged.Districts)))
	}

	end := p.clock.Now()
	duration := end.Sub(start)
	p.metrics.RunDuration.Set(duration.Seconds())
	p.metrics.LastSuccess.Set(float64(end.Unix()))

	return Result{MergeResult: merged, Stats: stats, Duration: duration}, nil
}

func (p *Pipeline) recordLoad(stats domain.LoadStats) {
	p.metrics.AreaRows.Add(float64(stats.Rows))
	p.metrics.AreaRowsSkipped.WithLabelValues(observability.SkipShortRow).Add(float64(stats.SkippedShort))
	p.metrics.AreaRowsSkipped.WithLabelValues(observability.SkipBadArea).Add(float64(stats.SkippedArea))
	if stats.SkippedShort > 0 || stats.SkippedArea > 0 {
		p.logger.Debug("area rows skipped", "short", stats.SkippedShort, "bad_area", stats.SkippedArea)
	}
}
