package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"crypto-idx-bot/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

// Entry opens four minutes after generation so the user has time to place the
// trade.
const entryLeadTime = 4 * time.Minute

type SeriesProvider interface {
	Series() []float64
}

type SignalEngine interface {
	Generate(prices []float64) domain.Signal
}

type RiskPolicy interface {
	Assess(sig domain.Signal) domain.RiskAssessment
	PositionSize(confidence float64) int
}

type AnomalyDetector interface {
	Score(ctx context.Context, prices []float64) (domain.AnomalyReport, error)
}

type RecommendationCache interface {
	StoreLatest(ctx context.Context, rec domain.Recommendation) error
	Latest(ctx context.Context) (*domain.Recommendation, error)
}

// RecommendationSink receives every generated recommendation. Publish must
// not block.
type RecommendationSink interface {
	Publish(rec domain.Recommendation)
}

// SignalService runs the full pipeline for one signal request: synthetic
// series, indicator scoring, risk labeling, position sizing. Scanner, cache,
// and sinks are optional.
type SignalService struct {
	tracer   trace.Tracer
	provider SeriesProvider
	engine   SignalEngine
	risk     RiskPolicy
	loc      *time.Location
	scanner  AnomalyDetector
	cache    RecommendationCache
	sinks    []RecommendationSink
}

func NewSignalService(
	tracer trace.Tracer,
	provider SeriesProvider,
	engine SignalEngine,
	risk RiskPolicy,
	loc *time.Location,
) *SignalService {
	return NewSignalServiceWithInfra(tracer, provider, engine, risk, loc, nil, nil)
}

func NewSignalServiceWithInfra(
	tracer trace.Tracer,
	provider SeriesProvider,
	engine SignalEngine,
	risk RiskPolicy,
	loc *time.Location,
	scanner AnomalyDetector,
	cache RecommendationCache,
	sinks ...RecommendationSink,
) *SignalService {
	if loc == nil {
		loc = time.UTC
	}
	return &SignalService{
		tracer:   tracer,
		provider: provider,
		engine:   engine,
		risk:     risk,
		loc:      loc,
		scanner:  scanner,
		cache:    cache,
		sinks:    sinks,
	}
}

// Generate produces one sized, risk-annotated recommendation and fans it out
// to the cache and sinks. Scan and cache failures degrade the annotation,
// never the signal.
func (s *SignalService) Generate(ctx context.Context) (domain.Recommendation, error) {
	_, span := s.tracer.Start(ctx, "signal-service.generate")
	defer span.End()

	if s.provider == nil || s.engine == nil || s.risk == nil {
		return domain.Recommendation{}, fmt.Errorf("signal service is not fully initialized")
	}

	prices := s.provider.Series()
	sig := s.engine.Generate(prices)

	entry := sig.GeneratedAt.In(s.loc).Add(entryLeadTime)
	rec := domain.Recommendation{
		Signal:   sig,
		Risk:     s.risk.Assess(sig),
		Amount:   s.risk.PositionSize(sig.Confidence),
		EntryAt:  entry,
		ExpiryAt: entry.Add(time.Duration(sig.Duration) * time.Minute),
	}

	if s.scanner != nil {
		report, err := s.scanner.Score(ctx, prices)
		if err != nil {
			log.Printf("anomaly scan failed: %v", err)
		} else {
			rec.Anomaly = &report
		}
	}

	if s.cache != nil {
		if err := s.cache.StoreLatest(ctx, rec); err != nil {
			log.Printf("cache latest recommendation: %v", err)
		}
	}
	for _, sink := range s.sinks {
		sink.Publish(rec)
	}

	return rec, nil
}

// Latest returns the most recently cached recommendation, or nil when the
// cache is absent or cold.
func (s *SignalService) Latest(ctx context.Context) (*domain.Recommendation, error) {
	_, span := s.tracer.Start(ctx, "signal-service.latest")
	defer span.End()

	if s.cache == nil {
		return nil, nil
	}
	return s.cache.Latest(ctx)
}
