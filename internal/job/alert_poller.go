package job

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel/trace"

	"crypto-idx-bot/internal/domain"
)

const defaultAlertCooldown = 5 * time.Minute

// RecommendationSource produces a fresh recommendation on demand.
type RecommendationSource interface {
	Generate(ctx context.Context) (domain.Recommendation, error)
}

// AlertNotifier fans a recommendation out to subscribed chats.
type AlertNotifier interface {
	NotifyRecommendation(ctx context.Context, rec domain.Recommendation) error
	SubscriberCount() int
}

// AlertPoller pushes a recommendation to alert subscribers on a fixed
// cooldown cadence. Ticks with no subscribers are skipped without
// generating a signal.
type AlertPoller struct {
	tracer   trace.Tracer
	signals  RecommendationSource
	notifier AlertNotifier
	cooldown time.Duration
}

func NewAlertPoller(tracer trace.Tracer, signals RecommendationSource, notifier AlertNotifier, cooldown time.Duration) *AlertPoller {
	if cooldown <= 0 {
		cooldown = defaultAlertCooldown
	}
	return &AlertPoller{
		tracer:   tracer,
		signals:  signals,
		notifier: notifier,
		cooldown: cooldown,
	}
}

// Start blocks until ctx is cancelled, dispatching once per cooldown tick.
func (p *AlertPoller) Start(ctx context.Context) {
	if p == nil || p.signals == nil || p.notifier == nil {
		log.Println("Alert poller disabled: no signal source or notifier")
		<-ctx.Done()
		return
	}

	log.Println("Alert poller starting...")
	ticker := time.NewTicker(p.cooldown)
	defer ticker.Stop()

	p.dispatch(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Println("Alert poller stopped")
			return
		case <-ticker.C:
			p.dispatch(ctx)
		}
	}
}

func (p *AlertPoller) dispatch(ctx context.Context) {
	if p.notifier.SubscriberCount() == 0 {
		return
	}

	if p.tracer != nil {
		var span trace.Span
		ctx, span = p.tracer.Start(ctx, "alert-job.dispatch")
		defer span.End()
	}

	rec, err := p.signals.Generate(ctx)
	if err != nil {
		log.Printf("alert signal generation error: %v", err)
		return
	}
	if err := p.notifier.NotifyRecommendation(ctx, rec); err != nil {
		log.Printf("alert dispatch error: %v", err)
	}
}
