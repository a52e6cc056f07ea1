package service

import (
	"context"
	"fmt"
	"io"
	"math"
	"time"

	"crypto-idx-bot/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

type TradeLog interface {
	Append(ctx context.Context, trade domain.TradeRecord) (domain.TradeRecord, error)
	Recent(ctx context.Context, n int) []domain.TradeRecord
	All(ctx context.Context) []domain.TradeRecord
	Clear(ctx context.Context) error
	ExportCSV(ctx context.Context, w io.Writer) error
	ImportCSV(ctx context.Context, r io.Reader) error
}

type OutcomeTracker interface {
	RecordOutcome(trade domain.TradeRecord)
	ShouldStop() domain.StopStatus
}

// TradeService records completed trades, feeds outcomes into the risk
// counters, and aggregates history into statistics.
type TradeService struct {
	tracer trace.Tracer
	trades TradeLog
	risk   OutcomeTracker
	loc    *time.Location
	now    func() time.Time
}

func NewTradeService(tracer trace.Tracer, trades TradeLog, risk OutcomeTracker, loc *time.Location) *TradeService {
	if loc == nil {
		loc = time.UTC
	}
	return &TradeService{tracer: tracer, trades: trades, risk: risk, loc: loc, now: time.Now}
}

// Record appends the trade, updates the risk counters, and reports the
// resulting stop status. A failed append still counts the outcome; the error
// informs the caller that persistence lagged behind.
func (s *TradeService) Record(ctx context.Context, trade domain.TradeRecord) (domain.TradeRecord, domain.StopStatus, error) {
	_, span := s.tracer.Start(ctx, "trade-service.record")
	defer span.End()

	if s.trades == nil || s.risk == nil {
		return domain.TradeRecord{}, domain.StopStatus{}, fmt.Errorf("trade service is not fully initialized")
	}

	if trade.Timestamp.IsZero() {
		trade.Timestamp = s.now().In(s.loc)
	}

	recorded, saveErr := s.trades.Append(ctx, trade)
	s.risk.RecordOutcome(recorded)
	status := s.risk.ShouldStop()
	return recorded, status, saveErr
}

func (s *TradeService) Recent(ctx context.Context, n int) []domain.TradeRecord {
	_, span := s.tracer.Start(ctx, "trade-service.recent")
	defer span.End()

	if s.trades == nil {
		return nil
	}
	return s.trades.Recent(ctx, n)
}

// Statistics aggregates the whole log. An empty log yields an all-zero
// summary rather than an error.
func (s *TradeService) Statistics(ctx context.Context) domain.Statistics {
	_, span := s.tracer.Start(ctx, "trade-service.statistics")
	defer span.End()

	if s.trades == nil {
		return domain.Statistics{}
	}
	return computeStatistics(s.trades.All(ctx))
}

// DailySummary aggregates the given day ("2006-01-02"); an empty date means
// today. Days without trades return nil.
func (s *TradeService) DailySummary(ctx context.Context, date string) *domain.DailySummary {
	_, span := s.tracer.Start(ctx, "trade-service.daily-summary")
	defer span.End()

	if s.trades == nil {
		return nil
	}
	if date == "" {
		date = s.now().In(s.loc).Format("2006-01-02")
	}

	var dayTrades []domain.TradeRecord
	for _, t := range s.trades.All(ctx) {
		if t.Timestamp.In(s.loc).Format("2006-01-02") == date {
			dayTrades = append(dayTrades, t)
		}
	}
	if len(dayTrades) == 0 {
		return nil
	}

	var profit float64
	wins := 0
	for _, t := range dayTrades {
		profit += t.ProfitLoss
		if t.Won() {
			wins++
		}
	}
	return &domain.DailySummary{
		Date:    date,
		Trades:  len(dayTrades),
		Profit:  profit,
		WinRate: round2(float64(wins) / float64(len(dayTrades)) * 100),
	}
}

func (s *TradeService) ExportCSV(ctx context.Context, w io.Writer) error {
	_, span := s.tracer.Start(ctx, "trade-service.export-csv")
	defer span.End()

	if s.trades == nil {
		return fmt.Errorf("trade service is not fully initialized")
	}
	return s.trades.ExportCSV(ctx, w)
}

func (s *TradeService) ImportCSV(ctx context.Context, r io.Reader) error {
	_, span := s.tracer.Start(ctx, "trade-service.import-csv")
	defer span.End()

	if s.trades == nil {
		return fmt.Errorf("trade service is not fully initialized")
	}
	return s.trades.ImportCSV(ctx, r)
}

func (s *TradeService) ClearHistory(ctx context.Context) error {
	_, span := s.tracer.Start(ctx, "trade-service.clear-history")
	defer span.End()

	if s.trades == nil {
		return fmt.Errorf("trade service is not fully initialized")
	}
	return s.trades.Clear(ctx)
}

func computeStatistics(trades []domain.TradeRecord) domain.Statistics {
	stats := domain.Statistics{}
	if len(trades) == 0 {
		return stats
	}

	var total float64
	largestWin := trades[0].ProfitLoss
	largestLoss := trades[0].ProfitLoss
	for _, t := range trades {
		total += t.ProfitLoss
		if t.ProfitLoss > largestWin {
			largestWin = t.ProfitLoss
		}
		if t.ProfitLoss < largestLoss {
			largestLoss = t.ProfitLoss
		}
		if t.Won() {
			stats.WinningTrades++
		} else {
			stats.LosingTrades++
		}
	}

	stats.TotalTrades = len(trades)
	stats.WinRate = round2(float64(stats.WinningTrades) / float64(len(trades)) * 100)
	stats.TotalProfit = round2(total)
	stats.AverageProfit = round2(total / float64(len(trades)))
	stats.LargestWin = largestWin
	stats.LargestLoss = largestLoss
	return stats
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
