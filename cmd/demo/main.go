package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"crypto-idx-bot/internal/config"
	"crypto-idx-bot/internal/domain"
	"crypto-idx-bot/internal/provider"
	"crypto-idx-bot/internal/repository"
	"crypto-idx-bot/internal/risk"
	"crypto-idx-bot/internal/scan"
	"crypto-idx-bot/internal/service"
	signalengine "crypto-idx-bot/internal/signal"
	"crypto-idx-bot/pkg/tracing"

	"github.com/joho/godotenv"
)

// Walks every stage of the pipeline once, without Telegram or HTTP: signal
// generation, risk assessment, position sizing, trade logging, statistics.
func main() {
	godotenv.Load()
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, tracer, err := tracing.InitTracer(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	fmt.Println("🚀 Crypto IDX Trading Bot - Demo")
	fmt.Println(strings.Repeat("=", 50))
	fmt.Println()

	now := time.Now().In(cfg.Location)
	fmt.Printf("Current %s time: %s\n\n", cfg.Timezone, now.Format("2006-01-02 15:04:05"))

	fmt.Println("🔄 Generating signal...")
	seriesProvider := provider.NewSynthetic(cfg.DataPoints, nil)
	engine := signalengine.NewEngine(nil, nil)
	riskManager := risk.NewManager(risk.Limits{
		MaxDailyLoss:         cfg.MaxDailyLoss,
		MaxConsecutiveLosses: cfg.MaxConsecutiveLosses,
		RiskThreshold:        cfg.RiskThreshold,
		MinTradeAmount:       cfg.MinTradeAmount,
		MaxTradeAmount:       cfg.MaxTradeAmount,
		TradeStep:            cfg.TradeStep,
	})
	scanner := scan.NewDetector(tracer, scan.Options{
		Threshold:  cfg.ScanThreshold,
		NumTrees:   cfg.ScanTrees,
		SampleSize: cfg.ScanSampleSize,
	})
	signalService := service.NewSignalServiceWithInfra(tracer, seriesProvider, engine, riskManager, cfg.Location, scanner, nil)

	rec, err := signalService.Generate(ctx)
	if err != nil {
		log.Fatalf("signal generation failed: %v", err)
	}
	fmt.Printf("✅ Direction:  %s\n", rec.Signal.Direction)
	fmt.Printf("   Confidence: %.1f%%\n", rec.Signal.Confidence)
	fmt.Printf("   Duration:   %d minutes\n", rec.Signal.Duration)
	fmt.Printf("   Volatility: %.3f (%s)\n", rec.Signal.Volatility, domain.VolatilityLabel(rec.Signal.Volatility))
	fmt.Printf("   RSI %.1f   MACD %+.3f   BB %+.2f\n",
		rec.Signal.Indicators.RSI, rec.Signal.Indicators.MACD.Histogram, rec.Signal.Indicators.BollingerPosition)
	fmt.Printf("   Risk:       %s (score %.0f)\n", rec.Risk.Level, rec.Risk.Score)
	fmt.Printf("   Stake:      ₹%d for %d minutes\n", rec.Amount, rec.Signal.Duration)
	fmt.Printf("   Entry at:   %s\n", rec.EntryAt.Format("15:04:05"))
	if rec.Anomaly != nil && rec.Anomaly.Anomalous {
		fmt.Printf("   ⚠ Anomalous series (score %.2f)\n", rec.Anomaly.Score)
	}
	fmt.Println()

	fmt.Println("🔄 Recording sample trades...")
	histPath := filepath.Join(os.TempDir(), "crypto_idx_demo_history.json")
	defer os.Remove(histPath)
	tradeRepo := repository.NewTradeRepository(histPath, cfg.HistoryMax, tracer)
	tradeService := service.NewTradeService(tracer, tradeRepo, riskManager, cfg.Location)

	samples := []domain.TradeRecord{
		{Direction: domain.DirectionUp, Amount: 200, Duration: 10, Result: domain.ResultWin, ProfitLoss: 180},
		{Direction: domain.DirectionDown, Amount: 150, Duration: 5, Result: domain.ResultLoss, ProfitLoss: -150},
		{Direction: domain.DirectionUp, Amount: 300, Duration: 15, Result: domain.ResultWin, ProfitLoss: 270},
	}
	for _, sample := range samples {
		if _, stop, err := tradeService.Record(ctx, sample); err != nil {
			log.Fatalf("failed to record trade: %v", err)
		} else if stop.Stop {
			fmt.Printf("   ⚠ %s\n", stop.Reason)
		}
	}
	for _, tr := range tradeService.Recent(ctx, len(samples)) {
		fmt.Printf("   #%d %-4s ₹%d %dm %-4s %+.0f\n",
			tr.TradeID, tr.Direction, tr.Amount, tr.Duration, tr.Result, tr.ProfitLoss)
	}

	stats := tradeService.Statistics(ctx)
	fmt.Println("\n📊 Statistics:")
	fmt.Printf("   Total trades: %d\n", stats.TotalTrades)
	fmt.Printf("   Win rate:     %.1f%%\n", stats.WinRate)
	fmt.Printf("   Net profit:   ₹%.2f\n", stats.TotalProfit)

	summary := riskManager.Summary()
	stop := riskManager.ShouldStop()
	fmt.Println("\n🛡 Risk state:")
	fmt.Printf("   Daily loss:  ₹%.2f / ₹%.2f\n", summary.DailyLoss, summary.MaxDailyLoss)
	fmt.Printf("   Loss streak: %d / %d\n", summary.LossStreak, summary.MaxConsecutiveLosses)
	fmt.Printf("   %s\n", stop.Reason)

	fmt.Println("\n✅ Demo complete. Set TELEGRAM_BOT_TOKEN and run cmd/server to go live.")
}
