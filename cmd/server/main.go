package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	ossignal "os/signal"
	"strings"
	"syscall"
	"time"

	"crypto-idx-bot/internal/advisor"
	"crypto-idx-bot/internal/bot"
	"crypto-idx-bot/internal/cache"
	"crypto-idx-bot/internal/config"
	"crypto-idx-bot/internal/handler"
	"crypto-idx-bot/internal/job"
	"crypto-idx-bot/internal/provider"
	"crypto-idx-bot/internal/repository"
	"crypto-idx-bot/internal/risk"
	"crypto-idx-bot/internal/scan"
	"crypto-idx-bot/internal/service"
	signalengine "crypto-idx-bot/internal/signal"
	"crypto-idx-bot/internal/stream"
	"crypto-idx-bot/internal/tui"
	"crypto-idx-bot/pkg/tracing"

	"github.com/charmbracelet/ssh"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"

	_ "crypto-idx-bot/docs"
)

var (
	loadEnvFunc              = godotenv.Load
	loadConfigFunc           = config.Load
	initRedisFunc            = cache.InitRedis
	initTracerFunc           = tracing.InitTracer
	newTradeRepoFunc         = repository.NewTradeRepository
	newConversationRepoFunc  = repository.NewConversationRepository
	newSyntheticProviderFunc = func(points int) service.SeriesProvider {
		return provider.NewSynthetic(points, nil)
	}
	newSignalEngineFunc = func() service.SignalEngine { return signalengine.NewEngine(nil, nil) }
	newRiskManagerFunc  = risk.NewManager
	newDetectorFunc     = func(tracer trace.Tracer, opts scan.Options) service.AnomalyDetector {
		return scan.NewDetector(tracer, opts)
	}
	newRecommendationCacheFunc = cache.NewRecommendationCache
	newHubFunc                 = stream.NewHub
	startHubFunc               = func(h *stream.Hub, ctx context.Context) { go h.Run(ctx) }
	newSignalServiceFunc       = service.NewSignalServiceWithInfra
	newTradeServiceFunc        = service.NewTradeService
	newOpenAIClientFunc        = func(apiKey, model string) advisor.Completer {
		return advisor.NewOpenAIClient(apiKey, model)
	}
	newAdvisorServiceFunc  = advisor.NewService
	newBatchRunnerFunc     = job.NewBatchRunner
	newAlertPollerFunc     = job.NewAlertPoller
	startAlertPollerFunc   = func(p *job.AlertPoller, ctx context.Context) { go p.Start(ctx) }
	startTelegramBotFunc   = bot.StartTelegramBot
	newTUIServerFunc       = tui.NewSSHServer
	startTUIServerFunc     = func(s *tui.SSHServer) error { return s.ListenAndServe() }
	shutdownTUIServerFunc  = func(s *tui.SSHServer, ctx context.Context) error { return s.Shutdown(ctx) }
	newHandlerFunc         = handler.New
	newRouterFunc          = gin.Default
	setupSignalNotify      = ossignal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           Crypto IDX Signal Bot API
// @version         1.0
// @description     A synthetic index trading signal service with OpenTelemetry tracing.

// @host      localhost:8080
// @BasePath  /
func main() {
	loadEnvFunc()

	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init Redis
	os.Setenv("REDIS_URL", cfg.RedisURL)
	initRedisFunc(ctx)

	// Init tracing
	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	// Create the trade log
	tradeRepo := newTradeRepoFunc(cfg.HistoryFile, cfg.HistoryMax, tracer)

	// Create providers and services
	seriesProvider := newSyntheticProviderFunc(cfg.DataPoints)
	engine := newSignalEngineFunc()
	riskManager := newRiskManagerFunc(risk.Limits{
		MaxDailyLoss:         cfg.MaxDailyLoss,
		MaxConsecutiveLosses: cfg.MaxConsecutiveLosses,
		RiskThreshold:        cfg.RiskThreshold,
		MinTradeAmount:       cfg.MinTradeAmount,
		MaxTradeAmount:       cfg.MaxTradeAmount,
		TradeStep:            cfg.TradeStep,
	})

	var scanner service.AnomalyDetector
	if cfg.ScanEnabled {
		scanner = newDetectorFunc(tracer, scan.Options{
			Threshold:  cfg.ScanThreshold,
			NumTrees:   cfg.ScanTrees,
			SampleSize: cfg.ScanSampleSize,
		})
	}

	var recCache service.RecommendationCache
	if cache.Client != nil {
		recCache = newRecommendationCacheFunc(cache.Client, time.Duration(cfg.CacheTTLSecs)*time.Second)
	}

	// Websocket hub for the live signal feed (stopped by ctx cancel)
	hub := newHubFunc()
	startHubFunc(hub, ctx)

	signalService := newSignalServiceFunc(tracer, seriesProvider, engine, riskManager, cfg.Location, scanner, recCache, hub)
	tradeService := newTradeServiceFunc(tracer, tradeRepo, riskManager, cfg.Location)

	// Advisor is optional: without an API key the bot answers /ask with a hint.
	var advisorSvc *advisor.Service
	if cfg.OpenAIAPIKey != "" {
		completer := newOpenAIClientFunc(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		convRepo := newConversationRepoFunc(cfg.AdvisorMaxHistory, tracer)
		advisorSvc = newAdvisorServiceFunc(tracer, completer, convRepo, cfg.AdvisorMaxHistory)
		advisorSvc.WithMarketContext(marketContext(signalService, tradeService, riskManager))
	} else {
		log.Println("OPENAI_API_KEY not set, advisor disabled")
	}

	batchRunner := newBatchRunnerFunc(tracer, cfg.BatchSize, time.Duration(cfg.BatchDelaySecs)*time.Second,
		func(ctx context.Context) (string, error) {
			rec, err := signalService.Generate(ctx)
			if err != nil {
				return "", err
			}
			return bot.FormatRecommendation(rec, cfg.Location, cfg.RiskThreshold), nil
		})

	// Start Telegram bot
	os.Setenv("TELEGRAM_BOT_TOKEN", cfg.TelegramBotToken)
	botServices := bot.Services{
		Signals: signalService,
		Trades:  tradeService,
		Risk:    riskManager,
		Batch:   batchRunner,
	}
	if advisorSvc != nil {
		botServices.Advisor = advisorSvc
	}
	dispatcher := startTelegramBotFunc(botServices, bot.Options{
		RiskThreshold: cfg.RiskThreshold,
		BatchSize:     cfg.BatchSize,
		Location:      cfg.Location,
	})

	// Push alerts to subscribed chats (stopped by ctx cancel)
	if dispatcher != nil {
		alertPoller := newAlertPollerFunc(tracer, signalService, dispatcher, time.Duration(cfg.SignalCooldownSecs)*time.Second)
		startAlertPollerFunc(alertPoller, ctx)
	}

	// Terminal dashboard over SSH
	var tuiServer *tui.SSHServer
	if cfg.TUISSHEnabled {
		tuiServices := tui.Services{
			Signals: signalService,
			Trades:  tradeService,
			Risk:    riskManager,
		}
		if advisorSvc != nil {
			tuiServices.Advisor = advisorSvc
		}
		tuiServer, err = newTUIServerFunc(tui.ServerConfig{
			Bind:               cfg.TUISSHBind,
			Port:               cfg.TUISSHPort,
			HostKeyPath:        cfg.TUISSHHostKey,
			AuthorizedKeysPath: cfg.TUIAuthorizedKeys,
		}, tuiServices)
		if err != nil {
			log.Fatalf("failed to create SSH TUI server: %v", err)
		}
		go func() {
			if err := startTUIServerFunc(tuiServer); err != nil && err != ssh.ErrServerClosed {
				log.Printf("ssh tui server error: %v", err)
			}
		}()
		log.Printf("SSH TUI listening on %s:%d", cfg.TUISSHBind, cfg.TUISSHPort)
	}

	// Create handlers and routes
	h := newHandlerFunc(tracer, signalService, tradeService, riskManager, hub)

	r := newRouterFunc()
	r.Use(otelgin.Middleware("crypto-idx-bot"))
	r.Use(cors.Default())

	h.RegisterRoutes(r)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    httpAddr(cfg),
		Handler: r,
	}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down server...")

	cancel()
	batchRunner.StopAll()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if tuiServer != nil {
		if err := shutdownTUIServerFunc(tuiServer, shutdownCtx); err != nil {
			log.Printf("ssh tui shutdown error: %v", err)
		}
	}

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}

// httpAddr prefers a platform-injected PORT over the configured one.
func httpAddr(cfg *config.Config) string {
	if port := os.Getenv("PORT"); port != "" {
		if strings.HasPrefix(port, ":") {
			return port
		}
		return ":" + port
	}
	return fmt.Sprintf(":%d", cfg.HTTPPort)
}

// marketContext feeds the advisor live system state: the latest cached
// recommendation, aggregate trade statistics, and the risk counters.
func marketContext(signals *service.SignalService, trades *service.TradeService, riskMgr *risk.Manager) func(context.Context) []string {
	return func(ctx context.Context) []string {
		var lines []string
		if rec, err := signals.Latest(ctx); err == nil && rec != nil {
			lines = append(lines, fmt.Sprintf("Latest signal: %s at %.1f%% confidence, %s risk, stake %d.",
				rec.Signal.Direction, rec.Signal.Confidence, rec.Risk.Level, rec.Amount))
		}
		if stats := trades.Statistics(ctx); stats.TotalTrades > 0 {
			lines = append(lines, fmt.Sprintf("Trade history: %d trades, %.1f%% win rate, net profit %.2f.",
				stats.TotalTrades, stats.WinRate, stats.TotalProfit))
		}
		summary := riskMgr.Summary()
		stop := riskMgr.ShouldStop()
		lines = append(lines, fmt.Sprintf("Risk state: daily loss %.2f of %.2f, loss streak %d of %d. %s.",
			summary.DailyLoss, summary.MaxDailyLoss, summary.LossStreak, summary.MaxConsecutiveLosses, stop.Reason))
		return lines
	}
}
