package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	ossignal "os/signal"
	"strings"
	"syscall"
	"time"

	"crypto-idx-bot/internal/cache"
	"crypto-idx-bot/internal/config"
	mcpserver "crypto-idx-bot/internal/mcp"
	"crypto-idx-bot/internal/provider"
	"crypto-idx-bot/internal/repository"
	"crypto-idx-bot/internal/risk"
	"crypto-idx-bot/internal/scan"
	"crypto-idx-bot/internal/service"
	signalengine "crypto-idx-bot/internal/signal"
	"crypto-idx-bot/pkg/tracing"

	"github.com/joho/godotenv"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/trace"
)

const defaultMCPHTTPMaxBodyBytes int64 = 1 << 20 // 1MiB

var (
	loadEnvFunc              = godotenv.Load
	loadConfigFunc           = config.Load
	initRedisFunc            = cache.InitRedis
	initTracerFunc           = tracing.InitTracer
	newTradeRepoFunc         = repository.NewTradeRepository
	newSyntheticProviderFunc = func(points int) service.SeriesProvider {
		return provider.NewSynthetic(points, nil)
	}
	newSignalEngineFunc = func() service.SignalEngine { return signalengine.NewEngine(nil, nil) }
	newRiskManagerFunc  = risk.NewManager
	newDetectorFunc     = func(tracer trace.Tracer, opts scan.Options) service.AnomalyDetector {
		return scan.NewDetector(tracer, opts)
	}
	newRecommendationCacheFunc = cache.NewRecommendationCache
	newSignalServiceFunc       = service.NewSignalServiceWithInfra
	newTradeServiceFunc        = service.NewTradeService
	newMCPServerFunc           = mcpserver.NewServer
	newMCPHandlerFunc          = mcpserver.NewHTTPTransportHandler
	runStdioFunc               = func(ctx context.Context, server *sdkmcp.Server) error {
		return server.Run(ctx, &sdkmcp.StdioTransport{})
	}
	startHTTPServerFunc  = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFn = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
	setupSignalNotify    = ossignal.Notify
	waitForSignalFunc    = func(quit <-chan os.Signal) { <-quit }
)

func main() {
	loadEnvFunc()
	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	os.Setenv("REDIS_URL", cfg.RedisURL)
	initRedisFunc(ctx)

	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	tradeRepo := newTradeRepoFunc(cfg.HistoryFile, cfg.HistoryMax, tracer)
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

	signalService := newSignalServiceFunc(tracer, seriesProvider, engine, riskManager, cfg.Location, scanner, recCache)
	tradeService := newTradeServiceFunc(tracer, tradeRepo, riskManager, cfg.Location)

	mcpSrv := newMCPServerFunc(tracer, signalService, tradeService, riskManager, mcpserver.ServerConfig{
		RequestTimeout: time.Duration(cfg.MCPRequestTimeoutSecs) * time.Second,
	})

	transport := strings.ToLower(strings.TrimSpace(cfg.MCPTransport))
	switch transport {
	case "", "stdio":
		if err := runStdioFunc(ctx, mcpSrv); err != nil {
			log.Fatalf("mcp stdio server failed: %v", err)
		}
	case "http":
		if err := runHTTPMode(ctx, cancel, cfg, mcpSrv); err != nil {
			log.Fatalf("mcp http server failed: %v", err)
		}
	default:
		log.Fatalf("unsupported MCP_TRANSPORT: %s", cfg.MCPTransport)
	}
}

func runHTTPMode(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, mcpSrv *sdkmcp.Server) error {
	if !cfg.MCPHTTPEnabled {
		return fmt.Errorf("MCP_HTTP_ENABLED must be true when MCP_TRANSPORT=http")
	}
	if strings.TrimSpace(cfg.MCPAuthToken) == "" {
		return fmt.Errorf("MCP_AUTH_TOKEN is required when MCP_TRANSPORT=http")
	}

	handler := newMCPHandlerFunc(mcpSrv, mcpserver.HTTPHandlerConfig{
		AuthToken:       cfg.MCPAuthToken,
		RateLimitPerMin: cfg.MCPRateLimitPerMin,
		MaxBodyBytes:    defaultMCPHTTPMaxBodyBytes,
	})

	addr := net.JoinHostPort(cfg.MCPHTTPBind, fmt.Sprintf("%d", cfg.MCPHTTPPort))
	srv := &http.Server{Addr: addr, Handler: handler}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Printf("mcp http server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFn(srv, shutdownCtx); err != nil {
		return fmt.Errorf("mcp server forced to shutdown: %w", err)
	}
	return nil
}
