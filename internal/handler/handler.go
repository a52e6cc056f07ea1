package handler

import (
	"net/http"

	"crypto-idx-bot/internal/risk"
	"crypto-idx-bot/internal/service"
	"crypto-idx-bot/internal/stream"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

type Handler struct {
	tracer        trace.Tracer
	signalService *service.SignalService
	tradeService  *service.TradeService
	riskManager   *risk.Manager
	hub           *stream.Hub
}

func New(
	tracer trace.Tracer,
	signalService *service.SignalService,
	tradeService *service.TradeService,
	riskManager *risk.Manager,
	hub *stream.Hub,
) *Handler {
	return &Handler{
		tracer:        tracer,
		signalService: signalService,
		tradeService:  tradeService,
		riskManager:   riskManager,
		hub:           hub,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)
	r.POST("/api/signal", h.GenerateSignal)
	r.GET("/api/signals/latest", h.LatestSignal)
	r.GET("/api/trades", h.ListTrades)
	r.POST("/api/trades", h.RecordTrade)
	r.GET("/api/trades/export", h.ExportTrades)
	r.POST("/api/trades/import", h.ImportTrades)
	r.GET("/api/trades/summary", h.DailySummary)
	r.GET("/api/statistics", h.Statistics)
	r.GET("/api/risk", h.RiskStatus)
	r.POST("/api/risk/reset", h.ResetRisk)
	r.GET("/ws/signals", h.StreamSignals)
}

// Health godoc
// @Summary      Service health probe
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
