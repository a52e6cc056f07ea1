package handler

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"crypto-idx-bot/internal/domain"

	"github.com/gin-gonic/gin"
)

const (
	defaultTradeLimit = 50
	maxTradeLimit     = 1000
)

type recordTradeRequest struct {
	Direction  string  `json:"direction"`
	Amount     int     `json:"amount"`
	Duration   int     `json:"duration"`
	Result     string  `json:"result"`
	ProfitLoss float64 `json:"profit_loss"`
}

// ListTrades godoc
// @Summary      List recent trades
// @Tags         trades
// @Produce      json
// @Param        limit  query  int  false  "Number of trades (default 50, max 1000)"  default(50)
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/trades [get]
func (h *Handler) ListTrades(c *gin.Context) {
	if h.tradeService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "trade service unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.list-trades")
	defer span.End()

	limit := defaultTradeLimit
	if rawLimit := strings.TrimSpace(c.Query("limit")); rawLimit != "" {
		n, err := strconv.Atoi(rawLimit)
		if err != nil || n <= 0 || n > maxTradeLimit {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 1000"})
			return
		}
		limit = n
	}

	trades := h.tradeService.Recent(ctx, limit)
	c.JSON(http.StatusOK, gin.H{"trades": trades})
}

// RecordTrade godoc
// @Summary      Record a completed trade
// @Description  Appends a trade outcome to the log, updates risk counters, and reports the stop status
// @Tags         trades
// @Accept       json
// @Produce      json
// @Success      201  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/trades [post]
func (h *Handler) RecordTrade(c *gin.Context) {
	if h.tradeService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "trade service unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.record-trade")
	defer span.End()

	var req recordTradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	trade, err := buildTradeRecord(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recorded, status, err := h.tradeService.Record(ctx, trade)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"trade": recorded, "stop": status})
}

// ExportTrades godoc
// @Summary      Export trade history as CSV
// @Tags         trades
// @Produce      text/csv
// @Success      200  {file}  binary
// @Failure      500  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/trades/export [get]
func (h *Handler) ExportTrades(c *gin.Context) {
	if h.tradeService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "trade service unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.export-trades")
	defer span.End()

	var buf bytes.Buffer
	if err := h.tradeService.ExportCSV(ctx, &buf); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	filename := "trade_history_" + time.Now().Format("20060102_150405") + ".csv"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

// ImportTrades godoc
// @Summary      Import trade history from CSV
// @Description  Replaces the current log with the trades in the request body
// @Tags         trades
// @Accept       text/csv
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/trades/import [post]
func (h *Handler) ImportTrades(c *gin.Context) {
	if h.tradeService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "trade service unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.import-trades")
	defer span.End()

	if err := h.tradeService.ImportCSV(ctx, c.Request.Body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "imported"})
}

// DailySummary godoc
// @Summary      Daily trade summary
// @Tags         trades
// @Produce      json
// @Param        date  query  string  false  "Day to summarize (2006-01-02, default today)"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/trades/summary [get]
func (h *Handler) DailySummary(c *gin.Context) {
	if h.tradeService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "trade service unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.daily-summary")
	defer span.End()

	date := strings.TrimSpace(c.Query("date"))
	if date != "" {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be formatted as 2006-01-02"})
			return
		}
	}

	summary := h.tradeService.DailySummary(ctx, date)
	if summary == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no trades recorded for that day"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

// Statistics godoc
// @Summary      Aggregate trade statistics
// @Tags         trades
// @Produce      json
// @Success      200  {object}  domain.Statistics
// @Failure      503  {object}  map[string]string
// @Router       /api/statistics [get]
func (h *Handler) Statistics(c *gin.Context) {
	if h.tradeService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "trade service unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.statistics")
	defer span.End()

	c.JSON(http.StatusOK, h.tradeService.Statistics(ctx))
}

func buildTradeRecord(req recordTradeRequest) (domain.TradeRecord, error) {
	direction, ok := domain.ParseDirection(req.Direction)
	if !ok {
		return domain.TradeRecord{}, errors.New("direction must be UP or DOWN")
	}
	if req.Amount <= 0 {
		return domain.TradeRecord{}, errors.New("amount must be a positive number")
	}
	duration := req.Duration
	if duration == 0 {
		duration = 5
	}
	if duration < 0 {
		return domain.TradeRecord{}, errors.New("duration must be a positive number of minutes")
	}

	result := domain.ResultLoss
	if req.ProfitLoss >= 0 {
		result = domain.ResultWin
	}
	if raw := strings.TrimSpace(req.Result); raw != "" {
		parsed, ok := domain.ParseTradeResult(raw)
		if !ok {
			return domain.TradeRecord{}, errors.New("result must be WIN or LOSS")
		}
		result = parsed
	}

	return domain.TradeRecord{
		Direction:  direction,
		Amount:     req.Amount,
		Duration:   duration,
		Result:     result,
		ProfitLoss: req.ProfitLoss,
	}, nil
}
