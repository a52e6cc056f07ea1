package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GenerateSignal godoc
// @Summary      Generate a trading signal
// @Description  Runs the full pipeline (synthetic series, indicators, risk, sizing) and returns a recommendation
// @Tags         signals
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/signal [post]
func (h *Handler) GenerateSignal(c *gin.Context) {
	if h.signalService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "signal service unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.generate-signal")
	defer span.End()

	rec, err := h.signalService.Generate(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"recommendation": rec})
}

// LatestSignal godoc
// @Summary      Get the most recent signal
// @Description  Returns the last cached recommendation, if any
// @Tags         signals
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/signals/latest [get]
func (h *Handler) LatestSignal(c *gin.Context) {
	if h.signalService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "signal service unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.latest-signal")
	defer span.End()

	rec, err := h.signalService.Latest(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no signal generated yet"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"recommendation": rec})
}

// StreamSignals godoc
// @Summary      Live signal feed
// @Description  Upgrades to a websocket that receives every generated recommendation as JSON
// @Tags         signals
// @Success      101  {string}  string  "Switching Protocols"
// @Failure      503  {object}  map[string]string
// @Router       /ws/signals [get]
func (h *Handler) StreamSignals(c *gin.Context) {
	if h.hub == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "signal stream unavailable"})
		return
	}
	h.hub.ServeWS(c.Writer, c.Request)
}
