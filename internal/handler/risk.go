package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RiskStatus godoc
// @Summary      Current risk counters and stop status
// @Tags         risk
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]string
// @Router       /api/risk [get]
func (h *Handler) RiskStatus(c *gin.Context) {
	if h.riskManager == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "risk manager unavailable"})
		return
	}

	_, span := h.tracer.Start(c.Request.Context(), "handler.risk-status")
	defer span.End()

	c.JSON(http.StatusOK, gin.H{
		"summary": h.riskManager.Summary(),
		"status":  h.riskManager.ShouldStop(),
	})
}

// ResetRisk godoc
// @Summary      Reset the daily risk counters
// @Description  Zeroes the accumulated daily loss and the loss streak
// @Tags         risk
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]string
// @Router       /api/risk/reset [post]
func (h *Handler) ResetRisk(c *gin.Context) {
	if h.riskManager == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "risk manager unavailable"})
		return
	}

	_, span := h.tracer.Start(c.Request.Context(), "handler.reset-risk")
	defer span.End()

	h.riskManager.ResetDaily()
	c.JSON(http.StatusOK, gin.H{"summary": h.riskManager.Summary()})
}
