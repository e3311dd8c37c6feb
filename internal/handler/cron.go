package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RunScheduler executes one reminder dispatch pass and returns its summary.
// CronAuth has already verified the shared secret.
func (h *Handler) RunScheduler(c *gin.Context) {
	sum, err := h.sched.Run(c.Request.Context())
	if err != nil {
		h.log.Errorw("scheduler pass failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sum)
}
