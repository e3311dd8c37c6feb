package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"classtrack/internal/auth"
)

// Profile returns the session user's profile.
func (h *Handler) Profile(c *gin.Context) {
	u, err := h.users.Profile(c.Request.Context(), auth.UserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

// GetTimezone returns the session user's stored timezone.
func (h *Handler) GetTimezone(c *gin.Context) {
	tz, err := h.users.Timezone(c.Request.Context(), auth.UserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"timezone": tz})
}

type putTimezoneRequest struct {
	Timezone string `json:"timezone" binding:"required"`
}

// PutTimezone validates and stores a new IANA timezone for the session user.
func (h *Handler) PutTimezone(c *gin.Context) {
	var req putTimezoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.users.SetTimezone(c.Request.Context(), auth.UserID(c), req.Timezone); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"timezone": req.Timezone})
}
