package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"classtrack/internal/auth"
	"classtrack/internal/reminder"
)

type setReminderRequest struct {
	CourseID     string `json:"courseId" binding:"required"`
	ReminderDate string `json:"reminderDate" binding:"required"`
	Message      string `json:"message" binding:"omitempty,max=100"`
}

// SetReminder creates or updates the reminder for (course, date).
func (h *Handler) SetReminder(c *gin.Context) {
	var req setReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	date, err := parseDate(req.ReminderDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reminderDate"})
		return
	}
	rem, err := h.reminders.Set(c.Request.Context(), auth.UserID(c), req.CourseID, date, req.Message)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"reminder": rem})
}

// ListReminders returns the user's reminders for a course, date ascending.
func (h *Handler) ListReminders(c *gin.Context) {
	courseID := c.Query("courseId")
	if courseID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "courseId is required"})
		return
	}
	rems, err := h.reminders.List(c.Request.Context(), auth.UserID(c), courseID)
	if err != nil {
		h.fail(c, err)
		return
	}
	if rems == nil {
		rems = []reminder.Reminder{}
	}
	c.JSON(http.StatusOK, gin.H{"reminders": rems})
}
