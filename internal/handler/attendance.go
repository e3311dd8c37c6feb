package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"classtrack/internal/attendance"
	"classtrack/internal/auth"
)

type markAttendanceRequest struct {
	CourseID string `json:"courseId" binding:"required"`
	Date     string `json:"date" binding:"required"`
	Status   string `json:"status" binding:"required,oneof=Present Absent"`
}

// MarkAttendance creates or updates the mark for one (course, date).
func (h *Handler) MarkAttendance(c *gin.Context) {
	var req markAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date"})
		return
	}

	rec, action, err := h.ledger.Upsert(c.Request.Context(), auth.UserID(c), req.CourseID, date, attendance.Status(req.Status))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attendance": rec, "action": action})
}

// ListAttendance returns all marks for a course, date ascending.
func (h *Handler) ListAttendance(c *gin.Context) {
	courseID := c.Query("courseId")
	if courseID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "courseId is required"})
		return
	}
	recs, err := h.ledger.List(c.Request.Context(), auth.UserID(c), courseID)
	if err != nil {
		h.fail(c, err)
		return
	}
	if recs == nil {
		recs = []attendance.Record{}
	}
	c.JSON(http.StatusOK, gin.H{"attendances": recs})
}

// DeleteAttendance removes the mark for (course, date).
func (h *Handler) DeleteAttendance(c *gin.Context) {
	courseID := c.Query("courseId")
	dateStr := c.Query("date")
	if courseID == "" || dateStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "courseId and date are required"})
		return
	}
	date, err := parseDate(dateStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date"})
		return
	}
	n, err := h.ledger.Delete(c.Request.Context(), auth.UserID(c), courseID, date)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deletedCount": n})
}

type quickAttendanceRequest struct {
	Presents []string `json:"presents"`
	Absents  []string `json:"absents"`
}

// QuickAttendance applies today's marks across two course lists. Courses are
// processed independently; per-course outcomes land in results.
func (h *Handler) QuickAttendance(c *gin.Context) {
	var req quickAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.Presents) == 0 && len(req.Absents) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "presents or absents required"})
		return
	}
	results := h.ledger.BatchMark(c.Request.Context(), auth.UserID(c), req.Presents, req.Absents)
	c.JSON(http.StatusOK, gin.H{"results": results})
}
