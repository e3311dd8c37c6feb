package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"classtrack/internal/attendance"
	"classtrack/internal/course"
	"classtrack/internal/reminder"
	"classtrack/internal/scheduler"
	"classtrack/internal/user"
)

// Handler owns the HTTP surface of the service.
type Handler struct {
	courses   *course.Service
	ledger    *attendance.Service
	reminders *reminder.Service
	users     *user.Service
	sched     *scheduler.Scheduler
	log       *zap.SugaredLogger
}

func New(courses *course.Service, ledger *attendance.Service, reminders *reminder.Service, users *user.Service, sched *scheduler.Scheduler, log *zap.SugaredLogger) *Handler {
	return &Handler{
		courses:   courses,
		ledger:    ledger,
		reminders: reminders,
		users:     users,
		sched:     sched,
		log:       log,
	}
}

// Register wires the API routes. sessionAuth guards user endpoints, cronAuth
// guards the scheduler trigger.
func (h *Handler) Register(r *gin.Engine, sessionAuth, cronAuth gin.HandlerFunc) {
	api := r.Group("/api", sessionAuth)
	{
		api.POST("/attendance", h.MarkAttendance)
		api.GET("/attendance", h.ListAttendance)
		api.DELETE("/attendance", h.DeleteAttendance)
		api.POST("/quickattendance", h.QuickAttendance)

		api.POST("/courses", h.CreateCourse)
		api.GET("/courses", h.ListCourses)
		api.DELETE("/courses", h.DeleteCourse)

		api.POST("/reminders", h.SetReminder)
		api.GET("/reminders", h.ListReminders)

		api.GET("/user/profile", h.Profile)
		api.GET("/user/timezone", h.GetTimezone)
		api.PUT("/user/timezone", h.PutTimezone)
	}

	r.GET("/api/cron/send-reminders", cronAuth, h.RunScheduler)
}

// fail maps domain errors to HTTP statuses and writes the response.
func (h *Handler) fail(c *gin.Context, err error) {
	var code int
	switch {
	case errors.Is(err, course.ErrNotFound),
		errors.Is(err, attendance.ErrNotFound),
		errors.Is(err, user.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, course.ErrNotOwned):
		code = http.StatusForbidden
	case errors.Is(err, course.ErrNameRequired),
		errors.Is(err, attendance.ErrInvalidStatus),
		errors.Is(err, attendance.ErrInvalidDate),
		errors.Is(err, reminder.ErrMessageTooLong),
		errors.Is(err, user.ErrInvalidTimezone):
		code = http.StatusBadRequest
	default:
		code = http.StatusInternalServerError
		h.log.Errorw("request failed", "path", c.FullPath(), "err", err)
	}
	c.JSON(code, gin.H{"error": err.Error()})
}

// parseDate accepts a bare calendar day or a full RFC 3339 timestamp.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
