package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"classtrack/internal/auth"
	"classtrack/internal/course"
)

type createCourseRequest struct {
	Name string `json:"name" binding:"required"`
}

// CreateCourse adds a course for the session user.
func (h *Handler) CreateCourse(c *gin.Context) {
	var req createCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	crs, err := h.courses.Create(c.Request.Context(), auth.UserID(c), req.Name)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"course": crs})
}

// ListCourses returns the user's courses with counters, newest first.
func (h *Handler) ListCourses(c *gin.Context) {
	courses, err := h.courses.List(c.Request.Context(), auth.UserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	if courses == nil {
		courses = []course.Course{}
	}
	c.JSON(http.StatusOK, gin.H{"courses": courses})
}

type deleteCourseRequest struct {
	CourseID string `json:"courseId" binding:"required"`
}

// DeleteCourse removes a course after an ownership check.
func (h *Handler) DeleteCourse(c *gin.Context) {
	var req deleteCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.courses.Delete(c.Request.Context(), auth.UserID(c), req.CourseID); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "course deleted"})
}
