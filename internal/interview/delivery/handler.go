package delivery

import (
	"errors"
	"net/http"

	"prepmail-backend/internal/interview/usecase"
	taskusecase "prepmail-backend/internal/task/usecase"

	"github.com/gin-gonic/gin"
)

// PrepHandler handles interview prep HTTP requests
type PrepHandler struct {
	prepUsecase usecase.PrepUsecase
}

// NewPrepHandler creates a new PrepHandler
func NewPrepHandler(prepUsecase usecase.PrepUsecase) *PrepHandler {
	return &PrepHandler{
		prepUsecase: prepUsecase,
	}
}

// GeneratePrepRequest represents the request body for generating questions
type GeneratePrepRequest struct {
	Style string `json:"style"` // behavioral, technical, mixed
}

// SchedulePrepRequest represents the request body for the schedule toggle
type SchedulePrepRequest struct {
	Scheduled *bool `json:"scheduled" binding:"required"`
}

// GeneratePrep generates practice questions for an interview task
// POST /api/tasks/:id/interview-prep
func (h *PrepHandler) GeneratePrep(c *gin.Context) {
	userID := c.GetString("userID")
	taskID := c.Param("id")

	var req GeneratePrepRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	prep, err := h.prepUsecase.GeneratePrep(c.Request.Context(), userID, taskID, req.Style)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, prep)
}

// GetPrep returns the prep attached to a task
// GET /api/tasks/:id/interview-prep
func (h *PrepHandler) GetPrep(c *gin.Context) {
	userID := c.GetString("userID")
	taskID := c.Param("id")

	prep, err := h.prepUsecase.GetPrep(userID, taskID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, prep)
}

// SchedulePrep toggles the prep-session flag
// PATCH /api/tasks/:id/interview-prep/schedule
func (h *PrepHandler) SchedulePrep(c *gin.Context) {
	userID := c.GetString("userID")
	taskID := c.Param("id")

	var req SchedulePrepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	prep, err := h.prepUsecase.SetPrepScheduled(userID, taskID, *req.Scheduled)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, prep)
}

func (h *PrepHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, taskusecase.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
	case errors.Is(err, usecase.ErrPrepNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Interview prep not found"})
	case errors.Is(err, usecase.ErrNotInterviewTask):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Task is not an interview"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
