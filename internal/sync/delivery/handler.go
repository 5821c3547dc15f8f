package delivery

import (
	"errors"
	"net/http"

	"prepmail-backend/internal/sync/usecase"

	"github.com/gin-gonic/gin"
)

// SyncHandler handles sync-related HTTP requests
type SyncHandler struct {
	syncUsecase usecase.SyncUsecase
}

// NewSyncHandler creates a new SyncHandler
func NewSyncHandler(syncUsecase usecase.SyncUsecase) *SyncHandler {
	return &SyncHandler{
		syncUsecase: syncUsecase,
	}
}

// StartSync kicks off a background sync run for the authenticated user
// POST /api/sync/start
func (h *SyncHandler) StartSync(c *gin.Context) {
	userID := c.GetString("userID")

	var opts usecase.SyncOptions
	if err := c.ShouldBindJSON(&opts); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status, err := h.syncUsecase.StartSync(c.Request.Context(), userID, opts)
	if err != nil {
		if errors.Is(err, usecase.ErrSyncInProgress) {
			c.JSON(http.StatusConflict, gin.H{"error": "Sync already in progress"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, status)
}

// GetStatus returns the current sync status for polling clients
// GET /api/sync/status
func (h *SyncHandler) GetStatus(c *gin.Context) {
	userID := c.GetString("userID")

	status, err := h.syncUsecase.GetStatus(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, status)
}
