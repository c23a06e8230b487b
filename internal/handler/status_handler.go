package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nathanoyet/contra-ai/internal/status"
)

type StatusHandler struct {
	store status.Store
}

func NewStatusHandler(store status.Store) *StatusHandler {
	return &StatusHandler{store: store}
}

// GetStatus returns the progress line for one of the caller's in-flight
// requests. Ids are removed once generation finishes, so a finished request
// is a 404, as is another user's id.
func (h *StatusHandler) GetStatus(c *gin.Context) {
	id := c.Param("id")

	msg, err := h.store.Get(c.Request.Context(), status.Key(currentUserID(c), id))
	if errors.Is(err, status.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Status not found"})
		return
	}
	if err != nil {
		slog.Error("error reading request status", "request_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Status unavailable"})
		return
	}

	c.JSON(http.StatusOK, StatusResponse{RequestID: id, Status: msg})
}
