package handler

import (
	"net/http"

	"github.com/osse101/PackOpener_Go/internal/eventlog"
	"github.com/osse101/PackOpener_Go/internal/logger"
)

// EventsResponse wraps a user's logged events
type EventsResponse struct {
	UserID string           `json:"user_id"`
	Events []eventlog.Entry `json:"events"`
}

// HandleGetEvents returns the user's audit trail, newest first
// @Summary List audit events
// @Tags events
// @Produce json
// @Security ApiKeyAuth
// @Param userID path string true "User ID (UUID)"
// @Param limit query int false "Maximum entries (default 50, max 500)"
// @Success 200 {object} EventsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/users/{userID}/events [get]
func HandleGetEvents(svc eventlog.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := PathUserID(r, w)
		if !ok {
			return
		}
		limit, ok := QueryLimit(r, w)
		if !ok {
			return
		}

		entries, err := svc.UserEvents(r.Context(), userID, limit)
		if err != nil {
			logger.FromContext(r.Context()).Error(LogMsgEventsFailed, LogFieldUserID, userID, LogFieldError, err)
			respondServiceError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, EventsResponse{UserID: userID, Events: entries})
	}
}
