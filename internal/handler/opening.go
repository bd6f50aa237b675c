package handler

import (
	"net/http"

	"github.com/osse101/PackOpener_Go/internal/logger"
	"github.com/osse101/PackOpener_Go/internal/opening"
)

// OpenRequest is the body of both open endpoints.
// RequestID is the client's idempotency key; retries must reuse it.
type OpenRequest struct {
	UserID    string `json:"user_id" validate:"required,uuid"`
	RequestID string `json:"request_id" validate:"required,max=128,request_id"`
}

// HandleOpenPack opens one pack for a user
// @Summary Open a pack
// @Description Reserve one pack, draw its cards and credit them to the user. Safe to retry with the same request_id.
// @Tags openings
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param packID path int true "Pack ID"
// @Param request body OpenRequest true "User and idempotency key"
// @Success 200 {object} domain.PackOpeningResult
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/packs/{packID}/open [post]
func HandleOpenPack(svc opening.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		packID, ok := PathInt64(r, w, ParamPackID)
		if !ok {
			return
		}

		var req OpenRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Open pack"); err != nil {
			return
		}

		ctx := logger.WithOpening(r.Context(), req.UserID, req.RequestID)
		log := logger.FromContext(ctx).With(LogFieldPackID, packID)

		result, err := svc.OpenPack(ctx, req.UserID, packID, req.RequestID)
		if err != nil {
			log.Warn(LogMsgOpenFailed, LogFieldError, err)
			respondServiceError(w, err)
			return
		}

		log.Info(LogMsgOpened)
		respondJSON(w, http.StatusOK, result)
	}
}

// HandleOpenBox opens every pack of a sealed box for a user
// @Summary Open a box
// @Description Reserve one box and open all of its packs as a single opening. Safe to retry with the same request_id.
// @Tags openings
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param boxID path int true "Box ID"
// @Param request body OpenRequest true "User and idempotency key"
// @Success 200 {object} domain.BoxOpeningResult
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/boxes/{boxID}/open [post]
func HandleOpenBox(svc opening.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		boxID, ok := PathInt64(r, w, ParamBoxID)
		if !ok {
			return
		}

		var req OpenRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Open box"); err != nil {
			return
		}

		ctx := logger.WithOpening(r.Context(), req.UserID, req.RequestID)
		log := logger.FromContext(ctx).With(LogFieldBoxID, boxID)

		result, err := svc.OpenBox(ctx, req.UserID, boxID, req.RequestID)
		if err != nil {
			log.Warn(LogMsgOpenFailed, LogFieldError, err)
			respondServiceError(w, err)
			return
		}

		log.Info(LogMsgOpened)
		respondJSON(w, http.StatusOK, result)
	}
}
