package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/osse101/PackOpener_Go/internal/domain"
)

// ErrorResponse is the stable error envelope returned for every failed request
type ErrorResponse struct {
	Status     string `json:"status"`
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

// DataResponse represents a response with data payload
type DataResponse struct {
	Message string `json:"message,omitempty"`
	Data    any    `json:"data"`
}

var bufferPool = sync.Pool{
	New: func() any {
		return bytes.NewBuffer(make([]byte, 0, 1024))
	},
}

// respondJSON encodes payload into a pooled buffer before writing headers,
// so an encoding failure still produces a well-formed 500.
func respondJSON(w http.ResponseWriter, status int, payload any) {
	buf := bufferPool.Get().(*bytes.Buffer)
	defer func() {
		buf.Reset()
		bufferPool.Put(buf)
	}()

	if err := json.NewEncoder(buf).Encode(payload); err != nil {
		slog.Error(LogMsgEncodeFailed, LogFieldError, err)
		http.Error(w, ErrMsgGenericServerError, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Error(LogMsgWriteFailed, LogFieldError, err)
	}
}

// respondError writes the error envelope for a status and message
func respondError(w http.ResponseWriter, statusCode int, status, message string) {
	respondJSON(w, statusCode, ErrorResponse{
		Status:     status,
		StatusCode: statusCode,
		Message:    message,
	})
}

// respondServiceError maps a service error onto the envelope
func respondServiceError(w http.ResponseWriter, err error) {
	resp := mapServiceError(err)
	respondJSON(w, resp.StatusCode, resp)
}

// mapServiceError converts domain errors into fixed user-facing responses.
// Specific errors are checked before their categories; the message never carries err's text.
func mapServiceError(err error) ErrorResponse {
	statusCode, status, message := classify(err)
	return ErrorResponse{Status: status, StatusCode: statusCode, Message: message}
}

func classify(err error) (int, string, string) {
	switch {
	case err == nil:
		return http.StatusInternalServerError, StatusInternal, ErrMsgUnknownError

	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, StatusNotFound, ErrMsgUserNotFoundError
	case errors.Is(err, domain.ErrPackNotFound):
		return http.StatusNotFound, StatusNotFound, ErrMsgPackNotFoundError
	case errors.Is(err, domain.ErrBoxNotFound):
		return http.StatusNotFound, StatusNotFound, ErrMsgBoxNotFoundError
	case errors.Is(err, domain.ErrSetNotFound):
		return http.StatusNotFound, StatusNotFound, ErrMsgSetNotFoundError
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, StatusNotFound, ErrMsgResourceNotFoundErr

	case errors.Is(err, domain.ErrSetNotActive):
		return http.StatusBadRequest, StatusValidation, ErrMsgSetNotActiveError
	case errors.Is(err, domain.ErrInvalidPackSpec),
		errors.Is(err, domain.ErrInvalidBoxSpec),
		errors.Is(err, domain.ErrInvalidRarityTbl),
		errors.Is(err, domain.ErrEmptyGuaranteePl):
		return http.StatusUnprocessableEntity, StatusValidation, ErrMsgInvalidProductError
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, StatusValidation, ErrMsgInvalidInputError

	case errors.Is(err, domain.ErrOutOfStock):
		return http.StatusConflict, StatusConflict, ErrMsgOutOfStockError
	case errors.Is(err, domain.ErrLockTimeout):
		return http.StatusConflict, StatusConflict, ErrMsgBusyError
	case errors.Is(err, domain.ErrRequestIDReused):
		return http.StatusConflict, StatusConflict, ErrMsgRequestReusedError
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, StatusConflict, ErrMsgConflictError

	case errors.Is(err, domain.ErrInsufficientPool):
		return http.StatusInternalServerError, StatusInsufficientPool, ErrMsgPoolTooSmallError
	}

	return http.StatusInternalServerError, StatusInternal, ErrMsgGenericServerError
}
