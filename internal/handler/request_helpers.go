package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/osse101/PackOpener_Go/internal/logger"
)

// ValidationErrorResponse is the error envelope plus per-field details
type ValidationErrorResponse struct {
	ErrorResponse
	Fields map[string]string `json:"fields"`
}

// DecodeAndValidateRequest decodes a JSON request body and validates it.
// If it returns an error the response has already been written and the handler should return.
//
// Example usage:
//
//	var req OpenRequest
//	if err := DecodeAndValidateRequest(r, w, &req, "Open pack"); err != nil {
//	    return
//	}
func DecodeAndValidateRequest(r *http.Request, w http.ResponseWriter, req any, actionName string) error {
	log := logger.FromContext(r.Context())

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(req); err != nil {
		log.Warn(LogMsgDecodeFailed, LogFieldAction, actionName, LogFieldError, err)
		respondError(w, http.StatusBadRequest, StatusValidation, ErrMsgInvalidRequest)
		return err
	}

	log.Debug(LogMsgRequestDecoded, LogFieldAction, actionName)

	if err := GetValidator().ValidateStruct(req); err != nil {
		respondJSON(w, http.StatusBadRequest, ValidationErrorResponse{
			ErrorResponse: ErrorResponse{
				Status:     StatusValidation,
				StatusCode: http.StatusBadRequest,
				Message:    ErrMsgInvalidRequestSummary,
			},
			Fields: FormatValidationError(err),
		})
		return err
	}

	return nil
}

// PathInt64 reads a positive integer path parameter.
// If ok is false the response has already been written.
func PathInt64(r *http.Request, w http.ResponseWriter, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, StatusValidation, fmt.Sprintf(ErrMsgInvalidPathParam, name))
		return 0, false
	}
	return id, true
}

// PathUserID reads the userID path parameter and checks it is a UUID.
// If ok is false the response has already been written.
func PathUserID(r *http.Request, w http.ResponseWriter) (string, bool) {
	userID := chi.URLParam(r, ParamUserID)
	if err := GetValidator().validate.Var(userID, "required,uuid"); err != nil {
		respondError(w, http.StatusBadRequest, StatusValidation, fmt.Sprintf(ErrMsgInvalidPathParam, ParamUserID))
		return "", false
	}
	return userID, true
}

// QueryLimit parses the optional limit query parameter. Absent means 0, letting the service pick a default.
func QueryLimit(r *http.Request, w http.ResponseWriter) (int, bool) {
	raw := r.URL.Query().Get(QueryParamLimit)
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		respondError(w, http.StatusBadRequest, StatusValidation, fmt.Sprintf(ErrMsgInvalidQueryParam, QueryParamLimit))
		return 0, false
	}
	return limit, true
}
