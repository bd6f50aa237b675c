package handler

import (
	"net/http"

	"github.com/osse101/PackOpener_Go/internal/domain"
	"github.com/osse101/PackOpener_Go/internal/ledger"
	"github.com/osse101/PackOpener_Go/internal/logger"
)

// HistoryResponse wraps a user's transaction history
type HistoryResponse struct {
	UserID       string               `json:"user_id"`
	Transactions []domain.Transaction `json:"transactions"`
}

// HandleGetInventory returns a user's collection and cached totals.
// A user who never opened anything gets an empty inventory, not a 404.
// @Summary Get inventory
// @Tags inventory
// @Produce json
// @Security ApiKeyAuth
// @Param userID path string true "User ID (UUID)"
// @Success 200 {object} domain.UserInventory
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/users/{userID}/inventory [get]
func HandleGetInventory(svc ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := PathUserID(r, w)
		if !ok {
			return
		}

		inv, err := svc.Inventory(r.Context(), userID)
		if err != nil {
			logger.FromContext(r.Context()).Error(LogMsgInventoryFailed, LogFieldUserID, userID, LogFieldError, err)
			respondServiceError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, inv)
	}
}

// HandleGetHistory returns the user's opening transactions, oldest first
// @Summary List transactions
// @Tags inventory
// @Produce json
// @Security ApiKeyAuth
// @Param userID path string true "User ID (UUID)"
// @Success 200 {object} HistoryResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/users/{userID}/transactions [get]
func HandleGetHistory(svc ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := PathUserID(r, w)
		if !ok {
			return
		}

		txns, err := svc.History(r.Context(), userID)
		if err != nil {
			logger.FromContext(r.Context()).Error(LogMsgInventoryFailed, LogFieldUserID, userID, LogFieldError, err)
			respondServiceError(w, err)
			return
		}
		if txns == nil {
			txns = []domain.Transaction{}
		}

		respondJSON(w, http.StatusOK, HistoryResponse{UserID: userID, Transactions: txns})
	}
}

// HandleReconcile recomputes a user's cached totals and repairs drift
// @Summary Reconcile inventory totals
// @Description Recompute total cards and value from inventory items and repair any drift.
// @Tags inventory
// @Produce json
// @Security ApiKeyAuth
// @Param userID path string true "User ID (UUID)"
// @Success 200 {object} domain.ReconcileReport
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/users/{userID}/reconcile [post]
func HandleReconcile(svc ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := PathUserID(r, w)
		if !ok {
			return
		}

		report, err := svc.Reconcile(r.Context(), userID)
		if err != nil {
			logger.FromContext(r.Context()).Error(LogMsgReconcileFailed, LogFieldUserID, userID, LogFieldError, err)
			respondServiceError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, report)
	}
}
