package handler

import (
	"net/http"

	"github.com/osse101/PackOpener_Go/internal/domain"
	"github.com/osse101/PackOpener_Go/internal/event"
	"github.com/osse101/PackOpener_Go/internal/logger"
	"github.com/osse101/PackOpener_Go/internal/raritytable"
)

// ActivateSetResponse reports the activated set and its advertised odds
type ActivateSetResponse struct {
	SetID        int64              `json:"set_id"`
	NonRepeating bool               `json:"non_repeating"`
	Odds         map[string]float64 `json:"odds"`
}

// HandleActivateSet builds and caches the rarity table of a set, opening it for sale
// @Summary Activate a card set
// @Description Build and cache the set's rarity table after checking every pack's guarantees. Activating an active set is a no-op.
// @Tags sets
// @Produce json
// @Security ApiKeyAuth
// @Param setID path int true "Card set ID"
// @Success 200 {object} ActivateSetResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/sets/{setID}/activate [post]
func HandleActivateSet(svc raritytable.Service, bus event.Bus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setID, ok := PathInt64(r, w, ParamSetID)
		if !ok {
			return
		}

		table, err := svc.ActivateSet(r.Context(), setID)
		if err != nil {
			logger.FromContext(r.Context()).Warn(LogMsgActivateFailed, LogFieldSetID, setID, LogFieldError, err)
			respondServiceError(w, err)
			return
		}

		if err := bus.Publish(r.Context(), event.NewSetActivatedEvent(table.SetID(), table.NonRepeating())); err != nil {
			logger.FromContext(r.Context()).Error(LogMsgPublishFailed, LogFieldSetID, setID, LogFieldError, err)
		}

		respondJSON(w, http.StatusOK, newActivateSetResponse(table))
	}
}

func newActivateSetResponse(table *raritytable.Table) ActivateSetResponse {
	resp := ActivateSetResponse{
		SetID:        table.SetID(),
		NonRepeating: table.NonRepeating(),
		Odds:         make(map[string]float64),
	}
	for _, rarity := range domain.AllRarities {
		if table.WeightOf(rarity) > 0 {
			resp.Odds[string(rarity)] = table.Probability(rarity)
		}
	}
	return resp
}
