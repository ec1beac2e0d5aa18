package controller

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sharetube/playerctl/internal/repository/state"
	"github.com/sharetube/playerctl/pkg/rest"
)

func (c controller) getSessionState(w http.ResponseWriter, r *http.Request) {
	sessionId := chi.URLParam(r, "session-id")

	if err := c.controlService.Authorize(bearerToken(r), sessionId); err != nil {
		c.logger.InfoContext(r.Context(), "failed to authorize state request", "error", err)
		rest.WriteJSON(w, authStatus(err), rest.Envelope{"error": err.Error()})
		return
	}

	playerState, updatedAt, err := c.controlService.GetStoredState(r.Context(), sessionId)
	if err != nil {
		if errors.Is(err, state.ErrStateNotFound) {
			rest.WriteJSON(w, http.StatusNotFound, rest.Envelope{"error": err.Error()})
			return
		}

		c.logger.WarnContext(r.Context(), "failed to get stored state", "error", err)
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": err.Error()})
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{
		"state":      playerState,
		"updated_at": updatedAt,
	})
}
