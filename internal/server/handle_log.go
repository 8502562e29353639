package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tallykeep/scorekeeper/internal/match"
	"github.com/tallykeep/scorekeeper/internal/scoring"
)

func handleEventLog(matches *match.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matchID := chi.URLParam(r, "matchID")
		if _, err := matches.GetEngine(matchID); err != nil {
			writeError(w, http.StatusNotFound, "match not found")
			return
		}

		events, err := matches.LoadEvents(r.Context(), matchID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if events == nil {
			events = []scoring.ScoreEvent{}
		}
		writeJSON(w, http.StatusOK, events)
	}
}
