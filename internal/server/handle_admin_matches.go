package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tallykeep/scorekeeper/internal/match"
)

func handleAdminListMatches(matches *match.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		infos, err := matches.ListMatches(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if infos == nil {
			infos = []match.Info{}
		}
		writeJSON(w, http.StatusOK, infos)
	}
}

func handleAdminDeleteMatch(logger *slog.Logger, matches *match.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matchID := chi.URLParam(r, "matchID")
		if err := matches.DeleteMatch(r.Context(), matchID); err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		logger.Info("match deleted", "match_id", matchID, "admin", adminFrom(r).Email)
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
