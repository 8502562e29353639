package server

import (
	"net/http"
	"sort"

	"github.com/tallykeep/scorekeeper/internal/match"
)

// GameInfo describes one entry of the game catalog.
type GameInfo struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	MinPlayers int    `json:"minPlayers"`
	MaxPlayers int    `json:"maxPlayers"`
}

func handleListGames(matches *match.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		configs := matches.ListGames()
		out := make([]GameInfo, 0, len(configs))
		for _, cfg := range configs {
			out = append(out, GameInfo{
				ID:         cfg.ID,
				Name:       cfg.Name,
				MinPlayers: cfg.MinPlayers,
				MaxPlayers: cfg.MaxPlayers,
			})
		}
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

		writeJSON(w, http.StatusOK, out)
	}
}
