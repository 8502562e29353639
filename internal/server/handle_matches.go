package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tallykeep/scorekeeper/internal/match"
	"github.com/tallykeep/scorekeeper/internal/scoring"
)

// CreateMatchRequest is the request body for POST /api/matches.
type CreateMatchRequest struct {
	GameID  string   `json:"gameId"`
	MatchID string   `json:"matchId,omitempty"`
	Players []string `json:"players"`
}

// EventRequest is the request body for POST /api/matches/{matchID}/events.
type EventRequest struct {
	ID       string         `json:"id,omitempty"`
	Type     string         `json:"type"`
	PlayerID string         `json:"playerId,omitempty"`
	Payload  map[string]any `json:"payload,omitempty"`
}

func handleCreateMatch(matches *match.Registry, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateMatchRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		req.GameID = strings.TrimSpace(req.GameID)
		if req.GameID == "" {
			writeError(w, http.StatusBadRequest, "gameId is required")
			return
		}
		if len(req.Players) == 0 {
			writeError(w, http.StatusBadRequest, "players are required")
			return
		}
		matchID := strings.TrimSpace(req.MatchID)
		if matchID == "" {
			matchID = uuid.NewString()
		}

		eng, err := matches.CreateMatch(r.Context(), req.GameID, matchID, req.Players)
		switch {
		case errors.Is(err, match.ErrUnknownGame):
			writeError(w, http.StatusNotFound, "unknown game "+req.GameID)
			return
		case errors.Is(err, match.ErrMatchExists):
			writeError(w, http.StatusConflict, "match already exists")
			return
		case err != nil:
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		// Fan engine updates out to SSE subscribers.
		eng.OnUpdate(func(state *scoring.MatchState) {
			broker.Publish(matchID, state)
		})

		writeJSON(w, http.StatusCreated, eng.State())
	}
}

func handleMatchState(matches *match.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eng, err := matches.GetEngine(chi.URLParam(r, "matchID"))
		if err != nil {
			writeError(w, http.StatusNotFound, "match not found")
			return
		}
		writeJSON(w, http.StatusOK, eng.State())
	}
}

func handleSubmitEvent(matches *match.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matchID := chi.URLParam(r, "matchID")

		var req EventRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		eventType := scoring.EventType(req.Type)
		if !knownEventType(eventType) {
			writeError(w, http.StatusBadRequest, "unknown event type "+req.Type)
			return
		}
		if req.ID == "" {
			req.ID = uuid.NewString()
		}

		event := scoring.ScoreEvent{
			ID:        req.ID,
			Type:      eventType,
			PlayerID:  req.PlayerID,
			Payload:   req.Payload,
			Timestamp: time.Now().UTC(),
		}

		err := matches.SubmitEvent(r.Context(), matchID, event)
		var vErr *scoring.ValidationError
		switch {
		case errors.Is(err, match.ErrUnknownMatch):
			writeError(w, http.StatusNotFound, "match not found")
			return
		case errors.Is(err, scoring.ErrMatchEnded):
			writeError(w, http.StatusConflict, "match has ended")
			return
		case errors.As(err, &vErr):
			writeError(w, http.StatusUnprocessableEntity, vErr.Reason)
			return
		case err != nil:
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		eng, err := matches.GetEngine(matchID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, eng.State())
	}
}

func knownEventType(t scoring.EventType) bool {
	switch t {
	case scoring.EventCardPlayed, scoring.EventTrickTaken, scoring.EventBidPlaced,
		scoring.EventMeldDeclared, scoring.EventPenalty, scoring.EventBonus,
		scoring.EventRoundEnd, scoring.EventMatchEnd:
		return true
	}
	return false
}
