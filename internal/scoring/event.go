// Package scoring holds the core domain types and the match scoring engine.
// It has zero external dependencies — everything here is pure Go, so rules
// stay deterministic and replayable from an event log.
package scoring

import (
	"encoding/json"
	"time"
)

// EventType is the fixed vocabulary of score event types the engine accepts.
type EventType string

const (
	EventCardPlayed   EventType = "card_played"
	EventTrickTaken   EventType = "trick_taken"
	EventBidPlaced    EventType = "bid_placed"
	EventMeldDeclared EventType = "meld_declared"
	EventPenalty      EventType = "penalty"
	EventBonus        EventType = "bonus"
	EventRoundEnd     EventType = "round_end"
	EventMatchEnd     EventType = "match_end"
)

// ScoreEvent is an immutable fact describing something that happened in a
// match. Once accepted it is appended verbatim to the current round's event
// log and never mutated or deleted.
type ScoreEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	PlayerID  string         `json:"playerId,omitempty"`
	Payload   map[string]any `json:"payload,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// PayloadString returns the payload value under key as a string.
func (e ScoreEvent) PayloadString(key string) string {
	s, _ := e.Payload[key].(string)
	return s
}

// PayloadInt returns the payload value under key as an int. Numbers arrive as
// float64 or json.Number after a JSON round trip, so all three forms are
// accepted.
func (e ScoreEvent) PayloadInt(key string) (int, bool) {
	switch v := e.Payload[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}

// PayloadBool returns the payload value under key as a bool.
func (e ScoreEvent) PayloadBool(key string) bool {
	b, _ := e.Payload[key].(bool)
	return b
}

// PayloadStrings returns the payload value under key as a string slice.
// Handles both []string and the []any produced by JSON decoding.
func (e ScoreEvent) PayloadStrings(key string) []string {
	switch v := e.Payload[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// TargetPlayer resolves the player a bonus or penalty applies to: the event's
// own playerId, or for round-scoped adjustments a playerId field inside the
// payload.
func (e ScoreEvent) TargetPlayer() string {
	if e.PlayerID != "" {
		return e.PlayerID
	}
	return e.PayloadString("playerId")
}
