package scoring

import (
	"maps"
	"slices"
	"time"
)

// PlayerScore is one player's score entry within exactly one round. Points is
// the authoritative running total of every rule contribution applied to the
// player in that round; Bonuses and Penalties mirror the bonus/penalty share
// of that total so a UI can show a breakdown. They are never summed
// independently into any other total.
type PlayerScore struct {
	PlayerID  string         `json:"playerId"`
	Points    int            `json:"points"`
	Bonuses   int            `json:"bonuses"`
	Penalties int            `json:"penalties"`
	RoundsWon int            `json:"roundsWon"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// RoundState is one scoring cycle within a match: a score row per player and
// an append-only log of every accepted event.
type RoundState struct {
	RoundNumber int                     `json:"roundNumber"`
	Scores      map[string]*PlayerScore `json:"scores"`
	Events      []ScoreEvent            `json:"events"`
	Metadata    map[string]any          `json:"metadata,omitempty"`
}

// Score returns the score row for playerID, creating it seeded at
// initialPoints if absent.
func (r *RoundState) Score(playerID string, initialPoints int) *PlayerScore {
	if s, ok := r.Scores[playerID]; ok {
		return s
	}
	s := &PlayerScore{PlayerID: playerID, Points: initialPoints}
	r.Scores[playerID] = s
	return s
}

// MatchState is the root aggregate for one match. It is mutated only by the
// engine that owns it; everything handed out across the engine boundary is a
// deep copy.
type MatchState struct {
	MatchID      string        `json:"matchId"`
	GameID       string        `json:"gameId"`
	Players      []string      `json:"players"`
	Rounds       []*RoundState `json:"rounds"`
	CurrentRound int           `json:"currentRound"`
	Revision     int64         `json:"revision"`
	StartedAt    time.Time     `json:"startedAt"`
	EndedAt      *time.Time    `json:"endedAt,omitempty"`
	WinnerIDs    []string      `json:"winnerIds,omitempty"`
}

// NewMatchState builds the initial state for a match: round 1 with a score
// row for every player seeded at initialPoints.
func NewMatchState(matchID, gameID string, players []string, initialPoints int) *MatchState {
	return &MatchState{
		MatchID:      matchID,
		GameID:       gameID,
		Players:      slices.Clone(players),
		Rounds:       []*RoundState{newRound(1, players, initialPoints)},
		CurrentRound: 1,
		StartedAt:    time.Now().UTC(),
	}
}

func newRound(number int, players []string, initialPoints int) *RoundState {
	scores := make(map[string]*PlayerScore, len(players))
	for _, p := range players {
		scores[p] = &PlayerScore{PlayerID: p, Points: initialPoints}
	}
	return &RoundState{RoundNumber: number, Scores: scores}
}

// Round returns the current round. CurrentRound is a 1-based index and always
// points at the last element of Rounds.
func (s *MatchState) Round() *RoundState {
	return s.Rounds[s.CurrentRound-1]
}

// Ended reports whether the match has reached its terminal state.
func (s *MatchState) Ended() bool {
	return s.EndedAt != nil
}

// Total returns a player's points summed across all rounds.
func (s *MatchState) Total(playerID string) int {
	total := 0
	for _, r := range s.Rounds {
		if sc, ok := r.Scores[playerID]; ok {
			total += sc.Points
		}
	}
	return total
}

// Clone returns a deep copy of the state. Event payloads are copied one level
// deep; events are immutable by contract so nested values are shared.
func (s *MatchState) Clone() *MatchState {
	out := *s
	out.Players = slices.Clone(s.Players)
	out.WinnerIDs = slices.Clone(s.WinnerIDs)
	if s.EndedAt != nil {
		t := *s.EndedAt
		out.EndedAt = &t
	}
	out.Rounds = make([]*RoundState, len(s.Rounds))
	for i, r := range s.Rounds {
		rc := &RoundState{
			RoundNumber: r.RoundNumber,
			Scores:      make(map[string]*PlayerScore, len(r.Scores)),
			Events:      make([]ScoreEvent, len(r.Events)),
			Metadata:    maps.Clone(r.Metadata),
		}
		for id, sc := range r.Scores {
			c := *sc
			c.Metadata = maps.Clone(sc.Metadata)
			rc.Scores[id] = &c
		}
		for j, ev := range r.Events {
			ec := ev
			ec.Payload = maps.Clone(ev.Payload)
			rc.Events[j] = ec
		}
		out.Rounds[i] = rc
	}
	return &out
}
