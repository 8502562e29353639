// Package games holds the declarative scoring configuration for every
// supported game. Each game lives in its own file as a ScoringConfig value —
// pure data plus small pure functions, no engine state, no I/O. Adding a game
// means adding a file and registering it in init.
package games

import (
	"sort"

	"github.com/tallykeep/scorekeeper/internal/scoring"
)

var catalog = make(map[string]scoring.ScoringConfig)

// Register adds a configuration to the catalog.
func Register(cfg scoring.ScoringConfig) {
	catalog[cfg.ID] = cfg
}

// Get retrieves a configuration by game id.
func Get(id string) (scoring.ScoringConfig, bool) {
	cfg, ok := catalog[id]
	return cfg, ok
}

// List returns all registered configurations ordered by id.
func List() []scoring.ScoringConfig {
	out := make([]scoring.ScoringConfig, 0, len(catalog))
	for _, cfg := range catalog {
		out = append(out, cfg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func init() {
	Register(Hearts())
	Register(Spades())
	Register(Rummy())
}

// creditRoundLeader bumps roundsWon for the player(s) with the highest point
// total in the current round. Shared round-end bookkeeping for games where
// the round leader is the top scorer.
func creditRoundLeader(state *scoring.MatchState) {
	round := state.Round()
	best := 0
	first := true
	for _, sc := range round.Scores {
		if first || sc.Points > best {
			best = sc.Points
			first = false
		}
	}
	if first {
		return
	}
	for _, sc := range round.Scores {
		if sc.Points == best {
			sc.RoundsWon++
		}
	}
}

// leadersByTotal returns the player(s) whose match total is best under the
// given comparison, ties included.
func leadersByTotal(state *scoring.MatchState, better func(candidate, best int) bool) []string {
	var winners []string
	best := 0
	for i, p := range state.Players {
		total := state.Total(p)
		switch {
		case i == 0 || better(total, best):
			winners = []string{p}
			best = total
		case total == best:
			winners = append(winners, p)
		}
	}
	return winners
}

func higherTotal(candidate, best int) bool { return candidate > best }
