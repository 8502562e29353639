package games

import (
	"fmt"

	"github.com/tallykeep/scorekeeper/internal/scoring"
)

// Spades scoring: 10 points per trick taken, a made-bid bonus of bid x 10
// when a player takes at least their bid, and a sandbag penalty when they
// overshoot the bid by more than the bag margin. The match runs a fixed
// number of rounds; highest total wins.
const (
	spadesTrickValue    = 10
	spadesBidMultiplier = 10
	spadesBagMargin     = 2
	spadesBagPenalty    = -50
	spadesMaxBid        = 13
	spadesRounds        = 10
)

// Spades returns the scoring configuration for Spades.
func Spades() scoring.ScoringConfig {
	return scoring.ScoringConfig{
		ID:         "spades",
		Name:       "Spades",
		MinPlayers: 4,
		MaxPlayers: 4,
		ScoringRules: []scoring.ScoringRule{
			{
				EventType: scoring.EventTrickTaken,
				AppliesTo: eventPlayerOnly,
				Calculate: func(scoring.Context) int { return spadesTrickValue },
			},
		},
		BonusRules: []scoring.BonusRule{
			{
				Name: "made_bid",
				Validate: func(ctx scoring.Context) bool {
					if ctx.Event.Type != scoring.EventRoundEnd {
						return false
					}
					round := ctx.State.Round()
					target := ctx.Event.TargetPlayer()
					bid, ok := roundBid(round, target)
					return ok && trickCount(round, target) >= bid
				},
				Calculate: func(ctx scoring.Context) int {
					bid, _ := roundBid(ctx.State.Round(), ctx.Event.TargetPlayer())
					return bid * spadesBidMultiplier
				},
			},
		},
		PenaltyRules: []scoring.PenaltyRule{
			{
				Name: "sandbags",
				Validate: func(ctx scoring.Context) bool {
					if ctx.Event.Type != scoring.EventRoundEnd {
						return false
					}
					round := ctx.State.Round()
					target := ctx.Event.TargetPlayer()
					bid, ok := roundBid(round, target)
					return ok && trickCount(round, target) > bid+spadesBagMargin
				},
				Calculate: func(scoring.Context) int { return spadesBagPenalty },
			},
		},
		PreEventValidate: spadesValidate,
		RoundEndAdjust:   creditRoundLeader,
		WinEvaluator:     fixedRoundsEvaluator(spadesRounds),
	}
}

// spadesValidate gates bids and tricks: a bid must be in range and unique per
// player per round, and a trick cannot be taken before bidding.
func spadesValidate(ctx scoring.Context) scoring.Validation {
	round := ctx.State.Round()
	switch ctx.Event.Type {
	case scoring.EventBidPlaced:
		bid, ok := ctx.Event.PayloadInt("bid")
		if !ok || bid < 0 || bid > spadesMaxBid {
			return scoring.Invalid(fmt.Sprintf("bid must be between 0 and %d", spadesMaxBid))
		}
		if _, already := roundBid(round, ctx.Event.PlayerID); already {
			return scoring.Invalid("player has already bid this round")
		}
	case scoring.EventTrickTaken:
		if _, ok := roundBid(round, ctx.Event.PlayerID); !ok {
			return scoring.Invalid("cannot take a trick before bidding")
		}
	}
	return scoring.Valid()
}

// roundBid returns the bid a player placed this round, scanning the round's
// event log.
func roundBid(round *scoring.RoundState, playerID string) (int, bool) {
	for _, ev := range round.Events {
		if ev.Type == scoring.EventBidPlaced && ev.PlayerID == playerID {
			if bid, ok := ev.PayloadInt("bid"); ok {
				return bid, true
			}
		}
	}
	return 0, false
}

// trickCount returns how many tricks a player has taken this round.
func trickCount(round *scoring.RoundState, playerID string) int {
	n := 0
	for _, ev := range round.Events {
		if ev.Type == scoring.EventTrickTaken && ev.PlayerID == playerID {
			n++
		}
	}
	return n
}

// fixedRoundsEvaluator ends the match once the given number of rounds has
// completed; the highest total wins, ties allowed. The evaluator runs after
// round-end bookkeeping but before a new round is created, so CurrentRound
// equals the number of completed rounds at that point.
func fixedRoundsEvaluator(rounds int) func(*scoring.MatchState) scoring.WinResult {
	return func(state *scoring.MatchState) scoring.WinResult {
		if state.CurrentRound < rounds {
			return scoring.WinResult{}
		}
		return scoring.WinResult{Done: true, WinnerIDs: leadersByTotal(state, higherTotal)}
	}
}
