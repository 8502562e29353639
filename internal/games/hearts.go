package games

import (
	"strings"

	"github.com/tallykeep/scorekeeper/internal/scoring"
)

// Hearts scoring: every heart taken costs 1 point, the queen of spades costs
// 13, for 26 penalty points per round. Deltas are negative — fewer penalty
// points is better. A player who takes all 26 shoots the moon: the bonus
// reverses the penalty into a positive swing of the same size.
const (
	heartsHeartValue = -1
	heartsQueenValue = -13
	heartsMoonPoints = heartsHeartValue*13 + heartsQueenValue // -26
	heartsMoonBonus  = -2 * heartsMoonPoints                  // +52, net +26 for the shooter
	heartsCeiling    = -100
)

const heartsQueenOfSpades = "QS"

// Hearts returns the scoring configuration for Hearts. Cards arrive as
// rank-then-suit strings ("7H", "QS").
func Hearts() scoring.ScoringConfig {
	return scoring.ScoringConfig{
		ID:         "hearts",
		Name:       "Hearts",
		MinPlayers: 3,
		MaxPlayers: 6,
		ScoringRules: []scoring.ScoringRule{
			{
				EventType: scoring.EventCardPlayed,
				AppliesTo: eventPlayerOnly,
				Calculate: func(ctx scoring.Context) int {
					return heartsCardValue(ctx.Event.PayloadString("card"))
				},
			},
		},
		BonusRules: []scoring.BonusRule{
			{
				Name: "shoot_the_moon",
				Validate: func(ctx scoring.Context) bool {
					if ctx.Event.Type != scoring.EventRoundEnd {
						return false
					}
					shooter := ctx.Event.TargetPlayer()
					if shooter == "" {
						return false
					}
					sc, ok := ctx.State.Round().Scores[shooter]
					return ok && sc.Points == heartsMoonPoints
				},
				Calculate: func(scoring.Context) int { return heartsMoonBonus },
			},
		},
		RoundEndAdjust: creditRoundLeader,
		WinEvaluator:   heartsWinEvaluator,
	}
}

// heartsCardValue returns the penalty delta for a taken card: -1 per heart,
// -13 for the queen of spades, 0 otherwise.
func heartsCardValue(card string) int {
	if card == heartsQueenOfSpades {
		return heartsQueenValue
	}
	if strings.HasSuffix(card, "H") {
		return heartsHeartValue
	}
	return 0
}

// heartsWinEvaluator ends the match once any player crosses the penalty
// ceiling. The winner is the player with the fewest penalty points, i.e. the
// highest signed total; ties are allowed.
func heartsWinEvaluator(state *scoring.MatchState) scoring.WinResult {
	crossed := false
	for _, p := range state.Players {
		if state.Total(p) <= heartsCeiling {
			crossed = true
			break
		}
	}
	if !crossed {
		return scoring.WinResult{}
	}
	return scoring.WinResult{Done: true, WinnerIDs: leadersByTotal(state, higherTotal)}
}

// eventPlayerOnly restricts a scoring rule to the player named on the event.
func eventPlayerOnly(playerID string, ctx scoring.Context) bool {
	return playerID == ctx.Event.PlayerID
}
