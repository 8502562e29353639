package games

import (
	"strconv"

	"github.com/tallykeep/scorekeeper/internal/scoring"
)

// Rummy (gin) scoring: a declared meld scores the sum of its card face
// values — ace and court cards are worth 10, numerals their rank. At round
// end any leftover deadwood counts against the player, and going gin (zero
// deadwood) earns a flat bonus.
const (
	rummyFaceValue = 10
	rummyGinBonus  = 25
	rummyMinMeld   = 3
	rummyRounds    = 5
)

// Rummy returns the scoring configuration for Rummy. Melds arrive as a list
// of rank strings in the payload ("A", "K", "7"); round-end events carry the
// player's deadwood count and a gin flag.
func Rummy() scoring.ScoringConfig {
	return scoring.ScoringConfig{
		ID:         "rummy",
		Name:       "Rummy",
		MinPlayers: 2,
		MaxPlayers: 4,
		ScoringRules: []scoring.ScoringRule{
			{
				EventType: scoring.EventMeldDeclared,
				AppliesTo: eventPlayerOnly,
				Calculate: func(ctx scoring.Context) int {
					return meldValue(ctx.Event.PayloadStrings("cards"))
				},
			},
		},
		BonusRules: []scoring.BonusRule{
			{
				Name: "gin",
				Validate: func(ctx scoring.Context) bool {
					if ctx.Event.Type != scoring.EventRoundEnd {
						return false
					}
					deadwood, _ := ctx.Event.PayloadInt("deadwood")
					return ctx.Event.PayloadBool("gin") && deadwood == 0
				},
				Calculate: func(scoring.Context) int { return rummyGinBonus },
			},
		},
		PenaltyRules: []scoring.PenaltyRule{
			{
				Name: "deadwood",
				Validate: func(ctx scoring.Context) bool {
					if ctx.Event.Type != scoring.EventRoundEnd {
						return false
					}
					deadwood, ok := ctx.Event.PayloadInt("deadwood")
					return ok && deadwood > 0
				},
				Calculate: func(ctx scoring.Context) int {
					deadwood, _ := ctx.Event.PayloadInt("deadwood")
					return -deadwood
				},
			},
		},
		PreEventValidate: rummyValidate,
		RoundEndAdjust:   creditRoundLeader,
		WinEvaluator:     fixedRoundsEvaluator(rummyRounds),
	}
}

func rummyValidate(ctx scoring.Context) scoring.Validation {
	switch ctx.Event.Type {
	case scoring.EventMeldDeclared:
		if len(ctx.Event.PayloadStrings("cards")) < rummyMinMeld {
			return scoring.Invalid("a meld requires at least three cards")
		}
	case scoring.EventRoundEnd:
		deadwood, _ := ctx.Event.PayloadInt("deadwood")
		if ctx.Event.PayloadBool("gin") && deadwood != 0 {
			return scoring.Invalid("cannot declare gin with deadwood remaining")
		}
	}
	return scoring.Valid()
}

// meldValue sums the face values of a meld's cards.
func meldValue(cards []string) int {
	total := 0
	for _, rank := range cards {
		total += cardValue(rank)
	}
	return total
}

// cardValue returns the rummy face value of a card rank. Ace, king, queen,
// and jack are worth 10; numerals are worth their rank.
func cardValue(rank string) int {
	switch rank {
	case "A", "K", "Q", "J":
		return rummyFaceValue
	default:
		n, err := strconv.Atoi(rank)
		if err != nil {
			return 0
		}
		return n
	}
}
