package scoring_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallykeep/scorekeeper/internal/scoring"
)

// testConfig is a minimal config exercising every pipeline stage: a scoring
// rule on trick_taken, a bonus rule keyed on bonus events, a penalty rule
// keyed on penalty events, a pre-event gate, and a win evaluator that ends
// the match after three rounds.
func testConfig() scoring.ScoringConfig {
	return scoring.ScoringConfig{
		ID:         "test",
		Name:       "Test Game",
		MinPlayers: 2,
		MaxPlayers: 4,
		ScoringRules: []scoring.ScoringRule{
			{
				EventType: scoring.EventTrickTaken,
				AppliesTo: func(playerID string, ctx scoring.Context) bool {
					return playerID == ctx.Event.PlayerID
				},
				Calculate: func(scoring.Context) int { return 10 },
			},
		},
		BonusRules: []scoring.BonusRule{
			{
				Name: "flourish",
				Validate: func(ctx scoring.Context) bool {
					return ctx.Event.Type == scoring.EventBonus
				},
				Calculate: func(ctx scoring.Context) int {
					n, _ := ctx.Event.PayloadInt("points")
					return n
				},
			},
		},
		PenaltyRules: []scoring.PenaltyRule{
			{
				Name: "foul",
				Validate: func(ctx scoring.Context) bool {
					return ctx.Event.Type == scoring.EventPenalty
				},
				Calculate: func(ctx scoring.Context) int {
					n, _ := ctx.Event.PayloadInt("points")
					return -n
				},
			},
		},
		PreEventValidate: func(ctx scoring.Context) scoring.Validation {
			if ctx.Event.PayloadBool("cheat") {
				return scoring.Invalid("cheating is frowned upon")
			}
			return scoring.Valid()
		},
		WinEvaluator: func(state *scoring.MatchState) scoring.WinResult {
			if state.CurrentRound >= 3 {
				return scoring.WinResult{Done: true, WinnerIDs: []string{"p1"}}
			}
			return scoring.WinResult{}
		},
	}
}

func newTestEngine(t *testing.T) *scoring.Engine {
	t.Helper()
	cfg := testConfig()
	return scoring.NewEngine(cfg, scoring.NewMatchState("m1", cfg.ID, []string{"p1", "p2"}, cfg.InitialPoints))
}

func TestSubmitEventScoresEventPlayer(t *testing.T) {
	eng := newTestEngine(t)

	err := eng.SubmitEvent(scoring.ScoreEvent{ID: "e1", Type: scoring.EventTrickTaken, PlayerID: "p1"})
	require.NoError(t, err)

	state := eng.State()
	assert.Equal(t, 10, state.Round().Scores["p1"].Points)
	assert.Equal(t, 0, state.Round().Scores["p2"].Points)
	assert.Equal(t, int64(1), state.Revision)
	require.Len(t, state.Round().Events, 1)
	assert.Equal(t, "e1", state.Round().Events[0].ID)
	assert.False(t, state.Round().Events[0].Timestamp.IsZero())
}

func TestSubmitEventRejectionLeavesStateUntouched(t *testing.T) {
	eng := newTestEngine(t)
	require.NoError(t, eng.SubmitEvent(scoring.ScoreEvent{ID: "e1", Type: scoring.EventTrickTaken, PlayerID: "p1"}))

	before := eng.State()

	err := eng.SubmitEvent(scoring.ScoreEvent{
		ID:       "e2",
		Type:     scoring.EventTrickTaken,
		PlayerID: "p1",
		Payload:  map[string]any{"cheat": true},
	})

	var vErr *scoring.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "cheating is frowned upon", vErr.Reason)
	assert.Equal(t, before, eng.State())
}

func TestSubmitEventDuplicateID(t *testing.T) {
	eng := newTestEngine(t)
	ev := scoring.ScoreEvent{ID: "e1", Type: scoring.EventTrickTaken, PlayerID: "p1"}
	require.NoError(t, eng.SubmitEvent(ev))

	err := eng.SubmitEvent(ev)
	var vErr *scoring.ValidationError
	require.ErrorAs(t, err, &vErr)

	state := eng.State()
	assert.Equal(t, 10, state.Round().Scores["p1"].Points)
	assert.Equal(t, int64(1), state.Revision)
}

func TestBonusAndPenaltyTallies(t *testing.T) {
	eng := newTestEngine(t)

	require.NoError(t, eng.SubmitEvent(scoring.ScoreEvent{
		Type:     scoring.EventBonus,
		PlayerID: "p2",
		Payload:  map[string]any{"points": 5},
	}))
	require.NoError(t, eng.SubmitEvent(scoring.ScoreEvent{
		Type:    scoring.EventPenalty,
		Payload: map[string]any{"playerId": "p2", "points": 3},
	}))

	sc := eng.State().Round().Scores["p2"]
	assert.Equal(t, 2, sc.Points)
	assert.Equal(t, 5, sc.Bonuses)
	assert.Equal(t, -3, sc.Penalties)
}

func TestRoundEndAdvancesRound(t *testing.T) {
	eng := newTestEngine(t)
	require.NoError(t, eng.SubmitEvent(scoring.ScoreEvent{Type: scoring.EventTrickTaken, PlayerID: "p1"}))

	require.NoError(t, eng.SubmitEvent(scoring.ScoreEvent{Type: scoring.EventRoundEnd}))

	state := eng.State()
	require.Len(t, state.Rounds, 2)
	assert.Equal(t, 2, state.CurrentRound)
	assert.Equal(t, 2, state.Round().RoundNumber)

	// The finished round keeps its scores and event log.
	assert.Equal(t, 10, state.Rounds[0].Scores["p1"].Points)
	assert.Len(t, state.Rounds[0].Events, 2)
	assert.Empty(t, state.Round().Events)
	assert.Equal(t, 10, state.Total("p1"))
}

func TestWinEvaluatorEndsMatchAtRoundBoundary(t *testing.T) {
	eng := newTestEngine(t)

	for i := 0; i < 3; i++ {
		require.NoError(t, eng.SubmitEvent(scoring.ScoreEvent{Type: scoring.EventRoundEnd}))
	}

	state := eng.State()
	assert.True(t, state.Ended())
	assert.Equal(t, []string{"p1"}, state.WinnerIDs)
	// No fourth round is opened once the match concludes.
	assert.Len(t, state.Rounds, 3)
}

func TestMatchEndIsTerminal(t *testing.T) {
	eng := newTestEngine(t)
	require.NoError(t, eng.SubmitEvent(scoring.ScoreEvent{Type: scoring.EventMatchEnd}))

	ended := eng.State()
	require.True(t, ended.Ended())

	err := eng.SubmitEvent(scoring.ScoreEvent{Type: scoring.EventTrickTaken, PlayerID: "p1"})
	require.ErrorIs(t, err, scoring.ErrMatchEnded)
	assert.Equal(t, ended, eng.State())
}

func TestOnUpdateNotifiesPerTransition(t *testing.T) {
	eng := newTestEngine(t)

	var got []int64
	unsubscribe := eng.OnUpdate(func(state *scoring.MatchState) {
		got = append(got, state.Revision)
	})

	require.NoError(t, eng.SubmitEvent(scoring.ScoreEvent{Type: scoring.EventTrickTaken, PlayerID: "p1"}))
	require.Error(t, eng.SubmitEvent(scoring.ScoreEvent{Type: scoring.EventTrickTaken, Payload: map[string]any{"cheat": true}}))
	require.NoError(t, eng.SubmitEvent(scoring.ScoreEvent{Type: scoring.EventTrickTaken, PlayerID: "p2"}))

	// One notification per accepted mutation, none for the rejection.
	assert.Equal(t, []int64{1, 2}, got)

	unsubscribe()
	require.NoError(t, eng.SubmitEvent(scoring.ScoreEvent{Type: scoring.EventTrickTaken, PlayerID: "p1"}))
	assert.Equal(t, []int64{1, 2}, got)
}

func TestSetStateReplacesWholesaleAndNotifies(t *testing.T) {
	eng := newTestEngine(t)

	notified := 0
	eng.OnUpdate(func(*scoring.MatchState) { notified++ })

	replacement := scoring.NewMatchState("m1", "test", []string{"p1", "p2"}, 0)
	replacement.Revision = 12
	replacement.Round().Scores["p2"].Points = 30
	eng.SetState(replacement)

	state := eng.State()
	assert.Equal(t, int64(12), state.Revision)
	assert.Equal(t, 30, state.Round().Scores["p2"].Points)
	assert.Equal(t, 1, notified)

	// The engine owns a copy, not the caller's value.
	replacement.Round().Scores["p2"].Points = -1
	assert.Equal(t, 30, eng.State().Round().Scores["p2"].Points)
}

func TestSetStateIfNewer(t *testing.T) {
	eng := newTestEngine(t)
	require.NoError(t, eng.SubmitEvent(scoring.ScoreEvent{Type: scoring.EventTrickTaken, PlayerID: "p1"}))
	require.NoError(t, eng.SubmitEvent(scoring.ScoreEvent{Type: scoring.EventTrickTaken, PlayerID: "p1"}))

	stale := eng.State()
	stale.Revision = 1
	stale.Round().Scores["p1"].Points = 999
	assert.False(t, eng.SetStateIfNewer(stale), "stale revision must not apply")
	assert.Equal(t, 20, eng.State().Round().Scores["p1"].Points)

	newer := eng.State()
	newer.Revision = 7
	newer.Round().Scores["p1"].Points = 50
	assert.True(t, eng.SetStateIfNewer(newer))

	state := eng.State()
	assert.Equal(t, int64(7), state.Revision)
	assert.Equal(t, 50, state.Round().Scores["p1"].Points)
}

func TestHydratedEngineRemembersEventIDs(t *testing.T) {
	cfg := testConfig()
	seed := scoring.NewEngine(cfg, scoring.NewMatchState("m1", cfg.ID, []string{"p1", "p2"}, 0))
	require.NoError(t, seed.SubmitEvent(scoring.ScoreEvent{ID: "e1", Type: scoring.EventTrickTaken, PlayerID: "p1"}))

	// A fresh engine adopting the persisted state must still reject replays.
	eng := scoring.NewEngine(cfg, seed.State())
	err := eng.SubmitEvent(scoring.ScoreEvent{ID: "e1", Type: scoring.EventTrickTaken, PlayerID: "p1"})

	var vErr *scoring.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Reason, "duplicate")
}

func TestStateSnapshotsAreIsolated(t *testing.T) {
	eng := newTestEngine(t)
	require.NoError(t, eng.SubmitEvent(scoring.ScoreEvent{Type: scoring.EventTrickTaken, PlayerID: "p1"}))

	snap := eng.State()
	snap.Round().Scores["p1"].Points = -1000
	snap.Players[0] = "intruder"

	state := eng.State()
	assert.Equal(t, 10, state.Round().Scores["p1"].Points)
	assert.Equal(t, []string{"p1", "p2"}, state.Players)
}
