package scoring

// Context is the read-only view passed to every rule, validator, and
// evaluator: the match state as it stands plus the incoming event. Rules must
// be pure functions of this context.
type Context struct {
	State *MatchState
	Event ScoreEvent
}

// Validation is the outcome of a pre-event gate. Reason is a human-readable
// explanation shown to the caller when Valid is false.
type Validation struct {
	Valid  bool
	Reason string
}

// Valid is the accepting validation result.
func Valid() Validation { return Validation{Valid: true} }

// Invalid rejects an event with the given reason.
func Invalid(reason string) Validation { return Validation{Reason: reason} }

// WinResult is what a win evaluator reports after a round boundary.
type WinResult struct {
	Done      bool
	WinnerIDs []string
}

// ScoringRule maps one event type to a per-player point delta. When the
// event's type matches, Calculate runs once per player that AppliesTo admits
// (every player when AppliesTo is nil). Validate, when set, gates the whole
// rule for this event.
type ScoringRule struct {
	EventType EventType
	Validate  func(ctx Context) bool
	AppliesTo func(playerID string, ctx Context) bool
	Calculate func(ctx Context) int
}

// BonusRule is a round-scoped adjustment evaluated against every accepted
// event independently of its type. When Validate holds, Calculate's delta is
// added to the target player's points and mirrored into their bonus tally.
type BonusRule struct {
	Name      string
	Validate  func(ctx Context) bool
	Calculate func(ctx Context) int
}

// PenaltyRule is the negative counterpart of BonusRule.
type PenaltyRule struct {
	Name      string
	Validate  func(ctx Context) bool
	Calculate func(ctx Context) int
}

// ScoringConfig is the complete per-game policy. Configs are declarative data
// plus small pure functions; they are immutable once registered and adding a
// game requires no engine changes.
type ScoringConfig struct {
	ID         string
	Name       string
	MinPlayers int
	MaxPlayers int

	// InitialPoints seeds every new score row; zero for most games.
	InitialPoints int

	ScoringRules []ScoringRule
	BonusRules   []BonusRule
	PenaltyRules []PenaltyRule

	// PreEventValidate gates every event before any rule runs. Nil means all
	// events are accepted.
	PreEventValidate func(ctx Context) Validation

	// RoundEndAdjust is a bookkeeping hook (e.g. incrementing roundsWon)
	// invoked at round boundaries, outside the rule pipeline.
	RoundEndAdjust func(state *MatchState)

	// WinEvaluator decides after each round boundary whether the match has
	// concluded and who won. It must be total for any reachable state.
	WinEvaluator func(state *MatchState) WinResult
}
