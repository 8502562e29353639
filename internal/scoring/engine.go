package scoring

import (
	"sort"
	"sync"
	"time"
)

// ValidationError reports an event rejected before any state mutation. The
// reason is meant to be shown to the player as-is.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return "event rejected: " + e.Reason }

// ErrMatchEnded is returned for any event submitted after the match reached
// its terminal state. The terminal state itself is never touched again.
var ErrMatchEnded = &ValidationError{Reason: "match has ended"}

// Engine owns one match's mutable state and applies a ScoringConfig to
// incoming events. It is the only mutator of its MatchState; every snapshot
// handed out is a deep copy. All operations are safe for concurrent use, and
// each submission fully validates, mutates, and notifies before returning.
type Engine struct {
	mu    sync.Mutex
	cfg   ScoringConfig
	state *MatchState

	subs    map[int]func(*MatchState)
	nextSub int

	// Accepted event ids, for duplicate rejection. Rebuilt on SetState.
	seen map[string]struct{}
}

// NewEngine creates an engine owning state, scored under cfg.
func NewEngine(cfg ScoringConfig, state *MatchState) *Engine {
	e := &Engine{
		cfg:  cfg,
		subs: make(map[int]func(*MatchState)),
	}
	e.adopt(state)
	return e
}

// Config returns the engine's immutable scoring configuration.
func (e *Engine) Config() ScoringConfig { return e.cfg }

// State returns a deep-copy snapshot of the current match state.
func (e *Engine) State() *MatchState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

// SetState replaces the in-memory state wholesale, without running any rules
// or validation. Used to hydrate from persistence; callers are responsible
// for handing over well-formed state for the same game. Subscribers are
// notified once.
func (e *Engine) SetState(state *MatchState) {
	e.mu.Lock()
	e.adopt(state)
	subs, snap := e.snapshotLocked()
	e.mu.Unlock()
	notify(subs, snap)
}

// SetStateIfNewer applies state only when its revision is strictly greater
// than the current one, and reports whether it was applied. This is the guard
// that keeps a stale hydration overlay from clobbering newer state.
func (e *Engine) SetStateIfNewer(state *MatchState) bool {
	e.mu.Lock()
	if state.Revision <= e.state.Revision {
		e.mu.Unlock()
		return false
	}
	e.adopt(state)
	subs, snap := e.snapshotLocked()
	e.mu.Unlock()
	notify(subs, snap)
	return true
}

// OnUpdate registers a callback invoked synchronously with a state snapshot
// after every accepted mutation and every SetState — one notification per
// state transition, no coalescing. The returned function unsubscribes.
func (e *Engine) OnUpdate(fn func(*MatchState)) func() {
	e.mu.Lock()
	id := e.nextSub
	e.nextSub++
	e.subs[id] = fn
	e.mu.Unlock()
	return func() {
		e.mu.Lock()
		delete(e.subs, id)
		e.mu.Unlock()
	}
}

// SubmitEvent validates event against the configuration and, if accepted,
// applies every matching rule, appends the event to the round log, advances
// the round or match lifecycle, and notifies subscribers. A returned
// *ValidationError means the event was discarded with no state change.
func (e *Engine) SubmitEvent(event ScoreEvent) error {
	e.mu.Lock()

	if e.state.Ended() {
		e.mu.Unlock()
		return ErrMatchEnded
	}
	if event.ID != "" {
		if _, dup := e.seen[event.ID]; dup {
			e.mu.Unlock()
			return &ValidationError{Reason: "duplicate event id " + event.ID}
		}
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	ctx := Context{State: e.state, Event: event}

	if e.cfg.PreEventValidate != nil {
		if v := e.cfg.PreEventValidate(ctx); !v.Valid {
			e.mu.Unlock()
			return &ValidationError{Reason: v.Reason}
		}
	}

	round := e.state.Round()

	for _, rule := range e.cfg.ScoringRules {
		if rule.EventType != event.Type {
			continue
		}
		if rule.Validate != nil && !rule.Validate(ctx) {
			continue
		}
		for _, playerID := range e.state.Players {
			if rule.AppliesTo != nil && !rule.AppliesTo(playerID, ctx) {
				continue
			}
			round.Score(playerID, e.cfg.InitialPoints).Points += rule.Calculate(ctx)
		}
	}

	for _, rule := range e.cfg.BonusRules {
		if !rule.Validate(ctx) {
			continue
		}
		if target := event.TargetPlayer(); target != "" {
			delta := rule.Calculate(ctx)
			sc := round.Score(target, e.cfg.InitialPoints)
			sc.Points += delta
			sc.Bonuses += delta
		}
	}
	for _, rule := range e.cfg.PenaltyRules {
		if !rule.Validate(ctx) {
			continue
		}
		if target := event.TargetPlayer(); target != "" {
			delta := rule.Calculate(ctx)
			sc := round.Score(target, e.cfg.InitialPoints)
			sc.Points += delta
			sc.Penalties += delta
		}
	}

	round.Events = append(round.Events, event)
	if event.ID != "" {
		e.seen[event.ID] = struct{}{}
	}
	e.state.Revision++

	switch event.Type {
	case EventRoundEnd:
		if e.cfg.RoundEndAdjust != nil {
			e.cfg.RoundEndAdjust(e.state)
		}
		win := e.cfg.WinEvaluator(e.state)
		if win.Done {
			e.terminate(win.WinnerIDs)
		} else {
			next := newRound(e.state.CurrentRound+1, e.state.Players, e.cfg.InitialPoints)
			e.state.Rounds = append(e.state.Rounds, next)
			e.state.CurrentRound++
		}
	case EventMatchEnd:
		win := e.cfg.WinEvaluator(e.state)
		e.terminate(win.WinnerIDs)
	}

	subs, snap := e.snapshotLocked()
	e.mu.Unlock()
	notify(subs, snap)
	return nil
}

// terminate sets the terminal state exactly once. Callers hold the lock and
// have already checked the match is still active.
func (e *Engine) terminate(winnerIDs []string) {
	now := time.Now().UTC()
	e.state.EndedAt = &now
	e.state.WinnerIDs = winnerIDs
}

// adopt takes ownership of a deep copy of state and rebuilds the seen-id set
// from its event logs.
func (e *Engine) adopt(state *MatchState) {
	e.state = state.Clone()
	e.seen = make(map[string]struct{})
	for _, r := range e.state.Rounds {
		for _, ev := range r.Events {
			if ev.ID != "" {
				e.seen[ev.ID] = struct{}{}
			}
		}
	}
}

// snapshotLocked collects subscribers in registration order plus one shared
// snapshot, so notification happens outside the lock but stays deterministic.
func (e *Engine) snapshotLocked() ([]func(*MatchState), *MatchState) {
	ids := make([]int, 0, len(e.subs))
	for id := range e.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	subs := make([]func(*MatchState), len(ids))
	for i, id := range ids {
		subs[i] = e.subs[id]
	}
	return subs, e.state.Clone()
}

func notify(subs []func(*MatchState), snap *MatchState) {
	for _, fn := range subs {
		fn(snap)
	}
}
