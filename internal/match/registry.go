// Package match maps game ids to scoring configurations and match ids to
// live engines, and owns the hydration/persistence plumbing around each
// engine. Persistence is best effort: failures are logged and absorbed so
// scoring keeps working even when storage is down.
package match

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tallykeep/scorekeeper/internal/scoring"
)

var (
	ErrUnknownGame  = errors.New("unknown game")
	ErrUnknownMatch = errors.New("unknown match")
	ErrMatchExists  = errors.New("match already exists")
)

// ErrNotFound is returned by state stores when no state exists for a match.
var ErrNotFound = errors.New("not found")

// Info is the listing row for a stored match.
type Info struct {
	MatchID   string    `json:"matchId"`
	GameID    string    `json:"gameId"`
	Revision  int64     `json:"revision"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// StateStore loads and saves a match's full serialized state.
type StateStore interface {
	LoadState(ctx context.Context, matchID string) (*scoring.MatchState, error)
	SaveState(ctx context.Context, matchID, gameID string, state *scoring.MatchState) error
}

// Lister enumerates stored matches.
type Lister interface {
	ListMatches(ctx context.Context) ([]Info, error)
}

// RemoteStore is the network-backed store: state plus administrative
// operations.
type RemoteStore interface {
	StateStore
	Lister
	DeleteMatch(ctx context.Context, matchID string) error
}

// EventLog is the append-only audit log of accepted events. It is not
// required for correctness of match state.
type EventLog interface {
	AppendEvent(ctx context.Context, matchID string, event scoring.ScoreEvent) error
	LoadEvents(ctx context.Context, matchID string) ([]scoring.ScoreEvent, error)
}

// Registry is the process-wide lookup from game id to configuration and from
// match id to running engine. Construct once at startup and pass by
// reference. remote and log may be nil when the deployment runs local-only.
type Registry struct {
	mu      sync.RWMutex
	configs map[string]scoring.ScoringConfig
	engines map[string]*scoring.Engine

	local  StateStore
	remote RemoteStore
	log    EventLog
	logger *slog.Logger
}

// New builds a registry over the given stores and registers configs.
func New(logger *slog.Logger, local StateStore, remote RemoteStore, log EventLog, configs ...scoring.ScoringConfig) *Registry {
	r := &Registry{
		configs: make(map[string]scoring.ScoringConfig, len(configs)),
		engines: make(map[string]*scoring.Engine),
		local:   local,
		remote:  remote,
		log:     log,
		logger:  logger,
	}
	for _, cfg := range configs {
		r.configs[cfg.ID] = cfg
	}
	return r
}

// RegisterGame adds a configuration after construction.
func (r *Registry) RegisterGame(cfg scoring.ScoringConfig) {
	r.mu.Lock()
	r.configs[cfg.ID] = cfg
	r.mu.Unlock()
}

// ListGames returns the full catalog for UI selection, ordered as registered
// configs sort by id in the games package.
func (r *Registry) ListGames() []scoring.ScoringConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]scoring.ScoringConfig, 0, len(r.configs))
	for _, cfg := range r.configs {
		out = append(out, cfg)
	}
	return out
}

// GetConfig retrieves a configuration by game id.
func (r *Registry) GetConfig(gameID string) (scoring.ScoringConfig, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.configs[gameID]
	return cfg, ok
}

// CreateMatch constructs a new engine for matchID seeded with an initial
// state for players, then hydrates it: synchronously from the local cache,
// asynchronously from the network store. Both overlays go through the
// engine's revision guard, so a stale copy can never clobber newer state.
func (r *Registry) CreateMatch(ctx context.Context, gameID, matchID string, players []string) (*scoring.Engine, error) {
	r.mu.Lock()
	cfg, ok := r.configs[gameID]
	if !ok {
		r.mu.Unlock()
		return nil, fmt.Errorf("%w: %q", ErrUnknownGame, gameID)
	}
	if _, exists := r.engines[matchID]; exists {
		r.mu.Unlock()
		return nil, fmt.Errorf("%w: %q", ErrMatchExists, matchID)
	}
	if len(players) < cfg.MinPlayers || len(players) > cfg.MaxPlayers {
		r.mu.Unlock()
		return nil, fmt.Errorf("%s requires between %d and %d players, got %d",
			cfg.ID, cfg.MinPlayers, cfg.MaxPlayers, len(players))
	}

	eng := scoring.NewEngine(cfg, scoring.NewMatchState(matchID, gameID, players, cfg.InitialPoints))
	r.engines[matchID] = eng
	r.mu.Unlock()

	r.overlay(ctx, eng, r.local, "local", gameID, matchID)

	// Mirror every accepted mutation to the stores, off the caller's path.
	eng.OnUpdate(func(state *scoring.MatchState) {
		go r.persist(matchID, gameID, state)
	})
	go r.persist(matchID, gameID, eng.State())

	if r.remote != nil {
		go r.overlay(context.Background(), eng, r.remote, "network", gameID, matchID)
	}

	return eng, nil
}

// GetEngine returns the running engine for matchID.
func (r *Registry) GetEngine(matchID string) (*scoring.Engine, error) {
	r.mu.RLock()
	eng, ok := r.engines[matchID]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMatch, matchID)
	}
	return eng, nil
}

// SubmitEvent routes an event to the match's engine and, when accepted,
// appends it to the audit log as a best-effort side effect.
func (r *Registry) SubmitEvent(ctx context.Context, matchID string, event scoring.ScoreEvent) error {
	eng, err := r.GetEngine(matchID)
	if err != nil {
		return err
	}
	if err := eng.SubmitEvent(event); err != nil {
		return err
	}
	if r.log != nil {
		go func() {
			if err := r.log.AppendEvent(context.Background(), matchID, event); err != nil {
				r.logger.Error("appending to event log", "match_id", matchID, "error", err)
			}
		}()
	}
	return nil
}

// LoadEvents returns the audit log for a match.
func (r *Registry) LoadEvents(ctx context.Context, matchID string) ([]scoring.ScoreEvent, error) {
	if r.log == nil {
		return nil, nil
	}
	return r.log.LoadEvents(ctx, matchID)
}

// ListMatches lists stored matches, preferring the network store and falling
// back to the local cache when it also implements Lister.
func (r *Registry) ListMatches(ctx context.Context) ([]Info, error) {
	if r.remote != nil {
		return r.remote.ListMatches(ctx)
	}
	if l, ok := r.local.(Lister); ok {
		return l.ListMatches(ctx)
	}
	return nil, nil
}

// DeleteMatch removes a match from the network store and evicts its engine.
func (r *Registry) DeleteMatch(ctx context.Context, matchID string) error {
	if r.remote != nil {
		if err := r.remote.DeleteMatch(ctx, matchID); err != nil {
			return err
		}
	}
	r.mu.Lock()
	delete(r.engines, matchID)
	r.mu.Unlock()
	return nil
}

// overlay loads persisted state from one store and applies it through the
// engine's revision guard. Errors and game-id mismatches are logged, never
// surfaced.
func (r *Registry) overlay(ctx context.Context, eng *scoring.Engine, store StateStore, name, gameID, matchID string) {
	if store == nil {
		return
	}
	state, err := store.LoadState(ctx, matchID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			r.logger.Error("hydrating match state", "store", name, "match_id", matchID, "error", err)
		}
		return
	}
	if state.GameID != gameID {
		r.logger.Warn("ignoring cached state for different game",
			"store", name, "match_id", matchID, "cached_game", state.GameID, "game", gameID)
		return
	}
	if eng.SetStateIfNewer(state) {
		r.logger.Info("hydrated match state", "store", name, "match_id", matchID, "revision", state.Revision)
	}
}

// persist mirrors a snapshot to the local cache and the network store.
func (r *Registry) persist(matchID, gameID string, state *scoring.MatchState) {
	ctx := context.Background()
	if r.local != nil {
		if err := r.local.SaveState(ctx, matchID, gameID, state); err != nil {
			r.logger.Error("saving match state", "store", "local", "match_id", matchID, "error", err)
		}
	}
	if r.remote != nil {
		if err := r.remote.SaveState(ctx, matchID, gameID, state); err != nil {
			r.logger.Error("saving match state", "store", "network", "match_id", matchID, "error", err)
		}
	}
}
