// Package store provides the persistence adapters the match registry relies
// on: a SQLite-backed local cache, an HTTP client for the network state
// store, and a Redis-stream event log.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tallykeep/scorekeeper/internal/match"
	"github.com/tallykeep/scorekeeper/internal/scoring"
)

// Local caches full match state in SQLite so a restarted process can rehydrate
// without the network store.
type Local struct {
	db *sql.DB
}

// NewLocal wraps an open database. The match_cache table is created by the
// migrations package.
func NewLocal(db *sql.DB) *Local {
	return &Local{db: db}
}

// LoadState returns the cached state for matchID, or match.ErrNotFound.
func (l *Local) LoadState(ctx context.Context, matchID string) (*scoring.MatchState, error) {
	var raw string
	err := l.db.QueryRowContext(ctx, `
		SELECT state FROM match_cache WHERE match_id = ?
	`, matchID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, match.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading match %q: %w", matchID, err)
	}

	var state scoring.MatchState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, fmt.Errorf("decoding cached state for %q: %w", matchID, err)
	}
	return &state, nil
}

// SaveState upserts the serialized state, keeping the revision column in sync
// for cheap listings.
func (l *Local) SaveState(ctx context.Context, matchID, gameID string, state *scoring.MatchState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encoding state for %q: %w", matchID, err)
	}
	_, err = l.db.ExecContext(ctx, `
		INSERT INTO match_cache (match_id, game_id, state, revision, updated_at)
		VALUES (?, ?, ?, ?, strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
		ON CONFLICT(match_id) DO UPDATE SET
			game_id = excluded.game_id,
			state = excluded.state,
			revision = excluded.revision,
			updated_at = excluded.updated_at
	`, matchID, gameID, string(raw), state.Revision)
	if err != nil {
		return fmt.Errorf("saving match %q: %w", matchID, err)
	}
	return nil
}

// ListMatches lists cached matches, most recently updated first.
func (l *Local) ListMatches(ctx context.Context) ([]match.Info, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT match_id, game_id, revision, updated_at
		FROM match_cache
		ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("listing matches: %w", err)
	}
	defer rows.Close()

	var out []match.Info
	for rows.Next() {
		var info match.Info
		var updated string
		if err := rows.Scan(&info.MatchID, &info.GameID, &info.Revision, &updated); err != nil {
			return nil, fmt.Errorf("scanning match row: %w", err)
		}
		info.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
		out = append(out, info)
	}
	return out, rows.Err()
}

// DeleteState removes a cached match.
func (l *Local) DeleteState(ctx context.Context, matchID string) error {
	_, err := l.db.ExecContext(ctx, `DELETE FROM match_cache WHERE match_id = ?`, matchID)
	return err
}
