package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/tallykeep/scorekeeper/internal/scoring"
)

// EventLog appends accepted score events to a Redis stream, one stream per
// match. The log exists for audit and replay; match state never depends on it.
type EventLog struct {
	rdb *redis.Client
}

// NewEventLog wraps a connected Redis client.
func NewEventLog(rdb *redis.Client) *EventLog {
	return &EventLog{rdb: rdb}
}

func streamKey(matchID string) string {
	return "scorekeeper:match:" + matchID + ":events"
}

// AppendEvent appends one event to the match's stream.
func (l *EventLog) AppendEvent(ctx context.Context, matchID string, event scoring.ScoreEvent) error {
	raw, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding event %q: %w", event.ID, err)
	}
	err = l.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: streamKey(matchID),
		Values: map[string]any{"event": raw},
	}).Err()
	if err != nil {
		return fmt.Errorf("appending event %q: %w", event.ID, err)
	}
	return nil
}

// LoadEvents returns every logged event for a match in append order.
func (l *EventLog) LoadEvents(ctx context.Context, matchID string) ([]scoring.ScoreEvent, error) {
	msgs, err := l.rdb.XRange(ctx, streamKey(matchID), "-", "+").Result()
	if err != nil {
		return nil, fmt.Errorf("reading event log: %w", err)
	}

	events := make([]scoring.ScoreEvent, 0, len(msgs))
	for _, msg := range msgs {
		raw, ok := msg.Values["event"].(string)
		if !ok {
			continue
		}
		var ev scoring.ScoreEvent
		if err := json.Unmarshal([]byte(raw), &ev); err != nil {
			return nil, fmt.Errorf("decoding logged event %s: %w", msg.ID, err)
		}
		events = append(events, ev)
	}
	return events, nil
}

// DeleteLog drops a match's stream. Used by the admin delete path.
func (l *EventLog) DeleteLog(ctx context.Context, matchID string) error {
	return l.rdb.Del(ctx, streamKey(matchID)).Err()
}
