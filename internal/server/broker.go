package server

import (
	"encoding/json"
	"sync"

	"github.com/tallykeep/scorekeeper/internal/scoring"
)

// Broker is an in-process pub/sub for SSE state snapshots, keyed by match ID.
type Broker struct {
	mu   sync.RWMutex
	subs map[string]map[chan []byte]struct{}
}

func NewBroker() *Broker {
	return &Broker{
		subs: make(map[string]map[chan []byte]struct{}),
	}
}

// Subscribe returns a channel that receives JSON-encoded state snapshots for
// the given match.
func (b *Broker) Subscribe(matchID string) chan []byte {
	ch := make(chan []byte, 16)
	b.mu.Lock()
	if b.subs[matchID] == nil {
		b.subs[matchID] = make(map[chan []byte]struct{})
	}
	b.subs[matchID][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a channel from the match's subscribers.
func (b *Broker) Unsubscribe(matchID string, ch chan []byte) {
	b.mu.Lock()
	delete(b.subs[matchID], ch)
	if len(b.subs[matchID]) == 0 {
		delete(b.subs, matchID)
	}
	b.mu.Unlock()
}

// Publish sends a state snapshot to all subscribers of the given match.
func (b *Broker) Publish(matchID string, state *scoring.MatchState) {
	data, _ := json.Marshal(state)
	b.mu.RLock()
	for ch := range b.subs[matchID] {
		select {
		case ch <- data:
		default:
			// Drop if subscriber is slow.
		}
	}
	b.mu.RUnlock()
}
