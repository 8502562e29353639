package server

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/tallykeep/scorekeeper/internal/scoring"
)

func TestBrokerPublishReachesMatchSubscribersOnly(t *testing.T) {
	b := NewBroker()
	m1 := b.Subscribe("m1")
	m2 := b.Subscribe("m2")
	defer b.Unsubscribe("m1", m1)
	defer b.Unsubscribe("m2", m2)

	state := scoring.NewMatchState("m1", "hearts", []string{"p1", "p2", "p3"}, 0)
	b.Publish("m1", state)

	select {
	case data := <-m1:
		var got scoring.MatchState
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("decoding snapshot: %v", err)
		}
		if got.MatchID != "m1" {
			t.Errorf("matchId = %q, want m1", got.MatchID)
		}
	case <-time.After(time.Second):
		t.Fatal("subscriber never received snapshot")
	}

	select {
	case <-m2:
		t.Fatal("snapshot leaked to another match's subscriber")
	default:
	}
}

func TestBrokerUnsubscribe(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe("m1")
	b.Unsubscribe("m1", ch)

	b.Publish("m1", scoring.NewMatchState("m1", "hearts", []string{"p1", "p2", "p3"}, 0))

	select {
	case <-ch:
		t.Fatal("unsubscribed channel received snapshot")
	default:
	}
}

func TestBrokerDropsWhenSubscriberIsSlow(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe("m1")
	defer b.Unsubscribe("m1", ch)

	state := scoring.NewMatchState("m1", "hearts", []string{"p1", "p2", "p3"}, 0)
	// Fill the buffer and then some; the extra publishes must not block.
	for i := 0; i < 40; i++ {
		b.Publish("m1", state)
	}

	if got := len(ch); got != cap(ch) {
		t.Errorf("buffered = %d, want full buffer %d", got, cap(ch))
	}
}
