package store_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallykeep/scorekeeper/internal/match"
	"github.com/tallykeep/scorekeeper/internal/scoring"
	"github.com/tallykeep/scorekeeper/internal/store"
)

func TestRemoteLoadState(t *testing.T) {
	state := scoring.NewMatchState("m1", "hearts", []string{"p1", "p2", "p3"}, 0)
	state.Revision = 4

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/matches/m1/state", r.URL.Path)
		assert.Equal(t, "Bearer sekrit", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(state)
	}))
	defer srv.Close()

	remote := store.NewRemote(srv.URL, "sekrit")
	got, err := remote.LoadState(context.Background(), "m1")
	require.NoError(t, err)
	assert.Equal(t, int64(4), got.Revision)
	assert.Equal(t, "hearts", got.GameID)
}

func TestRemoteLoadStateNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	remote := store.NewRemote(srv.URL, "")
	_, err := remote.LoadState(context.Background(), "m1")
	require.ErrorIs(t, err, match.ErrNotFound)
}

func TestRemoteSaveState(t *testing.T) {
	var body struct {
		GameID string              `json:"gameId"`
		State  *scoring.MatchState `json:"state"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/v1/matches/m1/state", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
	}))
	defer srv.Close()

	state := scoring.NewMatchState("m1", "spades", []string{"a", "b", "c", "d"}, 0)
	remote := store.NewRemote(srv.URL, "")
	require.NoError(t, remote.SaveState(context.Background(), "m1", "spades", state))

	assert.Equal(t, "spades", body.GameID)
	require.NotNil(t, body.State)
	assert.Equal(t, "m1", body.State.MatchID)
}

func TestRemoteRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode([]match.Info{{MatchID: "m1", GameID: "rummy"}})
	}))
	defer srv.Close()

	remote := store.NewRemote(srv.URL, "")
	infos, err := remote.ListMatches(context.Background())
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, int32(2), calls.Load(), "first 502 should be retried")
}

func TestRemoteClientErrorsAreFinal(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	remote := store.NewRemote(srv.URL, "")
	_, err := remote.ListMatches(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
	assert.Equal(t, int32(1), calls.Load(), "4xx must not be retried")
}

func TestRemoteDeleteMatch(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		gotPath = r.URL.Path
	}))
	defer srv.Close()

	remote := store.NewRemote(srv.URL, "")
	require.NoError(t, remote.DeleteMatch(context.Background(), "m1"))
	assert.Equal(t, "/v1/matches/m1", gotPath)
}
