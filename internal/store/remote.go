package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/tallykeep/scorekeeper/internal/match"
	"github.com/tallykeep/scorekeeper/internal/scoring"
)

// Remote is the HTTP client for the network-backed state store. Transient
// failures (network errors, 5xx) are retried with fibonacci backoff; 4xx
// responses are final.
type Remote struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewRemote builds a client for the sync service at baseURL. token, when
// non-empty, is sent as a bearer token.
func NewRemote(baseURL, token string) *Remote {
	return &Remote{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// LoadState fetches the stored state for matchID, or match.ErrNotFound.
func (r *Remote) LoadState(ctx context.Context, matchID string) (*scoring.MatchState, error) {
	var state scoring.MatchState
	err := r.do(ctx, http.MethodGet, "/v1/matches/"+matchID+"/state", nil, &state)
	if err != nil {
		return nil, err
	}
	return &state, nil
}

// SaveState uploads the full serialized state.
func (r *Remote) SaveState(ctx context.Context, matchID, gameID string, state *scoring.MatchState) error {
	body := struct {
		GameID string              `json:"gameId"`
		State  *scoring.MatchState `json:"state"`
	}{GameID: gameID, State: state}
	return r.do(ctx, http.MethodPut, "/v1/matches/"+matchID+"/state", body, nil)
}

// ListMatches lists matches known to the sync service.
func (r *Remote) ListMatches(ctx context.Context) ([]match.Info, error) {
	var out []match.Info
	if err := r.do(ctx, http.MethodGet, "/v1/matches", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteMatch removes a match from the sync service.
func (r *Remote) DeleteMatch(ctx context.Context, matchID string) error {
	return r.do(ctx, http.MethodDelete, "/v1/matches/"+matchID, nil, nil)
}

// do performs one request with retries, decoding a JSON response into out
// when out is non-nil.
func (r *Remote) do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
	}

	backoff := retry.WithMaxRetries(3, retry.NewFibonacci(250*time.Millisecond))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, reader)
		if err != nil {
			return err
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if r.token != "" {
			req.Header.Set("Authorization", "Bearer "+r.token)
		}

		resp, err := r.client.Do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return match.ErrNotFound
		case resp.StatusCode >= 500:
			return retry.RetryableError(fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode))
		case resp.StatusCode >= 400:
			return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
		}

		if out != nil {
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				return fmt.Errorf("decoding response: %w", err)
			}
		}
		return nil
	})
}
