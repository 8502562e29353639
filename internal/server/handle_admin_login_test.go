package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/tallykeep/scorekeeper/internal/database"
	"github.com/tallykeep/scorekeeper/internal/migrations"
)

func TestAdminLoginFlow(t *testing.T) {
	db, err := database.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("opening db: %v", err)
	}
	defer db.Close()
	if err := migrations.Run(db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if err := SeedAdmin(context.Background(), logger, db, "admin@example.com", "hunter22"); err != nil {
		t.Fatalf("seeding admin: %v", err)
	}
	// Seeding again is a no-op once an admin exists.
	if err := SeedAdmin(context.Background(), logger, db, "other@example.com", "nope"); err != nil {
		t.Fatalf("re-seeding: %v", err)
	}

	ts := newTestServerWithDB(t, db)

	t.Run("wrong password", func(t *testing.T) {
		resp := postJSON(t, ts+"/api/admin/login", AdminLoginRequest{
			Email:    "admin@example.com",
			Password: "wrong",
		})
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", resp.StatusCode)
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		resp := postJSON(t, ts+"/api/admin/login", AdminLoginRequest{
			Email:    "other@example.com",
			Password: "nope",
		})
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", resp.StatusCode)
		}
	})

	var cookie *http.Cookie
	t.Run("login", func(t *testing.T) {
		resp := postJSON(t, ts+"/api/admin/login", AdminLoginRequest{
			Email:    "admin@example.com",
			Password: "hunter22",
		})
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want 200", resp.StatusCode)
		}

		var me AdminMeResponse
		if err := json.NewDecoder(resp.Body).Decode(&me); err != nil {
			t.Fatalf("decoding: %v", err)
		}
		if me.Email != "admin@example.com" {
			t.Errorf("email = %q", me.Email)
		}

		for _, c := range resp.Cookies() {
			if c.Name == adminCookieName {
				cookie = c
			}
		}
		if cookie == nil {
			t.Fatal("no session cookie set")
		}
	})

	t.Run("me with session", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, ts+"/api/admin/me", nil)
		req.AddCookie(cookie)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("GET me: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("status = %d, want 200", resp.StatusCode)
		}
	})

	t.Run("admin matches with session", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, ts+"/api/admin/matches", nil)
		req.AddCookie(cookie)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("GET admin matches: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("status = %d, want 200", resp.StatusCode)
		}
	})

	t.Run("logout invalidates session", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPost, ts+"/api/admin/logout", nil)
		req.AddCookie(cookie)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("POST logout: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("logout status = %d, want 200", resp.StatusCode)
		}

		req, _ = http.NewRequest(http.MethodGet, ts+"/api/admin/me", nil)
		req.AddCookie(cookie)
		resp, err = http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("GET me: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("me after logout = %d, want 401", resp.StatusCode)
		}
	})
}

func TestAdminMeWithoutSession(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/admin/me")
	if err != nil {
		t.Fatalf("GET me: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}
