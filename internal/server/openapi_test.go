package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHandleOpenAPI(t *testing.T) {
	h := handleOpenAPI()

	req := httptest.NewRequest(http.MethodGet, "/openapi.json", nil)
	rec := httptest.NewRecorder()
	h(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var spec struct {
		OpenAPI string `json:"openapi"`
		Info    struct {
			Title string `json:"title"`
		} `json:"info"`
		Paths map[string]json.RawMessage `json:"paths"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &spec); err != nil {
		t.Fatalf("decoding spec: %v", err)
	}

	if spec.Info.Title != "Scorekeeper API" {
		t.Errorf("title = %q", spec.Info.Title)
	}

	for _, path := range []string{
		"/api/games",
		"/api/matches",
		"/api/matches/{matchID}/state",
		"/api/matches/{matchID}/events",
		"/api/matches/{matchID}/stream",
		"/api/matches/{matchID}/log",
		"/api/admin/login",
		"/api/admin/matches",
	} {
		if _, ok := spec.Paths[path]; !ok {
			t.Errorf("spec is missing path %s", path)
		}
	}
}
