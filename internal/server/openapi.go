package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"

	"github.com/tallykeep/scorekeeper/internal/match"
	"github.com/tallykeep/scorekeeper/internal/scoring"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Scorekeeper API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Pluggable scoring engine for turn-based card games.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of backend dependencies.")
	getHealthz.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// GET /api/games
	listGames, _ := r.NewOperationContext(http.MethodGet, "/api/games")
	listGames.SetSummary("List games")
	listGames.SetDescription("Returns the catalog of supported games.")
	listGames.AddRespStructure([]GameInfo{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(listGames)

	// POST /api/matches
	createMatch, _ := r.NewOperationContext(http.MethodPost, "/api/matches")
	createMatch.SetSummary("Create match")
	createMatch.SetDescription("Creates a scoring engine for a new match and hydrates any persisted state.")
	createMatch.AddReqStructure(CreateMatchRequest{})
	createMatch.AddRespStructure(scoring.MatchState{}, openapi.WithHTTPStatus(http.StatusCreated))
	createMatch.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	createMatch.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	createMatch.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(createMatch)

	// GET /api/matches/{matchID}/state
	getState, _ := r.NewOperationContext(http.MethodGet, "/api/matches/{matchID}/state")
	getState.SetSummary("Get match state")
	getState.SetDescription("Returns the current state snapshot for a match.")
	getState.AddRespStructure(scoring.MatchState{}, openapi.WithHTTPStatus(http.StatusOK))
	getState.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getState)

	// POST /api/matches/{matchID}/events
	postEvent, _ := r.NewOperationContext(http.MethodPost, "/api/matches/{matchID}/events")
	postEvent.SetSummary("Submit score event")
	postEvent.SetDescription("Submits a score event. Returns 422 with a reason when validation rejects it, 409 once the match has ended.")
	postEvent.AddReqStructure(EventRequest{})
	postEvent.AddRespStructure(scoring.MatchState{}, openapi.WithHTTPStatus(http.StatusOK))
	postEvent.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnprocessableEntity))
	postEvent.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	postEvent.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(postEvent)

	// GET /api/matches/{matchID}/stream
	getStream, _ := r.NewOperationContext(http.MethodGet, "/api/matches/{matchID}/stream")
	getStream.SetSummary("SSE state stream")
	getStream.SetDescription("Server-Sent Events stream of state snapshots, one per accepted mutation.")
	getStream.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	_ = r.AddOperation(getStream)

	// GET /api/matches/{matchID}/log
	getLog, _ := r.NewOperationContext(http.MethodGet, "/api/matches/{matchID}/log")
	getLog.SetSummary("Audit event log")
	getLog.SetDescription("Returns every accepted event recorded in the audit log.")
	getLog.AddRespStructure([]scoring.ScoreEvent{}, openapi.WithHTTPStatus(http.StatusOK))
	getLog.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getLog)

	// POST /api/admin/login
	postLogin, _ := r.NewOperationContext(http.MethodPost, "/api/admin/login")
	postLogin.SetSummary("Admin login")
	postLogin.SetDescription("Authenticate with email and password. Sets admin_session cookie.")
	postLogin.AddReqStructure(AdminLoginRequest{})
	postLogin.AddRespStructure(AdminMeResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postLogin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(postLogin)

	// POST /api/admin/logout
	postLogout, _ := r.NewOperationContext(http.MethodPost, "/api/admin/logout")
	postLogout.SetSummary("Admin logout")
	postLogout.SetDescription("Clears admin session and cookie.")
	postLogout.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(postLogout)

	// GET /api/admin/me
	getMe, _ := r.NewOperationContext(http.MethodGet, "/api/admin/me")
	getMe.SetSummary("Current admin")
	getMe.SetDescription("Returns the currently authenticated admin. Requires admin_session cookie.")
	getMe.AddRespStructure(AdminMeResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getMe.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getMe)

	// GET /api/admin/matches
	listMatches, _ := r.NewOperationContext(http.MethodGet, "/api/admin/matches")
	listMatches.SetSummary("List stored matches")
	listMatches.SetDescription("Returns all matches known to the stores. Requires admin_session cookie.")
	listMatches.AddRespStructure([]match.Info{}, openapi.WithHTTPStatus(http.StatusOK))
	listMatches.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(listMatches)

	// DELETE /api/admin/matches/{matchID}
	deleteMatch, _ := r.NewOperationContext(http.MethodDelete, "/api/admin/matches/{matchID}")
	deleteMatch.SetSummary("Delete match")
	deleteMatch.SetDescription("Removes a match from the network store and evicts its engine. Requires admin_session cookie.")
	deleteMatch.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	deleteMatch.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(deleteMatch)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
