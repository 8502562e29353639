package server

import (
	"database/sql"
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/swaggest/swgui/v5emb"

	"github.com/tallykeep/scorekeeper/internal/match"
)

func addRoutes(r chi.Router, logger *slog.Logger, matches *match.Registry, db *sql.DB, rdb *redis.Client) {
	broker := NewBroker()

	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("Scorekeeper API", "/openapi.json", "/docs"))
	r.Get("/healthz", handleHealth(logger, db, rdb))

	// Match routes.
	r.Route("/api", func(r chi.Router) {
		r.Get("/games", handleListGames(matches))
		r.Post("/matches", handleCreateMatch(matches, broker))
		r.Get("/matches/{matchID}/state", handleMatchState(matches))
		r.Post("/matches/{matchID}/events", handleSubmitEvent(matches))
		r.Get("/matches/{matchID}/stream", handleStream(matches, broker))
		r.Get("/matches/{matchID}/log", handleEventLog(matches))
	})

	// Admin auth.
	r.Post("/api/admin/login", handleAdminLogin(db))
	r.Post("/api/admin/logout", handleAdminLogout(db))
	r.Get("/api/admin/me", handleAdminMe(db))

	// Admin match administration, requires admin auth.
	r.Route("/api/admin/matches", func(r chi.Router) {
		r.Use(adminAuthMiddleware(db))
		r.Get("/", handleAdminListMatches(matches))
		r.Delete("/{matchID}", handleAdminDeleteMatch(logger, matches))
	})
}
