package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// SeedAdmin creates the bootstrap admin account when none exists. Idempotent:
// does nothing if any admin is already present or when credentials are unset.
func SeedAdmin(ctx context.Context, logger *slog.Logger, db *sql.DB, email, password string) error {
	if email == "" || password == "" {
		return nil
	}

	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM admins`).Scan(&count); err != nil {
		return fmt.Errorf("counting admins: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing admin password: %w", err)
	}

	if _, err := db.ExecContext(ctx, `
		INSERT INTO admins (email, password_hash) VALUES (?, ?)
	`, email, string(hash)); err != nil {
		return fmt.Errorf("inserting admin: %w", err)
	}

	logger.Info("bootstrap admin created", "email", email)
	return nil
}
