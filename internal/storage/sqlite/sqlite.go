// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"equi/internal/models"
	"equi/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path. It creates
// the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// isLinkConflict reports whether err is a violation of the partial unique
// index on splits.linked_subscription_id, i.e. a second split trying to
// link an already-linked subscription.
func isLinkConflict(err error) bool {
	return err != nil && strings.Contains(err.Error(), "splits.linked_subscription_id")
}

// applyDerived executes the subscription-side writes of a split mutation
// inside the caller's transaction.
func applyDerived(ctx context.Context, tx *sql.Tx, updates ...storage.DerivedUpdate) error {
	for _, u := range updates {
		var res sql.Result
		var err error
		if u.Reset {
			res, err = tx.ExecContext(ctx,
				"UPDATE subscriptions SET cost_for_me = price WHERE id = ?", u.SubscriptionID)
		} else {
			res, err = tx.ExecContext(ctx,
				"UPDATE subscriptions SET cost_for_me = ? WHERE id = ?", u.CostForMe, u.SubscriptionID)
		}
		if err != nil {
			return fmt.Errorf("failed to update derived cost: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read rows affected: %w", err)
		}
		if n == 0 {
			return models.ErrSubscriptionNotFound
		}

		if _, err := tx.ExecContext(ctx,
			"DELETE FROM subscription_shares WHERE subscription_id = ?", u.SubscriptionID); err != nil {
			return fmt.Errorf("failed to clear shared-with: %w", err)
		}
		if u.Reset {
			continue
		}
		for i, name := range u.SharedWith {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO subscription_shares (subscription_id, position, name) VALUES (?, ?, ?)",
				u.SubscriptionID, i, name); err != nil {
				return fmt.Errorf("failed to insert shared-with: %w", err)
			}
		}
	}
	return nil
}
