package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"equi/internal/models"
	"equi/internal/storage"
)

// CreateSplit persists a new split and, when derived is non-nil, the linked
// subscription's derived-cost update in the same transaction.
func (s *SQLiteStore) CreateSplit(ctx context.Context, split *models.Split, derived *storage.DerivedUpdate) error {
	if split.ID == "" {
		split.ID = uuid.New().String()
	}
	if split.CreatedAt == 0 {
		split.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO splits (id, owner, title, total_amount, date, linked_subscription_id, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		split.ID, split.Owner, split.Title, split.TotalAmount, split.Date, nullableID(split.LinkedSubscriptionID), split.CreatedAt,
	)
	if isLinkConflict(err) {
		return models.ErrSubscriptionLinked
	}
	if err != nil {
		return fmt.Errorf("failed to insert split: %w", err)
	}

	if err := insertMembers(ctx, tx, split.ID, split.Members); err != nil {
		return err
	}

	if derived != nil {
		if err := applyDerived(ctx, tx, *derived); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetSplit retrieves a split by ID with its full member list.
func (s *SQLiteStore) GetSplit(ctx context.Context, id string) (*models.Split, error) {
	split := &models.Split{}
	var linked sql.NullString
	err := s.db.QueryRowContext(ctx,
		"SELECT id, owner, title, total_amount, date, linked_subscription_id, created_at FROM splits WHERE id = ?",
		id,
	).Scan(&split.ID, &split.Owner, &split.Title, &split.TotalAmount, &split.Date, &linked, &split.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, models.ErrSplitNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get split: %w", err)
	}
	split.LinkedSubscriptionID = linked.String

	if err := s.loadMembers(ctx, split); err != nil {
		return nil, err
	}
	return split, nil
}

// ListSplits returns the owner's splits, newest first.
func (s *SQLiteStore) ListSplits(ctx context.Context, owner string) ([]models.Split, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, owner, title, total_amount, date, linked_subscription_id, created_at FROM splits WHERE owner = ? ORDER BY created_at DESC, id DESC",
		owner,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list splits: %w", err)
	}
	defer rows.Close()

	var splits []models.Split
	for rows.Next() {
		var split models.Split
		var linked sql.NullString
		if err := rows.Scan(&split.ID, &split.Owner, &split.Title, &split.TotalAmount, &split.Date, &linked, &split.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}
		split.LinkedSubscriptionID = linked.String
		splits = append(splits, split)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate splits: %w", err)
	}

	for i := range splits {
		if err := s.loadMembers(ctx, &splits[i]); err != nil {
			return nil, err
		}
	}
	return splits, nil
}

// UpdateSplit replaces a split's stored fields and member list, applying
// the given derived updates in the same transaction.
func (s *SQLiteStore) UpdateSplit(ctx context.Context, split *models.Split, derived []storage.DerivedUpdate) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE splits SET title = ?, total_amount = ?, date = ?, linked_subscription_id = ? WHERE id = ?",
		split.Title, split.TotalAmount, split.Date, nullableID(split.LinkedSubscriptionID), split.ID,
	)
	if isLinkConflict(err) {
		return models.ErrSubscriptionLinked
	}
	if err != nil {
		return fmt.Errorf("failed to update split: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return models.ErrSplitNotFound
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM split_members WHERE split_id = ?", split.ID); err != nil {
		return fmt.Errorf("failed to clear members: %w", err)
	}
	if err := insertMembers(ctx, tx, split.ID, split.Members); err != nil {
		return err
	}

	if err := applyDerived(ctx, tx, derived...); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteSplit removes a split, applying the restore update for a
// previously linked subscription in the same transaction.
func (s *SQLiteStore) DeleteSplit(ctx context.Context, id string, restore *storage.DerivedUpdate) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "DELETE FROM splits WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete split: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return models.ErrSplitNotFound
	}

	if restore != nil {
		if err := applyDerived(ctx, tx, *restore); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ToggleMemberPaid flips one member's settlement flag by position and
// returns the updated split.
func (s *SQLiteStore) ToggleMemberPaid(ctx context.Context, splitID string, memberIndex int) (*models.Split, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, "SELECT 1 FROM splits WHERE id = ?", splitID).Scan(&exists)
	if err == sql.ErrNoRows {
		return nil, models.ErrSplitNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to check split: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		"UPDATE split_members SET is_paid = 1 - is_paid WHERE split_id = ? AND position = ?",
		splitID, memberIndex,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to toggle member: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return nil, models.ErrMemberIndex
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return s.GetSplit(ctx, splitID)
}

// LinkedTo returns the split currently linking the subscription, or nil
// when the subscription is unlinked.
func (s *SQLiteStore) LinkedTo(ctx context.Context, subscriptionID string) (*models.Split, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		"SELECT id FROM splits WHERE linked_subscription_id = ?", subscriptionID,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find linking split: %w", err)
	}
	return s.GetSplit(ctx, id)
}

// loadMembers fills the split's ordered member list.
func (s *SQLiteStore) loadMembers(ctx context.Context, split *models.Split) error {
	split.Members = []models.Member{}
	rows, err := s.db.QueryContext(ctx,
		"SELECT name, amount, is_paid FROM split_members WHERE split_id = ? ORDER BY position",
		split.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get members: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var m models.Member
		if err := rows.Scan(&m.Name, &m.Amount, &m.IsPaid); err != nil {
			return fmt.Errorf("failed to scan member: %w", err)
		}
		split.Members = append(split.Members, m)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate members: %w", err)
	}
	return nil
}

func insertMembers(ctx context.Context, tx *sql.Tx, splitID string, members []models.Member) error {
	for i, m := range members {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO split_members (split_id, position, name, amount, is_paid) VALUES (?, ?, ?, ?, ?)",
			splitID, i, m.Name, m.Amount, m.IsPaid); err != nil {
			return fmt.Errorf("failed to insert member: %w", err)
		}
	}
	return nil
}

func nullableID(id string) sql.NullString {
	return sql.NullString{String: id, Valid: id != ""}
}
