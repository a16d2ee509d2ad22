package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"equi/internal/models"
)

func (s *PostgresStore) CreateSubscription(ctx context.Context, sub *models.Subscription) error {
	if sub.ID == "" {
		sub.ID = uuid.New().String()
	}
	if sub.CreatedAt == 0 {
		sub.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO subscriptions (id, owner, name, category, price, date, cost_for_me, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		sub.ID, sub.Owner, sub.Name, string(sub.Category), sub.Price, sub.Date, sub.CostForMe, sub.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert subscription: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetSubscription(ctx context.Context, id string) (*models.Subscription, error) {
	sub := &models.Subscription{}
	var category string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, owner, name, category, price, date, cost_for_me, created_at
		 FROM subscriptions WHERE id = $1`,
		id,
	).Scan(&sub.ID, &sub.Owner, &sub.Name, &category, &sub.Price, &sub.Date, &sub.CostForMe, &sub.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, models.ErrSubscriptionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	sub.Category = models.Category(category)

	if err := s.loadSubscriptionDetails(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *PostgresStore) ListSubscriptions(ctx context.Context, owner string) ([]models.Subscription, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner, name, category, price, date, cost_for_me, created_at
		 FROM subscriptions WHERE owner = $1 ORDER BY created_at DESC, id DESC`,
		owner,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []models.Subscription
	for rows.Next() {
		var sub models.Subscription
		var category string
		if err := rows.Scan(&sub.ID, &sub.Owner, &sub.Name, &category, &sub.Price, &sub.Date, &sub.CostForMe, &sub.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		sub.Category = models.Category(category)
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate subscriptions: %w", err)
	}

	for i := range subs {
		if err := s.loadSubscriptionDetails(ctx, &subs[i]); err != nil {
			return nil, err
		}
	}
	return subs, nil
}

func (s *PostgresStore) loadSubscriptionDetails(ctx context.Context, sub *models.Subscription) error {
	sub.SharedWith = []string{}
	rows, err := s.db.QueryContext(ctx,
		"SELECT name FROM subscription_shares WHERE subscription_id = $1 ORDER BY position",
		sub.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get shared-with: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return fmt.Errorf("failed to scan shared-with: %w", err)
		}
		sub.SharedWith = append(sub.SharedWith, name)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate shared-with: %w", err)
	}

	sub.PaidMonths = []string{}
	monthRows, err := s.db.QueryContext(ctx,
		"SELECT month FROM subscription_paid_months WHERE subscription_id = $1 ORDER BY month",
		sub.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get paid months: %w", err)
	}
	defer monthRows.Close()
	for monthRows.Next() {
		var month string
		if err := monthRows.Scan(&month); err != nil {
			return fmt.Errorf("failed to scan paid month: %w", err)
		}
		sub.PaidMonths = append(sub.PaidMonths, month)
	}
	if err := monthRows.Err(); err != nil {
		return fmt.Errorf("failed to iterate paid months: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteSubscription(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"UPDATE splits SET linked_subscription_id = NULL WHERE linked_subscription_id = $1", id); err != nil {
		return fmt.Errorf("failed to unlink splits: %w", err)
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM subscriptions WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return models.ErrSubscriptionNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *PostgresStore) MarkMonthPaid(ctx context.Context, id, month string) (*models.Subscription, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM subscriptions WHERE id = $1", id).Scan(&exists)
	if err == sql.ErrNoRows {
		return nil, models.ErrSubscriptionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to check subscription: %w", err)
	}

	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO subscription_paid_months (subscription_id, month) VALUES ($1, $2)
		 ON CONFLICT DO NOTHING`,
		id, month); err != nil {
		return nil, fmt.Errorf("failed to mark month paid: %w", err)
	}

	return s.GetSubscription(ctx, id)
}

func (s *PostgresStore) CategoryTotals(ctx context.Context, owner string) ([]models.CategoryTotal, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT category, SUM(cost_for_me) FROM subscriptions
		 WHERE owner = $1 GROUP BY category ORDER BY category`,
		owner,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to sum categories: %w", err)
	}
	defer rows.Close()

	var totals []models.CategoryTotal
	for rows.Next() {
		var category string
		var total int64
		if err := rows.Scan(&category, &total); err != nil {
			return nil, fmt.Errorf("failed to scan category total: %w", err)
		}
		totals = append(totals, models.CategoryTotal{Category: models.Category(category), Total: total})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate category totals: %w", err)
	}
	return totals, nil
}
