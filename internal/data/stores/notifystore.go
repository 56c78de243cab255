package stores

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hay-kot/bookreview/internal/core/notify"
	"github.com/hay-kot/bookreview/internal/data/db"
)

// DefaultNotifyRetention is how many notifications are kept. Older rows are
// pruned on save.
const DefaultNotifyRetention = 200

// NotifyStore implements notify.Store using SQLite.
type NotifyStore struct {
	db        *db.DB
	retention int
}

var _ notify.Store = (*NotifyStore)(nil)

// NewNotifyStore creates a new SQLite-backed notification store keeping at
// most retention rows. A retention below 1 keeps everything.
func NewNotifyStore(db *db.DB, retention int) *NotifyStore {
	return &NotifyStore{db: db, retention: retention}
}

// Save persists a notification and returns its auto-generated ID.
func (s *NotifyStore) Save(ctx context.Context, n notify.Notification) (int64, error) {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	var id int64
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO notifications (level, message, created_at) VALUES (?, ?, ?)`,
			string(n.Level), n.Message, n.CreatedAt.UnixNano())
		if err != nil {
			return err
		}

		id, err = res.LastInsertId()
		if err != nil {
			return err
		}

		if s.retention > 0 {
			_, err = tx.ExecContext(ctx, `
				DELETE FROM notifications WHERE id NOT IN (
					SELECT id FROM notifications ORDER BY created_at DESC, id DESC LIMIT ?
				)`, s.retention)
		}
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("insert notification: %w", err)
	}

	return id, nil
}

// List returns notifications ordered by newest first.
func (s *NotifyStore) List(ctx context.Context, limit int) ([]notify.Notification, error) {
	if limit < 1 {
		limit = -1 // no limit
	}

	rows, err := s.db.Conn().QueryContext(ctx, `
		SELECT id, level, message, created_at FROM notifications
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer func() { _ = rows.Close() }()

	result := []notify.Notification{}
	for rows.Next() {
		var (
			n       notify.Notification
			level   string
			created int64
		)
		if err := rows.Scan(&n.ID, &level, &n.Message, &created); err != nil {
			return nil, fmt.Errorf("list notifications scan: %w", err)
		}
		n.Level = notify.Level(level)
		n.CreatedAt = time.Unix(0, created)
		result = append(result, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	return result, nil
}

// Clear deletes all notifications.
func (s *NotifyStore) Clear(ctx context.Context) error {
	if _, err := s.db.Conn().ExecContext(ctx, `DELETE FROM notifications`); err != nil {
		return fmt.Errorf("clear notifications: %w", err)
	}
	return nil
}

// Count returns the total number of notifications.
func (s *NotifyStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.Conn().QueryRowContext(ctx, `SELECT COUNT(*) FROM notifications`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count notifications: %w", err)
	}
	return count, nil
}
