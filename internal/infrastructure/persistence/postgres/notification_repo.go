package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/edupulse/student-risk-hub/internal/domain/notification"
	"github.com/edupulse/student-risk-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// NOTIFICATION REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

const notificationColumns = `
	id, recipient_id, student_id, type, title, message, read, created_at`

// NotificationRepository implements notification.Repository for PostgreSQL.
type NotificationRepository struct {
	conn *Connection
}

// NewNotificationRepository creates a new NotificationRepository.
func NewNotificationRepository(conn *Connection) *NotificationRepository {
	return &NotificationRepository{conn: conn}
}

// Create persists a new notification.
func (r *NotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	query := `
		INSERT INTO notifications (
			id, recipient_id, student_id, type, title, message, read, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`
	_, err := r.conn.Exec(ctx, query,
		n.ID, n.RecipientID, n.StudentID, string(n.Type), n.Title, n.Message, n.Read, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// GetByID returns a notification by ID.
func (r *NotificationRepository) GetByID(ctx context.Context, id string) (*notification.Notification, error) {
	query := `SELECT` + notificationColumns + ` FROM notifications WHERE id = $1`
	return scanNotification(r.conn.QueryRow(ctx, query, id))
}

// UnreadForRecipient returns unread notifications, newest first.
func (r *NotificationRepository) UnreadForRecipient(ctx context.Context, recipientID string, limit int) ([]*notification.Notification, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT` + notificationColumns + `
		FROM notifications
		WHERE recipient_id = $1 AND read = FALSE
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.conn.Query(ctx, query, recipientID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	var out []*notification.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkRead flags a notification as read.
func (r *NotificationRepository) MarkRead(ctx context.Context, id string) error {
	result, err := r.conn.Exec(ctx, `UPDATE notifications SET read = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if result.RowsAffected() == 0 {
		return shared.ErrNotificationNotFound
	}
	return nil
}

// MarkAllRead flags every unread notification for a recipient as read.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, recipientID string) (int, error) {
	result, err := r.conn.Exec(ctx,
		`UPDATE notifications SET read = TRUE WHERE recipient_id = $1 AND read = FALSE`,
		recipientID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return int(result.RowsAffected()), nil
}

// CountUnread returns the unread count for a recipient.
func (r *NotificationRepository) CountUnread(ctx context.Context, recipientID string) (int, error) {
	var n int
	err := r.conn.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE recipient_id = $1 AND read = FALSE`,
		recipientID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count notifications: %w", err)
	}
	return n, nil
}

func scanNotification(row pgx.Row) (*notification.Notification, error) {
	var (
		n   notification.Notification
		typ string
	)

	err := row.Scan(&n.ID, &n.RecipientID, &n.StudentID, &typ, &n.Title, &n.Message, &n.Read, &n.CreatedAt)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrNotificationNotFound
		}
		return nil, fmt.Errorf("failed to scan notification: %w", err)
	}

	n.Type = notification.Type(typ)
	return &n, nil
}
