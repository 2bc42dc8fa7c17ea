package postgres

import (
	"context"
	"database/sql"
	"time"

	"karhubty-backend/internal/domain"
	"karhubty-backend/internal/logger"
	"karhubty-backend/internal/repository"
)

type notificationRepository struct {
	db DBTX
}

func NewNotificationRepository(db DBTX) repository.NotificationRepository {
	return &notificationRepository{db: db}
}

const notificationColumns = `id, recipient_id, recipient_type, type, title, message, COALESCE(related_entity_type, ''), related_entity_id, is_read, created_at`

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	logger.EnterMethod("notificationRepository.Create", "recipientID", n.RecipientID, "recipientType", n.RecipientType, "type", n.Type)

	query := `INSERT INTO notifications (recipient_id, recipient_type, type, title, message, related_entity_type, related_entity_id, is_read, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	n.CreatedAt = time.Now().UTC()
	logger.DatabaseCall("INSERT", "notifications", "recipientID", n.RecipientID, "recipientType", n.RecipientType)

	err := r.db.QueryRowContext(ctx, query, n.RecipientID, n.RecipientType, n.Type, n.Title, n.Message, nullString(n.RelatedEntityType), n.RelatedEntityID, n.IsRead, n.CreatedAt).Scan(&n.ID)
	logger.DatabaseResult("INSERT", 1, err, "notificationID", n.ID)

	if err != nil {
		logger.ExitMethodWithError("notificationRepository.Create", err, "recipientID", n.RecipientID)
	} else {
		logger.ExitMethod("notificationRepository.Create", "notificationID", n.ID)
	}
	return err
}

func (r *notificationRepository) List(ctx context.Context, rc domain.Recipient, unreadOnly bool) ([]domain.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE recipient_id = $1 AND recipient_type = $2`
	if unreadOnly {
		query += ` AND is_read = FALSE`
	}
	query += ` ORDER BY created_at DESC`

	logger.DatabaseCall("SELECT", "notifications", "recipientID", rc.ID, "unreadOnly", unreadOnly)
	rows, err := r.db.QueryContext(ctx, query, rc.ID, rc.Type)
	if err != nil {
		logger.DatabaseResult("SELECT", 0, err)
		return nil, err
	}
	defer rows.Close()

	var notes []domain.Notification
	for rows.Next() {
		var n domain.Notification
		var related sql.NullInt64
		if err := rows.Scan(&n.ID, &n.RecipientID, &n.RecipientType, &n.Type, &n.Title, &n.Message, &n.RelatedEntityType, &related, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		if related.Valid {
			id := related.Int64
			n.RelatedEntityID = &id
		}
		notes = append(notes, n)
	}
	logger.DatabaseResult("SELECT", int64(len(notes)), rows.Err())
	return notes, rows.Err()
}

func (r *notificationRepository) CountUnread(ctx context.Context, rc domain.Recipient) (int64, error) {
	query := `SELECT count(*) FROM notifications WHERE recipient_id = $1 AND recipient_type = $2 AND is_read = FALSE`
	var count int64
	err := r.db.QueryRowContext(ctx, query, rc.ID, rc.Type).Scan(&count)
	return count, err
}

// MarkAsRead only touches notifications owned by rc, so a foreign id reads as
// not found.
func (r *notificationRepository) MarkAsRead(ctx context.Context, id int64, rc domain.Recipient) error {
	query := `UPDATE notifications SET is_read = TRUE WHERE id = $1 AND recipient_id = $2 AND recipient_type = $3`
	logger.DatabaseCall("UPDATE", "notifications", "notificationID", id)
	res, err := r.db.ExecContext(ctx, query, id, rc.ID, rc.Type)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err)
		return err
	}
	n, err := expectAffected(res, domain.ErrNotificationNotFound)
	logger.DatabaseResult("UPDATE", n, err, "notificationID", id)
	return err
}

func (r *notificationRepository) MarkAllAsRead(ctx context.Context, rc domain.Recipient) (int64, error) {
	query := `UPDATE notifications SET is_read = TRUE WHERE recipient_id = $1 AND recipient_type = $2 AND is_read = FALSE`
	logger.DatabaseCall("UPDATE", "notifications", "recipientID", rc.ID)
	res, err := r.db.ExecContext(ctx, query, rc.ID, rc.Type)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err)
		return 0, err
	}
	n, err := res.RowsAffected()
	logger.DatabaseResult("UPDATE", n, err, "recipientID", rc.ID)
	return n, err
}

func (r *notificationRepository) Delete(ctx context.Context, id int64, rc domain.Recipient) error {
	query := `DELETE FROM notifications WHERE id = $1 AND recipient_id = $2 AND recipient_type = $3`
	logger.DatabaseCall("DELETE", "notifications", "notificationID", id)
	res, err := r.db.ExecContext(ctx, query, id, rc.ID, rc.Type)
	if err != nil {
		logger.DatabaseResult("DELETE", 0, err)
		return err
	}
	n, err := expectAffected(res, domain.ErrNotificationNotFound)
	logger.DatabaseResult("DELETE", n, err, "notificationID", id)
	return err
}
