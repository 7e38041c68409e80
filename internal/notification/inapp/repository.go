package inapp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Yuvan-1166/crm-sub000/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	opCreate      = "notification.inapp.repository.create"
	opList        = "notification.inapp.repository.list"
	opCountUnread = "notification.inapp.repository.count_unread"
	opMarkRead    = "notification.inapp.repository.mark_read"
	opMarkAllRead = "notification.inapp.repository.mark_all_read"

	errRepoNotConfigured = "in-app notification repository not configured"
	errEmployeeRequired  = "employeeId is required"
)

type Notification struct {
	ID         uuid.UUID  `json:"id"`
	EmployeeID uuid.UUID  `json:"employeeId"`
	ContactID  *uuid.UUID `json:"contactId,omitempty"`
	Kind       string     `json:"kind"`
	Title      string     `json:"title"`
	Body       string     `json:"body,omitempty"`
	ReadAt     *time.Time `json:"readAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

type CreateParams struct {
	EmployeeID uuid.UUID
	ContactID  *uuid.UUID
	Kind       string
	Title      string
	Body       string
}

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, p CreateParams) (Notification, error) {
	if r == nil || r.pool == nil {
		return Notification{}, apperr.Internal(errRepoNotConfigured).WithOp(opCreate)
	}
	if p.EmployeeID == uuid.Nil {
		return Notification{}, apperr.Validation(errEmployeeRequired).WithOp(opCreate)
	}
	if p.Title == "" {
		return Notification{}, apperr.Validation("title is required").WithOp(opCreate)
	}

	kind := p.Kind
	if kind == "" {
		kind = "info"
	}

	var n Notification
	err := r.pool.QueryRow(ctx, `
		INSERT INTO inapp_notifications (employee_id, contact_id, kind, title, body)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, employee_id, contact_id, kind, title, body, read_at, created_at
	`, p.EmployeeID, p.ContactID, kind, p.Title, p.Body).Scan(
		&n.ID, &n.EmployeeID, &n.ContactID, &n.Kind, &n.Title, &n.Body, &n.ReadAt, &n.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return Notification{}, apperr.Validation("invalid employeeId or contactId").WithOp(opCreate)
		}
		return Notification{}, apperr.Internal(fmt.Sprintf("create in-app notification failed: %v", err)).WithOp(opCreate)
	}

	return n, nil
}

func (r *Repository) List(ctx context.Context, employeeID uuid.UUID, limit, offset int) ([]Notification, int, error) {
	if r == nil || r.pool == nil {
		return nil, 0, apperr.Internal(errRepoNotConfigured).WithOp(opList)
	}
	if employeeID == uuid.Nil {
		return nil, 0, apperr.Validation(errEmployeeRequired).WithOp(opList)
	}
	if limit < 1 {
		limit = 20
	}

	var total int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM inapp_notifications WHERE employee_id = $1`, employeeID).Scan(&total)
	if err != nil {
		return nil, 0, apperr.Internal(fmt.Sprintf("count notifications failed: %v", err)).WithOp(opList)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, employee_id, contact_id, kind, title, body, read_at, created_at
		FROM inapp_notifications
		WHERE employee_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, employeeID, limit, offset)
	if err != nil {
		return nil, 0, apperr.Internal(fmt.Sprintf("list notifications query failed: %v", err)).WithOp(opList)
	}
	defer rows.Close()

	items := make([]Notification, 0, limit)
	for rows.Next() {
		var n Notification
		if scanErr := rows.Scan(&n.ID, &n.EmployeeID, &n.ContactID, &n.Kind, &n.Title, &n.Body, &n.ReadAt, &n.CreatedAt); scanErr != nil {
			return nil, 0, apperr.Internal(fmt.Sprintf("scan notifications failed: %v", scanErr)).WithOp(opList)
		}
		items = append(items, n)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, 0, apperr.Internal(fmt.Sprintf("iterate notifications failed: %v", rowsErr)).WithOp(opList)
	}

	return items, total, nil
}

func (r *Repository) CountUnread(ctx context.Context, employeeID uuid.UUID) (int, error) {
	if r == nil || r.pool == nil {
		return 0, apperr.Internal(errRepoNotConfigured).WithOp(opCountUnread)
	}
	if employeeID == uuid.Nil {
		return 0, apperr.Validation(errEmployeeRequired).WithOp(opCountUnread)
	}

	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM inapp_notifications
		WHERE employee_id = $1 AND read_at IS NULL
	`, employeeID).Scan(&count)
	if err != nil {
		return 0, apperr.Internal(fmt.Sprintf("count unread notifications failed: %v", err)).WithOp(opCountUnread)
	}

	return count, nil
}

func (r *Repository) MarkRead(ctx context.Context, employeeID, notificationID uuid.UUID) error {
	if r == nil || r.pool == nil {
		return apperr.Internal(errRepoNotConfigured).WithOp(opMarkRead)
	}
	if employeeID == uuid.Nil || notificationID == uuid.Nil {
		return apperr.Validation("employeeId and notificationId are required").WithOp(opMarkRead)
	}

	_, err := r.pool.Exec(ctx, `
		UPDATE inapp_notifications
		SET read_at = now()
		WHERE id = $1 AND employee_id = $2 AND read_at IS NULL
	`, notificationID, employeeID)
	if err != nil {
		return apperr.Internal(fmt.Sprintf("mark notification read failed: %v", err)).WithOp(opMarkRead)
	}

	return nil
}

func (r *Repository) MarkAllRead(ctx context.Context, employeeID uuid.UUID) error {
	if r == nil || r.pool == nil {
		return apperr.Internal(errRepoNotConfigured).WithOp(opMarkAllRead)
	}
	if employeeID == uuid.Nil {
		return apperr.Validation(errEmployeeRequired).WithOp(opMarkAllRead)
	}

	_, err := r.pool.Exec(ctx, `
		UPDATE inapp_notifications
		SET read_at = now()
		WHERE employee_id = $1 AND read_at IS NULL
	`, employeeID)
	if err != nil {
		return apperr.Internal(fmt.Sprintf("mark all notifications read failed: %v", err)).WithOp(opMarkAllRead)
	}

	return nil
}
