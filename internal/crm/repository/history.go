package repository

import (
	"context"
	"time"

	"github.com/Yuvan-1166/crm-sub000/internal/crm/domain"

	"github.com/google/uuid"
)

// StatusHistoryEntry is one row of the append-only transition audit log.
// The repository exposes no update or delete for this table.
type StatusHistoryEntry struct {
	ID        uuid.UUID
	ContactID uuid.UUID
	OldStatus domain.Status
	NewStatus domain.Status
	ChangedBy *uuid.UUID // nil for system-driven transitions
	ChangedAt time.Time
}

// AppendHistory records a committed transition. Called inside the same
// transaction as the status write so the log can never miss a transition.
func (q *Queries) AppendHistory(ctx context.Context, contactID uuid.UUID, oldStatus, newStatus domain.Status, changedBy *uuid.UUID) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO status_history (contact_id, old_status, new_status, changed_by)
		VALUES ($1, $2, $3, $4)
	`, contactID, oldStatus, newStatus, changedBy)
	return mapError(err)
}

// ListHistory returns the contact's transitions in commit order.
func (q *Queries) ListHistory(ctx context.Context, contactID uuid.UUID) ([]StatusHistoryEntry, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, contact_id, old_status, new_status, changed_by, changed_at
		FROM status_history
		WHERE contact_id = $1
		ORDER BY changed_at ASC, id ASC
	`, contactID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	entries := make([]StatusHistoryEntry, 0)
	for rows.Next() {
		var e StatusHistoryEntry
		if err := rows.Scan(&e.ID, &e.ContactID, &e.OldStatus, &e.NewStatus, &e.ChangedBy, &e.ChangedAt); err != nil {
			return nil, mapError(err)
		}
		entries = append(entries, e)
	}
	return entries, mapError(rows.Err())
}
