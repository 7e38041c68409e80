package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Feedback is an append-only rating left by a customer.
type Feedback struct {
	ID        uuid.UUID
	ContactID uuid.UUID
	Rating    int
	Comment   string
	CreatedAt time.Time
}

// InsertFeedback appends a feedback entry for the contact.
func (q *Queries) InsertFeedback(ctx context.Context, contactID uuid.UUID, rating int, comment string) (Feedback, error) {
	var f Feedback
	err := q.db.QueryRow(ctx, `
		INSERT INTO feedback (contact_id, rating, comment)
		VALUES ($1, $2, $3)
		RETURNING id, contact_id, rating, comment, created_at
	`, contactID, rating, comment).Scan(&f.ID, &f.ContactID, &f.Rating, &f.Comment, &f.CreatedAt)
	if err != nil {
		return Feedback{}, mapError(err)
	}
	return f, nil
}

// ListFeedback returns the contact's feedback entries, newest first.
func (q *Queries) ListFeedback(ctx context.Context, contactID uuid.UUID) ([]Feedback, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, contact_id, rating, comment, created_at
		FROM feedback
		WHERE contact_id = $1
		ORDER BY created_at DESC
	`, contactID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	items := make([]Feedback, 0)
	for rows.Next() {
		var f Feedback
		if err := rows.Scan(&f.ID, &f.ContactID, &f.Rating, &f.Comment, &f.CreatedAt); err != nil {
			return nil, mapError(err)
		}
		items = append(items, f)
	}
	return items, mapError(rows.Err())
}
