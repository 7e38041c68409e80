package repository

import (
	"context"

	"github.com/Yuvan-1166/crm-sub000/internal/crm/domain"

	"github.com/google/uuid"
)

// Derived-signal aggregates. These are read-only; empty sets yield 0, which
// sits below every gate threshold.

// AvgSessionRating returns the average rating over all rated sessions for the
// contact.
func (q *Queries) AvgSessionRating(ctx context.Context, contactID uuid.UUID) (float64, error) {
	var avg float64
	err := q.db.QueryRow(ctx, `
		SELECT COALESCE(AVG(rating), 0)
		FROM sessions
		WHERE contact_id = $1 AND rating IS NOT NULL
	`, contactID).Scan(&avg)
	return avg, mapError(err)
}

// AvgStageSessionRating returns the average rating over rated sessions logged
// while the contact was in the given stage.
func (q *Queries) AvgStageSessionRating(ctx context.Context, contactID uuid.UUID, stage domain.Status) (float64, error) {
	var avg float64
	err := q.db.QueryRow(ctx, `
		SELECT COALESCE(AVG(rating), 0)
		FROM sessions
		WHERE contact_id = $1 AND stage = $2 AND rating IS NOT NULL
	`, contactID, stage).Scan(&avg)
	return avg, mapError(err)
}

// AvgFeedbackRating returns the average feedback rating for the contact.
func (q *Queries) AvgFeedbackRating(ctx context.Context, contactID uuid.UUID) (float64, error) {
	var avg float64
	err := q.db.QueryRow(ctx, `
		SELECT COALESCE(AVG(rating), 0)
		FROM feedback
		WHERE contact_id = $1
	`, contactID).Scan(&avg)
	return avg, mapError(err)
}
