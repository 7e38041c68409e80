package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Deal is the immutable financial record created when an opportunity is won.
// There is no update or delete path for deals.
type Deal struct {
	ID                 uuid.UUID
	OpportunityID      uuid.UUID
	DealValueCents     int64
	ClosedByEmployeeID *uuid.UUID
	ClosedAt           time.Time
}

// InsertDeal creates the deal for a won opportunity. The unique index on
// opportunity_id turns a duplicate insert into ErrConflict.
func (q *Queries) InsertDeal(ctx context.Context, opportunityID uuid.UUID, dealValueCents int64, closedBy *uuid.UUID) (Deal, error) {
	var d Deal
	err := q.db.QueryRow(ctx, `
		INSERT INTO deals (opportunity_id, deal_value_cents, closed_by_employee_id)
		VALUES ($1, $2, $3)
		RETURNING id, opportunity_id, deal_value_cents, closed_by_employee_id, closed_at
	`, opportunityID, dealValueCents, closedBy).Scan(
		&d.ID, &d.OpportunityID, &d.DealValueCents, &d.ClosedByEmployeeID, &d.ClosedAt,
	)
	if err != nil {
		return Deal{}, mapError(err)
	}
	return d, nil
}

// HasDeal reports whether a deal already exists for the opportunity.
func (q *Queries) HasDeal(ctx context.Context, opportunityID uuid.UUID) (bool, error) {
	var exists bool
	err := q.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM deals WHERE opportunity_id = $1)`,
		opportunityID,
	).Scan(&exists)
	return exists, mapError(err)
}
