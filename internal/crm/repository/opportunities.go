package repository

import (
	"context"
	"time"

	"github.com/Yuvan-1166/crm-sub000/internal/crm/domain"

	"github.com/google/uuid"
)

// Opportunity is a tracked potential sale tied to a contact.
type Opportunity struct {
	ID                 uuid.UUID
	ContactID          uuid.UUID
	Status             domain.OpportunityStatus
	ExpectedValueCents int64
	Reason             *string
	CreatedAt          time.Time
	ClosedAt           *time.Time
}

const opportunityColumns = `id, contact_id, status, expected_value_cents, reason, created_at, closed_at`

func scanOpportunity(row interface{ Scan(dest ...any) error }) (Opportunity, error) {
	var o Opportunity
	err := row.Scan(&o.ID, &o.ContactID, &o.Status, &o.ExpectedValueCents, &o.Reason, &o.CreatedAt, &o.ClosedAt)
	if err != nil {
		return Opportunity{}, mapError(err)
	}
	return o, nil
}

// InsertOpportunity opens a new opportunity for the contact. The partial
// unique index on (contact_id) WHERE status = 'OPEN' turns a double-open race
// into ErrConflict.
func (q *Queries) InsertOpportunity(ctx context.Context, contactID uuid.UUID, expectedValueCents int64) (Opportunity, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO opportunities (contact_id, expected_value_cents)
		VALUES ($1, $2)
		RETURNING `+opportunityColumns,
		contactID, expectedValueCents,
	)
	return scanOpportunity(row)
}

// GetOpenOpportunityForUpdate fetches the contact's OPEN opportunity holding
// a row lock. Returns ErrNotFound when the contact has none.
func (q *Queries) GetOpenOpportunityForUpdate(ctx context.Context, contactID uuid.UUID) (Opportunity, error) {
	row := q.db.QueryRow(ctx, `
		SELECT `+opportunityColumns+`
		FROM opportunities
		WHERE contact_id = $1 AND status = 'OPEN'
		FOR UPDATE
	`, contactID)
	return scanOpportunity(row)
}

// HasOpenOpportunity reports whether the contact currently has an OPEN
// opportunity.
func (q *Queries) HasOpenOpportunity(ctx context.Context, contactID uuid.UUID) (bool, error) {
	var exists bool
	err := q.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM opportunities WHERE contact_id = $1 AND status = 'OPEN')`,
		contactID,
	).Scan(&exists)
	return exists, mapError(err)
}

// CloseOpportunity terminates an opportunity exactly once. The status filter
// makes the close a compare-and-swap: closing an already-terminated
// opportunity reports ErrNotFound.
func (q *Queries) CloseOpportunity(ctx context.Context, id uuid.UUID, status domain.OpportunityStatus, reason *string) error {
	tag, err := q.db.Exec(ctx, `
		UPDATE opportunities
		SET status = $2, reason = $3, closed_at = now()
		WHERE id = $1 AND status = 'OPEN'
	`, id, status, reason)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetOpportunity fetches an opportunity by id.
func (q *Queries) GetOpportunity(ctx context.Context, id uuid.UUID) (Opportunity, error) {
	row := q.db.QueryRow(ctx, `SELECT `+opportunityColumns+` FROM opportunities WHERE id = $1`, id)
	return scanOpportunity(row)
}
