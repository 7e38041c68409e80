package repository

import (
	"context"
	"time"

	"github.com/Yuvan-1166/crm-sub000/internal/crm/domain"

	"github.com/google/uuid"
)

// Contact is the persisted lead/customer record.
type Contact struct {
	ID                 uuid.UUID
	FirstName          string
	LastName           string
	Email              *string
	Phone              string
	CompanyID          *uuid.UUID
	AssignedEmployeeID *uuid.UUID
	Status             domain.Status
	Temperature        domain.Temperature
	InterestScore      int
	TrackingToken      string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// CreateContactParams are the inputs for inserting a new contact. Status
// always starts at LEAD; the tracking token identifies the contact in
// marketing links.
type CreateContactParams struct {
	FirstName          string
	LastName           string
	Email              *string
	Phone              string
	CompanyID          *uuid.UUID
	AssignedEmployeeID *uuid.UUID
	TrackingToken      string
}

const contactColumns = `id, first_name, last_name, email, phone, company_id, assigned_employee_id,
	status, temperature, interest_score, tracking_token, created_at, updated_at`

func scanContact(row interface{ Scan(dest ...any) error }) (Contact, error) {
	var c Contact
	err := row.Scan(
		&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.CompanyID, &c.AssignedEmployeeID,
		&c.Status, &c.Temperature, &c.InterestScore, &c.TrackingToken, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return Contact{}, mapError(err)
	}
	return c, nil
}

// InsertContact creates a contact in status LEAD.
func (q *Queries) InsertContact(ctx context.Context, params CreateContactParams) (Contact, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO contacts (first_name, last_name, email, phone, company_id, assigned_employee_id, tracking_token)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+contactColumns,
		params.FirstName, params.LastName, params.Email, params.Phone,
		params.CompanyID, params.AssignedEmployeeID, params.TrackingToken,
	)
	return scanContact(row)
}

// GetContact fetches a contact by id.
func (q *Queries) GetContact(ctx context.Context, id uuid.UUID) (Contact, error) {
	row := q.db.QueryRow(ctx, `SELECT `+contactColumns+` FROM contacts WHERE id = $1`, id)
	return scanContact(row)
}

// GetContactForUpdate fetches a contact by id holding an exclusive row lock
// for the remainder of the transaction. All transition read-check-write
// sequences start here.
func (q *Queries) GetContactForUpdate(ctx context.Context, id uuid.UUID) (Contact, error) {
	row := q.db.QueryRow(ctx, `SELECT `+contactColumns+` FROM contacts WHERE id = $1 FOR UPDATE`, id)
	return scanContact(row)
}

// GetContactByTokenForUpdate fetches a contact by tracking token holding an
// exclusive row lock. Used by the automatic LEAD→MQL path.
func (q *Queries) GetContactByTokenForUpdate(ctx context.Context, token string) (Contact, error) {
	row := q.db.QueryRow(ctx, `SELECT `+contactColumns+` FROM contacts WHERE tracking_token = $1 FOR UPDATE`, token)
	return scanContact(row)
}

// UpdateContactStatus writes the contact's new pipeline status.
func (q *Queries) UpdateContactStatus(ctx context.Context, id uuid.UUID, status domain.Status) error {
	tag, err := q.db.Exec(ctx,
		`UPDATE contacts SET status = $2, updated_at = now() WHERE id = $1`,
		id, status,
	)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementInterestScore bumps the marketing interest score by one.
func (q *Queries) IncrementInterestScore(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx,
		`UPDATE contacts SET interest_score = interest_score + 1, updated_at = now() WHERE id = $1`,
		id,
	)
	return mapError(err)
}

// UpdateContactTemperature writes the cached temperature derivative. This is
// not a pipeline transition and must never touch status or status history.
func (q *Queries) UpdateContactTemperature(ctx context.Context, id uuid.UUID, temp domain.Temperature) error {
	_, err := q.db.Exec(ctx,
		`UPDATE contacts SET temperature = $2, updated_at = now() WHERE id = $1`,
		id, temp,
	)
	return mapError(err)
}

// ListContactsParams filters the contact listing.
type ListContactsParams struct {
	Status *domain.Status
	Limit  int
	Offset int
}

// ListContacts returns contacts ordered by creation time, newest first.
func (q *Queries) ListContacts(ctx context.Context, params ListContactsParams) ([]Contact, error) {
	limit := params.Limit
	if limit < 1 || limit > 200 {
		limit = 50
	}

	rows, err := q.db.Query(ctx, `
		SELECT `+contactColumns+`
		FROM contacts
		WHERE ($1::text IS NULL OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, params.Status, limit, params.Offset)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	contacts := make([]Contact, 0)
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, mapError(rows.Err())
}
