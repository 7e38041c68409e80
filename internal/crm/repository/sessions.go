package repository

import (
	"context"
	"time"

	"github.com/Yuvan-1166/crm-sub000/internal/crm/domain"

	"github.com/google/uuid"
)

// Session is a logged interaction with a contact. Stage is a snapshot of the
// contact's status at logging time, not a live reference.
type Session struct {
	ID                 uuid.UUID
	ContactID          uuid.UUID
	Stage              domain.Status
	Rating             *int
	SessionStatus      domain.SessionStatus
	LoggedByEmployeeID *uuid.UUID
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// CreateSessionParams are the inputs for logging a session.
type CreateSessionParams struct {
	ContactID          uuid.UUID
	Stage              domain.Status
	Rating             *int
	SessionStatus      domain.SessionStatus
	LoggedByEmployeeID *uuid.UUID
}

// UpdateSessionParams corrects an existing session's rating and/or outcome.
type UpdateSessionParams struct {
	Rating        *int
	RatingSet     bool
	SessionStatus *domain.SessionStatus
}

const sessionColumns = `id, contact_id, stage, rating, session_status, logged_by_employee_id, created_at, updated_at`

func scanSession(row interface{ Scan(dest ...any) error }) (Session, error) {
	var s Session
	err := row.Scan(&s.ID, &s.ContactID, &s.Stage, &s.Rating, &s.SessionStatus, &s.LoggedByEmployeeID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return Session{}, mapError(err)
	}
	return s, nil
}

// InsertSession logs a new session.
func (q *Queries) InsertSession(ctx context.Context, params CreateSessionParams) (Session, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO sessions (contact_id, stage, rating, session_status, logged_by_employee_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+sessionColumns,
		params.ContactID, params.Stage, params.Rating, params.SessionStatus, params.LoggedByEmployeeID,
	)
	return scanSession(row)
}

// UpdateSession applies an explicit correction to a session.
func (q *Queries) UpdateSession(ctx context.Context, id, contactID uuid.UUID, params UpdateSessionParams) (Session, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE sessions
		SET rating = CASE WHEN $3 THEN $4 ELSE rating END,
		    session_status = COALESCE($5, session_status),
		    updated_at = now()
		WHERE id = $1 AND contact_id = $2
		RETURNING `+sessionColumns,
		id, contactID, params.RatingSet, params.Rating, params.SessionStatus,
	)
	return scanSession(row)
}

// DeleteSession removes a session (admin correction path).
func (q *Queries) DeleteSession(ctx context.Context, id, contactID uuid.UUID) error {
	tag, err := q.db.Exec(ctx,
		`DELETE FROM sessions WHERE id = $1 AND contact_id = $2`,
		id, contactID,
	)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListSessions returns the contact's sessions, oldest first.
func (q *Queries) ListSessions(ctx context.Context, contactID uuid.UUID) ([]Session, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE contact_id = $1 ORDER BY created_at ASC`,
		contactID,
	)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	sessions := make([]Session, 0)
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, mapError(rows.Err())
}
