package lifecycle

import (
	"context"
	"errors"

	"github.com/Yuvan-1166/crm-sub000/internal/crm/domain"
	"github.com/Yuvan-1166/crm-sub000/internal/crm/repository"
	"github.com/Yuvan-1166/crm-sub000/internal/crm/signals"
	"github.com/Yuvan-1166/crm-sub000/internal/events"
	"github.com/Yuvan-1166/crm-sub000/platform/apperr"

	"github.com/google/uuid"
)

// RecordSessionParams are the inputs for logging a session.
type RecordSessionParams struct {
	ContactID     uuid.UUID
	Rating        *int
	SessionStatus domain.SessionStatus
	ActorID       *uuid.UUID
}

// RecordSession logs an interaction with the contact and recomputes the
// cached temperature in the same transaction. The session's stage is a
// snapshot of the contact's status at logging time. This is not a pipeline
// transition: no status change, no history row.
func (s *Service) RecordSession(ctx context.Context, params RecordSessionParams) (repository.Session, error) {
	if !domain.IsKnownSessionStatus(params.SessionStatus) {
		return repository.Session{}, apperr.Validation("unknown session status")
	}

	var session repository.Session
	var temp domain.Temperature
	err := s.store.Transact(ctx, func(tx TxStore) error {
		contact, err := tx.GetContactForUpdate(ctx, params.ContactID)
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("contact not found")
		}
		if err != nil {
			return err
		}

		session, err = tx.InsertSession(ctx, repository.CreateSessionParams{
			ContactID:          contact.ID,
			Stage:              contact.Status,
			Rating:             params.Rating,
			SessionStatus:      params.SessionStatus,
			LoggedByEmployeeID: params.ActorID,
		})
		if err != nil {
			return err
		}

		temp, err = signals.RecomputeTemperature(ctx, tx, contact.ID)
		return err
	})
	if err != nil {
		return repository.Session{}, err
	}

	s.bus.Publish(ctx, events.SessionRecorded{
		BaseEvent:   events.NewBaseEvent(),
		ContactID:   session.ContactID,
		SessionID:   session.ID,
		Temperature: temp,
	})
	return session, nil
}

// CorrectSession applies an explicit rating/outcome correction to a session
// and recomputes the temperature.
func (s *Service) CorrectSession(ctx context.Context, contactID, sessionID uuid.UUID, params repository.UpdateSessionParams) (repository.Session, error) {
	var session repository.Session
	var temp domain.Temperature
	err := s.store.Transact(ctx, func(tx TxStore) error {
		var err error
		session, err = tx.UpdateSession(ctx, sessionID, contactID, params)
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("session not found")
		}
		if err != nil {
			return err
		}

		temp, err = signals.RecomputeTemperature(ctx, tx, contactID)
		return err
	})
	if err != nil {
		return repository.Session{}, err
	}

	s.bus.Publish(ctx, events.SessionRecorded{
		BaseEvent:   events.NewBaseEvent(),
		ContactID:   contactID,
		SessionID:   session.ID,
		Temperature: temp,
	})
	return session, nil
}

// RemoveSession deletes a session (admin action) and recomputes the
// temperature.
func (s *Service) RemoveSession(ctx context.Context, contactID, sessionID uuid.UUID) error {
	return s.store.Transact(ctx, func(tx TxStore) error {
		if err := tx.DeleteSession(ctx, sessionID, contactID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperr.NotFound("session not found")
			}
			return err
		}
		_, err := signals.RecomputeTemperature(ctx, tx, contactID)
		return err
	})
}

// RecordFeedback appends customer feedback. The contact must be a CUSTOMER.
// A qualifying average triggers the CUSTOMER→EVANGELIST promotion as a
// system-driven side effect; an unsatisfied gate is simply not yet reached.
func (s *Service) RecordFeedback(ctx context.Context, contactID uuid.UUID, rating int, comment string) (repository.Feedback, error) {
	if rating < 1 || rating > 10 {
		return repository.Feedback{}, apperr.Validation("rating must be between 1 and 10")
	}

	var feedback repository.Feedback
	err := s.store.Transact(ctx, func(tx TxStore) error {
		contact, err := tx.GetContactForUpdate(ctx, contactID)
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("contact not found")
		}
		if err != nil {
			return err
		}
		if contact.Status != domain.StatusCustomer {
			return apperr.InvalidState(
				"feedback can only be recorded for customers",
				string(contact.Status), string(domain.StatusCustomer),
			)
		}

		feedback, err = tx.InsertFeedback(ctx, contact.ID, rating, comment)
		return err
	})
	if err != nil {
		return repository.Feedback{}, err
	}

	s.bus.Publish(ctx, events.FeedbackRecorded{
		BaseEvent:  events.NewBaseEvent(),
		ContactID:  contactID,
		FeedbackID: feedback.ID,
		Rating:     rating,
	})

	// Attempt the system-driven promotion. Rejections are expected while the
	// average is below the gate.
	if _, err := s.PromoteToEvangelist(ctx, contactID, nil); err != nil {
		if !apperr.Is(err, apperr.KindGateUnsatisfied) && !apperr.Is(err, apperr.KindInvalidState) {
			s.log.Error("evangelist promotion check failed", "contactId", contactID, "error", err)
		}
	}

	return feedback, nil
}
