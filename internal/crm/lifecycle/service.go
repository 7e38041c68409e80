// Package lifecycle implements the transition authority of the sales
// pipeline: it validates requested transitions against the contact's current
// status, re-evaluates gating signals at commit time, and commits the
// transition with its audit log entry and side-effect rows as one atomic
// unit.
package lifecycle

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"

	"github.com/Yuvan-1166/crm-sub000/internal/crm/domain"
	"github.com/Yuvan-1166/crm-sub000/internal/crm/repository"
	"github.com/Yuvan-1166/crm-sub000/internal/events"
	"github.com/Yuvan-1166/crm-sub000/platform/apperr"
	"github.com/Yuvan-1166/crm-sub000/platform/logger"
	"github.com/Yuvan-1166/crm-sub000/platform/phone"

	"github.com/google/uuid"
)

// Side-effect kinds understood by the notification dispatcher.
const (
	SideEffectWelcomeEmail = "lead.email.welcome"
	SideEffectDealWonEmail = "deal.email.won"
	SideEffectInApp        = "notify.inapp"
)

// Service is the transition authority.
type Service struct {
	store    Store
	bus      events.Bus
	dispatch Dispatcher
	log      *logger.Logger
}

// New creates the transition authority service.
func New(store Store, bus events.Bus, dispatch Dispatcher, log *logger.Logger) *Service {
	if dispatch == nil {
		dispatch = NoopDispatcher{}
	}
	return &Service{store: store, bus: bus, dispatch: dispatch, log: log}
}

// TransitionResult reports the outcome of a committed (or no-op) transition.
type TransitionResult struct {
	ContactID     uuid.UUID      `json:"contactId"`
	OldStatus     domain.Status  `json:"oldStatus"`
	NewStatus     domain.Status  `json:"newStatus"`
	Applied       bool           `json:"applied"`
	OpportunityID *uuid.UUID     `json:"opportunityId,omitempty"`
	DealID        *uuid.UUID     `json:"dealId,omitempty"`
}

// commitEffects carries everything that must happen only after the
// transaction has committed: queue handoff for outbox rows and domain event
// publication. Nothing in here runs on a rolled-back or no-op transition.
type commitEffects struct {
	outboxIDs []uuid.UUID
	events    []events.Event
}

func (s *Service) runEffects(ctx context.Context, fx *commitEffects) {
	for _, id := range fx.outboxIDs {
		if err := s.dispatch.Dispatch(ctx, id); err != nil {
			// The sweeper re-enqueues pending rows, so a failed handoff only
			// delays delivery.
			s.log.DispatchFailure("queue_handoff", id.String(), 0, err)
		}
	}
	for _, ev := range fx.events {
		s.bus.Publish(ctx, ev)
	}
}

// CreateContactParams are the inputs for creating a contact.
type CreateContactParams struct {
	FirstName          string
	LastName           string
	Email              *string
	Phone              string
	CompanyID          *uuid.UUID
	AssignedEmployeeID *uuid.UUID
}

// CreateContact creates a contact in LEAD and schedules the welcome email
// carrying the tracking token.
func (s *Service) CreateContact(ctx context.Context, params CreateContactParams) (repository.Contact, error) {
	token, err := newTrackingToken()
	if err != nil {
		return repository.Contact{}, apperr.Wrap(apperr.KindInternal, "generate tracking token", err)
	}

	var contact repository.Contact
	fx := &commitEffects{}
	err = s.store.Transact(ctx, func(tx TxStore) error {
		contact, err = tx.InsertContact(ctx, repository.CreateContactParams{
			FirstName:          params.FirstName,
			LastName:           params.LastName,
			Email:              params.Email,
			Phone:              phone.NormalizeE164(params.Phone),
			CompanyID:          params.CompanyID,
			AssignedEmployeeID: params.AssignedEmployeeID,
			TrackingToken:      token,
		})
		if err != nil {
			return err
		}

		if params.Email != nil && *params.Email != "" {
			outboxID, err := tx.EnqueueSideEffect(ctx, repository.SideEffectParams{
				ContactID: contact.ID,
				Kind:      SideEffectWelcomeEmail,
				Payload: map[string]string{
					"email":         *params.Email,
					"firstName":     params.FirstName,
					"trackingToken": token,
				},
			})
			if err != nil {
				return err
			}
			fx.outboxIDs = append(fx.outboxIDs, outboxID)
		}
		return nil
	})
	if err != nil {
		return repository.Contact{}, err
	}

	fx.events = append(fx.events, events.ContactCreated{
		BaseEvent:          events.NewBaseEvent(),
		ContactID:          contact.ID,
		AssignedEmployeeID: contact.AssignedEmployeeID,
		Email:              stringOrEmpty(contact.Email),
		TrackingToken:      token,
	})
	s.runEffects(ctx, fx)
	return contact, nil
}

// GetContact fetches a contact.
func (s *Service) GetContact(ctx context.Context, id uuid.UUID) (repository.Contact, error) {
	contact, err := s.store.GetContact(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.Contact{}, apperr.NotFound("contact not found")
	}
	return contact, err
}

// ListContacts lists contacts with optional status filtering.
func (s *Service) ListContacts(ctx context.Context, params repository.ListContactsParams) ([]repository.Contact, error) {
	return s.store.ListContacts(ctx, params)
}

// History returns the contact's audit trail in commit order.
func (s *Service) History(ctx context.Context, contactID uuid.UUID) ([]repository.StatusHistoryEntry, error) {
	if _, err := s.GetContact(ctx, contactID); err != nil {
		return nil, err
	}
	return s.store.ListHistory(ctx, contactID)
}

// Sessions returns the contact's logged sessions.
func (s *Service) Sessions(ctx context.Context, contactID uuid.UUID) ([]repository.Session, error) {
	if _, err := s.GetContact(ctx, contactID); err != nil {
		return nil, err
	}
	return s.store.ListSessions(ctx, contactID)
}

// Feedback returns the contact's feedback entries.
func (s *Service) Feedback(ctx context.Context, contactID uuid.UUID) ([]repository.Feedback, error) {
	if _, err := s.GetContact(ctx, contactID); err != nil {
		return nil, err
	}
	return s.store.ListFeedback(ctx, contactID)
}

func newTrackingToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
