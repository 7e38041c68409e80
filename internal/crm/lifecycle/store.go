package lifecycle

import (
	"context"

	"github.com/Yuvan-1166/crm-sub000/internal/crm/domain"
	"github.com/Yuvan-1166/crm-sub000/internal/crm/repository"

	"github.com/google/uuid"
)

// TxStore is the consumer-driven data access interface the transition
// authority needs inside a transaction. *repository.Queries satisfies it.
type TxStore interface {
	InsertContact(ctx context.Context, params repository.CreateContactParams) (repository.Contact, error)
	GetContact(ctx context.Context, id uuid.UUID) (repository.Contact, error)
	GetContactForUpdate(ctx context.Context, id uuid.UUID) (repository.Contact, error)
	GetContactByTokenForUpdate(ctx context.Context, token string) (repository.Contact, error)
	UpdateContactStatus(ctx context.Context, id uuid.UUID, status domain.Status) error
	IncrementInterestScore(ctx context.Context, id uuid.UUID) error
	UpdateContactTemperature(ctx context.Context, id uuid.UUID, temp domain.Temperature) error
	ListContacts(ctx context.Context, params repository.ListContactsParams) ([]repository.Contact, error)

	InsertOpportunity(ctx context.Context, contactID uuid.UUID, expectedValueCents int64) (repository.Opportunity, error)
	GetOpenOpportunityForUpdate(ctx context.Context, contactID uuid.UUID) (repository.Opportunity, error)
	HasOpenOpportunity(ctx context.Context, contactID uuid.UUID) (bool, error)
	CloseOpportunity(ctx context.Context, id uuid.UUID, status domain.OpportunityStatus, reason *string) error

	InsertDeal(ctx context.Context, opportunityID uuid.UUID, dealValueCents int64, closedBy *uuid.UUID) (repository.Deal, error)
	HasDeal(ctx context.Context, opportunityID uuid.UUID) (bool, error)

	InsertSession(ctx context.Context, params repository.CreateSessionParams) (repository.Session, error)
	UpdateSession(ctx context.Context, id, contactID uuid.UUID, params repository.UpdateSessionParams) (repository.Session, error)
	DeleteSession(ctx context.Context, id, contactID uuid.UUID) error
	ListSessions(ctx context.Context, contactID uuid.UUID) ([]repository.Session, error)

	InsertFeedback(ctx context.Context, contactID uuid.UUID, rating int, comment string) (repository.Feedback, error)
	ListFeedback(ctx context.Context, contactID uuid.UUID) ([]repository.Feedback, error)

	AppendHistory(ctx context.Context, contactID uuid.UUID, oldStatus, newStatus domain.Status, changedBy *uuid.UUID) error
	ListHistory(ctx context.Context, contactID uuid.UUID) ([]repository.StatusHistoryEntry, error)

	EnqueueSideEffect(ctx context.Context, params repository.SideEffectParams) (uuid.UUID, error)

	AvgSessionRating(ctx context.Context, contactID uuid.UUID) (float64, error)
	AvgStageSessionRating(ctx context.Context, contactID uuid.UUID, stage domain.Status) (float64, error)
	AvgFeedbackRating(ctx context.Context, contactID uuid.UUID) (float64, error)
}

// Store adds the transactional boundary. Transact must give fn the isolation
// of an exclusive contact row lock: read-check-write sequences on the same
// contact must not interleave.
type Store interface {
	TxStore
	Transact(ctx context.Context, fn func(tx TxStore) error) error
}

// Dispatcher hands committed outbox rows to the background queue. Dispatch is
// best-effort: a failure here is logged and left for the outbox sweeper, it
// never affects the committed transition.
type Dispatcher interface {
	Dispatch(ctx context.Context, outboxID uuid.UUID) error
}

// NoopDispatcher drops dispatch requests. Used when no queue is configured;
// the outbox sweeper remains the delivery path.
type NoopDispatcher struct{}

// Dispatch implements Dispatcher.
func (NoopDispatcher) Dispatch(context.Context, uuid.UUID) error { return nil }
