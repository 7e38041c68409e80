package lifecycle

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/Yuvan-1166/crm-sub000/internal/crm/domain"
	"github.com/Yuvan-1166/crm-sub000/internal/crm/repository"
	"github.com/Yuvan-1166/crm-sub000/internal/events"
	"github.com/Yuvan-1166/crm-sub000/platform/logger"

	"github.com/google/uuid"
)

// memStore is an in-memory Store for service tests. Transact serializes
// callers on a single mutex, which matches the isolation the contact row lock
// gives concurrent transitions on the same contact. It implements no
// rollback: every service path that rejects a transition does so before its
// first write.
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	now time.Time

	contacts      map[uuid.UUID]repository.Contact
	tokens        map[string]uuid.UUID
	opportunities map[uuid.UUID]repository.Opportunity
	deals         map[uuid.UUID]repository.Deal
	sessions      []repository.Session
	feedback      []repository.Feedback
	history       []repository.StatusHistoryEntry
	outbox        []outboxRow
}

type outboxRow struct {
	ID        uuid.UUID
	ContactID uuid.UUID
	Kind      string
}

func newMemStore() *memStore {
	return &memStore{
		now:           time.Now(),
		contacts:      make(map[uuid.UUID]repository.Contact),
		tokens:        make(map[string]uuid.UUID),
		opportunities: make(map[uuid.UUID]repository.Opportunity),
		deals:         make(map[uuid.UUID]repository.Deal),
	}
}

func (s *memStore) Transact(ctx context.Context, fn func(tx TxStore) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return fn(s)
}

func (s *memStore) tick() time.Time {
	s.now = s.now.Add(time.Second)
	return s.now
}

// seedContact inserts a contact directly in the given status, bypassing the
// service, so tests can start mid-funnel.
func (s *memStore) seedContact(status domain.Status, email *string, assigned *uuid.UUID) repository.Contact {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := repository.Contact{
		ID:                 uuid.New(),
		FirstName:          "Ada",
		LastName:           "Lovelace",
		Email:              email,
		Phone:              "+14155550100",
		AssignedEmployeeID: assigned,
		Status:             status,
		Temperature:        domain.TemperatureCold,
		TrackingToken:      uuid.NewString(),
		CreatedAt:          s.tick(),
	}
	c.UpdatedAt = c.CreatedAt
	s.contacts[c.ID] = c
	s.tokens[c.TrackingToken] = c.ID
	return c
}

// seedOpenOpportunity attaches an OPEN opportunity to a contact.
func (s *memStore) seedOpenOpportunity(contactID uuid.UUID, expectedValueCents int64) repository.Opportunity {
	s.mu.Lock()
	defer s.mu.Unlock()
	o := repository.Opportunity{
		ID:                 uuid.New(),
		ContactID:          contactID,
		Status:             domain.OpportunityOpen,
		ExpectedValueCents: expectedValueCents,
		CreatedAt:          s.tick(),
	}
	s.opportunities[o.ID] = o
	return o
}

func (s *memStore) InsertContact(ctx context.Context, params repository.CreateContactParams) (repository.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := repository.Contact{
		ID:                 uuid.New(),
		FirstName:          params.FirstName,
		LastName:           params.LastName,
		Email:              params.Email,
		Phone:              params.Phone,
		CompanyID:          params.CompanyID,
		AssignedEmployeeID: params.AssignedEmployeeID,
		Status:             domain.StatusLead,
		Temperature:        domain.TemperatureCold,
		TrackingToken:      params.TrackingToken,
		CreatedAt:          s.tick(),
	}
	c.UpdatedAt = c.CreatedAt
	s.contacts[c.ID] = c
	s.tokens[c.TrackingToken] = c.ID
	return c, nil
}

func (s *memStore) GetContact(ctx context.Context, id uuid.UUID) (repository.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.contacts[id]
	if !ok {
		return repository.Contact{}, repository.ErrNotFound
	}
	return c, nil
}

func (s *memStore) GetContactForUpdate(ctx context.Context, id uuid.UUID) (repository.Contact, error) {
	return s.GetContact(ctx, id)
}

func (s *memStore) GetContactByTokenForUpdate(ctx context.Context, token string) (repository.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.tokens[token]
	if !ok {
		return repository.Contact{}, repository.ErrNotFound
	}
	return s.contacts[id], nil
}

func (s *memStore) UpdateContactStatus(ctx context.Context, id uuid.UUID, status domain.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.contacts[id]
	if !ok {
		return repository.ErrNotFound
	}
	c.Status = status
	c.UpdatedAt = s.tick()
	s.contacts[id] = c
	return nil
}

func (s *memStore) IncrementInterestScore(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.contacts[id]
	if !ok {
		return repository.ErrNotFound
	}
	c.InterestScore++
	s.contacts[id] = c
	return nil
}

func (s *memStore) UpdateContactTemperature(ctx context.Context, id uuid.UUID, temp domain.Temperature) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.contacts[id]
	if !ok {
		return repository.ErrNotFound
	}
	c.Temperature = temp
	s.contacts[id] = c
	return nil
}

func (s *memStore) ListContacts(ctx context.Context, params repository.ListContactsParams) ([]repository.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]repository.Contact, 0)
	for _, c := range s.contacts {
		if params.Status != nil && c.Status != *params.Status {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *memStore) InsertOpportunity(ctx context.Context, contactID uuid.UUID, expectedValueCents int64) (repository.Opportunity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.opportunities {
		if o.ContactID == contactID && o.Status == domain.OpportunityOpen {
			return repository.Opportunity{}, repository.ErrConflict
		}
	}
	o := repository.Opportunity{
		ID:                 uuid.New(),
		ContactID:          contactID,
		Status:             domain.OpportunityOpen,
		ExpectedValueCents: expectedValueCents,
		CreatedAt:          s.tick(),
	}
	s.opportunities[o.ID] = o
	return o, nil
}

func (s *memStore) GetOpenOpportunityForUpdate(ctx context.Context, contactID uuid.UUID) (repository.Opportunity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.opportunities {
		if o.ContactID == contactID && o.Status == domain.OpportunityOpen {
			return o, nil
		}
	}
	return repository.Opportunity{}, repository.ErrNotFound
}

func (s *memStore) HasOpenOpportunity(ctx context.Context, contactID uuid.UUID) (bool, error) {
	_, err := s.GetOpenOpportunityForUpdate(ctx, contactID)
	if err == repository.ErrNotFound {
		return false, nil
	}
	return err == nil, err
}

func (s *memStore) CloseOpportunity(ctx context.Context, id uuid.UUID, status domain.OpportunityStatus, reason *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.opportunities[id]
	if !ok || o.Status != domain.OpportunityOpen {
		return repository.ErrNotFound
	}
	closedAt := s.tick()
	o.Status = status
	o.Reason = reason
	o.ClosedAt = &closedAt
	s.opportunities[id] = o
	return nil
}

func (s *memStore) InsertDeal(ctx context.Context, opportunityID uuid.UUID, dealValueCents int64, closedBy *uuid.UUID) (repository.Deal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.deals[opportunityID]; exists {
		return repository.Deal{}, repository.ErrConflict
	}
	d := repository.Deal{
		ID:                 uuid.New(),
		OpportunityID:      opportunityID,
		DealValueCents:     dealValueCents,
		ClosedByEmployeeID: closedBy,
		ClosedAt:           s.tick(),
	}
	s.deals[opportunityID] = d
	return d, nil
}

func (s *memStore) HasDeal(ctx context.Context, opportunityID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.deals[opportunityID]
	return ok, nil
}

func (s *memStore) InsertSession(ctx context.Context, params repository.CreateSessionParams) (repository.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := repository.Session{
		ID:                 uuid.New(),
		ContactID:          params.ContactID,
		Stage:              params.Stage,
		Rating:             params.Rating,
		SessionStatus:      params.SessionStatus,
		LoggedByEmployeeID: params.LoggedByEmployeeID,
		CreatedAt:          s.tick(),
	}
	sess.UpdatedAt = sess.CreatedAt
	s.sessions = append(s.sessions, sess)
	return sess, nil
}

func (s *memStore) UpdateSession(ctx context.Context, id, contactID uuid.UUID, params repository.UpdateSessionParams) (repository.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sess := range s.sessions {
		if sess.ID != id || sess.ContactID != contactID {
			continue
		}
		if params.RatingSet {
			sess.Rating = params.Rating
		}
		if params.SessionStatus != nil {
			sess.SessionStatus = *params.SessionStatus
		}
		sess.UpdatedAt = s.tick()
		s.sessions[i] = sess
		return sess, nil
	}
	return repository.Session{}, repository.ErrNotFound
}

func (s *memStore) DeleteSession(ctx context.Context, id, contactID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sess := range s.sessions {
		if sess.ID == id && sess.ContactID == contactID {
			s.sessions = append(s.sessions[:i], s.sessions[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (s *memStore) ListSessions(ctx context.Context, contactID uuid.UUID) ([]repository.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]repository.Session, 0)
	for _, sess := range s.sessions {
		if sess.ContactID == contactID {
			out = append(out, sess)
		}
	}
	return out, nil
}

func (s *memStore) InsertFeedback(ctx context.Context, contactID uuid.UUID, rating int, comment string) (repository.Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := repository.Feedback{
		ID:        uuid.New(),
		ContactID: contactID,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: s.tick(),
	}
	s.feedback = append(s.feedback, f)
	return f, nil
}

func (s *memStore) ListFeedback(ctx context.Context, contactID uuid.UUID) ([]repository.Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]repository.Feedback, 0)
	for _, f := range s.feedback {
		if f.ContactID == contactID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (s *memStore) AppendHistory(ctx context.Context, contactID uuid.UUID, oldStatus, newStatus domain.Status, changedBy *uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, repository.StatusHistoryEntry{
		ID:        uuid.New(),
		ContactID: contactID,
		OldStatus: oldStatus,
		NewStatus: newStatus,
		ChangedBy: changedBy,
		ChangedAt: s.tick(),
	})
	return nil
}

func (s *memStore) ListHistory(ctx context.Context, contactID uuid.UUID) ([]repository.StatusHistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]repository.StatusHistoryEntry, 0)
	for _, e := range s.history {
		if e.ContactID == contactID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *memStore) EnqueueSideEffect(ctx context.Context, params repository.SideEffectParams) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row := outboxRow{ID: uuid.New(), ContactID: params.ContactID, Kind: params.Kind}
	s.outbox = append(s.outbox, row)
	return row.ID, nil
}

func (s *memStore) outboxKinds() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	kinds := make([]string, 0, len(s.outbox))
	for _, row := range s.outbox {
		kinds = append(kinds, row.Kind)
	}
	return kinds
}

func (s *memStore) AvgSessionRating(ctx context.Context, contactID uuid.UUID) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var sum, n int
	for _, sess := range s.sessions {
		if sess.ContactID == contactID && sess.Rating != nil {
			sum += *sess.Rating
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return float64(sum) / float64(n), nil
}

func (s *memStore) AvgStageSessionRating(ctx context.Context, contactID uuid.UUID, stage domain.Status) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var sum, n int
	for _, sess := range s.sessions {
		if sess.ContactID == contactID && sess.Stage == stage && sess.Rating != nil {
			sum += *sess.Rating
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return float64(sum) / float64(n), nil
}

func (s *memStore) AvgFeedbackRating(ctx context.Context, contactID uuid.UUID) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var sum, n int
	for _, f := range s.feedback {
		if f.ContactID == contactID {
			sum += f.Rating
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return float64(sum) / float64(n), nil
}

// busRecorder captures published events for assertions.
type busRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *busRecorder) Publish(ctx context.Context, event events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *busRecorder) PublishSync(ctx context.Context, event events.Event) error {
	b.Publish(ctx, event)
	return nil
}

func (b *busRecorder) Subscribe(eventName string, handler events.Handler) {}

func (b *busRecorder) named(name string) []events.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]events.Event, 0)
	for _, ev := range b.events {
		if ev.EventName() == name {
			out = append(out, ev)
		}
	}
	return out
}

// dispatchRecorder captures outbox ids handed to the queue.
type dispatchRecorder struct {
	mu  sync.Mutex
	ids []uuid.UUID
}

func (d *dispatchRecorder) Dispatch(ctx context.Context, outboxID uuid.UUID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ids = append(d.ids, outboxID)
	return nil
}

func (d *dispatchRecorder) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.ids)
}

func newTestService() (*Service, *memStore, *busRecorder, *dispatchRecorder) {
	store := newMemStore()
	bus := &busRecorder{}
	dispatch := &dispatchRecorder{}
	log := &logger.Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	return New(store, bus, dispatch, log), store, bus, dispatch
}

func intPtr(v int) *int          { return &v }
func strPtr(v string) *string    { return &v }
