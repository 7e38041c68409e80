// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"github.com/Yuvan-1166/crm-sub000/internal/crm/domain"
	"github.com/Yuvan-1166/crm-sub000/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Contact Lifecycle Events
// =============================================================================

// ContactCreated is published when a new contact enters the pipeline in LEAD.
type ContactCreated struct {
	BaseEvent
	ContactID          uuid.UUID  `json:"contactId"`
	AssignedEmployeeID *uuid.UUID `json:"assignedEmployeeId,omitempty"`
	Email              string     `json:"email,omitempty"`
	TrackingToken      string     `json:"trackingToken"`
}

func (e ContactCreated) EventName() string { return "crm.contact.created" }

// ContactStatusChanged is published after every committed pipeline transition.
type ContactStatusChanged struct {
	BaseEvent
	ContactID uuid.UUID     `json:"contactId"`
	OldStatus domain.Status `json:"oldStatus"`
	NewStatus domain.Status `json:"newStatus"`
	ChangedBy *uuid.UUID    `json:"changedBy,omitempty"`
}

func (e ContactStatusChanged) EventName() string { return "crm.contact.status_changed" }

// OpportunityOpened is published when a contact reaches OPPORTUNITY.
type OpportunityOpened struct {
	BaseEvent
	ContactID          uuid.UUID  `json:"contactId"`
	OpportunityID      uuid.UUID  `json:"opportunityId"`
	ExpectedValueCents int64      `json:"expectedValueCents"`
	OpenedBy           *uuid.UUID `json:"openedBy,omitempty"`
}

func (e OpportunityOpened) EventName() string { return "crm.opportunity.opened" }

// OpportunityWon is published when an opportunity is closed WON.
type OpportunityWon struct {
	BaseEvent
	ContactID      uuid.UUID  `json:"contactId"`
	OpportunityID  uuid.UUID  `json:"opportunityId"`
	DealID         uuid.UUID  `json:"dealId"`
	DealValueCents int64      `json:"dealValueCents"`
	ClosedBy       *uuid.UUID `json:"closedBy,omitempty"`
}

func (e OpportunityWon) EventName() string { return "crm.opportunity.won" }

// OpportunityLost is published when an opportunity is closed LOST.
type OpportunityLost struct {
	BaseEvent
	ContactID     uuid.UUID  `json:"contactId"`
	OpportunityID uuid.UUID  `json:"opportunityId"`
	Reason        string     `json:"reason,omitempty"`
	ClosedBy      *uuid.UUID `json:"closedBy,omitempty"`
}

func (e OpportunityLost) EventName() string { return "crm.opportunity.lost" }

// SessionRecorded is published when a session is logged, updated or deleted,
// after the temperature recompute.
type SessionRecorded struct {
	BaseEvent
	ContactID   uuid.UUID          `json:"contactId"`
	SessionID   uuid.UUID          `json:"sessionId"`
	Temperature domain.Temperature `json:"temperature"`
}

func (e SessionRecorded) EventName() string { return "crm.session.recorded" }

// FeedbackRecorded is published when a customer leaves feedback.
type FeedbackRecorded struct {
	BaseEvent
	ContactID  uuid.UUID `json:"contactId"`
	FeedbackID uuid.UUID `json:"feedbackId"`
	Rating     int       `json:"rating"`
}

func (e FeedbackRecorded) EventName() string { return "crm.feedback.recorded" }

// NotificationOutboxDue is published by the scheduler worker when a claimed
// outbox row is due for delivery.
type NotificationOutboxDue struct {
	BaseEvent
	OutboxID  uuid.UUID `json:"outboxId"`
	ContactID uuid.UUID `json:"contactId"`
}

func (e NotificationOutboxDue) EventName() string { return "notification.outbox.due" }
