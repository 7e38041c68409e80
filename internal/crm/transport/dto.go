// Package transport defines the request/response shapes of the CRM HTTP
// surface. Every transition has its own explicitly-typed payload; unknown
// fields are rejected at the boundary by the router's strict JSON decoding.
package transport

import (
	"time"

	"github.com/Yuvan-1166/crm-sub000/internal/crm/domain"
	"github.com/Yuvan-1166/crm-sub000/internal/crm/lifecycle"
	"github.com/Yuvan-1166/crm-sub000/internal/crm/repository"

	"github.com/google/uuid"
)

// Request DTOs — one per transition-table row.

type CreateContactRequest struct {
	FirstName          string     `json:"firstName" validate:"required,min=1,max=100"`
	LastName           string     `json:"lastName" validate:"required,min=1,max=100"`
	Email              string     `json:"email,omitempty" validate:"omitempty,email"`
	Phone              string     `json:"phone,omitempty" validate:"omitempty,min=5,max=20"`
	CompanyID          *uuid.UUID `json:"companyId,omitempty"`
	AssignedEmployeeID *uuid.UUID `json:"assignedEmployeeId,omitempty"`
}

type OpenOpportunityRequest struct {
	ExpectedValueCents int64 `json:"expectedValueCents" validate:"required,gt=0"`
}

type WinOpportunityRequest struct {
	DealValueCents int64 `json:"dealValueCents" validate:"required,gt=0"`
}

type LoseOpportunityRequest struct {
	Reason string `json:"reason,omitempty" validate:"max=500"`
}

type DeactivateContactRequest struct {
	Reason string `json:"reason,omitempty" validate:"max=500"`
}

type RecordSessionRequest struct {
	Rating        *int                 `json:"rating,omitempty" validate:"omitempty,min=1,max=10"`
	SessionStatus domain.SessionStatus `json:"sessionStatus" validate:"required,oneof=CONNECTED NOT_CONNECTED BAD_TIMING"`
}

type CorrectSessionRequest struct {
	Rating        *int                  `json:"rating,omitempty" validate:"omitempty,min=1,max=10"`
	SessionStatus *domain.SessionStatus `json:"sessionStatus,omitempty" validate:"omitempty,oneof=CONNECTED NOT_CONNECTED BAD_TIMING"`
}

type RecordFeedbackRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=10"`
	Comment string `json:"comment,omitempty" validate:"max=2000"`
}

// Response DTOs.

type ContactResponse struct {
	ID                 uuid.UUID  `json:"id"`
	FirstName          string     `json:"firstName"`
	LastName           string     `json:"lastName"`
	Email              *string    `json:"email,omitempty"`
	Phone              string     `json:"phone,omitempty"`
	CompanyID          *uuid.UUID `json:"companyId,omitempty"`
	AssignedEmployeeID *uuid.UUID `json:"assignedEmployeeId,omitempty"`
	Status             string     `json:"status"`
	Temperature        string     `json:"temperature"`
	InterestScore      int        `json:"interestScore"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

type TransitionResponse struct {
	ContactID     uuid.UUID  `json:"contactId"`
	OldStatus     string     `json:"oldStatus"`
	NewStatus     string     `json:"newStatus"`
	Applied       bool       `json:"applied"`
	OpportunityID *uuid.UUID `json:"opportunityId,omitempty"`
	DealID        *uuid.UUID `json:"dealId,omitempty"`
}

type SessionResponse struct {
	ID            uuid.UUID `json:"id"`
	ContactID     uuid.UUID `json:"contactId"`
	Stage         string    `json:"stage"`
	Rating        *int      `json:"rating,omitempty"`
	SessionStatus string    `json:"sessionStatus"`
	CreatedAt     time.Time `json:"createdAt"`
}

type FeedbackResponse struct {
	ID        uuid.UUID `json:"id"`
	ContactID uuid.UUID `json:"contactId"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type StatusHistoryResponse struct {
	ID        uuid.UUID  `json:"id"`
	ContactID uuid.UUID  `json:"contactId"`
	OldStatus string     `json:"oldStatus"`
	NewStatus string     `json:"newStatus"`
	ChangedBy *uuid.UUID `json:"changedBy,omitempty"`
	ChangedAt time.Time  `json:"changedAt"`
}

// Mappers.

func ToContactResponse(c repository.Contact) ContactResponse {
	return ContactResponse{
		ID:                 c.ID,
		FirstName:          c.FirstName,
		LastName:           c.LastName,
		Email:              c.Email,
		Phone:              c.Phone,
		CompanyID:          c.CompanyID,
		AssignedEmployeeID: c.AssignedEmployeeID,
		Status:             string(c.Status),
		Temperature:        string(c.Temperature),
		InterestScore:      c.InterestScore,
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}
}

func ToContactResponses(contacts []repository.Contact) []ContactResponse {
	out := make([]ContactResponse, 0, len(contacts))
	for _, c := range contacts {
		out = append(out, ToContactResponse(c))
	}
	return out
}

func ToTransitionResponse(r lifecycle.TransitionResult) TransitionResponse {
	return TransitionResponse{
		ContactID:     r.ContactID,
		OldStatus:     string(r.OldStatus),
		NewStatus:     string(r.NewStatus),
		Applied:       r.Applied,
		OpportunityID: r.OpportunityID,
		DealID:        r.DealID,
	}
}

func ToSessionResponse(s repository.Session) SessionResponse {
	return SessionResponse{
		ID:            s.ID,
		ContactID:     s.ContactID,
		Stage:         string(s.Stage),
		Rating:        s.Rating,
		SessionStatus: string(s.SessionStatus),
		CreatedAt:     s.CreatedAt,
	}
}

func ToSessionResponses(sessions []repository.Session) []SessionResponse {
	out := make([]SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, ToSessionResponse(s))
	}
	return out
}

func ToFeedbackResponse(f repository.Feedback) FeedbackResponse {
	return FeedbackResponse{
		ID:        f.ID,
		ContactID: f.ContactID,
		Rating:    f.Rating,
		Comment:   f.Comment,
		CreatedAt: f.CreatedAt,
	}
}

func ToFeedbackResponses(items []repository.Feedback) []FeedbackResponse {
	out := make([]FeedbackResponse, 0, len(items))
	for _, f := range items {
		out = append(out, ToFeedbackResponse(f))
	}
	return out
}

func ToStatusHistoryResponses(entries []repository.StatusHistoryEntry) []StatusHistoryResponse {
	out := make([]StatusHistoryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, StatusHistoryResponse{
			ID:        e.ID,
			ContactID: e.ContactID,
			OldStatus: string(e.OldStatus),
			NewStatus: string(e.NewStatus),
			ChangedBy: e.ChangedBy,
			ChangedAt: e.ChangedAt,
		})
	}
	return out
}
