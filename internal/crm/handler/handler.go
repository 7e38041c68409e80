// Package handler exposes the CRM lifecycle over HTTP. It is a thin
// collaborator boundary: binding, validation and apperr mapping only.
package handler

import (
	"net/http"

	"github.com/Yuvan-1166/crm-sub000/internal/crm/domain"
	"github.com/Yuvan-1166/crm-sub000/internal/crm/lifecycle"
	"github.com/Yuvan-1166/crm-sub000/internal/crm/repository"
	"github.com/Yuvan-1166/crm-sub000/internal/crm/transport"
	"github.com/Yuvan-1166/crm-sub000/platform/httpkit"
	"github.com/Yuvan-1166/crm-sub000/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"

	// actorHeader carries the acting employee's id. The authority never
	// infers identity; absent header means a system-driven call.
	actorHeader = "X-Actor-ID"
)

type Handler struct {
	svc *lifecycle.Service
}

func New(svc *lifecycle.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.POST("/track/:token", h.Track)
	rg.GET("/:id", h.GetByID)
	rg.GET("/:id/history", h.History)
	rg.POST("/:id/promote-mql", h.PromoteToMQL)
	rg.POST("/:id/qualify", h.QualifyToSQL)
	rg.POST("/:id/opportunity", h.OpenOpportunity)
	rg.POST("/:id/opportunity/win", h.WinOpportunity)
	rg.POST("/:id/opportunity/lose", h.LoseOpportunity)
	rg.POST("/:id/evangelist", h.PromoteToEvangelist)
	rg.POST("/:id/deactivate", h.Deactivate)
	rg.GET("/:id/sessions", h.ListSessions)
	rg.POST("/:id/sessions", h.RecordSession)
	rg.PATCH("/:id/sessions/:sessionId", h.CorrectSession)
	rg.DELETE("/:id/sessions/:sessionId", h.RemoveSession)
	rg.GET("/:id/feedback", h.ListFeedback)
	rg.POST("/:id/feedback", h.RecordFeedback)
}

func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := validator.Validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	params := lifecycle.CreateContactParams{
		FirstName:          req.FirstName,
		LastName:           req.LastName,
		Phone:              req.Phone,
		CompanyID:          req.CompanyID,
		AssignedEmployeeID: req.AssignedEmployeeID,
	}
	if req.Email != "" {
		params.Email = &req.Email
	}

	contact, err := h.svc.CreateContact(c.Request.Context(), params)
	if err != nil {
		httpkit.DomainError(c, err)
		return
	}
	httpkit.Created(c, transport.ToContactResponse(contact))
}

func (h *Handler) List(c *gin.Context) {
	params := repository.ListContactsParams{}
	if statusParam := c.Query("status"); statusParam != "" {
		status := domain.Status(statusParam)
		if !domain.IsKnownStatus(status) {
			httpkit.Error(c, http.StatusBadRequest, "unknown status", nil)
			return
		}
		params.Status = &status
	}

	contacts, err := h.svc.ListContacts(c.Request.Context(), params)
	if err != nil {
		httpkit.DomainError(c, err)
		return
	}
	httpkit.OK(c, transport.ToContactResponses(contacts))
}

func (h *Handler) GetByID(c *gin.Context) {
	id, ok := contactID(c)
	if !ok {
		return
	}
	contact, err := h.svc.GetContact(c.Request.Context(), id)
	if err != nil {
		httpkit.DomainError(c, err)
		return
	}
	httpkit.OK(c, transport.ToContactResponse(contact))
}

func (h *Handler) History(c *gin.Context) {
	id, ok := contactID(c)
	if !ok {
		return
	}
	entries, err := h.svc.History(c.Request.Context(), id)
	if err != nil {
		httpkit.DomainError(c, err)
		return
	}
	httpkit.OK(c, transport.ToStatusHistoryResponses(entries))
}

// Track is the automatic marketing-driven promotion. It always answers 200:
// a stale or unknown token is an idempotent no-op.
func (h *Handler) Track(c *gin.Context) {
	result, err := h.svc.TrackEngagement(c.Request.Context(), c.Param("token"))
	if err != nil {
		httpkit.DomainError(c, err)
		return
	}
	httpkit.OK(c, transport.ToTransitionResponse(result))
}

func (h *Handler) PromoteToMQL(c *gin.Context) {
	id, ok := contactID(c)
	if !ok {
		return
	}
	actor, ok := requiredActor(c)
	if !ok {
		return
	}

	result, err := h.svc.PromoteToMQL(c.Request.Context(), id, actor)
	if err != nil {
		httpkit.DomainError(c, err)
		return
	}
	httpkit.OK(c, transport.ToTransitionResponse(result))
}

func (h *Handler) QualifyToSQL(c *gin.Context) {
	id, ok := contactID(c)
	if !ok {
		return
	}
	actor, ok := requiredActor(c)
	if !ok {
		return
	}

	result, err := h.svc.QualifyToSQL(c.Request.Context(), id, actor)
	if err != nil {
		httpkit.DomainError(c, err)
		return
	}
	httpkit.OK(c, transport.ToTransitionResponse(result))
}

func (h *Handler) OpenOpportunity(c *gin.Context) {
	id, ok := contactID(c)
	if !ok {
		return
	}

	var req transport.OpenOpportunityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := validator.Validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.OpenOpportunity(c.Request.Context(), id, optionalActor(c), req.ExpectedValueCents)
	if err != nil {
		httpkit.DomainError(c, err)
		return
	}
	httpkit.Created(c, transport.ToTransitionResponse(result))
}

func (h *Handler) WinOpportunity(c *gin.Context) {
	id, ok := contactID(c)
	if !ok {
		return
	}

	var req transport.WinOpportunityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := validator.Validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.WinOpportunity(c.Request.Context(), id, optionalActor(c), req.DealValueCents)
	if err != nil {
		httpkit.DomainError(c, err)
		return
	}
	httpkit.OK(c, transport.ToTransitionResponse(result))
}

func (h *Handler) LoseOpportunity(c *gin.Context) {
	id, ok := contactID(c)
	if !ok {
		return
	}

	var req transport.LoseOpportunityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := validator.Validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.LoseOpportunity(c.Request.Context(), id, optionalActor(c), req.Reason)
	if err != nil {
		httpkit.DomainError(c, err)
		return
	}
	httpkit.OK(c, transport.ToTransitionResponse(result))
}

func (h *Handler) PromoteToEvangelist(c *gin.Context) {
	id, ok := contactID(c)
	if !ok {
		return
	}

	result, err := h.svc.PromoteToEvangelist(c.Request.Context(), id, optionalActor(c))
	if err != nil {
		httpkit.DomainError(c, err)
		return
	}
	httpkit.OK(c, transport.ToTransitionResponse(result))
}

func (h *Handler) Deactivate(c *gin.Context) {
	id, ok := contactID(c)
	if !ok {
		return
	}
	actor, ok := requiredActor(c)
	if !ok {
		return
	}

	var req transport.DeactivateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	result, err := h.svc.Deactivate(c.Request.Context(), id, actor, req.Reason)
	if err != nil {
		httpkit.DomainError(c, err)
		return
	}
	httpkit.OK(c, transport.ToTransitionResponse(result))
}

func (h *Handler) RecordSession(c *gin.Context) {
	id, ok := contactID(c)
	if !ok {
		return
	}

	var req transport.RecordSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := validator.Validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	session, err := h.svc.RecordSession(c.Request.Context(), lifecycle.RecordSessionParams{
		ContactID:     id,
		Rating:        req.Rating,
		SessionStatus: req.SessionStatus,
		ActorID:       optionalActor(c),
	})
	if err != nil {
		httpkit.DomainError(c, err)
		return
	}
	httpkit.Created(c, transport.ToSessionResponse(session))
}

func (h *Handler) CorrectSession(c *gin.Context) {
	id, ok := contactID(c)
	if !ok {
		return
	}
	sessionID, err := uuid.Parse(c.Param("sessionId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.CorrectSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := validator.Validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	session, err := h.svc.CorrectSession(c.Request.Context(), id, sessionID, repository.UpdateSessionParams{
		Rating:        req.Rating,
		RatingSet:     req.Rating != nil,
		SessionStatus: req.SessionStatus,
	})
	if err != nil {
		httpkit.DomainError(c, err)
		return
	}
	httpkit.OK(c, transport.ToSessionResponse(session))
}

func (h *Handler) RemoveSession(c *gin.Context) {
	id, ok := contactID(c)
	if !ok {
		return
	}
	sessionID, err := uuid.Parse(c.Param("sessionId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	if err := h.svc.RemoveSession(c.Request.Context(), id, sessionID); err != nil {
		httpkit.DomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListSessions(c *gin.Context) {
	id, ok := contactID(c)
	if !ok {
		return
	}
	sessions, err := h.svc.Sessions(c.Request.Context(), id)
	if err != nil {
		httpkit.DomainError(c, err)
		return
	}
	httpkit.OK(c, transport.ToSessionResponses(sessions))
}

func (h *Handler) RecordFeedback(c *gin.Context) {
	id, ok := contactID(c)
	if !ok {
		return
	}

	var req transport.RecordFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := validator.Validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	feedback, err := h.svc.RecordFeedback(c.Request.Context(), id, req.Rating, req.Comment)
	if err != nil {
		httpkit.DomainError(c, err)
		return
	}
	httpkit.Created(c, transport.ToFeedbackResponse(feedback))
}

func (h *Handler) ListFeedback(c *gin.Context) {
	id, ok := contactID(c)
	if !ok {
		return
	}
	items, err := h.svc.Feedback(c.Request.Context(), id)
	if err != nil {
		httpkit.DomainError(c, err)
		return
	}
	httpkit.OK(c, transport.ToFeedbackResponses(items))
}

func contactID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return uuid.Nil, false
	}
	return id, true
}

func optionalActor(c *gin.Context) *uuid.UUID {
	raw := c.GetHeader(actorHeader)
	if raw == "" {
		return nil
	}
	actor, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &actor
}

func requiredActor(c *gin.Context) (uuid.UUID, bool) {
	actor := optionalActor(c)
	if actor == nil {
		httpkit.Error(c, http.StatusBadRequest, "missing or invalid "+actorHeader+" header", nil)
		return uuid.Nil, false
	}
	return *actor, true
}
