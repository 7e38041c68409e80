// Package handler exposes the in-app notification inbox over HTTP.
package handler

import (
	"net/http"
	"strconv"

	"github.com/Yuvan-1166/crm-sub000/internal/notification/inapp"
	"github.com/Yuvan-1166/crm-sub000/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const employeeHeader = "X-Actor-ID"

type HTTPHandler struct {
	svc *inapp.Service
}

func NewHTTPHandler(svc *inapp.Service) *HTTPHandler {
	return &HTTPHandler{svc: svc}
}

func (h *HTTPHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/unread-count", h.UnreadCount)
	rg.POST("/:id/read", h.MarkRead)
	rg.POST("/read-all", h.MarkAllRead)
}

func (h *HTTPHandler) List(c *gin.Context) {
	employeeID, ok := employeeID(c)
	if !ok {
		return
	}

	limit := intQuery(c, "limit", 20)
	offset := intQuery(c, "offset", 0)

	items, total, err := h.svc.List(c.Request.Context(), employeeID, limit, offset)
	if err != nil {
		httpkit.DomainError(c, err)
		return
	}
	httpkit.OK(c, gin.H{
		"items": items,
		"total": total,
	})
}

func (h *HTTPHandler) UnreadCount(c *gin.Context) {
	employeeID, ok := employeeID(c)
	if !ok {
		return
	}

	count, err := h.svc.CountUnread(c.Request.Context(), employeeID)
	if err != nil {
		httpkit.DomainError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"count": count})
}

func (h *HTTPHandler) MarkRead(c *gin.Context) {
	employeeID, ok := employeeID(c)
	if !ok {
		return
	}
	notificationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid notification id", nil)
		return
	}

	if err := h.svc.MarkRead(c.Request.Context(), employeeID, notificationID); err != nil {
		httpkit.DomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *HTTPHandler) MarkAllRead(c *gin.Context) {
	employeeID, ok := employeeID(c)
	if !ok {
		return
	}

	if err := h.svc.MarkAllRead(c.Request.Context(), employeeID); err != nil {
		httpkit.DomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func employeeID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.GetHeader(employeeHeader))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "missing or invalid "+employeeHeader+" header", nil)
		return uuid.Nil, false
	}
	return id, true
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
