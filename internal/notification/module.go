// Package notification delivers the pipeline's side effects. It subscribes
// to outbox-due events from the scheduler worker and routes each claimed
// outbox row to its delivery channel (email or in-app). Domain modules only
// write outbox rows; they never talk to email providers directly.
package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Yuvan-1166/crm-sub000/internal/crm/lifecycle"
	"github.com/Yuvan-1166/crm-sub000/internal/email"
	"github.com/Yuvan-1166/crm-sub000/internal/events"
	apphttp "github.com/Yuvan-1166/crm-sub000/internal/http"
	notifhandler "github.com/Yuvan-1166/crm-sub000/internal/notification/handler"
	"github.com/Yuvan-1166/crm-sub000/internal/notification/inapp"
	"github.com/Yuvan-1166/crm-sub000/internal/notification/outbox"
	"github.com/Yuvan-1166/crm-sub000/platform/config"
	"github.com/Yuvan-1166/crm-sub000/platform/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	invalidOutboxPayloadPrefix = "invalid payload: "
	outboxRetryBaseDelay       = time.Minute
	outboxRetryMaxDelay        = 60 * time.Minute
)

type welcomeEmailPayload struct {
	Email         string `json:"email"`
	FirstName     string `json:"firstName"`
	TrackingToken string `json:"trackingToken"`
}

type dealWonEmailPayload struct {
	Email          string `json:"email"`
	FirstName      string `json:"firstName"`
	DealValueCents int64  `json:"dealValueCents"`
}

type inAppPayload struct {
	EmployeeID string `json:"employeeId"`
	Kind       string `json:"kind"`
	Title      string `json:"title"`
	Body       string `json:"body,omitempty"`
}

// Module handles notification delivery and the in-app inbox API.
type Module struct {
	sender       email.Sender
	cfg          config.NotificationConfig
	log          *logger.Logger
	outboxRepo   *outbox.Repository
	inAppService *inapp.Service
	inAppHandler *notifhandler.HTTPHandler
	maxAttempts  int
}

// New creates the notification module.
func New(pool *pgxpool.Pool, sender email.Sender, cfg config.NotificationConfig, log *logger.Logger) *Module {
	inAppRepo := inapp.NewRepository(pool)
	inAppSvc := inapp.NewService(inAppRepo, log)

	maxAttempts := cfg.GetOutboxMaxAttempts()
	if maxAttempts < 1 {
		maxAttempts = 5
	}

	return &Module{
		sender:       sender,
		cfg:          cfg,
		log:          log,
		outboxRepo:   outbox.New(pool),
		inAppService: inAppSvc,
		inAppHandler: notifhandler.NewHTTPHandler(inAppSvc),
		maxAttempts:  maxAttempts,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string { return "notification" }

// RegisterRoutes registers the in-app notification inbox routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.inAppHandler.RegisterRoutes(ctx.V1.Group("/notifications"))
}

// InAppService exposes the in-app notification service for integration points.
func (m *Module) InAppService() *inapp.Service { return m.inAppService }

// RegisterHandlers subscribes to the outbox-due event on the event bus.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.NotificationOutboxDue{}.EventName(), m)
	m.log.Info("notification module registered event handlers")
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.NotificationOutboxDue:
		return m.handleOutboxDue(ctx, e)
	default:
		m.log.Warn("unhandled event type", "event", event.EventName())
		return nil
	}
}

func (m *Module) handleOutboxDue(ctx context.Context, e events.NotificationOutboxDue) error {
	rec, err := m.outboxRepo.GetByID(ctx, e.OutboxID)
	if err != nil {
		m.log.Error("failed to load outbox record", "outboxId", e.OutboxID, "error", err)
		return err
	}

	// Re-delivered queue messages for an already settled row are no-ops.
	if rec.Status == outbox.StatusSucceeded || rec.Status == outbox.StatusFailed {
		return nil
	}

	if err := m.outboxRepo.MarkProcessing(ctx, rec.ID); err != nil {
		return err
	}

	deliveryErr := m.deliver(ctx, rec)
	if deliveryErr != nil {
		m.handleDeliveryError(ctx, rec, deliveryErr)
		return deliveryErr
	}

	if err := m.outboxRepo.MarkSucceeded(ctx, rec.ID); err != nil {
		return err
	}
	m.log.Info("outbox record delivered", "outboxId", rec.ID.String(), "kind", rec.Kind)
	return nil
}

func (m *Module) deliver(ctx context.Context, rec outbox.Record) error {
	switch rec.Kind {
	case lifecycle.SideEffectWelcomeEmail:
		return m.deliverWelcomeEmail(ctx, rec)
	case lifecycle.SideEffectDealWonEmail:
		return m.deliverDealWonEmail(ctx, rec)
	case lifecycle.SideEffectInApp:
		return m.deliverInApp(ctx, rec)
	default:
		_ = m.outboxRepo.MarkFailed(ctx, rec.ID, "unsupported kind: "+rec.Kind)
		m.log.Warn("unsupported outbox kind", "outboxId", rec.ID.String(), "kind", rec.Kind)
		return nil
	}
}

func (m *Module) deliverWelcomeEmail(ctx context.Context, rec outbox.Record) error {
	var payload welcomeEmailPayload
	if err := json.Unmarshal(rec.Payload, &payload); err != nil {
		return fmt.Errorf(invalidOutboxPayloadPrefix+"%w", err)
	}
	if payload.Email == "" {
		return fmt.Errorf(invalidOutboxPayloadPrefix + "email is empty")
	}
	trackingURL := m.buildTrackingURL(payload.TrackingToken)
	return m.sender.SendLeadWelcomeEmail(ctx, payload.Email, payload.FirstName, trackingURL)
}

func (m *Module) deliverDealWonEmail(ctx context.Context, rec outbox.Record) error {
	var payload dealWonEmailPayload
	if err := json.Unmarshal(rec.Payload, &payload); err != nil {
		return fmt.Errorf(invalidOutboxPayloadPrefix+"%w", err)
	}
	if payload.Email == "" {
		return fmt.Errorf(invalidOutboxPayloadPrefix + "email is empty")
	}
	return m.sender.SendDealWonEmail(ctx, payload.Email, payload.FirstName, payload.DealValueCents)
}

func (m *Module) deliverInApp(ctx context.Context, rec outbox.Record) error {
	var payload inAppPayload
	if err := json.Unmarshal(rec.Payload, &payload); err != nil {
		return fmt.Errorf(invalidOutboxPayloadPrefix+"%w", err)
	}
	employeeID, err := uuid.Parse(payload.EmployeeID)
	if err != nil {
		return fmt.Errorf(invalidOutboxPayloadPrefix+"employeeId: %w", err)
	}

	contactID := rec.ContactID
	_, err = m.inAppService.Notify(ctx, inapp.CreateParams{
		EmployeeID: employeeID,
		ContactID:  &contactID,
		Kind:       payload.Kind,
		Title:      payload.Title,
		Body:       payload.Body,
	})
	return err
}

func (m *Module) handleDeliveryError(ctx context.Context, rec outbox.Record, deliveryErr error) {
	attempt := rec.Attempts + 1
	if attempt >= m.maxAttempts {
		_ = m.outboxRepo.MarkFailed(ctx, rec.ID, deliveryErr.Error())
		m.log.DispatchFailure(rec.Kind, rec.ID.String(), attempt, deliveryErr)
		return
	}

	retryAt := time.Now().UTC().Add(retryDelay(attempt))
	if err := m.outboxRepo.ScheduleRetry(ctx, rec.ID, retryAt, deliveryErr.Error()); err != nil {
		_ = m.outboxRepo.MarkFailed(ctx, rec.ID, deliveryErr.Error())
		m.log.Error("outbox retry scheduling failed; marked failed",
			"outboxId", rec.ID.String(),
			"attempt", attempt,
			"error", err,
		)
		return
	}

	m.log.Warn("outbox delivery scheduled for retry",
		"outboxId", rec.ID.String(),
		"kind", rec.Kind,
		"attempt", attempt,
		"maxAttempts", m.maxAttempts,
		"retryAt", retryAt,
		"error", deliveryErr,
	)
}

func retryDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := outboxRetryBaseDelay << (attempt - 1)
	if delay > outboxRetryMaxDelay {
		return outboxRetryMaxDelay
	}
	return delay
}

func (m *Module) buildTrackingURL(tokenValue string) string {
	base := strings.TrimRight(m.cfg.GetAppBaseURL(), "/")
	return base + "/track/" + tokenValue
}
