package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// SideEffectParams describes a notification to dispatch after a transition
// commits. The row is inserted in the same transaction as the transition so a
// commit can never lose its side effects, and a rollback can never leak them.
type SideEffectParams struct {
	ContactID uuid.UUID
	Kind      string
	Payload   any
}

// EnqueueSideEffect inserts a pending outbox row and returns its id. The
// asynq enqueue happens post-commit in the lifecycle service.
func (q *Queries) EnqueueSideEffect(ctx context.Context, params SideEffectParams) (uuid.UUID, error) {
	if params.Kind == "" {
		return uuid.Nil, fmt.Errorf("side effect kind is required")
	}

	payloadBytes, err := json.Marshal(params.Payload)
	if err != nil {
		return uuid.Nil, fmt.Errorf("marshal payload: %w", err)
	}

	var id uuid.UUID
	err = q.db.QueryRow(ctx, `
		INSERT INTO notification_outbox (contact_id, kind, payload)
		VALUES ($1, $2, $3)
		RETURNING id
	`, params.ContactID, params.Kind, payloadBytes).Scan(&id)
	if err != nil {
		return uuid.Nil, mapError(err)
	}
	return id, nil
}
