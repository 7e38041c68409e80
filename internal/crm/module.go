// Package crm wires the contact lifecycle bounded context: repositories,
// the transition authority service and its HTTP handlers.
package crm

import (
	"context"

	"github.com/Yuvan-1166/crm-sub000/internal/crm/handler"
	"github.com/Yuvan-1166/crm-sub000/internal/crm/lifecycle"
	"github.com/Yuvan-1166/crm-sub000/internal/crm/repository"
	"github.com/Yuvan-1166/crm-sub000/internal/events"
	apphttp "github.com/Yuvan-1166/crm-sub000/internal/http"
	"github.com/Yuvan-1166/crm-sub000/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Module struct {
	Service *lifecycle.Service
	handler *handler.Handler
}

func NewModule(pool *pgxpool.Pool, bus events.Bus, dispatch lifecycle.Dispatcher, log *logger.Logger) *Module {
	store := storeAdapter{repository.New(pool)}
	svc := lifecycle.New(store, bus, dispatch, log)
	return &Module{
		Service: svc,
		handler: handler.New(svc),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string { return "crm" }

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.V1.Group("/contacts"))
}

// storeAdapter narrows *repository.Store to the lifecycle.Store interface.
// The callback shape differs only in the static type of the transaction
// handle.
type storeAdapter struct {
	*repository.Store
}

func (a storeAdapter) Transact(ctx context.Context, fn func(tx lifecycle.TxStore) error) error {
	return a.Store.Transact(ctx, func(q *repository.Queries) error {
		return fn(q)
	})
}
