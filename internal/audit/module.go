package audit

import (
	apphttp "crm_backoffice/internal/http"
	"crm_backoffice/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module exposes the audit trail over HTTP and hands out the recorder used
// by the other modules.
type Module struct {
	repo     *Repository
	recorder *Recorder
	handler  *Handler
}

// NewModule builds the audit module. When sink is nil entries are written
// straight to the database; otherwise they go through sink (the queue).
func NewModule(pool *pgxpool.Pool, sink Sink, log *logger.Logger) *Module {
	repo := NewRepository(pool)
	if sink == nil {
		sink = repo
	}
	return &Module{
		repo:     repo,
		recorder: NewRecorder(sink, log),
		handler:  NewHandler(repo),
	}
}

func (m *Module) Name() string {
	return "audit"
}

// Recorder returns the best-effort recorder shared by other modules.
func (m *Module) Recorder() *Recorder {
	return m.recorder
}

// Repository returns the database sink, used by the queue worker.
func (m *Module) Repository() *Repository {
	return m.repo
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Admin.Group("/audit"))
}

var _ apphttp.Module = (*Module)(nil)
