package projects

import (
	"crm_backoffice/internal/audit"
	"crm_backoffice/internal/events"
	apphttp "crm_backoffice/internal/http"
	"crm_backoffice/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Module struct {
	handler *Handler
	service *Service
}

func NewModule(pool *pgxpool.Pool, eventBus events.Bus, recorder *audit.Recorder, val *validator.Validator) *Module {
	svc := NewService(NewRepository(pool), eventBus, recorder)
	return &Module{handler: NewHandler(svc, val), service: svc}
}

func (m *Module) Name() string {
	return "projects"
}

func (m *Module) Service() *Service {
	return m.service
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/projects"))
}

var _ apphttp.Module = (*Module)(nil)
