// Package leads provides the lead lifecycle bounded context module.
// This file defines the module that encapsulates all leads setup and route registration.
package leads

import (
	"crm_backoffice/internal/audit"
	"crm_backoffice/internal/events"
	apphttp "crm_backoffice/internal/http"
	"crm_backoffice/internal/leads/conversion"
	"crm_backoffice/internal/leads/handler"
	"crm_backoffice/internal/leads/management"
	"crm_backoffice/internal/leads/repository"
	"crm_backoffice/internal/metrics"
	"crm_backoffice/platform/cache"
	"crm_backoffice/platform/config"
	"crm_backoffice/platform/logger"
	"crm_backoffice/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler    *handler.Handler
	management *management.Service
	conversion *conversion.Service
}

// NewModule creates and initializes the leads module with all its dependencies.
// leadCache and leadMetrics may be nil.
func NewModule(
	pool *pgxpool.Pool,
	eventBus events.Bus,
	recorder *audit.Recorder,
	val *validator.Validator,
	cfg config.LeadsConfig,
	leadCache *cache.JSONCache,
	leadMetrics *metrics.LeadMetrics,
	log *logger.Logger,
) *Module {
	repo := repository.New(pool)

	mgmtSvc := management.New(repo, eventBus, recorder, cfg.IsLostReasonRequired(), log)
	convSvc := conversion.New(repo, eventBus, recorder, cfg.GetClientEmailPlaceholderDomain(), log)
	if leadCache != nil {
		mgmtSvc.SetCache(leadCache)
		convSvc.SetCache(leadCache)
	}
	mgmtSvc.SetMetrics(leadMetrics)
	convSvc.SetMetrics(leadMetrics)

	return &Module{
		handler:    handler.New(mgmtSvc, convSvc, val),
		management: mgmtSvc,
		conversion: convSvc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// ManagementService returns the lead management service for external use.
func (m *Module) ManagementService() *management.Service {
	return m.management
}

// ConversionService returns the WON conversion service for external use.
func (m *Module) ConversionService() *conversion.Service {
	return m.conversion
}

// RegisterRoutes mounts leads routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// All leads routes require authentication
	leadsGroup := ctx.Protected.Group("/leads")
	m.handler.RegisterRoutes(leadsGroup)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
