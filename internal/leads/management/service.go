// Package management handles lead creation, reads, generic stage changes and
// incremental intake. Conversion to won lives in the conversion package.
package management

import (
	"context"
	"errors"
	"math"
	"strings"

	"crm_backoffice/internal/audit"
	"crm_backoffice/internal/events"
	"crm_backoffice/internal/leads/domain"
	"crm_backoffice/internal/leads/repository"
	"crm_backoffice/internal/leads/transport"
	"crm_backoffice/internal/metrics"
	"crm_backoffice/platform/apperr"
	"crm_backoffice/platform/cache"
	"crm_backoffice/platform/logger"
	"crm_backoffice/platform/phone"
	"crm_backoffice/platform/sanitize"

	"github.com/google/uuid"
)

const (
	defaultPageSize = 20
	msgLeadNotFound = "lead not found"
)

// Repository defines the data access interface needed by the management service.
// This is a consumer-driven interface - only what management needs.
type Repository interface {
	repository.LeadReader
	repository.LeadWriter
}

// AuditRecorder records audit entries on a best-effort basis.
type AuditRecorder interface {
	Record(ctx context.Context, entry audit.Entry)
}

// LeadCache caches lead responses by lead ID.
type LeadCache interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error
}

// Service handles lead management operations.
type Service struct {
	repo              Repository
	bus               events.Bus
	audit             AuditRecorder
	cache             LeadCache
	metrics           *metrics.LeadMetrics
	log               *logger.Logger
	requireLostReason bool
}

// New creates a new lead management service.
func New(repo Repository, bus events.Bus, recorder AuditRecorder, requireLostReason bool, log *logger.Logger) *Service {
	return &Service{
		repo:              repo,
		bus:               bus,
		audit:             recorder,
		log:               log,
		requireLostReason: requireLostReason,
	}
}

// SetCache enables the read-through lead cache.
func (s *Service) SetCache(c LeadCache) {
	s.cache = c
}

// SetMetrics enables Prometheus instrumentation.
func (s *Service) SetMetrics(m *metrics.LeadMetrics) {
	s.metrics = m
}

// RequireActor rejects calls without an acting user.
func RequireActor(actorID uuid.UUID) error {
	if actorID == uuid.Nil {
		return apperr.Unauthorized("actor is required").WithCode(domain.CodeUnauthorized)
	}
	return nil
}

// LeadNotFound is the typed error for a missing lead.
func LeadNotFound() error {
	return apperr.NotFound(msgLeadNotFound).WithCode(domain.CodeLeadNotFound)
}

// Create adds a lead at stage new.
func (s *Service) Create(ctx context.Context, actorID uuid.UUID, req transport.CreateLeadRequest) (transport.LeadResponse, error) {
	if err := RequireActor(actorID); err != nil {
		return transport.LeadResponse{}, err
	}

	source := domain.SourceOther
	if parsed := domain.ParseSource(req.Source); parsed != nil {
		source = *parsed
	}

	params := repository.CreateLeadParams{
		Name:               sanitize.Text(req.Name),
		Company:            sanitize.TextPtr(req.Company),
		Email:              normalizeEmail(req.Email),
		Phone:              phone.NormalizePtr(req.Phone),
		Source:             source,
		ExpectedValueCents: req.ExpectedValueCents,
		Notes:              sanitize.Text(req.Notes),
		CreatedBy:          actorID,
	}
	if domain.SourceAllowsDetail(source) {
		params.SourceDetail = sanitize.TextPtr(req.SourceDetail)
	}
	if req.LineOfBusiness != nil {
		params.LineOfBusiness = domain.ParseLineOfBusiness(*req.LineOfBusiness)
	}
	if params.Name == "" {
		return transport.LeadResponse{}, apperr.Validation("name is required")
	}

	lead, err := s.repo.Create(ctx, params)
	if err != nil {
		return transport.LeadResponse{}, err
	}

	s.audit.Record(ctx, audit.Entry{
		ActorID:    actorID,
		Action:     audit.ActionCreate,
		EntityType: audit.EntityLead,
		EntityID:   lead.ID,
		Metadata:   map[string]any{"source": string(lead.Source)},
	})
	s.metrics.ObserveLeadCreated(string(lead.Source))
	s.bus.Publish(ctx, events.LeadCreated{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    lead.ID,
		ActorID:   actorID,
		Source:    string(lead.Source),
	})

	return ToLeadResponse(lead), nil
}

// GetByID retrieves a lead, using the cache when configured.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.LeadResponse, error) {
	var cached transport.LeadResponse
	if s.cache != nil {
		if err := s.cache.Get(ctx, id.String(), &cached); err == nil {
			return cached, nil
		} else if !errors.Is(err, cache.ErrMiss) && s.log != nil {
			s.log.Warn("lead cache read failed", "leadId", id, "error", err)
		}
	}

	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.LeadResponse{}, LeadNotFound()
		}
		return transport.LeadResponse{}, err
	}

	resp := ToLeadResponse(lead)
	if s.cache != nil {
		if err := s.cache.Set(ctx, id.String(), resp); err != nil && s.log != nil {
			s.log.Warn("lead cache write failed", "leadId", id, "error", err)
		}
	}
	return resp, nil
}

// List returns a page of leads.
func (s *Service) List(ctx context.Context, req transport.ListLeadsRequest) (transport.LeadListResponse, error) {
	page := max(req.Page, 1)
	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = defaultPageSize
	}

	params := repository.ListParams{
		Search: req.Search,
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
	}
	if req.Stage != "" {
		stage, ok := domain.ParseStage(req.Stage)
		if !ok {
			return transport.LeadListResponse{}, apperr.Validation("invalid stage value").WithCode(domain.CodeInvalidStage)
		}
		params.Stage = &stage
	}

	leads, total, err := s.repo.List(ctx, params)
	if err != nil {
		return transport.LeadListResponse{}, err
	}

	items := make([]transport.LeadResponse, len(leads))
	for i, lead := range leads {
		items[i] = ToLeadResponse(lead)
	}

	return transport.LeadListResponse{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: int(math.Ceil(float64(total) / float64(pageSize))),
	}, nil
}

// UpdateStage applies a generic stage change. Won is never reachable here.
func (s *Service) UpdateStage(ctx context.Context, actorID, id uuid.UUID, req transport.UpdateStageRequest) (transport.LeadResponse, error) {
	if err := RequireActor(actorID); err != nil {
		return transport.LeadResponse{}, err
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.LeadResponse{}, LeadNotFound()
		}
		return transport.LeadResponse{}, err
	}

	target := domain.Stage(strings.ToLower(strings.TrimSpace(req.Stage)))
	if err := domain.ValidateStageChange(current.Stage, target); err != nil {
		return transport.LeadResponse{}, stageError(err)
	}
	if err := domain.ValidateLostReason(target, req.LostReason, s.requireLostReason); err != nil {
		return transport.LeadResponse{}, stageError(err)
	}

	lostReason := domain.LostReasonFor(target, sanitize.TextPtr(req.LostReason))
	lead, err := s.repo.UpdateStage(ctx, id, target, lostReason)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return transport.LeadResponse{}, LeadNotFound()
		case errors.Is(err, repository.ErrLeadWon):
			return transport.LeadResponse{}, stageError(domain.ErrTerminalState)
		default:
			return transport.LeadResponse{}, err
		}
	}

	s.invalidate(ctx, id)
	metadata := map[string]any{"from": string(current.Stage), "to": string(lead.Stage)}
	if lostReason != nil {
		metadata["lostReason"] = *lostReason
	}
	s.audit.Record(ctx, audit.Entry{
		ActorID:    actorID,
		Action:     audit.ActionUpdate,
		EntityType: audit.EntityLead,
		EntityID:   id,
		Metadata:   metadata,
	})
	s.metrics.ObserveStageTransition(string(current.Stage), string(lead.Stage))
	s.bus.Publish(ctx, events.LeadStageChanged{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    id,
		ActorID:   actorID,
		OldStage:  string(current.Stage),
		NewStage:  string(lead.Stage),
	})

	return ToLeadResponse(lead), nil
}

// SaveIntake merges the provided intake fields without running the WON gate.
// Unknown line-of-business or payment-handling values are stored as unset.
func (s *Service) SaveIntake(ctx context.Context, actorID, id uuid.UUID, req transport.SaveIntakeRequest) (transport.LeadResponse, error) {
	if err := RequireActor(actorID); err != nil {
		return transport.LeadResponse{}, err
	}

	params, changed := intakeParams(req)
	lead, err := s.repo.UpdateIntake(ctx, id, params)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.LeadResponse{}, LeadNotFound()
		}
		return transport.LeadResponse{}, err
	}

	if len(changed) == 0 {
		return ToLeadResponse(lead), nil
	}

	missing := domain.MissingIntakeFields(lead.Intake())
	s.invalidate(ctx, id)
	s.audit.Record(ctx, audit.Entry{
		ActorID:    actorID,
		Action:     audit.ActionUpdate,
		EntityType: audit.EntityLead,
		EntityID:   id,
		Metadata:   map[string]any{"intakeFields": changed},
	})
	s.bus.Publish(ctx, events.LeadIntakeUpdated{
		BaseEvent:     events.NewBaseEvent(),
		LeadID:        id,
		ActorID:       actorID,
		MissingFields: missing,
	})

	return ToLeadResponse(lead), nil
}

// MissingIntake reports which fields still block conversion.
func (s *Service) MissingIntake(ctx context.Context, id uuid.UUID) (transport.MissingIntakeResponse, error) {
	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.MissingIntakeResponse{}, LeadNotFound()
		}
		return transport.MissingIntakeResponse{}, err
	}

	missing := domain.MissingIntakeFields(lead.Intake())
	return transport.MissingIntakeResponse{
		LeadID:        id,
		MissingFields: missing,
		Eligible:      len(missing) == 0 && !lead.IsConverted(),
	}, nil
}

func (s *Service) invalidate(ctx context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, id.String()); err != nil && s.log != nil {
		s.log.HookFailed("cache.invalidate", id.String(), err)
	}
}

func stageError(err error) error {
	switch {
	case errors.Is(err, domain.ErrTerminalState):
		return apperr.Conflict(err.Error()).WithCode(domain.CodeTerminalState)
	case errors.Is(err, domain.ErrDirectWon):
		return apperr.Validation(err.Error()).WithCode(domain.CodeDirectWon)
	case errors.Is(err, domain.ErrInvalidStage):
		return apperr.Validation(err.Error()).WithCode(domain.CodeInvalidStage)
	case errors.Is(err, domain.ErrLostReasonRequired):
		return apperr.Validation(err.Error()).WithCode(domain.CodeLostReasonRequired)
	default:
		return err
	}
}

func intakeParams(req transport.SaveIntakeRequest) (repository.UpdateIntakeParams, []string) {
	var params repository.UpdateIntakeParams
	changed := make([]string, 0)

	text := func(name string, in transport.OptionalString, out *repository.Field[string]) {
		if !in.Set {
			return
		}
		*out = repository.SetTo(sanitize.TextPtr(in.Value))
		changed = append(changed, name)
	}
	flag := func(name string, in *bool, out *repository.Field[bool]) {
		if in == nil {
			return
		}
		*out = repository.SetTo(in)
		changed = append(changed, name)
	}

	text(domain.FieldCompany, req.Company, &params.Company)
	text(domain.FieldAddressToUse, req.AddressToUse, &params.AddressToUse)
	text(domain.FieldDomain, req.Domain, &params.Domain)
	text(domain.FieldBusinessDescription, req.BusinessDescription, &params.BusinessDescription)
	text(domain.FieldServiceOutcome, req.ServiceOutcome, &params.ServiceOutcome)
	text(domain.FieldAdminEaseNotes, req.AdminEaseNotes, &params.AdminEaseNotes)
	text(domain.FieldLogo, req.LogoURL, &params.LogoURL)
	flag("hasDomain", req.HasDomain, &params.HasDomain)
	flag("whatsappEnabled", req.WhatsAppEnabled, &params.WhatsAppEnabled)
	flag("hasLogo", req.HasLogo, &params.HasLogo)

	if req.Phone.Set {
		params.Phone = repository.SetTo(phone.NormalizePtr(req.Phone.Value))
		changed = append(changed, domain.FieldPhone)
	}
	if req.PaymentHandling.Set {
		var value *domain.PaymentHandling
		if req.PaymentHandling.Value != nil {
			value = domain.ParsePaymentHandling(*req.PaymentHandling.Value)
		}
		params.PaymentHandling = repository.SetTo(value)
		changed = append(changed, domain.FieldPaymentHandling)
	}
	if req.LineOfBusiness.Set {
		var value *domain.LineOfBusiness
		if req.LineOfBusiness.Value != nil {
			value = domain.ParseLineOfBusiness(*req.LineOfBusiness.Value)
		}
		params.LineOfBusiness = repository.SetTo(value)
		changed = append(changed, domain.FieldLineOfBusiness)
	}

	return params, changed
}

func normalizeEmail(email *string) *string {
	if email == nil {
		return nil
	}
	trimmed := strings.ToLower(strings.TrimSpace(*email))
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
