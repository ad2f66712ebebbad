// Package conversion turns a qualified lead into a client and its development
// project. It is the only path that moves a lead to won.
package conversion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"crm_backoffice/internal/audit"
	"crm_backoffice/internal/events"
	"crm_backoffice/internal/leads/domain"
	"crm_backoffice/internal/leads/repository"
	"crm_backoffice/internal/metrics"
	"crm_backoffice/platform/apperr"
	"crm_backoffice/platform/logger"

	"github.com/google/uuid"
)

// Outcome classifies a conversion attempt.
type Outcome string

const (
	OutcomeConverted        Outcome = "converted"
	OutcomeNotFound         Outcome = "not_found"
	OutcomeAlreadyConverted Outcome = "already_converted"
	OutcomeIntakeRequired   Outcome = "intake_required"
	OutcomeConflict         Outcome = "conflict"
)

// errLeadChanged aborts the transaction when the won write matched no row.
var errLeadChanged = errors.New("lead changed during conversion")

// SupplementalFields are client attributes only known at conversion time.
type SupplementalFields struct {
	TaxID      *string
	NationalID *string
}

// Result describes what Convert did. Only OutcomeConverted carries a project;
// OutcomeAlreadyConverted carries the existing ClientID.
type Result struct {
	Outcome       Outcome
	ClientID      uuid.UUID
	ClientName    string
	ProjectID     uuid.UUID
	ProjectReused bool
	MissingFields []string
}

// Store is what conversion needs from persistence.
type Store interface {
	repository.ConversionStore
	GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error)
}

// AuditRecorder records audit entries on a best-effort basis.
type AuditRecorder interface {
	Record(ctx context.Context, entry audit.Entry)
}

// CacheInvalidator drops cached lead reads.
type CacheInvalidator interface {
	Delete(ctx context.Context, key string) error
}

// Hook runs after a conversion commits. A failing hook is logged and never
// undoes the conversion.
type Hook func(ctx context.Context, c Committed) error

// Committed is the state handed to post-commit hooks.
type Committed struct {
	ActorID uuid.UUID
	Lead    domain.Lead
	Client  domain.Client
	Project domain.DevelopmentProject
	Reused  bool
}

type Service struct {
	store             Store
	bus               events.Bus
	audit             AuditRecorder
	cache             CacheInvalidator
	metrics           *metrics.LeadMetrics
	log               *logger.Logger
	placeholderDomain string
	hooks             []namedHook
	now               func() time.Time
	newID             func() uuid.UUID
}

type namedHook struct {
	name string
	fn   Hook
}

// New creates the conversion service. placeholderDomain is used to build a
// client email when the lead has none.
func New(store Store, bus events.Bus, recorder AuditRecorder, placeholderDomain string, log *logger.Logger) *Service {
	s := &Service{
		store:             store,
		bus:               bus,
		audit:             recorder,
		log:               log,
		placeholderDomain: placeholderDomain,
		now:               func() time.Time { return time.Now().UTC() },
		newID:             uuid.New,
	}
	s.hooks = []namedHook{
		{name: "audit", fn: s.auditHook},
		{name: "cache.invalidate", fn: s.cacheHook},
		{name: "events.lead_converted", fn: s.eventHook},
	}
	return s
}

// SetCache enables invalidation of the lead read cache.
func (s *Service) SetCache(c CacheInvalidator) {
	s.cache = c
}

// SetMetrics enables Prometheus instrumentation.
func (s *Service) SetMetrics(m *metrics.LeadMetrics) {
	s.metrics = m
}

// AddHook appends a post-commit hook.
func (s *Service) AddHook(name string, fn Hook) {
	s.hooks = append(s.hooks, namedHook{name: name, fn: fn})
}

// Convert runs the WON conversion for leadID. Precondition failures are
// reported through Result.Outcome with a nil error; storage failures are
// returned as errors and leave nothing written.
func (s *Service) Convert(ctx context.Context, actorID, leadID uuid.UUID, supplemental SupplementalFields) (Result, error) {
	if actorID == uuid.Nil {
		return Result{}, apperr.Unauthorized("actor is required").WithCode(domain.CodeUnauthorized)
	}

	start := time.Now()
	var (
		result    Result
		committed *Committed
	)

	err := s.store.RunInTx(ctx, func(ctx context.Context, tx repository.ConversionTx) error {
		result, committed = Result{}, nil

		lead, err := tx.LockLead(ctx, leadID)
		if errors.Is(err, repository.ErrNotFound) {
			result.Outcome = OutcomeNotFound
			return nil
		}
		if err != nil {
			return err
		}

		if lead.IsConverted() {
			result.Outcome = OutcomeAlreadyConverted
			result.ClientID = *lead.ConvertedClientID
			return nil
		}

		intake := lead.Intake()
		if missing := domain.MissingIntakeFields(intake); len(missing) > 0 {
			result.Outcome = OutcomeIntakeRequired
			result.MissingFields = missing
			return nil
		}
		snapshot := domain.BuildSnapshot(intake)

		client, err := tx.CreateClient(ctx, s.clientFromLead(lead, supplemental))
		if err != nil {
			return err
		}

		won, err := tx.MarkLeadWon(ctx, lead.ID, client.ID, s.now())
		if errors.Is(err, repository.ErrNotFound) {
			return errLeadChanged
		}
		if err != nil {
			return err
		}

		project, reused, err := s.EnsureProject(ctx, tx, client, snapshot)
		if err != nil {
			return err
		}

		result = Result{
			Outcome:       OutcomeConverted,
			ClientID:      client.ID,
			ClientName:    client.Name,
			ProjectID:     project.ID,
			ProjectReused: reused,
		}
		committed = &Committed{ActorID: actorID, Lead: won, Client: client, Project: project, Reused: reused}
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrUniqueViolation) || errors.Is(err, errLeadChanged) {
			result, err = s.resolveRace(ctx, leadID)
		}
		if err != nil {
			s.observe(leadID, actorID, "error", start)
			return Result{}, fmt.Errorf("convert lead %s: %w", leadID, err)
		}
		s.observe(leadID, actorID, string(result.Outcome), start)
		return result, nil
	}

	if committed != nil {
		s.runHooks(ctx, *committed)
	}
	s.observe(leadID, actorID, string(result.Outcome), start)
	return result, nil
}

// EnsureProject returns the development project of client, creating it at
// discovery with snapshot when none exists. reused reports whether an
// existing project was returned.
func (s *Service) EnsureProject(ctx context.Context, tx repository.ConversionTx, client domain.Client, snapshot domain.IntakeSnapshot) (domain.DevelopmentProject, bool, error) {
	existing, err := tx.FindProjectByClientID(ctx, client.ID)
	if err == nil {
		return existing, true, nil
	}
	if !errors.Is(err, repository.ErrProjectNotFound) {
		return domain.DevelopmentProject{}, false, err
	}

	created, err := tx.CreateProject(ctx, domain.DevelopmentProject{
		ID:       s.newID(),
		ClientID: client.ID,
		Name:     client.Name,
		Stage:    domain.ProjectStageDiscovery,
		Snapshot: snapshot,
	})
	if err != nil {
		return domain.DevelopmentProject{}, false, err
	}
	return created, false, nil
}

// resolveRace classifies a transaction that lost a race on the guard
// constraints. The caller decides whether to retry.
func (s *Service) resolveRace(ctx context.Context, leadID uuid.UUID) (Result, error) {
	lead, err := s.store.GetByID(ctx, leadID)
	if errors.Is(err, repository.ErrNotFound) {
		return Result{Outcome: OutcomeNotFound}, nil
	}
	if err != nil {
		return Result{}, err
	}
	if lead.IsConverted() {
		return Result{Outcome: OutcomeAlreadyConverted, ClientID: *lead.ConvertedClientID}, nil
	}
	return Result{Outcome: OutcomeConflict}, nil
}

func (s *Service) clientFromLead(lead domain.Lead, supplemental SupplementalFields) domain.Client {
	leadID := lead.ID
	email := fmt.Sprintf("lead-%s@%s", lead.ID, s.placeholderDomain)
	if lead.Email != nil && *lead.Email != "" {
		email = *lead.Email
	}

	// Company is guaranteed non-blank by the intake gate.
	return domain.Client{
		ID:              s.newID(),
		LeadID:          &leadID,
		Name:            *lead.Company,
		Email:           email,
		Phone:           lead.Phone,
		AddressToUse:    lead.AddressToUse,
		LineOfBusiness:  lead.LineOfBusiness,
		PaymentHandling: lead.PaymentHandling,
		TaxID:           supplemental.TaxID,
		NationalID:      supplemental.NationalID,
	}
}

func (s *Service) runHooks(ctx context.Context, c Committed) {
	for _, h := range s.hooks {
		if err := h.fn(ctx, c); err != nil && s.log != nil {
			s.log.HookFailed(h.name, c.Lead.ID.String(), err)
		}
	}
}

func (s *Service) auditHook(ctx context.Context, c Committed) error {
	if s.audit == nil {
		return nil
	}
	s.audit.Record(ctx, audit.Entry{
		ActorID:    c.ActorID,
		Action:     audit.ActionCreate,
		EntityType: audit.EntityClient,
		EntityID:   c.Client.ID,
		Metadata:   map[string]any{"leadId": c.Lead.ID.String()},
	})
	if !c.Reused {
		s.audit.Record(ctx, audit.Entry{
			ActorID:    c.ActorID,
			Action:     audit.ActionCreate,
			EntityType: audit.EntityProject,
			EntityID:   c.Project.ID,
			Metadata:   map[string]any{"clientId": c.Client.ID.String(), "stage": string(c.Project.Stage)},
		})
	}
	s.audit.Record(ctx, audit.Entry{
		ActorID:    c.ActorID,
		Action:     audit.ActionUpdate,
		EntityType: audit.EntityLead,
		EntityID:   c.Lead.ID,
		Metadata: map[string]any{
			"to":                "won",
			"convertedClientId": c.Client.ID.String(),
		},
	})
	return nil
}

func (s *Service) cacheHook(ctx context.Context, c Committed) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx, c.Lead.ID.String())
}

func (s *Service) eventHook(ctx context.Context, c Committed) error {
	if s.bus == nil {
		return nil
	}
	base := events.NewBaseEvent()
	if c.Lead.WonAt != nil {
		base = events.BaseEventAt(*c.Lead.WonAt)
	}
	s.bus.Publish(ctx, events.LeadConverted{
		BaseEvent:     base,
		LeadID:        c.Lead.ID,
		ActorID:       c.ActorID,
		ClientID:      c.Client.ID,
		ClientName:    c.Client.Name,
		ProjectID:     c.Project.ID,
		ProjectReused: c.Reused,
	})
	return nil
}

func (s *Service) observe(leadID, actorID uuid.UUID, outcome string, start time.Time) {
	elapsed := time.Since(start)
	s.metrics.ObserveConversion(outcome, elapsed.Seconds())
	if s.log != nil {
		s.log.LeadConversion(leadID.String(), actorID.String(), outcome, float64(elapsed.Microseconds())/1000)
	}
}
