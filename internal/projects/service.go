// Package projects manages development projects after conversion. Project
// stages carry no gating: any known stage may follow any other.
package projects

import (
	"context"
	"errors"

	"crm_backoffice/internal/audit"
	"crm_backoffice/internal/events"
	"crm_backoffice/internal/leads/domain"
	"crm_backoffice/platform/apperr"

	"github.com/google/uuid"
)

const (
	codeProjectNotFound     = "PROJECT_NOT_FOUND"
	codeInvalidProjectStage = "INVALID_PROJECT_STAGE"
)

type Store interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.DevelopmentProject, error)
	UpdateStage(ctx context.Context, id uuid.UUID, stage domain.ProjectStage) (domain.DevelopmentProject, error)
}

type AuditRecorder interface {
	Record(ctx context.Context, entry audit.Entry)
}

type Service struct {
	store Store
	bus   events.Bus
	audit AuditRecorder
}

func NewService(store Store, bus events.Bus, recorder AuditRecorder) *Service {
	return &Service{store: store, bus: bus, audit: recorder}
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (ProjectResponse, error) {
	project, err := s.store.GetByID(ctx, id)
	if err != nil {
		return ProjectResponse{}, mapError(err)
	}
	return toResponse(project), nil
}

func (s *Service) UpdateStage(ctx context.Context, actorID, id uuid.UUID, req UpdateStageRequest) (ProjectResponse, error) {
	if actorID == uuid.Nil {
		return ProjectResponse{}, apperr.Unauthorized("actor is required").WithCode(domain.CodeUnauthorized)
	}

	stage := domain.ParseProjectStage(req.Stage)
	if stage == nil {
		return ProjectResponse{}, apperr.Validation("invalid project stage").WithCode(codeInvalidProjectStage)
	}

	current, err := s.store.GetByID(ctx, id)
	if err != nil {
		return ProjectResponse{}, mapError(err)
	}

	updated, err := s.store.UpdateStage(ctx, id, *stage)
	if err != nil {
		return ProjectResponse{}, mapError(err)
	}

	s.audit.Record(ctx, audit.Entry{
		ActorID:    actorID,
		Action:     audit.ActionUpdate,
		EntityType: audit.EntityProject,
		EntityID:   id,
		Metadata:   map[string]any{"from": string(current.Stage), "to": string(updated.Stage)},
	})
	s.bus.Publish(ctx, events.ProjectStageChanged{
		BaseEvent: events.NewBaseEvent(),
		ProjectID: id,
		ActorID:   actorID,
		OldStage:  string(current.Stage),
		NewStage:  string(updated.Stage),
	})

	return toResponse(updated), nil
}

func mapError(err error) error {
	if errors.Is(err, ErrNotFound) {
		return apperr.NotFound("development project not found").WithCode(codeProjectNotFound)
	}
	return err
}
