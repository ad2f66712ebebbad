// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"crm_backoffice/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var (
	NewBaseEvent = events.NewBaseEvent
	BaseEventAt  = events.BaseEventAt
)

// =============================================================================
// Lead Domain Events
// =============================================================================

// LeadCreated is published when a lead enters the funnel.
type LeadCreated struct {
	BaseEvent
	LeadID  uuid.UUID `json:"leadId"`
	ActorID uuid.UUID `json:"actorId"`
	Source  string    `json:"source"`
}

func (e LeadCreated) EventName() string { return "leads.lead.created" }

// LeadStageChanged is published after a generic stage change commits.
type LeadStageChanged struct {
	BaseEvent
	LeadID   uuid.UUID `json:"leadId"`
	ActorID  uuid.UUID `json:"actorId"`
	OldStage string    `json:"oldStage"`
	NewStage string    `json:"newStage"`
}

func (e LeadStageChanged) EventName() string { return "leads.lead.stage_changed" }

// LeadIntakeUpdated is published when intake fields are saved.
type LeadIntakeUpdated struct {
	BaseEvent
	LeadID        uuid.UUID `json:"leadId"`
	ActorID       uuid.UUID `json:"actorId"`
	MissingFields []string  `json:"missingFields"`
}

func (e LeadIntakeUpdated) EventName() string { return "leads.lead.intake_updated" }

// LeadConverted is published after a WON conversion commits.
type LeadConverted struct {
	BaseEvent
	LeadID        uuid.UUID `json:"leadId"`
	ActorID       uuid.UUID `json:"actorId"`
	ClientID      uuid.UUID `json:"clientId"`
	ClientName    string    `json:"clientName"`
	ProjectID     uuid.UUID `json:"developmentProjectId"`
	ProjectReused bool      `json:"projectReused"`
}

func (e LeadConverted) EventName() string { return "leads.lead.converted" }

// =============================================================================
// Project Domain Events
// =============================================================================

// ProjectStageChanged is published when a development project moves stage.
type ProjectStageChanged struct {
	BaseEvent
	ProjectID uuid.UUID `json:"projectId"`
	ActorID   uuid.UUID `json:"actorId"`
	OldStage  string    `json:"oldStage"`
	NewStage  string    `json:"newStage"`
}

func (e ProjectStageChanged) EventName() string { return "projects.project.stage_changed" }
