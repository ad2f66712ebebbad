package domain

import (
	"time"

	"github.com/google/uuid"
)

// Client is a billable customer created from a won lead.
type Client struct {
	ID              uuid.UUID
	LeadID          *uuid.UUID
	Name            string
	Email           string
	Phone           *string
	AddressToUse    *string
	LineOfBusiness  *LineOfBusiness
	PaymentHandling *PaymentHandling
	TaxID           *string
	NationalID      *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ProjectStage is the delivery state of a development project. Any known
// stage may follow any other.
type ProjectStage string

const (
	ProjectStageDiscovery   ProjectStage = "discovery"
	ProjectStageDesign      ProjectStage = "design"
	ProjectStageDevelopment ProjectStage = "development"
	ProjectStageQA          ProjectStage = "qa"
	ProjectStageDeployment  ProjectStage = "deployment"
	ProjectStageCompleted   ProjectStage = "completed"
	ProjectStageOnHold      ProjectStage = "on_hold"
)

var knownProjectStages = map[ProjectStage]struct{}{
	ProjectStageDiscovery: {}, ProjectStageDesign: {}, ProjectStageDevelopment: {}, ProjectStageQA: {},
	ProjectStageDeployment: {}, ProjectStageCompleted: {}, ProjectStageOnHold: {},
}

// ParseProjectStage returns nil for blank or unknown input.
func ParseProjectStage(raw string) *ProjectStage {
	return parseEnum(raw, knownProjectStages)
}

// DevelopmentProject is the delivery record created alongside a client.
// Each client has at most one.
type DevelopmentProject struct {
	ID        uuid.UUID
	ClientID  uuid.UUID
	Name      string
	Stage     ProjectStage
	Snapshot  IntakeSnapshot
	CreatedAt time.Time
	UpdatedAt time.Time
}
