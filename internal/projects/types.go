package projects

import (
	"time"

	"crm_backoffice/internal/leads/domain"

	"github.com/google/uuid"
)

type UpdateStageRequest struct {
	Stage string `json:"stage" validate:"required,notblank,max=32"`
}

// ProjectResponse is the API representation of a development project.
// IntakeSnapshot is the intake as it was when the lead converted.
type ProjectResponse struct {
	ID             uuid.UUID             `json:"id"`
	ClientID       uuid.UUID             `json:"clientId"`
	Name           string                `json:"name"`
	Stage          string                `json:"stage"`
	IntakeSnapshot domain.IntakeSnapshot `json:"intakeSnapshot"`
	CreatedAt      time.Time             `json:"createdAt"`
	UpdatedAt      time.Time             `json:"updatedAt"`
}

func toResponse(p domain.DevelopmentProject) ProjectResponse {
	return ProjectResponse{
		ID:             p.ID,
		ClientID:       p.ClientID,
		Name:           p.Name,
		Stage:          string(p.Stage),
		IntakeSnapshot: p.Snapshot,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}
