package repository

import (
	"context"
	"time"

	"crm_backoffice/internal/leads/domain"

	"github.com/google/uuid"
)

// LeadReader provides read-only access to lead data.
type LeadReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error)
	List(ctx context.Context, params ListParams) ([]domain.Lead, int, error)
}

// LeadWriter provides the non-conversion writes on a lead.
type LeadWriter interface {
	Create(ctx context.Context, params CreateLeadParams) (domain.Lead, error)
	UpdateStage(ctx context.Context, id uuid.UUID, stage domain.Stage, lostReason *string) (domain.Lead, error)
	UpdateIntake(ctx context.Context, id uuid.UUID, params UpdateIntakeParams) (domain.Lead, error)
}

// ConversionTx is the set of writes a WON conversion performs, all bound to
// one transaction.
type ConversionTx interface {
	LockLead(ctx context.Context, id uuid.UUID) (domain.Lead, error)
	CreateClient(ctx context.Context, client domain.Client) (domain.Client, error)
	MarkLeadWon(ctx context.Context, leadID, clientID uuid.UUID, wonAt time.Time) (domain.Lead, error)
	FindProjectByClientID(ctx context.Context, clientID uuid.UUID) (domain.DevelopmentProject, error)
	CreateProject(ctx context.Context, project domain.DevelopmentProject) (domain.DevelopmentProject, error)
}

// ConversionStore opens conversion transactions.
type ConversionStore interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx ConversionTx) error) error
}

// LeadRepository is the composite interface for the leads module.
type LeadRepository interface {
	LeadReader
	LeadWriter
	ConversionStore
}

var (
	_ LeadRepository = (*Repository)(nil)
	_ ConversionTx   = (*txStore)(nil)
)
