package projects

import (
	"context"
	"errors"

	"crm_backoffice/internal/leads/domain"
	leadsrepo "crm_backoffice/internal/leads/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrNotFound = errors.New("development project not found")

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Repository struct {
	db querier
}

func NewRepository(db querier) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (domain.DevelopmentProject, error) {
	row := r.db.QueryRow(ctx, `SELECT `+leadsrepo.ProjectColumns+` FROM development_projects WHERE id = $1`, id)
	return scan(row)
}

// UpdateStage writes the stage only. The intake snapshot columns are never
// updated after creation.
func (r *Repository) UpdateStage(ctx context.Context, id uuid.UUID, stage domain.ProjectStage) (domain.DevelopmentProject, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE development_projects SET stage = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+leadsrepo.ProjectColumns,
		id, string(stage),
	)
	return scan(row)
}

func scan(row pgx.Row) (domain.DevelopmentProject, error) {
	project, err := leadsrepo.ScanProject(row)
	if errors.Is(err, leadsrepo.ErrProjectNotFound) {
		return domain.DevelopmentProject{}, ErrNotFound
	}
	return project, err
}
