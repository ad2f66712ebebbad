package clients

import (
	"context"
	"errors"

	"crm_backoffice/internal/leads/domain"
	leadsrepo "crm_backoffice/internal/leads/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrNotFound = errors.New("client not found")

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Repository struct {
	db querier
}

func NewRepository(db querier) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (domain.Client, error) {
	row := r.db.QueryRow(ctx, `SELECT `+leadsrepo.ClientColumns+` FROM clients WHERE id = $1`, id)
	client, err := leadsrepo.ScanClient(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Client{}, ErrNotFound
	}
	return client, err
}

// ProjectIDFor returns the id of the client's development project, or nil.
func (r *Repository) ProjectIDFor(ctx context.Context, clientID uuid.UUID) (*uuid.UUID, error) {
	var id uuid.UUID
	err := r.db.QueryRow(ctx, `SELECT id FROM development_projects WHERE client_id = $1`, clientID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &id, nil
}
