// Package clients exposes read access to clients created by lead conversion.
package clients

import (
	"context"
	"errors"

	"crm_backoffice/internal/leads/domain"
	"crm_backoffice/platform/apperr"

	"github.com/google/uuid"
)

const codeClientNotFound = "CLIENT_NOT_FOUND"

// Store is the data access needed by the service.
type Store interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Client, error)
	ProjectIDFor(ctx context.Context, clientID uuid.UUID) (*uuid.UUID, error)
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// GetByID returns the client together with its development project id.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (ClientResponse, error) {
	client, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ClientResponse{}, apperr.NotFound("client not found").WithCode(codeClientNotFound)
		}
		return ClientResponse{}, err
	}

	projectID, err := s.store.ProjectIDFor(ctx, id)
	if err != nil {
		return ClientResponse{}, err
	}
	return toResponse(client, projectID), nil
}
