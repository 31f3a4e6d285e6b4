package service

import (
	"context"

	"github.com/cervak/pricesurvey-api/internal/core/domain"
	"github.com/cervak/pricesurvey-api/internal/core/ports"
)

// ActorService implements the admin-console lifecycle operations. Disabling
// and soft-deleting are revocation events; the repository contract clears
// the refresh-token hash in the same write.
type ActorService struct {
	repos ports.ActorRepositories
}

func NewActorService(repos ports.ActorRepositories) *ActorService {
	return &ActorService{repos: repos}
}

func (s *ActorService) Get(ctx context.Context, t domain.ActorType, id string) (*domain.Actor, error) {
	repo, err := s.repos.ByType(t)
	if err != nil {
		return nil, domain.ErrActorNotFound
	}
	return repo.FindByID(ctx, id)
}

func (s *ActorService) List(ctx context.Context, t domain.ActorType) ([]domain.Actor, error) {
	repo, err := s.repos.ByType(t)
	if err != nil {
		return nil, domain.ErrActorNotFound
	}
	return repo.List(ctx)
}

// Update applies a partial profile update. A changed email is checked for
// uniqueness within the variant before the write; the storage layer's unique
// index closes the remaining race and reports the same conflict.
func (s *ActorService) Update(ctx context.Context, t domain.ActorType, id string, upd ports.ActorUpdate) (*domain.Actor, error) {
	repo, err := s.repos.ByType(t)
	if err != nil {
		return nil, domain.ErrActorNotFound
	}

	actor, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Email != nil && *upd.Email != actor.Email {
		exists, err := repo.ExistsByEmail(ctx, *upd.Email)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, domain.ErrActorExists
		}
	}

	return repo.Update(ctx, id, upd)
}

func (s *ActorService) SetEnabled(ctx context.Context, t domain.ActorType, id string, enabled bool) (*domain.Actor, error) {
	repo, err := s.repos.ByType(t)
	if err != nil {
		return nil, domain.ErrActorNotFound
	}
	return repo.SetEnabled(ctx, id, enabled)
}

func (s *ActorService) SoftDelete(ctx context.Context, t domain.ActorType, id string) error {
	repo, err := s.repos.ByType(t)
	if err != nil {
		return domain.ErrActorNotFound
	}
	return repo.SoftDelete(ctx, id)
}
