package ports

import (
	"context"

	"github.com/cervak/pricesurvey-api/internal/core/domain"
)

// ActorService exposes the admin-console lifecycle operations over actors.
// Disablement and soft deletion are revocation events: both clear the
// stored refresh-token hash as part of the same write.
type ActorService interface {
	Get(ctx context.Context, t domain.ActorType, id string) (*domain.Actor, error)
	List(ctx context.Context, t domain.ActorType) ([]domain.Actor, error)
	// Update applies a partial profile update. An email change is checked
	// against the variant's unique email constraint.
	Update(ctx context.Context, t domain.ActorType, id string, upd ActorUpdate) (*domain.Actor, error)
	SetEnabled(ctx context.Context, t domain.ActorType, id string, enabled bool) (*domain.Actor, error)
	SoftDelete(ctx context.Context, t domain.ActorType, id string) error
}
