package ports

import (
	"context"
	"fmt"

	"github.com/cervak/pricesurvey-api/internal/core/domain"
)

// ActorUpdate carries a partial profile update; nil fields are left untouched.
type ActorUpdate struct {
	FullName *string
	Email    *string
	Language *string
	Modules  map[string]domain.ModulePermissions
}

// ActorRepository defines the persistence contract for one actor variant.
//
// SoftDelete and SetEnabled(id, false) are required to clear the stored
// refresh-token hash in the same write, so there is no window in which a
// disabled actor still holds a usable refresh token.
type ActorRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Actor, error)
	FindByEmail(ctx context.Context, email string) (*domain.Actor, error)
	FindByUsername(ctx context.Context, username string) (*domain.Actor, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, actor *domain.Actor) (*domain.Actor, error)
	Update(ctx context.Context, id string, upd ActorUpdate) (*domain.Actor, error)
	SetEnabled(ctx context.Context, id string, enabled bool) (*domain.Actor, error)
	SoftDelete(ctx context.Context, id string) error
	// UpdateRefreshTokenHash stores the digest of the actor's single live
	// refresh token. An empty hash clears the slot.
	UpdateRefreshTokenHash(ctx context.Context, id, hash string) error
	List(ctx context.Context) ([]domain.Actor, error)
}

// ActorRepositories groups the per-variant repositories and dispatches on
// the actor type tag, so guard and flow logic is written once.
type ActorRepositories struct {
	Admins     ActorRepository
	Users      ActorRepository
	Operatives ActorRepository
}

// ByType returns the repository for the given actor type.
func (r ActorRepositories) ByType(t domain.ActorType) (ActorRepository, error) {
	switch t {
	case domain.ActorTypeAdmin:
		return r.Admins, nil
	case domain.ActorTypeUser:
		return r.Users, nil
	case domain.ActorTypeOperative:
		return r.Operatives, nil
	}
	return nil, fmt.Errorf("unknown actor type %q", t)
}
