package ports

import (
	"context"

	"github.com/cervak/pricesurvey-api/internal/core/domain"
)

// LoginInput identifies a credential check within one actor variant.
type LoginInput struct {
	Email     string
	Password  string
	ActorType domain.ActorType
}

// RegisterUserInput is the public self-registration payload.
type RegisterUserInput struct {
	FullName string
	Email    string
	Username string
	Password string
	Language string
}

// RegisterAdminInput is the administrator-gated admin creation payload.
type RegisterAdminInput struct {
	FullName string
	Email    string
	Username string
	Password string
	Modules  map[string]domain.ModulePermissions
}

// CreateOperativeInput provisions a field operative; CreatedByID records
// the administrator performing the creation.
type CreateOperativeInput struct {
	FullName    string
	Email       string
	Username    string
	Password    string
	CreatedByID string
}

// AuthResult is a successful login/registration/rotation outcome.
type AuthResult struct {
	Actor  domain.ActorSummary
	Tokens domain.TokenPair
}

// AuthService orchestrates the state-changing authentication flows.
type AuthService interface {
	Login(ctx context.Context, in LoginInput) (*AuthResult, error)
	RegisterUser(ctx context.Context, in RegisterUserInput) (*AuthResult, error)
	RegisterAdmin(ctx context.Context, in RegisterAdminInput) (*AuthResult, error)
	CreateOperativeUser(ctx context.Context, in CreateOperativeInput) (*domain.ActorSummary, error)
	// Refresh rotates the presented refresh token into a new pair, making
	// the presented token single-use.
	Refresh(ctx context.Context, refreshToken string) (*AuthResult, error)
	// Logout clears the actor's stored refresh-token hash.
	Logout(ctx context.Context, actorType domain.ActorType, actorID string) error
}
