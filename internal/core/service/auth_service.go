package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/cervak/pricesurvey-api/internal/core/domain"
	"github.com/cervak/pricesurvey-api/internal/core/ports"
)

// AuthService implements the login, registration, rotation, and revocation
// flows over the per-variant actor repositories.
type AuthService struct {
	repos  ports.ActorRepositories
	hasher ports.PasswordHasher
	issuer ports.TokenIssuer
	log    zerolog.Logger
}

func NewAuthService(repos ports.ActorRepositories, hasher ports.PasswordHasher, issuer ports.TokenIssuer, log zerolog.Logger) *AuthService {
	return &AuthService{repos: repos, hasher: hasher, issuer: issuer, log: log}
}

// Login verifies credentials within one actor variant and issues a token
// pair, persisting the refresh token's digest as the actor's single live
// session. Missing actor, wrong password, and disabled or deleted accounts
// all collapse into the same generic error.
func (s *AuthService) Login(ctx context.Context, in ports.LoginInput) (*ports.AuthResult, error) {
	if in.Email == "" || in.Password == "" || !in.ActorType.Valid() {
		return nil, domain.ErrInvalidCredentials
	}

	repo, err := s.repos.ByType(in.ActorType)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	actor, err := repo.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, domain.ErrActorNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.hasher.Verify(in.Password, actor.PasswordHash) || !actor.IsLive() {
		return nil, domain.ErrInvalidCredentials
	}

	return s.openSession(ctx, repo, actor)
}

// RegisterUser is the public self-registration path. On success it behaves
// exactly like a successful login: a token pair is issued and its refresh
// digest persisted.
func (s *AuthService) RegisterUser(ctx context.Context, in ports.RegisterUserInput) (*ports.AuthResult, error) {
	actor := &domain.Actor{
		Type:     domain.ActorTypeUser,
		FullName: in.FullName,
		Email:    in.Email,
		Username: in.Username,
		Language: in.Language,
	}
	return s.register(ctx, s.repos.Users, actor, in.Password)
}

// RegisterAdmin creates an administrator. Authorization (an authenticated
// administrator with the required module grant) is enforced by the caller's
// middleware chain; there is no public path to this flow.
func (s *AuthService) RegisterAdmin(ctx context.Context, in ports.RegisterAdminInput) (*ports.AuthResult, error) {
	actor := &domain.Actor{
		Type:     domain.ActorTypeAdmin,
		FullName: in.FullName,
		Email:    in.Email,
		Username: in.Username,
		Modules:  in.Modules,
	}
	return s.register(ctx, s.repos.Admins, actor, in.Password)
}

// CreateOperativeUser provisions a field operative with an initial password
// and records the creating administrator. Unlike registration it does not
// open a session: the operative logs in with the handed-over credentials.
func (s *AuthService) CreateOperativeUser(ctx context.Context, in ports.CreateOperativeInput) (*domain.ActorSummary, error) {
	repo := s.repos.Operatives

	if err := s.checkDuplicates(ctx, repo, in.Email, in.Username); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	created, err := repo.Create(ctx, &domain.Actor{
		Type:         domain.ActorTypeOperative,
		FullName:     in.FullName,
		Email:        in.Email,
		Username:     in.Username,
		PasswordHash: hash,
		Enabled:      true,
		CreatedByID:  in.CreatedByID,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	summary := created.Summary()
	return &summary, nil
}

// Refresh rotates the presented refresh token: signature and expiry are
// verified, the live actor is re-fetched, the presented token's digest is
// compared against the stored slot, and on match a new pair replaces it.
// A superseded token fails the comparison and is rejected.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*ports.AuthResult, error) {
	claims, err := s.issuer.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}

	repo, err := s.repos.ByType(claims.Type)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}

	actor, err := repo.FindByID(ctx, claims.Subject)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	if !actor.IsLive() || actor.RefreshTokenHash == "" {
		return nil, domain.ErrUnauthorized
	}

	presented := RefreshTokenDigest(refreshToken)
	if subtle.ConstantTimeCompare([]byte(presented), []byte(actor.RefreshTokenHash)) != 1 {
		s.log.Warn().
			Str("actor_id", actor.ID).
			Str("actor_type", string(actor.Type)).
			Msg("refresh token digest mismatch")
		return nil, domain.ErrUnauthorized
	}

	// The compare and the overwrite below are two steps; two concurrent
	// rotations of the same token can both pass the compare. Accepted,
	// see DESIGN.md.
	return s.openSession(ctx, repo, actor)
}

// Logout clears the actor's stored refresh-token digest, ending its ability
// to rotate. The current access token stays valid until its own expiry.
func (s *AuthService) Logout(ctx context.Context, actorType domain.ActorType, actorID string) error {
	repo, err := s.repos.ByType(actorType)
	if err != nil {
		return domain.ErrUnauthorized
	}
	return repo.UpdateRefreshTokenHash(ctx, actorID, "")
}

// register is the shared user/admin creation path: advisory duplicate
// checks, hash, create, then open a session. The storage layer's unique
// indexes are the authoritative duplicate guard; a constraint violation at
// write time surfaces as the same conflict the advisory check would have
// produced.
func (s *AuthService) register(ctx context.Context, repo ports.ActorRepository, actor *domain.Actor, password string) (*ports.AuthResult, error) {
	if err := s.checkDuplicates(ctx, repo, actor.Email, actor.Username); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	actor.PasswordHash = hash
	actor.Enabled = true
	actor.CreatedAt = now
	actor.UpdatedAt = now

	created, err := repo.Create(ctx, actor)
	if err != nil {
		return nil, err
	}

	return s.openSession(ctx, repo, created)
}

func (s *AuthService) checkDuplicates(ctx context.Context, repo ports.ActorRepository, email, username string) error {
	if exists, err := repo.ExistsByEmail(ctx, email); err != nil {
		return err
	} else if exists {
		return domain.ErrActorExists
	}
	if exists, err := repo.ExistsByUsername(ctx, username); err != nil {
		return err
	} else if exists {
		return domain.ErrActorExists
	}
	return nil
}

// openSession issues a token pair and persists the refresh digest, making
// the pair the actor's single live session.
func (s *AuthService) openSession(ctx context.Context, repo ports.ActorRepository, actor *domain.Actor) (*ports.AuthResult, error) {
	pair, err := s.issuer.Issue(actor.Summary())
	if err != nil {
		return nil, err
	}
	if err := repo.UpdateRefreshTokenHash(ctx, actor.ID, RefreshTokenDigest(pair.RefreshToken)); err != nil {
		return nil, err
	}
	return &ports.AuthResult{Actor: actor.Summary(), Tokens: pair}, nil
}
