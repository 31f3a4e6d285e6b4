package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/cervak/pricesurvey-api/internal/core/domain"
	"github.com/cervak/pricesurvey-api/internal/core/ports"
)

// stubActorRepo is an in-memory ActorRepository honoring the revocation
// contract: disabling and soft-deleting clear the refresh-token hash in
// the same operation.
type stubActorRepo struct {
	actorType domain.ActorType
	actors    map[string]*domain.Actor
	nextID    int
}

func newStubActorRepo(t domain.ActorType) *stubActorRepo {
	return &stubActorRepo{actorType: t, actors: make(map[string]*domain.Actor)}
}

func cloneActor(a *domain.Actor) *domain.Actor {
	if a == nil {
		return nil
	}
	clone := *a
	return &clone
}

func (r *stubActorRepo) FindByID(_ context.Context, id string) (*domain.Actor, error) {
	if a, ok := r.actors[id]; ok {
		return cloneActor(a), nil
	}
	return nil, domain.ErrActorNotFound
}

func (r *stubActorRepo) FindByEmail(_ context.Context, email string) (*domain.Actor, error) {
	for _, a := range r.actors {
		if a.Email == email {
			return cloneActor(a), nil
		}
	}
	return nil, domain.ErrActorNotFound
}

func (r *stubActorRepo) FindByUsername(_ context.Context, username string) (*domain.Actor, error) {
	for _, a := range r.actors {
		if a.Username == username {
			return cloneActor(a), nil
		}
	}
	return nil, domain.ErrActorNotFound
}

func (r *stubActorRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.FindByEmail(ctx, email)
	return err == nil, nil
}

func (r *stubActorRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := r.FindByUsername(ctx, username)
	return err == nil, nil
}

func (r *stubActorRepo) Create(_ context.Context, actor *domain.Actor) (*domain.Actor, error) {
	for _, a := range r.actors {
		if a.Email == actor.Email || a.Username == actor.Username {
			return nil, domain.ErrActorExists
		}
	}
	r.nextID++
	created := cloneActor(actor)
	created.ID = fmt.Sprintf("%s-%d", r.actorType, r.nextID)
	created.Type = r.actorType
	r.actors[created.ID] = cloneActor(created)
	return created, nil
}

func (r *stubActorRepo) Update(_ context.Context, id string, upd ports.ActorUpdate) (*domain.Actor, error) {
	a, ok := r.actors[id]
	if !ok {
		return nil, domain.ErrActorNotFound
	}
	if upd.FullName != nil {
		a.FullName = *upd.FullName
	}
	if upd.Email != nil {
		for id, other := range r.actors {
			if id != a.ID && other.Email == *upd.Email {
				return nil, domain.ErrActorExists
			}
		}
		a.Email = *upd.Email
	}
	if upd.Language != nil {
		a.Language = *upd.Language
	}
	if upd.Modules != nil {
		a.Modules = upd.Modules
	}
	a.UpdatedAt = time.Now().UTC()
	return cloneActor(a), nil
}

func (r *stubActorRepo) SetEnabled(_ context.Context, id string, enabled bool) (*domain.Actor, error) {
	a, ok := r.actors[id]
	if !ok {
		return nil, domain.ErrActorNotFound
	}
	a.Enabled = enabled
	if !enabled {
		a.RefreshTokenHash = ""
	}
	return cloneActor(a), nil
}

func (r *stubActorRepo) SoftDelete(_ context.Context, id string) error {
	a, ok := r.actors[id]
	if !ok {
		return domain.ErrActorNotFound
	}
	now := time.Now().UTC()
	a.DeletedAt = &now
	a.Enabled = false
	a.RefreshTokenHash = ""
	return nil
}

func (r *stubActorRepo) UpdateRefreshTokenHash(_ context.Context, id, hash string) error {
	a, ok := r.actors[id]
	if !ok {
		return domain.ErrActorNotFound
	}
	a.RefreshTokenHash = hash
	return nil
}

func (r *stubActorRepo) List(_ context.Context) ([]domain.Actor, error) {
	var out []domain.Actor
	for _, a := range r.actors {
		if a.DeletedAt == nil {
			out = append(out, *a)
		}
	}
	return out, nil
}

func newTestAuthService() (*AuthService, ports.ActorRepositories) {
	repos := ports.ActorRepositories{
		Admins:     newStubActorRepo(domain.ActorTypeAdmin),
		Users:      newStubActorRepo(domain.ActorTypeUser),
		Operatives: newStubActorRepo(domain.ActorTypeOperative),
	}
	hasher := NewBcryptHasher(bcrypt.MinCost)
	issuer := NewTokenService("secret", time.Hour, time.Hour)
	return NewAuthService(repos, hasher, issuer, zerolog.Nop()), repos
}

func registerTestUser(t *testing.T, svc *AuthService) *ports.AuthResult {
	t.Helper()
	result, err := svc.RegisterUser(context.Background(), ports.RegisterUserInput{
		FullName: "Alice Example",
		Email:    "alice@example.com",
		Username: "alice",
		Password: "pass12345",
		Language: "en",
	})
	if err != nil {
		t.Fatalf("RegisterUser returned error: %v", err)
	}
	return result
}

func TestAuthService_RegisterUser_OpensSession(t *testing.T) {
	svc, repos := newTestAuthService()

	result := registerTestUser(t, svc)
	if result.Actor.Type != domain.ActorTypeUser {
		t.Fatalf("unexpected actor type: %s", result.Actor.Type)
	}
	if result.Tokens.AccessToken == "" || result.Tokens.RefreshToken == "" {
		t.Fatalf("expected a full token pair")
	}

	stored, err := repos.Users.FindByID(context.Background(), result.Actor.ID)
	if err != nil {
		t.Fatalf("find created user: %v", err)
	}
	if stored.RefreshTokenHash != RefreshTokenDigest(result.Tokens.RefreshToken) {
		t.Fatalf("expected refresh digest persisted on registration")
	}
	if stored.PasswordHash == "pass12345" {
		t.Fatalf("expected password to be hashed")
	}
}

func TestAuthService_RegisterUser_Duplicate(t *testing.T) {
	svc, _ := newTestAuthService()
	registerTestUser(t, svc)

	_, err := svc.RegisterUser(context.Background(), ports.RegisterUserInput{
		FullName: "Other Alice",
		Email:    "alice@example.com",
		Username: "alice2",
		Password: "pass12345",
	})
	if err != domain.ErrActorExists {
		t.Fatalf("expected ErrActorExists, got %v", err)
	}
}

// raceStubRepo plays the losing side of a concurrent registration: the
// advisory existence checks see nothing, then the unique index rejects the
// insert.
type raceStubRepo struct {
	*stubActorRepo
}

func (r *raceStubRepo) ExistsByEmail(context.Context, string) (bool, error) {
	return false, nil
}

func (r *raceStubRepo) ExistsByUsername(context.Context, string) (bool, error) {
	return false, nil
}

func (r *raceStubRepo) Create(context.Context, *domain.Actor) (*domain.Actor, error) {
	return nil, domain.ErrActorExists
}

func TestAuthService_RegisterUser_WriteTimeConflict(t *testing.T) {
	repos := ports.ActorRepositories{
		Admins:     newStubActorRepo(domain.ActorTypeAdmin),
		Users:      &raceStubRepo{newStubActorRepo(domain.ActorTypeUser)},
		Operatives: newStubActorRepo(domain.ActorTypeOperative),
	}
	svc := NewAuthService(repos, NewBcryptHasher(bcrypt.MinCost), NewTokenService("secret", time.Hour, time.Hour), zerolog.Nop())

	// Two concurrent registrations can both pass the advisory checks; the
	// loser's insert must surface as the same conflict.
	_, err := svc.RegisterUser(context.Background(), ports.RegisterUserInput{
		FullName: "Other Alice",
		Email:    "alice@example.com",
		Username: "alice2",
		Password: "pass12345",
	})
	if err != domain.ErrActorExists {
		t.Fatalf("expected ErrActorExists from the write-time constraint, got %v", err)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	svc, _ := newTestAuthService()
	registerTestUser(t, svc)

	result, err := svc.Login(context.Background(), ports.LoginInput{
		Email:     "alice@example.com",
		Password:  "pass12345",
		ActorType: domain.ActorTypeUser,
	})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	issuer := NewTokenService("secret", time.Hour, time.Hour)
	claims, err := issuer.VerifyAccess(result.Tokens.AccessToken)
	if err != nil {
		t.Fatalf("access token invalid: %v", err)
	}
	if claims.Subject != result.Actor.ID || claims.Type != domain.ActorTypeUser {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestAuthService_Login_GenericFailure(t *testing.T) {
	svc, repos := newTestAuthService()
	result := registerTestUser(t, svc)

	cases := []struct {
		name string
		prep func()
		in   ports.LoginInput
	}{
		{
			name: "unknown email",
			in:   ports.LoginInput{Email: "ghost@example.com", Password: "pass12345", ActorType: domain.ActorTypeUser},
		},
		{
			name: "wrong password",
			in:   ports.LoginInput{Email: "alice@example.com", Password: "badpass", ActorType: domain.ActorTypeUser},
		},
		{
			name: "wrong actor type",
			in:   ports.LoginInput{Email: "alice@example.com", Password: "pass12345", ActorType: domain.ActorTypeAdmin},
		},
		{
			name: "disabled actor",
			prep: func() {
				_, _ = repos.Users.SetEnabled(context.Background(), result.Actor.ID, false)
			},
			in: ports.LoginInput{Email: "alice@example.com", Password: "pass12345", ActorType: domain.ActorTypeUser},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.prep != nil {
				tc.prep()
			}
			if _, err := svc.Login(context.Background(), tc.in); err != domain.ErrInvalidCredentials {
				t.Fatalf("expected ErrInvalidCredentials, got %v", err)
			}
		})
	}
}

func TestAuthService_Refresh_RotatesSingleUse(t *testing.T) {
	svc, _ := newTestAuthService()
	first := registerTestUser(t, svc)

	second, err := svc.Refresh(context.Background(), first.Tokens.RefreshToken)
	if err != nil {
		t.Fatalf("first rotation failed: %v", err)
	}
	if second.Tokens.RefreshToken == first.Tokens.RefreshToken {
		t.Fatalf("expected a fresh refresh token after rotation")
	}

	// The superseded token must now fail the stored-hash comparison.
	if _, err := svc.Refresh(context.Background(), first.Tokens.RefreshToken); err != domain.ErrUnauthorized {
		t.Fatalf("expected ErrUnauthorized on replay, got %v", err)
	}

	// The new token still rotates.
	if _, err := svc.Refresh(context.Background(), second.Tokens.RefreshToken); err != nil {
		t.Fatalf("rotation of the fresh token failed: %v", err)
	}
}

func TestAuthService_Refresh_GarbageToken(t *testing.T) {
	svc, _ := newTestAuthService()

	if _, err := svc.Refresh(context.Background(), "not-a-token"); err != domain.ErrUnauthorized {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestAuthService_Refresh_AccessTokenRejected(t *testing.T) {
	svc, _ := newTestAuthService()
	result := registerTestUser(t, svc)

	if _, err := svc.Refresh(context.Background(), result.Tokens.AccessToken); err != domain.ErrUnauthorized {
		t.Fatalf("expected ErrUnauthorized for an access token, got %v", err)
	}
}

func TestAuthService_Refresh_DeadAfterDisable(t *testing.T) {
	svc, repos := newTestAuthService()
	result := registerTestUser(t, svc)

	if _, err := repos.Users.SetEnabled(context.Background(), result.Actor.ID, false); err != nil {
		t.Fatalf("disable failed: %v", err)
	}

	// Disabling cleared the stored hash in the same write: the last-issued
	// refresh token is dead immediately.
	if _, err := svc.Refresh(context.Background(), result.Tokens.RefreshToken); err != domain.ErrUnauthorized {
		t.Fatalf("expected ErrUnauthorized after disable, got %v", err)
	}

	stored, _ := repos.Users.FindByID(context.Background(), result.Actor.ID)
	if stored.RefreshTokenHash != "" {
		t.Fatalf("expected refresh hash cleared on disable")
	}
}

func TestAuthService_Refresh_DeadAfterSoftDelete(t *testing.T) {
	svc, repos := newTestAuthService()
	result := registerTestUser(t, svc)

	if err := repos.Users.SoftDelete(context.Background(), result.Actor.ID); err != nil {
		t.Fatalf("soft delete failed: %v", err)
	}
	if _, err := svc.Refresh(context.Background(), result.Tokens.RefreshToken); err != domain.ErrUnauthorized {
		t.Fatalf("expected ErrUnauthorized after soft delete, got %v", err)
	}
}

func TestAuthService_Logout_ClearsSession(t *testing.T) {
	svc, repos := newTestAuthService()
	result := registerTestUser(t, svc)

	if err := svc.Logout(context.Background(), domain.ActorTypeUser, result.Actor.ID); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}

	stored, _ := repos.Users.FindByID(context.Background(), result.Actor.ID)
	if stored.RefreshTokenHash != "" {
		t.Fatalf("expected refresh hash cleared on logout")
	}
	if _, err := svc.Refresh(context.Background(), result.Tokens.RefreshToken); err != domain.ErrUnauthorized {
		t.Fatalf("expected ErrUnauthorized after logout, got %v", err)
	}
}

func TestAuthService_CreateOperativeUser(t *testing.T) {
	svc, repos := newTestAuthService()

	created, err := svc.CreateOperativeUser(context.Background(), ports.CreateOperativeInput{
		FullName:    "Olga Operative",
		Email:       "olga@example.com",
		Username:    "olga",
		Password:    "pass12345",
		CreatedByID: "ADMIN-1",
	})
	if err != nil {
		t.Fatalf("CreateOperativeUser returned error: %v", err)
	}
	if created.Type != domain.ActorTypeOperative {
		t.Fatalf("unexpected actor type: %s", created.Type)
	}

	stored, err := repos.Operatives.FindByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("find created operative: %v", err)
	}
	if stored.CreatedByID != "ADMIN-1" {
		t.Fatalf("expected createdById recorded, got %q", stored.CreatedByID)
	}
	if stored.RefreshTokenHash != "" {
		t.Fatalf("provisioning must not open a session")
	}
}

func TestAuthService_RegisterAdmin_ModulesStored(t *testing.T) {
	svc, repos := newTestAuthService()

	result, err := svc.RegisterAdmin(context.Background(), ports.RegisterAdminInput{
		FullName: "Ada Admin",
		Email:    "ada@example.com",
		Username: "ada",
		Password: "pass12345",
		Modules: map[string]domain.ModulePermissions{
			"users": {Read: true, Write: true},
		},
	})
	if err != nil {
		t.Fatalf("RegisterAdmin returned error: %v", err)
	}

	stored, _ := repos.Admins.FindByID(context.Background(), result.Actor.ID)
	if !stored.Modules["users"].Write {
		t.Fatalf("expected module grants persisted")
	}
}
