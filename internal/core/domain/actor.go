package domain

import "time"

// ActorType discriminates the three authenticatable identity kinds.
type ActorType string

const (
	ActorTypeAdmin     ActorType = "ADMIN"
	ActorTypeUser      ActorType = "USER"
	ActorTypeOperative ActorType = "OPERATIVE"
)

// Valid reports whether t is one of the known actor types.
func (t ActorType) Valid() bool {
	switch t {
	case ActorTypeAdmin, ActorTypeUser, ActorTypeOperative:
		return true
	}
	return false
}

// ModulePermissions is one entry of an administrator's per-module grant map.
type ModulePermissions struct {
	Read   bool `json:"read" bson:"read"`
	Write  bool `json:"write" bson:"write"`
	Delete bool `json:"delete" bson:"delete"`
}

// Actor models an authenticatable identity. The three variants share this
// shape; Type is the discriminator and the variant-specific fields are zero
// for the other kinds (Language for users, CreatedByID for operative users,
// Modules and RecoverPasswordID for administrators).
type Actor struct {
	ID           string    `json:"id"`
	Type         ActorType `json:"type"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Enabled      bool      `json:"enabled"`

	// RefreshTokenHash holds the digest of the single live refresh token.
	// Empty means the actor has no active session.
	RefreshTokenHash string `json:"-"`

	Language          string                       `json:"language,omitempty"`
	CreatedByID       string                       `json:"created_by_id,omitempty"`
	Modules           map[string]ModulePermissions `json:"modules,omitempty"`
	RecoverPasswordID string                       `json:"-"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// IsDeleted reports whether the actor has been soft-deleted.
func (a *Actor) IsDeleted() bool {
	return a.DeletedAt != nil
}

// IsLive reports whether the actor may authenticate: enabled and not
// soft-deleted. Token signature validity alone never implies this.
func (a *Actor) IsLive() bool {
	return a.Enabled && !a.IsDeleted()
}

// Summary returns the public view of the actor exposed to callers.
func (a *Actor) Summary() ActorSummary {
	return ActorSummary{
		ID:       a.ID,
		FullName: a.FullName,
		Email:    a.Email,
		Username: a.Username,
		Type:     a.Type,
	}
}

// ActorSummary is the public actor shape returned by auth responses.
type ActorSummary struct {
	ID       string    `json:"id"`
	FullName string    `json:"full_name"`
	Email    string    `json:"email"`
	Username string    `json:"username"`
	Type     ActorType `json:"type"`
}

// AuthenticatedActor is the identity the authentication guard injects into
// the request context after the token and the live re-fetch both pass.
// Modules is populated for administrators only.
type AuthenticatedActor struct {
	ID       string
	FullName string
	Email    string
	Username string
	Type     ActorType
	Modules  map[string]ModulePermissions
}

// HasModulePermission reports whether an administrator holds the given
// action on the given module. Non-admins and absent grants fail closed.
func (a AuthenticatedActor) HasModulePermission(module, action string) bool {
	if a.Type != ActorTypeAdmin {
		return false
	}
	perms, ok := a.Modules[module]
	if !ok {
		return false
	}
	switch action {
	case "read":
		return perms.Read
	case "write":
		return perms.Write
	case "delete":
		return perms.Delete
	}
	return false
}
