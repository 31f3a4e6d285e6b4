package domain

import "time"

// TokenPair bundles the credentials issued together at login, registration,
// or rotation. Both are opaque signed strings to callers.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Claims is the decoded payload of an issued token. TokenID is set on
// refresh tokens only; it makes each issuance distinguishable for rotation.
type Claims struct {
	Subject   string
	Email     string
	Username  string
	Type      ActorType
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
