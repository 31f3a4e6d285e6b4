package service

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/cervak/pricesurvey-api/internal/core/domain"
)

const (
	defaultAccessTTL  = time.Hour
	defaultRefreshTTL = 7 * 24 * time.Hour
)

// tokenClaims is the wire shape of both tokens: {sub, email, username,
// type, iat, exp}, plus tokenId on refresh tokens only.
type tokenClaims struct {
	Email    string           `json:"email"`
	Username string           `json:"username"`
	Type     domain.ActorType `json:"type"`
	TokenID  string           `json:"tokenId,omitempty"`
	jwt.RegisteredClaims
}

// TokenService mints and verifies HS256-signed access/refresh token pairs.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenService creates a TokenService. Non-positive lifetimes fall back
// to the defaults (1h access, 7d refresh).
func NewTokenService(secret string, accessTTL, refreshTTL time.Duration) *TokenService {
	if accessTTL <= 0 {
		accessTTL = defaultAccessTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = defaultRefreshTTL
	}
	return &TokenService{secret: []byte(secret), accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// Issue mints an access/refresh pair for the actor. The refresh token
// carries a fresh tokenId on every call so each issuance is distinguishable.
func (s *TokenService) Issue(actor domain.ActorSummary) (domain.TokenPair, error) {
	now := time.Now().UTC()

	access, err := s.sign(tokenClaims{
		Email:    actor.Email,
		Username: actor.Username,
		Type:     actor.Type,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	})
	if err != nil {
		return domain.TokenPair{}, err
	}

	refresh, err := s.sign(tokenClaims{
		Email:    actor.Email,
		Username: actor.Username,
		Type:     actor.Type,
		TokenID:  uuid.NewString(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.refreshTTL)),
		},
	})
	if err != nil {
		return domain.TokenPair{}, err
	}

	return domain.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// VerifyAccess checks signature and expiry of an access token. A refresh
// token (one carrying a tokenId) is rejected here; the two are not
// interchangeable.
func (s *TokenService) VerifyAccess(token string) (*domain.Claims, error) {
	claims, err := s.verify(token)
	if err != nil {
		return nil, err
	}
	if claims.TokenID != "" {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}

// VerifyRefresh checks signature and expiry of a refresh token and requires
// the per-issuance tokenId.
func (s *TokenService) VerifyRefresh(token string) (*domain.Claims, error) {
	claims, err := s.verify(token)
	if err != nil {
		return nil, err
	}
	if claims.TokenID == "" {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}

// Decode inspects a token without checking its signature or expiry.
// Diagnostics only; never an authorization input.
func (s *TokenService) Decode(token string) *domain.Claims {
	var tc tokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &tc); err != nil {
		return nil
	}
	return toDomainClaims(&tc)
}

func (s *TokenService) sign(tc tokenClaims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, tc).SignedString(s.secret)
}

func (s *TokenService) verify(token string) (*domain.Claims, error) {
	var tc tokenClaims
	parsed, err := jwt.ParseWithClaims(token, &tc, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, errors.Join(domain.ErrUnauthorized, err)
	}
	if !tc.Type.Valid() {
		return nil, domain.ErrUnauthorized
	}
	return toDomainClaims(&tc), nil
}

func toDomainClaims(tc *tokenClaims) *domain.Claims {
	c := &domain.Claims{
		Subject:  tc.Subject,
		Email:    tc.Email,
		Username: tc.Username,
		Type:     tc.Type,
		TokenID:  tc.TokenID,
	}
	if tc.IssuedAt != nil {
		c.IssuedAt = tc.IssuedAt.Time
	}
	if tc.ExpiresAt != nil {
		c.ExpiresAt = tc.ExpiresAt.Time
	}
	return c
}

// RefreshTokenDigest is the digest persisted in the actor's single session
// slot. SHA-256 is used rather than bcrypt: the signed token exceeds
// bcrypt's 72-byte input limit, and the token itself already carries the
// entropy a salt would add.
func RefreshTokenDigest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
