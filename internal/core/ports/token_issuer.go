package ports

import "github.com/cervak/pricesurvey-api/internal/core/domain"

// TokenIssuer mints and verifies the signed access/refresh token pair.
type TokenIssuer interface {
	// Issue mints a pair from the actor's claims. The refresh token gets a
	// fresh per-issuance token id on every call.
	Issue(actor domain.ActorSummary) (domain.TokenPair, error)
	// VerifyAccess checks signature and expiry of an access token. It does
	// not consult any store; the guard's actor re-fetch is a separate,
	// mandatory check.
	VerifyAccess(token string) (*domain.Claims, error)
	// VerifyRefresh checks signature and expiry of a refresh token and
	// requires the per-issuance token id to be present.
	VerifyRefresh(token string) (*domain.Claims, error)
	// Decode inspects a token without verification. Diagnostics only,
	// never an authorization input.
	Decode(token string) *domain.Claims
}
