package service

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/cervak/pricesurvey-api/internal/core/domain"
)

var testActor = domain.ActorSummary{
	ID:       "actor-1",
	FullName: "Alice Example",
	Email:    "alice@example.com",
	Username: "alice",
	Type:     domain.ActorTypeUser,
}

func TestTokenService_IssueAndVerify(t *testing.T) {
	svc := NewTokenService("secret", time.Hour, 7*24*time.Hour)

	pair, err := svc.Issue(testActor)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if strings.Count(pair.AccessToken, ".") != 2 || strings.Count(pair.RefreshToken, ".") != 2 {
		t.Fatalf("expected three dot-separated segments per token")
	}

	claims, err := svc.VerifyAccess(pair.AccessToken)
	if err != nil {
		t.Fatalf("VerifyAccess returned error: %v", err)
	}
	if claims.Subject != "actor-1" || claims.Type != domain.ActorTypeUser {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.TokenID != "" {
		t.Fatalf("access token must not carry a tokenId")
	}

	refreshClaims, err := svc.VerifyRefresh(pair.RefreshToken)
	if err != nil {
		t.Fatalf("VerifyRefresh returned error: %v", err)
	}
	if refreshClaims.TokenID == "" {
		t.Fatalf("refresh token must carry a tokenId")
	}
}

func TestTokenService_TokensNotInterchangeable(t *testing.T) {
	svc := NewTokenService("secret", time.Hour, time.Hour)

	pair, _ := svc.Issue(testActor)

	if _, err := svc.VerifyRefresh(pair.AccessToken); err == nil {
		t.Fatalf("access token must not verify as refresh token")
	}
	if _, err := svc.VerifyAccess(pair.RefreshToken); err == nil {
		t.Fatalf("refresh token must not verify as access token")
	}
}

func TestTokenService_FreshTokenIDPerIssuance(t *testing.T) {
	svc := NewTokenService("secret", time.Hour, time.Hour)

	first, _ := svc.Issue(testActor)
	second, _ := svc.Issue(testActor)

	c1, _ := svc.VerifyRefresh(first.RefreshToken)
	c2, _ := svc.VerifyRefresh(second.RefreshToken)
	if c1.TokenID == c2.TokenID {
		t.Fatalf("expected distinct tokenIds per issuance")
	}
}

func TestTokenService_TamperedSignature(t *testing.T) {
	svc := NewTokenService("secret", time.Hour, time.Hour)

	pair, _ := svc.Issue(testActor)
	if _, err := svc.VerifyAccess(pair.AccessToken + "x"); err == nil {
		t.Fatalf("tampered token must not verify")
	}

	other := NewTokenService("other-secret", time.Hour, time.Hour)
	if _, err := other.VerifyAccess(pair.AccessToken); err == nil {
		t.Fatalf("token signed with a different secret must not verify")
	}
}

func TestTokenService_ExpiredToken(t *testing.T) {
	svc := NewTokenService("secret", time.Hour, time.Hour)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      "actor-1",
		"email":    "alice@example.com",
		"username": "alice",
		"type":     string(domain.ActorTypeUser),
		"iat":      time.Now().Add(-2 * time.Hour).Unix(),
		"exp":      time.Now().Add(-time.Hour).Unix(),
	})
	signed, err := expired.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	if _, err := svc.VerifyAccess(signed); err == nil {
		t.Fatalf("expired token must not verify")
	}
}

func TestTokenService_UnknownActorType(t *testing.T) {
	svc := NewTokenService("secret", time.Hour, time.Hour)

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "actor-1",
		"type": "SUPERUSER",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, _ := tok.SignedString([]byte("secret"))

	if _, err := svc.VerifyAccess(signed); err == nil {
		t.Fatalf("unknown actor type must not verify")
	}
}

func TestTokenService_Decode(t *testing.T) {
	svc := NewTokenService("secret", time.Hour, time.Hour)

	pair, _ := svc.Issue(testActor)
	claims := svc.Decode(pair.RefreshToken)
	if claims == nil || claims.Subject != "actor-1" || claims.TokenID == "" {
		t.Fatalf("unexpected decoded claims: %+v", claims)
	}

	if svc.Decode("garbage") != nil {
		t.Fatalf("expected nil for a malformed token")
	}
}

func TestRefreshTokenDigest(t *testing.T) {
	a := RefreshTokenDigest("token-a")
	b := RefreshTokenDigest("token-b")
	if a == b {
		t.Fatalf("expected distinct digests for distinct tokens")
	}
	if a != RefreshTokenDigest("token-a") {
		t.Fatalf("expected deterministic digest")
	}
	if len(a) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(a))
	}
}
