package auth

import (
	"testing"
	"time"

	"github.com/openfleet/fleettenant/pkg/domain"
)

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer(TokenConfig{
		Secret: []byte("test-signing-secret"),
		Issuer: "fleettenant-test",
		TTL:    time.Hour,
	})

	session := &domain.Session{
		PrincipalID: "OWN-ACM-001",
		Role:        domain.RoleOwner,
		TenantID:    "C1A2B3C4",
	}

	token, err := issuer.Issue(session)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	claims, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if claims.Subject != "OWN-ACM-001" {
		t.Errorf("Subject = %q, want OWN-ACM-001", claims.Subject)
	}
	if claims.TenantID != "C1A2B3C4" {
		t.Errorf("TenantID = %q, want C1A2B3C4", claims.TenantID)
	}
	if claims.Role != "owner" {
		t.Errorf("Role = %q, want owner", claims.Role)
	}
	if claims.Issuer != "fleettenant-test" {
		t.Errorf("Issuer = %q, want fleettenant-test", claims.Issuer)
	}
}

func TestTokenIssuer_WrongSecret(t *testing.T) {
	issuer := NewTokenIssuer(TokenConfig{Secret: []byte("signing-secret")})
	other := NewTokenIssuer(TokenConfig{Secret: []byte("different-secret")})

	token, err := issuer.Issue(&domain.Session{PrincipalID: "OWN-ACM-001", Role: domain.RoleOwner, TenantID: "C1A2B3C4"})
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := other.Verify(token); err == nil {
		t.Error("Verify with a different secret succeeded, want error")
	}
}

func TestTokenIssuer_Tampered(t *testing.T) {
	issuer := NewTokenIssuer(TokenConfig{Secret: []byte("signing-secret")})

	token, err := issuer.Issue(&domain.Session{PrincipalID: "OWN-ACM-001", Role: domain.RoleOwner, TenantID: "C1A2B3C4"})
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	tampered := token[:len(token)-2] + "xx"
	if _, err := issuer.Verify(tampered); err == nil {
		t.Error("Verify of tampered token succeeded, want error")
	}
}

func TestTokenIssuer_DefaultTTL(t *testing.T) {
	issuer := NewTokenIssuer(TokenConfig{Secret: []byte("signing-secret")})
	if issuer.TTL() != DefaultTokenTTL {
		t.Errorf("TTL = %v, want %v", issuer.TTL(), DefaultTokenTTL)
	}
}
