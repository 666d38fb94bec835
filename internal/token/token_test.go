package token

import (
	"testing"
	"time"

	"github.com/ovaphlow/pitchfork/dashboard-core-go/internal/rbac"
)

func TestGenerateParseRoundTrip(t *testing.T) {
	m := NewManager("test-secret", "dashboard-core", time.Hour)

	signed, err := m.Generate("user-1", "admin", rbac.RoleAdministrator)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	claims, err := m.Parse(signed)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.UserID != "user-1" || claims.Username != "admin" {
		t.Fatalf("claims = %+v", claims)
	}
	if claims.Role != rbac.RoleAdministrator {
		t.Fatalf("role = %q", claims.Role)
	}
	if claims.Issuer != "dashboard-core" {
		t.Fatalf("issuer = %q", claims.Issuer)
	}
	if !claims.ExpiresAt.After(time.Now()) {
		t.Fatal("token must expire in the future")
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	signed, err := NewManager("secret-a", "dashboard-core", time.Hour).
		Generate("user-1", "admin", rbac.RoleAdministrator)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, err := NewManager("secret-b", "dashboard-core", time.Hour).Parse(signed); err == nil {
		t.Fatal("token signed with another secret must not parse")
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	m := NewManager("test-secret", "dashboard-core", time.Hour)
	m.ttl = -time.Minute

	signed, err := m.Generate("user-1", "admin", rbac.RoleAdministrator)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, err := m.Parse(signed); err == nil {
		t.Fatal("expired token must not parse")
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	m := NewManager("test-secret", "dashboard-core", time.Hour)
	if _, err := m.Parse("not-a-jwt"); err == nil {
		t.Fatal("garbage must not parse")
	}
}
