package share

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func fixedIssuer(at time.Time) Issuer {
	return Issuer{Secret: "s3cret", TTL: time.Hour, Now: func() time.Time { return at }}
}

func TestIssueVerify(t *testing.T) {
	now := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	iss := fixedIssuer(now)
	tok, exp, err := iss.Issue("1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !exp.Equal(now.Add(time.Hour)) {
		t.Fatalf("expiry %s", exp)
	}
	claims, err := iss.Verify(tok, "1")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Subject != "1" || claims.Scope != "plan:read" {
		t.Fatalf("claims %+v", claims)
	}
}

func TestVerifyRejects(t *testing.T) {
	now := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	tok, _, err := fixedIssuer(now).Issue("1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := fixedIssuer(now).Verify(tok, "2"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("wrong plan should be rejected: %v", err)
	}
	if _, err := fixedIssuer(now.Add(2*time.Hour)).Verify(tok, "1"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired token should be rejected: %v", err)
	}
	other := Issuer{Secret: "other", Now: func() time.Time { return now }}
	if _, err := other.Verify(tok, "1"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("wrong secret should be rejected: %v", err)
	}
	if _, _, err := (Issuer{}).Issue("1"); !errors.Is(err, ErrNoSecret) {
		t.Fatalf("missing secret: %v", err)
	}
}

func TestLink(t *testing.T) {
	got := Link("http://localhost:8080/v0/", "plan 1", "a.b.c")
	if !strings.HasPrefix(got, "http://localhost:8080/v0/external/plan%201?token=") {
		t.Fatalf("link %s", got)
	}
}
