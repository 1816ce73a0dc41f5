// Copyright 2025 Veyra Protocol
package resolver

import (
	"testing"
	"time"
)

func TestPolicy_PrefixMatch(t *testing.T) {
	now := time.Now().UTC()
	p := Policy{ID: "p1", Principal: "did:web:carrier", Resource: "JP-13-*", Action: ActionResolve}

	if !p.Permits("did:web:carrier", "JP-13-113-01", ActionResolve, now) {
		t.Error("expected prefix match to permit")
	}
	if p.Permits("did:web:carrier", "US-CA-SF-01", ActionResolve, now) {
		t.Error("expected non-matching prefix to deny")
	}
}

func TestPolicy_WrongPrincipalDenied(t *testing.T) {
	now := time.Now().UTC()
	p := Policy{ID: "p1", Principal: "did:web:carrier", Resource: "JP-13-*", Action: ActionResolve}
	if p.Permits("did:web:other", "JP-13-113-01", ActionResolve, now) {
		t.Error("expected wrong principal to deny")
	}
}

func TestPolicy_Expired(t *testing.T) {
	now := time.Now().UTC()
	past := now.Add(-time.Hour)
	p := Policy{ID: "p1", Principal: "*", Resource: "JP-*", Action: ActionResolve, ExpiresAt: &past}
	if p.Permits("did:web:carrier", "JP-13-113-01", ActionResolve, now) {
		t.Error("expected expired policy to deny")
	}
}

func TestFindPermitting_NoneMatch(t *testing.T) {
	now := time.Now().UTC()
	policies := []Policy{{ID: "p1", Principal: "did:web:carrier", Resource: "JP-13-*", Action: ActionResolve}}
	if _, err := FindPermitting(policies, "did:web:other", "JP-13-113-01", ActionResolve, now); err == nil {
		t.Error("expected no permitting policy to error")
	}
}
