// Copyright 2025 Veyra Protocol
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/veyra-network/vey-core/pkg/resolver"
)

func TestLoadPolicies(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policies.yaml")
	content := []byte(`
policies:
  - id: p1
    principal: "did:web:carrier"
    resource: "JP-13-*"
    action: resolve
  - id: p2
    principal: "*"
    resource: "JP-13-113-01"
    action: read
    expiresAt: "2030-01-01T00:00:00Z"
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	policies, err := LoadPolicies(path)
	if err != nil {
		t.Fatalf("load policies: %v", err)
	}
	if len(policies) != 2 {
		t.Fatalf("expected 2 policies, got %d", len(policies))
	}
	if policies[0].Action != resolver.ActionResolve {
		t.Errorf("expected first policy action resolve, got %s", policies[0].Action)
	}
	if policies[1].ExpiresAt == nil {
		t.Error("expected second policy to carry an expiry")
	}
}

func TestLoadPolicies_MissingFile(t *testing.T) {
	if _, err := LoadPolicies("/nonexistent/policies.yaml"); err == nil {
		t.Error("expected an error for a missing file")
	}
}
