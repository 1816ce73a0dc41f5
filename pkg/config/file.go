// Copyright 2025 Veyra Protocol
//
// File-based policy loading, using gopkg.in/yaml.v3 (SPEC_FULL.md
// DOMAIN STACK: "optional YAML policy-file loader for access-control
// policies").
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/veyra-network/vey-core/pkg/resolver"
)

// policyFile is the on-disk YAML shape: a flat list of policies plus an
// RFC3339 expiresAt string (YAML has no native time type).
type policyFile struct {
	Policies []policyEntry `yaml:"policies"`
}

type policyEntry struct {
	ID        string  `yaml:"id"`
	Principal string  `yaml:"principal"`
	Resource  string  `yaml:"resource"`
	Action    string  `yaml:"action"`
	ExpiresAt *string `yaml:"expiresAt,omitempty"`
}

// LoadPolicies reads a YAML policy file at path (spec §6 Policy). A
// missing expiresAt means the policy never expires.
func LoadPolicies(path string) ([]resolver.Policy, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read policy file: %w", err)
	}

	var doc policyFile
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("config: parse policy file: %w", err)
	}

	policies := make([]resolver.Policy, 0, len(doc.Policies))
	for _, e := range doc.Policies {
		p := resolver.Policy{ID: e.ID, Principal: e.Principal, Resource: e.Resource, Action: resolver.Action(e.Action)}
		if e.ExpiresAt != nil {
			t, err := time.Parse(time.RFC3339, *e.ExpiresAt)
			if err != nil {
				return nil, fmt.Errorf("config: policy %s has invalid expiresAt: %w", e.ID, err)
			}
			p.ExpiresAt = &t
		}
		policies = append(policies, p)
	}
	return policies, nil
}
