// Copyright 2025 Veyra Protocol
package resolver

import (
	"testing"
	"time"

	"github.com/veyra-network/vey-core/pkg/grammar"
	"github.com/veyra-network/vey-core/pkg/merkle"
	"github.com/veyra-network/vey-core/pkg/pid"
	"github.com/veyra-network/vey-core/pkg/vyerr"
	"github.com/veyra-network/vey-core/pkg/zkp"
)

func jpGrammar(t *testing.T) grammar.Grammar {
	t.Helper()
	tbl := grammar.NewReferenceTable()
	g, err := tbl.Grammar("JP")
	if err != nil {
		t.Fatalf("grammar: %v", err)
	}
	return g
}

func buildTree(t *testing.T, pids []pid.PID) *merkle.Tree {
	t.Helper()
	leaves := make([][]byte, len(pids))
	for i, p := range pids {
		leaves[i] = merkle.LeafHash([]byte(p))
	}
	tree, err := merkle.Build(leaves)
	if err != nil {
		t.Fatalf("build tree: %v", err)
	}
	return tree
}

func TestValidateShipping_Success(t *testing.T) {
	backend := zkp.NewTestBackend()
	g := jpGrammar(t)
	target := pid.PID("JP-13-113-01")
	tree := buildTree(t, []pid.PID{target, "JP-13-113-02"})
	now := time.Now().UTC()

	req := ShippingRequest{
		PID:         target,
		RequesterID: "did:web:shipper",
		Conditions:  Conditions{AllowedCountries: []string{"JP"}},
		Metadata:    ShipmentMetadata{Weight: 1.2},
		Timestamp:   now,
	}
	addressData := map[string]string{"country": "JP", "admin1": "13"}

	result, err := ValidateShipping(backend, tree, g, req, addressData, now, 0)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !result.Valid {
		t.Fatalf("expected valid result, got error %q", result.Error)
	}
	if result.PIDToken == "" {
		t.Fatal("expected a pidToken")
	}
	composite, err := result.PIDToken.Decode()
	if err != nil {
		t.Fatalf("decode token: %v", err)
	}
	if composite.Nonce == "" {
		t.Error("expected a nonce bound to the composite proof")
	}
}

func TestValidateShipping_ConditionDenied(t *testing.T) {
	backend := zkp.NewTestBackend()
	g := jpGrammar(t)
	target := pid.PID("JP-13-113-01")
	tree := buildTree(t, []pid.PID{target})
	now := time.Now().UTC()

	req := ShippingRequest{
		PID:         target,
		RequesterID: "did:web:shipper",
		Conditions:  Conditions{AllowedCountries: []string{"US"}},
		Timestamp:   now,
	}
	addressData := map[string]string{"country": "JP"}

	result, err := ValidateShipping(backend, tree, g, req, addressData, now, 0)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if result.Valid {
		t.Fatal("expected denial for disallowed country")
	}
}

func TestValidateShipping_StaleRequest(t *testing.T) {
	backend := zkp.NewTestBackend()
	g := jpGrammar(t)
	target := pid.PID("JP-13-113-01")
	tree := buildTree(t, []pid.PID{target})
	now := time.Now().UTC()

	req := ShippingRequest{
		PID:         target,
		RequesterID: "did:web:shipper",
		Timestamp:   now.Add(-10 * time.Minute),
	}

	result, err := ValidateShipping(backend, tree, g, req, map[string]string{"country": "JP"}, now, 5*time.Minute)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if result.Valid || result.Error != vyerr.ErrStaleRequest.Error() {
		t.Fatalf("expected stale request denial, got %+v", result)
	}
}
