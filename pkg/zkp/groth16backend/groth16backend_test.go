// Copyright 2025 Veyra Protocol
package groth16backend

import (
	"testing"

	"github.com/veyra-network/vey-core/pkg/grammar"
	"github.com/veyra-network/vey-core/pkg/zkp"
	"github.com/veyra-network/vey-core/pkg/zkp/address"
)

func jpGrammar() grammar.Grammar {
	t := grammar.NewReferenceTable()
	g, _ := t.Grammar("JP")
	return g
}

func TestStructure_GenerateVerify_RealCircuit(t *testing.T) {
	g := jpGrammar()
	backend := New()

	proof, err := address.GenerateStructure(backend, g, "JP-13-113-01")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if proof.Circuit.Backend != "groth16" {
		t.Fatalf("expected groth16 circuit, got %s", proof.Circuit.Backend)
	}
	if err := address.VerifyStructure(backend, proof, g); err != nil {
		t.Fatalf("verify: %v", err)
	}
}

func TestStructure_WrongCircuitIDRejected(t *testing.T) {
	backend := New()
	if _, err := backend.Prove(zkp.TestCircuit.ID, []byte(`{"depth":1,"rulesHash":"00"}`), []byte(`{"segments":["JP"]}`)); err == nil {
		t.Fatal("expected error for mismatched circuit ID")
	}
}
