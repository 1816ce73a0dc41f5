// Copyright 2025 Veyra Protocol

package zkp

import (
	"errors"
	"testing"

	"github.com/veyra-network/vey-core/pkg/vyerr"
)

func TestTestBackend_ProveVerifyArtifact(t *testing.T) {
	b := NewTestBackend()
	pub := []byte(`{"root":"abc"}`)
	witness := []byte("secret-witness")

	artifact, err := b.Prove(TestCircuit.ID, pub, witness)
	if err != nil {
		t.Fatalf("prove: %v", err)
	}
	ok, err := b.Verify(TestCircuit.ID, pub, artifact)
	if err != nil || !ok {
		t.Fatalf("verify: ok=%v err=%v", ok, err)
	}
	if !b.VerifyArtifact(TestCircuit.ID, pub, witness, artifact) {
		t.Error("expected VerifyArtifact to accept matching witness")
	}
	if b.VerifyArtifact(TestCircuit.ID, pub, []byte("wrong-witness"), artifact) {
		t.Error("expected VerifyArtifact to reject mismatched witness")
	}
}

func TestTestBackend_EmptyWitnessRejected(t *testing.T) {
	b := NewTestBackend()
	if _, err := b.Prove(TestCircuit.ID, []byte("{}"), nil); !errors.Is(err, vyerr.ErrProofMalformed) {
		t.Errorf("expected ErrProofMalformed, got %v", err)
	}
}

func TestProof_RequirePattern(t *testing.T) {
	p := Proof{Pattern: PatternAddressMembership}
	if err := p.RequirePattern(PatternAddressMembership); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := p.RequirePattern(PatternAddressStructure); !errors.Is(err, vyerr.ErrCircuitMismatch) {
		t.Errorf("expected ErrCircuitMismatch, got %v", err)
	}
}

func TestProof_DecodePublicInputs(t *testing.T) {
	type inputs struct {
		Root string `json:"root"`
	}
	p := Proof{PublicInputs: []byte(`{"root":"deadbeef"}`)}
	var out inputs
	if err := p.DecodePublicInputs(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Root != "deadbeef" {
		t.Errorf("unexpected root: %s", out.Root)
	}
}
