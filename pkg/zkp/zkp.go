// Copyright 2025 Veyra Protocol
//
// Package zkp defines the shared proof envelope and circuit-backend
// contract used by pkg/zkp/address and pkg/zkp/resume (spec §4.E,
// §4.G). Each of the nine proof patterns produces a Proof value tagged
// with its PatternType; verifiers dispatch on the tag rather than on
// Go's type system, mirroring the teacher's anchor_proof tagged-union
// envelope (pkg/anchor_proof/types.go).
package zkp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/veyra-network/vey-core/pkg/vyerr"
)

// PatternType tags which of the nine proof patterns a Proof carries.
type PatternType string

const (
	// Address patterns (spec §4.E).
	PatternAddressMembership      PatternType = "address.membership"
	PatternAddressStructure       PatternType = "address.structure"
	PatternAddressSelectiveReveal PatternType = "address.selective_reveal"
	PatternAddressVersion         PatternType = "address.version"
	PatternAddressLocker          PatternType = "address.locker"

	// Résumé patterns (spec §4.G).
	PatternResumeMembership      PatternType = "resume.membership"
	PatternResumeSelectiveReveal PatternType = "resume.selective_reveal"
	PatternResumeQualification   PatternType = "resume.qualification"
	PatternResumeSkill           PatternType = "resume.skill"
)

// Circuit describes which backend produced a proof and under what
// identifier, so a verifier can pick the matching backend (spec §4.E:
// "a proof names its circuit; verification never guesses").
type Circuit struct {
	Backend string `json:"backend"`
	ID      string `json:"id"`
}

// TestCircuit is the deterministic non-SNARK circuit every pattern can
// run under (pkg/zkp's own reference backend, see backend.go).
var TestCircuit = Circuit{Backend: "test", ID: "vey-test-v1"}

// Groth16StructureCircuit names the structure-proof SNARK circuit
// (pkg/zkp/groth16backend), the one pattern backed by a real
// arithmetic circuit per SPEC_FULL.md's domain-stack decision.
var Groth16StructureCircuit = Circuit{Backend: "groth16", ID: "vey-address-structure-v1"}

// Proof is the wire envelope every pattern emits: a tagged pattern
// type, the circuit that produced it, public inputs (disclosed as
// plain JSON since they are not secret by definition), and an opaque
// backend-specific artifact.
type Proof struct {
	Pattern      PatternType     `json:"pattern"`
	Circuit      Circuit         `json:"circuit"`
	CreatedAt    time.Time       `json:"createdAt"`
	PublicInputs json.RawMessage `json:"publicInputs"`
	Artifact     []byte          `json:"artifact"`
}

// DecodePublicInputs unmarshals p's public inputs into out.
func (p Proof) DecodePublicInputs(out interface{}) error {
	if err := json.Unmarshal(p.PublicInputs, out); err != nil {
		return fmt.Errorf("%w: decode public inputs: %v", vyerr.ErrProofMalformed, err)
	}
	return nil
}

// RequirePattern returns an ErrCircuitMismatch-wrapped error if p is not
// tagged want.
func (p Proof) RequirePattern(want PatternType) error {
	if p.Pattern != want {
		return fmt.Errorf("%w: expected pattern %s, got %s", vyerr.ErrCircuitMismatch, want, p.Pattern)
	}
	return nil
}

// Backend abstracts the proving system behind a pattern's
// Prove/Verify pair (spec §4.E Open Question: "pluggable circuit
// backend"). TestBackend (backend.go) is the default, deterministic
// backend every pattern runs under; pkg/zkp/groth16backend implements
// this interface for the structure pattern with a real Groth16 circuit.
type Backend interface {
	// Name identifies the backend, matched against Proof.Circuit.Backend
	// on verification.
	Name() string
	// Prove produces an opaque artifact attesting that witness satisfies
	// whatever relation circuitID names, with publicInputs bound into
	// the artifact.
	Prove(circuitID string, publicInputs, witness []byte) ([]byte, error)
	// Verify checks an artifact produced by Prove against publicInputs.
	Verify(circuitID string, publicInputs, artifact []byte) (bool, error)
}
