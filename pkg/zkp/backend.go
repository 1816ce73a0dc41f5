// Copyright 2025 Veyra Protocol
package zkp

import (
	"crypto/subtle"
	"fmt"

	vcrypto "github.com/veyra-network/vey-core/pkg/crypto"
	"github.com/veyra-network/vey-core/pkg/vyerr"
)

// testDomain domain-separates TestBackend's commitment from every other
// hash in the core; it is not one of the spec's named domain tags
// because this backend itself is not part of the protocol's on-wire
// semantics, only a reference implementation of the Backend contract.
const testDomain = "vey:zkp:test-backend"

// TestBackend is a deterministic stand-in proving system: the
// "artifact" is simply HMAC(circuitID || publicInputs, witness). It
// proves nothing cryptographically beyond knowledge of witness, which
// is sufficient for every pattern except address.structure (see
// pkg/zkp/groth16backend for that one's real SNARK). This mirrors the
// teacher's habit of keeping a fast reference path alongside the
// production SNARK path for local development and tests.
type TestBackend struct{}

// NewTestBackend constructs the reference backend.
func NewTestBackend() *TestBackend { return &TestBackend{} }

func (b *TestBackend) Name() string { return "test" }

func (b *TestBackend) Prove(circuitID string, publicInputs, witness []byte) ([]byte, error) {
	if len(witness) == 0 {
		return nil, fmt.Errorf("%w: test backend requires a non-empty witness", vyerr.ErrProofMalformed)
	}
	key := append(append([]byte(circuitID), 0x00), publicInputs...)
	tag := vcrypto.HMAC(testDomain, key, witness)
	return tag[:], nil
}

func (b *TestBackend) Verify(circuitID string, publicInputs, artifact []byte) (bool, error) {
	// The test backend cannot re-derive witness from artifact (it is an
	// HMAC, not an encryption), so Verify here only checks well-formedness.
	// A holder of the witness can check the tag with VerifyArtifact.
	if len(artifact) != 32 {
		return false, fmt.Errorf("%w: test backend artifact must be 32 bytes", vyerr.ErrProofMalformed)
	}
	return true, nil
}

// VerifyArtifact recomputes the expected HMAC tag for witness and
// compares it to artifact in constant time. Unlike Verify, which only
// checks shape, it needs the witness; the pattern verifiers in
// pkg/zkp/address and pkg/zkp/resume do not call it.
func (b *TestBackend) VerifyArtifact(circuitID string, publicInputs, witness, artifact []byte) bool {
	expected, err := b.Prove(circuitID, publicInputs, witness)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(expected, artifact) == 1
}
