// Copyright 2025 Veyra Protocol
//
// Package provider implements the provider registry (spec §4.H): a
// provider record binds a provider DID to a display name, a
// verification public key separate from its DID-document signing key,
// an endpoint URL, and the circuits it supports. Grounded on the
// teacher's lookup-then-verify pattern
// (pkg/database/proof_artifact_repository.go's VerifyArtifactIntegrity:
// fetch the record, then recompute and compare a digest) generalized
// from artifact-hash comparison to Ed25519 signature verification.
package provider

import (
	"crypto/ed25519"
	"fmt"
	"sync"

	vcrypto "github.com/veyra-network/vey-core/pkg/crypto"
	"github.com/veyra-network/vey-core/pkg/vyerr"
	"github.com/veyra-network/vey-core/pkg/zkp"
)

// Record is one registered proof provider.
type Record struct {
	DID                string             `json:"did"`
	DisplayName        string             `json:"displayName"`
	VerificationPubKey ed25519.PublicKey  `json:"verificationPublicKey"`
	EndpointURL        string             `json:"endpointUrl"`
	SupportedCircuits  []string           `json:"supportedCircuits"`
}

// SupportsCircuit reports whether r declares circuitID among its
// supported circuits.
func (r Record) SupportsCircuit(circuitID string) bool {
	for _, c := range r.SupportedCircuits {
		if c == circuitID {
			return true
		}
	}
	return false
}

// Registry is an in-memory provider directory keyed by DID.
type Registry struct {
	mu       sync.RWMutex
	records  map[string]Record
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{records: make(map[string]Record)}
}

// Register adds or replaces rec, keyed by rec.DID.
func (reg *Registry) Register(rec Record) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.records[rec.DID] = rec
}

// Lookup returns the provider record for did.
func (reg *Registry) Lookup(did string) (Record, error) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	rec, ok := reg.records[did]
	if !ok {
		return Record{}, fmt.Errorf("%w: no provider registered for %s", vyerr.ErrKeyNotFound, did)
	}
	return rec, nil
}

// ValidateProviderSignature verifies that signature is a valid Ed25519
// signature over artifact's canonical digest under provider's
// verification key (spec §4.H). An unknown circuit id for provider
// yields ErrUnsupportedCircuit.
func ValidateProviderSignature(artifact zkp.Proof, signature []byte, prov Record) error {
	if !prov.SupportsCircuit(artifact.Circuit.ID) {
		return fmt.Errorf("%w: provider %s does not support circuit %s", vyerr.ErrUnsupportedCircuit, prov.DID, artifact.Circuit.ID)
	}
	digest := artifactDigest(artifact)
	if !vcrypto.Verify(prov.VerificationPubKey, digest[:], signature) {
		return fmt.Errorf("%w: provider signature does not verify", vyerr.ErrSignatureInvalid)
	}
	return nil
}

// artifactDigest is the canonical digest a provider signs over: the
// pattern, circuit, public inputs, and raw artifact bytes, domain
// separated the same way every other commitment in this module is.
func artifactDigest(p zkp.Proof) [32]byte {
	buf := make([]byte, 0, len(p.PublicInputs)+len(p.Artifact)+64)
	buf = append(buf, []byte(p.Pattern)...)
	buf = append(buf, 0x00)
	buf = append(buf, []byte(p.Circuit.Backend)...)
	buf = append(buf, 0x00)
	buf = append(buf, []byte(p.Circuit.ID)...)
	buf = append(buf, 0x00)
	buf = append(buf, p.PublicInputs...)
	buf = append(buf, 0x00)
	buf = append(buf, p.Artifact...)
	return vcrypto.Hash(vcrypto.DomainVCCanonical, buf)
}
