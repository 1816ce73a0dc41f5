// Copyright 2025 Veyra Protocol
package provider

import (
	"errors"
	"testing"
	"time"

	vcrypto "github.com/veyra-network/vey-core/pkg/crypto"
	"github.com/veyra-network/vey-core/pkg/vyerr"
	"github.com/veyra-network/vey-core/pkg/zkp"
)

func TestValidateProviderSignature_RoundTrip(t *testing.T) {
	kp, err := vcrypto.GenerateKeyPair()
	if err != nil {
		t.Fatalf("keygen: %v", err)
	}
	rec := Record{
		DID:                "did:web:provider.example",
		DisplayName:        "Example Provider",
		VerificationPubKey: kp.PublicKey,
		EndpointURL:        "https://provider.example/zkp",
		SupportedCircuits:  []string{zkp.TestCircuit.ID},
	}

	proof := zkp.Proof{
		Pattern:      zkp.PatternAddressMembership,
		Circuit:      zkp.TestCircuit,
		CreatedAt:    time.Now().UTC(),
		PublicInputs: []byte(`{"root":"abc"}`),
		Artifact:     []byte{1, 2, 3, 4},
	}
	digest := artifactDigest(proof)
	sig, err := vcrypto.Sign(kp.PrivateKey, digest[:])
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if err := ValidateProviderSignature(proof, sig, rec); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestValidateProviderSignature_UnsupportedCircuit(t *testing.T) {
	kp, _ := vcrypto.GenerateKeyPair()
	rec := Record{DID: "did:web:p", VerificationPubKey: kp.PublicKey, SupportedCircuits: []string{"other-circuit"}}
	proof := zkp.Proof{Pattern: zkp.PatternAddressMembership, Circuit: zkp.TestCircuit}
	if err := ValidateProviderSignature(proof, []byte{0}, rec); !errors.Is(err, vyerr.ErrUnsupportedCircuit) {
		t.Errorf("expected ErrUnsupportedCircuit, got %v", err)
	}
}

func TestRegistry_LookupUnknown(t *testing.T) {
	reg := NewRegistry()
	if _, err := reg.Lookup("did:web:missing"); !errors.Is(err, vyerr.ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound, got %v", err)
	}
}
