// Copyright 2025 Veyra Protocol
//
// Package address implements the five address ZKP patterns (spec
// §4.D): membership, structure, selective-reveal, version, and locker.
// Every Generate/Verify pair runs under a zkp.Backend — the deterministic
// zkp.TestBackend by default — and binds its private witness into a
// public commitment so a proof cannot be rebound to a different value
// (spec §4.D(c)).
package address

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/veyra-network/vey-core/pkg/merkle"
	"github.com/veyra-network/vey-core/pkg/pid"
	"github.com/veyra-network/vey-core/pkg/vyerr"
	"github.com/veyra-network/vey-core/pkg/zkp"
)

// MembershipPublicInputs is published with a membership proof: the
// Merkle root of the issuer's accepted PID set, a commitment to the
// claimed leaf, and the inclusion path from that leaf to the root so a
// verifier can reconstruct the root independently (spec §4.D.1: "Verify:
// root match, path reconstruction yields root, commitment binds to the
// claimed leaf"). The path discloses only sibling hashes, never which
// other PIDs those siblings commit to.
type MembershipPublicInputs struct {
	Root           string             `json:"root"`
	LeafCommitment string             `json:"leafCommitment"`
	LeafIndex      int                `json:"leafIndex"`
	Path           []merkle.ProofNode `json:"path"`
}

// membershipWitness is never serialized into the proof; it is hashed
// into the artifact by the backend.
type membershipWitness struct {
	LeafHash string `json:"leafHash"`
	Index    int    `json:"index"`
}

// GenerateMembership proves that candidate is a leaf of tree (spec
// §4.D.1). The proof publishes the leaf hash, its index and its sibling
// path, so it does not hide which leaf it covers. If candidate appears at
// more than one index, any one is proved (documented tie-break).
func GenerateMembership(backend zkp.Backend, tree *merkle.Tree, candidate pid.PID) (zkp.Proof, error) {
	leaf := merkle.LeafHash([]byte(candidate))
	proof, err := tree.ProveByHash(leaf)
	if err != nil {
		return zkp.Proof{}, fmt.Errorf("%w: %v", vyerr.ErrMembershipNotFound, err)
	}

	pub := MembershipPublicInputs{
		Root:           tree.RootHex(),
		LeafCommitment: hex.EncodeToString(leaf),
		LeafIndex:      proof.LeafIndex,
		Path:           proof.Path,
	}
	pubBytes, err := json.Marshal(pub)
	if err != nil {
		return zkp.Proof{}, err
	}
	wit := membershipWitness{LeafHash: hex.EncodeToString(leaf), Index: proof.LeafIndex}
	witBytes, err := json.Marshal(wit)
	if err != nil {
		return zkp.Proof{}, err
	}
	artifact, err := backend.Prove(zkp.TestCircuit.ID, pubBytes, witBytes)
	if err != nil {
		return zkp.Proof{}, err
	}

	return zkp.Proof{
		Pattern:      zkp.PatternAddressMembership,
		Circuit:      zkp.TestCircuit,
		CreatedAt:    time.Now().UTC(),
		PublicInputs: pubBytes,
		Artifact:     artifact,
	}, nil
}

// VerifyMembership checks that p attests inclusion of the leaf named by
// LeafCommitment under expectedRoot by reconstructing the root from the
// published path (spec §4.D.1: "Verify: root match, path reconstruction
// yields root, commitment binds to the claimed leaf"). A proof that
// merely republishes expectedRoot with an arbitrary commitment and no
// valid path is rejected here.
func VerifyMembership(p zkp.Proof, expectedRoot string) error {
	if err := p.RequirePattern(zkp.PatternAddressMembership); err != nil {
		return err
	}
	var pub MembershipPublicInputs
	if err := p.DecodePublicInputs(&pub); err != nil {
		return err
	}
	if pub.Root != expectedRoot {
		return fmt.Errorf("%w: membership proof root does not match expected root", vyerr.ErrProofRejected)
	}
	if pub.LeafCommitment == "" {
		return fmt.Errorf("%w: membership proof missing leaf commitment", vyerr.ErrProofMalformed)
	}
	leaf, err := hex.DecodeString(pub.LeafCommitment)
	if err != nil || len(leaf) != 32 {
		return fmt.Errorf("%w: membership proof leaf commitment is not a 32-byte hash", vyerr.ErrProofMalformed)
	}
	root, err := hex.DecodeString(expectedRoot)
	if err != nil || len(root) != 32 {
		return fmt.Errorf("%w: expected root is not a 32-byte hash", vyerr.ErrProofMalformed)
	}
	ok, err := merkle.Verify(leaf, pub.LeafIndex, pub.Path, root)
	if err != nil {
		return fmt.Errorf("%w: %v", vyerr.ErrProofMalformed, err)
	}
	if !ok {
		return fmt.Errorf("%w: membership path does not reconstruct the expected root", vyerr.ErrProofRejected)
	}
	return nil
}
