// Copyright 2025 Veyra Protocol
//
// Package resume implements the four résumé ZKP patterns (spec §4.E):
// membership, selective-reveal, qualification, and skill. Structurally
// parallel to pkg/zkp/address, sharing the same Merkle and commitment
// primitives over résumé sub-records instead of PIDs.
package resume

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	vcrypto "github.com/veyra-network/vey-core/pkg/crypto"
	"github.com/veyra-network/vey-core/pkg/merkle"
	vresume "github.com/veyra-network/vey-core/pkg/resume"
	"github.com/veyra-network/vey-core/pkg/vyerr"
	"github.com/veyra-network/vey-core/pkg/zkp"
)

// MembershipPublicInputs is published with a résumé membership proof
// (spec §4.E): the verified-organizations set root, a commitment to the
// claimed verifier leaf, the inclusion path from that leaf to the root,
// the claimed position level (leaf depth), and a commitment to the
// employment period. The leaf commitment is a one-way hash of the
// verifier DID (OrgLeafHash), so publishing it does not disclose which
// organization verified the employment.
type MembershipPublicInputs struct {
	SetRoot              string             `json:"setRoot"`
	LeafCommitment       string             `json:"leafCommitment"`
	LeafIndex            int                `json:"leafIndex"`
	Path                 []merkle.ProofNode `json:"path"`
	PositionLevel        int                `json:"positionLevel"`
	EmploymentPeriodHash string             `json:"employmentPeriodHash"`
}

type membershipWitness struct {
	VerifierDID string `json:"verifierDid"`
	Index       int    `json:"index"`
}

// OrgLeafHash hashes a verifier DID for insertion into the
// verified-organizations Merkle set.
func OrgLeafHash(verifierDID string) []byte {
	h := vcrypto.Hash(vcrypto.DomainResumeReveal, []byte(verifierDID))
	return h[:]
}

func employmentPeriodHash(e vresume.Employment) [32]byte {
	end := "present"
	if e.EndDate != nil {
		end = e.EndDate.UTC().Format(time.RFC3339)
	}
	return vcrypto.HashConcat(vcrypto.DomainResumeReveal, []byte(e.StartDate.UTC().Format(time.RFC3339)), []byte{0x00}, []byte(end))
}

// GenerateMembership proves that employment's verifier DID is a member
// of the verified-organizations set in tree (spec §4.E). Employment
// records without a VerifierDID are rejected before proving.
func GenerateMembership(backend zkp.Backend, tree *merkle.Tree, employment vresume.Employment, positionLevel int) (zkp.Proof, error) {
	if employment.VerifierDID == "" {
		return zkp.Proof{}, fmt.Errorf("%w: employment record has no verifier DID", vyerr.ErrMembershipNotFound)
	}
	leaf := OrgLeafHash(employment.VerifierDID)
	mp, err := tree.ProveByHash(leaf)
	if err != nil {
		return zkp.Proof{}, fmt.Errorf("%w: %v", vyerr.ErrMembershipNotFound, err)
	}

	periodHash := employmentPeriodHash(employment)
	pub := MembershipPublicInputs{
		SetRoot:              tree.RootHex(),
		LeafCommitment:       hex.EncodeToString(leaf),
		LeafIndex:            mp.LeafIndex,
		Path:                 mp.Path,
		PositionLevel:        positionLevel,
		EmploymentPeriodHash: hex.EncodeToString(periodHash[:]),
	}
	pubBytes, err := json.Marshal(pub)
	if err != nil {
		return zkp.Proof{}, err
	}
	wit := membershipWitness{VerifierDID: employment.VerifierDID, Index: mp.LeafIndex}
	witBytes, err := json.Marshal(wit)
	if err != nil {
		return zkp.Proof{}, err
	}
	artifact, err := backend.Prove(zkp.TestCircuit.ID, pubBytes, witBytes)
	if err != nil {
		return zkp.Proof{}, err
	}
	return zkp.Proof{
		Pattern:      zkp.PatternResumeMembership,
		Circuit:      zkp.TestCircuit,
		CreatedAt:    time.Now().UTC(),
		PublicInputs: pubBytes,
		Artifact:     artifact,
	}, nil
}

// VerifyMembership checks that p attests inclusion of the leaf named by
// LeafCommitment under expectedRoot by reconstructing the root from the
// published path (spec §4.D.1's Verify contract, shared by résumé
// membership proofs).
func VerifyMembership(p zkp.Proof, expectedRoot string) error {
	if err := p.RequirePattern(zkp.PatternResumeMembership); err != nil {
		return err
	}
	var pub MembershipPublicInputs
	if err := p.DecodePublicInputs(&pub); err != nil {
		return err
	}
	if pub.SetRoot != expectedRoot {
		return fmt.Errorf("%w: résumé membership proof root does not match expected root", vyerr.ErrProofRejected)
	}
	leaf, err := hex.DecodeString(pub.LeafCommitment)
	if err != nil || len(leaf) != 32 {
		return fmt.Errorf("%w: résumé membership proof leaf commitment is not a 32-byte hash", vyerr.ErrProofMalformed)
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
		return fmt.Errorf("%w: résumé membership path does not reconstruct the expected root", vyerr.ErrProofRejected)
	}
	return nil
}
