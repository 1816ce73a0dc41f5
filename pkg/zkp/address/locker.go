// Copyright 2025 Veyra Protocol
package address

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/veyra-network/vey-core/pkg/merkle"
	vcrypto "github.com/veyra-network/vey-core/pkg/crypto"
	"github.com/veyra-network/vey-core/pkg/vyerr"
	"github.com/veyra-network/vey-core/pkg/zkp"
)

// LockerPublicInputs is published with a locker proof (spec §4.D.5):
// the facility, an optional zone, and the Merkle root over that
// facility's lockers.
type LockerPublicInputs struct {
	FacilityID string `json:"facilityId"`
	Zone       string `json:"zone,omitempty"`
	SetRoot    string `json:"setRoot"`
}

type lockerWitness struct {
	LockerID string             `json:"lockerId"`
	Index    int                `json:"index"`
	Path     []merkle.ProofNode `json:"path"`
}

// LockerLeafHash hashes a lockerID for insertion into a facility's
// locker set tree, domain-separated under vey:locker:set.
func LockerLeafHash(lockerID string) []byte {
	h := vcrypto.Hash(vcrypto.DomainLocker, []byte(lockerID))
	return h[:]
}

// GenerateLocker proves lockerID belongs to tree (the facility/zone's
// locker set) without revealing it (spec §4.D.5).
func GenerateLocker(backend zkp.Backend, tree *merkle.Tree, facilityID, zone, lockerID string) (zkp.Proof, error) {
	leaf := LockerLeafHash(lockerID)
	proof, err := tree.ProveByHash(leaf)
	if err != nil {
		return zkp.Proof{}, fmt.Errorf("%w: %v", vyerr.ErrMembershipNotFound, err)
	}
	pub := LockerPublicInputs{FacilityID: facilityID, Zone: zone, SetRoot: tree.RootHex()}
	pubBytes, err := json.Marshal(pub)
	if err != nil {
		return zkp.Proof{}, err
	}
	wit := lockerWitness{LockerID: lockerID, Index: proof.LeafIndex, Path: proof.Path}
	witBytes, err := json.Marshal(wit)
	if err != nil {
		return zkp.Proof{}, err
	}
	artifact, err := backend.Prove(zkp.TestCircuit.ID, pubBytes, witBytes)
	if err != nil {
		return zkp.Proof{}, err
	}
	return zkp.Proof{
		Pattern:      zkp.PatternAddressLocker,
		Circuit:      zkp.TestCircuit,
		CreatedAt:    time.Now().UTC(),
		PublicInputs: pubBytes,
		Artifact:     artifact,
	}, nil
}

// VerifyLocker checks p's declared facility/zone and root against the
// verifier's expectations (spec §4.D.5).
func VerifyLocker(p zkp.Proof, expectedFacilityID, expectedZone, expectedRoot string) error {
	if err := p.RequirePattern(zkp.PatternAddressLocker); err != nil {
		return err
	}
	var pub LockerPublicInputs
	if err := p.DecodePublicInputs(&pub); err != nil {
		return err
	}
	if pub.FacilityID != expectedFacilityID {
		return fmt.Errorf("%w: locker proof facility does not match", vyerr.ErrProofRejected)
	}
	if expectedZone != "" && pub.Zone != expectedZone {
		return fmt.Errorf("%w: locker proof zone does not match", vyerr.ErrProofRejected)
	}
	if pub.SetRoot != expectedRoot {
		return fmt.Errorf("%w: locker proof set-root does not match", vyerr.ErrProofRejected)
	}
	_, err := hex.DecodeString(pub.SetRoot)
	if err != nil {
		return fmt.Errorf("%w: malformed set-root", vyerr.ErrProofMalformed)
	}
	return nil
}
