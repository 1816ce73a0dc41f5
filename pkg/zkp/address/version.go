// Copyright 2025 Veyra Protocol
package address

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	vcrypto "github.com/veyra-network/vey-core/pkg/crypto"
	"github.com/veyra-network/vey-core/pkg/revocation"
	"github.com/veyra-network/vey-core/pkg/vyerr"
	"github.com/veyra-network/vey-core/pkg/zkp"
)

// VersionPublicInputs is published with a version proof (spec §4.D.4):
// the old and new PID, the migration timestamp, and a commitment
// binding both PIDs to the migrating user's DID.
type VersionPublicInputs struct {
	OldPID              string    `json:"oldPid"`
	NewPID              string    `json:"newPid"`
	MigrationTimestamp  time.Time `json:"migrationTimestamp"`
	OwnershipCommitment string    `json:"ownershipCommitment"`
}

type versionWitness struct {
	UserDID           string `json:"userDid"`
	PriorVCFingerprint string `json:"priorVcFingerprint"`
}

// ownershipCommitment binds a user DID to both PIDs in the migration
// (spec §4.D.4: "ownership commitment matches the canonical binding of
// userDid to both PIDs").
func ownershipCommitment(userDID, oldPID, newPID string) [32]byte {
	return vcrypto.HashConcat(vcrypto.DomainAddrVersion, []byte(userDID), []byte{0x00}, []byte(oldPID), []byte{0x00}, []byte(newPID))
}

// GenerateVersion proves that userDID migrated from oldPID to newPID at
// migrationTime, for later verification against a signed revocation
// list (spec §4.D.4).
func GenerateVersion(backend zkp.Backend, userDID, oldPID, newPID, priorVCFingerprint string, migrationTime time.Time) (zkp.Proof, error) {
	commitment := ownershipCommitment(userDID, oldPID, newPID)
	pub := VersionPublicInputs{
		OldPID:              oldPID,
		NewPID:              newPID,
		MigrationTimestamp:  migrationTime,
		OwnershipCommitment: hex.EncodeToString(commitment[:]),
	}
	pubBytes, err := json.Marshal(pub)
	if err != nil {
		return zkp.Proof{}, err
	}
	wit := versionWitness{UserDID: userDID, PriorVCFingerprint: priorVCFingerprint}
	witBytes, err := json.Marshal(wit)
	if err != nil {
		return zkp.Proof{}, err
	}
	artifact, err := backend.Prove(zkp.TestCircuit.ID, pubBytes, witBytes)
	if err != nil {
		return zkp.Proof{}, err
	}
	return zkp.Proof{
		Pattern:      zkp.PatternAddressVersion,
		Circuit:      zkp.TestCircuit,
		CreatedAt:    time.Now().UTC(),
		PublicInputs: pubBytes,
		Artifact:     artifact,
	}, nil
}

// VerifyVersion checks p against the current signed revocation list
// (spec §4.D.4 + example 7): oldPid must be revoked for address_change
// with a matching newPid, migrationTimestamp must be at or after the
// revocation entry's revokedAt, and newPid must not itself be revoked.
func VerifyVersion(p zkp.Proof, list revocation.List) error {
	if err := p.RequirePattern(zkp.PatternAddressVersion); err != nil {
		return err
	}
	var pub VersionPublicInputs
	if err := p.DecodePublicInputs(&pub); err != nil {
		return err
	}

	entry, ok := revocation.Find(pub.OldPID, list)
	if !ok || entry.Reason != revocation.ReasonAddressChange {
		return fmt.Errorf("%w: old PID not revoked for address change", vyerr.ErrProofRejected)
	}
	if entry.NewPID != pub.NewPID {
		return fmt.Errorf("%w: revocation entry's newPid does not match proof", vyerr.ErrProofRejected)
	}
	if pub.MigrationTimestamp.Before(entry.RevokedAt) {
		return fmt.Errorf("%w: migration timestamp precedes revocation", vyerr.ErrProofRejected)
	}
	if revocation.IsRevoked(pub.NewPID, list) {
		return fmt.Errorf("%w: new PID is itself revoked", vyerr.ErrProofRejected)
	}
	return nil
}
