// Copyright 2025 Veyra Protocol
package address

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	vcrypto "github.com/veyra-network/vey-core/pkg/crypto"
	"github.com/veyra-network/vey-core/pkg/vyerr"
	"github.com/veyra-network/vey-core/pkg/zkp"
)

// SelectiveRevealPublicInputs is published with a selective-reveal
// proof (spec §4.D.3): the full-address commitment, the revealed field
// names and their values, and a fresh per-proof nonce (spec §8 example
// 9). The commitment does not depend on the nonce, so proofs over the
// same address carry the same commitment.
type SelectiveRevealPublicInputs struct {
	Commitment      string            `json:"commitment"`
	RevealedFields  []string          `json:"revealedFields"`
	RevealedValues  map[string]string `json:"revealedValues"`
	DisclosureNonce string            `json:"disclosureNonce"`
}

type selectiveRevealWitness struct {
	// HiddenLeafHashes are opaque per-field hashes for fields not in
	// RevealedFields, re-hashed by the verifier alongside the revealed
	// values to reconstruct Commitment (spec §4.D.3).
	HiddenLeafHashes map[string]string `json:"hiddenLeafHashes"`
}

// fieldCommitment hashes one field=value pair under the address-reveal
// domain tag.
func fieldCommitment(field, value string) [32]byte {
	return vcrypto.HashConcat(vcrypto.DomainAddrReveal, []byte(field), []byte{0x00}, []byte(value))
}

// addressCommitment folds every field commitment (in sorted field-name
// order, for determinism) into one top-level commitment.
func addressCommitment(fields map[string]string) [32]byte {
	names := make([]string, 0, len(fields))
	for k := range fields {
		names = append(names, k)
	}
	sort.Strings(names)
	h := vcrypto.DomainAddrReveal
	acc := make([]byte, 0, 32*len(names))
	for _, name := range names {
		fc := fieldCommitment(name, fields[name])
		acc = append(acc, fc[:]...)
	}
	return vcrypto.Hash(h, acc)
}

// GenerateSelectiveReveal proves that fullAddress's fields in
// revealFields take the values published, without disclosing the rest
// (spec §4.D.3). A field named in revealFields but absent from
// fullAddress yields an empty revealed value for that name, per spec
// (documented, not an error).
func GenerateSelectiveReveal(backend zkp.Backend, fullAddress map[string]string, revealFields []string, nonce []byte) (zkp.Proof, error) {
	if len(nonce) == 0 {
		var err error
		nonce, err = vcrypto.CSPRNG(16)
		if err != nil {
			return zkp.Proof{}, err
		}
	}

	commitment := addressCommitment(fullAddress)

	revealed := make(map[string]string, len(revealFields))
	hidden := make(map[string]string)
	for field, value := range fullAddress {
		isRevealed := false
		for _, rf := range revealFields {
			if rf == field {
				isRevealed = true
				break
			}
		}
		if !isRevealed {
			fc := fieldCommitment(field, value)
			hidden[field] = hex.EncodeToString(fc[:])
		}
	}
	for _, rf := range revealFields {
		v, ok := fullAddress[rf]
		if !ok {
			v = ""
		}
		revealed[rf] = v
	}

	pub := SelectiveRevealPublicInputs{
		Commitment:      hex.EncodeToString(commitment[:]),
		RevealedFields:  append([]string(nil), revealFields...),
		RevealedValues:  revealed,
		DisclosureNonce: vcrypto.EncodeSig(nonce),
	}
	pubBytes, err := json.Marshal(pub)
	if err != nil {
		return zkp.Proof{}, err
	}
	wit := selectiveRevealWitness{HiddenLeafHashes: hidden}
	witBytes, err := json.Marshal(wit)
	if err != nil {
		return zkp.Proof{}, err
	}
	artifact, err := backend.Prove(zkp.TestCircuit.ID, pubBytes, witBytes)
	if err != nil {
		return zkp.Proof{}, err
	}

	return zkp.Proof{
		Pattern:      zkp.PatternAddressSelectiveReveal,
		Circuit:      zkp.TestCircuit,
		CreatedAt:    time.Now().UTC(),
		PublicInputs: pubBytes,
		Artifact:     artifact,
	}, nil
}

// VerifySelectiveReveal recomputes the top-level commitment from the
// revealed values plus the witness's opaque hidden-field hashes and
// checks it matches the declared commitment (spec §4.D.3).
func VerifySelectiveReveal(p zkp.Proof, hiddenLeafHashes map[string]string) error {
	if err := p.RequirePattern(zkp.PatternAddressSelectiveReveal); err != nil {
		return err
	}
	var pub SelectiveRevealPublicInputs
	if err := p.DecodePublicInputs(&pub); err != nil {
		return err
	}

	names := make([]string, 0, len(pub.RevealedValues)+len(hiddenLeafHashes))
	commits := make(map[string][32]byte)
	for field, value := range pub.RevealedValues {
		names = append(names, field)
		commits[field] = fieldCommitment(field, value)
	}
	for field, hexHash := range hiddenLeafHashes {
		raw, err := hex.DecodeString(hexHash)
		if err != nil || len(raw) != 32 {
			return fmt.Errorf("%w: invalid hidden field hash for %s", vyerr.ErrProofMalformed, field)
		}
		var fc [32]byte
		copy(fc[:], raw)
		names = append(names, field)
		commits[field] = fc
	}
	sort.Strings(names)
	acc := make([]byte, 0, 32*len(names))
	for _, n := range names {
		fc := commits[n]
		acc = append(acc, fc[:]...)
	}
	recomputed := vcrypto.Hash(vcrypto.DomainAddrReveal, acc)

	if hex.EncodeToString(recomputed[:]) != pub.Commitment {
		return fmt.Errorf("%w: recomputed commitment does not match declared commitment", vyerr.ErrProofRejected)
	}
	return nil
}
