// Copyright 2025 Veyra Protocol
package resume

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	vcrypto "github.com/veyra-network/vey-core/pkg/crypto"
	vresume "github.com/veyra-network/vey-core/pkg/resume"
	"github.com/veyra-network/vey-core/pkg/vyerr"
	"github.com/veyra-network/vey-core/pkg/zkp"
)

// SelectiveRevealPublicInputs is published with a résumé
// selective-reveal proof (spec §4.E): the full-résumé commitment, the
// revealed field values (including derived fields), and a mandatory
// nonce.
type SelectiveRevealPublicInputs struct {
	Commitment      string            `json:"commitment"`
	RevealedFields  []string          `json:"revealedFields"`
	RevealedValues  map[string]string `json:"revealedValues"`
	DisclosureNonce string            `json:"disclosureNonce"`
}

type selectiveRevealWitness struct {
	HiddenFieldHashes map[string]string `json:"hiddenFieldHashes"`
}

// DerivedFields computes the derived-field values spec §4.E names
// (totalYearsExperience, employmentCount, topSkills) as of asOf, in the
// string form used by RevealedValues / commitment hashing.
func DerivedFields(r vresume.Resume, asOf time.Time) map[string]string {
	names := ""
	for i, s := range r.TopSkills() {
		if i > 0 {
			names += ","
		}
		names += s.Name
	}
	return map[string]string{
		"totalYearsExperience": fmt.Sprintf("%.2f", r.TotalYearsExperience(asOf)),
		"employmentCount":      fmt.Sprintf("%d", r.EmploymentCount()),
		"topSkills":            names,
	}
}

func resumeFieldCommitment(field, value string) [32]byte {
	return vcrypto.HashConcat(vcrypto.DomainResumeReveal, []byte(field), []byte{0x00}, []byte(value))
}

func resumeCommitment(fields map[string]string) [32]byte {
	names := make([]string, 0, len(fields))
	for k := range fields {
		names = append(names, k)
	}
	sortStrings(names)
	acc := make([]byte, 0, 32*len(names))
	for _, n := range names {
		fc := resumeFieldCommitment(n, fields[n])
		acc = append(acc, fc[:]...)
	}
	return vcrypto.Hash(vcrypto.DomainResumeReveal, acc)
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j] < s[j-1]; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}

// GenerateSelectiveReveal proves the revealed fields (direct or
// derived) of r take the values published, without disclosing the rest
// (spec §4.E). allFields is the complete flattened field=value map
// (direct fields plus DerivedFields(r, asOf)) the commitment is built
// over.
func GenerateSelectiveReveal(backend zkp.Backend, allFields map[string]string, revealFields []string, nonce []byte) (zkp.Proof, error) {
	if len(nonce) == 0 {
		var err error
		nonce, err = vcrypto.CSPRNG(16)
		if err != nil {
			return zkp.Proof{}, err
		}
	}
	commitment := resumeCommitment(allFields)

	revealed := make(map[string]string, len(revealFields))
	hidden := make(map[string]string)
	revealSet := make(map[string]bool, len(revealFields))
	for _, f := range revealFields {
		revealSet[f] = true
	}
	for field, value := range allFields {
		if revealSet[field] {
			continue
		}
		fc := resumeFieldCommitment(field, value)
		hidden[field] = hex.EncodeToString(fc[:])
	}
	for _, f := range revealFields {
		v := allFields[f]
		revealed[f] = v
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
	wit := selectiveRevealWitness{HiddenFieldHashes: hidden}
	witBytes, err := json.Marshal(wit)
	if err != nil {
		return zkp.Proof{}, err
	}
	artifact, err := backend.Prove(zkp.TestCircuit.ID, pubBytes, witBytes)
	if err != nil {
		return zkp.Proof{}, err
	}
	return zkp.Proof{
		Pattern:      zkp.PatternResumeSelectiveReveal,
		Circuit:      zkp.TestCircuit,
		CreatedAt:    time.Now().UTC(),
		PublicInputs: pubBytes,
		Artifact:     artifact,
	}, nil
}

// VerifySelectiveReveal recomputes the commitment from revealed values
// and hiddenFieldHashes, rejecting a mismatch.
func VerifySelectiveReveal(p zkp.Proof, hiddenFieldHashes map[string]string) error {
	if err := p.RequirePattern(zkp.PatternResumeSelectiveReveal); err != nil {
		return err
	}
	var pub SelectiveRevealPublicInputs
	if err := p.DecodePublicInputs(&pub); err != nil {
		return err
	}

	names := make([]string, 0)
	commits := make(map[string][32]byte)
	for field, value := range pub.RevealedValues {
		names = append(names, field)
		commits[field] = resumeFieldCommitment(field, value)
	}
	for field, hexHash := range hiddenFieldHashes {
		raw, err := hex.DecodeString(hexHash)
		if err != nil || len(raw) != 32 {
			return fmt.Errorf("%w: invalid hidden field hash for %s", vyerr.ErrProofMalformed, field)
		}
		var fc [32]byte
		copy(fc[:], raw)
		names = append(names, field)
		commits[field] = fc
	}
	sortStrings(names)
	acc := make([]byte, 0, 32*len(names))
	for _, n := range names {
		fc := commits[n]
		acc = append(acc, fc[:]...)
	}
	recomputed := vcrypto.Hash(vcrypto.DomainResumeReveal, acc)
	if hex.EncodeToString(recomputed[:]) != pub.Commitment {
		return fmt.Errorf("%w: recomputed commitment does not match declared commitment", vyerr.ErrProofRejected)
	}
	return nil
}
