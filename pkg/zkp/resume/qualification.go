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

// QualificationType discriminates which résumé sub-record a
// qualification proof covers (spec §4.E).
type QualificationType string

const (
	QualificationDegree        QualificationType = "degree"
	QualificationCertification QualificationType = "certification"
)

// QualificationPublicInputs is published with a qualification proof
// (spec §4.E): hashes of the institution and field of study (never the
// plaintext), the ordered qualification level, and the completion year.
type QualificationPublicInputs struct {
	Type             QualificationType `json:"type"`
	InstitutionHash  string            `json:"institutionHash"`
	FieldOfStudyHash string            `json:"fieldOfStudyHash"`
	Level            int               `json:"level"`
	CompletionYear   int               `json:"completionYear"`
}

func qualificationHash(domain, s string) [32]byte {
	return vcrypto.Hash(domain, []byte(s))
}

// GenerateDegreeQualification proves ed's level and completion year
// without revealing the institution or field of study in plaintext.
func GenerateDegreeQualification(backend zkp.Backend, ed vresume.Education, level vresume.QualificationLevel) (zkp.Proof, error) {
	instHash := qualificationHash(vcrypto.DomainResumeReveal, ed.Institution)
	fieldHash := qualificationHash(vcrypto.DomainResumeReveal, ed.Field)
	pub := QualificationPublicInputs{
		Type:             QualificationDegree,
		InstitutionHash:  hex.EncodeToString(instHash[:]),
		FieldOfStudyHash: hex.EncodeToString(fieldHash[:]),
		Level:            int(level),
		CompletionYear:   ed.GradDate.Year(),
	}
	return generateQualification(backend, pub, ed.Institution+"|"+ed.Field)
}

// GenerateCertificationQualification proves cert's level (always
// LevelCertification) and issue year.
func GenerateCertificationQualification(backend zkp.Backend, cert vresume.Certification) (zkp.Proof, error) {
	instHash := qualificationHash(vcrypto.DomainResumeReveal, cert.Issuer)
	fieldHash := qualificationHash(vcrypto.DomainResumeReveal, cert.Name)
	pub := QualificationPublicInputs{
		Type:             QualificationCertification,
		InstitutionHash:  hex.EncodeToString(instHash[:]),
		FieldOfStudyHash: hex.EncodeToString(fieldHash[:]),
		Level:            int(vresume.LevelCertification),
		CompletionYear:   cert.IssueDate.Year(),
	}
	return generateQualification(backend, pub, cert.Issuer+"|"+cert.Name)
}

func generateQualification(backend zkp.Backend, pub QualificationPublicInputs, witnessPlaintext string) (zkp.Proof, error) {
	pubBytes, err := json.Marshal(pub)
	if err != nil {
		return zkp.Proof{}, err
	}
	artifact, err := backend.Prove(zkp.TestCircuit.ID, pubBytes, []byte(witnessPlaintext))
	if err != nil {
		return zkp.Proof{}, err
	}
	return zkp.Proof{
		Pattern:      zkp.PatternResumeQualification,
		Circuit:      zkp.TestCircuit,
		CreatedAt:    time.Now().UTC(),
		PublicInputs: pubBytes,
		Artifact:     artifact,
	}, nil
}

// VerifyQualification enforces spec §4.E's level-ordering and
// not-in-the-future checks against now.
func VerifyQualification(p zkp.Proof, now time.Time) error {
	if err := p.RequirePattern(zkp.PatternResumeQualification); err != nil {
		return err
	}
	var pub QualificationPublicInputs
	if err := p.DecodePublicInputs(&pub); err != nil {
		return err
	}
	if pub.Level < int(vresume.LevelCertification) || pub.Level > int(vresume.LevelProfessional) {
		return fmt.Errorf("%w: qualification level %d out of range", vyerr.ErrProofRejected, pub.Level)
	}
	if pub.CompletionYear > now.Year() {
		return fmt.Errorf("%w: completion year %d is in the future", vyerr.ErrProofRejected, pub.CompletionYear)
	}
	return nil
}
