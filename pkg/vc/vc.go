// Copyright 2025 Veyra Protocol
//
// Package vc implements the W3C-style verifiable credential layer (spec
// §4.C): typed credential payloads issued over a subject DID, signed
// with Ed25519 under a canonical-JSON proof, with expiration and
// subject-mismatch checks. Grounded on the teacher's attestation
// strategy pattern (pkg/attestation/strategy/ed25519_strategy.go) for
// the sign/verify shape, and pkg/commitment/commitment.go for the
// canonicalize-then-hash habit generalized in canonical.go.
package vc

import (
	"crypto/ed25519"
	"encoding/json"
	"fmt"
	"time"

	vcrypto "github.com/veyra-network/vey-core/pkg/crypto"
	"github.com/veyra-network/vey-core/pkg/vyerr"
)

// CredentialType enumerates the payload kinds this core issues.
type CredentialType string

const (
	TypeAddressPID    CredentialType = "AddressPIDCredential"
	TypeResume        CredentialType = "ResumeCredential"
	TypeEmployment    CredentialType = "EmploymentCredential"
	TypeEducation     CredentialType = "EducationCredential"
	TypeCertification CredentialType = "CertificationCredential"
)

// Proof is an Ed25519Signature2020-style detached proof block.
type Proof struct {
	Type               string    `json:"type"`
	Created            time.Time `json:"created"`
	VerificationMethod string    `json:"verificationMethod"`
	ProofPurpose       string    `json:"proofPurpose"`
	ProofValue         string    `json:"proofValue"`
}

// VerifiableCredential is a generic envelope around a typed payload
// (spec §4.C). Payload is kept as json.RawMessage so canonicalization
// sees the exact bytes the issuer signed over, and typed accessors
// (Subject, AddressPIDSubject, ...) unmarshal on demand.
type VerifiableCredential struct {
	Context           []string        `json:"@context"`
	ID                string          `json:"id"`
	Type              []string        `json:"type"`
	Issuer            string          `json:"issuer"`
	IssuanceDate      time.Time       `json:"issuanceDate"`
	ExpirationDate    *time.Time      `json:"expirationDate,omitempty"`
	CredentialSubject json.RawMessage `json:"credentialSubject"`
	Proof             *Proof          `json:"proof,omitempty"`
}

// Subject returns the subject DID nested under credentialSubject.id
// (spec §6's wire format carries no top-level subject field).
func (vc VerifiableCredential) Subject() (string, error) {
	var s struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(vc.CredentialSubject, &s); err != nil {
		return "", fmt.Errorf("%w: decode credentialSubject.id: %v", vyerr.ErrInvalidFormat, err)
	}
	return s.ID, nil
}

const baseContext = "https://www.w3.org/2018/credentials/v1"

// newCredential builds an unsigned credential envelope shared by every
// typed constructor below (spec §4.C: "one generic constructor per
// payload shape").
func newCredential(id, issuer string, credType CredentialType, payload interface{}, issuanceDate time.Time, expiration *time.Time) (VerifiableCredential, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return VerifiableCredential{}, fmt.Errorf("%w: marshal credential subject: %v", vyerr.ErrInvalidFormat, err)
	}
	return VerifiableCredential{
		Context:           []string{baseContext},
		ID:                id,
		Type:              []string{"VerifiableCredential", string(credType)},
		Issuer:            issuer,
		IssuanceDate:      issuanceDate,
		ExpirationDate:    expiration,
		CredentialSubject: raw,
	}, nil
}

// AddressPIDSubject is the credentialSubject payload for an
// AddressPIDCredential: a PID plus the country grammar version it was
// encoded under (spec §4.C).
type AddressPIDSubject struct {
	ID             string `json:"id"`
	PID            string `json:"pid"`
	Country        string `json:"country"`
	GrammarVersion string `json:"grammarVersion"`
}

// AddressPIDCredential constructs an unsigned credential binding a
// subject DID to a PID.
func AddressPIDCredential(id, subjectDID, issuerDID string, subj AddressPIDSubject, issuanceDate time.Time, expiration *time.Time) (VerifiableCredential, error) {
	subj.ID = subjectDID
	return newCredential(id, issuerDID, TypeAddressPID, subj, issuanceDate, expiration)
}

// EmploymentRecord mirrors pkg/resume.Employment's shape for credential
// embedding (spec §4.D).
type EmploymentRecord struct {
	Employer  string     `json:"employer"`
	Title     string     `json:"title"`
	StartDate time.Time  `json:"startDate"`
	EndDate   *time.Time `json:"endDate,omitempty"`
}

// EmploymentSubject is the credentialSubject payload for an
// EmploymentCredential.
type EmploymentSubject struct {
	ID         string           `json:"id"`
	Employment EmploymentRecord `json:"employment"`
}

// EmploymentCredential constructs an unsigned employment credential.
func EmploymentCredential(id, subjectDID, issuerDID string, rec EmploymentRecord, issuanceDate time.Time, expiration *time.Time) (VerifiableCredential, error) {
	return newCredential(id, issuerDID, TypeEmployment, EmploymentSubject{ID: subjectDID, Employment: rec}, issuanceDate, expiration)
}

// EducationRecord mirrors pkg/resume.Education's shape for credential
// embedding.
type EducationRecord struct {
	Institution string    `json:"institution"`
	Degree      string    `json:"degree"`
	Field       string    `json:"field"`
	GradDate    time.Time `json:"gradDate"`
}

// EducationSubject is the credentialSubject payload for an
// EducationCredential.
type EducationSubject struct {
	ID        string          `json:"id"`
	Education EducationRecord `json:"education"`
}

// EducationCredential constructs an unsigned education credential.
func EducationCredential(id, subjectDID, issuerDID string, rec EducationRecord, issuanceDate time.Time, expiration *time.Time) (VerifiableCredential, error) {
	return newCredential(id, issuerDID, TypeEducation, EducationSubject{ID: subjectDID, Education: rec}, issuanceDate, expiration)
}

// CertificationRecord mirrors pkg/resume.Certification's shape for
// credential embedding.
type CertificationRecord struct {
	Name      string     `json:"name"`
	Issuer    string     `json:"issuer"`
	IssueDate time.Time  `json:"issueDate"`
	ExpiryDate *time.Time `json:"expiryDate,omitempty"`
}

// CertificationSubject is the credentialSubject payload for a
// CertificationCredential.
type CertificationSubject struct {
	ID            string               `json:"id"`
	Certification CertificationRecord  `json:"certification"`
}

// CertificationCredential constructs an unsigned certification credential.
func CertificationCredential(id, subjectDID, issuerDID string, rec CertificationRecord, issuanceDate time.Time, expiration *time.Time) (VerifiableCredential, error) {
	return newCredential(id, issuerDID, TypeCertification, CertificationSubject{ID: subjectDID, Certification: rec}, issuanceDate, expiration)
}

// ResumeSubject is the credentialSubject payload for a ResumeCredential:
// the full set of employment/education/certification records bundled
// under one subject (spec §4.D), signed as a single unit so résumé ZKP
// patterns can prove statements about the whole history.
type ResumeSubject struct {
	ID              string                 `json:"id"`
	Employment      []EmploymentRecord     `json:"employment"`
	Education       []EducationRecord      `json:"education"`
	Certifications  []CertificationRecord  `json:"certifications"`
	Skills          []string               `json:"skills"`
}

// ResumeCredential constructs an unsigned résumé credential.
func ResumeCredential(id, subjectDID, issuerDID string, subj ResumeSubject, issuanceDate time.Time, expiration *time.Time) (VerifiableCredential, error) {
	subj.ID = subjectDID
	return newCredential(id, issuerDID, TypeResume, subj, issuanceDate, expiration)
}

// Sign attaches an Ed25519Signature2020 proof over the canonical form of
// credential (proof block excluded from the signed bytes).
func Sign(credential VerifiableCredential, sk ed25519.PrivateKey, verificationMethod string, created time.Time) (VerifiableCredential, error) {
	raw, err := canonicalBytes(credential)
	if err != nil {
		return VerifiableCredential{}, err
	}
	sig, err := vcrypto.Sign(sk, raw)
	if err != nil {
		return VerifiableCredential{}, err
	}
	credential.Proof = &Proof{
		Type:               "Ed25519Signature2020",
		Created:            created,
		VerificationMethod: verificationMethod,
		ProofPurpose:       "assertionMethod",
		ProofValue:         vcrypto.EncodeSig(sig),
	}
	return credential, nil
}

// Verify checks credential's proof signature under pk and its temporal
// validity (issuanceDate <= now <= expirationDate, spec §4.C). now is
// supplied by the caller so resolution stays deterministic and
// testable (see pkg/collaborator.Clock).
func Verify(credential VerifiableCredential, pk ed25519.PublicKey, now time.Time) error {
	if credential.Proof == nil {
		return fmt.Errorf("%w: credential has no proof block", vyerr.ErrProofMalformed)
	}
	sig, err := vcrypto.DecodeSig(credential.Proof.ProofValue)
	if err != nil {
		return fmt.Errorf("%w: %v", vyerr.ErrProofMalformed, err)
	}
	raw, err := canonicalBytes(credential)
	if err != nil {
		return err
	}
	if !vcrypto.Verify(pk, raw, sig) {
		return fmt.Errorf("%w: signature does not verify", vyerr.ErrSignatureInvalid)
	}
	if credential.IssuanceDate.IsZero() {
		return fmt.Errorf("%w: credential has no issuanceDate", vyerr.ErrProofMalformed)
	}
	if now.Before(credential.IssuanceDate) {
		return fmt.Errorf("%w: credential not yet valid", vyerr.ErrCredentialNotYetValid)
	}
	if credential.ExpirationDate != nil && now.After(*credential.ExpirationDate) {
		return fmt.Errorf("%w: credential expired at %s", vyerr.ErrCredentialExpired, credential.ExpirationDate)
	}
	return nil
}

// CheckSubject returns ErrSubjectMismatch if credential's subject does
// not equal expectedSubjectDID. Callers invoke this after Verify when
// binding a presented credential to an expected holder (spec §4.C).
func CheckSubject(credential VerifiableCredential, expectedSubjectDID string) error {
	subject, err := credential.Subject()
	if err != nil {
		return err
	}
	if subject != expectedSubjectDID {
		return fmt.Errorf("%w: credential subject %q does not match expected %q", vyerr.ErrSubjectMismatch, subject, expectedSubjectDID)
	}
	return nil
}
