// Copyright 2025 Veyra Protocol

package vc

import (
	"errors"
	"testing"
	"time"

	vcrypto "github.com/veyra-network/vey-core/pkg/crypto"
	"github.com/veyra-network/vey-core/pkg/vyerr"
)

func mustKeyPair(t *testing.T) *vcrypto.KeyPair {
	t.Helper()
	kp, err := vcrypto.GenerateKeyPair()
	if err != nil {
		t.Fatalf("keygen: %v", err)
	}
	return kp
}

func TestAddressPIDCredential_SignAndVerify(t *testing.T) {
	kp := mustKeyPair(t)
	now := time.Now().UTC()
	exp := now.Add(24 * time.Hour)

	cred, err := AddressPIDCredential("urn:uuid:1", "did:key:zSubject", "did:web:issuer.example",
		AddressPIDSubject{PID: "JP-13-113-01", Country: "JP", GrammarVersion: "2025.1"}, now, &exp)
	if err != nil {
		t.Fatalf("construct: %v", err)
	}

	signed, err := Sign(cred, kp.PrivateKey, "did:web:issuer.example#key-1", now)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if err := Verify(signed, kp.PublicKey, now.Add(time.Minute)); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if err := CheckSubject(signed, "did:key:zSubject"); err != nil {
		t.Errorf("subject check: %v", err)
	}
	if err := CheckSubject(signed, "did:key:zOther"); !errors.Is(err, vyerr.ErrSubjectMismatch) {
		t.Errorf("expected ErrSubjectMismatch, got %v", err)
	}
}

func TestVerify_ExpiredCredential(t *testing.T) {
	kp := mustKeyPair(t)
	now := time.Now().UTC()
	exp := now.Add(time.Hour)
	cred, err := AddressPIDCredential("urn:uuid:2", "did:key:zSubject", "did:web:issuer.example",
		AddressPIDSubject{PID: "JP-13-113-01", Country: "JP", GrammarVersion: "2025.1"}, now, &exp)
	if err != nil {
		t.Fatalf("construct: %v", err)
	}
	signed, err := Sign(cred, kp.PrivateKey, "did:web:issuer.example#key-1", now)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if err := Verify(signed, kp.PublicKey, exp.Add(time.Second)); !errors.Is(err, vyerr.ErrCredentialExpired) {
		t.Errorf("expected ErrCredentialExpired, got %v", err)
	}
}

func TestVerify_NotYetValid(t *testing.T) {
	kp := mustKeyPair(t)
	now := time.Now().UTC()
	future := now.Add(time.Hour)
	cred, err := AddressPIDCredential("urn:uuid:3", "did:key:zSubject", "did:web:issuer.example",
		AddressPIDSubject{PID: "JP-13-113-01", Country: "JP", GrammarVersion: "2025.1"}, future, nil)
	if err != nil {
		t.Fatalf("construct: %v", err)
	}
	signed, err := Sign(cred, kp.PrivateKey, "did:web:issuer.example#key-1", now)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if err := Verify(signed, kp.PublicKey, now); !errors.Is(err, vyerr.ErrCredentialNotYetValid) {
		t.Errorf("expected ErrCredentialNotYetValid, got %v", err)
	}
}

func TestVerify_TamperedSubjectBreaksSignature(t *testing.T) {
	kp := mustKeyPair(t)
	now := time.Now().UTC()
	cred, err := AddressPIDCredential("urn:uuid:4", "did:key:zSubject", "did:web:issuer.example",
		AddressPIDSubject{PID: "JP-13-113-01", Country: "JP", GrammarVersion: "2025.1"}, now, nil)
	if err != nil {
		t.Fatalf("construct: %v", err)
	}
	signed, err := Sign(cred, kp.PrivateKey, "did:web:issuer.example#key-1", now)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	signed.CredentialSubject = []byte(`{"id":"did:key:zAttacker","pid":"JP-13-113-01","country":"JP","grammarVersion":"2025.1"}`)
	if err := Verify(signed, kp.PublicKey, now); !errors.Is(err, vyerr.ErrSignatureInvalid) {
		t.Errorf("expected ErrSignatureInvalid, got %v", err)
	}
}

func TestResumeCredential_RoundTrip(t *testing.T) {
	kp := mustKeyPair(t)
	now := time.Now().UTC()
	subj := ResumeSubject{
		Employment: []EmploymentRecord{{Employer: "Acme", Title: "Engineer", StartDate: now.AddDate(-2, 0, 0)}},
		Education:  []EducationRecord{{Institution: "Tech U", Degree: "BS", Field: "CS", GradDate: now.AddDate(-3, 0, 0)}},
		Skills:     []string{"go", "distributed systems"},
	}
	cred, err := ResumeCredential("urn:uuid:5", "did:key:zSubject", "did:web:issuer.example", subj, now, nil)
	if err != nil {
		t.Fatalf("construct: %v", err)
	}
	signed, err := Sign(cred, kp.PrivateKey, "did:web:issuer.example#key-1", now)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if err := Verify(signed, kp.PublicKey, now); err != nil {
		t.Fatalf("verify: %v", err)
	}
}

func TestCanonicalBytes_KeyOrderInsensitive(t *testing.T) {
	now := time.Now().UTC()
	a, err := AddressPIDCredential("urn:uuid:6", "did:key:zSubject", "did:web:issuer.example",
		AddressPIDSubject{PID: "JP-13-113-01", Country: "JP", GrammarVersion: "2025.1"}, now, nil)
	if err != nil {
		t.Fatalf("construct: %v", err)
	}
	b := a
	b.CredentialSubject = []byte(`{"grammarVersion":"2025.1","country":"JP","pid":"JP-13-113-01","id":"did:key:zSubject"}`)
	rawA, err := canonicalBytes(a)
	if err != nil {
		t.Fatalf("canonical a: %v", err)
	}
	rawB, err := canonicalBytes(b)
	if err != nil {
		t.Fatalf("canonical b: %v", err)
	}
	if string(rawA) != string(rawB) {
		t.Error("canonicalization of credentials differing only in key order must match")
	}
}
