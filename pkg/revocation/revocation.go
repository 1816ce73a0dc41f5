// Copyright 2025 Veyra Protocol
//
// Package revocation implements the revocation entry/list lifecycle
// (spec §3, §4.F): entries carry a reason and, for address changes, a
// successor PID; lists are versioned and signed, consulted by version
// proofs (pkg/zkp/address) and the resolver (pkg/resolver).
package revocation

import (
	"crypto/ed25519"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	vcrypto "github.com/veyra-network/vey-core/pkg/crypto"
	"github.com/veyra-network/vey-core/pkg/vyerr"
)

// Reason enumerates why a PID was revoked (spec §3).
type Reason string

const (
	ReasonAddressChange Reason = "address_change"
	ReasonUserRequest   Reason = "user_request"
	ReasonCompromise    Reason = "compromise"
	ReasonExpired       Reason = "expired"
	ReasonAdministrative Reason = "administrative"
)

// Entry is one revocation record.
type Entry struct {
	PID       string    `json:"pid"`
	RevokedAt time.Time `json:"revokedAt"`
	Reason    Reason    `json:"reason"`
	NewPID    string    `json:"newPid,omitempty"`
}

// NewEntry validates and constructs a revocation entry. newPID is
// present iff reason is address_change, and must differ from pid in
// that case (spec §3 invariant).
func NewEntry(pid string, revokedAt time.Time, reason Reason, newPID string) (Entry, error) {
	if reason == ReasonAddressChange {
		if newPID == "" {
			return Entry{}, fmt.Errorf("%w: address_change revocation requires newPid", vyerr.ErrInvalidFormat)
		}
		if newPID == pid {
			return Entry{}, fmt.Errorf("%w: newPid must differ from pid", vyerr.ErrInvalidFormat)
		}
	} else if newPID != "" {
		return Entry{}, fmt.Errorf("%w: newPid only permitted for address_change", vyerr.ErrInvalidFormat)
	}
	return Entry{PID: pid, RevokedAt: revokedAt, Reason: reason, NewPID: newPID}, nil
}

// ProofBlock mirrors vc.Proof's shape without importing pkg/vc, to avoid
// a dependency cycle (vc does not need to know about revocation lists).
type ProofBlock struct {
	Type               string    `json:"type"`
	Created            time.Time `json:"created"`
	VerificationMethod string    `json:"verificationMethod"`
	ProofPurpose       string    `json:"proofPurpose"`
	ProofValue         string    `json:"proofValue"`
}

// List is a versioned, ordered set of revocation entries.
type List struct {
	Issuer    string      `json:"issuer"`
	Version   int         `json:"version"`
	CreatedAt time.Time   `json:"createdAt"`
	Entries   []Entry     `json:"entries"`
	Proof     *ProofBlock `json:"proof,omitempty"`
}

// NewList creates a version-1 list from scratch.
func NewList(issuer string, createdAt time.Time, entries []Entry) List {
	return List{Issuer: issuer, Version: 1, CreatedAt: createdAt, Entries: normalize(entries)}
}

// Successor creates a new list from predecessor with version
// predecessor.Version+1 and strictly later createdAt (spec §4.F, §8:
// revocation monotonicity).
func Successor(predecessor List, createdAt time.Time, entries []Entry) (List, error) {
	if !createdAt.After(predecessor.CreatedAt) {
		return List{}, fmt.Errorf("%w: successor createdAt must be strictly after predecessor", vyerr.ErrInvalidFormat)
	}
	merged := append(append([]Entry(nil), predecessor.Entries...), entries...)
	return List{
		Issuer:    predecessor.Issuer,
		Version:   predecessor.Version + 1,
		CreatedAt: createdAt,
		Entries:   normalize(merged),
	}, nil
}

// normalize orders entries by revokedAt then pid, collapsing duplicate
// pids to the last-written one (spec §3).
func normalize(entries []Entry) []Entry {
	latest := make(map[string]Entry, len(entries))
	order := make([]string, 0, len(entries))
	for _, e := range entries {
		if _, seen := latest[e.PID]; !seen {
			order = append(order, e.PID)
		}
		latest[e.PID] = e
	}
	out := make([]Entry, 0, len(order))
	for _, pid := range order {
		out = append(out, latest[pid])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].RevokedAt.Equal(out[j].RevokedAt) {
			return out[i].RevokedAt.Before(out[j].RevokedAt)
		}
		return out[i].PID < out[j].PID
	})
	return out
}

// IsRevoked reports whether pid has a revocation entry in list.
func IsRevoked(pid string, list List) bool {
	_, ok := find(pid, list)
	return ok
}

// NewPID returns the successor PID recorded for pid, if any.
func NewPID(pid string, list List) (string, bool) {
	e, ok := find(pid, list)
	if !ok || e.NewPID == "" {
		return "", false
	}
	return e.NewPID, true
}

// Find returns the revocation entry for pid, if any.
func Find(pid string, list List) (Entry, bool) {
	return find(pid, list)
}

func find(pid string, list List) (Entry, bool) {
	for _, e := range list.Entries {
		if e.PID == pid {
			return e, true
		}
	}
	return Entry{}, false
}

// canonicalBytes produces the deterministic byte form signed over: the
// list with its proof block cleared, field-ordered via JSON struct tags.
func canonicalBytes(l List) ([]byte, error) {
	l.Proof = nil
	return json.Marshal(l)
}

// Sign signs list with sk under verificationMethod, attaching a proof
// block.
func Sign(list List, sk ed25519.PrivateKey, verificationMethod string, createdAt time.Time) (List, error) {
	raw, err := canonicalBytes(list)
	if err != nil {
		return List{}, err
	}
	sig, err := vcrypto.Sign(sk, raw)
	if err != nil {
		return List{}, err
	}
	list.Proof = &ProofBlock{
		Type:               "Ed25519Signature2020",
		Created:            createdAt,
		VerificationMethod: verificationMethod,
		ProofPurpose:        "assertionMethod",
		ProofValue:          vcrypto.EncodeSig(sig),
	}
	return list, nil
}

// Verify checks list's proof block signature under pk.
func Verify(list List, pk ed25519.PublicKey) (bool, error) {
	if list.Proof == nil {
		return false, fmt.Errorf("%w: revocation list has no proof block", vyerr.ErrProofMalformed)
	}
	sig, err := vcrypto.DecodeSig(list.Proof.ProofValue)
	if err != nil {
		return false, fmt.Errorf("%w: %v", vyerr.ErrProofMalformed, err)
	}
	raw, err := canonicalBytes(list)
	if err != nil {
		return false, err
	}
	return vcrypto.Verify(pk, raw, sig), nil
}
