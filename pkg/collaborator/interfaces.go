// Copyright 2025 Veyra Protocol
//
// Package collaborator names the capability interfaces the core consumes
// from its host (spec §6 "Collaborator interfaces consumed"): country
// grammar lookup, key resolution, revocation-list storage, audit
// logging, VC lookup, and a clock. The core never imports a concrete
// storage or network package directly — every side effect crosses one
// of these boundaries, mirroring the teacher's ledger.KV abstraction
// (pkg/ledger/store.go) generalized from a single key-value store to
// the six roles this protocol needs.
package collaborator

import (
	"crypto/ed25519"
	"time"

	"github.com/veyra-network/vey-core/pkg/audit"
	"github.com/veyra-network/vey-core/pkg/grammar"
	"github.com/veyra-network/vey-core/pkg/revocation"
	"github.com/veyra-network/vey-core/pkg/vc"
)

// CountryData is re-exported from pkg/grammar: "grammar(country) →
// {depth, slots[]}" (spec §6).
type CountryData = grammar.CountryData

// Keystore resolves a DID's verification method to a public key:
// "public_key(did, fragment) → pk" (spec §6).
type Keystore interface {
	PublicKey(did, fragment string) (ed25519.PublicKey, error)
}

// RevocationStorage serves and extends the issuer's revocation list:
// "latest_list(issuer) → list", "append(list)" (spec §6). Append
// replaces the stored list wholesale — callers build successors via
// revocation.Successor before calling it.
type RevocationStorage interface {
	LatestList(issuer string) (revocation.List, error)
	Append(list revocation.List) error
}

// AuditSink persists an audit log entry: "write(entry)" (spec §6).
// Spec §9 requires the write to be durable before a resolve response
// is returned, so implementations must not buffer past Write returning.
type AuditSink interface {
	Write(entry audit.Entry) error
}

// VCStore resolves a subject's credential of a given type: "get(subject,
// type) → vc?" (spec §6). A nil, nil return means no such credential.
type VCStore interface {
	Get(subjectDID string, credType vc.CredentialType) (*vc.VerifiableCredential, error)
}

// Clock supplies the current time: "now()" (spec §6), letting callers
// substitute a fixed clock in tests without the core depending on
// time.Now directly.
type Clock interface {
	Now() time.Time
}

// SystemClock is the Clock backed by time.Now, used wherever the host
// doesn't supply its own (tests, cmd/veyd demo wiring).
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time { return time.Now().UTC() }
