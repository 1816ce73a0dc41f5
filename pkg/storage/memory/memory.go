// Copyright 2025 Veyra Protocol
//
// Package memory provides in-memory reference implementations of the
// collaborator interfaces (spec §2 row L), sufficient to run the core
// end to end without external wiring (tests, cmd/veyd demo). Grounded
// on the teacher's KV-store habit (pkg/ledger/store.go) generalized
// from a single byte-oriented store to typed, role-specific maps, with
// a guarding sync.RWMutex per spec.md §5's allowance for collaborator
// reference implementations (never the core logic itself) to hold
// internal locks.
package memory

import (
	"crypto/ed25519"
	"fmt"
	"sync"

	"github.com/veyra-network/vey-core/pkg/audit"
	"github.com/veyra-network/vey-core/pkg/revocation"
	"github.com/veyra-network/vey-core/pkg/vc"
	"github.com/veyra-network/vey-core/pkg/vyerr"
)

// RevocationStore is an in-memory collaborator.RevocationStorage keyed
// by issuer DID, holding only the latest list per issuer.
type RevocationStore struct {
	mu    sync.RWMutex
	lists map[string]revocation.List
}

// NewRevocationStore returns an empty RevocationStore.
func NewRevocationStore() *RevocationStore {
	return &RevocationStore{lists: make(map[string]revocation.List)}
}

// LatestList implements collaborator.RevocationStorage.
func (s *RevocationStore) LatestList(issuer string) (revocation.List, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.lists[issuer]
	if !ok {
		return revocation.List{}, fmt.Errorf("%w: no revocation list for issuer %s", vyerr.ErrInvalidFormat, issuer)
	}
	return l, nil
}

// Append implements collaborator.RevocationStorage, replacing the
// stored list for list.Issuer. Callers are expected to have built list
// as a revocation.Successor of the current latest (or a fresh
// revocation.NewList), so monotonicity is the caller's responsibility;
// Append itself only rejects a non-increasing version to catch races.
func (s *RevocationStore) Append(list revocation.List) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.lists[list.Issuer]; ok && list.Version <= existing.Version {
		return fmt.Errorf("%w: list version %d does not advance stored version %d", vyerr.ErrInvalidFormat, list.Version, existing.Version)
	}
	s.lists[list.Issuer] = list
	return nil
}

// AuditSink is an in-memory collaborator.AuditSink; Write is
// synchronous and returns only after the entry is appended, satisfying
// spec §9's durability-before-response requirement for the reference
// implementation's definition of "durable".
type AuditSink struct {
	mu      sync.RWMutex
	entries []audit.Entry
}

// NewAuditSink returns an empty AuditSink.
func NewAuditSink() *AuditSink {
	return &AuditSink{}
}

// Write implements collaborator.AuditSink.
func (a *AuditSink) Write(entry audit.Entry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, entry)
	return nil
}

// Entries returns a snapshot copy of all written entries, newest last.
func (a *AuditSink) Entries() []audit.Entry {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]audit.Entry, len(a.entries))
	copy(out, a.entries)
	return out
}

// VCStore is an in-memory collaborator.VCStore keyed by subject DID and
// credential type.
type VCStore struct {
	mu    sync.RWMutex
	creds map[string]vc.VerifiableCredential
}

// NewVCStore returns an empty VCStore.
func NewVCStore() *VCStore {
	return &VCStore{creds: make(map[string]vc.VerifiableCredential)}
}

func vcKey(subjectDID string, credType vc.CredentialType) string {
	return subjectDID + "|" + string(credType)
}

// Put stores cred, indexed by its subject and credType (not derivable
// from the VC's own fields without re-parsing CredentialSubject, so
// callers name it explicitly).
func (s *VCStore) Put(subjectDID string, credType vc.CredentialType, cred vc.VerifiableCredential) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds[vcKey(subjectDID, credType)] = cred
}

// Get implements collaborator.VCStore.
func (s *VCStore) Get(subjectDID string, credType vc.CredentialType) (*vc.VerifiableCredential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cred, ok := s.creds[vcKey(subjectDID, credType)]
	if !ok {
		return nil, nil
	}
	return &cred, nil
}

// Keystore is an in-memory collaborator.Keystore keyed by "did#fragment".
type Keystore struct {
	mu   sync.RWMutex
	keys map[string]ed25519.PublicKey
}

// NewKeystore returns an empty Keystore.
func NewKeystore() *Keystore {
	return &Keystore{keys: make(map[string]ed25519.PublicKey)}
}

// Register binds did#fragment to pk.
func (k *Keystore) Register(did, fragment string, pk ed25519.PublicKey) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.keys[did+"#"+fragment] = pk
}

// PublicKey implements collaborator.Keystore.
func (k *Keystore) PublicKey(did, fragment string) (ed25519.PublicKey, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	pk, ok := k.keys[did+"#"+fragment]
	if !ok {
		return nil, fmt.Errorf("%w: no key registered for %s#%s", vyerr.ErrKeyNotFound, did, fragment)
	}
	return pk, nil
}
