// Copyright 2025 Veyra Protocol
//
// Package grammar models the per-country address hierarchy grammar that
// the PID and AMF packages consume. Per spec §1/§6 the grammar itself is
// supplied by an external country-data collaborator ("a country-data
// lookup returning hierarchy depth and field grammar for a country
// code"); this package defines that collaborator's contract plus a small
// in-memory reference table (see reference.go) standing in for the real
// thing.
package grammar

import (
	"fmt"
	"strings"

	vcrypto "github.com/veyra-network/vey-core/pkg/crypto"
)

// CasePolicy controls how a raw field value is normalized before it
// becomes a PID segment.
type CasePolicy int

const (
	CaseNone CasePolicy = iota
	CaseUpper
	CaseLower
)

func (c CasePolicy) Apply(s string) string {
	switch c {
	case CaseUpper:
		return strings.ToUpper(strings.TrimSpace(s))
	case CaseLower:
		return strings.ToLower(strings.TrimSpace(s))
	default:
		return strings.TrimSpace(s)
	}
}

// Slot describes one ordered position in a country's address hierarchy.
type Slot struct {
	// Field is the semantic AMF field name this slot is derived from
	// (country, admin1, admin2, locality, postalCode, street, building,
	// unit, recipient).
	Field string
	// Required marks the slot as mandatory: encoding fails if the field
	// is empty for a depth that includes this slot.
	Required bool
	// Case is the per-slot case/whitespace normalization policy.
	Case CasePolicy
	// MaxLen bounds the token length (spec §3: "bounded length").
	MaxLen int
}

// Grammar is the ordered hierarchy for one country.
type Grammar struct {
	Country string
	// Depth is the maximum number of hierarchy slots this country
	// defines (spec §3: "segment count ... ≤ the grammar depth").
	Depth int
	Slots []Slot
	// RulesVersion identifies the grammar revision; the structure proof
	// (spec §4.D.2) binds RulesHash, which digests this string together
	// with the country, depth and slot field names.
	RulesVersion string
}

// CountryData is the collaborator interface consumed by pid and amf:
// "grammar(country) → {depth, slots[]}" (spec §6).
type CountryData interface {
	Grammar(country string) (Grammar, error)
}

// RulesHash is the digest of g's country, rules version, depth and slot
// field names, bound into the structure proof's public inputs (spec
// §4.D.2): a verifier on a different grammar
// revision gets a different hash and rejects with RulesHashMismatch.
func (g Grammar) RulesHash() [32]byte {
	var sb strings.Builder
	sb.WriteString(g.Country)
	sb.WriteString("|")
	sb.WriteString(g.RulesVersion)
	sb.WriteString("|")
	fmt.Fprintf(&sb, "%d", g.Depth)
	for _, s := range g.Slots {
		sb.WriteString("|")
		sb.WriteString(s.Field)
	}
	return vcrypto.Hash(vcrypto.DomainPIDCommit, []byte(sb.String()))
}
