// Copyright 2025 Veyra Protocol
//
// Package pid implements the Place Identifier: a canonical hierarchical
// string binding a country prefix to up to eight ordered segments (spec
// §3). Segment derivation walks the country grammar slot by slot,
// pulling values from a normalized address (pkg/amf) and applying each
// slot's case policy.
package pid

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/veyra-network/vey-core/pkg/amf"
	"github.com/veyra-network/vey-core/pkg/grammar"
	"github.com/veyra-network/vey-core/pkg/vyerr"
)

// MaxLength is the overall PID string length bound (spec §6).
const MaxLength = 80

// MaxDepth is the maximum grammar depth, counting the country slot
// itself as segment 0 (spec §3: "up to eight"; see grammar.Grammar.Depth).
const MaxDepth = 8

// PID is a canonical hierarchical place identifier, e.g. "JP-13-113-01".
type PID string

// segmentToken matches one PID path segment: alphanumeric, bounded.
var segmentToken = regexp.MustCompile(`^[A-Z0-9]{1,16}$`)

// pidFormat is the overall wire grammar DecodePID checks: a two-letter
// upper-case country prefix followed by at most seven '-'-separated
// segments of 1-16 letters or digits. It does not limit a segment to 8
// characters and it accepts lower-case letters in segments; EncodePID
// emits upper-case segments truncated to each slot's MaxLen.
var pidFormat = regexp.MustCompile(`^[A-Z]{2}(-[A-Za-z0-9]{1,16}){0,7}$`)

// Components is the decoded, structured form of a PID, used as ZKP
// witness material (spec §4.B: pid_components).
type Components struct {
	Country  string
	Segments []string
}

// EncodePID produces a PID whose segment count equals depth (spec §4.B).
// depth must not exceed the grammar's max depth.
func EncodePID(n amf.NormalizedAddress, depth int, g grammar.Grammar) (PID, error) {
	if depth < 1 || depth > g.Depth {
		return "", fmt.Errorf("%w: depth %d exceeds grammar depth %d for %s", vyerr.ErrStructureViolation, depth, g.Depth, g.Country)
	}
	if depth > len(g.Slots) {
		depth = len(g.Slots)
	}

	country := strings.ToUpper(strings.TrimSpace(n["country"]))
	if country == "" {
		country = strings.ToUpper(strings.TrimSpace(g.Country))
	}
	if country != strings.ToUpper(g.Country) {
		return "", fmt.Errorf("%w: address country %s does not match grammar country %s", vyerr.ErrCountryMismatch, country, g.Country)
	}

	segments := make([]string, 0, depth)
	for i := 0; i < depth; i++ {
		slot := g.Slots[i]
		raw, present := n[slot.Field]
		if !present || raw == "" {
			if slot.Required {
				return "", fmt.Errorf("%w: slot %d (%s) is required but missing", vyerr.ErrInvalidField, i, slot.Field)
			}
			// Non-required-but-absent mid-hierarchy slots still need a
			// placeholder segment to preserve positional semantics.
			segments = append(segments, "0")
			continue
		}
		token := slot.Case.Apply(raw)
		token = sanitizeToken(token)
		if slot.MaxLen > 0 && len(token) > slot.MaxLen {
			token = token[:slot.MaxLen]
		}
		if token == "" {
			return "", fmt.Errorf("%w: slot %d (%s) produced an empty token", vyerr.ErrInvalidField, i, slot.Field)
		}
		segments = append(segments, token)
	}

	// segments[0] is always the country slot's own token (identical to
	// country), so joining with '-' alone reproduces the country prefix
	// without duplicating it.
	raw := strings.Join(segments, "-")
	if len(raw) > MaxLength {
		return "", fmt.Errorf("%w: encoded pid exceeds %d characters", vyerr.ErrInvalidPIDFormat, MaxLength)
	}
	return PID(raw), nil
}

// sanitizeToken strips everything but alphanumerics, matching the PID
// segment token rule (no internal empty segments, bounded alphanumeric).
func sanitizeToken(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return strings.ToUpper(b.String())
}

// DecodePID parses and validates a PID string, returning its country
// prefix and ordered segments.
func DecodePID(p PID) (Components, error) {
	s := string(p)
	if len(s) == 0 || len(s) > MaxLength {
		return Components{}, fmt.Errorf("%w: length %d out of bounds", vyerr.ErrInvalidPIDFormat, len(s))
	}
	if !pidFormat.MatchString(s) {
		return Components{}, fmt.Errorf("%w: %q does not match pid grammar", vyerr.ErrInvalidPIDFormat, s)
	}
	parts := strings.Split(s, "-")
	country := parts[0]
	// Segments include the country token itself at index 0 (it occupies
	// grammar slot 0, see pkg/grammar's reference table), matching
	// EncodePID's segment count for a given depth.
	segments := parts
	for i, seg := range segments {
		if seg == "" {
			return Components{}, fmt.Errorf("%w: empty segment at index %d", vyerr.ErrInvalidPIDFormat, i)
		}
		if !segmentToken.MatchString(strings.ToUpper(seg)) {
			return Components{}, fmt.Errorf("%w: segment %q at index %d is not a valid token", vyerr.ErrInvalidPIDFormat, seg, i)
		}
	}
	return Components{Country: country, Segments: segments}, nil
}

// ValidateAgainstGrammar confirms a decoded PID's shape is consistent
// with g: correct country, segment count within depth.
func ValidateAgainstGrammar(c Components, g grammar.Grammar) error {
	if !strings.EqualFold(c.Country, g.Country) {
		return fmt.Errorf("%w: pid country %s, grammar country %s", vyerr.ErrCountryMismatch, c.Country, g.Country)
	}
	if len(c.Segments) > g.Depth {
		return fmt.Errorf("%w: pid has %d segments, grammar depth is %d", vyerr.ErrStructureViolation, len(c.Segments), g.Depth)
	}
	return nil
}

// PIDComponents derives ZKP witness material from a normalized address
// and grammar by encoding it at depth with EncodePID and decoding the
// result with DecodePID (spec §4.B: pid_components).
func PIDComponents(n amf.NormalizedAddress, depth int, g grammar.Grammar) (Components, error) {
	p, err := EncodePID(n, depth, g)
	if err != nil {
		return Components{}, err
	}
	return DecodePID(p)
}
