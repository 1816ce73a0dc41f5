// Copyright 2025 Veyra Protocol
//
// Package amf is the Address Mapping Framework: it normalizes
// heterogeneous raw address input into the fixed semantic field set spec
// §3 defines, and denormalizes back to display lines. Normalization is
// not a trust boundary (spec §3) — it is a convenience layer consumed by
// pid.EncodePID to derive hierarchy segments.
package amf

import (
	"strings"
	"unicode"

	"github.com/veyra-network/vey-core/pkg/grammar"
	"github.com/veyra-network/vey-core/pkg/vyerr"
)

// Fields is the fixed semantic field set (spec §3).
var Fields = []string{
	"country", "admin1", "admin2", "locality", "postalCode",
	"street", "building", "unit", "recipient",
}

// NormalizedAddress maps semantic field names to their normalized
// values. Fields not present for the country grammar are absent.
type NormalizedAddress map[string]string

// aliasTable maps common raw input keys (lower-cased) onto one of the
// canonical Fields. Multiple raw keys may alias to the same field; when
// more than one alias is present in a single raw input, the longer/more
// specific candidate wins (see resolveConflict).
var aliasTable = map[string]string{
	"country": "country", "countrycode": "country",

	"province": "admin1", "state": "admin1", "region": "admin1", "prefecture": "admin1",

	"city": "admin2", "county": "admin2", "district": "admin2", "municipality": "admin2",

	"ward": "locality", "town": "locality", "suburb": "locality", "chome": "locality", "neighborhood": "locality",

	"postalcode": "postalCode", "postcode": "postalCode", "zip": "postalCode", "zipcode": "postalCode",

	"street": "street", "address1": "street", "line1": "street", "road": "street",

	"building": "building", "block": "building",

	"unit": "unit", "apartment": "unit", "apt": "unit", "suite": "unit", "room": "unit",

	"recipient": "recipient", "name": "recipient", "fullname": "recipient",
}

func init() {
	// Canonical field names are themselves valid raw keys, so that
	// Denormalize's output round-trips through Normalize unchanged
	// (spec §3: "normalize(denormalize(x)) == x for well-formed x").
	for _, f := range Fields {
		key := strings.ToLower(f)
		if _, ok := aliasTable[key]; !ok {
			aliasTable[key] = f
		}
	}
}

// Normalize maps raw, heterogeneous address input onto the fixed
// semantic field set using countryHint (falling back to raw["country"])
// to look up the country grammar, then rejecting fields that grammar
// requires but the input lacks.
func Normalize(raw map[string]string, countryHint string, cd grammar.CountryData) (NormalizedAddress, error) {
	country := strings.ToUpper(strings.TrimSpace(countryHint))
	if country == "" {
		country = strings.ToUpper(strings.TrimSpace(raw["country"]))
	}
	if country == "" {
		return nil, vyerr.ErrUnknownCountry
	}
	g, err := cd.Grammar(country)
	if err != nil {
		return nil, err
	}

	slots := make(map[string]bool, len(g.Slots))
	for _, s := range g.Slots {
		slots[s.Field] = true
	}

	// Group raw values by canonical field, to resolve alias conflicts. A
	// city-level key fills admin2 where the grammar has that slot and
	// locality otherwise.
	candidates := make(map[string][]string)
	for k, v := range raw {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		canon, ok := aliasTable[strings.ToLower(strings.TrimSpace(k))]
		if !ok {
			continue
		}
		if canon == "admin2" && !slots["admin2"] && slots["locality"] {
			canon = "locality"
		}
		candidates[canon] = append(candidates[canon], v)
	}
	candidates["country"] = []string{country}

	out := make(NormalizedAddress)
	for _, field := range Fields {
		vals := candidates[field]
		if len(vals) == 0 || !slots[field] {
			continue
		}
		out[field] = resolveConflict(vals)
	}

	// Required-slot check against the grammar's full slot set (not just
	// the encoding depth, which is chosen later at EncodePID time).
	for _, slot := range g.Slots {
		if slot.Required {
			if _, ok := out[slot.Field]; !ok {
				return nil, &InvalidFieldError{Field: slot.Field}
			}
		}
	}
	return out, nil
}

// InvalidFieldError names the missing/invalid field for caller context
// (spec §7: "structured context: what field, what expected, what
// observed").
type InvalidFieldError struct {
	Field string
}

func (e *InvalidFieldError) Error() string {
	return "amf: required field missing: " + e.Field
}

func (e *InvalidFieldError) Unwrap() error { return vyerr.ErrInvalidField }

// resolveConflict implements spec §4.B's tie-break: prefer the longer
// (more specific) token; on exact length tie, prefer the one with a
// numeric component; otherwise lexicographically smallest.
func resolveConflict(vals []string) string {
	if len(vals) == 1 {
		return vals[0]
	}
	best := vals[0]
	for _, v := range vals[1:] {
		if better(v, best) {
			best = v
		}
	}
	return best
}

func better(a, b string) bool {
	if len(a) != len(b) {
		return len(a) > len(b)
	}
	aNum, bNum := hasDigit(a), hasDigit(b)
	if aNum != bNum {
		return aNum
	}
	return a < b
}

func hasDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// Denormalize returns the raw field map backing n, keyed by canonical
// field name. Not a trust boundary (spec §3) — it exists so a caller can
// redisplay or re-submit an address; round-tripping it back through
// Normalize with the same countryHint reproduces n exactly, since
// canonical field names are themselves valid raw aliases (see init
// above).
func Denormalize(n NormalizedAddress) map[string]string {
	out := make(map[string]string, len(n))
	for k, v := range n {
		out[k] = v
	}
	return out
}

// DisplayLines renders a normalized address as human-facing lines, most
// specific first. Purely cosmetic — never parsed back.
func DisplayLines(n NormalizedAddress) []string {
	order := []string{"recipient", "building", "unit", "street", "locality", "admin2", "admin1", "postalCode", "country"}
	lines := make([]string, 0, len(order))
	for _, f := range order {
		if v, ok := n[f]; ok && v != "" {
			lines = append(lines, v)
		}
	}
	return lines
}

// Keys returns the set fields of n in Fields order, for deterministic
// iteration (commitment building, selective reveal).
func (n NormalizedAddress) Keys() []string {
	keys := make([]string, 0, len(n))
	for _, f := range Fields {
		if _, ok := n[f]; ok {
			keys = append(keys, f)
		}
	}
	return keys
}
