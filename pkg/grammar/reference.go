// Copyright 2025 Veyra Protocol
//
// Reference country-data collaborator. Seeded with a representative
// slice of locales (not all ~200 the real protocol targets) — enough to
// exercise variable depth, optional slots, and the spec §8 worked
// example (JP-13-113-01). Country data proper is out of scope per
// spec §1 ("Country data files ... external collaborators"); this is a
// stand-in, not a claim of completeness.
package grammar

import (
	"fmt"

	"github.com/veyra-network/vey-core/pkg/vyerr"
)

const rulesVersionV1 = "v1"

// ReferenceTable is a small in-memory CountryData implementation.
type ReferenceTable struct {
	grammars map[string]Grammar
}

// NewReferenceTable builds the reference grammar table.
func NewReferenceTable() *ReferenceTable {
	t := &ReferenceTable{grammars: make(map[string]Grammar)}
	for _, g := range defaultGrammars() {
		t.grammars[g.Country] = g
	}
	return t
}

// Grammar implements CountryData.
func (t *ReferenceTable) Grammar(country string) (Grammar, error) {
	g, ok := t.grammars[country]
	if !ok {
		return Grammar{}, fmt.Errorf("%w: %s", vyerr.ErrUnknownCountry, country)
	}
	return g, nil
}

// Register adds or replaces a grammar, for tests or site-specific
// extension of the reference table.
func (t *ReferenceTable) Register(g Grammar) {
	t.grammars[g.Country] = g
}

func defaultGrammars() []Grammar {
	required := func(field string, maxLen int) Slot {
		return Slot{Field: field, Required: true, Case: CaseUpper, MaxLen: maxLen}
	}
	optional := func(field string, maxLen int) Slot {
		return Slot{Field: field, Required: false, Case: CaseNone, MaxLen: maxLen}
	}

	return []Grammar{
		{
			Country:      "JP",
			Depth:        8,
			RulesVersion: rulesVersionV1,
			Slots: []Slot{
				required("country", 2),
				required("admin1", 8),    // prefecture
				required("admin2", 16),   // city / ward
				optional("locality", 16), // chome
				optional("street", 8),    // block
				optional("building", 16),
				optional("unit", 8),
				optional("recipient", 32),
			},
		},
		{
			Country:      "US",
			Depth:        5,
			RulesVersion: rulesVersionV1,
			Slots: []Slot{
				required("country", 2),
				required("admin1", 2), // state
				required("locality", 24),
				required("postalCode", 10),
				optional("unit", 8),
			},
		},
		{
			Country:      "GB",
			Depth:        4,
			RulesVersion: rulesVersionV1,
			Slots: []Slot{
				required("country", 2),
				required("locality", 24),
				required("postalCode", 8),
				optional("unit", 8),
			},
		},
		{
			Country:      "DE",
			Depth:        4,
			RulesVersion: rulesVersionV1,
			Slots: []Slot{
				required("country", 2),
				required("postalCode", 5),
				required("locality", 24),
				optional("street", 24),
			},
		},
		{
			Country:      "FR",
			Depth:        4,
			RulesVersion: rulesVersionV1,
			Slots: []Slot{
				required("country", 2),
				required("postalCode", 5),
				required("locality", 24),
				optional("street", 24),
			},
		},
		{
			Country:      "BR",
			Depth:        6,
			RulesVersion: rulesVersionV1,
			Slots: []Slot{
				required("country", 2),
				required("admin1", 2), // state
				required("locality", 24),
				optional("admin2", 24), // district
				optional("postalCode", 9),
				optional("unit", 8),
			},
		},
		{
			Country:      "IN",
			Depth:        6,
			RulesVersion: rulesVersionV1,
			Slots: []Slot{
				required("country", 2),
				required("admin1", 24), // state
				required("admin2", 24), // district
				required("locality", 24),
				optional("postalCode", 6),
				optional("unit", 8),
			},
		},
		{
			Country:      "CN",
			Depth:        7,
			RulesVersion: rulesVersionV1,
			Slots: []Slot{
				required("country", 2),
				required("admin1", 16), // province
				required("admin2", 16), // city
				optional("locality", 16), // district
				optional("street", 16),
				optional("building", 16),
				optional("unit", 8),
			},
		},
		{
			Country:      "AU",
			Depth:        5,
			RulesVersion: rulesVersionV1,
			Slots: []Slot{
				required("country", 2),
				required("admin1", 3), // state
				required("locality", 24),
				required("postalCode", 4),
				optional("unit", 8),
			},
		},
		{
			Country:      "ZA",
			Depth:        4,
			RulesVersion: rulesVersionV1,
			Slots: []Slot{
				required("country", 2),
				required("admin1", 24),
				required("locality", 24),
				optional("postalCode", 4),
			},
		},
	}
}
