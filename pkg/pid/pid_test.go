// Copyright 2025 Veyra Protocol

package pid

import (
	"testing"

	"github.com/veyra-network/vey-core/pkg/amf"
	"github.com/veyra-network/vey-core/pkg/grammar"
)

func TestEncodeDecodeRoundTrip_JP(t *testing.T) {
	cd := grammar.NewReferenceTable()
	g, err := cd.Grammar("JP")
	if err != nil {
		t.Fatalf("grammar: %v", err)
	}
	raw := map[string]string{
		"country":  "jp",
		"province": "13",
		"city":     "113",
		"ward":     "01",
	}
	n, err := amf.Normalize(raw, "JP", cd)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}

	p, err := EncodePID(n, 4, g)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if string(p) != "JP-13-113-01" {
		t.Errorf("unexpected pid: %s", p)
	}

	c, err := DecodePID(p)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(c.Segments) != 4 {
		t.Errorf("expected 4 segments, got %d", len(c.Segments))
	}
	if err := ValidateAgainstGrammar(c, g); err != nil {
		t.Errorf("validate against grammar: %v", err)
	}
}

func TestEncodePID_DepthExceedsGrammar(t *testing.T) {
	cd := grammar.NewReferenceTable()
	g, _ := cd.Grammar("US")
	n := amf.NormalizedAddress{"country": "US", "admin1": "CA", "locality": "Mountain View", "postalCode": "94043"}
	if _, err := EncodePID(n, g.Depth+1, g); err == nil {
		t.Fatal("expected error for depth exceeding grammar")
	}
}

func TestDecodePID_InvalidFormat(t *testing.T) {
	for _, bad := range []PID{"", "jp-13", "US--12", "US-1-2-3-4-5-6-7-8-9"} {
		if _, err := DecodePID(bad); err == nil {
			t.Errorf("expected error decoding %q", bad)
		}
	}
}

func TestDepthForEveryCountry_RoundTrips(t *testing.T) {
	cd := grammar.NewReferenceTable()
	fixtures := map[string]map[string]string{
		"US": {"country": "US", "state": "CA", "city": "Mountain View", "postalcode": "94043"},
		"GB": {"country": "GB", "city": "London", "postalcode": "SW1A1AA"},
		"DE": {"country": "DE", "postalcode": "10115", "city": "Berlin"},
	}
	for country, raw := range fixtures {
		g, err := cd.Grammar(country)
		if err != nil {
			t.Fatalf("%s: grammar: %v", country, err)
		}
		n, err := amf.Normalize(raw, country, cd)
		if err != nil {
			t.Fatalf("%s: normalize: %v", country, err)
		}
		for d := 1; d <= g.Depth; d++ {
			p, err := EncodePID(n, d, g)
			if err != nil {
				continue // some depths require slots absent from this fixture
			}
			c, err := DecodePID(p)
			if err != nil {
				t.Fatalf("%s depth %d: decode: %v", country, d, err)
			}
			if len(c.Segments) != d {
				t.Errorf("%s depth %d: got %d segments", country, d, len(c.Segments))
			}
		}
	}
}
