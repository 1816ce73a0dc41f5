// Copyright 2025 Veyra Protocol

package amf

import (
	"reflect"
	"testing"

	"github.com/veyra-network/vey-core/pkg/grammar"
)

func TestNormalize_JP(t *testing.T) {
	cd := grammar.NewReferenceTable()
	raw := map[string]string{
		"country":  "jp",
		"province": "13",
		"city":     "Shibuya",
		"ward":     "Ebisu",
		"block":    "1",
	}
	n, err := Normalize(raw, "JP", cd)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if n["country"] != "JP" || n["admin1"] != "13" || n["admin2"] != "Shibuya" {
		t.Errorf("unexpected normalized address: %+v", n)
	}
}

func TestNormalize_MissingRequiredField(t *testing.T) {
	cd := grammar.NewReferenceTable()
	_, err := Normalize(map[string]string{"country": "US"}, "US", cd)
	if err == nil {
		t.Fatal("expected error for missing required fields")
	}
}

func TestNormalize_UnknownCountry(t *testing.T) {
	cd := grammar.NewReferenceTable()
	_, err := Normalize(map[string]string{"country": "ZZ"}, "ZZ", cd)
	if err == nil {
		t.Fatal("expected error for unknown country")
	}
}

func TestRoundTrip_NormalizeDenormalize(t *testing.T) {
	cd := grammar.NewReferenceTable()
	raw := map[string]string{
		"country":    "US",
		"state":      "CA",
		"city":       "Mountain View",
		"postalcode": "94043",
	}
	n, err := Normalize(raw, "US", cd)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	rawBack := Denormalize(n)
	n2, err := Normalize(rawBack, "US", cd)
	if err != nil {
		t.Fatalf("re-normalize: %v", err)
	}
	if !reflect.DeepEqual(n, n2) {
		t.Errorf("round trip mismatch: %+v != %+v", n, n2)
	}
}

func TestResolveConflict_PrefersLongerThenNumericThenLex(t *testing.T) {
	if got := resolveConflict([]string{"a", "ab"}); got != "ab" {
		t.Errorf("expected longer token to win, got %q", got)
	}
	if got := resolveConflict([]string{"abc", "ab1"}); got != "ab1" {
		t.Errorf("expected numeric token to win on tie, got %q", got)
	}
	if got := resolveConflict([]string{"bbb", "aaa"}); got != "aaa" {
		t.Errorf("expected lexicographically smaller token to win, got %q", got)
	}
}
