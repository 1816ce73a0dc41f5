// Copyright 2025 Veyra Protocol
//
// Canonicalization for verifiable credentials: a deterministic
// serialization with sorted object keys, used identically on sign and
// verify (spec §4.C). Grounded on the teacher's pkg/commitment
// CanonicalizeJSON (recursive key-sort-then-marshal), domain-separated
// with the "vey:vc:canonical" tag mandated by spec §4.C.
package vc

import (
	"encoding/json"
	"sort"

	vcrypto "github.com/veyra-network/vey-core/pkg/crypto"
)

// canonicalizeValue recursively sorts map keys; arrays retain source
// order (spec §4.C: "arrays in source order").
func canonicalizeValue(v interface{}) interface{} {
	switch vv := v.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(vv))
		for k := range vv {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		ordered := make(map[string]interface{}, len(vv))
		for _, k := range keys {
			ordered[k] = canonicalizeValue(vv[k])
		}
		return ordered
	case []interface{}:
		out := make([]interface{}, len(vv))
		for i, e := range vv {
			out[i] = canonicalizeValue(e)
		}
		return out
	default:
		return vv
	}
}

// canonicalizeJSON takes arbitrary JSON bytes and returns a
// deterministic re-encoding with sorted object keys.
func canonicalizeJSON(raw []byte) ([]byte, error) {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return json.Marshal(canonicalizeValue(v))
}

// canonicalBytes returns the domain-separated canonical byte form of vc
// with its proof block excluded, for signing and verification.
func canonicalBytes(credential VerifiableCredential) ([]byte, error) {
	credential.Proof = nil
	raw, err := json.Marshal(credential)
	if err != nil {
		return nil, err
	}
	canon, err := canonicalizeJSON(raw)
	if err != nil {
		return nil, err
	}
	tagged := append([]byte(vcrypto.DomainVCCanonical+"\x00"), canon...)
	return tagged, nil
}
