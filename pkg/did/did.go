// Copyright 2025 Veyra Protocol
//
// Package did builds minimal DID documents per spec §3/§6: did:key
// (public key embedded) and did:web (HTTPS-resolvable) methods, with
// resolution delegated to the Keystore collaborator.
package did

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// VerificationMethod is one entry in a DID document's method list.
type VerificationMethod struct {
	ID                 string `json:"id"`
	Controller         string `json:"controller"`
	Type               string `json:"type"`
	PublicKeyMultibase string `json:"publicKeyMultibase"`
}

// Document is a DID document: a subject with verification methods and
// the lists of method-ids authorized for authentication and assertion
// (credential signing).
type Document struct {
	ID                 string                `json:"id"`
	VerificationMethod []VerificationMethod  `json:"verificationMethod"`
	Authentication     []string              `json:"authentication"`
	AssertionMethod     []string             `json:"assertionMethod"`
}

// KeyType is the verification method's key type. Ed25519Signature2020
// (spec §3) implies an Ed25519VerificationKey2020 method.
const KeyType = "Ed25519VerificationKey2020"

// multibaseEd25519 base64url-encodes pk with a 'z' multibase prefix
// (simplified multibase — real multibase is base58btc, but base64url
// keeps this dependency-free while preserving the documented shape: a
// single-character encoding tag followed by the encoded key).
func multibaseEd25519(pk []byte) string {
	return "z" + base64.RawURLEncoding.EncodeToString(pk)
}

// NewDocument builds a DID document for subject with one verification
// method, id "{did}#key-1", authorized for both authentication and
// assertion (spec §4.C: did_document).
func NewDocument(subjectDID string, publicKey []byte) Document {
	vmID := fmt.Sprintf("%s#key-1", subjectDID)
	vm := VerificationMethod{
		ID:                 vmID,
		Controller:         subjectDID,
		Type:               KeyType,
		PublicKeyMultibase: multibaseEd25519(publicKey),
	}
	return Document{
		ID:                 subjectDID,
		VerificationMethod: []VerificationMethod{vm},
		Authentication:     []string{vmID},
		AssertionMethod:    []string{vmID},
	}
}

// ResolveVerificationMethod finds the verification method within doc
// whose full ID (e.g. "did:key:z...#key-1") equals vmID, reporting false
// when none matches.
func (d Document) ResolveVerificationMethod(vmID string) (VerificationMethod, bool) {
	for _, vm := range d.VerificationMethod {
		if vm.ID == vmID {
			return vm, true
		}
	}
	return VerificationMethod{}, false
}

// SplitVerificationMethod splits "did:...#fragment" into its did and
// fragment parts.
func SplitVerificationMethod(vmID string) (did, fragment string, ok bool) {
	idx := strings.LastIndex(vmID, "#")
	if idx < 0 {
		return "", "", false
	}
	return vmID[:idx], vmID[idx+1:], true
}

// Method identifies the DID method in use.
type Method string

const (
	MethodKey Method = "key"
	MethodWeb Method = "web"
)

// ParseMethod extracts the method segment from a DID string
// ("did:key:..." / "did:web:...").
func ParseMethod(didStr string) (Method, error) {
	parts := strings.SplitN(didStr, ":", 3)
	if len(parts) < 3 || parts[0] != "did" {
		return "", fmt.Errorf("did: malformed identifier %q", didStr)
	}
	switch parts[1] {
	case "key":
		return MethodKey, nil
	case "web":
		return MethodWeb, nil
	default:
		return "", fmt.Errorf("did: unsupported method %q", parts[1])
	}
}
