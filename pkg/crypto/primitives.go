// Copyright 2025 Veyra Protocol
//
// Crypto primitives for the vey core: domain-separated hashing, HMAC,
// CSPRNG, and Ed25519 keygen/sign/verify.
//
// Domain separation. Every digest used by a higher-level package is
// computed as H(tag || payload) where tag is a fixed ASCII string unique
// to that use site (see the Domain* constants below). This keeps a
// collision in one protocol role from being replayable in another.
package crypto

import (
	"crypto/ed25519"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/veyra-network/vey-core/pkg/vyerr"
)

// Domain tags. One per protocol use site, per spec §4.A.
const (
	DomainMerkleLeaf   = "vey:merkle:leaf"
	DomainMerkleNode   = "vey:merkle:node"
	DomainVCCanonical  = "vey:vc:canonical"
	DomainPIDCommit    = "vey:pid:commit"
	DomainAddrReveal   = "vey:addr:reveal"
	DomainAddrVersion  = "vey:addr:version"
	DomainLocker       = "vey:locker:set"
	DomainResumeReveal = "vey:resume:reveal"
	DomainResumeSkill  = "vey:resume:skill"
	DomainNonce        = "vey:nonce"
)

const (
	PrivateKeySize = ed25519.PrivateKeySize
	PublicKeySize  = ed25519.PublicKeySize
	SignatureSize  = ed25519.SignatureSize
)

// Hash computes a domain-separated SHA-256 digest: H(domain || 0x00 || data).
// The NUL separator prevents a domain/data split ambiguity across call sites
// with variable-length domains.
func Hash(domain string, data []byte) [32]byte {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// HashConcat domain-separates and hashes the concatenation of parts.
func HashConcat(domain string, parts ...[]byte) [32]byte {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	for _, p := range parts {
		h.Write(p)
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// HMAC computes a domain-separated HMAC-SHA256 tag over data under key.
func HMAC(domain string, key, data []byte) [32]byte {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(domain))
	mac.Write([]byte{0x00})
	mac.Write(data)
	var out [32]byte
	copy(out[:], mac.Sum(nil))
	return out
}

// CSPRNG returns n cryptographically strong random bytes. An OS RNG
// failure is surfaced as ErrInternalCryptoFailure — per spec §4.A this is
// the one fatal-tier condition in the whole core.
func CSPRNG(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return nil, fmt.Errorf("%w: csprng read: %v", vyerr.ErrInternalCryptoFailure, err)
	}
	return buf, nil
}

// KeyPair is an Ed25519 signing key pair.
type KeyPair struct {
	PrivateKey ed25519.PrivateKey
	PublicKey  ed25519.PublicKey
}

// GenerateKeyPair generates a new Ed25519 key pair from the OS CSPRNG.
func GenerateKeyPair() (*KeyPair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("%w: ed25519 keygen: %v", vyerr.ErrInternalCryptoFailure, err)
	}
	return &KeyPair{PrivateKey: priv, PublicKey: pub}, nil
}

// Sign signs msg with sk, returning a 64-byte detached signature.
func Sign(sk ed25519.PrivateKey, msg []byte) ([]byte, error) {
	if len(sk) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("%w: private key must be %d bytes, got %d", vyerr.ErrUnsupportedKeyType, ed25519.PrivateKeySize, len(sk))
	}
	return ed25519.Sign(sk, msg), nil
}

// Verify checks sig over msg under pk. It never panics on malformed
// input: size mismatches and non-canonical encodings are rejected by
// returning false, matching Go's crypto/ed25519 which already performs
// canonical-encoding checks internally.
func Verify(pk ed25519.PublicKey, msg, sig []byte) bool {
	if len(pk) != ed25519.PublicKeySize || len(sig) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(pk, msg, sig)
}

// EncodeSig base64url-encodes (no padding) a signature or other binary
// blob for wire transport, per spec §6 ("base64url without padding").
func EncodeSig(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

// DecodeSig reverses EncodeSig.
func DecodeSig(s string) ([]byte, error) {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: base64url decode: %v", vyerr.ErrInvalidFormat, err)
	}
	return b, nil
}
