// Copyright 2025 Veyra Protocol
//
// Package vyerr collects the sentinel error kinds shared across the vey
// core packages (pid, vc, zkp, revocation, resolver, provider). Every
// component wraps one of these with fmt.Errorf("...: %w", ...) so callers
// can errors.Is against a single identity set instead of each package
// minting its own.
package vyerr

import "errors"

var (
	// Format / parsing
	ErrInvalidFormat   = errors.New("invalid format")
	ErrUnknownCountry  = errors.New("unknown country")
	ErrInvalidField    = errors.New("invalid field")
	ErrInvalidPIDFormat = errors.New("invalid pid format")

	// Grammar / structure
	ErrCountryMismatch   = errors.New("country mismatch")
	ErrRulesHashMismatch = errors.New("rules hash mismatch")
	ErrStructureViolation = errors.New("structure violation")

	// Signing / keys
	ErrSignatureInvalid  = errors.New("signature invalid")
	ErrKeyNotFound       = errors.New("key not found")
	ErrUnsupportedKeyType = errors.New("unsupported key type")

	// Credential lifecycle
	ErrCredentialExpired      = errors.New("credential expired")
	ErrCredentialNotYetValid  = errors.New("credential not yet valid")
	ErrSubjectMismatch        = errors.New("subject mismatch")
	ErrMissingIssuanceDate    = errors.New("credential missing issuance date")

	// Revocation / resolution
	ErrRevoked       = errors.New("pid revoked")
	ErrNoMigration   = errors.New("no migration on record")
	ErrStaleRequest  = errors.New("stale request")
	ErrAccessDenied  = errors.New("access denied")
	ErrUnsupportedCircuit = errors.New("unsupported circuit")

	// Proof contracts
	ErrProofMalformed  = errors.New("proof malformed")
	ErrProofRejected   = errors.New("proof rejected")
	ErrCircuitMismatch = errors.New("circuit mismatch")

	// Résumé patterns
	ErrNoQualifyingSkills = errors.New("no qualifying skills")
	ErrMissingVerifierDID = errors.New("missing verifier did")
	ErrMembershipNotFound = errors.New("membership not found")

	// Fatal-tier: RNG / primitive faults only. The only error kind this
	// package allows a caller to treat as process-terminating.
	ErrInternalCryptoFailure = errors.New("internal crypto failure")
)
