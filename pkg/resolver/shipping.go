package resolver

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/veyra-network/vey-core/pkg/grammar"
	"github.com/veyra-network/vey-core/pkg/merkle"
	vcrypto "github.com/veyra-network/vey-core/pkg/crypto"
	"github.com/veyra-network/vey-core/pkg/pid"
	"github.com/veyra-network/vey-core/pkg/vyerr"
	"github.com/veyra-network/vey-core/pkg/zkp"
	"github.com/veyra-network/vey-core/pkg/zkp/address"
)

// DefaultSkew is the default timestamp-skew tolerance for shipping
// requests, configurable per spec §9 Open Question (b).
const DefaultSkew = 5 * time.Minute

// ShipmentMetadata is the carrier-visible metadata a waybill carries
// (spec §4.G Waybill).
type ShipmentMetadata struct {
	Weight      float64 `json:"weight,omitempty"`
	Size        string  `json:"size,omitempty"`
	CarrierInfo string  `json:"carrierInfo,omitempty"`
}

// Conditions gates a shipping request against the clear address data.
// Absent constraints are vacuously true (spec §4.G).
type Conditions struct {
	AllowedCountries []string `json:"allowedCountries,omitempty"`
	AllowedRegions   []string `json:"allowedRegions,omitempty"`
	WeightMax        *float64 `json:"weightMax,omitempty"`
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// evaluate checks c against addressData (semantic AMF fields) and meta.
func (c Conditions) evaluate(addressData map[string]string, meta ShipmentMetadata) error {
	if len(c.AllowedCountries) > 0 && !contains(c.AllowedCountries, addressData["country"]) {
		return fmt.Errorf("%w: country %q not in allowed set", vyerr.ErrAccessDenied, addressData["country"])
	}
	if len(c.AllowedRegions) > 0 && !contains(c.AllowedRegions, addressData["admin1"]) {
		return fmt.Errorf("%w: region %q not in allowed set", vyerr.ErrAccessDenied, addressData["admin1"])
	}
	if c.WeightMax != nil && meta.Weight > *c.WeightMax {
		return fmt.Errorf("%w: weight %.3f exceeds max %.3f", vyerr.ErrAccessDenied, meta.Weight, *c.WeightMax)
	}
	return nil
}

// ShippingRequest is the input to ValidateShipping (spec §4.G).
type ShippingRequest struct {
	PID           pid.PID          `json:"pid"`
	UserSignature []byte           `json:"userSignature"`
	Conditions    Conditions       `json:"conditions"`
	RequesterID   string           `json:"requesterId"`
	Metadata      ShipmentMetadata `json:"metadata,omitempty"`
	Timestamp     time.Time        `json:"timestamp"`
}

// CompositeProof bundles the membership and structure proofs a
// successful shipping validation produces, together with a fresh random
// nonce. Both proofs are generated without the nonce, so it is carried
// beside them and is not bound into either proof.
type CompositeProof struct {
	Nonce      string    `json:"nonce"`
	Membership zkp.Proof `json:"membership"`
	Structure  zkp.Proof `json:"structure"`
}

// PIDToken is an opaque bearer over a CompositeProof (spec §4.G
// "pidToken"). It is not a capability credential by itself: holders
// must still pass the access-control policy check in Resolve.
type PIDToken string

// NewPIDToken encodes composite as an opaque base64url bearer token.
func NewPIDToken(composite CompositeProof) (PIDToken, error) {
	b, err := json.Marshal(composite)
	if err != nil {
		return "", fmt.Errorf("resolver: encode pid token: %w", err)
	}
	return PIDToken(base64.RawURLEncoding.EncodeToString(b)), nil
}

// Decode recovers the CompositeProof a token carries.
func (t PIDToken) Decode() (CompositeProof, error) {
	raw, err := base64.RawURLEncoding.DecodeString(string(t))
	if err != nil {
		return CompositeProof{}, fmt.Errorf("%w: pid token is not valid base64url: %v", vyerr.ErrInvalidFormat, err)
	}
	var composite CompositeProof
	if err := json.Unmarshal(raw, &composite); err != nil {
		return CompositeProof{}, fmt.Errorf("%w: pid token payload: %v", vyerr.ErrInvalidFormat, err)
	}
	return composite, nil
}

// ShippingResult is the outcome of ValidateShipping.
type ShippingResult struct {
	Valid    bool     `json:"valid"`
	ZKProof  CompositeProof `json:"zkProof,omitempty"`
	PIDToken PIDToken `json:"pidToken,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// ValidateShipping translates req into a composite proof and pidToken,
// or a policy/staleness/structure denial (spec §4.G). addressData is the
// clear address supplied by the user's agent (never the carrier); tree
// is the issuer's accepted-PID Merkle tree used for the membership leg.
func ValidateShipping(backend zkp.Backend, tree *merkle.Tree, g grammar.Grammar, req ShippingRequest, addressData map[string]string, now time.Time, maxSkew time.Duration) (ShippingResult, error) {
	if maxSkew <= 0 {
		maxSkew = DefaultSkew
	}

	skew := now.Sub(req.Timestamp)
	if skew < 0 {
		skew = -skew
	}
	if skew > maxSkew {
		return ShippingResult{Valid: false, Error: vyerr.ErrStaleRequest.Error()}, nil
	}

	components, err := pid.DecodePID(req.PID)
	if err != nil {
		return ShippingResult{Valid: false, Error: err.Error()}, nil
	}
	if err := pid.ValidateAgainstGrammar(components, g); err != nil {
		return ShippingResult{Valid: false, Error: err.Error()}, nil
	}

	if err := req.Conditions.evaluate(addressData, req.Metadata); err != nil {
		return ShippingResult{Valid: false, Error: err.Error()}, nil
	}

	nonce, err := vcrypto.CSPRNG(16)
	if err != nil {
		return ShippingResult{}, fmt.Errorf("%w: %v", vyerr.ErrInternalCryptoFailure, err)
	}

	membershipProof, err := address.GenerateMembership(backend, tree, req.PID)
	if err != nil {
		return ShippingResult{Valid: false, Error: err.Error()}, nil
	}
	structureProof, err := address.GenerateStructure(backend, g, req.PID)
	if err != nil {
		return ShippingResult{Valid: false, Error: err.Error()}, nil
	}

	composite := CompositeProof{
		Nonce:      base64.RawURLEncoding.EncodeToString(nonce),
		Membership: membershipProof,
		Structure:  structureProof,
	}
	token, err := NewPIDToken(composite)
	if err != nil {
		return ShippingResult{}, err
	}

	return ShippingResult{Valid: true, ZKProof: composite, PIDToken: token}, nil
}
