// Copyright 2025 Veyra Protocol
package address

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/veyra-network/vey-core/pkg/grammar"
	"github.com/veyra-network/vey-core/pkg/pid"
	"github.com/veyra-network/vey-core/pkg/vyerr"
	"github.com/veyra-network/vey-core/pkg/zkp"
)

// StructurePublicInputs is published with a structure proof (spec
// §4.D.2): the declared country, segment depth, and a digest of the
// grammar revision the prover built against.
type StructurePublicInputs struct {
	Country   string `json:"country"`
	Depth     int    `json:"depth"`
	RulesHash string `json:"rulesHash"`
}

type structureWitness struct {
	Segments []string `json:"segments"`
}

// GenerateStructure proves that candidate's components conform to g
// (spec §4.D.2). The segment values themselves are the private witness;
// only their count and the grammar's rules hash are published.
func GenerateStructure(backend zkp.Backend, g grammar.Grammar, candidate pid.PID) (zkp.Proof, error) {
	components, err := pid.DecodePID(candidate)
	if err != nil {
		return zkp.Proof{}, err
	}
	if err := pid.ValidateAgainstGrammar(components, g); err != nil {
		return zkp.Proof{}, err
	}
	segments := components.Segments
	for i, seg := range segments {
		if i >= len(g.Slots) {
			break
		}
		slot := g.Slots[i]
		if slot.MaxLen > 0 && len(seg) > slot.MaxLen {
			return zkp.Proof{}, fmt.Errorf("%w: segment %d exceeds slot max length %d", vyerr.ErrStructureViolation, i, slot.MaxLen)
		}
	}

	rh := g.RulesHash()
	pub := StructurePublicInputs{Country: g.Country, Depth: len(segments), RulesHash: hex.EncodeToString(rh[:])}
	pubBytes, err := json.Marshal(pub)
	if err != nil {
		return zkp.Proof{}, err
	}
	wit := structureWitness{Segments: segments}
	witBytes, err := json.Marshal(wit)
	if err != nil {
		return zkp.Proof{}, err
	}
	circuit := zkp.TestCircuit
	if backend.Name() == "groth16" {
		circuit = zkp.Groth16StructureCircuit
	}
	artifact, err := backend.Prove(circuit.ID, pubBytes, witBytes)
	if err != nil {
		return zkp.Proof{}, err
	}

	return zkp.Proof{
		Pattern:      zkp.PatternAddressStructure,
		Circuit:      circuit,
		CreatedAt:    time.Now().UTC(),
		PublicInputs: pubBytes,
		Artifact:     artifact,
	}, nil
}

// VerifyStructure checks p against the verifier's current grammar for
// the declared country (spec §4.D.2): rules-hash equality, depth bound,
// and — when backend can re-verify the artifact (Groth16) — the circuit
// itself.
func VerifyStructure(backend zkp.Backend, p zkp.Proof, g grammar.Grammar) error {
	if err := p.RequirePattern(zkp.PatternAddressStructure); err != nil {
		return err
	}
	var pub StructurePublicInputs
	if err := p.DecodePublicInputs(&pub); err != nil {
		return err
	}
	if !strings.EqualFold(pub.Country, g.Country) {
		return fmt.Errorf("%w: proof country %s does not match verifier country %s", vyerr.ErrCountryMismatch, pub.Country, g.Country)
	}
	rh := g.RulesHash()
	if pub.RulesHash != hex.EncodeToString(rh[:]) {
		return fmt.Errorf("%w: proof was generated under a different grammar revision", vyerr.ErrRulesHashMismatch)
	}
	if pub.Depth > g.Depth {
		return fmt.Errorf("%w: declared depth %d exceeds grammar depth %d", vyerr.ErrStructureViolation, pub.Depth, g.Depth)
	}
	pubBytes, err := json.Marshal(pub)
	if err != nil {
		return err
	}
	ok, err := backend.Verify(p.Circuit.ID, pubBytes, p.Artifact)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: structure circuit did not verify", vyerr.ErrProofRejected)
	}
	return nil
}
