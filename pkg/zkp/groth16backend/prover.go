// Copyright 2025 Veyra Protocol
package groth16backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"sync"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"

	"github.com/veyra-network/vey-core/pkg/vyerr"
	"github.com/veyra-network/vey-core/pkg/zkp"
)

// Backend implements zkp.Backend over StructureCircuit, compiling and
// running a trusted Groth16 setup once on first use (grounded on the
// teacher's BLSZKProver.Initialize — here triggered lazily from Prove/
// Verify since zkp.Backend has no separate setup call).
type Backend struct {
	mu          sync.Mutex
	cs          constraint.ConstraintSystem
	pk          groth16.ProvingKey
	vk          groth16.VerifyingKey
	initialized bool
}

// New returns an uninitialized Backend; setup runs lazily on first
// Prove or Verify call.
func New() *Backend {
	return &Backend{}
}

func (b *Backend) ensureSetup() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.initialized {
		return nil
	}
	var circuit StructureCircuit
	cs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, &circuit)
	if err != nil {
		return fmt.Errorf("compile structure circuit: %w", err)
	}
	pk, vk, err := groth16.Setup(cs)
	if err != nil {
		return fmt.Errorf("groth16 setup: %w", err)
	}
	b.cs, b.pk, b.vk = cs, pk, vk
	b.initialized = true
	return nil
}

// Name implements zkp.Backend.
func (b *Backend) Name() string { return "groth16" }

// structureWitnessPayload is the JSON witness shape Prove expects:
// one segment string per occupied slot, in order. Only segment count
// (not content) is constrained in-circuit; see StructureCircuit.
type structureWitnessPayload struct {
	Segments []string `json:"segments"`
}

type structurePublicPayload struct {
	Depth     int    `json:"depth"`
	RulesHash string `json:"rulesHash"`
}

// Prove implements zkp.Backend for circuitID Groth16StructureCircuit.ID.
// publicInputs decodes as {depth, rulesHash}; witness decodes as a JSON
// structureWitnessPayload naming the (hidden) PID segments.
func (b *Backend) Prove(circuitID string, publicInputs, witness []byte) ([]byte, error) {
	if circuitID != zkp.Groth16StructureCircuit.ID {
		return nil, fmt.Errorf("%w: groth16 backend only serves %s", vyerr.ErrUnsupportedCircuit, zkp.Groth16StructureCircuit.ID)
	}
	if err := b.ensureSetup(); err != nil {
		return nil, err
	}

	var pub structurePublicPayload
	if err := json.Unmarshal(publicInputs, &pub); err != nil {
		return nil, fmt.Errorf("%w: decode public inputs: %v", vyerr.ErrProofMalformed, err)
	}
	var wit structureWitnessPayload
	if err := json.Unmarshal(witness, &wit); err != nil {
		return nil, fmt.Errorf("%w: decode witness: %v", vyerr.ErrProofMalformed, err)
	}
	if len(wit.Segments) != pub.Depth {
		return nil, fmt.Errorf("%w: witness has %d segments, public input declares depth %d", vyerr.ErrStructureViolation, len(wit.Segments), pub.Depth)
	}
	if len(wit.Segments) > MaxSlots {
		return nil, fmt.Errorf("%w: %d segments exceeds circuit capacity %d", vyerr.ErrStructureViolation, len(wit.Segments), MaxSlots)
	}

	rulesHashInt, ok := new(big.Int).SetString(pub.RulesHash, 16)
	if !ok {
		return nil, fmt.Errorf("%w: rulesHash is not valid hex", vyerr.ErrProofMalformed)
	}

	assignment := &StructureCircuit{Depth: pub.Depth, RulesHash: rulesHashInt}
	for i := 0; i < MaxSlots; i++ {
		if i < len(wit.Segments) {
			assignment.Occupied[i] = 1
			assignment.SegmentCommitments[i] = segmentCommitment(wit.Segments[i])
		} else {
			assignment.Occupied[i] = 0
			assignment.SegmentCommitments[i] = 0
		}
	}

	full, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField())
	if err != nil {
		return nil, fmt.Errorf("build witness: %w", err)
	}
	proof, err := groth16.Prove(b.cs, b.pk, full)
	if err != nil {
		return nil, fmt.Errorf("%w: groth16 prove: %v", vyerr.ErrProofMalformed, err)
	}

	var buf bytes.Buffer
	if _, err := proof.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("serialize proof: %w", err)
	}
	return buf.Bytes(), nil
}

// Verify implements zkp.Backend for circuitID Groth16StructureCircuit.ID.
func (b *Backend) Verify(circuitID string, publicInputs, artifact []byte) (bool, error) {
	if circuitID != zkp.Groth16StructureCircuit.ID {
		return false, fmt.Errorf("%w: groth16 backend only serves %s", vyerr.ErrUnsupportedCircuit, zkp.Groth16StructureCircuit.ID)
	}
	if err := b.ensureSetup(); err != nil {
		return false, err
	}

	var pub structurePublicPayload
	if err := json.Unmarshal(publicInputs, &pub); err != nil {
		return false, fmt.Errorf("%w: decode public inputs: %v", vyerr.ErrProofMalformed, err)
	}
	rulesHashInt, ok := new(big.Int).SetString(pub.RulesHash, 16)
	if !ok {
		return false, fmt.Errorf("%w: rulesHash is not valid hex", vyerr.ErrProofMalformed)
	}

	assignment := &StructureCircuit{Depth: pub.Depth, RulesHash: rulesHashInt}
	publicWitness, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return false, fmt.Errorf("build public witness: %w", err)
	}

	proof := groth16.NewProof(ecc.BN254)
	if _, err := proof.ReadFrom(bytes.NewReader(artifact)); err != nil {
		return false, fmt.Errorf("%w: malformed proof artifact: %v", vyerr.ErrProofMalformed, err)
	}

	if err := groth16.Verify(proof, b.vk, publicWitness); err != nil {
		return false, nil
	}
	return true, nil
}

// segmentCommitment maps a plaintext segment to a bounded field element
// via a small non-cryptographic fold; the real binding to segment
// content happens off-circuit in pkg/zkp/address's commitment hash,
// this only needs to be deterministic and collision-resistant enough
// to prevent trivial occupied-slot forgery within the test setup.
func segmentCommitment(s string) *big.Int {
	h := fnvFold(s)
	return new(big.Int).SetUint64(h)
}

func fnvFold(s string) uint64 {
	const offset64 = 14695981039346656037
	const prime64 = 1099511628211
	h := uint64(offset64)
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= prime64
	}
	return h
}
