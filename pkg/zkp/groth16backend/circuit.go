// Copyright 2025 Veyra Protocol
//
// Package groth16backend implements zkp.Backend for the address
// structure pattern (spec §4.D.2) with a real Groth16 arithmetic
// circuit, grounded on the teacher's commitment-based simplified
// circuit (pkg/crypto/bls_zkp/circuit.go's SimpleBLSCircuit): fixed-size
// array of field-element commitments plus a boolean occupancy mask,
// rather than a full in-circuit string grammar (out of scope per
// SPEC_FULL.md's domain-stack decision — variable-length Merkle paths
// and free-form reveal maps stay on zkp.TestBackend; only the
// bounded-arity structure relation gets a real circuit).
package groth16backend

import (
	"github.com/consensys/gnark/frontend"
)

// MaxSlots bounds the number of segment slots the circuit reasons
// about; pkg/pid.MaxDepth names the same bound at the protocol layer.
const MaxSlots = 8

// StructureCircuit proves that a PID's segment commitments occupy
// exactly Depth of MaxSlots positions and the rest are held at zero —
// i.e. the prover built exactly `Depth` segments, without revealing the
// segment contents. RulesHash is carried as a public input so the
// verifier binds the proof to a specific grammar revision, but the
// grammar itself is not reasoned about in-circuit (out of scope per
// SPEC_FULL.md's domain-stack decision); only its non-zero presence is
// constrained here.
type StructureCircuit struct {
	// Public inputs.
	Depth     frontend.Variable `gnark:",public"`
	RulesHash frontend.Variable `gnark:",public"`

	// Private inputs: one field-element commitment per slot (zero for
	// unoccupied slots) and a parallel boolean occupancy mask.
	SegmentCommitments [MaxSlots]frontend.Variable
	Occupied           [MaxSlots]frontend.Variable
}

// Define implements the circuit constraints.
func (c *StructureCircuit) Define(api frontend.API) error {
	count := frontend.Variable(0)
	for i := 0; i < MaxSlots; i++ {
		api.AssertIsBoolean(c.Occupied[i])
		count = api.Add(count, c.Occupied[i])

		// Unoccupied slots must carry a zero commitment, so a prover
		// cannot smuggle segment material past the declared depth.
		api.AssertIsEqual(api.Mul(api.Sub(1, c.Occupied[i]), c.SegmentCommitments[i]), 0)
	}
	api.AssertIsEqual(count, c.Depth)

	// RulesHash has no in-circuit relation to the segment commitments;
	// it is bound to the proof only as a public input the verifier
	// checks against out-of-circuit (pkg/zkp/address.VerifyStructure).
	// Here it is only required to be set.
	api.AssertIsDifferent(c.RulesHash, 0)

	return nil
}
