// Copyright 2025 Veyra Protocol

package address

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/veyra-network/vey-core/pkg/grammar"
	"github.com/veyra-network/vey-core/pkg/merkle"
	"github.com/veyra-network/vey-core/pkg/pid"
	"github.com/veyra-network/vey-core/pkg/revocation"
	"github.com/veyra-network/vey-core/pkg/vyerr"
	"github.com/veyra-network/vey-core/pkg/zkp"
)

func buildPIDTree(t *testing.T, pids []pid.PID) *merkle.Tree {
	t.Helper()
	leaves := make([][]byte, len(pids))
	for i, p := range pids {
		leaves[i] = merkle.LeafHash([]byte(p))
	}
	tree, err := merkle.Build(leaves)
	if err != nil {
		t.Fatalf("build tree: %v", err)
	}
	return tree
}

func TestMembership_GenerateVerify(t *testing.T) {
	backend := zkp.NewTestBackend()
	pids := []pid.PID{"JP-13-113-01", "JP-13-113-02", "US-CA-SF-01"}
	tree := buildPIDTree(t, pids)

	proof, err := GenerateMembership(backend, tree, "JP-13-113-02")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if err := VerifyMembership(proof, tree.RootHex()); err != nil {
		t.Fatalf("verify: %v", err)
	}
}

func TestMembership_NotFound(t *testing.T) {
	backend := zkp.NewTestBackend()
	tree := buildPIDTree(t, []pid.PID{"JP-13-113-01"})
	if _, err := GenerateMembership(backend, tree, "US-CA-SF-01"); !errors.Is(err, vyerr.ErrMembershipNotFound) {
		t.Errorf("expected ErrMembershipNotFound, got %v", err)
	}
}

func TestMembership_WrongRootRejected(t *testing.T) {
	backend := zkp.NewTestBackend()
	tree := buildPIDTree(t, []pid.PID{"JP-13-113-01", "JP-13-113-02"})
	other := buildPIDTree(t, []pid.PID{"US-CA-SF-01", "US-CA-SF-02"})

	proof, err := GenerateMembership(backend, tree, "JP-13-113-01")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if err := VerifyMembership(proof, other.RootHex()); !errors.Is(err, vyerr.ErrProofRejected) {
		t.Errorf("expected ErrProofRejected, got %v", err)
	}
}

func TestMembership_ForgedLeafRejected(t *testing.T) {
	backend := zkp.NewTestBackend()
	tree := buildPIDTree(t, []pid.PID{"JP-13-113-01", "JP-13-113-02"})

	proof, err := GenerateMembership(backend, tree, "JP-13-113-01")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	var pub MembershipPublicInputs
	if err := proof.DecodePublicInputs(&pub); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// An adversary republishes the real root with a commitment to a leaf
	// that was never in the tree, reusing the genuine path unchanged.
	forged := merkle.LeafHash([]byte("US-CA-SF-99"))
	pub.LeafCommitment = hex.EncodeToString(forged)
	pubBytes, err := json.Marshal(pub)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	proof.PublicInputs = pubBytes

	if err := VerifyMembership(proof, tree.RootHex()); !errors.Is(err, vyerr.ErrProofRejected) {
		t.Fatalf("expected ErrProofRejected for a forged leaf commitment, got %v", err)
	}
}

func jpGrammar() grammar.Grammar {
	t := grammar.NewReferenceTable()
	g, _ := t.Grammar("JP")
	return g
}

func TestStructure_GenerateVerify(t *testing.T) {
	backend := zkp.NewTestBackend()
	g := jpGrammar()

	proof, err := GenerateStructure(backend, g, "JP-13-113-01")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if err := VerifyStructure(backend, proof, g); err != nil {
		t.Fatalf("verify: %v", err)
	}
}

func TestStructure_RulesHashMismatch(t *testing.T) {
	backend := zkp.NewTestBackend()
	g := jpGrammar()
	proof, err := GenerateStructure(backend, g, "JP-13-113-01")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	newer := g
	newer.RulesVersion = "v2"
	if err := VerifyStructure(backend, proof, newer); !errors.Is(err, vyerr.ErrRulesHashMismatch) {
		t.Errorf("expected ErrRulesHashMismatch, got %v", err)
	}
}

func TestSelectiveReveal_GenerateVerify(t *testing.T) {
	backend := zkp.NewTestBackend()
	full := map[string]string{
		"country":  "JP",
		"admin1":   "13",
		"admin2":   "113",
		"locality": "01",
		"street":   "Sakura 4-2",
	}
	proof, err := GenerateSelectiveReveal(backend, full, []string{"country", "admin1"}, nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	hidden := map[string]string{}
	for _, f := range []string{"admin2", "locality", "street"} {
		fc := fieldCommitment(f, full[f])
		hidden[f] = hex.EncodeToString(fc[:])
	}
	if err := VerifySelectiveReveal(proof, hidden); err != nil {
		t.Fatalf("verify: %v", err)
	}
}

func TestSelectiveReveal_NonceDiffersAcrossProofs(t *testing.T) {
	backend := zkp.NewTestBackend()
	full := map[string]string{"country": "JP"}
	p1, err := GenerateSelectiveReveal(backend, full, []string{"country"}, nil)
	if err != nil {
		t.Fatalf("generate 1: %v", err)
	}
	p2, err := GenerateSelectiveReveal(backend, full, []string{"country"}, nil)
	if err != nil {
		t.Fatalf("generate 2: %v", err)
	}
	var pub1, pub2 SelectiveRevealPublicInputs
	if err := p1.DecodePublicInputs(&pub1); err != nil {
		t.Fatal(err)
	}
	if err := p2.DecodePublicInputs(&pub2); err != nil {
		t.Fatal(err)
	}
	if pub1.DisclosureNonce == pub2.DisclosureNonce {
		t.Error("expected independent proofs to draw independent nonces")
	}
}

func TestVersion_GenerateVerify(t *testing.T) {
	backend := zkp.NewTestBackend()
	t0 := time.Now().UTC()
	list := revocation.NewList("did:web:issuer", t0, []revocation.Entry{
		{PID: "JP-13-113-01", RevokedAt: t0, Reason: revocation.ReasonAddressChange, NewPID: "JP-14-201-05"},
	})

	proof, err := GenerateVersion(backend, "did:key:zUser", "JP-13-113-01", "JP-14-201-05", "fingerprint", t0.Add(time.Minute))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if err := VerifyVersion(proof, list); err != nil {
		t.Fatalf("verify: %v", err)
	}

	empty := revocation.NewList("did:web:issuer", t0, nil)
	if err := VerifyVersion(proof, empty); !errors.Is(err, vyerr.ErrProofRejected) {
		t.Errorf("expected ErrProofRejected after entry removal, got %v", err)
	}
}

func TestLocker_GenerateVerify(t *testing.T) {
	backend := zkp.NewTestBackend()
	lockers := []string{"L-001", "L-002", "L-003"}
	leaves := make([][]byte, len(lockers))
	for i, l := range lockers {
		leaves[i] = LockerLeafHash(l)
	}
	tree, err := merkle.Build(leaves)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	proof, err := GenerateLocker(backend, tree, "FAC-1", "ZONE-A", "L-002")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if err := VerifyLocker(proof, "FAC-1", "ZONE-A", tree.RootHex()); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if err := VerifyLocker(proof, "FAC-2", "ZONE-A", tree.RootHex()); !errors.Is(err, vyerr.ErrProofRejected) {
		t.Errorf("expected ErrProofRejected for facility mismatch, got %v", err)
	}
}
