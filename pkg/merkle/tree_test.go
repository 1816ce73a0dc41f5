// Copyright 2025 Veyra Protocol
//
// Merkle tree tests.

package merkle

import (
	"bytes"
	"testing"
)

func leaf(s string) []byte {
	return LeafHash([]byte(s))
}

func TestBuild_SingleLeaf(t *testing.T) {
	l := leaf("test data")
	tree, err := Build([][]byte{l})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !bytes.Equal(tree.Root(), l) {
		t.Errorf("single leaf root mismatch: got %x, want %x", tree.Root(), l)
	}
	if tree.LeafCount() != 1 {
		t.Errorf("leaf count mismatch: got %d, want 1", tree.LeafCount())
	}
}

func TestBuild_TwoLeaves(t *testing.T) {
	l1, l2 := leaf("leaf 1"), leaf("leaf 2")
	tree, err := Build([][]byte{l1, l2})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	want := nodeHash(l1, l2)
	if !bytes.Equal(tree.Root(), want) {
		t.Errorf("two leaf root mismatch: got %x, want %x", tree.Root(), want)
	}
}

func TestBuild_OddLeavesPromotesLoneNode(t *testing.T) {
	leaves := [][]byte{leaf("a"), leaf("b"), leaf("c")}
	tree, err := Build(leaves)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if tree.LeafCount() != 3 {
		t.Errorf("leaf count mismatch: got %d, want 3", tree.LeafCount())
	}
	// Level 0: [a,b,c] -> level 1: [hash(a,b), c] (promoted) -> root: hash(hash(a,b), c)
	level1 := nodeHash(leaves[0], leaves[1])
	want := nodeHash(level1, leaves[2])
	if !bytes.Equal(tree.Root(), want) {
		t.Errorf("odd-leaf root mismatch: got %x, want %x", tree.Root(), want)
	}
}

func TestBuild_EmptyLeaves(t *testing.T) {
	tree, err := Build(nil)
	if err != nil {
		t.Fatalf("build empty: %v", err)
	}
	if len(tree.Root()) != 32 {
		t.Errorf("empty tree root length mismatch: got %d, want 32", len(tree.Root()))
	}
}

func TestBuild_InvalidLeafHash(t *testing.T) {
	_, err := Build([][]byte{[]byte("not 32 bytes")})
	if err == nil {
		t.Error("expected error for invalid leaf hash")
	}
}

func TestProveAndVerify_TwoLeaves(t *testing.T) {
	l1, l2 := leaf("leaf 1"), leaf("leaf 2")
	tree, err := Build([][]byte{l1, l2})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	proof0, err := tree.Prove(0)
	if err != nil {
		t.Fatalf("prove 0: %v", err)
	}
	if len(proof0.Path) != 1 || proof0.Path[0].Position != Right {
		t.Errorf("unexpected path for leaf 0: %+v", proof0.Path)
	}
	ok, err := VerifyProof(l1, proof0, tree.Root())
	if err != nil || !ok {
		t.Fatalf("verify leaf 0: ok=%v err=%v", ok, err)
	}

	proof1, err := tree.Prove(1)
	if err != nil {
		t.Fatalf("prove 1: %v", err)
	}
	if len(proof1.Path) != 1 || proof1.Path[0].Position != Left {
		t.Errorf("unexpected path for leaf 1: %+v", proof1.Path)
	}
	ok, err = VerifyProof(l2, proof1, tree.Root())
	if err != nil || !ok {
		t.Fatalf("verify leaf 1: ok=%v err=%v", ok, err)
	}
}

func TestProveAndVerify_LargeTree(t *testing.T) {
	leaves := make([][]byte, 100)
	for i := range leaves {
		leaves[i] = leaf(string(rune('a' + i%26)))
	}
	tree, err := Build(leaves)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	for _, i := range []int{0, 1, 49, 50, 99} {
		proof, err := tree.Prove(i)
		if err != nil {
			t.Fatalf("prove %d: %v", i, err)
		}
		ok, err := VerifyProof(leaves[i], proof, tree.Root())
		if err != nil || !ok {
			t.Fatalf("verify %d: ok=%v err=%v", i, ok, err)
		}
	}
}

func TestVerify_TamperedSiblingBreaksProof(t *testing.T) {
	leaves := make([][]byte, 4)
	for i := range leaves {
		leaves[i] = leaf(string(rune('a' + i)))
	}
	tree, err := Build(leaves)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	proof, err := tree.Prove(2)
	if err != nil {
		t.Fatalf("prove: %v", err)
	}

	wrongLeaf := leaf("not a leaf")
	ok, err := VerifyProof(wrongLeaf, proof, tree.Root())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("proof should not verify for wrong leaf")
	}

	tampered := *proof
	tampered.Path = append([]ProofNode(nil), proof.Path...)
	tampered.Path[0].Hash = "00" + tampered.Path[0].Hash[2:]
	ok, err = VerifyProof(leaves[2], &tampered, tree.Root())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("proof should not verify with tampered sibling")
	}

	wrongRoot := leaf("wrong root")
	ok, err = VerifyProof(leaves[2], proof, wrongRoot)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("proof should not verify against wrong root")
	}
}

func TestProveByHash(t *testing.T) {
	l1, l2 := leaf("leaf 1"), leaf("leaf 2")
	tree, err := Build([][]byte{l1, l2})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	proof, err := tree.ProveByHash(l2)
	if err != nil {
		t.Fatalf("prove by hash: %v", err)
	}
	if proof.LeafIndex != 1 {
		t.Errorf("leaf index mismatch: got %d, want 1", proof.LeafIndex)
	}
}
