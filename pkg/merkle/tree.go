// Copyright 2025 Veyra Protocol
//
// Merkle tree: build/prove/verify over pre-hashed leaves.
//
// Grounded on the teacher's pkg/merkle/tree.go (level-indexed build, hex
// proof nodes, constant-time root comparison), adapted per spec §3/§4.A:
// hashing is domain-separated (vey:merkle:leaf / vey:merkle:node) and the
// odd-fan-out tie-break promotes the lone node unchanged instead of
// duplicating it (see DESIGN.md).
package merkle

import (
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"

	vcrypto "github.com/veyra-network/vey-core/pkg/crypto"
)

var (
	ErrEmptyLeaves     = errors.New("merkle: cannot build tree from empty leaves")
	ErrInvalidLeafHash = errors.New("merkle: leaf hash must be 32 bytes")
	ErrLeafNotFound    = errors.New("merkle: leaf not found in tree")
	ErrTreeNotBuilt    = errors.New("merkle: tree not built")
)

// Position indicates which side of the parent hash a sibling occupies.
type Position string

const (
	Left  Position = "left"
	Right Position = "right"
)

// ProofNode is one step of an inclusion proof: a sibling hash and the
// side it sits on relative to the path so far.
type ProofNode struct {
	Hash     string   `json:"hash"`
	Position Position `json:"position"`
}

// Proof is a complete Merkle inclusion proof.
type Proof struct {
	LeafHash  string      `json:"leaf_hash"`
	LeafIndex int         `json:"leaf_index"`
	Root      string      `json:"root"`
	Path      []ProofNode `json:"path"`
	TreeSize  int         `json:"tree_size"`
}

// Tree is an immutable binary Merkle tree over pre-hashed 32-byte leaves.
type Tree struct {
	mu     sync.RWMutex
	leaves [][]byte
	levels [][][]byte
	root   []byte
}

// LeafHash domain-separates and hashes raw leaf data into a 32-byte leaf
// value suitable for Build.
func LeafHash(data []byte) []byte {
	h := vcrypto.Hash(vcrypto.DomainMerkleLeaf, data)
	return h[:]
}

func nodeHash(left, right []byte) []byte {
	h := vcrypto.HashConcat(vcrypto.DomainMerkleNode, left, right)
	return h[:]
}

// Build constructs a tree from pre-hashed leaves (each exactly 32 bytes).
// An empty leaf set produces a tree whose root is the empty-input domain
// hash (per spec §3: "root = empty hash for empty leaf set").
func Build(leaves [][]byte) (*Tree, error) {
	if len(leaves) == 0 {
		empty := vcrypto.Hash(vcrypto.DomainMerkleNode, nil)
		return &Tree{leaves: nil, levels: nil, root: empty[:]}, nil
	}
	for i, l := range leaves {
		if len(l) != 32 {
			return nil, fmt.Errorf("%w: leaf %d has %d bytes", ErrInvalidLeafHash, i, len(l))
		}
	}

	t := &Tree{leaves: make([][]byte, len(leaves))}
	for i, l := range leaves {
		t.leaves[i] = append([]byte(nil), l...)
	}

	level := make([][]byte, len(t.leaves))
	copy(level, t.leaves)
	t.levels = append(t.levels, level)

	for len(level) > 1 {
		next := make([][]byte, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			if i+1 < len(level) {
				next = append(next, nodeHash(level[i], level[i+1]))
			} else {
				// Odd fan-out: promote the lone node unchanged rather
				// than duplicating it (documented tie-break, spec §3).
				next = append(next, level[i])
			}
		}
		t.levels = append(t.levels, next)
		level = next
	}
	t.root = level[0]
	return t, nil
}

// Root returns the tree's root hash.
func (t *Tree) Root() []byte {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]byte(nil), t.root...)
}

// RootHex returns the root as a lowercase hex string.
func (t *Tree) RootHex() string {
	return hex.EncodeToString(t.Root())
}

// LeafCount returns the number of leaves in the tree.
func (t *Tree) LeafCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.leaves)
}

// Prove generates an inclusion proof for the leaf at index.
//
// Because the odd-fan-out rule promotes the lone node instead of pairing
// it with itself, a promoted node has no sibling at that level; Prove
// skips emitting a ProofNode for that level and the verifier's walk
// simply carries the hash forward unchanged.
func (t *Tree) Prove(index int) (*Proof, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.levels == nil {
		return nil, ErrTreeNotBuilt
	}
	if index < 0 || index >= len(t.leaves) {
		return nil, fmt.Errorf("merkle: leaf index %d out of range [0, %d)", index, len(t.leaves))
	}

	proof := &Proof{
		LeafHash:  hex.EncodeToString(t.leaves[index]),
		LeafIndex: index,
		Root:      hex.EncodeToString(t.root),
		TreeSize:  len(t.leaves),
	}

	cur := index
	for level := 0; level < len(t.levels)-1; level++ {
		nodes := t.levels[level]
		if cur%2 == 0 {
			if cur+1 < len(nodes) {
				proof.Path = append(proof.Path, ProofNode{Hash: hex.EncodeToString(nodes[cur+1]), Position: Right})
			}
			// else: promoted lone node, no sibling step recorded.
		} else {
			proof.Path = append(proof.Path, ProofNode{Hash: hex.EncodeToString(nodes[cur-1]), Position: Left})
		}
		cur = cur / 2
	}
	return proof, nil
}

// ProveByHash finds leafHash in the tree and proves its inclusion.
func (t *Tree) ProveByHash(leafHash []byte) (*Proof, error) {
	t.mu.RLock()
	idx := -1
	for i, l := range t.leaves {
		if subtle.ConstantTimeCompare(l, leafHash) == 1 {
			idx = i
			break
		}
	}
	t.mu.RUnlock()
	if idx == -1 {
		return nil, ErrLeafNotFound
	}
	return t.Prove(idx)
}

// Verify reconstructs the root from leaf, index, and path and compares it
// (in constant time) against expectedRoot.
func Verify(leaf []byte, index int, path []ProofNode, expectedRoot []byte) (bool, error) {
	if len(leaf) != 32 {
		return false, ErrInvalidLeafHash
	}
	if len(expectedRoot) != 32 {
		return false, fmt.Errorf("merkle: expected root must be 32 bytes, got %d", len(expectedRoot))
	}

	cur := append([]byte(nil), leaf...)
	for _, node := range path {
		sib, err := hex.DecodeString(node.Hash)
		if err != nil {
			return false, fmt.Errorf("merkle: invalid sibling hash: %w", err)
		}
		if len(sib) != 32 {
			return false, fmt.Errorf("merkle: sibling hash must be 32 bytes, got %d", len(sib))
		}
		if node.Position == Left {
			cur = nodeHash(sib, cur)
		} else {
			cur = nodeHash(cur, sib)
		}
	}
	return subtle.ConstantTimeCompare(cur, expectedRoot) == 1, nil
}

// VerifyProof is a convenience wrapper taking a *Proof and a root.
func VerifyProof(leaf []byte, proof *Proof, expectedRoot []byte) (bool, error) {
	if proof == nil {
		return false, errors.New("merkle: nil proof")
	}
	return Verify(leaf, proof.LeafIndex, proof.Path, expectedRoot)
}
