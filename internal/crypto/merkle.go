package crypto

import (
	"bytes"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// AddressLeaf hashes an address into a merkle leaf.
func AddressLeaf(addr common.Address) common.Hash {
	return common.BytesToHash(ethcrypto.Keccak256(addr.Bytes()))
}

// VerifyProof checks a sorted-pair merkle proof: at each level the pair is
// hashed in byte order, so proofs carry no left/right flags.
func VerifyProof(proof []common.Hash, root, leaf common.Hash) bool {
	computed := leaf
	for _, node := range proof {
		computed = hashPair(computed, node)
	}
	return computed == root
}

// MerkleTree is a sorted-pair merkle tree over a fixed leaf set. Used to
// build allowlist roots for deployments and fixtures.
type MerkleTree struct {
	leaves []common.Hash
	levels [][]common.Hash
}

// NewMerkleTree builds a tree over the given leaves. Leaves are sorted first
// so the root is independent of input order. An odd node at any level is
// promoted unchanged.
func NewMerkleTree(leaves []common.Hash) *MerkleTree {
	sorted := make([]common.Hash, len(leaves))
	copy(sorted, leaves)
	sort.Slice(sorted, func(i, j int) bool {
		return bytes.Compare(sorted[i][:], sorted[j][:]) < 0
	})

	levels := [][]common.Hash{sorted}
	level := sorted
	for len(level) > 1 {
		next := make([]common.Hash, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			if i+1 == len(level) {
				next = append(next, level[i])
				continue
			}
			next = append(next, hashPair(level[i], level[i+1]))
		}
		levels = append(levels, next)
		level = next
	}

	return &MerkleTree{leaves: sorted, levels: levels}
}

// Root returns the merkle root, or the zero hash for an empty tree.
func (t *MerkleTree) Root() common.Hash {
	if len(t.leaves) == 0 {
		return common.Hash{}
	}
	top := t.levels[len(t.levels)-1]
	return top[0]
}

// Proof returns the sibling path for the given leaf, or false when the leaf
// is not in the tree.
func (t *MerkleTree) Proof(leaf common.Hash) ([]common.Hash, bool) {
	idx := -1
	for i, l := range t.leaves {
		if l == leaf {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, false
	}

	var proof []common.Hash
	for _, level := range t.levels[:len(t.levels)-1] {
		sibling := idx ^ 1
		if sibling < len(level) {
			proof = append(proof, level[sibling])
		}
		idx /= 2
	}
	return proof, true
}

func hashPair(a, b common.Hash) common.Hash {
	if bytes.Compare(a[:], b[:]) > 0 {
		a, b = b, a
	}
	return common.BytesToHash(ethcrypto.Keccak256(a[:], b[:]))
}
