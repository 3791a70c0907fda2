package merkle

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/lobsterdao/mintreveal/pkg/crypto/hash"
)

// ProcessProof folds the proof over the leaf and returns the resulting root.
func ProcessProof(proof []common.Hash, leaf common.Hash) common.Hash {
	acc := leaf
	for _, sibling := range proof {
		acc = hash.SortedPair(acc, sibling)
	}
	return acc
}

// Verify checks that the leaf is included into the tree with the given root.
func Verify(proof []common.Hash, root common.Hash, leaf common.Hash) bool {
	return ProcessProof(proof, leaf) == root
}

// VerifyEntitlement is Verify for an (address, count) pair.
func VerifyEntitlement(proof []common.Hash, root common.Hash, addr common.Address, count uint64) bool {
	return Verify(proof, root, LeafHash(addr, count))
}
