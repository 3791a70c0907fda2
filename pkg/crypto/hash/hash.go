/*
Package hash contains the Keccak-256 primitives used for entitlement leaves,
Merkle nodes and seed expansion.
*/
package hash

import (
	"bytes"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"
)

// Keccak256 hashes the concatenation of the given byte slices using the
// legacy (pre-NIST) Keccak-256 function.
func Keccak256(data ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, b := range data {
		h.Write(b)
	}
	return h.Sum(nil)
}

// Keccak256Hash is like Keccak256 but returns the result as a common.Hash.
func Keccak256Hash(data ...[]byte) common.Hash {
	var res common.Hash
	h := sha3.NewLegacyKeccak256()
	for _, b := range data {
		h.Write(b)
	}
	h.Sum(res[:0])
	return res
}

// SortedPair hashes a and b in ascending byte order, so that the result
// doesn't depend on the order of arguments.
func SortedPair(a, b common.Hash) common.Hash {
	if bytes.Compare(a[:], b[:]) <= 0 {
		return Keccak256Hash(a[:], b[:])
	}
	return Keccak256Hash(b[:], a[:])
}
