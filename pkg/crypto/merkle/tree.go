/*
Package merkle builds the entitlement commitment: a binary Keccak-256 Merkle
tree over (address, count) leaves with sorted-pair hashing, and verifies
inclusion proofs against its root.
*/
package merkle

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/lobsterdao/mintreveal/pkg/crypto/hash"
)

var (
	// ErrEmptyTree is returned when a tree is built from an empty list.
	ErrEmptyTree = errors.New("entitlement list is empty")
	// ErrDuplicateAddress is returned when an address appears in the list twice.
	ErrDuplicateAddress = errors.New("duplicate address in entitlement list")
	// ErrUnknownAddress is returned for proof requests about addresses that
	// are not in the tree.
	ErrUnknownAddress = errors.New("address is not in the tree")
)

// Entitlement is a single (recipient, maximum count) pair committed by the tree.
type Entitlement struct {
	Address common.Address
	Count   uint64
}

// Tree is an immutable Merkle tree built from the entitlement list.
type Tree struct {
	root   *Node
	depth  int
	leaves []*Node
	list   []Entitlement
	index  map[common.Address]*Node
}

// Node represents a node in the Tree.
type Node struct {
	hash       common.Hash
	parent     *Node
	leftChild  *Node
	rightChild *Node
}

// LeafHash returns the leaf committed for the given entitlement. It's the
// Keccak-256 of the 20 address bytes followed by the count as a 32-byte
// big-endian integer.
func LeafHash(addr common.Address, count uint64) common.Hash {
	var c [32]byte
	binary.BigEndian.PutUint64(c[24:], count)
	return hash.Keccak256Hash(addr[:], c[:])
}

// NewTree builds a tree from the entitlement list. Leaves are sorted
// bytewise, every two siblings are combined with hash.SortedPair and an odd
// node at the end of a layer is promoted to the next one as is.
func NewTree(list []Entitlement) (*Tree, error) {
	if len(list) == 0 {
		return nil, ErrEmptyTree
	}
	t := &Tree{
		list:  make([]Entitlement, len(list)),
		index: make(map[common.Address]*Node, len(list)),
	}
	copy(t.list, list)

	t.leaves = make([]*Node, len(list))
	for i, e := range list {
		if _, ok := t.index[e.Address]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateAddress, e.Address.Hex())
		}
		n := &Node{hash: LeafHash(e.Address, e.Count)}
		t.leaves[i] = n
		t.index[e.Address] = n
	}
	layer := make([]*Node, len(t.leaves))
	copy(layer, t.leaves)
	sort.Slice(layer, func(i, j int) bool {
		return bytes.Compare(layer[i].hash[:], layer[j].hash[:]) < 0
	})

	t.depth = 1
	for len(layer) > 1 {
		layer = buildLayer(layer)
		t.depth++
	}
	t.root = layer[0]
	return t, nil
}

func buildLayer(nodes []*Node) []*Node {
	parents := make([]*Node, (len(nodes)+1)/2)
	for i := range parents {
		p := &Node{leftChild: nodes[i*2]}
		nodes[i*2].parent = p
		if i*2+1 == len(nodes) {
			p.hash = p.leftChild.hash
		} else {
			p.rightChild = nodes[i*2+1]
			p.rightChild.parent = p
			p.hash = hash.SortedPair(p.leftChild.hash, p.rightChild.hash)
		}
		parents[i] = p
	}
	return parents
}

// Root returns the computed root hash of the Tree.
func (t *Tree) Root() common.Hash {
	return t.root.hash
}

// Depth returns the number of layers in the tree, a single leaf being 1.
func (t *Tree) Depth() int {
	return t.depth
}

// Len returns the number of leaves.
func (t *Tree) Len() int {
	return len(t.leaves)
}

// Entitlements returns a copy of the list the tree was built from in the
// original order.
func (t *Tree) Entitlements() []Entitlement {
	res := make([]Entitlement, len(t.list))
	copy(res, t.list)
	return res
}

// Leaf returns the leaf hash for the given address.
func (t *Tree) Leaf(addr common.Address) (common.Hash, error) {
	n, ok := t.index[addr]
	if !ok {
		return common.Hash{}, fmt.Errorf("%w: %s", ErrUnknownAddress, addr.Hex())
	}
	return n.hash, nil
}

// Proof returns sibling hashes from the leaf of addr up to the root. A
// promoted node has no sibling on its layer, so nothing is added for it.
func (t *Tree) Proof(addr common.Address) ([]common.Hash, error) {
	n, ok := t.index[addr]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAddress, addr.Hex())
	}
	proof := make([]common.Hash, 0, t.depth-1)
	for ; !n.IsRoot(); n = n.parent {
		sibling := n.parent.rightChild
		if sibling == n {
			sibling = n.parent.leftChild
		}
		if sibling != nil {
			proof = append(proof, sibling.hash)
		}
	}
	return proof, nil
}

// IsLeaf returns whether this node is a leaf node or not.
func (n *Node) IsLeaf() bool {
	return n.leftChild == nil && n.rightChild == nil
}

// IsRoot returns whether this node is a root node or not.
func (n *Node) IsRoot() bool {
	return n.parent == nil
}

// Hash returns the node hash.
func (n *Node) Hash() common.Hash {
	return n.hash
}
