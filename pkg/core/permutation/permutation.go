/*
Package permutation implements a lazily evaluated Fisher-Yates shuffle of
[0, n) driven by a 256-bit seed.

Step k of the shuffle swaps positions k and k + r_k mod (n-k), where r_k is
the Keccak-256 of the seed and k, both as 32-byte big-endian integers. The
value at position i never changes after step i, so resolving i only needs the
steps 0..i replayed over a sparse trace of the swapped positions.
*/
package permutation

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/lobsterdao/mintreveal/pkg/crypto/hash"
)

// ErrOutOfRange is returned for indices outside of [0, n).
var ErrOutOfRange = errors.New("index is out of range")

// Trace is the sparse state of a partially performed shuffle. Positions
// missing from the map hold their own index.
type Trace struct {
	seed  [32]byte
	n     uint64
	steps uint64
	swaps map[uint64]uint64
}

// NewTrace creates an empty trace for the shuffle of [0, n) with the given
// seed.
func NewTrace(seed *uint256.Int, n uint64) *Trace {
	return &Trace{
		seed:  seed.Bytes32(),
		n:     n,
		swaps: make(map[uint64]uint64),
	}
}

// Len returns n.
func (t *Trace) Len() uint64 {
	return t.n
}

// Steps returns the number of shuffle steps performed so far.
func (t *Trace) Steps() uint64 {
	return t.steps
}

func (t *Trace) get(pos uint64) uint64 {
	if v, ok := t.swaps[pos]; ok {
		return v
	}
	return pos
}

// offset returns r_k mod (n-k).
func (t *Trace) offset(k uint64) uint64 {
	var idx [32]byte
	uint256.NewInt(k).WriteToArray32(&idx)
	r := new(uint256.Int).SetBytes(hash.Keccak256(t.seed[:], idx[:]))
	return r.Mod(r, uint256.NewInt(t.n-k)).Uint64()
}

func (t *Trace) step() {
	k := t.steps
	j := k + t.offset(k)
	vk, vj := t.get(k), t.get(j)
	t.swaps[k] = vj
	t.swaps[j] = vk
	t.steps++
}

// Resolve returns the value at position i, advancing the shuffle up to step
// i if it has not been done yet. Calls with growing i share the work done
// before.
func (t *Trace) Resolve(i uint64) (uint64, error) {
	if i >= t.n {
		return 0, fmt.Errorf("%w: %d >= %d", ErrOutOfRange, i, t.n)
	}
	for t.steps <= i {
		t.step()
	}
	return t.get(i), nil
}

// Resolve returns the value at position i of the shuffle of [0, n) defined by
// seed. It replays i+1 steps on a fresh trace, so its cost doesn't depend
// on n.
func Resolve(seed *uint256.Int, n, i uint64) (uint64, error) {
	return NewTrace(seed, n).Resolve(i)
}

// Range returns the values at positions [from, to).
func Range(seed *uint256.Int, n, from, to uint64) ([]uint64, error) {
	if from > to || to > n {
		return nil, fmt.Errorf("%w: [%d, %d) of %d", ErrOutOfRange, from, to, n)
	}
	t := NewTrace(seed, n)
	res := make([]uint64, 0, to-from)
	for i := from; i < to; i++ {
		v, err := t.Resolve(i)
		if err != nil {
			return nil, err
		}
		res = append(res, v)
	}
	return res, nil
}
