package state

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/lobsterdao/mintreveal/pkg/io"
)

// SeedStatus is the stage of the one-time randomness request.
type SeedStatus byte

// Seed request stages, they only ever move forward.
const (
	SeedUnrequested SeedStatus = iota
	SeedRequested
	SeedFulfilled
)

// Seed is the state of the randomness request along with the fee
// configuration used to make it.
type Seed struct {
	Status    SeedStatus
	RequestID common.Hash
	Value     *uint256.Int
	Fee       *uint256.Int
	KeyHash   common.Hash
}

// String implements the fmt.Stringer interface.
func (s SeedStatus) String() string {
	switch s {
	case SeedUnrequested:
		return "unrequested"
	case SeedRequested:
		return "requested"
	case SeedFulfilled:
		return "fulfilled"
	default:
		return fmt.Sprintf("unknown(%d)", byte(s))
	}
}

// NewSeed returns an unrequested Seed with the given request configuration.
func NewSeed(fee *uint256.Int, keyHash common.Hash) *Seed {
	s := &Seed{
		Value:   new(uint256.Int),
		Fee:     new(uint256.Int),
		KeyHash: keyHash,
	}
	if fee != nil {
		s.Fee.Set(fee)
	}
	return s
}

// EncodeBinary implements the io.Serializable interface.
func (s *Seed) EncodeBinary(w *io.BinWriter) {
	w.WriteB(byte(s.Status))
	w.WriteBytes(s.RequestID[:])
	writeUint256(w, s.Value)
	writeUint256(w, s.Fee)
	w.WriteBytes(s.KeyHash[:])
}

// DecodeBinary implements the io.Serializable interface.
func (s *Seed) DecodeBinary(r *io.BinReader) {
	s.Status = SeedStatus(r.ReadB())
	if s.Status > SeedFulfilled && r.Err == nil {
		r.Err = fmt.Errorf("invalid seed status %d", s.Status)
		return
	}
	r.ReadBytes(s.RequestID[:])
	s.Value = readUint256(r)
	s.Fee = readUint256(r)
	r.ReadBytes(s.KeyHash[:])
}

func writeUint256(w *io.BinWriter, v *uint256.Int) {
	var b [32]byte
	if v != nil {
		v.WriteToArray32(&b)
	}
	w.WriteBytes(b[:])
}

func readUint256(r *io.BinReader) *uint256.Int {
	var b [32]byte
	r.ReadBytes(b[:])
	return new(uint256.Int).SetBytes32(b[:])
}
