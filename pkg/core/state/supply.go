package state

import (
	"github.com/lobsterdao/mintreveal/pkg/io"
)

// Supply tracks the number of minted units against the fixed cap.
type Supply struct {
	TotalMinted uint64
	MaxSupply   uint64
}

// Remaining returns the number of units that can still be minted.
func (s *Supply) Remaining() uint64 {
	if s.TotalMinted >= s.MaxSupply {
		return 0
	}
	return s.MaxSupply - s.TotalMinted
}

// EncodeBinary implements the io.Serializable interface.
func (s *Supply) EncodeBinary(w *io.BinWriter) {
	w.WriteU64LE(s.TotalMinted)
	w.WriteU64LE(s.MaxSupply)
}

// DecodeBinary implements the io.Serializable interface.
func (s *Supply) DecodeBinary(r *io.BinReader) {
	s.TotalMinted = r.ReadU64LE()
	s.MaxSupply = r.ReadU64LE()
}
