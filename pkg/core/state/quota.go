package state

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/lobsterdao/mintreveal/pkg/io"
)

// Quota is the claim allowance of an external collection.
type Quota struct {
	Collection common.Address
	Initial    uint64
	Remaining  uint64
}

// EncodeBinary implements the io.Serializable interface.
func (q *Quota) EncodeBinary(w *io.BinWriter) {
	w.WriteBytes(q.Collection[:])
	w.WriteU64LE(q.Initial)
	w.WriteU64LE(q.Remaining)
}

// DecodeBinary implements the io.Serializable interface.
func (q *Quota) DecodeBinary(r *io.BinReader) {
	r.ReadBytes(q.Collection[:])
	q.Initial = r.ReadU64LE()
	q.Remaining = r.ReadU64LE()
}
