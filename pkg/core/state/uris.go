package state

import (
	"github.com/lobsterdao/mintreveal/pkg/io"
)

// MaxURILength is the maximum accepted length of a metadata URI.
const MaxURILength = 1024

// URIs holds metadata locations of the units: the placeholder shown before
// the reveal and the prefix attribute ids are appended to after it.
type URIs struct {
	Default string
	Base    string
	// Final is set once Base can't be changed anymore.
	Final bool
}

// EncodeBinary implements the io.Serializable interface.
func (u *URIs) EncodeBinary(w *io.BinWriter) {
	w.WriteString(u.Default)
	w.WriteString(u.Base)
	w.WriteBool(u.Final)
}

// DecodeBinary implements the io.Serializable interface.
func (u *URIs) DecodeBinary(r *io.BinReader) {
	u.Default = r.ReadString(MaxURILength)
	u.Base = r.ReadString(MaxURILength)
	u.Final = r.ReadBool()
}
