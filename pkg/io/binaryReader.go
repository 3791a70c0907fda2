package io

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// MaxArraySize is the maximum size of a byte slice which can be decoded.
const MaxArraySize = 0x1000000

// ErrTooBig is returned when a decoded length exceeds the allowed maximum.
var ErrTooBig = errors.New("size is too big")

// BinReader is a convenient wrapper around an io.Reader and err object.
// Used to simplify error handling when reading into a struct with many fields.
type BinReader struct {
	r   io.Reader
	uv  [8]byte
	Err error
}

// NewBinReaderFromBuf makes a BinReader from a byte buffer.
func NewBinReaderFromBuf(b []byte) *BinReader {
	return &BinReader{r: bytes.NewReader(b)}
}

// ReadU64LE reads a little-endian encoded uint64 value from the underlying
// io.Reader. On read failures it returns zero.
func (r *BinReader) ReadU64LE() uint64 {
	r.ReadBytes(r.uv[:8])
	if r.Err != nil {
		return 0
	}
	return binary.LittleEndian.Uint64(r.uv[:8])
}

// ReadB reads a byte from the underlying io.Reader. On read failures it
// returns zero.
func (r *BinReader) ReadB() byte {
	r.ReadBytes(r.uv[:1])
	if r.Err != nil {
		return 0
	}
	return r.uv[0]
}

// ReadBool reads a boolean value encoded in a zero/non-zero byte from the
// underlying io.Reader. On read failures it returns false.
func (r *BinReader) ReadBool() bool {
	return r.ReadB() != 0
}

// readVarUint reads a variable-length-encoded integer from the
// underlying reader.
func (r *BinReader) readVarUint() uint64 {
	if r.Err != nil {
		return 0
	}
	b := r.ReadB()
	switch b {
	case 0xfd:
		r.ReadBytes(r.uv[:2])
		return uint64(binary.LittleEndian.Uint16(r.uv[:2]))
	case 0xfe:
		r.ReadBytes(r.uv[:4])
		return uint64(binary.LittleEndian.Uint32(r.uv[:4]))
	case 0xff:
		return r.ReadU64LE()
	}
	return uint64(b)
}

// ReadBytes copies a fixed-size buffer from the reader to the provided slice.
func (r *BinReader) ReadBytes(buf []byte) {
	if r.Err != nil {
		return
	}
	_, r.Err = io.ReadFull(r.r, buf)
}

// ReadString reads a length-prefixed string. A length above maxSize (or
// MaxArraySize if omitted) sets Err to ErrTooBig.
func (r *BinReader) ReadString(maxSize ...int) string {
	n := r.readVarUint()
	ms := MaxArraySize
	if len(maxSize) != 0 {
		ms = maxSize[0]
	}
	if n > uint64(ms) {
		r.Err = fmt.Errorf("%w: string of %d", ErrTooBig, n)
		return ""
	}
	if r.Err != nil {
		return ""
	}
	b := make([]byte, n)
	r.ReadBytes(b)
	return string(b)
}
