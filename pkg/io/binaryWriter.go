package io

import (
	"encoding/binary"
	"io"
)

// BinWriter is a convenient wrapper around an io.Writer and err object.
// Used to simplify error handling when writing into an io.Writer
// from a struct with many fields.
type BinWriter struct {
	w   io.Writer
	Err error
	uv  [9]byte
}

// WriteU64LE writes a uint64 value into the underlying io.Writer in
// little-endian format.
func (w *BinWriter) WriteU64LE(u64 uint64) {
	binary.LittleEndian.PutUint64(w.uv[:8], u64)
	w.WriteBytes(w.uv[:8])
}

// WriteB writes a byte into the underlying io.Writer.
func (w *BinWriter) WriteB(u8 byte) {
	w.uv[0] = u8
	w.WriteBytes(w.uv[:1])
}

// WriteBool writes a boolean value into the underlying io.Writer encoded as
// a byte with values of 0 or 1.
func (w *BinWriter) WriteBool(b bool) {
	var i byte
	if b {
		i = 1
	}
	w.WriteB(i)
}

// writeVarUint writes a uint64 into the underlying writer using
// variable-length encoding.
func (w *BinWriter) writeVarUint(val uint64) {
	if w.Err != nil {
		return
	}
	n := 1
	switch {
	case val < 0xfd:
		w.uv[0] = byte(val)
	case val <= 0xFFFF:
		w.uv[0] = 0xfd
		binary.LittleEndian.PutUint16(w.uv[1:], uint16(val))
		n = 3
	case val <= 0xFFFFFFFF:
		w.uv[0] = 0xfe
		binary.LittleEndian.PutUint32(w.uv[1:], uint32(val))
		n = 5
	default:
		w.uv[0] = 0xff
		binary.LittleEndian.PutUint64(w.uv[1:], val)
		n = 9
	}
	w.WriteBytes(w.uv[:n])
}

// WriteBytes writes a variable byte into the underlying io.Writer without prefix.
func (w *BinWriter) WriteBytes(b []byte) {
	if w.Err != nil {
		return
	}
	_, w.Err = w.w.Write(b)
}

// WriteString writes a length-prefixed string into the underlying io.Writer.
func (w *BinWriter) WriteString(s string) {
	w.writeVarUint(uint64(len(s)))
	w.WriteBytes([]byte(s))
}
