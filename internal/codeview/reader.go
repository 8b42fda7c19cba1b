package codeview

import (
	"bytes"
	"encoding/binary"
	"errors"
)

// Errors returned by Reader
var (
	ErrUnexpectedEOF  = errors.New("codeview: unexpected end of data")
	ErrInvalidNumeric = errors.New("codeview: invalid numeric leaf")
)

// Reader reads little-endian CodeView data from a byte slice. Reads past
// the end fail with ErrUnexpectedEOF and leave the position unchanged.
type Reader struct {
	data   []byte
	offset int
}

// NewReader creates a Reader from a byte slice.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Offset returns the current read position.
func (r *Reader) Offset() int { return r.offset }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return max(len(r.data)-r.offset, 0) }

// take consumes n bytes, or nothing if fewer than n are left.
func (r *Reader) take(n int) ([]byte, error) {
	if n < 0 || n > r.Remaining() {
		return nil, ErrUnexpectedEOF
	}
	b := r.data[r.offset : r.offset+n : r.offset+n]
	r.offset += n
	return b, nil
}

// Skip advances the read position by n bytes.
func (r *Reader) Skip(n int) error {
	_, err := r.take(n)
	return err
}

func (r *Reader) ReadU8() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *Reader) ReadU16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *Reader) ReadU32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *Reader) ReadU64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// ReadBytesRef returns the next n bytes without copying.
func (r *Reader) ReadBytesRef(n int) ([]byte, error) {
	return r.take(n)
}

// ReadCString reads a NUL-terminated string.
func (r *Reader) ReadCString() (string, error) {
	i := bytes.IndexByte(r.data[min(r.offset, len(r.data)):], 0)
	if i < 0 {
		return "", ErrUnexpectedEOF
	}
	b, _ := r.take(i + 1)
	return string(b[:i]), nil
}

// ReadNumeric reads a CodeView numeric leaf. Values below 0x8000 are stored
// inline; larger ones are prefixed by a leaf naming their width.
func (r *Reader) ReadNumeric() (uint64, error) {
	leaf, err := r.ReadU16()
	if err != nil {
		return 0, err
	}
	if leaf < 0x8000 {
		return uint64(leaf), nil
	}

	switch leaf {
	case 0x8000: // LF_CHAR
		v, err := r.ReadU8()
		return uint64(int8(v)), err
	case 0x8001: // LF_SHORT
		v, err := r.ReadU16()
		return uint64(int16(v)), err
	case 0x8002: // LF_USHORT
		v, err := r.ReadU16()
		return uint64(v), err
	case 0x8003: // LF_LONG
		v, err := r.ReadU32()
		return uint64(int32(v)), err
	case 0x8004: // LF_ULONG
		v, err := r.ReadU32()
		return uint64(v), err
	case 0x8009, 0x800a: // LF_QUADWORD, LF_UQUADWORD
		return r.ReadU64()
	default:
		return 0, ErrInvalidNumeric
	}
}
