// Package codeview walks the CodeView type records stored in the TPI stream
// of a PDB file.
package codeview

import (
	"errors"
	"fmt"
	"iter"
)

// TPI stream versions
const (
	TPIVersionV70 uint32 = 19990903
	TPIVersionV80 uint32 = 20040203
)

// TPIHeaderSize is the minimum size of a TPI stream header.
const TPIHeaderSize = 56

// Errors
var (
	ErrInvalidHeader       = errors.New("codeview: invalid TPI header")
	ErrUnsupportedVersion  = errors.New("codeview: unsupported TPI version")
	ErrTypeIndexOutOfRange = errors.New("codeview: type index out of range")
	ErrInvalidRecord       = errors.New("codeview: invalid type record")
)

// TypeIndex refers to a record in the TPI stream. Indices below
// FirstUserTypeIndex name builtin primitive types and have no record.
type TypeIndex uint32

// FirstUserTypeIndex is the first index backed by a type record.
const FirstUserTypeIndex TypeIndex = 0x1000

// Header holds the TPI header fields needed to locate the records. The hash
// stream fields are skipped.
type Header struct {
	Version         uint32
	HeaderSize      uint32
	TypeIndexBegin  TypeIndex
	TypeIndexEnd    TypeIndex
	TypeRecordBytes uint32
}

// Record is one raw type record.
type Record struct {
	Index TypeIndex
	Kind  LeafKind
	Data  []byte // Record body, excluding length and kind
}

// Types is a parsed TPI stream with an index from TypeIndex to record.
type Types struct {
	Header  Header
	records []Record
}

// ParseTPI parses the TPI stream in data.
func ParseTPI(data []byte) (*Types, error) {
	if len(data) < TPIHeaderSize {
		return nil, ErrInvalidHeader
	}

	r := NewReader(data)
	var h Header
	var begin, end uint32
	for _, field := range []*uint32{&h.Version, &h.HeaderSize, &begin, &end, &h.TypeRecordBytes} {
		v, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		*field = v
	}
	h.TypeIndexBegin, h.TypeIndexEnd = TypeIndex(begin), TypeIndex(end)

	if h.Version != TPIVersionV80 && h.Version != TPIVersionV70 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}
	if h.HeaderSize < TPIHeaderSize || h.TypeIndexEnd < h.TypeIndexBegin {
		return nil, ErrInvalidHeader
	}

	start := uint64(h.HeaderSize)
	stop := start + uint64(h.TypeRecordBytes)
	if stop > uint64(len(data)) {
		return nil, fmt.Errorf("codeview: truncated TPI stream: expected %d bytes, got %d", stop, len(data))
	}

	t := &Types{Header: h}
	if err := t.index(data[start:stop]); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Types) index(raw []byte) error {
	r := NewReader(raw)
	ti := t.Header.TypeIndexBegin
	for r.Remaining() > 0 && ti < t.Header.TypeIndexEnd {
		length, err := r.ReadU16()
		if err != nil {
			return err
		}
		// The length covers the kind field.
		if length < 2 {
			return fmt.Errorf("%w: index 0x%x has length %d", ErrInvalidRecord, ti, length)
		}
		kind, err := r.ReadU16()
		if err != nil {
			return err
		}
		body, err := r.ReadBytesRef(int(length) - 2)
		if err != nil {
			return fmt.Errorf("%w: index 0x%x: %v", ErrInvalidRecord, ti, err)
		}
		t.records = append(t.records, Record{Index: ti, Kind: LeafKind(kind), Data: body})
		ti++
	}
	return nil
}

// Len returns the number of records.
func (t *Types) Len() int {
	return len(t.records)
}

// Record returns the record for ti.
func (t *Types) Record(ti TypeIndex) (Record, error) {
	if ti < t.Header.TypeIndexBegin || int(ti-t.Header.TypeIndexBegin) >= len(t.records) {
		return Record{}, fmt.Errorf("%w: 0x%x", ErrTypeIndexOutOfRange, ti)
	}
	return t.records[ti-t.Header.TypeIndexBegin], nil
}

// All yields every record in index order.
func (t *Types) All() iter.Seq[Record] {
	return func(yield func(Record) bool) {
		for _, rec := range t.records {
			if !yield(rec) {
				return
			}
		}
	}
}
