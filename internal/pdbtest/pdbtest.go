// Package pdbtest builds small in-memory PDB files for tests.
package pdbtest

import (
	"encoding/binary"
)

const magic = "Microsoft C/C++ MSF 7.00\r\n\x1a\x44\x53\x00\x00\x00"

// BlockSize is the block size used by MSF.
const BlockSize = 512

// MSF lays out streams in an MSF container: block 0 holds the superblock,
// blocks 1 and 2 the free page maps, block 3 the block map, followed by the
// directory and stream data. A nil stream is written with the nil size
// marker.
func MSF(streams ...[]byte) []byte {
	le := binary.LittleEndian

	dirLen := 4 + 4*len(streams)
	for _, s := range streams {
		dirLen += 4 * int(blocks(len(s)))
	}
	dirBlocks := blocks(dirLen)

	dir := le.AppendUint32(make([]byte, 0, dirLen), uint32(len(streams)))
	for _, s := range streams {
		if s == nil {
			dir = le.AppendUint32(dir, 0xFFFFFFFF)
		} else {
			dir = le.AppendUint32(dir, uint32(len(s)))
		}
	}
	next := 4 + dirBlocks
	for _, s := range streams {
		for range blocks(len(s)) {
			dir = le.AppendUint32(dir, next)
			next++
		}
	}

	out := make([]byte, int(next)*BlockSize)

	copy(out, magic)
	sb := out[32:]
	le.PutUint32(sb[0:], BlockSize)
	le.PutUint32(sb[4:], 1)
	le.PutUint32(sb[8:], next)
	le.PutUint32(sb[12:], uint32(len(dir)))
	le.PutUint32(sb[20:], 3)

	blockMap := out[3*BlockSize:]
	for i := range dirBlocks {
		le.PutUint32(blockMap[i*4:], 4+i)
	}
	copy(out[4*BlockSize:], dir)

	at := int(4+dirBlocks) * BlockSize
	for _, s := range streams {
		copy(out[at:], s)
		at += int(blocks(len(s))) * BlockSize
	}
	return out
}

func blocks(n int) uint32 {
	return uint32((n + BlockSize - 1) / BlockSize)
}

// TPI encodes a TPI stream holding recs, the first at index 0x1000.
func TPI(recs ...[]byte) []byte {
	le := binary.LittleEndian

	var body []byte
	for _, r := range recs {
		body = append(body, r...)
	}

	h := make([]byte, 0, 56)
	h = le.AppendUint32(h, 20040203)
	h = le.AppendUint32(h, 56)
	h = le.AppendUint32(h, 0x1000)
	h = le.AppendUint32(h, 0x1000+uint32(len(recs)))
	h = le.AppendUint32(h, uint32(len(body)))
	h = append(h, make([]byte, 56-len(h))...)
	return append(h, body...)
}

// Record frames a type record body with its length and kind.
func Record(kind uint16, body []byte) []byte {
	le := binary.LittleEndian
	out := le.AppendUint16(nil, uint16(len(body)+2))
	out = le.AppendUint16(out, kind)
	return append(out, body...)
}

// Structure encodes an LF_STRUCTURE record. Set fwd to mark it a forward
// reference.
func Structure(name string, fwd bool) []byte {
	return Record(0x1505, udtBody(name, fwd, 12, true))
}

// Class encodes an LF_CLASS record.
func Class(name string) []byte {
	return Record(0x1504, udtBody(name, false, 12, true))
}

// Union encodes an LF_UNION record.
func Union(name string) []byte {
	return Record(0x1506, udtBody(name, false, 4, true))
}

// Enum encodes an LF_ENUM record.
func Enum(name string) []byte {
	return Record(0x1507, udtBody(name, false, 8, false))
}

// Pointer encodes an LF_POINTER record to referent.
func Pointer(referent uint32) []byte {
	le := binary.LittleEndian
	body := le.AppendUint32(nil, referent)
	body = le.AppendUint32(body, 0x1000c) // 64-bit near pointer, size 8
	return Record(0x1002, body)
}

// Modifier encodes an LF_MODIFIER record, a kind readers are expected to
// skip.
func Modifier(referent uint32) []byte {
	le := binary.LittleEndian
	body := le.AppendUint32(nil, referent)
	body = le.AppendUint16(body, 1) // const
	body = le.AppendUint16(body, 0)
	return Record(0x1001, body)
}

func udtBody(name string, fwd bool, indices int, sized bool) []byte {
	le := binary.LittleEndian
	var props uint16
	if fwd {
		props |= 0x80
	}
	body := le.AppendUint16(nil, 0)
	body = le.AppendUint16(body, props)
	body = append(body, make([]byte, indices)...)
	if sized {
		body = le.AppendUint16(body, 16)
	}
	body = append(body, name...)
	body = append(body, 0)
	// Pad to four bytes the way compilers do.
	for len(body)%4 != 0 {
		body = append(body, 0xf0|byte(4-len(body)%4))
	}
	return body
}
