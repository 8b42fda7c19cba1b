// Package msf reads the MSF (Multi-Stream File) container that wraps
// Microsoft PDB files. Streams are read whole; the free page map is ignored.
package msf

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Magic signature for PDB 7.0 format (BigMsf)
const Magic = "Microsoft C/C++ MSF 7.00\r\n\x1a\x44\x53\x00\x00\x00"

// MagicSize is the size of the magic signature in bytes
const MagicSize = 32

// SuperBlockSize is the on-disk size of the SuperBlock.
const SuperBlockSize = 56

const (
	minBlockSize uint32 = 512
	maxBlockSize uint32 = 65536
)

// Errors returned while opening an MSF file.
var (
	ErrInvalidMagic       = errors.New("msf: invalid magic signature, not a valid PDB file")
	ErrInvalidBlockSize   = errors.New("msf: invalid block size")
	ErrInvalidFPMBlock    = errors.New("msf: invalid free block map block index")
	ErrTruncatedFile      = errors.New("msf: file is truncated")
	ErrTruncatedDirectory = errors.New("msf: truncated stream directory")
	ErrInvalidStreamIndex = errors.New("msf: invalid stream index")
	ErrInvalidBlockIndex  = errors.New("msf: invalid block index")
)

// SuperBlock sits at offset 0 and locates the stream directory.
type SuperBlock struct {
	FileMagic         [MagicSize]byte
	BlockSize         uint32
	FreeBlockMapBlock uint32 // always 1 or 2
	NumBlocks         uint32
	NumDirectoryBytes uint32
	Unknown           uint32
	// BlockMapAddr is the block holding the indices of the directory blocks.
	BlockMapAddr uint32
}

// ReadSuperBlock reads and validates a SuperBlock.
func ReadSuperBlock(r io.Reader) (*SuperBlock, error) {
	var sb SuperBlock
	if err := binary.Read(r, binary.LittleEndian, &sb); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrTruncatedFile
		}
		return nil, fmt.Errorf("msf: failed to read superblock: %w", err)
	}
	if err := sb.Validate(); err != nil {
		return nil, err
	}
	return &sb, nil
}

// Validate checks the magic, the block size and the FPM block index.
func (sb *SuperBlock) Validate() error {
	if string(sb.FileMagic[:]) != Magic {
		return ErrInvalidMagic
	}
	if sb.BlockSize < minBlockSize || sb.BlockSize > maxBlockSize || sb.BlockSize&(sb.BlockSize-1) != 0 {
		return fmt.Errorf("%w: %d", ErrInvalidBlockSize, sb.BlockSize)
	}
	if sb.FreeBlockMapBlock != 1 && sb.FreeBlockMapBlock != 2 {
		return ErrInvalidFPMBlock
	}
	return nil
}

// blocksFor returns how many blocks n bytes occupy.
func (sb *SuperBlock) blocksFor(n uint32) uint32 {
	return (n + sb.BlockSize - 1) / sb.BlockSize
}

func (sb *SuperBlock) fileSize() int64 {
	return int64(sb.NumBlocks) * int64(sb.BlockSize)
}

func (sb *SuperBlock) blockOffset(block uint32) int64 {
	return int64(block) * int64(sb.BlockSize)
}
