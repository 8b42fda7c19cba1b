package msf

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

const nilStreamSize = 0xFFFFFFFF

// Well-known stream indices
const (
	StreamPDBInfo = 1 // PDB Info stream (GUID, age, named streams)
	StreamTPI     = 2 // Type Program Information
	StreamDBI     = 3 // Debug Information
	StreamIPI     = 4 // ID Program Information
)

// File is an opened MSF container. The stream directory is read when the
// file is opened; stream contents are read on demand.
type File struct {
	data   io.ReaderAt
	closer io.Closer
	sb     *SuperBlock

	sizes  []uint32
	blocks [][]uint32
}

// Open opens an MSF file from the given path.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("msf: failed to open file: %w", err)
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("msf: failed to stat file: %w", err)
	}

	m, err := NewFile(f, stat.Size())
	if err != nil {
		f.Close()
		return nil, err
	}
	m.closer = f
	return m, nil
}

// NewFile reads an MSF container from r. The caller keeps ownership of r.
func NewFile(r io.ReaderAt, size int64) (*File, error) {
	if size < SuperBlockSize {
		return nil, ErrTruncatedFile
	}

	raw := make([]byte, SuperBlockSize)
	if _, err := r.ReadAt(raw, 0); err != nil {
		return nil, fmt.Errorf("msf: failed to read superblock: %w", err)
	}
	sb, err := ReadSuperBlock(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	if size < sb.fileSize() {
		return nil, fmt.Errorf("%w: got %d bytes, expected %d", ErrTruncatedFile, size, sb.fileSize())
	}

	f := &File{data: r, sb: sb}
	if err := f.readDirectory(); err != nil {
		return nil, err
	}
	return f, nil
}

// Close releases the underlying file if Open created it.
func (f *File) Close() error {
	if f.closer != nil {
		return f.closer.Close()
	}
	return nil
}

// BlockSize returns the block size used by this MSF file.
func (f *File) BlockSize() uint32 {
	return f.sb.BlockSize
}

// NumStreams returns the number of directory entries, nil streams included.
func (f *File) NumStreams() uint32 {
	return uint32(len(f.sizes))
}

// StreamExists reports whether stream i is present and not empty.
func (f *File) StreamExists(i uint32) bool {
	return i < f.NumStreams() && f.sizes[i] != nilStreamSize && f.sizes[i] > 0
}

// ReadStream reads all of stream i into memory.
func (f *File) ReadStream(i uint32) ([]byte, error) {
	if i >= f.NumStreams() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidStreamIndex, i)
	}
	if f.sizes[i] == nilStreamSize {
		return nil, fmt.Errorf("msf: stream %d is nil", i)
	}
	return f.readBlocks(f.blocks[i], f.sizes[i])
}

// readDirectory follows BlockMapAddr to the directory blocks and parses
// stream sizes and block lists out of them.
func (f *File) readDirectory() error {
	sb := f.sb
	numDirBlocks := sb.blocksFor(sb.NumDirectoryBytes)

	// The block map itself may span several consecutive blocks.
	mapBlocks := make([]uint32, sb.blocksFor(numDirBlocks*4))
	for i := range mapBlocks {
		mapBlocks[i] = sb.BlockMapAddr + uint32(i)
	}
	blockMap, err := f.readBlocks(mapBlocks, numDirBlocks*4)
	if err != nil {
		return fmt.Errorf("msf: failed to read block map: %w", err)
	}

	dirBlocks := make([]uint32, numDirBlocks)
	for i := range dirBlocks {
		dirBlocks[i] = binary.LittleEndian.Uint32(blockMap[i*4:])
	}
	dir, err := f.readBlocks(dirBlocks, sb.NumDirectoryBytes)
	if err != nil {
		return fmt.Errorf("msf: failed to read stream directory: %w", err)
	}

	return f.parseDirectory(dir)
}

func (f *File) parseDirectory(dir []byte) error {
	word := func(off int) (uint32, error) {
		if off+4 > len(dir) {
			return 0, ErrTruncatedDirectory
		}
		return binary.LittleEndian.Uint32(dir[off:]), nil
	}

	n, err := word(0)
	if err != nil {
		return err
	}
	off := 4
	if uint64(len(dir)) < 4+uint64(n)*4 {
		return ErrTruncatedDirectory
	}

	f.sizes = make([]uint32, n)
	for i := range f.sizes {
		f.sizes[i], _ = word(off)
		off += 4
	}

	f.blocks = make([][]uint32, n)
	for i, size := range f.sizes {
		if size == nilStreamSize || size == 0 {
			continue
		}
		list := make([]uint32, f.sb.blocksFor(size))
		for j := range list {
			if list[j], err = word(off); err != nil {
				return err
			}
			off += 4
		}
		f.blocks[i] = list
	}
	return nil
}

// readBlocks concatenates the given blocks and truncates the result to n
// bytes.
func (f *File) readBlocks(blocks []uint32, n uint32) ([]byte, error) {
	bs := f.sb.BlockSize
	if uint64(len(blocks))*uint64(bs) < uint64(n) {
		return nil, fmt.Errorf("%w: %d blocks cannot hold %d bytes", ErrTruncatedFile, len(blocks), n)
	}

	out := make([]byte, n)
	for i, block := range blocks {
		start := uint32(i) * bs
		if start >= n {
			break
		}
		if block >= f.sb.NumBlocks {
			return nil, fmt.Errorf("%w: %d >= %d", ErrInvalidBlockIndex, block, f.sb.NumBlocks)
		}
		end := min(start+bs, n)
		if _, err := f.data.ReadAt(out[start:end], f.sb.blockOffset(block)); err != nil {
			return nil, fmt.Errorf("msf: failed to read block %d: %w", block, err)
		}
	}
	return out, nil
}
