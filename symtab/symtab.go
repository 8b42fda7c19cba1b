// Package symtab extracts encoded type names from debug information.
//
// Names are produced in the form a debugger prints them, e.g.
// "struct main::Point", "union raw_union" or "struct [dynamic]int **",
// ready to be passed to the demangle package.
package symtab

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"os"
	"strings"

	"github.com/skdltmxn/odindecl/msf"
)

// ErrUnknownFormat is returned by Open for files that are neither PDB nor ELF.
var ErrUnknownFormat = errors.New("symtab: unknown file format")

const elfMagic = "\x7fELF"

// Source yields encoded type names.
type Source interface {
	// Names yields each name once, in the order first seen.
	Names() iter.Seq[string]
	Close() error
}

// Option configures a Source.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger used to report skipped records.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func buildOptions(opts ...Option) options {
	var cfg options
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

func (o options) debug(msg string, attrs ...slog.Attr) {
	if o.logger == nil {
		return
	}
	o.logger.LogAttrs(context.Background(), slog.LevelDebug, msg, attrs...)
}

// Open detects the format of the file at path and opens the matching
// Source.
func Open(path string, opts ...Option) (Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("symtab: failed to open file: %w", err)
	}
	head := make([]byte, msf.MagicSize)
	n, err := io.ReadFull(f, head)
	f.Close()
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("symtab: failed to read header: %w", err)
	}
	head = head[:n]

	switch {
	case bytes.HasPrefix(head, []byte(msf.Magic)):
		return OpenPDB(path, opts...)
	case bytes.HasPrefix(head, []byte(elfMagic)):
		return OpenDWARF(path, opts...)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

// nameSet keeps names in insertion order without duplicates.
type nameSet struct {
	seen  map[string]struct{}
	order []string
}

func newNameSet() *nameSet {
	return &nameSet{seen: make(map[string]struct{})}
}

func (s *nameSet) add(name string) {
	if _, ok := s.seen[name]; ok {
		return
	}
	s.seen[name] = struct{}{}
	s.order = append(s.order, name)
}

// staticSource serves names collected when the file was opened.
type staticSource struct {
	names []string
}

func (s *staticSource) Names() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, name := range s.names {
			if !yield(name) {
				return
			}
		}
	}
}

func (s *staticSource) Close() error { return nil }

// pointerName appends one '*' per pointer level, the way debuggers print
// C pointer types.
func pointerName(base string, levels int) string {
	if levels == 0 {
		return base
	}
	return base + " " + strings.Repeat("*", levels)
}
