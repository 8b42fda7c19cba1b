package symtab

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/skdltmxn/odindecl/internal/codeview"
	"github.com/skdltmxn/odindecl/msf"
)

// maxPointerChain bounds how many LF_POINTER records are followed to reach
// a named type.
const maxPointerChain = 16

// OpenPDB reads the type names from the TPI stream of a PDB file.
func OpenPDB(path string, opts ...Option) (Source, error) {
	f, err := msf.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readPDB(f, opts...)
}

// NewPDB reads the type names from a PDB held in r.
func NewPDB(r io.ReaderAt, size int64, opts ...Option) (Source, error) {
	f, err := msf.NewFile(r, size)
	if err != nil {
		return nil, err
	}
	return readPDB(f, opts...)
}

func readPDB(f *msf.File, opts ...Option) (Source, error) {
	cfg := buildOptions(opts...)

	if !f.StreamExists(msf.StreamTPI) {
		return &staticSource{}, nil
	}
	data, err := f.ReadStream(msf.StreamTPI)
	if err != nil {
		return nil, fmt.Errorf("symtab: failed to read TPI stream: %w", err)
	}
	types, err := codeview.ParseTPI(data)
	if err != nil {
		return nil, err
	}

	set := newNameSet()
	for rec := range types.All() {
		switch {
		case rec.Kind.IsUDT():
			udt, err := codeview.ParseUDT(rec)
			if err != nil {
				cfg.debug("skipping malformed record", recordAttrs(rec, err)...)
				continue
			}
			set.add(udt.Keyword() + " " + udt.Name)
		case rec.Kind == codeview.LF_POINTER:
			name, err := pointeeName(types, rec)
			if err != nil {
				cfg.debug("skipping pointer", recordAttrs(rec, err)...)
				continue
			}
			if name != "" {
				set.add(name)
			}
		}
	}
	return &staticSource{names: set.order}, nil
}

// pointeeName follows a pointer chain down to a user-defined type. It
// returns "" for pointers to primitive types.
func pointeeName(types *codeview.Types, rec codeview.Record) (string, error) {
	levels := 0
	for rec.Kind == codeview.LF_POINTER {
		if levels == maxPointerChain {
			return "", fmt.Errorf("pointer chain longer than %d", maxPointerChain)
		}
		ptr, err := codeview.ParsePointer(rec)
		if err != nil {
			return "", err
		}
		levels++
		if ptr.Referent < codeview.FirstUserTypeIndex {
			return "", nil
		}
		if rec, err = types.Record(ptr.Referent); err != nil {
			return "", err
		}
	}
	if !rec.Kind.IsUDT() {
		return "", nil
	}
	udt, err := codeview.ParseUDT(rec)
	if err != nil {
		return "", err
	}
	return pointerName(udt.Keyword()+" "+udt.Name, levels), nil
}

func recordAttrs(rec codeview.Record, err error) []slog.Attr {
	return []slog.Attr{
		slog.String("index", fmt.Sprintf("0x%x", uint32(rec.Index))),
		slog.String("kind", rec.Kind.String()),
		slog.String("error", err.Error()),
	}
}
