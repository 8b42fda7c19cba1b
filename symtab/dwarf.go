package symtab

import (
	"debug/elf"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/blacktop/go-dwarf"
)

// ErrNoDebugInfo is returned for ELF files without a .debug_info section.
var ErrNoDebugInfo = errors.New("symtab: no DWARF debug info")

// OpenDWARF reads the struct, union, enum and pointer type names from the
// DWARF sections of an ELF file.
func OpenDWARF(path string, opts ...Option) (Source, error) {
	cfg := buildOptions(opts...)

	f, err := elf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("symtab: failed to open ELF file: %w", err)
	}
	defer f.Close()

	d, err := loadDWARF(f)
	if err != nil {
		return nil, err
	}
	names, err := dwarfNames(d, cfg)
	if err != nil {
		return nil, err
	}
	return &staticSource{names: names}, nil
}

// dwarf5Sections are added after dwarf.New. DWARF 5 producers (gcc 11+,
// clang 14+, Go 1.25) refer to them from the very first unit.
var dwarf5Sections = []string{"addr", "line_str", "str_offsets", "rnglists"}

func loadDWARF(f *elf.File) (*dwarf.Data, error) {
	dat := map[string][]byte{"abbrev": nil, "info": nil, "str": nil, "line": nil, "ranges": nil}
	for _, name := range dwarf5Sections {
		dat[name] = nil
	}
	for _, s := range f.Sections {
		suffix, ok := strings.CutPrefix(s.Name, ".debug_")
		if !ok {
			continue
		}
		if _, want := dat[suffix]; !want {
			continue
		}
		b, err := s.Data()
		if err != nil {
			return nil, fmt.Errorf("symtab: failed to read section %s: %w", s.Name, err)
		}
		dat[suffix] = b
	}
	if dat["info"] == nil {
		return nil, ErrNoDebugInfo
	}

	d, err := dwarf.New(dat["abbrev"], nil, nil, dat["info"], dat["line"], nil, dat["ranges"], dat["str"])
	if err != nil {
		return nil, fmt.Errorf("symtab: failed to load DWARF: %w", err)
	}
	for _, name := range dwarf5Sections {
		if dat[name] == nil {
			continue
		}
		if err := d.AddSection(".debug_"+name, dat[name]); err != nil {
			return nil, fmt.Errorf("symtab: failed to add section .debug_%s: %w", name, err)
		}
	}
	return d, nil
}

func dwarfNames(d *dwarf.Data, cfg options) ([]string, error) {
	set := newNameSet()
	r := d.Reader()
	for {
		e, err := r.Next()
		if err != nil {
			return nil, fmt.Errorf("symtab: failed to read DWARF entry: %w", err)
		}
		if e == nil {
			break
		}

		switch e.Tag {
		case dwarf.TagStructType, dwarf.TagClassType, dwarf.TagUnionType,
			dwarf.TagEnumerationType, dwarf.TagPointerType:
		default:
			continue
		}

		t, err := d.Type(e.Offset)
		if err != nil {
			cfg.debug("skipping DWARF type",
				slog.String("offset", fmt.Sprintf("0x%x", uint32(e.Offset))),
				slog.String("error", err.Error()))
			continue
		}
		if name, ok := gdbName(t); ok {
			set.add(name)
		}
	}
	return set.order, nil
}

// gdbName formats t the way gdb names it in type listings. Only named
// aggregates and pointers to them have a name.
func gdbName(t dwarf.Type) (string, bool) {
	levels := 0
	for {
		p, ok := t.(*dwarf.PtrType)
		if !ok {
			break
		}
		if p.Type == nil {
			return "", false
		}
		t = p.Type
		levels++
	}

	var base string
	switch t := t.(type) {
	case *dwarf.StructType:
		if t.StructName == "" {
			return "", false
		}
		kind := t.Kind
		if kind == "class" {
			kind = "struct"
		}
		base = kind + " " + t.StructName
	case *dwarf.EnumType:
		if t.EnumName == "" {
			return "", false
		}
		base = "enum " + t.EnumName
	default:
		return "", false
	}
	return pointerName(base, levels), true
}
