package codeview

import "fmt"

// LeafKind is the kind field of a type record.
type LeafKind uint16

// Leaf kinds this package decodes.
const (
	LF_POINTER   LeafKind = 0x1002
	LF_CLASS     LeafKind = 0x1504
	LF_STRUCTURE LeafKind = 0x1505
	LF_UNION     LeafKind = 0x1506
	LF_ENUM      LeafKind = 0x1507
)

func (k LeafKind) String() string {
	switch k {
	case LF_POINTER:
		return "LF_POINTER"
	case LF_CLASS:
		return "LF_CLASS"
	case LF_STRUCTURE:
		return "LF_STRUCTURE"
	case LF_UNION:
		return "LF_UNION"
	case LF_ENUM:
		return "LF_ENUM"
	default:
		return fmt.Sprintf("LeafKind(0x%04x)", uint16(k))
	}
}

// IsUDT reports whether k is a class, structure, union or enum record.
func (k LeafKind) IsUDT() bool {
	switch k {
	case LF_CLASS, LF_STRUCTURE, LF_UNION, LF_ENUM:
		return true
	}
	return false
}

// ClassProperties is the property bit field shared by UDT records.
type ClassProperties uint16

// PropForwardRef is the forward-reference property bit.
const PropForwardRef ClassProperties = 0x0080

// IsForwardRef reports whether the record only declares the type.
func (p ClassProperties) IsForwardRef() bool { return p&PropForwardRef != 0 }

// UDT is the named part of a class, structure, union or enum record.
type UDT struct {
	Kind       LeafKind
	Properties ClassProperties
	Name       string
}

// Keyword is the C aggregate keyword a debugger prints before the name.
func (u *UDT) Keyword() string {
	switch u.Kind {
	case LF_UNION:
		return "union"
	case LF_ENUM:
		return "enum"
	default:
		return "struct"
	}
}

// ParseUDT decodes an LF_CLASS, LF_STRUCTURE, LF_UNION or LF_ENUM record.
func ParseUDT(rec Record) (*UDT, error) {
	if !rec.Kind.IsUDT() {
		return nil, fmt.Errorf("%w: %s is not a user-defined type", ErrInvalidRecord, rec.Kind)
	}

	r := NewReader(rec.Data)
	if _, err := r.ReadU16(); err != nil { // member count
		return nil, err
	}
	props, err := r.ReadU16()
	if err != nil {
		return nil, err
	}

	// Fixed-width type indices between the properties and the name.
	switch rec.Kind {
	case LF_CLASS, LF_STRUCTURE:
		err = r.Skip(12) // field list, derived from, vshape
	case LF_UNION:
		err = r.Skip(4) // field list
	case LF_ENUM:
		err = r.Skip(8) // underlying type, field list
	}
	if err != nil {
		return nil, err
	}

	if rec.Kind != LF_ENUM {
		if _, err := r.ReadNumeric(); err != nil { // size
			return nil, err
		}
	}

	name, err := r.ReadCString()
	if err != nil {
		return nil, err
	}
	return &UDT{Kind: rec.Kind, Properties: ClassProperties(props), Name: name}, nil
}

// Pointer is the part of an LF_POINTER record naming the pointee.
type Pointer struct {
	Referent   TypeIndex
	Attributes uint32
}

// ParsePointer decodes an LF_POINTER record.
func ParsePointer(rec Record) (*Pointer, error) {
	if rec.Kind != LF_POINTER {
		return nil, fmt.Errorf("%w: %s is not a pointer", ErrInvalidRecord, rec.Kind)
	}
	r := NewReader(rec.Data)
	referent, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	attrs, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	return &Pointer{Referent: TypeIndex(referent), Attributes: attrs}, nil
}
