package demangle

import (
	"fmt"
	"strconv"
	"strings"
)

// Aggregate is the C aggregate keyword that prefixes a debugger type name.
type Aggregate uint8

const (
	AggregateNone Aggregate = iota
	AggregateStruct
	AggregateEnum
	AggregateUnion
)

func (a Aggregate) String() string {
	switch a {
	case AggregateStruct:
		return "struct"
	case AggregateEnum:
		return "enum"
	case AggregateUnion:
		return "union"
	default:
		return ""
	}
}

// MarshalText implements encoding.TextMarshaler.
func (a Aggregate) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Aggregate) UnmarshalText(text []byte) error {
	switch string(text) {
	case "":
		*a = AggregateNone
	case "struct":
		*a = AggregateStruct
	case "enum":
		*a = AggregateEnum
	case "union":
		*a = AggregateUnion
	default:
		return fmt.Errorf("demangle: unknown aggregate %q", text)
	}
	return nil
}

func aggregateOf(kind TokenKind) Aggregate {
	switch kind {
	case TokenStruct:
		return AggregateStruct
	case TokenEnum:
		return AggregateEnum
	case TokenUnion:
		return AggregateUnion
	default:
		return AggregateNone
	}
}

// ContainerKind identifies an Odin builtin container.
type ContainerKind uint8

const (
	ContainerNone ContainerKind = iota
	ContainerFixedArray
	ContainerSlice
	ContainerDynamicArray
	ContainerMap
	// ContainerMultiPointer only occurs below the outermost declaration.
	ContainerMultiPointer
)

var containerNames = [...]string{
	ContainerNone:         "none",
	ContainerFixedArray:   "array",
	ContainerSlice:        "slice",
	ContainerDynamicArray: "dynamic",
	ContainerMap:          "map",
	ContainerMultiPointer: "multi-pointer",
}

func (k ContainerKind) String() string {
	if int(k) < len(containerNames) {
		return containerNames[k]
	}
	return "ContainerKind(" + strconv.Itoa(int(k)) + ")"
}

// MarshalText implements encoding.TextMarshaler.
func (k ContainerKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *ContainerKind) UnmarshalText(text []byte) error {
	kind, ok := ParseContainerKind(string(text))
	if !ok {
		return fmt.Errorf("demangle: unknown container kind %q", text)
	}
	*k = kind
	return nil
}

// ParseContainerKind maps the String form of a ContainerKind back to it.
func ParseContainerKind(s string) (ContainerKind, bool) {
	for i, name := range containerNames {
		if name == s {
			return ContainerKind(i), true
		}
	}
	return ContainerNone, false
}

// Container describes the outermost container of a declaration.
// Size is only meaningful for ContainerFixedArray.
type Container struct {
	Kind ContainerKind `json:"kind" yaml:"kind"`
	Size int           `json:"size,omitempty" yaml:"size,omitempty"`
}

// notation is the container's own header, e.g. "[]" or "[16]".
func (c Container) notation() string {
	switch c.Kind {
	case ContainerFixedArray:
		return "[" + strconv.Itoa(c.Size) + "]"
	case ContainerSlice:
		return "[]"
	case ContainerDynamicArray:
		return "[dynamic]"
	case ContainerMap:
		return "map"
	case ContainerMultiPointer:
		return "[^]"
	default:
		return ""
	}
}

// Polyarg binds one parametric polymorphic parameter, e.g. $T=u16.
type Polyarg struct {
	Param string `json:"param" yaml:"param"`
	Arg   string `json:"arg" yaml:"arg"`
}

// Declaration is a decoded type name.
//
// Only the outermost container is described structurally. Everything after
// its header (map keys, Odin-style pointers, nested containers) is kept as
// already rendered text in Info.
type Declaration struct {
	Prefix    Aggregate `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Container Container `json:"container" yaml:"container"`
	Info      string    `json:"info,omitempty" yaml:"info,omitempty"`
	Package   string    `json:"package,omitempty" yaml:"package,omitempty"`
	File      string    `json:"file,omitempty" yaml:"file,omitempty"`
	Name      string    `json:"name" yaml:"name"`
	Parapoly  []Polyarg `json:"parapoly,omitempty" yaml:"parapoly,omitempty"`
	Pointer   int       `json:"pointer,omitempty" yaml:"pointer,omitempty"`
}

// IsContainer reports whether the declaration is a slice, array, dynamic
// array or map.
func (d *Declaration) IsContainer() bool {
	return d.Container.Kind != ContainerNone
}

// Qualified returns the package-qualified base name, e.g. "fmt.Info".
func (d *Declaration) Qualified() string {
	if d.Package == "" {
		return d.Name
	}
	return d.Package + "." + d.Name
}

// Render reconstructs the Odin spelling of the declaration.
func (d *Declaration) Render() string {
	var sb strings.Builder
	if d.Pointer > 0 {
		sb.WriteString(strings.Repeat("^", d.Pointer))
	}
	sb.WriteString(d.Container.notation())
	sb.WriteString(d.Info)
	if d.Package != "" {
		sb.WriteString(d.Package)
		sb.WriteByte('.')
	}
	sb.WriteString(d.Name)
	if len(d.Parapoly) > 0 {
		sb.WriteByte('(')
		for i, p := range d.Parapoly {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteByte('$')
			sb.WriteString(p.Param)
			sb.WriteByte('=')
			sb.WriteString(p.Arg)
		}
		sb.WriteByte(')')
	}
	return sb.String()
}

func (d *Declaration) String() string { return d.Render() }

func (d *Declaration) setPrefix(prefix Aggregate) error {
	if d.Prefix != AggregateNone {
		return &FieldError{Field: "prefix", Previous: d.Prefix.String(), Value: prefix.String()}
	}
	d.Prefix = prefix
	return nil
}

func (d *Declaration) setContainer(c Container) error {
	if d.Container.Kind != ContainerNone {
		return &FieldError{Field: "container", Previous: d.Container.notation(), Value: c.notation()}
	}
	d.Container = c
	return nil
}

func (d *Declaration) setPackage(pkg string) error {
	if d.Package != "" {
		return &FieldError{Field: "package", Previous: d.Package, Value: pkg}
	}
	d.Package = pkg
	return nil
}

func (d *Declaration) setName(name string) error {
	if d.Name != "" {
		return &FieldError{Field: "name", Previous: d.Name, Value: name}
	}
	d.Name = name
	return nil
}

func (d *Declaration) addInfo(text string) {
	d.Info += text
}

func (d *Declaration) addPolyarg(param, arg string) {
	d.Parapoly = append(d.Parapoly, Polyarg{Param: param, Arg: arg})
}
