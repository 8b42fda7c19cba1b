package symtab

import (
	"debug/elf"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"slices"
	"testing"

	"github.com/blacktop/go-dwarf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGDBName(t *testing.T) {
	point := &dwarf.StructType{Kind: "struct", StructName: "main::Point"}
	tests := []struct {
		name string
		typ  dwarf.Type
		want string
		ok   bool
	}{
		{"struct", point, "struct main::Point", true},
		{"union", &dwarf.StructType{Kind: "union", StructName: "raw_union"}, "union raw_union", true},
		{"class", &dwarf.StructType{Kind: "class", StructName: "Widget"}, "struct Widget", true},
		{"enum", &dwarf.EnumType{EnumName: "main::Color"}, "enum main::Color", true},
		{"pointer", &dwarf.PtrType{Type: point}, "struct main::Point *", true},
		{"double pointer", &dwarf.PtrType{Type: &dwarf.PtrType{Type: point}}, "struct main::Point **", true},
		{"anonymous", &dwarf.StructType{Kind: "struct"}, "", false},
		{"anonymous enum", &dwarf.EnumType{}, "", false},
		{"void pointer", &dwarf.PtrType{Type: &dwarf.VoidType{}}, "", false},
		{"int", &dwarf.IntType{}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := gdbName(tt.typ)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func requireLinux(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("builds a binary")
	}
	if runtime.GOOS != "linux" {
		t.Skip("ELF binaries only")
	}
}

func collectNames(t *testing.T, path string) []string {
	t.Helper()
	src, err := Open(path)
	require.NoError(t, err)
	defer src.Close()
	return slices.Collect(src.Names())
}

const shapesProgram = `package main

import "fmt"

type Point struct{ X, Y int }

type Shape struct {
	Origin *Point
	Name   string
}

var shapes = []*Shape{{Origin: &Point{1, 2}, Name: "unit"}}

func main() {
	fmt.Println(shapes)
}
`

func TestOpenDWARFGoBinary(t *testing.T) {
	requireLinux(t)
	goBin, err := exec.LookPath("go")
	if err != nil {
		t.Skip("go toolchain not found")
	}

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module example.com/shapes\n\ngo 1.21\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte(shapesProgram), 0o644))

	bin := filepath.Join(dir, "shapes")
	cmd := exec.Command(goBin, "build", "-o", bin, ".")
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "CGO_ENABLED=0", "GOFLAGS=", "GOTOOLCHAIN=local")
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "%s", out)

	names := collectNames(t, bin)
	assert.Contains(t, names, "struct main.Point")
	assert.Contains(t, names, "struct main.Shape")
	assert.Contains(t, names, "struct main.Point *")
}

const cProgram = `struct string { char *data; long len; };
union raw_union { int i; float f; };

struct string s;
union raw_union u;
struct string *sp = &s;

int main(void) { return sp->len + u.i; }
`

func TestOpenDWARFCBinary(t *testing.T) {
	requireLinux(t)
	cc, err := exec.LookPath("cc")
	if err != nil {
		t.Skip("C compiler not found")
	}

	dir := t.TempDir()
	srcPath := filepath.Join(dir, "types.c")
	require.NoError(t, os.WriteFile(srcPath, []byte(cProgram), 0o644))

	for _, version := range []string{"-gdwarf-4", "-gdwarf-5"} {
		t.Run(version, func(t *testing.T) {
			bin := filepath.Join(dir, "types"+version)
			out, err := exec.Command(cc, "-g", version, "-o", bin, srcPath).CombinedOutput()
			if err != nil {
				t.Skipf("cc %s failed: %s", version, out)
			}

			names := collectNames(t, bin)
			assert.Contains(t, names, "struct string")
			assert.Contains(t, names, "union raw_union")
			assert.Contains(t, names, "struct string *")
		})
	}
}

func TestOpenDWARFTestBinary(t *testing.T) {
	requireLinux(t)
	self, err := os.Executable()
	require.NoError(t, err)

	f, err := elf.Open(self)
	require.NoError(t, err)
	defer f.Close()
	if f.Section(".debug_info") == nil {
		_, err = OpenDWARF(self)
		assert.ErrorIs(t, err, ErrNoDebugInfo)
		return
	}

	d, err := loadDWARF(f)
	require.NoError(t, err)
	names, err := dwarfNames(d, options{})
	require.NoError(t, err)
	assert.NotEmpty(t, names)
}
