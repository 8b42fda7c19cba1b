package symtab

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skdltmxn/odindecl/internal/pdbtest"
)

func samplePDB() []byte {
	tpi := pdbtest.TPI(
		pdbtest.Structure("main::Point", true),             // 0x1000
		pdbtest.Structure("main::Point", false),            // 0x1001
		pdbtest.Pointer(0x1001),                            // 0x1002
		pdbtest.Pointer(0x1002),                            // 0x1003
		pdbtest.Union("raw_union"),                         // 0x1004
		pdbtest.Enum("main::Color"),                        // 0x1005
		pdbtest.Pointer(0x0074),                            // 0x1006 int *
		pdbtest.Modifier(0x1001),                           // 0x1007
		pdbtest.Pointer(0x1007),                            // 0x1008 const Point *
		pdbtest.Structure("[dynamic]int", false),           // 0x1009
		pdbtest.Class("runtime::Allocator"),                // 0x100a
		pdbtest.Record(0x1505, []byte{0, 0}),               // 0x100b malformed
		pdbtest.Pointer(0x1004),                            // 0x100c
		pdbtest.Structure("map[string]main::Point", false), // 0x100d
	)
	return pdbtest.MSF(nil, []byte{}, tpi)
}

func TestNewPDB(t *testing.T) {
	raw := samplePDB()
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	src, err := NewPDB(bytes.NewReader(raw), int64(len(raw)), WithLogger(logger))
	require.NoError(t, err)
	defer src.Close()

	want := []string{
		"struct main::Point",
		"struct main::Point *",
		"struct main::Point **",
		"union raw_union",
		"enum main::Color",
		"struct [dynamic]int",
		"struct runtime::Allocator",
		"union raw_union *",
		"struct map[string]main::Point",
	}
	assert.Equal(t, want, slices.Collect(src.Names()))
	assert.Contains(t, logs.String(), "skipping malformed record")
	assert.Contains(t, logs.String(), "index=0x100b")
}

func TestNewPDBWithoutTypes(t *testing.T) {
	raw := pdbtest.MSF(nil, []byte{})
	src, err := NewPDB(bytes.NewReader(raw), int64(len(raw)))
	require.NoError(t, err)
	assert.Empty(t, slices.Collect(src.Names()))
}

func TestNamesStopsEarly(t *testing.T) {
	raw := samplePDB()
	src, err := NewPDB(bytes.NewReader(raw), int64(len(raw)))
	require.NoError(t, err)

	var got []string
	for name := range src.Names() {
		got = append(got, name)
		if len(got) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"struct main::Point", "struct main::Point *"}, got)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	pdbPath := filepath.Join(dir, "app.pdb")
	require.NoError(t, os.WriteFile(pdbPath, samplePDB(), 0o644))
	src, err := Open(pdbPath)
	require.NoError(t, err)
	assert.Contains(t, slices.Collect(src.Names()), "enum main::Color")
	require.NoError(t, src.Close())

	txtPath := filepath.Join(dir, "names.txt")
	require.NoError(t, os.WriteFile(txtPath, []byte("struct main::Point\n"), 0o644))
	_, err = Open(txtPath)
	assert.ErrorIs(t, err, ErrUnknownFormat)

	emptyPath := filepath.Join(dir, "empty")
	require.NoError(t, os.WriteFile(emptyPath, nil, 0o644))
	_, err = Open(emptyPath)
	assert.ErrorIs(t, err, ErrUnknownFormat)

	elfPath := filepath.Join(dir, "broken.elf")
	require.NoError(t, os.WriteFile(elfPath, []byte("\x7fELF garbage"), 0o644))
	_, err = Open(elfPath)
	assert.Error(t, err)

	_, err = Open(filepath.Join(dir, "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
