package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/skdltmxn/odindecl/demangle"
	"github.com/skdltmxn/odindecl/internal/pdbtest"
)

// run executes the root command with fresh flag values.
func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	outputFile, outputFormat, cacheFile, maxDepth, verbose = "", formatText, "", 0, false
	typesKind, typesLimit, lookupLimit = "", 0, 20

	var stdout, stderr bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	err := execute()
	return stdout.String(), stderr.String(), err
}

func writePDB(t *testing.T) string {
	t.Helper()
	tpi := pdbtest.TPI(
		pdbtest.Structure("main::Point", false),
		pdbtest.Pointer(0x1000),
		pdbtest.Structure("[dynamic]int", false),
		pdbtest.Structure("map[string]main::Point", false),
		pdbtest.Union("raw_union"),
		pdbtest.Structure("[^]u8", false),
	)
	path := filepath.Join(t.TempDir(), "app.pdb")
	require.NoError(t, os.WriteFile(path, pdbtest.MSF(nil, []byte{}, tpi), 0o644))
	return path
}

func TestDemangleArgs(t *testing.T) {
	out, _, err := run(t, "", "demangle",
		"struct map[string][dynamic]int",
		"struct [string",
		"struct main::[util.odin]::Array($T=u16,$N=4) *")
	require.NoError(t, err)
	assert.Equal(t, "map[string][dynamic]int\n"+
		"Invalid declaration 'struct [string'.\n"+
		"^main.Array($T=u16, $N=4)\n", out)
}

func TestDemangleStdin(t *testing.T) {
	stdin := "# names from gdb\nstruct []u8\n\n  struct [4]f32  \n[^]u8\n"
	out, _, err := run(t, stdin, "demangle")
	require.NoError(t, err)
	assert.Equal(t, "[]u8\n[4]f32\nInvalid declaration '[^]u8'.\n", out)
}

func TestDemangleJSON(t *testing.T) {
	out, _, err := run(t, "", "demangle", "-f", "json", "struct [dynamic]int", "struct ]")
	require.NoError(t, err)

	var got []decoded
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "[dynamic]int", got[0].Rendered)
	require.NotNil(t, got[0].Declaration)
	assert.Equal(t, demangle.ContainerDynamicArray, got[0].Declaration.Container.Kind)
	assert.Empty(t, got[0].Error)
	assert.Equal(t, "struct ]", got[1].Rendered)
	assert.NotEmpty(t, got[1].Error)
}

func TestDemangleYAML(t *testing.T) {
	out, _, err := run(t, "", "demangle", "--format", "yaml", "struct map[string]int")
	require.NoError(t, err)

	var got []map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "map[string]int", got[0]["rendered"])
	assert.Contains(t, out, "kind: map")
}

func TestUnknownFormat(t *testing.T) {
	_, _, err := run(t, "", "demangle", "-f", "xml", "struct T")
	assert.ErrorContains(t, err, "unknown output format")
}

func TestTypes(t *testing.T) {
	path := writePDB(t)

	out, _, err := run(t, "", "types", path)
	require.NoError(t, err)
	for _, want := range []string{"main.Point", "^main.Point", "[dynamic]int", "map[string]main.Point", "raw_union", "[^]u8", "Total: 6 types"} {
		assert.Contains(t, out, want)
	}
	assert.Contains(t, out, "invalid")

	out, _, err = run(t, "", "types", "--kind", "map", path)
	require.NoError(t, err)
	assert.Contains(t, out, "map[string]main.Point")
	assert.NotContains(t, out, "[dynamic]int")
	assert.Contains(t, out, "Total: 1 types")

	out, _, err = run(t, "", "types", "-n", "2", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Total: 2 types")

	_, _, err = run(t, "", "types", "--kind", "tuple", path)
	assert.ErrorContains(t, err, "unknown container kind")
}

func TestTypesUnknownFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "names.txt")
	require.NoError(t, os.WriteFile(path, []byte("struct T\n"), 0o644))
	_, _, err := run(t, "", "types", path)
	assert.Error(t, err)
}

func TestLookup(t *testing.T) {
	path := writePDB(t)

	out, _, err := run(t, "", "lookup", path, "point")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "main.Point")
	assert.NotContains(t, out, "raw_union")

	out, _, err = run(t, "", "lookup", path, "zzz")
	require.NoError(t, err)
	assert.Equal(t, "No types matching 'zzz'\n", out)
}

func TestStats(t *testing.T) {
	path := writePDB(t)

	out, _, err := run(t, "", "stats", "-f", "json", path)
	require.NoError(t, err)

	var report statsReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 6, report.Names)
	assert.Equal(t, 1, report.Invalid)
	assert.Equal(t, 1, report.Containers["map"])
	assert.Equal(t, 1, report.Containers["dynamic"])
	assert.Equal(t, 3, report.Containers["none"])
	assert.Equal(t, uint64(6), report.Cache.Misses)
	assert.Equal(t, uint64(1), report.Cache.Failures)
}

func TestCacheFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "names.cbor")

	_, _, err := run(t, "", "demangle", "--cache-file", path, "struct []u8", "struct [")
	require.NoError(t, err)
	require.FileExists(t, path)

	out, _, err := run(t, "", "demangle", "--cache-file", path, "struct []u8", "struct [")
	require.NoError(t, err)
	assert.Equal(t, "[]u8\nInvalid declaration 'struct ['.\n", out)

	stats := cache.Stats()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses, "failures are not persisted")
}

func TestVerboseLogging(t *testing.T) {
	_, stderr, err := run(t, "", "demangle", "-v", "struct []u8")
	require.NoError(t, err)
	assert.Contains(t, stderr, "level=DEBUG")
	assert.Contains(t, stderr, `raw="struct []u8"`)
}

func TestOutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	out, _, err := run(t, "", "demangle", "-o", path, "struct []u8")
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]u8\n", string(data))
}

func TestCleanupAfterFailure(t *testing.T) {
	dir := t.TempDir()
	cachePath := filepath.Join(dir, "names.cbor")
	outPath := filepath.Join(dir, "out.txt")

	_, _, err := run(t, "", "types", "--cache-file", cachePath, "-o", outPath, filepath.Join(dir, "missing.pdb"))
	require.Error(t, err)
	assert.FileExists(t, cachePath, "cache is saved when the command fails")
	assert.FileExists(t, outPath)
	assert.Nil(t, outputCloser, "output file is closed")
}

func TestCorruptCacheFileKept(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "names.cbor")
	require.NoError(t, os.WriteFile(cachePath, []byte("not cbor"), 0o644))

	_, _, err := run(t, "", "demangle", "--cache-file", cachePath, "struct []u8")
	assert.ErrorContains(t, err, "failed to load cache file")

	data, err := os.ReadFile(cachePath)
	require.NoError(t, err)
	assert.Equal(t, "not cbor", string(data))
}
