package symtab

import (
	"errors"
	"io"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLines(t *testing.T) {
	input := strings.Join([]string{
		"# decoded by hand",
		"struct map[string]int",
		"",
		"   struct [dynamic]u8  ",
		"struct map[string]int",
		"\t",
	}, "\n")

	l := NewLines(strings.NewReader(input))
	assert.Equal(t, []string{
		"struct map[string]int",
		"struct [dynamic]u8",
		"struct map[string]int",
	}, slices.Collect(l.Names()))
	assert.NoError(t, l.Err())
	assert.NoError(t, l.Close())
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("boom") }

func TestLinesError(t *testing.T) {
	l := NewLines(failingReader{})
	assert.Empty(t, slices.Collect(l.Names()))
	assert.EqualError(t, l.Err(), "boom")
}

type closeRecorder struct {
	io.Reader
	closed bool
}

func (c *closeRecorder) Close() error {
	c.closed = true
	return nil
}

func TestLinesClose(t *testing.T) {
	r := &closeRecorder{Reader: strings.NewReader("struct T\n")}
	l := NewLines(r)
	require.NoError(t, l.Close())
	assert.True(t, r.closed)
}
