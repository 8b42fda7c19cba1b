package symtab

import (
	"bufio"
	"io"
	"iter"
	"strings"
)

var _ Source = (*Lines)(nil)

// Lines yields the non-empty lines of a reader, trimmed. Lines starting
// with '#' are skipped. Unlike the file sources it does not deduplicate.
type Lines struct {
	scanner *bufio.Scanner
	closer  io.Closer
	err     error
}

// NewLines returns a Lines reading from r. If r is an io.Closer, Close
// closes it.
func NewLines(r io.Reader) *Lines {
	l := &Lines{scanner: bufio.NewScanner(r)}
	if c, ok := r.(io.Closer); ok {
		l.closer = c
	}
	return l
}

// Names yields lines as they are read. A Lines can be consumed once.
func (l *Lines) Names() iter.Seq[string] {
	return func(yield func(string) bool) {
		for l.scanner.Scan() {
			line := strings.TrimSpace(l.scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			if !yield(line) {
				return
			}
		}
		l.err = l.scanner.Err()
	}
}

// Err returns the first read error.
func (l *Lines) Err() error {
	return l.err
}

func (l *Lines) Close() error {
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}
