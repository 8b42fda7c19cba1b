package demangle

import (
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/fxamacker/cbor/v2"
)

// snapshotVersion is bumped whenever the encoded layout changes.
const snapshotVersion = 1

type snapshot struct {
	Version int             `cbor:"1,keyasint"`
	Entries []snapshotEntry `cbor:"2,keyasint"`
}

type snapshotEntry struct {
	Raw         string       `cbor:"1,keyasint"`
	Rendered    string       `cbor:"2,keyasint"`
	Declaration *Declaration `cbor:"3,keyasint"`
}

// Save writes every successfully decoded entry to w as CBOR. Failed decodes
// are not saved and will be parsed again by a cache that loads the snapshot.
func (c *Cache) Save(w io.Writer) error {
	c.mu.Lock()
	snap := snapshot{Version: snapshotVersion}
	for raw, e := range c.entries {
		if e.err != nil {
			continue
		}
		snap.Entries = append(snap.Entries, snapshotEntry{
			Raw:         raw,
			Rendered:    e.result.Rendered,
			Declaration: e.result.Declaration,
		})
	}
	c.mu.Unlock()

	sort.Slice(snap.Entries, func(i, j int) bool {
		return snap.Entries[i].Raw < snap.Entries[j].Raw
	})

	if err := cbor.NewEncoder(w).Encode(snap); err != nil {
		return fmt.Errorf("demangle: failed to encode snapshot: %w", err)
	}
	return nil
}

// Load merges a snapshot written by Save into the cache. Entries already
// present in the cache are kept. The stored rendering is not trusted: each
// entry is rendered again from its declaration.
func (c *Cache) Load(r io.Reader) error {
	var snap snapshot
	if err := cbor.NewDecoder(r).Decode(&snap); err != nil {
		return fmt.Errorf("demangle: failed to decode snapshot: %w", err)
	}
	if snap.Version != snapshotVersion {
		return fmt.Errorf("demangle: unsupported snapshot version %d", snap.Version)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	loaded := 0
	for _, se := range snap.Entries {
		if se.Declaration == nil {
			continue
		}
		if _, ok := c.entries[se.Raw]; ok {
			continue
		}
		c.entries[se.Raw] = entry{result: Result{Declaration: se.Declaration, Rendered: se.Declaration.Render()}}
		loaded++
	}
	c.log(slog.LevelDebug, "snapshot loaded", slog.Int("entries", loaded))
	return nil
}
