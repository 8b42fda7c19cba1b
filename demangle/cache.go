package demangle

import (
	"context"
	"log/slog"
	"sync"
)

// Result is a decoded declaration together with its rendering.
// The Declaration is shared by every caller and must not be modified.
type Result struct {
	Declaration *Declaration
	Rendered    string
}

// Stats counts cache activity. Misses equals the number of parses.
type Stats struct {
	Entries  int    `json:"entries" yaml:"entries"`
	Hits     uint64 `json:"hits" yaml:"hits"`
	Misses   uint64 `json:"misses" yaml:"misses"`
	Failures uint64 `json:"failures" yaml:"failures"`
}

type entry struct {
	result Result
	err    error
}

// Cache memoizes decoded declarations by their raw encoded name. Entries
// are never evicted; the number of distinct type names in a program bounds
// its size. A Cache is safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	parser  *Parser
	entries map[string]entry
	stats   Stats
	logger  *slog.Logger
}

// NewCache returns an empty Cache.
func NewCache(opts ...Option) *Cache {
	cfg := buildOptions(opts...)
	return &Cache{
		parser:  NewParser(opts...),
		entries: make(map[string]entry),
		logger:  cfg.logger,
	}
}

// Demangle returns the decoded form of raw, parsing it only the first time
// raw is seen. A failed decode is remembered too: later calls return the
// same error without parsing again. On failure Rendered holds raw itself so
// callers can fall back to the undecoded name.
func (c *Cache) Demangle(raw string) (Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[raw]; ok {
		c.stats.Hits++
		return e.result, e.err
	}

	c.stats.Misses++
	decl, err := c.parser.Parse(raw)
	if err != nil {
		c.stats.Failures++
		c.log(slog.LevelDebug, "decode failed", slog.String("raw", raw), slog.String("error", err.Error()))
		e := entry{result: Result{Rendered: raw}, err: err}
		c.entries[raw] = e
		return e.result, err
	}

	e := entry{result: Result{Declaration: decl, Rendered: decl.Render()}}
	c.entries[raw] = e
	c.log(slog.LevelDebug, "decoded", slog.String("raw", raw), slog.String("rendered", e.result.Rendered))
	return e.result, nil
}

// Len returns the number of cached entries, failures included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Entries = len(c.entries)
	return s
}

// Reset drops every entry and zeroes the counters.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
	c.stats = Stats{}
}

func (c *Cache) log(level slog.Level, msg string, attrs ...slog.Attr) {
	if c.logger == nil {
		return
	}
	c.logger.LogAttrs(context.Background(), level, msg, attrs...)
}
