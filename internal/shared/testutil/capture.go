package testutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Entry is one captured log line, with attributes flattened into a map.
// Grouped attributes use dotted keys ("request.method").
type Entry struct {
	Time    time.Time
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// LogCapture is a slog.Handler that records every line it handles so tests
// can assert on structured output without parsing JSON. All levels are
// enabled. Handlers derived through WithAttrs and WithGroup share the
// parent's buffer, so one capture sees the whole tree.
type LogCapture struct {
	mu      *sync.Mutex
	entries *[]Entry
	bound   []slog.Attr
	prefix  string
	t       testing.TB
}

// NewLogCapture creates an empty capture. When tb is non-nil each captured
// line is mirrored to the test log for debugging.
func NewLogCapture(tb testing.TB) *LogCapture {
	entries := make([]Entry, 0, 16)
	return &LogCapture{
		mu:      &sync.Mutex{},
		entries: &entries,
		t:       tb,
	}
}

// NewTestLogger returns a logger wired to a fresh capture.
func NewTestLogger(tb testing.TB) (*slog.Logger, *LogCapture) {
	capture := NewLogCapture(tb)
	return slog.New(capture), capture
}

// Enabled implements slog.Handler. Tests want everything.
func (c *LogCapture) Enabled(context.Context, slog.Level) bool { return true }

// Handle implements slog.Handler.
func (c *LogCapture) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any, r.NumAttrs()+len(c.bound))
	for _, a := range c.bound {
		attrs[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		attrs[c.prefix+a.Key] = a.Value.Any()
		return true
	})

	c.mu.Lock()
	*c.entries = append(*c.entries, Entry{
		Time:    r.Time,
		Level:   r.Level,
		Message: r.Message,
		Attrs:   attrs,
	})
	c.mu.Unlock()

	if c.t != nil {
		c.t.Logf("[%s] %s %v", r.Level, r.Message, attrs)
	}
	return nil
}

// WithAttrs implements slog.Handler. The child records into the same
// buffer with the given attributes bound to every entry.
func (c *LogCapture) WithAttrs(attrs []slog.Attr) slog.Handler {
	child := *c
	bound := make([]slog.Attr, 0, len(c.bound)+len(attrs))
	bound = append(bound, c.bound...)
	for _, a := range attrs {
		bound = append(bound, slog.Attr{Key: c.prefix + a.Key, Value: a.Value})
	}
	child.bound = bound
	return &child
}

// WithGroup implements slog.Handler. Group nesting flattens to dotted keys.
func (c *LogCapture) WithGroup(name string) slog.Handler {
	if name == "" {
		return c
	}
	child := *c
	child.prefix = c.prefix + name + "."
	return &child
}

// Entries returns a copy of everything captured so far.
func (c *LogCapture) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Entry, len(*c.entries))
	copy(out, *c.entries)
	return out
}

// EntriesAt returns the captured entries at one level.
func (c *LogCapture) EntriesAt(level slog.Level) []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []Entry
	for _, e := range *c.entries {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}

// HasMessage reports whether any captured message contains substr.
func (c *LogCapture) HasMessage(substr string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, e := range *c.entries {
		if strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

// HasAttr reports whether any captured entry carries key=value.
func (c *LogCapture) HasAttr(key string, value any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, e := range *c.entries {
		if got, ok := e.Attrs[key]; ok && got == value {
			return true
		}
	}
	return false
}

// Len returns the number of captured entries.
func (c *LogCapture) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(*c.entries)
}

// Reset discards everything captured so far.
func (c *LogCapture) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	*c.entries = (*c.entries)[:0]
}

// RequireMessage fails the test unless an entry at the level contains msg.
func RequireMessage(tb testing.TB, c *LogCapture, level slog.Level, msg string) {
	tb.Helper()

	for _, e := range c.EntriesAt(level) {
		if strings.Contains(e.Message, msg) {
			return
		}
	}
	require.Failf(tb, "log message not found",
		"wanted %q at level %s, captured: %v", msg, level, c.EntriesAt(level))
}

// RequireAttr fails the test unless some entry carries key=value.
func RequireAttr(tb testing.TB, c *LogCapture, key string, value any) {
	tb.Helper()
	require.Truef(tb, c.HasAttr(key, value),
		"log attribute %s=%v not found in %v", key, value, c.Entries())
}

// RequireNoErrorLogs fails the test when anything was logged at error level.
func RequireNoErrorLogs(tb testing.TB, c *LogCapture) {
	tb.Helper()
	require.Emptyf(tb, c.EntriesAt(slog.LevelError),
		"unexpected error logs")
}
