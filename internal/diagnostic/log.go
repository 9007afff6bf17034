package diagnostic

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Log is an append-only, ordered list of diagnostics.
// The zero value is ready to use. A nil *Log discards everything.
type Log struct {
	mu      sync.Mutex
	entries []Diagnostic
}

// Add appends a diagnostic.
func (l *Log) Add(d Diagnostic) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, d)
}

// Missing records an unresolvable path.
func (l *Log) Missing(path, segment string) {
	l.Add(Diagnostic{
		Path:    path,
		Reason:  ReasonMissing,
		Segment: segment,
		Detail:  fmt.Sprintf("key %q not found in path %q, using default", segment, path),
	})
}

// Merge appends all entries of other, preserving their order.
func (l *Log) Merge(other *Log) {
	if l == nil || other == nil {
		return
	}
	entries := other.Entries()
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entries...)
}

// Entries returns a copy of the recorded diagnostics in insertion order.
func (l *Log) Entries() []Diagnostic {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Diagnostic, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of recorded diagnostics.
func (l *Log) Len() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Count returns the number of diagnostics with the given reason.
func (l *Log) Count(reason Reason) int {
	n := 0
	for _, d := range l.Entries() {
		if d.Reason == reason {
			n++
		}
	}
	return n
}

// HasErrors reports whether any unrecoverable type mismatch was recorded.
func (l *Log) HasErrors() bool {
	return l.Count(ReasonUnrecoverable) > 0
}

// Report writes every diagnostic to logger at the level implied by its
// reason. Extra attrs are attached to each record.
func (l *Log) Report(ctx context.Context, logger *slog.Logger, attrs ...slog.Attr) {
	if logger == nil {
		return
	}
	for _, d := range l.Entries() {
		all := make([]slog.Attr, 0, len(attrs)+3)
		all = append(all, attrs...)
		all = append(all,
			slog.String("path", d.Path),
			slog.String("reason", string(d.Reason)),
		)
		if d.Segment != "" {
			all = append(all, slog.String("segment", d.Segment))
		}
		logger.LogAttrs(ctx, d.Severity().Level(), d.Detail, all...)
	}
}
