// Package ledger persists which relevances have already been surfaced. One
// append-only UTF-8 text file per source, one serialized relevance key per
// line. Membership is exact whole-line equality: testing by substring over
// the file's raw text would classify "3|X|Y" as known once "33|X|Y" exists,
// so the snapshot is an explicit set keyed by the full line.
package ledger

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Ledger is the durable append-only store for one source.
type Ledger struct {
	path string
}

// New creates a ledger handle for a source. The backing file lives at
// <dir>/<source>.log and is created empty on first load.
func New(dir, source string) *Ledger {
	return &Ledger{path: filepath.Join(dir, source+".log")}
}

// Path returns the backing file location.
func (l *Ledger) Path() string {
	return l.path
}

// Load reads every historical record into an in-memory snapshot, creating
// the file (and its directory) if absent. The snapshot is the membership
// baseline for one cycle; concurrent cycles against the same ledger are not
// supported.
func (l *Ledger) Load() (*Snapshot, error) {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return nil, fmt.Errorf("ledger: create dir: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_RDONLY|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("ledger: open %s: %w", l.path, err)
	}
	defer f.Close()

	// Keys embed announcement text of unbounded length (some sources key on
	// the full body), so lines are read without a size cap.
	snap := &Snapshot{known: make(map[string]struct{})}
	r := bufio.NewReader(f)
	for {
		line, err := r.ReadString('\n')
		if trimmed := strings.TrimRight(line, "\n\r"); trimmed != "" {
			snap.known[trimmed] = struct{}{}
		}
		if err == io.EOF {
			return snap, nil
		}
		if err != nil {
			return nil, fmt.Errorf("ledger: read %s: %w", l.path, err)
		}
	}
}

// Append durably records the given keys, one line each, in a single write.
// Records are never rewritten or removed. Keys must not contain newlines;
// relevance serialization guarantees that.
func (l *Ledger) Append(keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	for _, k := range keys {
		if strings.ContainsAny(k, "\n\r") {
			return fmt.Errorf("ledger: key contains newline: %q", k)
		}
	}

	f, err := os.OpenFile(l.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("ledger: open %s for append: %w", l.path, err)
	}
	defer f.Close()

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('\n')
	}
	if _, err := f.WriteString(b.String()); err != nil {
		return fmt.Errorf("ledger: append to %s: %w", l.path, err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("ledger: sync %s: %w", l.path, err)
	}
	return nil
}

// Snapshot is the in-memory membership set loaded at cycle start.
type Snapshot struct {
	known map[string]struct{}
}

// Known reports whether the exact key has previously been recorded or added
// to this snapshot.
func (s *Snapshot) Known(key string) bool {
	_, ok := s.known[key]
	return ok
}

// Add marks a key as known within the current pass, so the same relevance
// surfacing from two entries in one cycle is emitted once. It does not
// persist anything; see Ledger.Append.
func (s *Snapshot) Add(key string) {
	s.known[key] = struct{}{}
}

// Size returns the number of distinct recorded keys.
func (s *Snapshot) Size() int {
	return len(s.known)
}
