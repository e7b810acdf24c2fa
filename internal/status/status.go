// Package status keeps the outcome of the latest build of every target so a
// long-running watch session can report it.
//
// Each target's entry is independent, so the store uses sync.Map: callbacks
// for different targets write concurrently while the healthcheck server
// reads snapshots.
package status

import (
	"sort"
	"sync"
	"time"
)

// State is the outcome of a target's most recent build.
type State string

const (
	Pending State = "pending"
	OK      State = "ok"
	Failed  State = "failed"
)

// Entry describes one target.
type Entry struct {
	Target   string    `json:"target"`
	State    State     `json:"state"`
	Runs     int       `json:"runs"`
	Failures int       `json:"failures"`
	LastRun  time.Time `json:"last_run,omitzero"`
	Error    string    `json:"error,omitempty"`
}

// Store is a thread-safe map of target name to Entry.
type Store struct {
	entries sync.Map // Key: target name, Value: *entryBox
	now     func() time.Time
}

type entryBox struct {
	mu    sync.Mutex
	entry Entry
}

// New creates a store with every target in the Pending state.
func New(targets ...string) *Store {
	s := &Store{now: time.Now}
	for _, t := range targets {
		s.box(t)
	}
	return s
}

func (s *Store) box(target string) *entryBox {
	v, _ := s.entries.LoadOrStore(target, &entryBox{entry: Entry{Target: target, State: Pending}})
	return v.(*entryBox)
}

// Record stores the result of one build. A nil err marks the target OK and
// clears the previous error.
func (s *Store) Record(target string, err error) {
	b := s.box(target)
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entry.Runs++
	b.entry.LastRun = s.now()
	if err != nil {
		b.entry.State = Failed
		b.entry.Failures++
		b.entry.Error = err.Error()
		return
	}
	b.entry.State = OK
	b.entry.Error = ""
}

// Get returns a copy of target's entry.
func (s *Store) Get(target string) (Entry, bool) {
	v, ok := s.entries.Load(target)
	if !ok {
		return Entry{}, false
	}
	b := v.(*entryBox)
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.entry, true
}

// Snapshot returns copies of all entries sorted by target name.
func (s *Store) Snapshot() []Entry {
	var out []Entry
	s.entries.Range(func(_, v any) bool {
		b := v.(*entryBox)
		b.mu.Lock()
		out = append(out, b.entry)
		b.mu.Unlock()
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Target < out[j].Target })
	return out
}

// Healthy reports whether no target's latest build failed.
func (s *Store) Healthy() bool {
	for _, e := range s.Snapshot() {
		if e.State == Failed {
			return false
		}
	}
	return true
}
