package artifact

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"questgen/internal/fingerprint"
)

// ErrNotFound reports a name with no stored value.
var ErrNotFound = errors.New("artifact not found")

// Entry is one stored artifact: the validated value bytes and the
// fingerprint of the inputs that produced them. Stale entries keep only
// their state marker; value and fingerprint are cleared on invalidation.
type Entry struct {
	Name        string             `json:"name"`
	Kind        Kind               `json:"kind"`
	Value       json.RawMessage    `json:"value,omitempty"`
	Fingerprint fingerprint.Digest `json:"fingerprint,omitempty"`
	State       State              `json:"state"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// Event reports one artifact state transition to an observer.
type Event struct {
	Name        string             `json:"name"`
	Kind        Kind               `json:"kind"`
	State       State              `json:"state"`
	Fingerprint fingerprint.Digest `json:"fingerprint,omitempty"`
}

// EventSink receives events after each real transition. Called outside the
// store lock, in transition order.
type EventSink func(Event)

// Store is the process-local artifact store. It exclusively owns all
// artifact values; collaborators read them or request regeneration through
// the orchestrator, never mutate them directly.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	sink    EventSink
	now     func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		entries: make(map[string]*Entry),
		now:     time.Now,
	}
}

// SetEventSink registers the transition observer. At most one; nil clears.
func (s *Store) SetEventSink(sink EventSink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sink = sink
}

// Get returns the stored entry for name. ok is false when no value is
// stored (absent or stale).
func (s *Store) Get(name string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[name]
	if !ok || e.State != Fresh {
		return Entry{}, false
	}
	return e.copy(), true
}

// StateOf returns the lifecycle state for name.
func (s *Store) StateOf(name string) State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[name]
	if !ok {
		return Absent
	}
	return e.State
}

// IsFresh reports whether a value is stored for name and its fingerprint
// equals current. This is the sole staleness test the orchestrator uses.
func (s *Store) IsFresh(name string, current fingerprint.Digest) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[name]
	return ok && e.State == Fresh && !current.IsZero() && e.Fingerprint == current
}

// Put stores value under name against the fingerprint of the inputs that
// produced it. A put with byte-identical value and equal fingerprint is a
// no-op. The returned flag reports whether the stored value bytes actually
// changed; the caller cascades invalidation only then.
func (s *Store) Put(name string, value json.RawMessage, fp fingerprint.Digest) (changed bool) {
	s.mu.Lock()
	e, ok := s.entries[name]
	if ok && e.State == Fresh && e.Fingerprint == fp && bytes.Equal(e.Value, value) {
		s.mu.Unlock()
		return false
	}
	changed = !ok || e.State != Fresh || !bytes.Equal(e.Value, value)
	if !ok {
		e = &Entry{Name: name, Kind: KindOf(name)}
		s.entries[name] = e
	}
	e.Value = append(json.RawMessage(nil), value...)
	e.Fingerprint = fp
	e.State = Fresh
	e.UpdatedAt = s.now()
	ev := Event{Name: name, Kind: e.Kind, State: Fresh, Fingerprint: fp}
	sink := s.sink
	s.mu.Unlock()

	if sink != nil {
		sink(ev)
	}
	return changed
}

// Invalidate clears the stored value for name without needing a new
// fingerprint. Idempotent: absent or already-stale names are untouched.
func (s *Store) Invalidate(name string) {
	s.mu.Lock()
	e, ok := s.entries[name]
	if !ok || e.State != Fresh {
		s.mu.Unlock()
		return
	}
	e.Value = nil
	e.Fingerprint = ""
	e.State = Stale
	e.UpdatedAt = s.now()
	ev := Event{Name: name, Kind: e.Kind, State: Stale}
	sink := s.sink
	s.mu.Unlock()

	if sink != nil {
		sink(ev)
	}
}

// Remove drops the entry for name entirely (objective deletion).
func (s *Store) Remove(name string) {
	s.mu.Lock()
	e, ok := s.entries[name]
	if !ok {
		s.mu.Unlock()
		return
	}
	delete(s.entries, name)
	ev := Event{Name: name, Kind: e.Kind, State: Absent}
	sink := s.sink
	s.mu.Unlock()

	if sink != nil {
		sink(ev)
	}
}

// List returns every entry sorted by name, for status output and the
// snapshot.
func (s *Store) List() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.copy())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Restore replaces the whole store with the given entries (snapshot load).
// Fingerprints are taken verbatim, never recomputed. Emits no events.
func (s *Store) Restore(entries []Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]*Entry, len(entries))
	for _, e := range entries {
		cp := e.copy()
		if cp.Kind == "" {
			cp.Kind = KindOf(cp.Name)
		}
		s.entries[cp.Name] = &cp
	}
}

func (e *Entry) copy() Entry {
	cp := *e
	cp.Value = append(json.RawMessage(nil), e.Value...)
	return cp
}

// Decode unmarshals a stored entry's value into the contract's typed record.
func Decode[T any](e Entry) (T, error) {
	var out T
	if len(e.Value) == 0 {
		return out, ErrNotFound
	}
	if err := json.Unmarshal(e.Value, &out); err != nil {
		return out, fmt.Errorf("decode artifact %s: %w", e.Name, err)
	}
	return out, nil
}
