// Package snapshot persists one authoring session — every named stage
// input plus every artifact entry with its fingerprint verbatim — behind a
// pluggable storage backend. Loading restores the exact consistent state
// the snapshot was taken at: fingerprints are never recomputed, so
// freshness checks behave identically to the session that saved it.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"questgen/internal/artifact"
	"questgen/internal/pipeline"
)

// Version is the envelope version this build reads and writes.
const Version = 1

// ErrNotFound reports that no snapshot exists at the configured location.
// Distinct from Failure so callers can say "no snapshot yet".
var ErrNotFound = errors.New("snapshot not found")

// Failure is a snapshot operation error: corrupt payload, version
// mismatch, or a backend fault. Load failures leave in-memory state
// untouched.
type Failure struct {
	Op  string // "save" or "load"
	Err error
}

func (e *Failure) Error() string { return fmt.Sprintf("snapshot %s: %v", e.Op, e.Err) }
func (e *Failure) Unwrap() error { return e.Err }

// State is the durable payload: the session's stage inputs and the full
// artifact listing.
type State struct {
	Session   pipeline.Session `json:"session"`
	Artifacts []artifact.Entry `json:"artifacts"`
}

// Envelope wraps State with its version and save time.
type Envelope struct {
	Version int       `json:"version"`
	SavedAt time.Time `json:"saved_at"`
	State   State     `json:"state"`
}

// Storage is one snapshot location. Load returns ErrNotFound (possibly
// wrapped) when nothing was saved yet.
type Storage interface {
	Name() string
	Save(ctx context.Context, data []byte) error
	Load(ctx context.Context) ([]byte, error)
	Close() error
}

// Save serializes state into a versioned envelope and writes it.
func Save(ctx context.Context, st Storage, state State) error {
	env := Envelope{Version: Version, SavedAt: time.Now().UTC(), State: state}
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return &Failure{Op: "save", Err: err}
	}
	if err := st.Save(ctx, data); err != nil {
		return &Failure{Op: "save", Err: err}
	}
	return nil
}

// Load reads and decodes the stored envelope. A missing snapshot surfaces
// as ErrNotFound; anything undecodable or version-mismatched is a Failure
// and the caller must leave its in-memory state as it was.
func Load(ctx context.Context, st Storage) (State, error) {
	data, err := st.Load(ctx)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return State{}, err
		}
		return State{}, &Failure{Op: "load", Err: err}
	}
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return State{}, &Failure{Op: "load", Err: fmt.Errorf("corrupt snapshot: %w", err)}
	}
	if env.Version != Version {
		return State{}, &Failure{Op: "load", Err: fmt.Errorf("snapshot version %d not supported (want %d)", env.Version, Version)}
	}
	return env.State, nil
}
