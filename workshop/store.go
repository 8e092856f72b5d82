/*
store.go - Persistence interfaces for the entity graph

PURPOSE:
  Defines the boundary between the domain recipes and whatever holds the
  session's State. Commands never mutate shared collections directly; they
  hand a recipe to Store.Update, which runs it with exclusive write access.

KEY INTERFACES:
  Store:         Session-owned entity store (load, atomic update, replace)
  SnapshotStore: Durable full-snapshot persistence (save, load)

ATOMIC UPDATES:
  Update(fn) commits the State returned by fn only when fn returns nil.
  A recipe that fails validation halfway leaves the stored State exactly
  as it was. This is the only write path besides Replace.

PERSISTENCE:
  Saving is a full-snapshot overwrite and is best-effort. Nothing in the
  domain waits for a save to finish.

IMPLEMENTATIONS:
  - workshop/store/memory.go: In-memory Store
  - store/sqlite/sqlite.go: SnapshotStore on SQLite

SEE ALSO:
  - snapshot.go: JSON shape of a saved State
  - engine/autosave.go: Flushes dirty state to a SnapshotStore
*/
package workshop

import "context"

// =============================================================================
// STORE - Entity store owned by one session
// =============================================================================

type Store interface {
	// Load returns the current State. The result is safe to read while
	// other goroutines update the store.
	Load(ctx context.Context) (State, error)

	// Update runs fn with exclusive write access. If fn returns an error
	// the stored State is unchanged.
	Update(ctx context.Context, fn func(State) (State, error)) error

	// Replace swaps in a whole State (restore from backup).
	Replace(ctx context.Context, st State) error
}

// =============================================================================
// SNAPSHOT STORE - Durable copy of the whole State
// =============================================================================

type SnapshotStore interface {
	// LoadSnapshot returns the saved snapshot, or an empty one if nothing
	// was saved yet.
	LoadSnapshot(ctx context.Context) (Snapshot, error)

	// SaveSnapshot overwrites the saved snapshot.
	SaveSnapshot(ctx context.Context, snap Snapshot) error
}
