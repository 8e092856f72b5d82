// Package store provides Store implementations.
package store

import (
	"context"
	"sync"

	"github.com/warp/workshop-engine/workshop"
)

// =============================================================================
// MEMORY STORE - Session-owned entity store
// =============================================================================

// Memory holds one State. Writers are serialized; readers get the State
// value current at the time of Load and never observe a half-applied update.
type Memory struct {
	mu    sync.RWMutex
	state workshop.State
}

func NewMemory() *Memory {
	return &Memory{}
}

// NewMemoryWith starts from an existing State (loaded snapshot, seed data).
func NewMemoryWith(st workshop.State) *Memory {
	return &Memory{state: st}
}

func (m *Memory) Load(_ context.Context) (workshop.State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state, nil
}

// Update commits fn's result only when fn succeeds. State collections are
// copy-on-write, so the previous State needs no explicit rollback copy.
func (m *Memory) Update(ctx context.Context, fn func(workshop.State) (workshop.State, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	next, err := fn(m.state)
	if err != nil {
		return err
	}
	m.state = next
	return nil
}

func (m *Memory) Replace(_ context.Context, st workshop.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = st
	return nil
}

var _ workshop.Store = (*Memory)(nil)
