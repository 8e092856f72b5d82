/*
Package engine is the session facade over the workshop domain.

PURPOSE:
  Turns the pure domain recipes (inventory, production, sales, payroll,
  contacts) into commands against one workshop.Store. Every command is a
  single Store.Update, so a failed command leaves the store untouched.

DIRTY TRACKING:
  Each committed command bumps a version counter. The AutoSaver records
  the version it last persisted; the engine is dirty while the two differ.
  A command that lands during a save keeps the engine dirty for the next
  tick.

LOGGING:
  Commands are logged with zap. Rejections caused by input or current
  state log at Warn, anything else at Error. The domain packages never log.

SEE ALSO:
  - commands.go: One method per domain operation
  - autosave.go: Periodic snapshot persistence
  - workshop/store.go: Store and SnapshotStore
*/
package engine

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/warp/workshop-engine/inventory"
	"github.com/warp/workshop-engine/workshop"
)

// =============================================================================
// OPTIONS
// =============================================================================

// Options are the session-wide choices the recipes take as parameters.
type Options struct {
	Valuer    inventory.Valuer
	Payments  workshop.OverpaymentPolicy
	Purchases inventory.PurchaseOptions
}

func DefaultOptions() Options {
	return Options{
		Valuer:    inventory.Valuer{Discipline: inventory.CostRecursive},
		Payments:  workshop.OverpaymentAccept,
		Purchases: inventory.DefaultPurchaseOptions(),
	}
}

// =============================================================================
// ENGINE
// =============================================================================

type Engine struct {
	store workshop.Store
	ids   workshop.IDSource
	opts  Options
	log   *zap.Logger

	version atomic.Uint64
	saved   atomic.Uint64
}

// New builds an engine. A nil logger discards log output.
func New(store workshop.Store, ids workshop.IDSource, opts Options, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{store: store, ids: ids, opts: opts, log: log.Named("engine")}
}

func (e *Engine) Options() Options { return e.opts }

// State returns the current State for read-only queries.
func (e *Engine) State(ctx context.Context) (workshop.State, error) {
	return e.store.Load(ctx)
}

// Dirty reports whether a command committed since the last save.
func (e *Engine) Dirty() bool {
	return e.version.Load() != e.saved.Load()
}

// Checkpoint returns the current snapshot and the version it reflects.
func (e *Engine) Checkpoint(ctx context.Context) (workshop.Snapshot, uint64, error) {
	// Read the version first: the State loaded afterwards is at least as new.
	v := e.version.Load()
	snap, err := e.Snapshot(ctx)
	if err != nil {
		return nil, 0, err
	}
	return snap, v, nil
}

// MarkSaved records that the snapshot at version v is persisted.
func (e *Engine) MarkSaved(v uint64) {
	for {
		cur := e.saved.Load()
		if v <= cur || e.saved.CompareAndSwap(cur, v) {
			return
		}
	}
}

// =============================================================================
// SNAPSHOT & RESTORE
// =============================================================================

// Snapshot encodes the whole current State.
func (e *Engine) Snapshot(ctx context.Context) (workshop.Snapshot, error) {
	st, err := e.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	return workshop.EncodeState(st)
}

// Restore replaces the whole State with a decoded snapshot.
func (e *Engine) Restore(ctx context.Context, snap workshop.Snapshot) error {
	st, err := workshop.DecodeState(snap)
	if err != nil {
		e.log.Warn("restore rejected", zap.Error(err))
		return workshop.Invalid("snapshot", "decode", err.Error())
	}
	return e.Replace(ctx, st)
}

// Replace swaps in a State (restore, demo scenario) and raises the ID
// floor past every ID it contains.
func (e *Engine) Replace(ctx context.Context, st workshop.State) error {
	if err := e.store.Replace(ctx, st); err != nil {
		e.log.Error("replace failed", zap.Error(err))
		return fmt.Errorf("replace state: %w", err)
	}
	if s, ok := e.ids.(interface{ Seed(int64) }); ok {
		s.Seed(st.MaxID())
	}
	e.version.Add(1)
	e.log.Info("state replaced",
		zap.Int("parts", len(st.Parts)),
		zap.Int("orders", len(st.Orders)),
		zap.Int("employees", len(st.Employees)))
	return nil
}

// =============================================================================
// COMMAND PLUMBING
// =============================================================================

// run executes fn as one atomic update and returns its result.
func run[T any](ctx context.Context, e *Engine, command string, fn func(workshop.State) (workshop.State, T, error), fields ...zap.Field) (T, error) {
	var out T
	err := e.store.Update(ctx, func(st workshop.State) (workshop.State, error) {
		next, res, err := fn(st)
		if err != nil {
			return st, err
		}
		out = res
		return next, nil
	})
	e.record(command, err, fields...)
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// exec is run for commands without a result.
func exec(ctx context.Context, e *Engine, command string, fn func(workshop.State) (workshop.State, error), fields ...zap.Field) error {
	err := e.store.Update(ctx, fn)
	e.record(command, err, fields...)
	return err
}

func (e *Engine) record(command string, err error, fields ...zap.Field) {
	fields = append(fields, zap.String("command", command))
	switch {
	case err == nil:
		e.version.Add(1)
		e.log.Info("command applied", fields...)
	case workshop.IsClientError(err):
		fields = append(fields, zap.String("code", workshop.Code(err)), zap.Error(err))
		e.log.Warn("command rejected", fields...)
	default:
		fields = append(fields, zap.Error(err))
		e.log.Error("command failed", fields...)
	}
}
