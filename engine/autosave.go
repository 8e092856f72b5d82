/*
autosave.go - Periodic snapshot persistence

PURPOSE:
  Saves the engine's State to a SnapshotStore in the background. Commands
  never wait for disk: they commit in memory and the saver catches up.

DESIGN:
  - Runs a background goroutine with a configurable interval
  - Skips the tick when nothing committed since the last save
  - A failed save is logged and retried on the next tick
  - Flush saves immediately; call it after Stop on shutdown

CONFIGURATION:
  - Interval: How often to check (default: 2 seconds)
  - Enabled:  Whether the saver runs at all (default: true)

USAGE:
  saver := NewAutoSaver(eng, sqliteStore, logger)
  saver.Start()
  // ... later
  saver.Stop()
  saver.Flush(ctx)

SEE ALSO:
  - engine.go: Checkpoint and MarkSaved
  - store/sqlite/sqlite.go: SnapshotStore on SQLite
*/
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/warp/workshop-engine/workshop"
)

// AutoSaver writes dirty engine state to a SnapshotStore.
type AutoSaver struct {
	Engine   *Engine
	Store    workshop.SnapshotStore
	Interval time.Duration
	Enabled  bool

	log    *zap.Logger
	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
	saveMu sync.Mutex
}

func NewAutoSaver(e *Engine, store workshop.SnapshotStore, log *zap.Logger) *AutoSaver {
	if log == nil {
		log = zap.NewNop()
	}
	return &AutoSaver{
		Engine:   e,
		Store:    store,
		Interval: 2 * time.Second,
		Enabled:  true,
		log:      log.Named("autosave"),
	}
}

// Start begins the save loop.
func (a *AutoSaver) Start() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.Enabled {
		a.log.Info("disabled, not starting")
		return
	}
	if a.ticker != nil {
		return
	}

	a.ticker = time.NewTicker(a.Interval)
	a.stop = make(chan struct{})
	a.wg.Add(1)
	go a.run(a.ticker, a.stop)

	a.log.Info("started", zap.Duration("interval", a.Interval))
}

// Stop ends the save loop. It does not flush.
func (a *AutoSaver) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.ticker == nil {
		return
	}
	a.ticker.Stop()
	close(a.stop)
	a.wg.Wait()
	a.ticker = nil
	a.log.Info("stopped")
}

func (a *AutoSaver) run(ticker *time.Ticker, stop <-chan struct{}) {
	defer a.wg.Done()

	for {
		select {
		case <-ticker.C:
			if err := a.Flush(context.Background()); err != nil {
				a.log.Error("save failed, retrying next tick", zap.Error(err))
			}
		case <-stop:
			return
		}
	}
}

// Flush saves the current snapshot if the engine is dirty.
func (a *AutoSaver) Flush(ctx context.Context) error {
	a.saveMu.Lock()
	defer a.saveMu.Unlock()

	if !a.Engine.Dirty() {
		return nil
	}
	snap, version, err := a.Engine.Checkpoint(ctx)
	if err != nil {
		return fmt.Errorf("checkpoint: %w", err)
	}
	start := time.Now()
	if err := a.Store.SaveSnapshot(ctx, snap); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	a.Engine.MarkSaved(version)
	a.log.Debug("snapshot saved",
		zap.Uint64("version", version),
		zap.Duration("took", time.Since(start)))
	return nil
}
