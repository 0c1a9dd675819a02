package feed

import (
	"context"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"fleetmon/internal/fleet"
	"fleetmon/internal/logger"
	"fleetmon/internal/metrics"
	"fleetmon/internal/models"
)

// Applier is a pool of workers that drain the update channel and write each
// update into the matching record through its setters. Workers hold at most
// one record lock at a time, and never the store lock together with it.
type Applier struct {
	store   *fleet.ConcurrentStore
	updates <-chan Update
	workers int

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc

	// id -> record index, rebuilt from the store when it grows.
	mu    sync.RWMutex
	index map[int]*models.TelemetryCell

	applied atomic.Uint64
	dropped atomic.Uint64
}

// NewApplier creates an applier over the given store.
func NewApplier(store *fleet.ConcurrentStore, updates <-chan Update, workers int) *Applier {
	if workers <= 0 {
		workers = 4
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Applier{
		store:   store,
		updates: updates,
		workers: workers,
		ctx:     ctx,
		cancel:  cancel,
		index:   make(map[int]*models.TelemetryCell),
	}
}

// Start launches the worker goroutines.
func (a *Applier) Start() {
	log := logger.WithComponent("feed_applier")
	log.Info().Int("workers", a.workers).Msg("starting feed applier")

	for i := 0; i < a.workers; i++ {
		a.wg.Add(1)
		go a.worker(i)
	}
}

// Stop signals all workers and joins them.
func (a *Applier) Stop() {
	log := logger.WithComponent("feed_applier")
	a.cancel()
	a.wg.Wait()
	log.Info().
		Uint64("applied", a.applied.Load()).
		Uint64("dropped", a.dropped.Load()).
		Msg("feed applier stopped")
}

// Stats returns applier counters.
func (a *Applier) Stats() ApplierStats {
	return ApplierStats{
		Applied: a.applied.Load(),
		Dropped: a.dropped.Load(),
	}
}

// ApplierStats holds applier counters.
type ApplierStats struct {
	Applied uint64
	Dropped uint64
}

// worker drains updates until stopped or the channel closes.
func (a *Applier) worker(id int) {
	defer a.wg.Done()

	log := logger.WithComponent("feed_applier").With().Int("worker_id", id).Logger()

	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("applier panic recovered")
			metrics.PanicsRecovered.WithLabelValues("feed_applier").Inc()
		}
	}()

	for {
		select {
		case <-a.ctx.Done():
			return
		case u, ok := <-a.updates:
			if !ok {
				return
			}
			a.apply(log, u)
		}
	}
}

// apply writes one update into its record, or drops it. The same
// non-negativity policy as record construction applies to updates.
func (a *Applier) apply(log zerolog.Logger, u Update) {
	if u.Speed < 0 || u.Fuel < 0 {
		log.Warn().
			Int("vehicle_id", u.VehicleID).
			Float64("speed", u.Speed).
			Float64("fuel", u.Fuel).
			Msg("dropping invalid update")
		a.dropped.Add(1)
		metrics.UpdatesDropped.WithLabelValues("invalid").Inc()
		return
	}

	cell := a.lookup(u.VehicleID)
	if cell == nil {
		log.Debug().Int("vehicle_id", u.VehicleID).Msg("update for unknown vehicle")
		a.dropped.Add(1)
		metrics.UpdatesDropped.WithLabelValues("unknown_vehicle").Inc()
		return
	}

	cell.SetSpeed(u.Speed)
	cell.SetTemperature(u.Temperature)
	cell.SetFuel(u.Fuel)
	a.applied.Add(1)
	metrics.UpdatesApplied.WithLabelValues("feed").Inc()
}

// lookup resolves a vehicle id to its record. The index is rebuilt from the
// store only when the store has grown since the last build, so appends made
// after startup become visible without scanning per message.
func (a *Applier) lookup(id int) *models.TelemetryCell {
	a.mu.RLock()
	cell, ok := a.index[id]
	size := len(a.index)
	a.mu.RUnlock()
	if ok {
		return cell
	}

	if a.store.Len() == size {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	index := make(map[int]*models.TelemetryCell)
	for _, c := range a.store.Cells() {
		index[c.ID()] = c
	}
	a.index = index
	return a.index[id]
}
