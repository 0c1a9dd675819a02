package sim

import (
	"context"
	"math/rand/v2"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"fleetmon/internal/logger"
	"fleetmon/internal/metrics"
	"fleetmon/internal/models"
)

// Telemetry ranges drawn by the simulated feed.
const (
	speedMin, speedMax = 40, 120
	tempMin, tempMax   = 80, 130
	fuelMin, fuelMax   = 5, 100
)

// Pool runs one updater goroutine per record, each independently rewriting
// that record's telemetry at a fixed cadence until stopped. Updaters never
// coordinate with aggregation beyond each record's own lock, and never touch
// more than one record.
type Pool struct {
	cells    []*models.TelemetryCell
	interval time.Duration

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc

	updates atomic.Uint64
}

// NewPool creates a pool of updaters over the given records.
func NewPool(cells []*models.TelemetryCell, interval time.Duration) *Pool {
	if interval <= 0 {
		interval = 10 * time.Millisecond
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		cells:    cells,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start launches the updater goroutines.
func (p *Pool) Start() {
	log := logger.WithComponent("sim")
	log.Info().
		Int("updaters", len(p.cells)).
		Dur("interval", p.interval).
		Msg("starting telemetry simulation")

	for _, c := range p.cells {
		p.wg.Add(1)
		go p.updater(c)
	}
}

// Stop signals all updaters and joins them. Safe to call once.
func (p *Pool) Stop() {
	log := logger.WithComponent("sim")
	p.cancel()
	p.wg.Wait()
	log.Info().Uint64("updates", p.updates.Load()).Msg("telemetry simulation stopped")
}

// Updates reports the total number of update cycles applied so far.
func (p *Pool) Updates() uint64 {
	return p.updates.Load()
}

// updater is the per-record mutation loop.
func (p *Pool) updater(c *models.TelemetryCell) {
	defer p.wg.Done()

	defer func() {
		if r := recover(); r != nil {
			log := logger.WithVehicle(c.ID())
			log.Error().
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("updater panic recovered")
			metrics.PanicsRecovered.WithLabelValues("sim").Inc()
		}
	}()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			c.SetSpeed(randIn(speedMin, speedMax))
			c.SetTemperature(randIn(tempMin, tempMax))
			c.SetFuel(randIn(fuelMin, fuelMax))
			p.updates.Add(1)
			metrics.UpdatesApplied.WithLabelValues("sim").Inc()
		}
	}
}

// randIn returns a uniform value in [lo, hi).
func randIn(lo, hi float64) float64 {
	return lo + rand.Float64()*(hi-lo)
}
