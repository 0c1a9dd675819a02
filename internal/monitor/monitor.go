package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fleetmon/internal/alerts"
	"fleetmon/internal/config"
	"fleetmon/internal/feed"
	"fleetmon/internal/fleet"
	"fleetmon/internal/loader"
	"fleetmon/internal/logger"
	"fleetmon/internal/metrics"
	"fleetmon/internal/middleware"
	"fleetmon/internal/models"
	"fleetmon/internal/sim"
)

// ErrNoFleet is returned when the telemetry file yields zero valid records.
var ErrNoFleet = errors.New("no valid telemetry rows loaded")

// Monitor is the high-level coordinator: it loads the fleet, runs the
// updaters and the optional feed, serves the observability endpoints, and
// reports aggregates until stopped.
type Monitor struct {
	cfg *config.Config

	// store holds the live, concurrently-updated records. baseline holds the
	// immutable snapshots taken at load time, used for the startup sample.
	store    *fleet.ConcurrentStore
	baseline *fleet.Store
	engine   *alerts.Engine

	simPool    *sim.Pool
	consumer   *feed.Consumer
	applier    *feed.Applier
	updateChan chan feed.Update

	httpServer *http.Server
	wg         sync.WaitGroup
}

// New constructs a Monitor with given config.
func New(cfg *config.Config) *Monitor {
	return &Monitor{
		cfg:      cfg,
		store:    fleet.NewConcurrentStore(),
		baseline: fleet.NewStore(),
		engine:   alerts.DefaultEngine(),
	}
}

// Run starts background goroutines and blocks until context cancelled.
func (m *Monitor) Run(ctx context.Context) error {
	log := logger.WithComponent("monitor")
	log.Info().Msg("monitor starting")

	if err := m.loadFleet(); err != nil {
		log.Error().Err(err).Msg("failed to load fleet")
		return err
	}

	m.logStartupSample()

	if m.cfg.Sim.Enabled {
		m.simPool = sim.NewPool(m.store.Cells(), m.cfg.Sim.Interval)
		m.simPool.Start()
	}

	if m.cfg.Feed.Enabled {
		m.updateChan = make(chan feed.Update, m.cfg.Feed.QueueSize)
		m.applier = feed.NewApplier(m.store, m.updateChan, m.cfg.Feed.Workers)
		m.applier.Start()

		m.consumer = feed.NewConsumer(m.cfg.Feed, m.updateChan)
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			if err := m.consumer.Run(ctx); err != nil {
				log.Error().Err(err).Msg("feed consumer error")
			}
		}()
	}

	m.initHTTPServer()
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		log.Info().Str("addr", m.cfg.HTTPAddr).Msg("starting HTTP server")
		if err := m.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("HTTP server error")
		}
	}()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.reportStats(ctx)
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	return m.shutdown()
}

// loadFleet reads the telemetry file into both stores: an immutable snapshot
// per row for the baseline, a lockable cell per row for the live fleet.
func (m *Monitor) loadFleet() error {
	log := logger.WithComponent("monitor")

	stats, err := loader.LoadFile(m.cfg.CSVPath, func(row loader.Row) error {
		snap, err := models.NewVehicle(row.ID, row.Speed, row.Temperature, row.Fuel)
		if err != nil {
			return err
		}
		cell, err := models.NewCell(row.ID, row.Speed, row.Temperature, row.Fuel)
		if err != nil {
			return err
		}
		m.baseline.Add(snap)
		m.store.Add(cell)
		return nil
	})
	if err != nil {
		return err
	}

	if m.store.Len() == 0 {
		return fmt.Errorf("%w: %d row(s) skipped", ErrNoFleet, stats.Skipped)
	}

	metrics.FleetSize.Set(float64(m.store.Len()))
	log.Info().
		Int("loaded", stats.Loaded).
		Int("skipped", stats.Skipped).
		Msg("fleet loaded")
	return nil
}

// logStartupSample aggregates once over both paths so the log shows the
// load-time figures before updaters start rewriting the live fleet.
func (m *Monitor) logStartupSample() {
	log := logger.WithComponent("monitor")

	for name, src := range map[string]fleet.Source{
		"baseline": m.baseline,
		"live":     m.store,
	} {
		speed, err := fleet.AverageSpeed(src)
		if err != nil {
			log.Warn().Str("path", name).Err(err).Msg("startup sample unavailable")
			continue
		}
		temp, _ := fleet.AverageTemperature(src)
		fuel, _ := fleet.AverageFuel(src)
		log.Info().
			Str("path", name).
			Float64("avg_speed", speed).
			Float64("avg_temperature", temp).
			Float64("avg_fuel", fuel).
			Msg("startup aggregates")
	}
}

// initHTTPServer initializes the observability HTTP server.
func (m *Monitor) initHTTPServer() {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", m.healthHandler)
	mux.HandleFunc("/stats", m.statsHandler)
	mux.HandleFunc("/fleet", m.fleetHandler)
	mux.Handle("/metrics", promhttp.Handler())

	m.httpServer = &http.Server{
		Addr: m.cfg.HTTPAddr,
		Handler: middleware.Chain(
			mux,
			middleware.Recovery,
			middleware.Logging,
		),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// shutdown performs graceful shutdown
func (m *Monitor) shutdown() error {
	log := logger.WithComponent("monitor")
	log.Info().Msg("initiating graceful shutdown")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := m.httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	if m.simPool != nil {
		m.simPool.Stop()
	}

	if m.consumer != nil {
		if err := m.consumer.Close(); err != nil {
			log.Error().Err(err).Msg("feed consumer close error")
		}
	}
	if m.applier != nil {
		m.applier.Stop()
	}

	m.wg.Wait()
	log.Info().Msg("monitor stopped gracefully")
	return nil
}

// reportStats periodically logs fleet aggregates and alert counts.
func (m *Monitor) reportStats(ctx context.Context) {
	log := logger.WithComponent("monitor")
	ticker := time.NewTicker(m.cfg.ReportInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			speed, err := fleet.AverageSpeed(m.store)
			if err != nil {
				log.Warn().Err(err).Msg("no fleet data to report")
				continue
			}
			temp, _ := fleet.AverageTemperature(m.store)
			fuel, _ := fleet.AverageFuel(m.store)

			alertCounts := m.alertCounts()
			metrics.FleetSize.Set(float64(m.store.Len()))

			ev := log.Info().
				Int("fleet_size", m.store.Len()).
				Float64("avg_speed", speed).
				Float64("avg_temperature", temp).
				Float64("avg_fuel", fuel)
			for label, n := range alertCounts {
				ev = ev.Int(labelField(label), n)
			}
			if m.simPool != nil {
				ev = ev.Uint64("sim_updates", m.simPool.Updates())
			}
			ev.Msg("fleet stats")
		}
	}
}

// alertCounts evaluates every record once and tallies triggered labels.
func (m *Monitor) alertCounts() map[string]int {
	counts := make(map[string]int)
	for _, r := range m.store.All() {
		for _, label := range m.engine.Evaluate(r) {
			counts[label]++
		}
	}
	return counts
}

// labelField turns an alert label into a log field name.
func labelField(label string) string {
	switch label {
	case alerts.CriticalOverheating:
		return "overheating"
	case alerts.LowFuelWarning:
		return "low_fuel"
	default:
		return label
	}
}

// healthHandler handles health check requests
func (m *Monitor) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"healthy","timestamp":"%s"}`, time.Now().Format(time.RFC3339))
}

// statsResponse is the /stats payload.
type statsResponse struct {
	FleetSize int                `json:"fleet_size"`
	Averages  map[string]float64 `json:"averages,omitempty"`
	Alerts    map[string]int     `json:"alerts"`
	Updates   updateStats        `json:"updates"`
	Error     string             `json:"error,omitempty"`
}

type updateStats struct {
	Sim         uint64 `json:"sim"`
	FeedApplied uint64 `json:"feed_applied"`
	FeedDropped uint64 `json:"feed_dropped"`
}

// statsHandler returns current fleet aggregates as JSON.
func (m *Monitor) statsHandler(w http.ResponseWriter, r *http.Request) {
	resp := statsResponse{
		FleetSize: m.store.Len(),
		Alerts:    m.alertCounts(),
	}

	speed, err := fleet.AverageSpeed(m.store)
	if err != nil {
		// Recoverable: report "no data" rather than a fake zero.
		resp.Error = err.Error()
	} else {
		temp, _ := fleet.AverageTemperature(m.store)
		fuel, _ := fleet.AverageFuel(m.store)
		resp.Averages = map[string]float64{
			"speed":       speed,
			"temperature": temp,
			"fuel":        fuel,
		}
	}

	if m.simPool != nil {
		resp.Updates.Sim = m.simPool.Updates()
	}
	if m.applier != nil {
		s := m.applier.Stats()
		resp.Updates.FeedApplied = s.Applied
		resp.Updates.FeedDropped = s.Dropped
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

// fleetRecord is one row of the /fleet payload. Fields for one record may be
// read at slightly different instants while updaters run; each field on its
// own is always a committed value.
type fleetRecord struct {
	ID          int      `json:"id"`
	Speed       float64  `json:"speed"`
	Temperature float64  `json:"temperature"`
	Fuel        float64  `json:"fuel"`
	Alerts      []string `json:"alerts,omitempty"`
}

// fleetHandler returns the insertion-ordered snapshot with per-record alerts.
func (m *Monitor) fleetHandler(w http.ResponseWriter, r *http.Request) {
	records := m.store.All()
	out := make([]fleetRecord, 0, len(records))
	for _, rec := range records {
		out = append(out, fleetRecord{
			ID:          rec.ID(),
			Speed:       rec.Speed(),
			Temperature: rec.Temperature(),
			Fuel:        rec.Fuel(),
			Alerts:      m.engine.Evaluate(rec),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(out)
}
