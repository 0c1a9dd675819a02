package sim

import (
	"errors"
	"sync"
	"testing"
	"time"

	"fleetmon/internal/fleet"
	"fleetmon/internal/models"
)

func buildFleet(t *testing.T, n int) *fleet.ConcurrentStore {
	t.Helper()
	s := fleet.NewConcurrentStore()
	for i := 1; i <= n; i++ {
		c, err := models.NewCell(i, 80, 100, 50)
		if err != nil {
			t.Fatalf("NewCell: %v", err)
		}
		s.Add(c)
	}
	return s
}

func waitForUpdates(t *testing.T, p *Pool, want uint64) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for p.Updates() < want {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d updates, got %d", want, p.Updates())
		}
		time.Sleep(time.Millisecond)
	}
}

// One updater per record running against repeated aggregation must never
// produce a failed average or a value outside the update ranges, and Stop
// must join every updater.
func TestPool_ConcurrentAggregation(t *testing.T) {
	const (
		records     = 10
		aggregators = 4
		rounds      = 50
	)

	store := buildFleet(t, records)
	pool := NewPool(store.Cells(), time.Millisecond)
	pool.Start()

	waitForUpdates(t, pool, records)

	var wg sync.WaitGroup
	for i := 0; i < aggregators; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < rounds; j++ {
				speed, err := fleet.AverageSpeed(store)
				if err != nil {
					t.Errorf("AverageSpeed: %v", err)
					return
				}
				if speed < speedMin || speed >= speedMax {
					t.Errorf("avg speed %v outside [%v, %v)", speed, speedMin, speedMax)
					return
				}
				if _, err := fleet.AverageTemperature(store); err != nil {
					t.Errorf("AverageTemperature: %v", err)
					return
				}
				if _, err := fleet.AverageFuel(store); err != nil {
					t.Errorf("AverageFuel: %v", err)
					return
				}
			}
		}()
	}

	wg.Wait()
	pool.Stop()

	if pool.Updates() == 0 {
		t.Error("expected updates to have been applied")
	}
}

// Appending while updaters and aggregation run must not disturb either.
func TestPool_ConcurrentAppend(t *testing.T) {
	store := buildFleet(t, 5)
	pool := NewPool(store.Cells(), time.Millisecond)
	pool.Start()
	defer pool.Stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 6; i <= 50; i++ {
			c, err := models.NewCell(i, 80, 100, 50)
			if err != nil {
				t.Errorf("NewCell: %v", err)
				return
			}
			store.Add(c)
		}
	}()

	for i := 0; i < 100; i++ {
		if _, err := fleet.AverageFuel(store); err != nil {
			t.Fatalf("AverageFuel during append: %v", err)
		}
	}
	<-done

	if store.Len() != 50 {
		t.Errorf("expected 50 records, got %d", store.Len())
	}
}

func TestPool_StopIsIdempotentJoin(t *testing.T) {
	store := buildFleet(t, 3)
	pool := NewPool(store.Cells(), time.Millisecond)
	pool.Start()

	waitForUpdates(t, pool, 3)
	pool.Stop()

	after := pool.Updates()
	time.Sleep(10 * time.Millisecond)
	if pool.Updates() != after {
		t.Error("updates continued after Stop")
	}
}

func TestPool_UpdatedValuesStayConstructible(t *testing.T) {
	store := buildFleet(t, 4)
	pool := NewPool(store.Cells(), time.Millisecond)
	pool.Start()
	waitForUpdates(t, pool, 20)
	pool.Stop()

	// Simulated values must remain valid records under the construction
	// policy: non-negative speed and fuel.
	for _, c := range store.Cells() {
		if _, err := models.NewVehicle(c.ID(), c.Speed(), c.Temperature(), c.Fuel()); err != nil {
			if errors.Is(err, models.ErrNegativeSpeed) || errors.Is(err, models.ErrNegativeFuel) {
				t.Errorf("vehicle %d: simulation produced invalid telemetry: %v", c.ID(), err)
			}
		}
	}
}
