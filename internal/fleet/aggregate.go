package fleet

import (
	"errors"
	"fmt"
	"time"

	"fleetmon/internal/metrics"
	"fleetmon/internal/models"
)

// ErrEmptyFleet is returned by any averaging operation over a store with zero
// records. An empty fleet must fail loudly rather than report 0 or NaN, so
// operators never mistake "no data" for a real reading.
var ErrEmptyFleet = errors.New("fleet is empty")

// Stat names one averaged telemetry field.
type Stat string

const (
	StatSpeed       Stat = "speed"
	StatTemperature Stat = "temperature"
	StatFuel        Stat = "fuel"
)

// Source is any store the aggregator can read: an insertion-ordered snapshot
// of the current records.
type Source interface {
	All() []models.Reader
}

// Average computes the arithmetic mean of one telemetry field across all
// current records, summing in insertion order. Each field read is consistent
// on its own, but values for different records may be taken at slightly
// different instants while updaters run; the mean is a monitoring figure, not
// a transactional snapshot.
func Average(src Source, stat Stat) (float64, error) {
	var read func(models.Reader) float64
	switch stat {
	case StatSpeed:
		read = models.Reader.Speed
	case StatTemperature:
		read = models.Reader.Temperature
	case StatFuel:
		read = models.Reader.Fuel
	default:
		return 0, fmt.Errorf("unknown stat %q", stat)
	}

	start := time.Now()
	records := src.All()
	if len(records) == 0 {
		return 0, ErrEmptyFleet
	}

	sum := 0.0
	for _, r := range records {
		sum += read(r)
	}

	metrics.AggregationDuration.WithLabelValues(string(stat)).Observe(time.Since(start).Seconds())
	return sum / float64(len(records)), nil
}

// AverageSpeed returns the fleet's mean speed in km/h.
func AverageSpeed(src Source) (float64, error) {
	return Average(src, StatSpeed)
}

// AverageTemperature returns the fleet's mean engine temperature in Celsius.
func AverageTemperature(src Source) (float64, error) {
	return Average(src, StatTemperature)
}

// AverageFuel returns the fleet's mean fuel level percentage.
func AverageFuel(src Source) (float64, error) {
	return Average(src, StatFuel)
}
