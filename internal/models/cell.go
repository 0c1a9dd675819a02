package models

import "sync"

// TelemetryCell is the mutable record variant: the same four scalars as
// Vehicle, with the three telemetry fields guarded by one per-record mutex so
// an external updater can write them while aggregation reads. The id is
// immutable and read without the lock.
//
// The lock granularity is the whole field set, not per field. No method ever
// holds this lock together with another record's lock or the store lock.
type TelemetryCell struct {
	id int

	mu          sync.Mutex
	speed       float64
	temperature float64
	fuel        float64
}

// NewCell constructs a TelemetryCell under the same validation policy as
// NewVehicle.
func NewCell(id int, speed, temperature, fuel float64) (*TelemetryCell, error) {
	if err := validateTelemetry(speed, fuel); err != nil {
		return nil, err
	}
	return &TelemetryCell{
		id:          id,
		speed:       speed,
		temperature: temperature,
		fuel:        fuel,
	}, nil
}

// ID returns the vehicle's identifier.
func (c *TelemetryCell) ID() int { return c.id }

// Speed returns the current speed in km/h.
func (c *TelemetryCell) Speed() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.speed
}

// Temperature returns the current engine temperature in Celsius.
func (c *TelemetryCell) Temperature() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.temperature
}

// Fuel returns the current fuel level percentage.
func (c *TelemetryCell) Fuel() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fuel
}

// SetSpeed replaces the speed value. Safe to call from any goroutine.
func (c *TelemetryCell) SetSpeed(speed float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.speed = speed
}

// SetTemperature replaces the temperature value. Safe to call from any goroutine.
func (c *TelemetryCell) SetTemperature(temperature float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.temperature = temperature
}

// SetFuel replaces the fuel value. Safe to call from any goroutine.
func (c *TelemetryCell) SetFuel(fuel float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fuel = fuel
}
