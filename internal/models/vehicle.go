package models

import "errors"

// Validation errors
var (
	ErrNegativeSpeed = errors.New("speed cannot be negative")
	ErrNegativeFuel  = errors.New("fuel level cannot be negative")
)

// Reader is the read surface shared by both record variants. Callers holding
// a Reader always observe a consistent value for each field, regardless of
// which variant is behind it.
type Reader interface {
	// ID returns the vehicle's identifier.
	ID() int

	// Speed returns the vehicle's speed in km/h.
	Speed() float64

	// Temperature returns the engine temperature in Celsius.
	Temperature() float64

	// Fuel returns the fuel level as a percentage (0-100).
	Fuel() float64
}

// Vehicle is an immutable telemetry snapshot for one vehicle.
type Vehicle struct {
	id          int
	speed       float64
	temperature float64
	fuel        float64
}

// NewVehicle constructs a Vehicle snapshot. Speed and fuel must be
// non-negative; temperature may take any value (subzero readings are valid).
// The id is caller-supplied and not checked for uniqueness.
func NewVehicle(id int, speed, temperature, fuel float64) (*Vehicle, error) {
	if err := validateTelemetry(speed, fuel); err != nil {
		return nil, err
	}
	return &Vehicle{
		id:          id,
		speed:       speed,
		temperature: temperature,
		fuel:        fuel,
	}, nil
}

// validateTelemetry applies the single construction policy shared by both
// record variants.
func validateTelemetry(speed, fuel float64) error {
	if speed < 0 {
		return ErrNegativeSpeed
	}
	if fuel < 0 {
		return ErrNegativeFuel
	}
	return nil
}

func (v *Vehicle) ID() int              { return v.id }
func (v *Vehicle) Speed() float64       { return v.speed }
func (v *Vehicle) Temperature() float64 { return v.temperature }
func (v *Vehicle) Fuel() float64        { return v.fuel }
