package models

import (
	"errors"
	"testing"
)

func TestNewVehicle(t *testing.T) {
	v, err := NewVehicle(7, 80, 90, 50)
	if err != nil {
		t.Fatalf("NewVehicle returned error: %v", err)
	}
	if v.ID() != 7 {
		t.Errorf("expected id 7, got %d", v.ID())
	}
	if v.Speed() != 80 || v.Temperature() != 90 || v.Fuel() != 50 {
		t.Errorf("unexpected field values: %v %v %v", v.Speed(), v.Temperature(), v.Fuel())
	}
}

func TestNewVehicle_NegativeSpeed(t *testing.T) {
	_, err := NewVehicle(1, -5, 90, 50)
	if !errors.Is(err, ErrNegativeSpeed) {
		t.Errorf("expected ErrNegativeSpeed, got %v", err)
	}
}

func TestNewVehicle_NegativeFuel(t *testing.T) {
	_, err := NewVehicle(1, 80, 90, -1)
	if !errors.Is(err, ErrNegativeFuel) {
		t.Errorf("expected ErrNegativeFuel, got %v", err)
	}
}

func TestNewVehicle_SubzeroTemperatureAllowed(t *testing.T) {
	v, err := NewVehicle(1, 80, -20, 50)
	if err != nil {
		t.Fatalf("subzero temperature should be valid: %v", err)
	}
	if v.Temperature() != -20 {
		t.Errorf("expected temperature -20, got %v", v.Temperature())
	}
}

func TestNewVehicle_ZeroBoundaries(t *testing.T) {
	if _, err := NewVehicle(1, 0, 0, 0); err != nil {
		t.Errorf("zero speed/fuel should be valid: %v", err)
	}
}
