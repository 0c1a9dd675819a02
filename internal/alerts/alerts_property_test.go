package alerts

import (
	"testing"

	"pgregory.net/rapid"

	"fleetmon/internal/models"
)

// For any telemetry values, the default engine's result is fully determined
// by the two epsilon-tolerant boundary tests, and ordered overheating-first.
func TestEvaluate_BoundaryLaw(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		speed := rapid.Float64Range(0, 250).Draw(t, "speed")
		temp := rapid.Float64Range(-50, 300).Draw(t, "temp")
		fuel := rapid.Float64Range(0, 100).Draw(t, "fuel")

		v, err := models.NewVehicle(1, speed, temp, fuel)
		if err != nil {
			t.Fatalf("NewVehicle: %v", err)
		}

		got := DefaultEngine().Evaluate(v)

		var want []string
		if temp > 110-epsilon {
			want = append(want, CriticalOverheating)
		}
		if fuel < 15-epsilon {
			want = append(want, LowFuelWarning)
		}

		if len(got) != len(want) {
			t.Fatalf("temp=%v fuel=%v: expected %v, got %v", temp, fuel, want, got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("temp=%v fuel=%v: expected %v, got %v", temp, fuel, want, got)
			}
		}
	})
}
