package fleet

import (
	"sync"
	"testing"

	"fleetmon/internal/models"
)

func mustVehicle(t *testing.T, id int, speed, temp, fuel float64) *models.Vehicle {
	t.Helper()
	v, err := models.NewVehicle(id, speed, temp, fuel)
	if err != nil {
		t.Fatalf("NewVehicle(%d): %v", id, err)
	}
	return v
}

func mustCell(t *testing.T, id int, speed, temp, fuel float64) *models.TelemetryCell {
	t.Helper()
	c, err := models.NewCell(id, speed, temp, fuel)
	if err != nil {
		t.Fatalf("NewCell(%d): %v", id, err)
	}
	return c
}

func TestStore_InsertionOrder(t *testing.T) {
	s := NewStore()
	for _, id := range []int{5, 1, 9, 1} { // duplicates allowed, no dedup
		s.Add(mustVehicle(t, id, 50, 90, 40))
	}

	got := s.All()
	if len(got) != 4 {
		t.Fatalf("expected 4 records, got %d", len(got))
	}
	want := []int{5, 1, 9, 1}
	for i, r := range got {
		if r.ID() != want[i] {
			t.Errorf("position %d: expected id %d, got %d", i, want[i], r.ID())
		}
	}
}

func TestStore_EmptyLen(t *testing.T) {
	s := NewStore()
	if s.Len() != 0 || len(s.All()) != 0 {
		t.Errorf("new store should be empty")
	}
}

func TestConcurrentStore_InsertionOrder(t *testing.T) {
	s := NewConcurrentStore()
	for i := 1; i <= 3; i++ {
		s.Add(mustCell(t, i, float64(i*10), 90, 40))
	}

	got := s.All()
	for i, r := range got {
		if r.ID() != i+1 {
			t.Errorf("position %d: expected id %d, got %d", i, i+1, r.ID())
		}
	}
}

// Appends running concurrently with snapshot reads must never produce a torn
// membership view: every snapshot is a prefix-consistent list.
func TestConcurrentStore_ConcurrentAppend(t *testing.T) {
	s := NewConcurrentStore()
	const n = 500

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			s.Add(mustCell(t, i, 50, 90, 40))
		}
	}()

	go func() {
		defer wg.Done()
		prev := 0
		for i := 0; i < n; i++ {
			got := len(s.All())
			if got < prev {
				t.Errorf("snapshot shrank: %d -> %d", prev, got)
				return
			}
			prev = got
		}
	}()

	wg.Wait()

	if s.Len() != n {
		t.Errorf("expected %d records, got %d", n, s.Len())
	}
}

func TestConcurrentStore_CellsMatchesAll(t *testing.T) {
	s := NewConcurrentStore()
	for i := 1; i <= 3; i++ {
		s.Add(mustCell(t, i, 50, 90, 40))
	}

	cells := s.Cells()
	all := s.All()
	if len(cells) != len(all) {
		t.Fatalf("Cells/All length mismatch: %d vs %d", len(cells), len(all))
	}
	for i := range cells {
		if cells[i].ID() != all[i].ID() {
			t.Errorf("position %d: id mismatch", i)
		}
	}
}
