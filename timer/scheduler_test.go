package timer

import "testing"

func TestScheduleAndFire(t *testing.T) {
	s := New()
	fired := false
	s.Schedule(0.2, func() { fired = true })

	s.Advance(0.1)
	if fired {
		t.Fatal("callback fired before its deadline")
	}
	s.Advance(0.1)
	if !fired {
		t.Fatal("callback did not fire at its deadline")
	}
	if s.Pending() != 0 {
		t.Fatalf("expected no pending tasks, got %d", s.Pending())
	}
}

func TestCancel(t *testing.T) {
	s := New()
	fired := false
	id := s.Schedule(0.1, func() { fired = true })
	s.Cancel(id)
	s.Advance(1)
	if fired {
		t.Fatal("cancelled callback fired")
	}
}

func TestFiringOrderIsDeterministic(t *testing.T) {
	s := New()
	var order []int
	s.Schedule(0.1, func() { order = append(order, 1) })
	s.Schedule(0.1, func() { order = append(order, 2) })
	s.Schedule(0.05, func() { order = append(order, 3) })

	s.Advance(0.2)
	if len(order) != 3 || order[0] != 3 || order[1] != 1 || order[2] != 2 {
		t.Fatalf("unexpected firing order: %v", order)
	}
}

func TestCallbackScheduledDuringFireRunsLater(t *testing.T) {
	s := New()
	nested := false
	s.Schedule(0.1, func() {
		s.Schedule(0, func() { nested = true })
	})
	s.Advance(0.1)
	if nested {
		t.Fatal("nested callback ran within the same Advance")
	}
	s.Advance(0.01)
	if !nested {
		t.Fatal("nested callback never ran")
	}
}
