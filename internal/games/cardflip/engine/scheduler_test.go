package engine

import (
	"reflect"
	"testing"
	"time"
)

func TestSchedulerRunsInDueOrder(t *testing.T) {
	var s Scheduler
	var got []string
	record := func(name string) func(time.Time) {
		return func(time.Time) { got = append(got, name) }
	}

	s.After(t0, 1200*time.Millisecond, "revert", record("revert"))
	s.After(t0, 400*time.Millisecond, "shake", record("shake"))
	s.After(t0, 400*time.Millisecond, "shake-2", record("shake-2"))

	if ran := s.Run(t0.Add(100 * time.Millisecond)); len(ran) != 0 {
		t.Fatalf("nothing should be due yet, ran %v", ran)
	}

	ran := s.Run(t0.Add(2 * time.Second))
	want := []string{"shake", "shake-2", "revert"}
	if !reflect.DeepEqual(ran, want) || !reflect.DeepEqual(got, want) {
		t.Errorf("ran %v (callbacks %v), want %v", ran, got, want)
	}
	if s.Pending() != 0 {
		t.Errorf("Pending() = %d after run, want 0", s.Pending())
	}
}

func TestSchedulerPassesDueTime(t *testing.T) {
	var s Scheduler
	var at time.Time
	s.After(t0, 300*time.Millisecond, "match", func(due time.Time) { at = due })

	s.Run(t0.Add(5 * time.Second))
	if !at.Equal(t0.Add(300 * time.Millisecond)) {
		t.Errorf("callback got %v, want due time", at)
	}
}

func TestSchedulerCancelDropsStaleTasks(t *testing.T) {
	var s Scheduler
	fired := false
	s.After(t0, time.Millisecond, "stale", func(time.Time) { fired = true })

	gen := s.Generation()
	s.Cancel()
	if s.Generation() != gen+1 {
		t.Errorf("Generation() = %d, want %d", s.Generation(), gen+1)
	}

	s.Run(t0.Add(time.Second))
	if fired {
		t.Error("cancelled task ran")
	}
}

func TestSchedulerTaskCancellingSession(t *testing.T) {
	var s Scheduler
	second := false
	s.After(t0, time.Millisecond, "reset", func(time.Time) { s.Cancel() })
	s.After(t0, 2*time.Millisecond, "after-reset", func(time.Time) { second = true })

	s.Run(t0.Add(time.Second))
	if second {
		t.Error("task scheduled before a reset ran after it")
	}
}

func TestSchedulerFollowUpTask(t *testing.T) {
	var s Scheduler
	var order []string
	s.After(t0, 10*time.Millisecond, "first", func(at time.Time) {
		order = append(order, "first")
		s.After(at, 10*time.Millisecond, "follow-up", func(time.Time) {
			order = append(order, "follow-up")
		})
	})
	s.After(t0, 30*time.Millisecond, "last", func(time.Time) { order = append(order, "last") })

	s.Run(t0.Add(time.Second))
	want := []string{"first", "follow-up", "last"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
}
