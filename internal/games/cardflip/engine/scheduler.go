package engine

import (
	"sort"
	"time"
)

// task is a deferred mutation bound to the generation it was scheduled in.
type task struct {
	due  time.Time
	seq  uint64
	gen  uint64
	name string
	fn   func(at time.Time)
}

// Scheduler holds animation-pacing callbacks for a single session.
// It is not safe for concurrent use; the platform drives it from its update
// loop, so every mutation is serialized there.
type Scheduler struct {
	tasks []task
	gen   uint64
	seq   uint64
}

// Generation returns the current session generation.
func (s *Scheduler) Generation() uint64 {
	return s.gen
}

// After schedules fn to run once now+delay has been reached.
// fn receives its due time, not the time Run was called.
func (s *Scheduler) After(now time.Time, delay time.Duration, name string, fn func(at time.Time)) {
	s.seq++
	s.tasks = append(s.tasks, task{
		due:  now.Add(delay),
		seq:  s.seq,
		gen:  s.gen,
		name: name,
		fn:   fn,
	})
}

// Run executes every task due at or before now, earliest first.
// Tasks from an older generation are discarded without running.
// Returns the names of the tasks that ran.
func (s *Scheduler) Run(now time.Time) []string {
	if len(s.tasks) == 0 {
		return nil
	}

	s.order()

	var ran []string
	for len(s.tasks) > 0 {
		t := s.tasks[0]
		if t.due.After(now) {
			break
		}
		s.tasks = s.tasks[1:]
		if t.gen != s.gen {
			continue
		}

		seq := s.seq
		t.fn(t.due)
		ran = append(ran, t.name)

		// fn may have scheduled follow-ups
		if s.seq != seq {
			s.order()
		}
	}
	return ran
}

func (s *Scheduler) order() {
	sort.SliceStable(s.tasks, func(i, j int) bool {
		if s.tasks[i].due.Equal(s.tasks[j].due) {
			return s.tasks[i].seq < s.tasks[j].seq
		}
		return s.tasks[i].due.Before(s.tasks[j].due)
	})
}

// Cancel invalidates everything scheduled so far and starts a new generation.
func (s *Scheduler) Cancel() {
	s.gen++
	s.tasks = nil
}

// Pending returns the number of queued tasks.
func (s *Scheduler) Pending() int {
	return len(s.tasks)
}
