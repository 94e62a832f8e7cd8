// Package timer provides a deterministic, tick-driven callback scheduler.
// Deferred callbacks (prone-hold, dash cooldown retries) must fire at the
// same simulation time on every replay, so the scheduler advances on the
// simulation clock rather than wall time.
package timer

import "sort"

type task struct {
	id uint64
	at float32
	fn func()
}

// Scheduler runs callbacks once their deadline on the simulation clock has
// passed. It is not safe for concurrent use; the simulation owns it.
type Scheduler struct {
	now    float32
	nextID uint64
	tasks  map[uint64]*task
}

func New() *Scheduler {
	return &Scheduler{tasks: map[uint64]*task{}}
}

// Now returns the current simulation time in seconds.
func (s *Scheduler) Now() float32 {
	return s.now
}

// Schedule registers fn to run delay seconds from now and returns a handle
// that can be passed to Cancel.
func (s *Scheduler) Schedule(delay float32, fn func()) uint64 {
	s.nextID++
	id := s.nextID
	s.tasks[id] = &task{id: id, at: s.now + delay, fn: fn}
	return id
}

// Cancel removes a scheduled callback. Cancelling an unknown or already
// fired handle is a no-op.
func (s *Scheduler) Cancel(id uint64) {
	delete(s.tasks, id)
}

// Pending returns the number of callbacks still waiting to fire.
func (s *Scheduler) Pending() int {
	return len(s.tasks)
}

// Advance moves the clock forward by dt and fires every callback whose
// deadline has passed, in (deadline, registration) order so replays observe
// the same firing sequence. Callbacks scheduled while firing run on a later
// Advance.
func (s *Scheduler) Advance(dt float32) {
	s.now += dt

	var due []*task
	for _, t := range s.tasks {
		if t.at <= s.now {
			due = append(due, t)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].at != due[j].at {
			return due[i].at < due[j].at
		}
		return due[i].id < due[j].id
	})

	for _, t := range due {
		delete(s.tasks, t.id)
		t.fn()
	}
}

// Reset drops every pending callback and rewinds the clock. Used on full
// teardown of the owning character.
func (s *Scheduler) Reset() {
	s.now = 0
	s.tasks = map[uint64]*task{}
}
