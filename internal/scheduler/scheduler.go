// Package scheduler delivers timed events (rollover checks, estimate
// alerts) on a channel from a single background goroutine.
package scheduler

import (
	"container/heap"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

var (
	ErrInvalidTriggerTime = errors.New("scheduler: invalid trigger time")
	ErrStopped            = errors.New("scheduler: stopped")
)

type EventKind string

const (
	// EventRollover asks the host to run the engine's day-boundary check.
	EventRollover EventKind = "rollover"
	// EventEstimateReached fires when a running quest hits its estimate.
	EventEstimateReached EventKind = "estimate"
)

// Event is keyed by ID: at most one event per ID is pending at a time.
type Event struct {
	ID        string
	Kind      EventKind
	QuestID   string
	TriggerAt time.Time
}

type entry struct {
	ev    Event
	index int
}

type timeline []*entry

func (t timeline) Len() int           { return len(t) }
func (t timeline) Less(i, j int) bool { return t[i].ev.TriggerAt.Before(t[j].ev.TriggerAt) }

func (t timeline) Swap(i, j int) {
	t[i], t[j] = t[j], t[i]
	t[i].index = i
	t[j].index = j
}

func (t *timeline) Push(x any) {
	e := x.(*entry)
	e.index = len(*t)
	*t = append(*t, e)
}

func (t *timeline) Pop() any {
	old := *t
	e := old[len(old)-1]
	old[len(old)-1] = nil
	*t = old[:len(old)-1]
	e.index = -1
	return e
}

// Scheduler keeps pending events ordered by trigger time. Due events are sent
// without blocking; when the consumer falls behind they are counted in
// Dropped instead.
type Scheduler struct {
	mu      sync.Mutex
	pending timeline
	byID    map[string]*entry
	state   runState

	out     chan Event
	poke    chan struct{}
	quit    chan struct{}
	done    chan struct{}
	dropped atomic.Uint64
	now     func() time.Time
}

type runState int

const (
	idle runState = iota
	running
	stopped
)

func New(bufferSize int) *Scheduler {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &Scheduler{
		byID: make(map[string]*entry),
		out:  make(chan Event, bufferSize),
		poke: make(chan struct{}, 1),
		quit: make(chan struct{}),
		done: make(chan struct{}),
		now:  time.Now,
	}
}

func (s *Scheduler) C() <-chan Event { return s.out }

// Start launches the delivery goroutine. Events scheduled earlier are kept.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != idle {
		return
	}
	s.state = running
	go s.run()
}

// Stop halts delivery and closes C. Pending events are discarded.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	prev := s.state
	s.state = stopped
	s.mu.Unlock()
	if prev != running {
		return
	}
	close(s.quit)
	<-s.done
}

// Schedule adds ev, replacing any pending event with the same ID.
func (s *Scheduler) Schedule(ev Event) error {
	if ev.TriggerAt.IsZero() {
		return ErrInvalidTriggerTime
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == stopped {
		return ErrStopped
	}
	if e, ok := s.byID[ev.ID]; ok {
		e.ev = ev
		heap.Fix(&s.pending, e.index)
	} else {
		e := &entry{ev: ev}
		heap.Push(&s.pending, e)
		s.byID[ev.ID] = e
	}
	s.wake()
	return nil
}

// Cancel drops the pending event with the given id and reports how many
// events were removed (zero or one).
func (s *Scheduler) Cancel(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.byID[id]
	if !ok {
		return 0
	}
	heap.Remove(&s.pending, e.index)
	delete(s.byID, id)
	s.wake()
	return 1
}

func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

func (s *Scheduler) Dropped() uint64 { return s.dropped.Load() }

func (s *Scheduler) run() {
	defer close(s.done)
	defer close(s.out)

	timer := time.NewTimer(time.Hour)
	defer timer.Stop()
	for {
		var fire <-chan time.Time
		if at, ok := s.nextTrigger(); ok {
			timer.Reset(max(at.Sub(s.now()), 0))
			fire = timer.C
		} else {
			timer.Stop()
		}

		select {
		case <-fire:
			s.deliver(s.takeDue(s.now()))
		case <-s.poke:
		case <-s.quit:
			return
		}
	}
}

func (s *Scheduler) deliver(evs []Event) {
	for _, ev := range evs {
		select {
		case s.out <- ev:
		default:
			s.dropped.Add(1)
		}
	}
}

func (s *Scheduler) wake() {
	select {
	case s.poke <- struct{}{}:
	default:
	}
}

func (s *Scheduler) nextTrigger() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending) == 0 {
		return time.Time{}, false
	}
	return s.pending[0].ev.TriggerAt, true
}

func (s *Scheduler) takeDue(now time.Time) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var due []Event
	for len(s.pending) > 0 && !s.pending[0].ev.TriggerAt.After(now) {
		e := heap.Pop(&s.pending).(*entry)
		delete(s.byID, e.ev.ID)
		due = append(due, e.ev)
	}
	return due
}
