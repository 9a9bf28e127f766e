package tick

import (
	"cmp"
	"context"
	"log/slog"
	"math"
	"runtime/debug"
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

// TicksPerSecond is the number of times per second Run steps the Scheduler.
const TicksPerSecond = 20

const (
	tpsSampleSize       = 20
	tpsWarningThreshold = 19.0
)

// Handle is a reference to a scheduled task. Cancelling a handle guarantees the
// task's function is not started again.
type Handle interface {
	// Cancel stops the task. It is safe to call Cancel multiple times and from
	// within the task itself.
	Cancel()
	// Cancelled reports if Cancel was called.
	Cancelled() bool
}

type task struct {
	id        uint64
	due       int64
	period    int64
	fn        func()
	cancelled atomic.Bool
}

func (t *task) Cancel() {
	t.cancelled.Store(true)
}

func (t *task) Cancelled() bool {
	return t.cancelled.Load()
}

// Scheduler runs one-shot and repeating tasks on a single logical thread. Tasks
// are measured in ticks and run in the order they become due, ties broken by
// the order in which they were scheduled. Tasks may be scheduled from any
// goroutine, but only one Step runs at a time.
type Scheduler struct {
	log *slog.Logger

	step sync.Mutex

	mu      sync.Mutex
	current int64
	next    uint64
	tasks   []*task

	tps atomic.Uint64
}

// NewScheduler returns an empty Scheduler at tick zero.
func NewScheduler(log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{log: log.With("subsystem", "tick")}
}

// RunLater schedules fn to run once, delay ticks from now. A delay below one is
// treated as one, so the function never runs before the next Step.
func (s *Scheduler) RunLater(delay int64, fn func()) Handle {
	return s.schedule(delay, 0, fn)
}

// RunRepeating schedules fn to run delay ticks from now and every period ticks
// after that until the returned Handle is cancelled. A period below one is
// treated as one.
func (s *Scheduler) RunRepeating(delay, period int64, fn func()) Handle {
	return s.schedule(delay, max(period, 1), fn)
}

func (s *Scheduler) schedule(delay, period int64, fn func()) Handle {
	t := &task{period: period, fn: fn}
	if fn == nil {
		t.Cancel()
		return t
	}
	s.mu.Lock()
	t.id = s.next
	s.next++
	t.due = s.current + max(delay, 1)
	s.tasks = append(s.tasks, t)
	s.mu.Unlock()
	return t
}

// Current returns the number of ticks stepped so far.
func (s *Scheduler) Current() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Pending returns the number of tasks that are scheduled and not cancelled.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.tasks {
		if !t.Cancelled() {
			n++
		}
	}
	return n
}

// TPS returns the average number of steps per second measured by Run over the
// last sample window. It is zero until enough samples were collected.
func (s *Scheduler) TPS() float64 {
	return math.Float64frombits(s.tps.Load())
}

// Step advances the Scheduler by one tick and runs every task that became due.
// Tasks scheduled while stepping are due no earlier than the next Step.
func (s *Scheduler) Step() {
	s.step.Lock()
	defer s.step.Unlock()

	s.mu.Lock()
	s.current++
	now := s.current
	var due []*task
	s.tasks = slices.DeleteFunc(s.tasks, func(t *task) bool {
		if t.Cancelled() {
			return true
		}
		if t.due <= now {
			due = append(due, t)
			return true
		}
		return false
	})
	s.mu.Unlock()

	slices.SortFunc(due, func(a, b *task) int {
		if c := cmp.Compare(a.due, b.due); c != 0 {
			return c
		}
		return cmp.Compare(a.id, b.id)
	})
	for _, t := range due {
		if t.Cancelled() {
			continue
		}
		s.run(t)
		if t.period == 0 || t.Cancelled() {
			continue
		}
		s.mu.Lock()
		t.due = now + t.period
		s.tasks = append(s.tasks, t)
		s.mu.Unlock()
	}
}

func (s *Scheduler) run(t *task) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("Scheduled task panicked.", "task", t.id, "panic", r, "stack", string(debug.Stack()))
		}
	}()
	t.fn()
}

// Run steps the Scheduler every interval until ctx is cancelled. A zero interval
// runs at TicksPerSecond.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Second / TicksPerSecond
	}
	tc := time.NewTicker(interval)
	defer tc.Stop()
	lastTick := time.Now()
	var (
		durationSum time.Duration
		ticksCount  int
		warned      bool
	)
	for {
		select {
		case <-tc.C:
			tickStart := time.Now()
			durationSum += tickStart.Sub(lastTick)
			lastTick = tickStart
			ticksCount++
			if ticksCount >= tpsSampleSize {
				tps := 0.0
				if avg := durationSum / time.Duration(ticksCount); avg > 0 {
					tps = 1.0 / avg.Seconds()
				}
				s.tps.Store(math.Float64bits(tps))
				if tps < tpsWarningThreshold && interval == time.Second/TicksPerSecond {
					if !warned {
						s.log.Warn("Scheduler falling behind.", "tps", tps)
						warned = true
					}
				} else {
					warned = false
				}
				durationSum, ticksCount = 0, 0
			}
			s.Step()
		case <-ctx.Done():
			return
		}
	}
}
