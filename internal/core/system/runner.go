package system

import (
	"fmt"
	"sort"
	"time"

	"github.com/l1jgo/simcore/internal/core/ecs"
	"go.uber.org/zap"
)

// Observer receives per-system timings. metrics.Metrics implements it.
type Observer interface {
	ObserveSystem(kind string, d time.Duration)
	ObserveFrame(d time.Duration)
}

// Runner executes systems in phase order each frame. Systems that share a
// phase run in registration order.
type Runner struct {
	systems  []System
	sorted   bool
	clock    *ecs.Clock
	observer Observer
	log      *zap.Logger
}

func NewRunner(clock *ecs.Clock, log *zap.Logger) *Runner {
	if clock == nil {
		clock = ecs.NewClock()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{
		systems: make([]System, 0, 16),
		clock:   clock,
		log:     log,
	}
}

// SetObserver installs a timing observer; nil disables timing.
func (r *Runner) SetObserver(o Observer) { r.observer = o }

func (r *Runner) Register(s System) {
	r.systems = append(r.systems, s)
	r.sorted = false
	r.log.Debug("system registered",
		zap.String("system", string(s.Kind())),
		zap.String("phase", s.Phase().String()))
}

// Systems returns the systems in execution order.
func (r *Runner) Systems() []System {
	r.ensureSorted()
	out := make([]System, len(r.systems))
	copy(out, r.systems)
	return out
}

// Clock returns the world clock the runner advances.
func (r *Runner) Clock() *ecs.Clock { return r.clock }

// Tick advances world time by dt and runs every system once.
func (r *Runner) Tick(dt time.Duration) *ecs.Frame {
	r.ensureSorted()
	f := r.clock.Advance(dt)
	start := time.Now()
	for _, s := range r.systems {
		r.run(s, f)
	}
	if r.observer != nil {
		r.observer.ObserveFrame(time.Since(start))
	}
	return f
}

// TickPhase runs only the systems of one phase against frame f. Used by tests
// and tools that need to step a frame part way.
func (r *Runner) TickPhase(phase Phase, f *ecs.Frame) {
	r.ensureSorted()
	for _, s := range r.systems {
		if s.Phase() == phase {
			r.run(s, f)
		}
	}
}

func (r *Runner) run(s System, f *ecs.Frame) {
	if r.observer == nil {
		s.Update(f)
		return
	}
	start := time.Now()
	s.Update(f)
	r.observer.ObserveSystem(string(s.Kind()), time.Since(start))
}

func (r *Runner) ensureSorted() {
	if !r.sorted {
		sort.SliceStable(r.systems, func(i, j int) bool {
			return r.systems[i].Phase() < r.systems[j].Phase()
		})
		r.sorted = true
	}
}

// Describe returns "phase/kind" for each system in execution order.
func (r *Runner) Describe() []string {
	r.ensureSorted()
	out := make([]string, len(r.systems))
	for i, s := range r.systems {
		out[i] = fmt.Sprintf("%s/%s", s.Phase(), s.Kind())
	}
	return out
}
