package system

import (
	"sort"
	"time"

	"go.uber.org/zap"
)

// Runner executes systems in phase order each frame. Systems sharing a
// phase run in registration order.
type Runner struct {
	systems []System
	sorted  bool

	budget time.Duration
	log    *zap.Logger
	now    func() time.Time
	spent  [phaseCount]time.Duration
	overs  uint64
}

func NewRunner() *Runner {
	return &Runner{
		systems: make([]System, 0, 8),
		log:     zap.NewNop(),
		now:     time.Now,
	}
}

// SetBudget makes Tick warn whenever a whole frame takes longer than
// budget. Zero disables the check.
func (r *Runner) SetBudget(budget time.Duration, log *zap.Logger) {
	r.budget = budget
	if log != nil {
		r.log = log
	}
}

func (r *Runner) Register(s System) {
	r.systems = append(r.systems, s)
	r.sorted = false
}

func (r *Runner) Len() int { return len(r.systems) }

// Overruns counts frames that exceeded the budget.
func (r *Runner) Overruns() uint64 { return r.overs }

func (r *Runner) Tick(dt time.Duration) {
	r.ensureSorted()
	if r.budget <= 0 {
		for _, s := range r.systems {
			s.Update(dt)
		}
		return
	}

	r.spent = [phaseCount]time.Duration{}
	start := r.now()
	last := start
	for _, s := range r.systems {
		s.Update(dt)
		now := r.now()
		if p := s.Phase(); p >= 0 && p < phaseCount {
			r.spent[p] += now.Sub(last)
		}
		last = now
	}
	if total := last.Sub(start); total > r.budget {
		r.overs++
		slowest := PhaseInput
		for p := PhaseInput; p < phaseCount; p++ {
			if r.spent[p] > r.spent[slowest] {
				slowest = p
			}
		}
		r.log.Warn("frame over budget",
			zap.Duration("took", total),
			zap.Duration("budget", r.budget),
			zap.Stringer("slowest_phase", slowest),
			zap.Duration("phase_took", r.spent[slowest]),
		)
	}
}

// TickPhase runs only the systems of one phase. Hosts that render less
// often than they simulate use it to run update phases on their own.
func (r *Runner) TickPhase(phase Phase, dt time.Duration) {
	r.ensureSorted()
	for _, s := range r.systems {
		if s.Phase() == phase {
			s.Update(dt)
		}
	}
}

func (r *Runner) ensureSorted() {
	if !r.sorted {
		sort.SliceStable(r.systems, func(i, j int) bool {
			return r.systems[i].Phase() < r.systems[j].Phase()
		})
		r.sorted = true
	}
}
