package system

import (
	"errors"
	"time"

	coresys "github.com/orbitalgo/orbital/internal/core/system"
	"github.com/orbitalgo/orbital/internal/entity"
	"github.com/orbitalgo/orbital/internal/world"
	"go.uber.org/zap"
)

// FatalFunc receives errors the host has to decide about, such as
// world.ErrDuplicateTagFatal.
type FatalFunc func(err error)

func report(log *zap.Logger, onFatal FatalFunc, pass string, err error) {
	if err == nil {
		return
	}
	if errors.Is(err, world.ErrDuplicateTagFatal) && onFatal != nil {
		log.Error("fatal world change", zap.String("pass", pass), zap.Error(err))
		onFatal(err)
		return
	}
	log.Warn("world change failed", zap.String("pass", pass), zap.Error(err))
}

// UpdateSystem runs the every-frame update pass. Phase 1 (Update).
type UpdateSystem struct {
	world   *world.World
	frame   *FrameInput
	onFatal FatalFunc
	log     *zap.Logger
}

func NewUpdateSystem(w *world.World, frame *FrameInput, onFatal FatalFunc, log *zap.Logger) *UpdateSystem {
	return &UpdateSystem{world: w, frame: frame, onFatal: onFatal, log: log}
}

func (s *UpdateSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *UpdateSystem) Update(dt time.Duration) {
	err := s.world.CallUpdateable(entity.EveryFrame, dt.Seconds(), s.frame.Events)
	report(s.log, s.onFatal, "every_frame", err)
}

// FixedUpdateSystem runs fixed-rate passes. Each rate accumulates frame
// time and steps once per elapsed period, at most maxSteps times a frame.
// Input events go to the first step of a frame only. Phase 2 (FixedUpdate).
type FixedUpdateSystem struct {
	world    *world.World
	frame    *FrameInput
	maxSteps int
	acc      map[time.Duration]time.Duration
	onFatal  FatalFunc
	log      *zap.Logger
}

func NewFixedUpdateSystem(w *world.World, frame *FrameInput, maxSteps int, onFatal FatalFunc, log *zap.Logger) *FixedUpdateSystem {
	if maxSteps <= 0 {
		maxSteps = 1
	}
	return &FixedUpdateSystem{
		world:    w,
		frame:    frame,
		maxSteps: maxSteps,
		acc:      make(map[time.Duration]time.Duration),
		onFatal:  onFatal,
		log:      log,
	}
}

func (s *FixedUpdateSystem) Phase() coresys.Phase { return coresys.PhaseFixedUpdate }

func (s *FixedUpdateSystem) Update(dt time.Duration) {
	for _, rate := range s.world.FixedRates() {
		acc := s.acc[rate] + dt
		steps := 0
		for acc >= rate && steps < s.maxSteps {
			events := s.frame.Events
			if steps > 0 {
				events = nil
			}
			err := s.world.CallUpdateable(entity.Fixed(rate), rate.Seconds(), events)
			report(s.log, s.onFatal, "fixed:"+rate.String(), err)
			acc -= rate
			steps++
		}
		if acc >= rate {
			s.log.Debug("fixed update behind, dropping time",
				zap.Duration("rate", rate),
				zap.Duration("dropped", acc),
			)
			acc %= rate
		}
		s.acc[rate] = acc
	}
}
