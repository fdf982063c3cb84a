package world

import (
	"errors"
	"slices"
	"time"

	"github.com/orbitalgo/orbital/internal/core/event"
	"github.com/orbitalgo/orbital/internal/entity"
	"github.com/orbitalgo/orbital/internal/input"
	"go.uber.org/zap"
)

// selected snapshots the containers freq selects, in insertion order.
func (w *World) selected(freq entity.UpdateFrequency) []*entity.Container {
	out := make([]*entity.Container, 0, len(w.containers))
	for _, c := range w.containers {
		if c.Config().UpdateFrequency.Selects(freq) {
			out = append(out, c)
		}
	}
	return out
}

// dispatchInput hands every event to e in arrival order.
func dispatchInput(e entity.Entity, dt float64, events []input.Event) {
	for _, ev := range events {
		e.OnInputEvent(dt, ev)
	}
}

// CallUpdateable runs one update pass over the entities freq selects.
// Each entity receives the pending input events and then OnUpdate. The
// changes they return are applied only after every update returned, one
// by one in emission order, so no entity observes another's changes from
// the same pass. Entities removed or spawned by the pass take part in the
// next one.
//
// The returned error joins fatal failures such as ErrDuplicateTagFatal;
// the pass itself always runs to completion.
func (w *World) CallUpdateable(freq entity.UpdateFrequency, dt float64, events []input.Event) error {
	snapshot := w.selected(freq)
	var changes []entity.WorldChange
	for _, c := range snapshot {
		e := c.Entity()
		dispatchInput(e, dt, events)
		changes = append(changes, e.OnUpdate(dt)...)
	}
	return w.apply(changes)
}

// apply runs a change pass. Changes appended to pending while it runs are
// processed in the same pass.
func (w *World) apply(changes []entity.WorldChange) error {
	if w.applying {
		w.pending = append(w.pending, changes...)
		return nil
	}
	w.applying = true
	w.pending = append(w.pending[:0], changes...)
	defer func() {
		w.applying = false
		clear(w.pending)
		w.pending = w.pending[:0]
	}()

	var errs []error
	for i := 0; i < len(w.pending); i++ {
		if err := w.applyChange(w.pending[i]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (w *World) applyChange(change entity.WorldChange) error {
	switch c := change.(type) {
	case entity.SpawnEntity:
		if c.Entity == nil {
			return nil
		}
		return w.AddEntity(c.Entity)

	case entity.RemoveEntity:
		if removed, ok := w.detach(c.Tag); ok {
			w.discard(removed)
		} else {
			w.log.Debug("remove: no entity with tag", zap.String("tag", c.Tag))
		}

	case entity.ClearColorAdjustment:
		w.clearColor = c.Color

	case entity.CameraChange:
		if !c.Change.ChangesSomething() {
			return nil
		}
		if w.camera == nil {
			w.log.Warn("camera change without a camera controller")
			return nil
		}
		if err := w.camera.ApplyChange(c.Change); err != nil {
			w.log.Warn("camera change failed", zap.Error(err))
		}

	case entity.SpawnCamera:
		if w.camera == nil {
			w.log.Warn("camera spawn without a camera controller",
				zap.String("camera", c.Descriptor.Identifier))
			return nil
		}
		if err := w.camera.Spawn(c.Descriptor, c.Activate); err != nil {
			w.log.Warn("camera spawn failed", zap.Error(err))
		}

	case entity.SendMessage:
		target := w.containerByID(c.Target)
		if target == nil {
			w.log.Debug("message dropped: no such entity",
				zap.Stringer("target", c.Target),
				zap.Int("keys", len(c.Message)),
			)
			event.Emit(w.bus, event.MessageDropped{Target: c.Target, Keys: len(c.Message)})
			return nil
		}
		target.Entity().OnMessage(c.Message)

	case entity.Keep, nil:
	}
	return nil
}

// FixedRates lists the distinct fixed update rates of registered entities
// in first-seen order.
func (w *World) FixedRates() []time.Duration {
	var rates []time.Duration
	for _, c := range w.containers {
		f := c.Config().UpdateFrequency
		if f.Kind == entity.FrequencyFixed && !slices.Contains(rates, f.Rate) {
			rates = append(rates, f.Rate)
		}
	}
	return rates
}
