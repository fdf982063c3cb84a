package elements

import (
	"time"

	"github.com/orbitalgo/orbital/internal/entity"
	"github.com/orbitalgo/orbital/internal/gpu"
	"github.com/orbitalgo/orbital/internal/variant"
)

// ClearColorCycler steps the world's clear color through a palette, one
// entry per period. A "pause" message with a bool value stops or resumes
// it.
type ClearColorCycler struct {
	entity.Base
	tag     string
	freq    entity.UpdateFrequency
	palette []gpu.Color
	period  float64
	elapsed float64
	index   int
	paused  bool
}

func NewClearColorCycler(tag string, freq entity.UpdateFrequency, period time.Duration, palette ...gpu.Color) *ClearColorCycler {
	if len(palette) == 0 {
		palette = []gpu.Color{gpu.Black, gpu.White}
	}
	return &ClearColorCycler{
		tag:     tag,
		freq:    freq,
		palette: palette,
		period:  period.Seconds(),
	}
}

func (c *ClearColorCycler) Configuration() entity.Configuration {
	return entity.Configuration{Tag: c.tag, UpdateFrequency: c.freq}
}

func (c *ClearColorCycler) OnUpdate(dt float64) []entity.WorldChange {
	if c.paused {
		return nil
	}
	c.elapsed += dt
	if c.elapsed < c.period {
		return nil
	}
	c.elapsed -= c.period
	color := c.palette[c.index]
	c.index = (c.index + 1) % len(c.palette)
	return []entity.WorldChange{entity.ClearColorAdjustment{Color: color}}
}

func (c *ClearColorCycler) OnMessage(msg variant.Message) {
	if v, ok := msg["pause"]; ok {
		if paused, ok := v.AsBool(); ok {
			c.paused = paused
		}
	}
}
