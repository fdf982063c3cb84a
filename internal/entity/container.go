package entity

import (
	"slices"

	"github.com/oklog/ulid/v2"
	"github.com/orbitalgo/orbital/internal/resource"
)

// Container owns one registered entity, its configuration snapshot and its
// render preparation state.
type Container struct {
	entity Entity
	config Configuration
	id     ulid.ULID
	tags   []string

	prepared   bool
	prepareErr error
}

func NewContainer(e Entity, id ulid.ULID) *Container {
	return &Container{
		entity: e,
		config: e.Configuration(),
		id:     id,
	}
}

func (c *Container) Entity() Entity        { return c.entity }
func (c *Container) Config() Configuration { return c.config }
func (c *Container) ID() ulid.ULID         { return c.id }
func (c *Container) Tag() string           { return c.config.Tag }
func (c *Container) Prepared() bool        { return c.prepared }
func (c *Container) PrepareErr() error     { return c.prepareErr }

// AddTags records extra lookup tags reported at registration.
func (c *Container) AddTags(tags ...string) {
	for _, t := range tags {
		if t != "" && !c.HasTag(t) {
			c.tags = append(c.tags, t)
		}
	}
}

// Tags returns the configuration tag followed by the registration tags.
func (c *Container) Tags() []string {
	return append([]string{c.config.Tag}, c.tags...)
}

func (c *Container) HasTag(tag string) bool {
	return c.config.Tag == tag || slices.Contains(c.tags, tag)
}

// Prepare realizes the entity's GPU resources once. A failed preparation
// is remembered and not attempted again until Invalidate.
func (c *Container) Prepare(r *resource.Realizer) error {
	if c.prepared || c.prepareErr != nil {
		return nil
	}
	if err := c.entity.PrepareRender(r); err != nil {
		c.prepareErr = err
		return err
	}
	c.prepared = true
	return nil
}

// Invalidate forces the next Prepare to realize again.
func (c *Container) Invalidate() {
	c.prepared = false
	c.prepareErr = nil
}

// Meshes returns the entity's meshes when it renders and is prepared.
func (c *Container) Meshes() []resource.MeshRef {
	if !c.config.DoesRender || !c.prepared {
		return nil
	}
	return c.entity.Meshes()
}

// Release frees the entity's GPU resources. The container is unprepared
// afterwards.
func (c *Container) Release() {
	if r, ok := c.entity.(Releaser); ok {
		r.Release()
	}
	c.prepared = false
}
