package world

import (
	"errors"
	"fmt"

	"github.com/orbitalgo/orbital/internal/resource"
	"go.uber.org/zap"
)

// PrepareRenderAndCollectMeshes realizes the GPU resources of every
// render-eligible entity that has not been prepared yet, then returns the
// meshes of all prepared ones. An entity whose preparation failed is
// skipped until InvalidateRender; its failure is part of the returned
// error only on the pass where it happened.
func (w *World) PrepareRenderAndCollectMeshes(r *resource.Realizer) ([]resource.MeshRef, error) {
	var errs []error
	for _, c := range w.containers {
		if !c.Config().DoesRender {
			continue
		}
		if err := c.Prepare(r); err != nil {
			w.log.Error("render preparation failed",
				zap.String("tag", c.Tag()),
				zap.Stringer("id", c.ID()),
				zap.Error(err),
			)
			errs = append(errs, fmt.Errorf("prepare %q: %w", c.Tag(), err))
		}
	}

	meshes := make([]resource.MeshRef, 0, len(w.containers))
	for _, c := range w.containers {
		meshes = append(meshes, c.Meshes()...)
	}
	return meshes, errors.Join(errs...)
}

// InvalidateRender makes the next render pass realize the first entity
// carrying tag again, clearing a recorded failure.
func (w *World) InvalidateRender(tag string) bool {
	i := w.find(tag)
	if i < 0 {
		return false
	}
	w.containers[i].Invalidate()
	return true
}
