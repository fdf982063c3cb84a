package camera

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/orbitalgo/orbital/internal/gpu"
	"github.com/orbitalgo/orbital/internal/resource"
	"go.uber.org/zap"
)

var (
	ErrCameraNotFound = errors.New("camera not found")
	ErrCameraExists   = errors.New("camera already exists")
)

// Manager owns every spawned camera and tracks the active one. It is the
// camera collaborator the World forwards camera changes to.
type Manager struct {
	cameras map[string]*Camera
	active  string
	uniform gpu.Buffer
	layout  gpu.BindGroupLayout
	group   gpu.BindGroup
	log     *zap.Logger
}

func NewManager(log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		cameras: make(map[string]*Camera),
		log:     log,
	}
}

// Spawn adds a camera; activate makes it the active one.
func (m *Manager) Spawn(desc Descriptor, activate bool) error {
	if _, ok := m.cameras[desc.Identifier]; ok {
		return fmt.Errorf("spawn camera %q: %w", desc.Identifier, ErrCameraExists)
	}
	m.cameras[desc.Identifier] = newCamera(desc)
	if activate || m.active == "" {
		m.active = desc.Identifier
	}
	m.log.Debug("camera spawned",
		zap.String("camera", desc.Identifier),
		zap.Bool("active", m.active == desc.Identifier),
	)
	return nil
}

func (m *Manager) SetActive(id string) error {
	if _, ok := m.cameras[id]; !ok {
		return fmt.Errorf("activate camera %q: %w", id, ErrCameraNotFound)
	}
	m.active = id
	return nil
}

func (m *Manager) Get(id string) (*Camera, bool) {
	c, ok := m.cameras[id]
	return c, ok
}

func (m *Manager) Active() (*Camera, bool) {
	return m.Get(m.active)
}

// Orientation returns the orientation of the target camera, or nil when
// the camera is unknown.
func (m *Manager) Orientation(id string) *Orientation {
	c, ok := m.resolve(id)
	if !ok {
		return nil
	}
	o := c.orientation
	return &o
}

func (m *Manager) resolve(target string) (*Camera, bool) {
	if target == "" {
		return m.Active()
	}
	return m.Get(target)
}

// ApplyChange updates the target camera.
func (m *Manager) ApplyChange(change Change) error {
	if !change.ChangesSomething() {
		return nil
	}
	c, ok := m.resolve(change.Target)
	if !ok {
		return fmt.Errorf("apply camera change to %q: %w", change.Target, ErrCameraNotFound)
	}
	c.apply(change)
	return nil
}

// ViewProjection of the active camera; identity when there is none.
func (m *Manager) ViewProjection() mgl32.Mat4 {
	c, ok := m.Active()
	if !ok {
		return mgl32.Ident4()
	}
	return c.ViewProjection()
}

// Sync uploads the active view-projection matrix into the camera uniform
// buffer, creating the buffer and its bind group on first use.
func (m *Manager) Sync(device gpu.Device, queue gpu.Queue) error {
	if m.group == nil {
		if err := m.create(device); err != nil {
			m.Release()
			return err
		}
	}
	vp := m.ViewProjection()
	data := make([]byte, 0, 16*4)
	for _, f := range vp {
		data = binary.LittleEndian.AppendUint32(data, math.Float32bits(f))
	}
	return queue.WriteBuffer(m.uniform, 0, data)
}

func (m *Manager) create(device gpu.Device) error {
	var err error
	m.uniform, err = device.CreateBuffer(&gpu.BufferDescriptor{
		Label: "Camera Uniform Buffer",
		Size:  16 * 4,
		Usage: gpu.BufferUsageUniform | gpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("camera uniform buffer: %w", err)
	}
	desc := resource.CameraLayout()
	if m.layout, err = device.CreateBindGroupLayout(&desc); err != nil {
		return fmt.Errorf("camera bind group layout: %w", err)
	}
	m.group, err = device.CreateBindGroup(&gpu.BindGroupDescriptor{
		Label:  "Camera Bind Group",
		Layout: m.layout,
		Entries: []gpu.BindGroupEntry{
			{Binding: 0, Buffer: m.uniform},
		},
	})
	if err != nil {
		return fmt.Errorf("camera bind group: %w", err)
	}
	return nil
}

// Uniform returns the camera uniform buffer, nil before the first Sync.
func (m *Manager) Uniform() gpu.Buffer { return m.uniform }

// BindGroup holds the uniform at resource.CameraGroup; nil before the
// first Sync.
func (m *Manager) BindGroup() gpu.BindGroup { return m.group }

func (m *Manager) Release() {
	gpu.Release(m.group, m.layout, m.uniform)
	m.group, m.layout, m.uniform = nil, nil, nil
}
