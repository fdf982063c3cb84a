package data

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/orbitalgo/orbital/internal/camera"
	"github.com/orbitalgo/orbital/internal/elements"
	"github.com/orbitalgo/orbital/internal/entity"
	"github.com/orbitalgo/orbital/internal/gpu"
	"github.com/orbitalgo/orbital/internal/resource"
	"github.com/orbitalgo/orbital/internal/scripting"
	"github.com/orbitalgo/orbital/internal/world"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Entity kinds accepted in scene files.
const (
	KindModel       = "model"
	KindDebugCamera = "debug_camera"
	KindClearCycler = "clear_cycler"
	KindMessenger   = "messenger"
	KindScript      = "script"
)

// Scene is the parsed form of a scene.yaml file. Relative paths inside it
// resolve against the file's directory.
type Scene struct {
	ClearColor []float64     `yaml:"clear_color"`
	Policy     string        `yaml:"policy"`
	Cameras    []CameraEntry `yaml:"cameras"`
	Entities   []EntityEntry `yaml:"entities"`

	dir string
}

// CameraEntry spawns a camera. Angles are in degrees.
type CameraEntry struct {
	ID       string    `yaml:"id"`
	Position []float32 `yaml:"position"`
	Yaw      float32   `yaml:"yaw"`
	Pitch    float32   `yaml:"pitch"`
	FovY     float32   `yaml:"fov"`
	Near     float32   `yaml:"near"`
	Far      float32   `yaml:"far"`
	Active   bool      `yaml:"active"`
}

// EntityEntry describes one entity. Which fields apply depends on Kind.
type EntityEntry struct {
	Kind      string        `yaml:"kind"`
	Tag       string        `yaml:"tag"`
	Frequency string        `yaml:"frequency"`
	Render    bool          `yaml:"render"`
	Mesh      MeshEntry     `yaml:"mesh"`
	Material  MaterialEntry `yaml:"material"`
	Position  []float32     `yaml:"position"`
	Speed     float32       `yaml:"speed"`
	Period    string        `yaml:"period"`
	Palette   [][]float64   `yaml:"palette"`
	Path      string        `yaml:"path"`
	Text      string        `yaml:"text"`
}

// MeshEntry is either a named primitive or explicit geometry.
type MeshEntry struct {
	Primitive string        `yaml:"primitive"`
	Vertices  []VertexEntry `yaml:"vertices"`
	Indices   []uint32      `yaml:"indices"`
}

type VertexEntry struct {
	Position []float32 `yaml:"position"`
	UV       []float32 `yaml:"uv"`
}

// MaterialEntry picks the albedo from an image, else a color, else the
// placeholder texture.
type MaterialEntry struct {
	Color  []float64 `yaml:"color"`
	Image  string    `yaml:"image"`
	Size   []uint32  `yaml:"size"`
	Shader string    `yaml:"shader"`
}

// Built is what a scene contributes to a running world.
type Built struct {
	ClearColor    gpu.Color
	HasClearColor bool
	Policy        world.DuplicationPolicy
	HasPolicy     bool
	Cameras       []CameraSpawn
	Entities      []entity.Entity
}

type CameraSpawn struct {
	Descriptor camera.Descriptor
	Activate   bool
}

// LoadScene loads scene.yaml.
func LoadScene(path string) (*Scene, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scene: read %s: %w", path, err)
	}
	var s Scene
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("scene: parse %s: %w", path, err)
	}
	s.dir = filepath.Dir(path)
	return &s, nil
}

func (s *Scene) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(s.dir, p)
}

// Build turns the scene into entities and world settings. Images, shaders
// and scripts are read here.
func (s *Scene) Build(log *zap.Logger) (*Built, error) {
	if log == nil {
		log = zap.NewNop()
	}
	b := &Built{}
	if len(s.ClearColor) > 0 {
		c, err := colorOf(s.ClearColor)
		if err != nil {
			return nil, fmt.Errorf("scene: clear_color: %w", err)
		}
		b.ClearColor, b.HasClearColor = c, true
	}
	if s.Policy != "" {
		p, err := world.ParsePolicy(s.Policy)
		if err != nil {
			return nil, fmt.Errorf("scene: %w", err)
		}
		b.Policy, b.HasPolicy = p, true
	}

	for i, c := range s.Cameras {
		pos, err := vec3Of(c.Position)
		if err != nil {
			return nil, fmt.Errorf("scene: camera %d (%s): %w", i, c.ID, err)
		}
		b.Cameras = append(b.Cameras, CameraSpawn{
			Descriptor: camera.Descriptor{
				Identifier: c.ID,
				Position:   pos,
				Yaw:        mgl32.DegToRad(c.Yaw),
				Pitch:      mgl32.DegToRad(c.Pitch),
				FovY:       mgl32.DegToRad(c.FovY),
				Near:       c.Near,
				Far:        c.Far,
			},
			Activate: c.Active,
		})
	}

	for i, e := range s.Entities {
		built, err := s.buildEntity(e, log)
		if err != nil {
			closeAll(b.Entities)
			return nil, fmt.Errorf("scene: entity %d (%s %q): %w", i, e.Kind, e.Tag, err)
		}
		b.Entities = append(b.Entities, built)
	}
	return b, nil
}

func closeAll(entities []entity.Entity) {
	for _, e := range entities {
		if s, ok := e.(*scripting.Entity); ok {
			s.Close()
		}
	}
}

func (s *Scene) buildEntity(e EntityEntry, log *zap.Logger) (entity.Entity, error) {
	freq, err := entity.ParseFrequency(e.Frequency)
	if err != nil {
		return nil, err
	}

	switch e.Kind {
	case KindModel:
		desc, err := s.modelDescriptor(e)
		if err != nil {
			return nil, err
		}
		return elements.NewModel(e.Tag, desc), nil

	case KindDebugCamera:
		pos, err := vec3Of(e.Position)
		if err != nil {
			return nil, err
		}
		return elements.NewDebugCamera(pos, e.Speed), nil

	case KindClearCycler:
		if freq == entity.None {
			freq = entity.EveryFrame
		}
		period := time.Second
		if e.Period != "" {
			if period, err = time.ParseDuration(e.Period); err != nil {
				return nil, err
			}
		}
		palette := make([]gpu.Color, 0, len(e.Palette))
		for _, p := range e.Palette {
			c, err := colorOf(p)
			if err != nil {
				return nil, err
			}
			palette = append(palette, c)
		}
		return elements.NewClearColorCycler(e.Tag, freq, period, palette...), nil

	case KindMessenger:
		return elements.NewMessenger(e.Tag, e.Text, log), nil

	case KindScript:
		if e.Path == "" {
			return nil, fmt.Errorf("script path missing")
		}
		cfg := entity.Configuration{Tag: e.Tag, UpdateFrequency: freq, DoesRender: e.Render}
		return scripting.NewEntity(s.resolve(e.Path), cfg, log)
	}
	return nil, fmt.Errorf("unknown kind")
}

func (s *Scene) modelDescriptor(e EntityEntry) (resource.ModelDescriptor, error) {
	mesh, err := meshOf(e.Mesh)
	if err != nil {
		return resource.ModelDescriptor{}, err
	}
	mat := resource.MaterialDescriptor{Label: e.Tag}

	switch {
	case e.Material.Image != "":
		img, err := LoadImage(s.resolve(e.Material.Image))
		if err != nil {
			return resource.ModelDescriptor{}, err
		}
		tex := resource.SRGB8Image{Image: img}
		if len(e.Material.Size) == 2 {
			tex.Size = &resource.Size{Width: e.Material.Size[0], Height: e.Material.Size[1]}
		}
		mat.Albedo = tex
	case len(e.Material.Color) > 0:
		c, err := colorOf(e.Material.Color)
		if err != nil {
			return resource.ModelDescriptor{}, err
		}
		mat.Albedo = resource.UniformColor{Color: c}
	}

	if e.Material.Shader != "" {
		src, err := os.ReadFile(s.resolve(e.Material.Shader))
		if err != nil {
			return resource.ModelDescriptor{}, fmt.Errorf("read shader: %w", err)
		}
		mat.Shader = string(src)
	}
	return resource.ModelDescriptor{Label: e.Tag, Mesh: mesh, Material: mat}, nil
}

func meshOf(m MeshEntry) (resource.MeshDescriptor, error) {
	switch m.Primitive {
	case "triangle":
		return resource.Triangle(), nil
	case "quad":
		return resource.Quad(), nil
	case "":
	default:
		return resource.MeshDescriptor{}, fmt.Errorf("unknown primitive %q", m.Primitive)
	}
	if len(m.Vertices) == 0 || len(m.Indices) == 0 {
		return resource.MeshDescriptor{}, fmt.Errorf("mesh needs a primitive or vertices and indices")
	}
	desc := resource.MeshDescriptor{
		Vertices: make([]resource.Vertex, 0, len(m.Vertices)),
		Indices:  m.Indices,
	}
	for i, v := range m.Vertices {
		pos, err := vec3Of(v.Position)
		if err != nil {
			return resource.MeshDescriptor{}, fmt.Errorf("vertex %d: %w", i, err)
		}
		var uv mgl32.Vec2
		if len(v.UV) == 2 {
			uv = mgl32.Vec2{v.UV[0], v.UV[1]}
		}
		desc.Vertices = append(desc.Vertices, resource.Vertex{Position: pos, TexCoords: uv})
	}
	return desc, nil
}

func colorOf(v []float64) (gpu.Color, error) {
	switch len(v) {
	case 3:
		return gpu.Color{R: v[0], G: v[1], B: v[2], A: 1}, nil
	case 4:
		return gpu.Color{R: v[0], G: v[1], B: v[2], A: v[3]}, nil
	}
	return gpu.Color{}, fmt.Errorf("color needs 3 or 4 components, got %d", len(v))
}

func vec3Of(v []float32) (mgl32.Vec3, error) {
	switch len(v) {
	case 0:
		return mgl32.Vec3{}, nil
	case 3:
		return mgl32.Vec3{v[0], v[1], v[2]}, nil
	}
	return mgl32.Vec3{}, fmt.Errorf("vector needs 3 components, got %d", len(v))
}
