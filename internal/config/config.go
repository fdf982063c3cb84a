package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/orbitalgo/orbital/internal/gpu"
	"github.com/orbitalgo/orbital/internal/world"
)

type Config struct {
	Engine    EngineConfig    `toml:"engine"`
	Render    RenderConfig    `toml:"render"`
	World     WorldConfig     `toml:"world"`
	Scene     SceneConfig     `toml:"scene"`
	Scripting ScriptingConfig `toml:"scripting"`
	Logging   LoggingConfig   `toml:"logging"`
	Debug     DebugConfig     `toml:"debug"`
}

type EngineConfig struct {
	Name          string        `toml:"name"`
	TickRate      time.Duration `toml:"tick_rate"`
	MaxFixedSteps int           `toml:"max_fixed_steps"` // fixed updates per rate per frame
	Frames        uint64        `toml:"frames"`          // 0 = run until signalled
	StartTime     int64         // set at boot, not from config
}

const (
	BackendWGPU   = "wgpu"
	BackendDryRun = "dry_run"
)

type RenderConfig struct {
	Backend       string    `toml:"backend"` // "wgpu" or "dry_run"
	Width         uint32    `toml:"width"`
	Height        uint32    `toml:"height"`
	ClearColor    []float64 `toml:"clear_color"` // r, g, b[, a] in [0, 1]
	SurfaceFormat string    `toml:"surface_format"`
	FallbackGPU   bool      `toml:"force_fallback_adapter"`
}

type WorldConfig struct {
	Policy string `toml:"policy"` // allow, warn, ignore, overwrite, panic
}

type SceneConfig struct {
	Path string `toml:"path"`
}

type ScriptingConfig struct {
	Dir string `toml:"dir"` // empty disables script loading
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

type DebugConfig struct {
	Profile string `toml:"profile"` // "", "cpu" or "mem"
	Path    string `toml:"path"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	cfg.Engine.StartTime = time.Now().Unix()
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Engine.TickRate <= 0 {
		return fmt.Errorf("engine.tick_rate must be positive, got %s", c.Engine.TickRate)
	}
	if c.Engine.MaxFixedSteps < 1 {
		return fmt.Errorf("engine.max_fixed_steps must be at least 1, got %d", c.Engine.MaxFixedSteps)
	}
	switch c.Render.Backend {
	case BackendWGPU, BackendDryRun:
	default:
		return fmt.Errorf("render.backend %q unknown", c.Render.Backend)
	}
	if n := len(c.Render.ClearColor); n != 3 && n != 4 {
		return fmt.Errorf("render.clear_color needs 3 or 4 components, got %d", n)
	}
	if _, ok := gpu.ParseTextureFormat(c.Render.SurfaceFormat); !ok {
		return fmt.Errorf("render.surface_format %q unknown", c.Render.SurfaceFormat)
	}
	if _, err := world.ParsePolicy(c.World.Policy); err != nil {
		return fmt.Errorf("world.policy: %w", err)
	}
	switch c.Debug.Profile {
	case "", "cpu", "mem":
	default:
		return fmt.Errorf("debug.profile %q unknown", c.Debug.Profile)
	}
	return nil
}

// Color returns the configured clear colour; alpha defaults to 1.
func (r RenderConfig) Color() gpu.Color {
	c := gpu.Color{A: 1}
	if len(r.ClearColor) >= 3 {
		c.R, c.G, c.B = r.ClearColor[0], r.ClearColor[1], r.ClearColor[2]
	}
	if len(r.ClearColor) == 4 {
		c.A = r.ClearColor[3]
	}
	return c
}

func (r RenderConfig) Format() gpu.TextureFormat {
	f, _ := gpu.ParseTextureFormat(r.SurfaceFormat)
	return f
}

func (w WorldConfig) DuplicationPolicy() world.DuplicationPolicy {
	p, _ := world.ParsePolicy(w.Policy)
	return p
}

func defaults() *Config {
	return &Config{
		Engine: EngineConfig{
			Name:          "orbital",
			TickRate:      16 * time.Millisecond,
			MaxFixedSteps: 4,
		},
		Render: RenderConfig{
			Backend:       BackendDryRun,
			Width:         1280,
			Height:        720,
			ClearColor:    []float64{0, 0, 0, 1},
			SurfaceFormat: gpu.TextureFormatBGRA8UnormSrgb.String(),
		},
		World: WorldConfig{
			Policy: world.WarnOnDuplication.String(),
		},
		Scene: SceneConfig{
			Path: "data/yaml/scene.yaml",
		},
		Scripting: ScriptingConfig{
			Dir: "scripts",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Debug: DebugConfig{
			Path: ".",
		},
	}
}
