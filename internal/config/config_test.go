package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/orbitalgo/orbital/internal/gpu"
	"github.com/orbitalgo/orbital/internal/world"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "orbital.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[engine]
tick_rate = "20ms"
frames = 10

[render]
clear_color = [0.5, 0.25, 0.0]
surface_format = "rgba8unorm"

[world]
policy = "overwrite"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Engine.TickRate != 20*time.Millisecond || cfg.Engine.Frames != 10 {
		t.Errorf("engine = %+v", cfg.Engine)
	}
	if cfg.Engine.MaxFixedSteps != 4 || cfg.Engine.Name != "orbital" {
		t.Errorf("defaults lost: %+v", cfg.Engine)
	}
	if got := cfg.Render.Color(); got != (gpu.Color{R: 0.5, G: 0.25, B: 0, A: 1}) {
		t.Errorf("clear colour = %+v", got)
	}
	if cfg.Render.Format() != gpu.TextureFormatRGBA8Unorm {
		t.Errorf("format = %v", cfg.Render.Format())
	}
	if cfg.World.DuplicationPolicy() != world.OverwriteOnDuplication {
		t.Errorf("policy = %v", cfg.World.DuplicationPolicy())
	}
	if cfg.Engine.StartTime == 0 {
		t.Error("start time not set")
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"backend", "[render]\nbackend = \"vulkan\"\n", "render.backend"},
		{"colour", "[render]\nclear_color = [1.0]\n", "clear_color"},
		{"format", "[render]\nsurface_format = \"rgb565\"\n", "surface_format"},
		{"policy", "[world]\npolicy = \"maybe\"\n", "world.policy"},
		{"tick", "[engine]\ntick_rate = \"0s\"\n", "tick_rate"},
		{"steps", "[engine]\nmax_fixed_steps = 0\n", "max_fixed_steps"},
		{"profile", "[debug]\nprofile = \"trace\"\n", "debug.profile"},
		{"syntax", "[engine\n", "parse config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("missing file loaded")
	}
}

func TestShippedConfigLoads(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "config", "orbital.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Render.Backend != BackendDryRun {
		t.Errorf("backend = %q", cfg.Render.Backend)
	}
}
