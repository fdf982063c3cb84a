package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/orbitalgo/orbital/internal/camera"
	"github.com/orbitalgo/orbital/internal/config"
	"github.com/orbitalgo/orbital/internal/core/event"
	coresys "github.com/orbitalgo/orbital/internal/core/system"
	"github.com/orbitalgo/orbital/internal/data"
	"github.com/orbitalgo/orbital/internal/gpu"
	"github.com/orbitalgo/orbital/internal/gpu/memdevice"
	"github.com/orbitalgo/orbital/internal/gpu/wgpudevice"
	"github.com/orbitalgo/orbital/internal/render"
	"github.com/orbitalgo/orbital/internal/resource"
	"github.com/orbitalgo/orbital/internal/scripting"
	"github.com/orbitalgo/orbital/internal/system"
	"github.com/orbitalgo/orbital/internal/world"
	"github.com/pkg/profile"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(name, backend string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m               orbital  v0.1.0             \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m         real-time engine runtime          \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mengine:\033[0m %s \033[90m(backend: %s)\033[0m\n\n", name, backend)
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Engine ────────────────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/orbital.toml"
	if p := os.Getenv("ORBITAL_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	if p := startProfile(cfg.Debug); p != nil {
		defer p.Stop()
	}

	printBanner(cfg.Engine.Name, cfg.Render.Backend)

	// 3. Acquire the device
	printSection("device")
	gfx, err := openBackend(cfg.Render, log)
	if err != nil {
		return fmt.Errorf("render backend: %w", err)
	}
	defer gfx.close()
	printOK(fmt.Sprintf("%s device ready (%dx%d, %s)",
		cfg.Render.Backend, cfg.Render.Width, cfg.Render.Height, cfg.Render.Format()))
	fmt.Println()

	// 4. Load the scene
	printSection("scene")
	scene, err := data.LoadScene(cfg.Scene.Path)
	if err != nil {
		return err
	}
	built, err := scene.Build(log)
	if err != nil {
		return err
	}

	policy := cfg.World.DuplicationPolicy()
	if built.HasPolicy {
		policy = built.Policy
	}
	clearColor := cfg.Render.Color()
	if built.HasClearColor {
		clearColor = built.ClearColor
	}

	bus := event.NewBus()
	cameras := camera.NewManager(log)
	defer cameras.Release()
	w := world.New(world.Config{
		Policy:     policy,
		ClearColor: clearColor,
		Camera:     cameras,
		Bus:        bus,
	}, log)
	defer w.Close()

	event.Subscribe(bus, func(ev event.MessageDropped) {
		log.Debug("message dropped", zap.Stringer("target", ev.Target), zap.Int("keys", ev.Keys))
	})

	for _, c := range built.Cameras {
		if err := cameras.Spawn(c.Descriptor, c.Activate); err != nil {
			return err
		}
	}
	printStat("cameras", len(built.Cameras))

	added := 0
	for _, e := range built.Entities {
		if err := w.AddEntity(e); err != nil {
			return fmt.Errorf("scene entity %q: %w", e.Configuration().Tag, err)
		}
		added++
	}
	printStat("scene entities", added)

	// 5. Load scripts
	if cfg.Scripting.Dir != "" {
		scripts, err := scripting.LoadDir(cfg.Scripting.Dir, log)
		if err != nil {
			return fmt.Errorf("load scripts: %w", err)
		}
		for _, s := range scripts {
			if err := w.AddEntity(s); err != nil {
				return fmt.Errorf("script %q: %w", s.Configuration().Tag, err)
			}
		}
		printStat("scripts", len(scripts))
	}
	printStat("world entities", w.Len())
	fmt.Println()

	// 6. Create systems and register with runner
	fatalCh := make(chan error, 1)
	onFatal := func(err error) {
		select {
		case fatalCh <- err:
		default:
		}
	}

	frame := &system.FrameInput{}
	realizer := resource.NewRealizer(gfx.device, gfx.queue, cfg.Render.Format(), log)
	runner := coresys.NewRunner()
	runner.SetBudget(cfg.Engine.TickRate, log)
	runner.Register(system.NewInputSystem(bus, frame))
	runner.Register(system.NewUpdateSystem(w, frame, onFatal, log))
	runner.Register(system.NewFixedUpdateSystem(w, frame, cfg.Engine.MaxFixedSteps, onFatal, log))
	runner.Register(system.NewRenderSystem(w, realizer, cameras, gfx.renderer, frame, log))
	runner.Register(system.NewCleanupSystem(w))

	// 7. Start frame loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Engine.TickRate)
	defer ticker.Stop()

	printSection("running")
	printReady(fmt.Sprintf("frame loop started (tick: %s)", cfg.Engine.TickRate))
	if cfg.Engine.Frames > 0 {
		printReady(fmt.Sprintf("stopping after %d frames", cfg.Engine.Frames))
	}
	fmt.Println()

	last := time.Now()
	for {
		select {
		case now := <-ticker.C:
			runner.Tick(now.Sub(last))
			last = now
			if cfg.Engine.Frames > 0 && frame.Number >= cfg.Engine.Frames {
				log.Info("frame limit reached", zap.Uint64("frames", frame.Number))
				return nil
			}
		case err := <-fatalCh:
			log.Error("engine stopped", zap.Uint64("frame", frame.Number), zap.Error(err))
			return err
		case sig := <-shutdownCh:
			log.Info("shutdown signal", zap.String("signal", sig.String()))
			return nil
		}
	}
}

type backend struct {
	device   gpu.Device
	queue    gpu.Queue
	renderer render.Renderer
	close    func()
}

func openBackend(cfg config.RenderConfig, log *zap.Logger) (*backend, error) {
	if cfg.Backend == config.BackendDryRun {
		dev := memdevice.New()
		return &backend{
			device:   dev,
			queue:    dev.Queue(),
			renderer: render.NewRecorder(log),
			close: func() {
				if live := dev.LiveTotal(); live > 0 {
					log.Warn("device objects still live at exit", zap.Int("live", live))
				}
			},
		}, nil
	}

	dev, err := wgpudevice.Open(wgpudevice.Options{
		Label:                "orbital",
		ForceFallbackAdapter: cfg.FallbackGPU,
	}, log)
	if err != nil {
		return nil, err
	}
	r, err := wgpudevice.NewRenderer(dev, cfg.Width, cfg.Height, cfg.Format(), log)
	if err != nil {
		dev.Close()
		return nil, err
	}
	return &backend{
		device:   dev,
		queue:    dev.Queue(),
		renderer: r,
		close: func() {
			r.Release()
			dev.Close()
		},
	}, nil
}

func startProfile(cfg config.DebugConfig) interface{ Stop() } {
	switch cfg.Profile {
	case "cpu":
		return profile.Start(profile.CPUProfile, profile.ProfilePath(cfg.Path), profile.NoShutdownHook)
	case "mem":
		return profile.Start(profile.MemProfileAllocs, profile.ProfilePath(cfg.Path), profile.NoShutdownHook)
	}
	return nil
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
