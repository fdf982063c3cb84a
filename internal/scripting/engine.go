// Package scripting runs entities written in Lua. Each script gets its own
// gopher-lua VM; the hooks it defines as globals become the entity's hooks.
package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/orbitalgo/orbital/internal/entity"
	"github.com/orbitalgo/orbital/internal/input"
	"github.com/orbitalgo/orbital/internal/variant"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// APIVersion is exposed to scripts as the global API_VERSION.
const APIVersion = 1

// Hook names looked up as Lua globals. All are optional.
const (
	hookRegistration = "on_registration"
	hookUpdate       = "on_update"
	hookMessage      = "on_message"
	hookInput        = "on_input"
)

// Entity is a scripted entity. Single-goroutine access only (frame loop).
type Entity struct {
	entity.Base
	vm     *lua.LState
	path   string
	config entity.Configuration
	log    *zap.Logger
	closed bool

	// queued collects changes requested through the world table until the
	// next hook that can hand them to the world.
	queued []entity.WorldChange
}

// NewEntity loads the script at path. The script's global config table
// (tag, frequency, render) fills what cfg leaves empty; the tag falls back
// to the file name.
func NewEntity(path string, cfg entity.Configuration, log *zap.Logger) (*Entity, error) {
	if log == nil {
		log = zap.NewNop()
	}
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(APIVersion))

	e := &Entity{vm: vm, path: path, log: log.With(zap.String("script", path))}
	e.registerWorldAPI()

	if err := vm.DoFile(path); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load script %s: %w", path, err)
	}
	if err := e.configure(cfg); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load script %s: %w", path, err)
	}
	e.log.Debug("loaded lua script",
		zap.String("tag", e.config.Tag),
		zap.Stringer("frequency", e.config.UpdateFrequency),
	)
	return e, nil
}

func (e *Entity) configure(cfg entity.Configuration) error {
	if t, ok := e.vm.GetGlobal("config").(*lua.LTable); ok {
		if cfg.Tag == "" {
			cfg.Tag = lua.LVAsString(t.RawGetString("tag"))
		}
		if cfg.UpdateFrequency == entity.None {
			if s := lua.LVAsString(t.RawGetString("frequency")); s != "" {
				freq, err := entity.ParseFrequency(s)
				if err != nil {
					return err
				}
				cfg.UpdateFrequency = freq
			}
		}
		if !cfg.DoesRender {
			cfg.DoesRender = lua.LVAsBool(t.RawGetString("render"))
		}
	}
	if cfg.Tag == "" {
		cfg.Tag = strings.TrimSuffix(filepath.Base(e.path), filepath.Ext(e.path))
	}
	e.config = cfg
	return nil
}

// LoadDir loads every .lua file in dir as an entity, in directory order.
// A missing directory yields no entities.
func LoadDir(dir string, log *zap.Logger) ([]*Entity, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var out []*Entity
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		e, err := NewEntity(filepath.Join(dir, entry.Name()), entity.Configuration{}, log)
		if err != nil {
			for _, loaded := range out {
				loaded.Close()
			}
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (e *Entity) Configuration() entity.Configuration { return e.config }

// Close shuts the VM down.
func (e *Entity) Close() {
	if !e.closed {
		e.closed = true
		e.vm.Close()
	}
}

// Release is called when the world discards the entity.
func (e *Entity) Release() { e.Close() }

// call runs a global hook if the script defines one. It reports whether
// the hook ran without error and leaves nret results on the stack.
func (e *Entity) call(hook string, nret int, args ...lua.LValue) bool {
	fn := e.vm.GetGlobal(hook)
	if fn == lua.LNil {
		return false
	}
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    nret,
		Protect: true,
	}, args...); err != nil {
		e.log.Error("lua hook error", zap.String("hook", hook), zap.Error(err))
		return false
	}
	return true
}

// run calls hook and drops whatever it queued if it fails.
func (e *Entity) run(hook string, nret int, args ...lua.LValue) bool {
	before := len(e.queued)
	if !e.call(hook, nret, args...) {
		e.queued = e.queued[:before]
		return false
	}
	return true
}

// drain hands over the queued changes.
func (e *Entity) drain() []entity.WorldChange {
	out := e.queued
	e.queued = nil
	return out
}

func (e *Entity) OnRegistration(id ulid.ULID) entity.Registration {
	e.Base.OnRegistration(id)
	var reg entity.Registration
	if e.run(hookRegistration, 1, lua.LString(id.String())) {
		ret := e.vm.Get(-1)
		e.vm.Pop(1)
		if t, ok := ret.(*lua.LTable); ok {
			t.ForEach(func(_, v lua.LValue) {
				if s, ok := v.(lua.LString); ok {
					reg.Tags = append(reg.Tags, string(s))
				}
			})
		}
	}
	reg.Changes = e.drain()
	return reg
}

// OnUpdate returns the changes queued by on_update along with any queued
// earlier from on_message. A failing hook contributes no changes.
func (e *Entity) OnUpdate(dt float64) []entity.WorldChange {
	e.run(hookUpdate, 0, lua.LNumber(dt))
	return e.drain()
}

func (e *Entity) OnInputEvent(dt float64, ev input.Event) {
	t := e.vm.NewTable()
	t.RawSetString("kind", lua.LString(ev.Kind.String()))
	t.RawSetString("code", lua.LString(ev.Code))
	t.RawSetString("pressed", lua.LBool(ev.Pressed))
	t.RawSetString("value", lua.LNumber(ev.Value))
	e.run(hookInput, 0, lua.LNumber(dt), t)
}

func (e *Entity) OnMessage(msg variant.Message) {
	e.run(hookMessage, 0, messageToTable(e.vm, msg))
}
