package scripting

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oklog/ulid/v2"
	"github.com/orbitalgo/orbital/internal/camera"
	"github.com/orbitalgo/orbital/internal/entity"
	"github.com/orbitalgo/orbital/internal/gpu"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// registerWorldAPI installs the global world table. Every function queues
// a change; nothing touches the world directly.
func (e *Entity) registerWorldAPI() {
	t := e.vm.NewTable()
	e.vm.SetFuncs(t, map[string]lua.LGFunction{
		"clear_color": e.luaClearColor,
		"remove":      e.luaRemove,
		"send":        e.luaSend,
		"move_camera": e.luaMoveCamera,
		"self_id":     e.luaSelfID,
		"log":         e.luaLog,
	})
	e.vm.SetGlobal("world", t)
}

// world.clear_color(r, g, b [, a])
func (e *Entity) luaClearColor(L *lua.LState) int {
	c := gpu.Color{
		R: float64(L.CheckNumber(1)),
		G: float64(L.CheckNumber(2)),
		B: float64(L.CheckNumber(3)),
		A: float64(L.OptNumber(4, 1)),
	}
	e.queued = append(e.queued, entity.ClearColorAdjustment{Color: c})
	return 0
}

// world.remove(tag)
func (e *Entity) luaRemove(L *lua.LState) int {
	e.queued = append(e.queued, entity.RemoveEntity{Tag: L.CheckString(1)})
	return 0
}

// world.send(id, table)
func (e *Entity) luaSend(L *lua.LState) int {
	id, err := ulid.Parse(L.CheckString(1))
	if err != nil {
		L.ArgError(1, "invalid entity id: "+err.Error())
		return 0
	}
	msg := tableToMessage(L.CheckTable(2), e.log)
	e.queued = append(e.queued, entity.SendMessage{Target: id, Message: msg})
	return 0
}

// world.move_camera(target, x, y, z [, mode])
func (e *Entity) luaMoveCamera(L *lua.LState) int {
	mode, ok := camera.ParsePositionMode(L.OptString(5, camera.Offset.String()))
	if !ok {
		L.ArgError(5, "unknown position mode")
		return 0
	}
	v := mgl32.Vec3{
		float32(L.CheckNumber(2)),
		float32(L.CheckNumber(3)),
		float32(L.CheckNumber(4)),
	}
	e.queued = append(e.queued, entity.CameraChange{Change: camera.Change{
		Target:   L.CheckString(1),
		Position: &camera.PositionChange{Vector: v, Mode: mode},
	}})
	return 0
}

// world.self_id() -> string
func (e *Entity) luaSelfID(L *lua.LState) int {
	L.Push(lua.LString(e.ID().String()))
	return 1
}

// world.log(msg)
func (e *Entity) luaLog(L *lua.LState) int {
	e.log.Info(L.CheckString(1), zap.String("tag", e.config.Tag))
	return 0
}
