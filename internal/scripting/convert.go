package scripting

import (
	"math"

	"github.com/orbitalgo/orbital/internal/variant"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// tableToMessage keeps the string-keyed scalar entries of t. Integral
// numbers become Int variants.
func tableToMessage(t *lua.LTable, log *zap.Logger) variant.Message {
	msg := make(variant.Message)
	t.ForEach(func(k, v lua.LValue) {
		key, ok := k.(lua.LString)
		if !ok {
			return
		}
		switch val := v.(type) {
		case lua.LBool:
			msg[string(key)] = variant.Bool(bool(val))
		case lua.LString:
			msg[string(key)] = variant.String(string(val))
		case lua.LNumber:
			f := float64(val)
			if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
				msg[string(key)] = variant.Int(int64(f))
			} else {
				msg[string(key)] = variant.Float(f)
			}
		default:
			log.Debug("message entry skipped",
				zap.String("key", string(key)),
				zap.String("type", v.Type().String()),
			)
		}
	})
	return msg
}

func messageToTable(L *lua.LState, msg variant.Message) *lua.LTable {
	t := L.NewTable()
	for k, v := range msg {
		t.RawSetString(k, variantToLua(v))
	}
	return t
}

func variantToLua(v variant.Variant) lua.LValue {
	switch v.Kind() {
	case variant.KindBool:
		b, _ := v.AsBool()
		return lua.LBool(b)
	case variant.KindInt, variant.KindFloat:
		f, _ := v.AsFloat()
		return lua.LNumber(f)
	case variant.KindString:
		s, _ := v.AsString()
		return lua.LString(s)
	}
	return lua.LNil
}
