// Package variant holds the loosely typed values carried by inter-entity messages.
package variant

import (
	"fmt"
	"strconv"
)

type Kind uint8

const (
	KindNil Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
)

// Variant is an immutable tagged value.
type Variant struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
}

func Bool(v bool) Variant     { return Variant{kind: KindBool, b: v} }
func Int(v int64) Variant     { return Variant{kind: KindInt, i: v} }
func Float(v float64) Variant { return Variant{kind: KindFloat, f: v} }
func String(v string) Variant { return Variant{kind: KindString, s: v} }

func (v Variant) Kind() Kind { return v.kind }

func (v Variant) AsBool() (bool, bool)     { return v.b, v.kind == KindBool }
func (v Variant) AsInt() (int64, bool)     { return v.i, v.kind == KindInt }
func (v Variant) AsString() (string, bool) { return v.s, v.kind == KindString }

// AsFloat also accepts integers.
func (v Variant) AsFloat() (float64, bool) {
	switch v.kind {
	case KindFloat:
		return v.f, true
	case KindInt:
		return float64(v.i), true
	}
	return 0, false
}

func (v Variant) String() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindString:
		return v.s
	}
	return "nil"
}

// Of converts a plain Go value. Unsupported types are an error.
func Of(x any) (Variant, error) {
	switch t := x.(type) {
	case nil:
		return Variant{}, nil
	case Variant:
		return t, nil
	case bool:
		return Bool(t), nil
	case int:
		return Int(int64(t)), nil
	case int32:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case float32:
		return Float(float64(t)), nil
	case float64:
		return Float(t), nil
	case string:
		return String(t), nil
	}
	return Variant{}, fmt.Errorf("variant: unsupported type %T", x)
}

// Message is the payload of a SendMessage change.
type Message map[string]Variant

// Clone returns an independent copy so senders cannot mutate a queued message.
func (m Message) Clone() Message {
	if m == nil {
		return nil
	}
	out := make(Message, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
