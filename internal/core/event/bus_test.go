package event

import (
	"testing"

	"github.com/oklog/ulid/v2"
)

type ping struct{ n int }

func TestBusDoubleBuffering(t *testing.T) {
	b := NewBus()
	var got []int
	Subscribe(b, func(p ping) { got = append(got, p.n) })

	Emit(b, ping{1})
	Emit(b, ping{2})
	b.DispatchAll()
	if len(got) != 0 {
		t.Fatalf("events visible before swap: %v", got)
	}

	b.SwapBuffers()
	Emit(b, ping{3})
	b.DispatchAll()
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("frame 1 dispatch = %v, want [1 2]", got)
	}
	if p := Pending[ping](b); len(p) != 2 {
		t.Errorf("pending = %v", p)
	}

	b.SwapBuffers()
	if p := Pending[ping](b); len(p) != 1 || p[0].n != 3 {
		t.Errorf("frame 2 pending = %v, want [{3}]", p)
	}
	b.SwapBuffers()
	if p := Pending[ping](b); len(p) != 0 {
		t.Errorf("stale events after swap: %v", p)
	}
}

func TestBusLifecycleEvents(t *testing.T) {
	b := NewBus()
	id := ulid.Make()
	Emit(b, EntitySpawned{ID: id, Tag: "cam"})
	Emit(b, MessageDropped{Target: id})
	b.SwapBuffers()

	if s := Pending[EntitySpawned](b); len(s) != 1 || s[0].Tag != "cam" {
		t.Errorf("spawned = %v", s)
	}
	if d := Pending[MessageDropped](b); len(d) != 1 || d[0].Target != id {
		t.Errorf("dropped = %v", d)
	}
}

func TestEmitOnNilBus(t *testing.T) {
	var b *Bus
	Emit(b, ping{1}) // must not panic
}
