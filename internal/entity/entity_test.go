package entity

import (
	"errors"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/orbitalgo/orbital/internal/resource"
)

type stubEntity struct {
	Base
	config   Configuration
	prepares int
	failWith error
	released bool
}

func (s *stubEntity) Configuration() Configuration { return s.config }

func (s *stubEntity) PrepareRender(*resource.Realizer) error {
	s.prepares++
	return s.failWith
}

func (s *stubEntity) Meshes() []resource.MeshRef { return []resource.MeshRef{{}} }

func (s *stubEntity) Release() { s.released = true }

func TestFrequencySelects(t *testing.T) {
	tests := []struct {
		name     string
		freq     UpdateFrequency
		selector UpdateFrequency
		want     bool
	}{
		{"every frame by every frame", EveryFrame, EveryFrame, true},
		{"every frame by any", EveryFrame, AnyFrequency, true},
		{"fixed by same rate", Fixed(20 * time.Millisecond), Fixed(20 * time.Millisecond), true},
		{"fixed by other rate", Fixed(20 * time.Millisecond), Fixed(50 * time.Millisecond), false},
		{"fixed by every frame", Fixed(time.Second), EveryFrame, false},
		{"none by any", None, AnyFrequency, false},
		{"none by none", None, None, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.freq.Selects(tt.selector); got != tt.want {
				t.Errorf("Selects = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseFrequency(t *testing.T) {
	for _, s := range []string{"none", "every_frame", "fixed:50ms"} {
		f, err := ParseFrequency(s)
		if err != nil {
			t.Fatalf("ParseFrequency(%q): %v", s, err)
		}
		if f.String() != s {
			t.Errorf("round trip %q -> %q", s, f.String())
		}
	}
	for _, s := range []string{"fixed:", "fixed:-1s", "sometimes"} {
		if _, err := ParseFrequency(s); err == nil {
			t.Errorf("ParseFrequency(%q) succeeded", s)
		}
	}
}

func TestContainerPrepareOnce(t *testing.T) {
	e := &stubEntity{config: Configuration{Tag: "a", DoesRender: true}}
	c := NewContainer(e, ulid.Make())

	if len(c.Meshes()) != 0 {
		t.Error("unprepared container exposed meshes")
	}
	for i := 0; i < 3; i++ {
		if err := c.Prepare(nil); err != nil {
			t.Fatalf("Prepare: %v", err)
		}
	}
	if e.prepares != 1 {
		t.Errorf("PrepareRender calls = %d, want 1", e.prepares)
	}
	if len(c.Meshes()) != 1 {
		t.Error("prepared container hid its meshes")
	}

	c.Invalidate()
	_ = c.Prepare(nil)
	if e.prepares != 2 {
		t.Errorf("PrepareRender calls after Invalidate = %d, want 2", e.prepares)
	}
}

func TestContainerRemembersFailure(t *testing.T) {
	boom := errors.New("boom")
	e := &stubEntity{config: Configuration{Tag: "a", DoesRender: true}, failWith: boom}
	c := NewContainer(e, ulid.Make())

	if err := c.Prepare(nil); !errors.Is(err, boom) {
		t.Fatalf("Prepare err = %v", err)
	}
	if err := c.Prepare(nil); err != nil {
		t.Errorf("second Prepare retried: %v", err)
	}
	if e.prepares != 1 || !errors.Is(c.PrepareErr(), boom) {
		t.Errorf("prepares = %d, PrepareErr = %v", e.prepares, c.PrepareErr())
	}
}

func TestContainerTagsAndRelease(t *testing.T) {
	e := &stubEntity{config: Configuration{Tag: "main"}}
	c := NewContainer(e, ulid.Make())
	c.AddTags("alias", "main", "", "alias")

	if got := c.Tags(); len(got) != 2 || got[0] != "main" || got[1] != "alias" {
		t.Errorf("Tags = %v", got)
	}
	if !c.HasTag("alias") || c.HasTag("other") {
		t.Error("HasTag mismatch")
	}
	c.Release()
	if !e.released {
		t.Error("Release did not reach the entity")
	}
}
