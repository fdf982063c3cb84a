package world

import (
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/orbitalgo/orbital/internal/camera"
	"github.com/orbitalgo/orbital/internal/core/event"
	"github.com/orbitalgo/orbital/internal/entity"
	"github.com/orbitalgo/orbital/internal/gpu"
	"github.com/orbitalgo/orbital/internal/gpu/memdevice"
	"github.com/orbitalgo/orbital/internal/input"
	"github.com/orbitalgo/orbital/internal/resource"
	"github.com/orbitalgo/orbital/internal/variant"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// tracker records every hook call and returns scripted changes.
type tracker struct {
	entity.Base
	config   entity.Configuration
	calls    []string
	messages []variant.Message
	reg      entity.Registration
	next     func(p *tracker) []entity.WorldChange

	model    *resource.Model
	released bool
}

func newTracker(tag string) *tracker {
	return &tracker{config: entity.Configuration{Tag: tag, UpdateFrequency: entity.EveryFrame}}
}

func (p *tracker) Configuration() entity.Configuration { return p.config }

func (p *tracker) OnRegistration(id ulid.ULID) entity.Registration {
	p.Base.OnRegistration(id)
	p.calls = append(p.calls, "register")
	return p.reg
}

func (p *tracker) OnUpdate(float64) []entity.WorldChange {
	p.calls = append(p.calls, "update")
	if p.next == nil {
		return nil
	}
	return p.next(p)
}

func (p *tracker) OnInputEvent(float64, input.Event) { p.calls = append(p.calls, "input") }

func (p *tracker) OnMessage(msg variant.Message) {
	p.calls = append(p.calls, "message")
	p.messages = append(p.messages, msg)
}

func (p *tracker) PrepareRender(r *resource.Realizer) error {
	p.calls = append(p.calls, "prepare")
	m, err := r.RealizeModel(resource.ModelDescriptor{Label: p.config.Tag, Mesh: resource.Triangle()})
	if err != nil {
		return err
	}
	p.model = m
	return nil
}

func (p *tracker) Meshes() []resource.MeshRef {
	if p.model == nil {
		return nil
	}
	return []resource.MeshRef{p.model.MeshRef()}
}

func (p *tracker) Release() {
	p.released = true
	if p.model != nil {
		p.model.Release()
		p.model = nil
	}
}

func (p *tracker) count(call string) int {
	n := 0
	for _, c := range p.calls {
		if c == call {
			n++
		}
	}
	return n
}

type fakeCamera struct {
	spawned []camera.Descriptor
	changes []camera.Change
}

func (f *fakeCamera) Spawn(desc camera.Descriptor, _ bool) error {
	f.spawned = append(f.spawned, desc)
	return nil
}

func (f *fakeCamera) ApplyChange(c camera.Change) error {
	f.changes = append(f.changes, c)
	return nil
}

func newTestRealizer() (*resource.Realizer, *memdevice.Device) {
	dev := memdevice.New()
	return resource.NewRealizer(dev, dev.Queue(), gpu.TextureFormatBGRA8UnormSrgb, nil), dev
}

func TestOverwriteKeepsOneEntityPerTag(t *testing.T) {
	w := New(Config{Policy: OverwriteOnDuplication}, nil)
	tags := []string{"a", "b", "a", "a", "c", "b", "a"}
	var first *tracker
	for i, tag := range tags {
		p := newTracker(tag)
		if i == 0 {
			first = p
		}
		if err := w.AddEntity(p); err != nil {
			t.Fatalf("AddEntity(%q): %v", tag, err)
		}
		seen := map[string]int{}
		for _, got := range w.Tags() {
			seen[got]++
			if seen[got] > 1 {
				t.Fatalf("after add %d: tag %q held %d times", i, got, seen[got])
			}
		}
	}
	if w.Len() != 3 {
		t.Errorf("Len = %d, want 3", w.Len())
	}
	if first.released {
		t.Error("overwritten entity released before the flush")
	}
	w.FlushReleaseQueue()
	if !first.released {
		t.Error("overwritten entity never released")
	}
}

func TestRegistrationPrecedesUpdate(t *testing.T) {
	w := New(Config{}, nil)
	child := newTracker("child")
	parent := newTracker("parent")
	parent.next = func(p *tracker) []entity.WorldChange {
		if p.count("update") == 1 {
			return []entity.WorldChange{entity.SpawnEntity{Entity: child}}
		}
		return nil
	}
	if err := w.AddEntity(parent); err != nil {
		t.Fatal(err)
	}

	events := []input.Event{{Kind: input.EventKey, Code: "KeyW", Pressed: true}}
	for frame := 0; frame < 2; frame++ {
		if err := w.CallUpdateable(entity.EveryFrame, 0.016, events); err != nil {
			t.Fatalf("frame %d: %v", frame, err)
		}
	}

	want := map[*tracker][]string{
		parent: {"register", "input", "update", "input", "update"},
		child:  {"register", "input", "update"},
	}
	for p, calls := range want {
		if len(p.calls) != len(calls) {
			t.Fatalf("%s calls = %v, want %v", p.config.Tag, p.calls, calls)
		}
		for i := range calls {
			if p.calls[i] != calls[i] {
				t.Fatalf("%s calls = %v, want %v", p.config.Tag, p.calls, calls)
			}
		}
	}
}

func TestInputReachesSelectedEntitiesBeforeUpdate(t *testing.T) {
	w := New(Config{}, nil)
	a := newTracker("a")
	b := newTracker("b")
	fixed := newTracker("fixed")
	fixed.config.UpdateFrequency = entity.Fixed(100 * time.Millisecond)
	for _, p := range []*tracker{a, fixed, b} {
		if err := w.AddEntity(p); err != nil {
			t.Fatal(err)
		}
	}

	events := []input.Event{
		{Kind: input.EventKey, Code: "KeyA", Pressed: true},
		{Kind: input.EventKey, Code: "KeyA"},
	}
	if err := w.CallUpdateable(entity.EveryFrame, 0.016, events); err != nil {
		t.Fatal(err)
	}
	want := []string{"register", "input", "input", "update"}
	for _, p := range []*tracker{a, b} {
		if !slices.Equal(p.calls, want) {
			t.Errorf("%s calls = %v, want %v", p.config.Tag, p.calls, want)
		}
	}
	if fixed.count("input") != 0 || fixed.count("update") != 0 {
		t.Errorf("fixed entity reached by a frame pass: %v", fixed.calls)
	}

	if err := w.CallUpdateable(entity.EveryFrame, 0.016, nil); err != nil {
		t.Fatal(err)
	}
	if a.count("input") != 2 || a.count("update") != 2 {
		t.Errorf("pass without events: %v", a.calls)
	}
}

func TestPrepareRenderIsIdempotent(t *testing.T) {
	r, dev := newTestRealizer()
	w := New(Config{}, nil)
	drawn := newTracker("drawn")
	drawn.config.DoesRender = true
	hidden := newTracker("hidden")
	_ = w.AddEntity(drawn)
	_ = w.AddEntity(hidden)

	for i := 0; i < 2; i++ {
		meshes, err := w.PrepareRenderAndCollectMeshes(r)
		if err != nil {
			t.Fatalf("pass %d: %v", i, err)
		}
		if len(meshes) != 1 {
			t.Fatalf("pass %d: %d meshes, want 1", i, len(meshes))
		}
	}
	if drawn.count("prepare") != 1 || hidden.count("prepare") != 0 {
		t.Errorf("prepare calls: drawn %d hidden %d", drawn.count("prepare"), hidden.count("prepare"))
	}
	if n := dev.Created(memdevice.KindRenderPipeline); n != 1 {
		t.Errorf("pipelines created = %d, want 1", n)
	}

	if !w.InvalidateRender("drawn") {
		t.Fatal("InvalidateRender missed")
	}
	_, _ = w.PrepareRenderAndCollectMeshes(r)
	if drawn.count("prepare") != 2 {
		t.Errorf("prepare after invalidate = %d, want 2", drawn.count("prepare"))
	}
}

func TestPrepareFailureIsNotRetried(t *testing.T) {
	r, dev := newTestRealizer()
	w := New(Config{}, nil)
	p := newTracker("broken")
	p.config.DoesRender = true
	_ = w.AddEntity(p)

	dev.FailNext(memdevice.KindRenderPipeline, errors.New("device lost"))
	if _, err := w.PrepareRenderAndCollectMeshes(r); err == nil {
		t.Fatal("expected realization error")
	}
	meshes, err := w.PrepareRenderAndCollectMeshes(r)
	if err != nil || len(meshes) != 0 {
		t.Errorf("second pass: %d meshes, err %v", len(meshes), err)
	}
	if p.count("prepare") != 1 {
		t.Errorf("prepare calls = %d, want 1", p.count("prepare"))
	}
	if n := dev.LiveTotal(); n != 0 {
		t.Errorf("failed preparation leaked %d objects", n)
	}
}

func TestChangesApplyAfterAllUpdates(t *testing.T) {
	w := New(Config{}, nil)
	a := newTracker("A")
	b := newTracker("B")
	a.next = func(*tracker) []entity.WorldChange {
		return []entity.WorldChange{entity.RemoveEntity{Tag: "B"}}
	}
	b.next = func(*tracker) []entity.WorldChange {
		return []entity.WorldChange{entity.SendMessage{
			Target:  a.ID(),
			Message: variant.Message{"from": variant.String("B")},
		}}
	}
	_ = w.AddEntity(a)
	_ = w.AddEntity(b)

	if err := w.CallUpdateable(entity.EveryFrame, 0.016, nil); err != nil {
		t.Fatal(err)
	}
	if b.count("update") != 1 {
		t.Error("B was not updated in the frame it was removed")
	}
	if len(a.messages) != 1 {
		t.Fatalf("A received %d messages, want 1", len(a.messages))
	}
	if s, _ := a.messages[0]["from"].AsString(); s != "B" {
		t.Errorf("message from = %q", s)
	}
	if w.HasEntity("B") {
		t.Error("B still registered")
	}

	_ = w.CallUpdateable(entity.EveryFrame, 0.016, nil)
	if b.count("update") != 1 {
		t.Error("removed entity updated again")
	}
	w.FlushReleaseQueue()
	if !b.released {
		t.Error("removed entity not released")
	}
}

func TestWarnOnDuplication(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	w := New(Config{Policy: WarnOnDuplication}, zap.New(core))
	first := newTracker("cam")
	second := newTracker("cam")

	if err := w.AddEntity(first); err != nil {
		t.Fatal(err)
	}
	if err := w.AddEntity(second); err != nil {
		t.Fatal(err)
	}
	if w.Len() != 2 {
		t.Errorf("Len = %d, want 2", w.Len())
	}
	if logs.FilterMessage("duplicate entity tag").Len() != 1 {
		t.Errorf("warnings = %v", logs.All())
	}
	got, ok := w.GetEntity("cam")
	if !ok || got != entity.Entity(first) {
		t.Error("GetEntity did not return the first inserted entity")
	}
}

func TestIgnoreAndPanicPolicies(t *testing.T) {
	t.Run("ignore skips registration", func(t *testing.T) {
		w := New(Config{Policy: IgnoreOnDuplication}, nil)
		_ = w.AddEntity(newTracker("x"))
		dup := newTracker("x")
		if err := w.AddEntity(dup); err != nil {
			t.Fatal(err)
		}
		if w.Len() != 1 || dup.count("register") != 0 {
			t.Errorf("Len = %d, register calls = %d", w.Len(), dup.count("register"))
		}
	})

	t.Run("panic is a fatal error", func(t *testing.T) {
		w := New(Config{Policy: PanicOnDuplication}, nil)
		_ = w.AddEntity(newTracker("x"))
		if err := w.AddEntity(newTracker("x")); !errors.Is(err, ErrDuplicateTagFatal) {
			t.Errorf("AddEntity err = %v", err)
		}

		spawner := newTracker("spawner")
		spawner.next = func(*tracker) []entity.WorldChange {
			return []entity.WorldChange{
				entity.SpawnEntity{Entity: newTracker("x")},
				entity.ClearColorAdjustment{Color: gpu.White},
			}
		}
		_ = w.AddEntity(spawner)
		err := w.CallUpdateable(entity.AnyFrequency, 0.016, nil)
		if !errors.Is(err, ErrDuplicateTagFatal) {
			t.Errorf("CallUpdateable err = %v", err)
		}
		if w.ClearColor() != gpu.White {
			t.Error("pass stopped at the fatal change")
		}
	})
}

func TestRegistrationTagsFollowPolicy(t *testing.T) {
	holders := func(w *World, tag string) int {
		n := 0
		for _, c := range w.containers {
			if c.HasTag(tag) {
				n++
			}
		}
		return n
	}
	withTags := func(tag string, extra ...string) *tracker {
		p := newTracker(tag)
		p.reg = entity.Registration{Tags: extra}
		return p
	}

	t.Run("overwrite", func(t *testing.T) {
		w := New(Config{Policy: OverwriteOnDuplication}, nil)
		first := newTracker("cam")
		_ = w.AddEntity(first)
		if err := w.AddEntity(withTags("other", "cam")); err != nil {
			t.Fatal(err)
		}
		if n := holders(w, "cam"); n != 1 || w.Len() != 1 {
			t.Fatalf("holders of cam = %d, Len = %d", n, w.Len())
		}
		if got, _ := w.GetEntity("cam"); got == entity.Entity(first) {
			t.Error("old holder still answers to cam")
		}
		w.FlushReleaseQueue()
		if !first.released {
			t.Error("overwritten holder not released")
		}
	})

	t.Run("ignore drops the tag", func(t *testing.T) {
		w := New(Config{Policy: IgnoreOnDuplication}, nil)
		first := newTracker("cam")
		_ = w.AddEntity(first)
		if err := w.AddEntity(withTags("other", "cam", "extra")); err != nil {
			t.Fatal(err)
		}
		if w.Len() != 2 || holders(w, "cam") != 1 || !w.HasEntity("extra") {
			t.Errorf("Len = %d, holders of cam = %d", w.Len(), holders(w, "cam"))
		}
		if got, _ := w.GetEntity("cam"); got != entity.Entity(first) {
			t.Error("cam no longer resolves to the first entity")
		}
	})

	t.Run("panic refuses the entity", func(t *testing.T) {
		w := New(Config{Policy: PanicOnDuplication}, nil)
		_ = w.AddEntity(newTracker("cam"))
		err := w.AddEntity(withTags("other", "cam"))
		if !errors.Is(err, ErrDuplicateTagFatal) {
			t.Fatalf("err = %v", err)
		}
		if w.Len() != 1 || w.HasEntity("other") {
			t.Errorf("refused entity registered, Len = %d", w.Len())
		}
	})

	t.Run("warn keeps both", func(t *testing.T) {
		core, logs := observer.New(zapcore.WarnLevel)
		w := New(Config{Policy: WarnOnDuplication}, zap.New(core))
		_ = w.AddEntity(newTracker("cam"))
		_ = w.AddEntity(withTags("other", "cam"))
		if holders(w, "cam") != 2 || logs.FilterMessage("duplicate entity tag").Len() != 1 {
			t.Errorf("holders = %d, warnings = %d", holders(w, "cam"), logs.Len())
		}
	})
}

func TestRegistrationChangesAndCamera(t *testing.T) {
	cam := &fakeCamera{}
	w := New(Config{Camera: cam}, nil)
	p := newTracker("viewer")
	p.reg = entity.Registration{
		Tags: []string{"player"},
		Changes: []entity.WorldChange{
			entity.SpawnCamera{Descriptor: camera.Descriptor{Identifier: "main"}, Activate: true},
			entity.Keep{},
		},
	}
	p.next = func(*tracker) []entity.WorldChange {
		return []entity.WorldChange{
			entity.Keep{},
			entity.CameraChange{Change: camera.Change{Position: &camera.PositionChange{Mode: camera.Offset}}},
			entity.CameraChange{},
		}
	}
	if err := w.AddEntity(p); err != nil {
		t.Fatal(err)
	}
	if len(cam.spawned) != 1 || cam.spawned[0].Identifier != "main" {
		t.Fatalf("spawned cameras = %v", cam.spawned)
	}
	if !w.HasEntity("player") {
		t.Error("registration tag not searchable")
	}
	if got, ok := w.EntityByID(p.ID()); !ok || got != entity.Entity(p) {
		t.Error("EntityByID missed the registered entity")
	}

	_ = w.CallUpdateable(entity.EveryFrame, 0.016, nil)
	if len(cam.changes) != 1 {
		t.Errorf("camera changes = %d, want 1", len(cam.changes))
	}
}

func TestDroppedMessageIsReported(t *testing.T) {
	bus := event.NewBus()
	w := New(Config{Bus: bus}, nil)
	ghost := ulid.Make()
	p := newTracker("sender")
	p.next = func(*tracker) []entity.WorldChange {
		return []entity.WorldChange{entity.SendMessage{Target: ghost, Message: variant.Message{"k": variant.Int(1)}}}
	}
	_ = w.AddEntity(p)
	if err := w.CallUpdateable(entity.EveryFrame, 0.016, nil); err != nil {
		t.Fatalf("dropped message surfaced as error: %v", err)
	}

	bus.SwapBuffers()
	dropped := event.Pending[event.MessageDropped](bus)
	if len(dropped) != 1 || dropped[0].Target != ghost || dropped[0].Keys != 1 {
		t.Errorf("dropped = %+v", dropped)
	}
	if spawned := event.Pending[event.EntitySpawned](bus); len(spawned) != 1 {
		t.Errorf("spawned notifications = %d", len(spawned))
	}
}

func TestRemoveEntityHandsOwnershipBack(t *testing.T) {
	w := New(Config{}, nil)
	p := newTracker("x")
	_ = w.AddEntity(p)

	got, ok := w.RemoveEntity("x")
	if !ok || got != entity.Entity(p) {
		t.Fatal("RemoveEntity missed")
	}
	w.FlushReleaseQueue()
	if p.released {
		t.Error("world released an entity it handed back")
	}
	if _, ok := w.RemoveEntity("x"); ok {
		t.Error("second RemoveEntity succeeded")
	}
}

func TestFrequencySelection(t *testing.T) {
	w := New(Config{}, nil)
	fixed := newTracker("fixed")
	fixed.config.UpdateFrequency = entity.Fixed(20e6)
	idle := newTracker("idle")
	idle.config.UpdateFrequency = entity.None
	every := newTracker("every")
	for _, p := range []*tracker{fixed, idle, every} {
		_ = w.AddEntity(p)
	}

	_ = w.CallUpdateable(entity.EveryFrame, 0.016, nil)
	_ = w.CallUpdateable(entity.AnyFrequency, 0.016, nil)
	if every.count("update") != 2 || fixed.count("update") != 1 || idle.count("update") != 0 {
		t.Errorf("updates: every %d fixed %d idle %d",
			every.count("update"), fixed.count("update"), idle.count("update"))
	}
}

func TestClose(t *testing.T) {
	r, dev := newTestRealizer()
	w := New(Config{}, nil)
	p := newTracker("x")
	p.config.DoesRender = true
	_ = w.AddEntity(p)
	_, _ = w.PrepareRenderAndCollectMeshes(r)

	w.Close()
	if w.Len() != 0 || !p.released || dev.LiveTotal() != 0 {
		t.Errorf("Len %d released %v live %d", w.Len(), p.released, dev.LiveTotal())
	}
}
