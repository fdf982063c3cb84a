package memdevice

import (
	"errors"
	"testing"

	"github.com/orbitalgo/orbital/internal/gpu"
)

func TestCountsAndDoubleRelease(t *testing.T) {
	d := New()
	buf, err := d.CreateBuffer(&gpu.BufferDescriptor{Label: "b", Size: 8, Usage: gpu.BufferUsageVertex})
	if err != nil {
		t.Fatalf("CreateBuffer: %v", err)
	}
	if d.Live(KindBuffer) != 1 {
		t.Fatalf("live = %d", d.Live(KindBuffer))
	}
	buf.Release()
	buf.Release()
	if d.Live(KindBuffer) != 0 || d.Created(KindBuffer) != 1 {
		t.Errorf("live %d created %d", d.Live(KindBuffer), d.Created(KindBuffer))
	}
	if !buf.(*Buffer).Released() {
		t.Error("buffer not marked released")
	}
}

func TestFailNextAppliesOnce(t *testing.T) {
	d := New()
	boom := errors.New("out of memory")
	d.FailNext(KindSampler, boom)
	if _, err := d.CreateSampler(&gpu.SamplerDescriptor{}); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if _, err := d.CreateSampler(&gpu.SamplerDescriptor{}); err != nil {
		t.Fatalf("second create: %v", err)
	}
	if d.Created(KindSampler) != 1 {
		t.Errorf("created = %d", d.Created(KindSampler))
	}
}

func TestValidation(t *testing.T) {
	d := New()
	tests := []struct {
		name string
		fn   func() error
	}{
		{"zero buffer", func() error {
			_, err := d.CreateBuffer(&gpu.BufferDescriptor{Label: "z"})
			return err
		}},
		{"zero texture", func() error {
			_, err := d.CreateTexture(&gpu.TextureDescriptor{Format: gpu.TextureFormatRGBA8Unorm})
			return err
		}},
		{"undefined format", func() error {
			_, err := d.CreateTexture(&gpu.TextureDescriptor{Size: gpu.Extent3D{Width: 1, Height: 1}})
			return err
		}},
		{"shader without stages", func() error {
			_, err := d.CreateShaderModule(&gpu.ShaderModuleDescriptor{Source: "fn main() {}"})
			return err
		}},
		{"bind group without layout", func() error {
			_, err := d.CreateBindGroup(&gpu.BindGroupDescriptor{})
			return err
		}},
		{"pipeline without module", func() error {
			_, err := d.CreateRenderPipeline(&gpu.RenderPipelineDescriptor{})
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.fn() == nil {
				t.Error("expected an error")
			}
		})
	}
	if d.LiveTotal() != 0 {
		t.Errorf("failed creations left %d live objects", d.LiveTotal())
	}
}

func TestPipelineEntryPoints(t *testing.T) {
	d := New()
	sm, err := d.CreateShaderModule(&gpu.ShaderModuleDescriptor{
		Source: "@vertex fn vs() {} @fragment fn fs() {}",
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := d.CreateRenderPipeline(&gpu.RenderPipelineDescriptor{
		Module: sm, VertexEntryPoint: "vs", FragmentEntry: "missing",
	}); err == nil {
		t.Error("missing fragment entry accepted")
	}
	if _, err := d.CreateRenderPipeline(&gpu.RenderPipelineDescriptor{
		Module: sm, VertexEntryPoint: "vs", FragmentEntry: "fs",
	}); err != nil {
		t.Errorf("valid pipeline: %v", err)
	}
}

func TestQueueWrites(t *testing.T) {
	d := New()
	q := d.Queue()
	buf, _ := d.CreateBuffer(&gpu.BufferDescriptor{Size: 4})
	if err := q.WriteBuffer(buf, 2, []byte{1, 2}); err != nil {
		t.Fatalf("WriteBuffer: %v", err)
	}
	if got := buf.(*Buffer).Data; got[2] != 1 || got[3] != 2 {
		t.Errorf("data = %v", got)
	}
	if err := q.WriteBuffer(buf, 3, []byte{1, 2}); err == nil {
		t.Error("overflowing write accepted")
	}
	buf.Release()
	if err := q.WriteBuffer(buf, 0, []byte{1}); err == nil {
		t.Error("write to released buffer accepted")
	}

	tex, _ := d.CreateTexture(&gpu.TextureDescriptor{Size: gpu.Extent3D{Width: 1, Height: 1}, Format: gpu.TextureFormatRGBA8Unorm})
	layout := gpu.TextureDataLayout{BytesPerRow: 4, RowsPerImage: 1}
	if err := q.WriteTexture(tex, []byte{9, 9, 9, 9}, layout, tex.Size()); err != nil {
		t.Fatalf("WriteTexture: %v", err)
	}
	if got := d.Textures()[0]; got.Writes != 1 || got.Layout != layout || len(got.Data) != 4 {
		t.Errorf("texture = %+v", got)
	}
	if err := q.WriteTexture(tex, []byte{9, 9}, layout, tex.Size()); err == nil {
		t.Error("short texture write accepted")
	}
}
