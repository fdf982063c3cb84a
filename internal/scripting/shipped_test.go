package scripting

import (
	"path/filepath"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/orbitalgo/orbital/internal/entity"
)

func TestShippedScripts(t *testing.T) {
	scripts, err := LoadDir(filepath.Join("..", "..", "scripts"), nil)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if len(scripts) == 0 {
		t.Fatal("no scripts loaded")
	}
	for _, s := range scripts {
		defer s.Close()
	}

	spinner := scripts[0]
	if got := spinner.Configuration(); got.Tag != "spinner" || got.UpdateFrequency != entity.EveryFrame {
		t.Fatalf("config = %+v", got)
	}
	reg := spinner.OnRegistration(ulid.Make())
	if len(reg.Tags) != 1 || reg.Tags[0] != "scripted" {
		t.Errorf("tags = %v", reg.Tags)
	}
	if changes := spinner.OnUpdate(1); len(changes) != 0 {
		t.Errorf("changes before two seconds = %v", changes)
	}
	changes := spinner.OnUpdate(1.5)
	if len(changes) != 1 {
		t.Fatalf("changes = %v", changes)
	}
	if _, ok := changes[0].(entity.CameraChange); !ok {
		t.Errorf("change = %T", changes[0])
	}
}
