package shader

import (
	"strings"
	"testing"
)

func TestEmbeddedSources(t *testing.T) {
	names := []string{
		"brush.vert",
		"displacement.vert",
		"flat_brush.frag",
		"stripey_brush.frag",
		"flat_displacement.frag",
		"obj_model.vert",
		"flat_obj_model.frag",
	}
	for _, name := range names {
		src, err := Source(name)
		if err != nil {
			t.Fatalf("Source(%q): %v", name, err)
		}
		if !strings.HasPrefix(src, "#version 410 core") {
			t.Errorf("%s: missing version directive", name)
		}
	}
	for _, name := range []string{"brush.vert", "displacement.vert", "obj_model.vert"} {
		src, _ := Source(name)
		if !strings.Contains(src, "uViewProjection") {
			t.Errorf("%s does not use uViewProjection", name)
		}
	}
}

func TestMissingSource(t *testing.T) {
	if _, err := Source("missing.frag"); err == nil {
		t.Error("expected error for missing source")
	}
}
