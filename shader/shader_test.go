package shader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/devblok/depot/resource"
)

func TestWords(t *testing.T) {
	words, err := Words([]byte{0x03, 0x02, 0x23, 0x07, 0x00, 0x00, 0x01, 0x00})
	if err != nil {
		t.Fatal(err)
	}
	if len(words) != 2 {
		t.Fatalf("expected 2 words, got %d", len(words))
	}
	// SPIR-V magic number, little endian.
	if words[0] != 0x07230203 {
		t.Errorf("unexpected first word %#x", words[0])
	}
	if words[1] != 0x00010000 {
		t.Errorf("unexpected second word %#x", words[1])
	}
}

func TestWordsBadSize(t *testing.T) {
	if _, err := Words([]byte{1, 2, 3}); !errors.Is(err, ErrBadWordSize) {
		t.Errorf("expected ErrBadWordSize, got %v", err)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		path string
		name string
		kind Kind
	}{
		{"shaders/default.vert.spv", "default", VertexKind},
		{"shaders/default.frag.spv", "default", FragmentKind},
		{"default.geom.spv", "default", UnknownKind},
		{"noext.spv", "noext", UnknownKind},
	}
	for _, tt := range tests {
		name, kind := classify(tt.path)
		if name != tt.name || kind != tt.kind {
			t.Errorf("classify(%q) = %q, %s; want %q, %s", tt.path, name, kind, tt.name, tt.kind)
		}
	}
}

func TestLoaderThroughManager(t *testing.T) {
	io := resource.NewMemIO()
	io.Add("shaders/default.vert.spv", []byte{0x03, 0x02, 0x23, 0x07})
	m := resource.New(io, resource.DefaultConfig())
	defer m.Close()
	m.RegisterLoader(Loader{})

	h := m.Request("shaders/default.vert.spv")
	defer h.Release()
	if _, err := h.Wait(context.Background()); err != nil {
		t.Fatal(err)
	}
	shader, err := resource.As[*Shader](h)
	if err != nil {
		t.Fatal(err)
	}
	if shader.Name != "default" || shader.Kind != VertexKind {
		t.Errorf("unexpected shader %q of kind %s", shader.Name, shader.Kind)
	}
	if len(shader.Words) != 1 {
		t.Errorf("expected 1 word, got %d", len(shader.Words))
	}
}

func TestLoaderRejectsTruncatedCode(t *testing.T) {
	io := resource.NewMemIO()
	io.Add("shaders/broken.frag.spv", []byte{0x03, 0x02, 0x23})
	m := resource.New(io, resource.DefaultConfig())
	defer m.Close()
	m.RegisterLoader(Loader{})

	h := m.Request("shaders/broken.frag.spv")
	defer h.Release()
	if _, err := h.Wait(context.Background()); !errors.Is(err, ErrBadWordSize) {
		t.Errorf("expected ErrBadWordSize, got %v", err)
	}
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	files := []string{"default.vert.spv", "default.frag.spv", "skipme.spv", "notes.txt"}
	for _, name := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte{0, 0, 0, 0}, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	shaders, kinds, err := Discover(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(shaders) != 2 || len(kinds) != 2 {
		t.Fatalf("expected 2 shaders, got %d", len(shaders))
	}
	for i, path := range shaders {
		_, kind := classify(path)
		if kind != kinds[i] {
			t.Errorf("kind mismatch for %s", path)
		}
	}
}
