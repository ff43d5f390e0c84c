package resource_test

import (
	"context"
	"testing"

	"github.com/devblok/depot/resource"
)

type pngLoader struct{ tag string }

func (pngLoader) Extensions() []string { return []string{"png"} }
func (pngLoader) Type() string         { return "test.Image" }
func (l pngLoader) Load(ctx context.Context, id resource.Identity, io resource.IO, reload bool) (any, error) {
	return l.tag, nil
}

type rivalPngLoader struct{}

func (rivalPngLoader) Extensions() []string { return []string{"PNG", "tga"} }
func (rivalPngLoader) Type() string         { return "test.Image" }
func (rivalPngLoader) Load(ctx context.Context, id resource.Identity, io resource.IO, reload bool) (any, error) {
	return nil, nil
}

func TestRegistryRegisterReplacesSameKind(t *testing.T) {
	r := resource.NewRegistry()

	if prev := r.Register(pngLoader{tag: "first"}); prev != nil {
		t.Errorf("expected no previous loader, got %v", prev)
	}
	prev := r.Register(pngLoader{tag: "second"})
	if prev == nil {
		t.Fatal("expected the first registration back")
	}
	if prev.(pngLoader).tag != "first" {
		t.Errorf("wrong loader replaced: %v", prev)
	}
	if r.Len() != 1 {
		t.Errorf("expected 1 loader, got %d", r.Len())
	}
}

func TestRegistryFirstMatchWins(t *testing.T) {
	r := resource.NewRegistry()
	r.Register(pngLoader{tag: "original"})
	r.Register(rivalPngLoader{})

	loader := r.ForExtension("png")
	if _, ok := loader.(pngLoader); !ok {
		t.Errorf("expected the earlier registration to win, got %T", loader)
	}
}

func TestRegistryCaseInsensitiveLookup(t *testing.T) {
	r := resource.NewRegistry()
	r.Register(pngLoader{})

	for _, ext := range []string{"png", "PNG", "Png", ".png"} {
		if r.ForExtension(ext) == nil {
			t.Errorf("no loader found for %q", ext)
		}
	}
	if r.ForExtension("jpg") != nil {
		t.Error("found a loader for an unregistered extension")
	}
}

func TestRegistrySupports(t *testing.T) {
	r := resource.NewRegistry()
	r.Register(pngLoader{})

	if !r.Supports(resource.NewExternal("dir/image.PNG")) {
		t.Error("expected png identity to be supported")
	}
	if r.Supports(resource.NewExternal("dir/sound.ogg")) {
		t.Error("unexpected support for ogg")
	}
}

func TestRegistryValidateReportsAmbiguity(t *testing.T) {
	r := resource.NewRegistry()
	r.Register(pngLoader{})
	if errs := r.Validate(); len(errs) != 0 {
		t.Errorf("unexpected validation errors: %v", errs)
	}

	r.Register(rivalPngLoader{})
	errs := r.Validate()
	if len(errs) != 1 {
		t.Fatalf("expected exactly one ambiguity, got %v", errs)
	}
}
