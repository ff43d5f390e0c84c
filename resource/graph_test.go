package resource_test

import (
	"testing"

	"github.com/devblok/depot/resource"
)

// material references textures, a mesh references materials. Both are
// stand-ins for real payload types in these tests.
type material struct {
	textures []*resource.Handle
}

func (m *material) ResourceDependencies() []*resource.Handle {
	return m.textures
}

func TestBuildDependencyGraphSnapshot(t *testing.T) {
	texA := resource.NewEmbeddedHandle("textures/a", "A")
	texB := resource.NewEmbeddedHandle("textures/b", "B")
	mat := resource.NewEmbeddedHandle("materials/wall", &material{
		textures: []*resource.Handle{texA, texB},
	})

	root := resource.BuildDependencyGraph(mat)
	if root.Identity != resource.NewEmbedded("materials/wall") {
		t.Errorf("unexpected root identity %s", root.Identity)
	}
	if root.Status != resource.StatusOk {
		t.Errorf("unexpected root status %s", root.Status)
	}
	if len(root.Children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(root.Children))
	}
	if root.Children[0].Identity != resource.NewEmbedded("textures/a") {
		t.Errorf("children out of order: %s", root.Children[0].Identity)
	}
	if len(root.Children[0].Children) != 0 {
		t.Error("leaf node has children")
	}
}

func TestBuildDependencyGraphSharedDependency(t *testing.T) {
	shared := resource.NewEmbeddedHandle("textures/shared", "S")
	matA := resource.NewEmbeddedHandle("materials/a", &material{textures: []*resource.Handle{shared}})
	matB := resource.NewEmbeddedHandle("materials/b", &material{textures: []*resource.Handle{shared}})
	root := resource.NewEmbeddedHandle("materials/root", &material{
		textures: []*resource.Handle{matA, matB},
	})

	node := resource.BuildDependencyGraph(root)
	if len(node.Children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(node.Children))
	}
	// The second occurrence of the shared texture is recorded but not
	// descended into again.
	if len(node.Children[0].Children) != 1 {
		t.Errorf("first branch missing shared dependency")
	}
	if len(node.Children[1].Children) != 1 {
		t.Errorf("second branch missing shared dependency")
	}
}

func TestBuildDependencyGraphTerminatesOnCycle(t *testing.T) {
	matA := &material{}
	matB := &material{}
	handleA := resource.NewEmbeddedHandle("materials/a", matA)
	handleB := resource.NewEmbeddedHandle("materials/b", matB)
	matA.textures = []*resource.Handle{handleB}
	matB.textures = []*resource.Handle{handleA}

	node := resource.BuildDependencyGraph(handleA)
	if len(node.Children) != 1 {
		t.Fatalf("expected 1 child, got %d", len(node.Children))
	}
	back := node.Children[0].Children
	if len(back) != 1 {
		t.Fatalf("expected the cycle edge to be recorded, got %d children", len(back))
	}
	if len(back[0].Children) != 0 {
		t.Error("cycle was descended into twice")
	}
}

func TestBuildDependencyGraphUnloadedRoot(t *testing.T) {
	h := resource.NewEmbeddedHandle("materials/solo", 7)
	node := resource.BuildDependencyGraph(h)
	if len(node.Children) != 0 {
		t.Error("payload without dependencies produced children")
	}
	if node.Type != "int" {
		t.Errorf("unexpected type name %q", node.Type)
	}
}
