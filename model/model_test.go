package model

import (
	"context"
	"errors"
	"testing"

	"github.com/devblok/depot/resource"
)

const triangleDae = `<?xml version="1.0" encoding="utf-8"?>
<COLLADA xmlns="http://www.collada.org/2005/11/COLLADASchema" version="1.4.1">
  <library_geometries>
    <geometry id="Triangle-mesh" name="Triangle">
      <mesh>
        <source id="Triangle-mesh-positions">
          <float_array id="Triangle-mesh-positions-array" count="9">0 0 0 1 0 0 0 1 0</float_array>
        </source>
        <source id="Triangle-mesh-normals">
          <float_array id="Triangle-mesh-normals-array" count="3">0 0 1</float_array>
        </source>
        <triangles count="1">
          <p>0 1 2 0 0 0 3 4 5 0 0 0 6 7 8 0 0 0</p>
        </triangles>
      </mesh>
    </geometry>
  </library_geometries>
</COLLADA>`

func TestImportColladaMesh(t *testing.T) {
	mesh, err := ImportColladaMesh([]byte(triangleDae))
	if err != nil {
		t.Fatal(err)
	}
	if mesh.Name != "Triangle" {
		t.Errorf("unexpected mesh name %q", mesh.Name)
	}
	if len(mesh.Vertices) != 3 {
		t.Fatalf("expected 3 vertices, got %d", len(mesh.Vertices))
	}
	second := mesh.Vertices[1]
	if second.Pos.X() != 1 || second.Pos.Y() != 0 || second.Pos.Z() != 0 {
		t.Errorf("unexpected position %v", second.Pos)
	}
	if second.Color.W() != 1 {
		t.Errorf("unexpected color %v", second.Color)
	}
}

func TestImportNoGeometry(t *testing.T) {
	empty := `<COLLADA><library_geometries></library_geometries></COLLADA>`
	if _, err := ImportColladaMesh([]byte(empty)); !errors.Is(err, ErrNoGeometry) {
		t.Errorf("expected ErrNoGeometry, got %v", err)
	}
}

func TestImportNoPositions(t *testing.T) {
	noPositions := `<COLLADA><library_geometries><geometry id="g" name="g">
	  <mesh>
	    <source id="g-normals"><float_array id="a" count="3">0 0 1</float_array></source>
	    <triangles count="1"><p>0 1 2 0 0 0</p></triangles>
	  </mesh>
	</geometry></library_geometries></COLLADA>`
	if _, err := ImportColladaMesh([]byte(noPositions)); !errors.Is(err, ErrNoSource) {
		t.Errorf("expected ErrNoSource, got %v", err)
	}
}

func TestImportIndexOutOfRange(t *testing.T) {
	corrupt := `<COLLADA><library_geometries><geometry id="g" name="g">
	  <mesh>
	    <source id="g-positions"><float_array id="a" count="3">0 0 0</float_array></source>
	    <triangles count="1"><p>0 1 99 0 0 0</p></triangles>
	  </mesh>
	</geometry></library_geometries></COLLADA>`
	if _, err := ImportColladaMesh([]byte(corrupt)); err == nil {
		t.Error("corrupt index data imported without error")
	}
}

func TestImportMalformedXML(t *testing.T) {
	if _, err := ImportColladaMesh([]byte("<COLLADA>")); err == nil {
		t.Error("malformed document imported without error")
	}
}

func TestLoaderThroughManager(t *testing.T) {
	io := resource.NewMemIO()
	io.Add("models/triangle.dae", []byte(triangleDae))
	m := resource.New(io, resource.DefaultConfig())
	defer m.Close()
	m.RegisterLoader(Loader{})

	h := m.Request("models/triangle.dae")
	defer h.Release()
	if _, err := h.Wait(context.Background()); err != nil {
		t.Fatal(err)
	}
	mesh, err := resource.As[*Mesh](h)
	if err != nil {
		t.Fatal(err)
	}
	if len(mesh.Vertices) != 3 {
		t.Errorf("expected 3 vertices, got %d", len(mesh.Vertices))
	}
}

func TestLoaderMissingFile(t *testing.T) {
	m := resource.New(resource.NewMemIO(), resource.DefaultConfig())
	defer m.Close()
	m.RegisterLoader(Loader{})

	h := m.Request("models/absent.dae")
	defer h.Release()
	if _, err := h.Wait(context.Background()); err == nil {
		t.Error("missing file loaded without error")
	}
}
