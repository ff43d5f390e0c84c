package model

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"strings"

	glm "github.com/go-gl/mathgl/mgl32"

	"github.com/devblok/depot/resource"
)

// package errors
var (
	ErrNoGeometry = errors.New("collada file contains no geometry")
	ErrNoSource   = errors.New("source type not found")
)

// Vertex is a model vertex
type Vertex struct {
	Pos   glm.Vec3
	Color glm.Vec4
}

// Mesh is an imported model, loaded and held in memory. Vertices are
// laid out to match the renderer's descriptors exactly.
type Mesh struct {
	Name     string
	Vertices []Vertex
}

// Loader imports collada files through the resource manager.
type Loader struct{}

// Extensions implements resource.Loader
func (Loader) Extensions() []string {
	return []string{"dae"}
}

// Type implements resource.Loader
func (Loader) Type() string {
	return "model.Mesh"
}

// Load implements resource.Loader
func (Loader) Load(ctx context.Context, id resource.Identity, io resource.IO, reload bool) (any, error) {
	data, err := io.ReadFile(id.Path)
	if err != nil {
		return nil, fmt.Errorf("reading model %s: %w", id.Path, err)
	}
	mesh, err := ImportColladaMesh(data)
	if err != nil {
		return nil, fmt.Errorf("importing model %s: %w", id.Path, err)
	}
	return mesh, nil
}

// ImportColladaMesh reads given file contents and converts the Collada
// object to the engine's internal mesh.
func ImportColladaMesh(fileContents []byte) (*Mesh, error) {
	var colladaModel Collada
	if err := xml.Unmarshal(fileContents, &colladaModel); err != nil {
		return nil, err
	}
	if len(colladaModel.Geometries) == 0 {
		return nil, ErrNoGeometry
	}

	geometry := colladaModel.Geometries[0]
	source, err := findSource(geometry.Mesh.Source, "positions")
	if err != nil {
		return nil, err
	}

	var vertices []Vertex
	stride := 6
	mesh := geometry.Mesh
	for idx := 0; idx < len(mesh.Triangles.Index)/stride; idx++ {
		var vert Vertex
		indices := mesh.Triangles.Index[stride*idx : (stride*idx)+stride]
		for _, index := range indices[:3] {
			if index < 0 || index >= len(source.Floats.Data) {
				return nil, fmt.Errorf("vertex index %d out of range", index)
			}
		}
		vert.Pos = glm.Vec3{
			source.Floats.Data[indices[0]],
			source.Floats.Data[indices[1]],
			source.Floats.Data[indices[2]],
			// Other 3 elements is a Vec3 for the vertice's normal
		}
		vert.Color = glm.Vec4{1.0, 1.0, 0.0, 1.0}
		vertices = append(vertices, vert)
	}

	return &Mesh{
		Name:     geometry.Name,
		Vertices: vertices,
	}, nil
}

func findSource(sources []Source, dataType string) (Source, error) {
	for _, s := range sources {
		if strings.HasSuffix(s.ID, fmt.Sprintf("-%s", dataType)) {
			return s, nil
		}
	}
	return Source{}, ErrNoSource
}
