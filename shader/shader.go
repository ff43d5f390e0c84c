// Package shader loads compiled SPIR-V shaders. Shader files follow
// the name.kind.spv convention, where kind is vert or frag; only
// compiled shaders carry the .spv extension.
package shader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/devblok/depot/resource"
)

const shaderSuffix = ".spv"

// Kind represents the type of shader that's loaded
type Kind int

// Identifies shader objects with their types
const (
	VertexKind Kind = iota
	FragmentKind
	UnknownKind
)

// String implements fmt.Stringer
func (k Kind) String() string {
	switch k {
	case VertexKind:
		return "vertex"
	case FragmentKind:
		return "fragment"
	default:
		return "unknown"
	}
}

// package errors
var (
	ErrBadWordSize = errors.New("shader byte code is not a whole number of 32-bit words")
)

// Shader is a compiled shader module ready for pipeline creation.
type Shader struct {
	Name  string
	Kind  Kind
	Words []uint32
}

// Loader loads .spv files through the resource manager.
type Loader struct{}

// Extensions implements resource.Loader
func (Loader) Extensions() []string {
	return []string{"spv"}
}

// Type implements resource.Loader
func (Loader) Type() string {
	return "shader.Shader"
}

// Load implements resource.Loader
func (Loader) Load(ctx context.Context, id resource.Identity, io resource.IO, reload bool) (any, error) {
	data, err := io.ReadFile(id.Path)
	if err != nil {
		return nil, fmt.Errorf("reading shader %s: %w", id.Path, err)
	}
	words, err := Words(data)
	if err != nil {
		return nil, fmt.Errorf("shader %s: %w", id.Path, err)
	}
	name, kind := classify(id.Path)
	return &Shader{Name: name, Kind: kind, Words: words}, nil
}

// Words reslices shader byte code into the uint32 words that are used
// to submit shaders for processing.
func Words(data []byte) ([]uint32, error) {
	if len(data)%4 != 0 {
		return nil, ErrBadWordSize
	}
	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = uint32(data[4*i]) | uint32(data[4*i+1])<<8 | uint32(data[4*i+2])<<16 | uint32(data[4*i+3])<<24
	}
	return words, nil
}

// classify extracts the shader name and kind from a path following the
// name.kind.spv convention.
func classify(path string) (string, Kind) {
	base := strings.TrimSuffix(filepath.Base(path), shaderSuffix)
	nodes := strings.Split(base, ".")
	if len(nodes) != 2 {
		return base, UnknownKind
	}
	switch nodes[1] {
	case "vert":
		return nodes[0], VertexKind
	case "frag":
		return nodes[0], FragmentKind
	default:
		return nodes[0], UnknownKind
	}
}

// Discover walks dir for compiled shaders. It is important that the
// file name does not contain more than two dots: the first part is
// the name of the shader, the second its kind, and the .spv extension
// marks it as compiled. Files that don't follow the convention are
// skipped.
func Discover(dir string) ([]string, []Kind, error) {
	var (
		shaders []string
		kinds   []Kind
	)
	if err := filepath.Walk(dir, func(path string, f os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !strings.HasSuffix(f.Name(), shaderSuffix) {
			return nil
		}
		_, kind := classify(path)
		if kind == UnknownKind {
			return nil
		}
		shaders = append(shaders, path)
		kinds = append(kinds, kind)
		return nil
	}); err != nil {
		return nil, nil, err
	}
	return shaders, kinds, nil
}
