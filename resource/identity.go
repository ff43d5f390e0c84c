// Package resource implements the asset loading core of the engine.
// It maps resource identities to shared, reference-counted handles,
// runs format loaders in the background and notifies subscribers of
// state changes. Derived artifacts (GPU uploads and the like) are kept
// in separate caches, see the cache package.
package resource

import (
	"path/filepath"
	"strings"
)

// Kind tells apart resources baked into the binary from resources
// loaded from an external source.
type Kind int

// Resource kinds.
const (
	// External resources are loaded from a path through an IO provider.
	External Kind = iota

	// Embedded resources have no backing path. Their name is their
	// identity and their data ships with the binary.
	Embedded
)

// String implements fmt.Stringer
func (k Kind) String() string {
	if k == Embedded {
		return "Embedded"
	}
	return "External"
}

// Identity is the stable key of one loadable resource, independent of
// whether it is currently loaded. Identities are immutable values and
// can be compared with ==.
type Identity struct {
	Kind Kind
	Path string
}

// NewExternal creates an identity for a resource at the given path.
// The path is normalized, so two spellings of the same file produce
// equal identities.
func NewExternal(path string) Identity {
	return Identity{Kind: External, Path: normalizePath(path)}
}

// NewEmbedded creates an identity for a built-in resource with the
// given name.
func NewEmbedded(name string) Identity {
	return Identity{Kind: Embedded, Path: name}
}

// Extension returns the lower-case file extension of the identity's
// path without the leading dot. Empty when there is none.
func (id Identity) Extension() string {
	ext := filepath.Ext(id.Path)
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// String implements fmt.Stringer
func (id Identity) String() string {
	return id.Kind.String() + ":" + id.Path
}

func normalizePath(path string) string {
	return filepath.ToSlash(filepath.Clean(path))
}
