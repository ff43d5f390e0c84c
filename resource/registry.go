package resource

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
)

// Registry is an ordered collection of loaders. Lookup by extension
// returns the first match in registration order, so the order in which
// loaders are registered is a priority.
type Registry struct {
	mu      sync.RWMutex
	loaders []Loader
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a loader. When a loader of the same concrete type is
// already present it is replaced in place, keeping its position in the
// lookup order. The previous instance is returned in that case.
//
// Registering a loader whose extensions are already claimed by a
// loader of a different type is legal but logged, since only the
// earlier registration will ever win the lookup.
func (r *Registry) Register(loader Loader) Loader {
	r.mu.Lock()
	defer r.mu.Unlock()

	kind := reflect.TypeOf(loader)
	for i, existing := range r.loaders {
		if reflect.TypeOf(existing) == kind {
			r.loaders[i] = loader
			return existing
		}
	}

	for _, ext := range loader.Extensions() {
		if shadow := r.forExtensionLocked(ext); shadow != nil {
			log.Warnf("loader %T claims extension %q already handled by %T, the earlier registration wins", loader, ext, shadow)
		}
	}
	r.loaders = append(r.loaders, loader)
	return nil
}

// ForExtension returns the first registered loader accepting the given
// extension, matched case-insensitively. Nil when no loader matches.
func (r *Registry) ForExtension(ext string) Loader {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.forExtensionLocked(ext)
}

func (r *Registry) forExtensionLocked(ext string) Loader {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, loader := range r.loaders {
		for _, candidate := range loader.Extensions() {
			if strings.EqualFold(candidate, ext) {
				return loader
			}
		}
	}
	return nil
}

// Supports reports whether some registered loader accepts the
// extension of the given identity.
func (r *Registry) Supports(id Identity) bool {
	return r.ForExtension(id.Extension()) != nil
}

// Len returns the number of registered loaders.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.loaders)
}

// Validate returns one error per extension claimed by loaders of two
// different concrete types. An empty result means the configuration is
// unambiguous.
func (r *Registry) Validate() []error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var errs []error
	claimed := make(map[string]Loader)
	for _, loader := range r.loaders {
		for _, ext := range loader.Extensions() {
			ext = strings.ToLower(ext)
			if first, ok := claimed[ext]; ok {
				errs = append(errs, fmt.Errorf("extension %q claimed by both %T and %T", ext, first, loader))
				continue
			}
			claimed[ext] = loader
		}
	}
	return errs
}
