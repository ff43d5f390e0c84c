package resource

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gobuffalo/packr"
)

// IO abstracts reading resource bytes, so the manager can run against
// a directory tree, an in-memory store or a packaged archive without
// code changes. Paths are always slash-separated and relative to
// whatever root the provider wraps.
type IO interface {
	// ReadFile returns the whole content of the file at path.
	ReadFile(path string) ([]byte, error)

	// Exists reports whether path can be read.
	Exists(path string) bool
}

// DirIO reads resources from a directory on the local filesystem.
type DirIO struct {
	Root string
}

// ReadFile implements IO
func (d DirIO) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(filepath.Join(d.Root, filepath.FromSlash(path)))
}

// Exists implements IO
func (d DirIO) Exists(path string) bool {
	_, err := os.Stat(filepath.Join(d.Root, filepath.FromSlash(path)))
	return err == nil
}

// MemIO keeps resources in memory. Its main use is testing, where it
// is the seam that keeps loader and manager tests off the filesystem.
type MemIO struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// NewMemIO creates an empty in-memory IO provider.
func NewMemIO() *MemIO {
	return &MemIO{files: make(map[string][]byte)}
}

// Add stores data under path, replacing any previous content.
func (m *MemIO) Add(path string, data []byte) {
	m.mu.Lock()
	m.files[normalizePath(path)] = data
	m.mu.Unlock()
}

// Remove deletes the file at path.
func (m *MemIO) Remove(path string) {
	m.mu.Lock()
	delete(m.files, normalizePath(path))
	m.mu.Unlock()
}

// ReadFile implements IO
func (m *MemIO) ReadFile(path string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.files[normalizePath(path)]
	if !ok {
		return nil, fmt.Errorf("no such file: %s", path)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Exists implements IO
func (m *MemIO) Exists(path string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.files[normalizePath(path)]
	return ok
}

// BoxIO serves resources from a packr box, so assets compiled into the
// binary go through the same loading path as files on disk.
type BoxIO struct {
	Box packr.Box
}

// ReadFile implements IO
func (b BoxIO) ReadFile(path string) ([]byte, error) {
	return b.Box.MustBytes(path)
}

// Exists implements IO
func (b BoxIO) Exists(path string) bool {
	return b.Box.Has(path)
}
