package texture

import (
	"github.com/devblok/depot/cache"
	"github.com/devblok/depot/resource"
)

// Upload is a staged copy of a texture, laid out the way the device
// expects it. It is what the renderer hands to its transfer queue.
type Upload struct {
	Width  int
	Height int
	Stride int
	Pix    []uint8
}

// UploadCache derives staged uploads from texture handles. An upload
// is rebuilt only when the handle's version advances and is dropped
// after sitting unused for the cache lifetime, so a texture that left
// the screen stops costing memory without its source being unloaded.
//
// Get and Update belong to the render goroutine.
type UploadCache struct {
	entries  *cache.Temporary[uint64, *Upload]
	rowPitch int
}

// NewUploadCache creates an upload cache. Entries idle for lifetime
// seconds of Update time are evicted; rowPitch is the row alignment
// applied while staging, zero for tight packing.
func NewUploadCache(lifetime float64, rowPitch int) *UploadCache {
	return &UploadCache{
		entries:  cache.NewTemporary[uint64, *Upload](lifetime),
		rowPitch: rowPitch,
	}
}

// Get returns the staged upload for the texture behind handle,
// building or rebuilding it when needed. Handles that are not loaded
// textures fail with the handle's error.
func (u *UploadCache) Get(handle *resource.Handle) (*Upload, error) {
	tex, err := resource.As[*Texture](handle)
	if err != nil {
		return nil, err
	}
	return u.entries.GetOrInsert(handle.Key(), handle.Version(), func() (*Upload, error) {
		return stage(tex, u.rowPitch), nil
	})
}

// Update ages the cache by dt seconds, evicting idle uploads.
func (u *UploadCache) Update(dt float64) {
	u.entries.Update(dt)
}

// Remove drops the upload derived from handle, used when the source
// texture is unloaded.
func (u *UploadCache) Remove(handle *resource.Handle) {
	u.entries.Remove(handle.Key())
}

// Clear drops every staged upload.
func (u *UploadCache) Clear() {
	u.entries.Clear()
}

// AliveCount returns the number of staged uploads.
func (u *UploadCache) AliveCount() int {
	return u.entries.AliveCount()
}

// Stats exposes the underlying cache counters.
func (u *UploadCache) Stats() cache.Stats {
	return u.entries.Stats()
}

func stage(tex *Texture, rowPitch int) *Upload {
	stride := tex.Stride
	if rowPitch > stride {
		stride = rowPitch
	}
	pix := make([]uint8, stride*tex.Height)
	for row := 0; row < tex.Height; row++ {
		copy(pix[row*stride:], tex.Pix[row*tex.Stride:(row+1)*tex.Stride])
	}
	return &Upload{
		Width:  tex.Width,
		Height: tex.Height,
		Stride: stride,
		Pix:    pix,
	}
}
