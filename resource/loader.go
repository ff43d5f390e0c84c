package resource

import "context"

// Loader decodes the bytes of one file format into a typed payload.
// Implementations are registered with a Registry and picked by file
// extension. Load runs on a manager worker goroutine; it must compute
// its result from its own inputs and return it, committing to the
// shared handle is the manager's job.
type Loader interface {
	// Extensions lists the file extensions the loader accepts,
	// lower-case and without the leading dot.
	Extensions() []string

	// Type is a tag naming the payload type the loader produces.
	Type() string

	// Load reads the resource through the given IO provider and
	// decodes it. The reload flag tells the loader whether it runs
	// because of an explicit Reload, for formats that cache import
	// settings.
	Load(ctx context.Context, id Identity, io IO, reload bool) (any, error)
}
