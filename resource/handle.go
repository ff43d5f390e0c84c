package resource

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

var nextHandleKey atomic.Uint64

// Handle is a shared slot for one loaded resource. It is created by
// the Manager on first request for an identity and handed out to every
// caller that requests the same identity afterwards. All methods are
// safe for concurrent use.
//
// Holders that want the resource kept alive across Manager.Update
// sweeps must balance every Request with a Release.
type Handle struct {
	identity Identity
	key      uint64
	mgr      *Manager

	// eventMu is held across a commit and the broadcast it causes,
	// keeping per-handle event delivery in transition order.
	eventMu sync.Mutex

	mu      sync.Mutex
	status  Status
	payload any
	loadErr error
	version uint64
	prev    any
	typeTag string
	waiters []chan result

	refs atomic.Int64
}

func newHandle(identity Identity, mgr *Manager) *Handle {
	return &Handle{
		identity: identity,
		key:      nextHandleKey.Add(1),
		mgr:      mgr,
	}
}

// NewEmbeddedHandle creates a standalone handle in the Ok state
// holding the given payload. It is what built-in resources are made
// of; it never touches an IO provider and cannot be reloaded.
func NewEmbeddedHandle(name string, payload any) *Handle {
	h := newHandle(NewEmbedded(name), nil)
	h.status = StatusOk
	h.payload = payload
	h.version = 1
	return h
}

// Identity returns the identity the handle was created for.
func (h *Handle) Identity() Identity {
	return h.identity
}

// Key is a process-unique id for the handle, stable for its whole
// lifetime. Derived caches use it as their index.
func (h *Handle) Key() uint64 {
	return h.key
}

// Status returns a snapshot of the current state without blocking.
func (h *Handle) Status() Status {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status
}

// Version returns the modification counter. It increases on every
// state transition, so derived caches can detect staleness without
// comparing payloads.
func (h *Handle) Version() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.version
}

// Payload returns the loaded payload. It fails with ErrNotLoaded when
// the handle is not in the Ok state and with the load error when the
// last load failed.
func (h *Handle) Payload() (any, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	switch h.status {
	case StatusOk:
		return h.payload, nil
	case StatusLoadError:
		return nil, h.loadErr
	default:
		return nil, fmt.Errorf("%w: resource %s is %s", ErrNotLoaded, h.identity, h.status)
	}
}

// Err returns the load error of a handle in the LoadError state, nil
// otherwise.
func (h *Handle) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.status == StatusLoadError {
		return h.loadErr
	}
	return nil
}

// Wait blocks until the handle leaves the Pending state and returns
// the payload or the load error. It returns immediately when the
// handle is already terminal. Only the caller is suspended, never the
// workers running loads.
func (h *Handle) Wait(ctx context.Context) (any, error) {
	h.mu.Lock()
	switch h.status {
	case StatusOk:
		payload := h.payload
		h.mu.Unlock()
		return payload, nil
	case StatusLoadError:
		err := h.loadErr
		h.mu.Unlock()
		return nil, err
	case StatusUnloaded:
		h.mu.Unlock()
		return nil, fmt.Errorf("%w: resource %s was never requested", ErrNotLoaded, h.identity)
	}
	waiter := make(chan result, 1)
	h.waiters = append(h.waiters, waiter)
	h.mu.Unlock()

	select {
	case res := <-waiter:
		return res.payload, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Reload forces a terminal handle back to Pending and re-runs the
// loader that produced it. A reload already in flight is not queued a
// second time, the call fails with ErrAlreadyPending instead. Built-in
// resources fail with ErrEmbedded.
func (h *Handle) Reload() error {
	if h.identity.Kind == Embedded || h.mgr == nil {
		return fmt.Errorf("%w: %s", ErrEmbedded, h.identity)
	}
	h.mu.Lock()
	if h.status == StatusPending {
		h.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrAlreadyPending, h.identity)
	}
	if h.status == StatusOk {
		h.prev = h.payload
	}
	h.status = StatusPending
	h.payload = nil
	h.loadErr = nil
	h.version++
	h.mu.Unlock()

	return h.mgr.dispatchReload(h)
}

// Acquire registers an additional holder of the handle. Request does
// this for the caller, explicit Acquire is only needed when a handle
// is shared out-of-band.
func (h *Handle) Acquire() *Handle {
	h.refs.Add(1)
	return h
}

// Release drops one holder. Once the count reaches zero the manager
// is free to age the handle out of its table.
func (h *Handle) Release() {
	if h.refs.Add(-1) < 0 {
		h.refs.Store(0)
	}
}

// UseCount returns the number of external holders.
func (h *Handle) UseCount() int {
	return int(h.refs.Load())
}

// TypeName returns the type tag declared by the loader that produced
// the payload, falling back to the payload's dynamic type for handles
// built without one. "Unknown" when the handle is not Ok.
func (h *Handle) TypeName() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.status != StatusOk {
		return "Unknown"
	}
	if h.typeTag != "" {
		return h.typeTag
	}
	return fmt.Sprintf("%T", h.payload)
}

// setTypeTag records the loader-declared payload type, done by the
// manager when it resolves a loader for the handle.
func (h *Handle) setTypeTag(tag string) {
	h.mu.Lock()
	h.typeTag = tag
	h.mu.Unlock()
}

// markPending is the initial Unloaded to Pending transition made by
// the manager while the handle is still private to it.
func (h *Handle) markPending() {
	h.mu.Lock()
	h.status = StatusPending
	h.version++
	h.mu.Unlock()
}

// commit moves a pending handle to a terminal state, bumps the version
// and resolves the waiters in FIFO order. The mutex is never held
// across loader work, only around the swap itself.
func (h *Handle) commit(payload any, err error) {
	h.mu.Lock()
	if err != nil {
		h.status = StatusLoadError
		h.loadErr = err
		h.payload = nil
	} else {
		h.status = StatusOk
		h.payload = payload
		h.loadErr = nil
	}
	h.prev = nil
	h.version++
	waiters := h.waiters
	h.waiters = nil
	h.mu.Unlock()

	for _, w := range waiters {
		w <- result{payload: payload, err: err}
	}
}

// previous returns the payload held before the current reload started.
func (h *Handle) previous() (any, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.prev, h.prev != nil
}

// As extracts a typed payload from a handle. A payload of a different
// type fails with ErrTypeMismatch; the shared handle itself is never
// disturbed by a mismatched request.
func As[T any](h *Handle) (T, error) {
	var zero T
	payload, err := h.Payload()
	if err != nil {
		return zero, err
	}
	typed, ok := payload.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s holds %T", ErrTypeMismatch, h.Identity(), payload)
	}
	return typed, nil
}
