package resource

import (
	"context"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
)

// Manager owns the identity to handle table and runs loads in the
// background. It is the single source of truth for whether an identity
// already has a handle: two requests for the same identity always
// yield the same handle, and at most one load is ever in flight per
// identity.
type Manager struct {
	io        IO
	registry  *Registry
	events    *Broadcaster
	lifetime  float64
	tasks     chan task
	wg        sync.WaitGroup
	sends     sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once

	mu      sync.Mutex
	table   map[Identity]*tableEntry
	builtIn map[Identity]*Handle
	closed  bool
}

type tableEntry struct {
	handle     *Handle
	timeToLive float64
}

type task struct {
	handle *Handle
	loader Loader
	reload bool
}

// New creates a Manager reading through the given IO provider and
// starts its load workers.
func New(provider IO, cfg Config) *Manager {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultConfig().Workers
	}
	if cfg.ResourceLifetime <= 0 {
		cfg.ResourceLifetime = DefaultConfig().ResourceLifetime
	}
	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		io:       provider,
		registry: NewRegistry(),
		events:   NewBroadcaster(cfg.EventBuffer),
		lifetime: cfg.ResourceLifetime,
		tasks:    make(chan task, 64),
		ctx:      ctx,
		cancel:   cancel,
		table:    make(map[Identity]*tableEntry),
		builtIn:  make(map[Identity]*Handle),
	}
	for i := 0; i < cfg.Workers; i++ {
		m.wg.Add(1)
		go m.worker()
	}
	return m
}

// Registry returns the loader registry of the manager.
func (m *Manager) Registry() *Registry {
	return m.registry
}

// RegisterLoader adds a loader to the manager's registry.
func (m *Manager) RegisterLoader(loader Loader) {
	m.registry.Register(loader)
}

// Subscribe registers for load, reload and removal events. A nil
// filter receives everything.
func (m *Manager) Subscribe(filter Filter) *Subscription {
	return m.events.Subscribe(filter)
}

// RegisterBuiltIn installs a ready payload as a built-in resource
// reachable under an embedded identity with the given name. The
// returned handle is the one every later request for the name yields.
func (m *Manager) RegisterBuiltIn(name string, payload any) *Handle {
	handle := NewEmbeddedHandle(name, payload)
	m.mu.Lock()
	m.builtIn[handle.Identity()] = handle
	m.mu.Unlock()
	return handle
}

// Request resolves a path to a handle, starting a background load when
// the identity has none yet. The call never blocks on loader work.
func (m *Manager) Request(path string) *Handle {
	return m.RequestIdentity(NewExternal(path))
}

// RequestIdentity is Request for a pre-built identity. Embedded
// identities resolve synchronously from the built-in table and never
// touch the registry or the IO provider.
func (m *Manager) RequestIdentity(id Identity) *Handle {
	if id.Kind == Embedded {
		return m.requestBuiltIn(id)
	}

	m.mu.Lock()
	if entry, ok := m.table[id]; ok {
		entry.timeToLive = m.lifetime
		handle := entry.handle.Acquire()
		m.mu.Unlock()
		return handle
	}

	handle := newHandle(id, m)
	handle.markPending()
	handle.Acquire()
	m.table[id] = &tableEntry{handle: handle, timeToLive: m.lifetime}
	if m.closed {
		m.mu.Unlock()
		m.complete(handle, nil, fmt.Errorf("%w: %s", ErrManagerClosed, id), false)
		return handle
	}
	m.sends.Add(1)
	m.mu.Unlock()

	loader := m.registry.ForExtension(id.Extension())
	if loader == nil {
		m.sends.Done()
		m.complete(handle, nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, id.Extension()), false)
		return handle
	}

	handle.setTypeTag(loader.Type())
	m.dispatch(task{handle: handle, loader: loader})
	return handle
}

func (m *Manager) requestBuiltIn(id Identity) *Handle {
	m.mu.Lock()
	handle, ok := m.builtIn[id]
	m.mu.Unlock()
	if ok {
		return handle.Acquire()
	}
	missing := newHandle(id, nil)
	missing.markPending()
	missing.commit(nil, fmt.Errorf("%w: %s", ErrUnknownBuiltIn, id.Path))
	return missing
}

// dispatchReload re-runs the loader for a handle that Reload has
// already moved back to Pending.
func (m *Manager) dispatchReload(handle *Handle) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		m.complete(handle, nil, fmt.Errorf("%w: %s", ErrManagerClosed, handle.Identity()), true)
		return nil
	}
	m.sends.Add(1)
	m.mu.Unlock()

	loader := m.registry.ForExtension(handle.Identity().Extension())
	if loader == nil {
		m.sends.Done()
		m.complete(handle, nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, handle.Identity().Extension()), true)
		return nil
	}
	handle.setTypeTag(loader.Type())
	m.dispatch(task{handle: handle, loader: loader, reload: true})
	return nil
}

// dispatch hands a task to the workers without ever blocking the
// requesting goroutine. When the queue is full the hand-off moves to
// its own goroutine. Callers hold a slot in the sends group, released
// here once the task is either queued or failed.
func (m *Manager) dispatch(t task) {
	select {
	case m.tasks <- t:
		m.sends.Done()
	default:
		go func() {
			defer m.sends.Done()
			select {
			case m.tasks <- t:
			case <-m.ctx.Done():
				m.complete(t.handle, nil, fmt.Errorf("%w: %s", ErrManagerClosed, t.handle.Identity()), t.reload)
			}
		}()
	}
}

func (m *Manager) worker() {
	defer m.wg.Done()
	for {
		select {
		case t := <-m.tasks:
			payload, err := t.loader.Load(m.ctx, t.handle.Identity(), m.io, t.reload)
			m.complete(t.handle, payload, err, t.reload)
		case <-m.ctx.Done():
			return
		}
	}
}

// complete commits a load result to the handle and broadcasts the
// transition. A failed reload of a handle that still has a good
// payload restores the old payload instead of poisoning the handle.
// The handle's event lock spans commit and broadcast, so events for
// one handle always arrive in the order its transitions committed.
func (m *Manager) complete(handle *Handle, payload any, err error, reload bool) {
	handle.eventMu.Lock()
	defer handle.eventMu.Unlock()

	if err != nil && reload {
		if prev, ok := handle.previous(); ok {
			log.Infof("resource %s failed to reload, keeping the existing version: %v", handle.Identity(), err)
			handle.commit(prev, nil)
			m.publish(handle, reload)
			return
		}
	}
	if err != nil {
		log.Infof("resource %s failed to load: %v", handle.Identity(), err)
	} else {
		log.Infof("resource %s loaded", handle.Identity())
	}
	handle.commit(payload, err)
	m.publish(handle, reload)
}

func (m *Manager) publish(handle *Handle, reload bool) {
	kind := EventLoaded
	if reload {
		kind = EventReloaded
	}
	m.events.Publish(Event{Kind: kind, Identity: handle.Identity(), Status: handle.Status()})
}

// Update ages the table. Handles without external holders lose dt
// seconds of lifetime and are dropped once it runs out; referenced
// handles get their lifetime reset. Pending handles are never dropped,
// that keeps the one-load-per-identity guarantee intact.
func (m *Manager) Update(dt float64) {
	m.mu.Lock()
	var removed []*Handle
	for id, entry := range m.table {
		if entry.handle.UseCount() > 0 {
			entry.timeToLive = m.lifetime
			continue
		}
		if entry.handle.Status() == StatusPending {
			continue
		}
		entry.timeToLive -= dt
		if entry.timeToLive <= 0 {
			delete(m.table, id)
			removed = append(removed, entry.handle)
		}
	}
	m.mu.Unlock()

	for _, handle := range removed {
		log.Infof("resource %s destroyed because it is not used anymore", handle.Identity())
		handle.eventMu.Lock()
		m.events.Publish(Event{Kind: EventRemoved, Identity: handle.Identity(), Status: handle.Status()})
		handle.eventMu.Unlock()
	}
}

// Len returns the number of handles currently in the table.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.table)
}

// CountPending returns the number of handles with a load in flight.
func (m *Manager) CountPending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, entry := range m.table {
		if entry.handle.Status() == StatusPending {
			count++
		}
	}
	return count
}

// Close stops the workers. Loads not yet picked up fail with
// ErrManagerClosed; a load already running commits normally. When
// Close returns, no handle is left Pending.
func (m *Manager) Close() {
	m.closeOnce.Do(func() {
		m.mu.Lock()
		m.closed = true
		m.mu.Unlock()
		m.cancel()

		// Requests that passed the closed check are still handing
		// their tasks off; wait for them so the drain below sees
		// every queued task.
		m.sends.Wait()
		m.wg.Wait()
		for {
			select {
			case t := <-m.tasks:
				m.complete(t.handle, nil, fmt.Errorf("%w: %s", ErrManagerClosed, t.handle.Identity()), t.reload)
			default:
				return
			}
		}
	})
}
