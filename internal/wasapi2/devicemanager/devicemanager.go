// Package devicemanager is the process-wide singleton that owns the
// COM-apartment thread used to activate endpoints and build RbufCtx
// instances, synchronously for open/acquire and asynchronously for
// live device swaps while a Rbuf is already running.
package devicemanager

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/go-musicfox/wasapi2/internal/wasapi2/rbufctx"
	"github.com/go-musicfox/wasapi2/internal/wasapi2/waveformat"
)

// UpdateTarget receives the result of an async device build once the
// apartment thread has finished activating it; Rbuf implements this to
// fold the new Ctx into its own command queue as an UpdateDevice
// command rather than racing the I/O thread directly.
type UpdateTarget interface {
	PostUpdateDevice(ctx *rbufctx.Ctx, err error)
}

// FormatCache is the subset of provider.FormatCache the manager uses to
// skip the exclusive-mode probe grid on repeat opens of a known device.
type FormatCache interface {
	Get(endpointID string) (formats []waveformat.Format, ok bool, err error)
	Put(endpointID string, formats []waveformat.Format) error
}

// platform is implemented per-OS: apartment holds the actual
// apartment-thread plumbing (CoInitializeEx, activation calls).
type platform interface {
	build(desc rbufctx.Desc, cached []waveformat.Format) (*rbufctx.Ctx, error)
	close()
}

// Manager is the process-wide DeviceManager singleton.
type Manager struct {
	log   *slog.Logger
	cache FormatCache
	plat  platform

	flight singleflight.Group

	mu       sync.Mutex
	closed   bool
	inflight sync.WaitGroup
}

var (
	once     sync.Once
	instance atomic.Pointer[Manager]
)

// Get returns the process-wide Manager, starting its apartment thread
// on first use. Subsequent calls ignore their arguments and return the
// already-initialised singleton.
func Get(log *slog.Logger, cache FormatCache) *Manager {
	once.Do(func() {
		if log == nil {
			log = slog.Default()
		}
		l := log.With("component", "devicemanager")
		instance.Store(&Manager{log: l, cache: cache, plat: newPlatform(l)})
	})
	return instance.Load()
}

// Peek returns the process-wide Manager if Get has already initialised
// it, or nil otherwise, without triggering initialisation. Used by the
// facade's Shutdown path so tearing down a never-started module doesn't
// spin up an apartment thread just to immediately close it.
func Peek() *Manager {
	return instance.Load()
}

// CreateCtx synchronously builds a RbufCtx for desc, used during
// open/acquire. Concurrent requests against the same endpoint+class
// coalesce via singleflight so a burst of opens against one device only
// activates it once; every waiter gets the same Ctx.
func (m *Manager) CreateCtx(desc rbufctx.Desc) (*rbufctx.Ctx, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrManagerClosed
	}
	m.inflight.Add(1)
	m.mu.Unlock()
	defer m.inflight.Done()

	key := flightKey(desc)
	v, err, _ := m.flight.Do(key, func() (interface{}, error) {
		return m.plat.build(desc, m.cachedFormats(desc))
	})
	if err != nil {
		return nil, err
	}
	ctx := v.(*rbufctx.Ctx)
	if m.cache != nil && desc.Mode == rbufctx.ModeExclusive {
		_ = m.cache.Put(desc.EndpointID, []waveformat.Format{ctx.DeviceInfo})
	}
	return ctx, nil
}

// CreateCtxAsync builds a RbufCtx on the apartment thread in the
// background and posts the outcome to target once ready, used for
// default-device-follow swaps while a Rbuf is actively streaming.
func (m *Manager) CreateCtxAsync(desc rbufctx.Desc, target UpdateTarget) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		target.PostUpdateDevice(nil, ErrManagerClosed)
		return
	}
	m.inflight.Add(1)
	m.mu.Unlock()

	go func() {
		defer m.inflight.Done()
		key := flightKey(desc)
		v, err, _ := m.flight.Do(key, func() (interface{}, error) {
			return m.plat.build(desc, m.cachedFormats(desc))
		})
		if err != nil {
			target.PostUpdateDevice(nil, err)
			return
		}
		target.PostUpdateDevice(v.(*rbufctx.Ctx), nil)
	}()
}

func (m *Manager) cachedFormats(desc rbufctx.Desc) []waveformat.Format {
	if m.cache == nil || desc.Mode != rbufctx.ModeExclusive {
		return nil
	}
	formats, ok, err := m.cache.Get(desc.EndpointID)
	if err != nil || !ok {
		return nil
	}
	return formats
}

func flightKey(desc rbufctx.Desc) string {
	mode := "shared"
	if desc.Mode == rbufctx.ModeExclusive {
		mode = "exclusive"
	}
	class := "render"
	if desc.Class == rbufctx.ClassCapture {
		class = "capture"
	}
	return desc.EndpointID + "|" + mode + "|" + class
}

// Shutdown drains in-flight build requests and releases the apartment
// thread's COM state. It blocks until every outstanding CreateCtx /
// CreateCtxAsync call has returned.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.mu.Unlock()

	m.inflight.Wait()
	m.plat.close()
}
