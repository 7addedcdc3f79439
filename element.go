package wasapi2

import (
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/adrg/xdg"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/go-musicfox/wasapi2/internal/wasapi2/devicemanager"
	"github.com/go-musicfox/wasapi2/internal/wasapi2/enumerate"
	"github.com/go-musicfox/wasapi2/internal/wasapi2/provider"
	"github.com/go-musicfox/wasapi2/internal/wasapi2/rbuf"
	"github.com/go-musicfox/wasapi2/internal/wasapi2/rbufctx"
	"github.com/go-musicfox/wasapi2/internal/wasapi2/waveformat"
)

// Class is the stream direction an Element was created for.
type Class int

const (
	ClassSink Class = iota
	ClassSource
)

// Format is re-exported so callers never need to import the internal
// tree directly.
type Format = waveformat.Format

// Caps is the capability snapshot returned by Acquire/GetCaps.
type Caps = rbufctx.Caps

// AcquireSpec is the caller-requested stream shape.
type AcquireSpec struct {
	Format       Format
	PeriodFrames uint32
}

var (
	enumOnce   sync.Once
	sharedEnum atomic.Pointer[enumerate.Enumerator]

	managerOnce sync.Once
	sharedCache atomic.Pointer[provider.FormatCache]

	providerOnce   sync.Once
	sharedProvider atomic.Pointer[provider.Provider]
)

func getEnumerator(log *slog.Logger) *enumerate.Enumerator {
	enumOnce.Do(func() {
		e := enumerate.New(log)
		_ = e.Start()
		sharedEnum.Store(e)
	})
	return sharedEnum.Load()
}

func getManager(log *slog.Logger) *devicemanager.Manager {
	managerOnce.Do(func() {
		path := filepath.Join(xdg.CacheHome, "wasapi2", "formats.db")
		cache, err := provider.OpenFormatCache(path)
		if err != nil {
			log.Warn("format cache unavailable, probing exclusive grid every open", "error", err)
			cache = nil
		}
		sharedCache.Store(cache)
	})
	var cache devicemanager.FormatCache
	if c := sharedCache.Load(); c != nil {
		cache = c
	}
	return devicemanager.Get(log, cache)
}

func getProvider(log *slog.Logger) *provider.Provider {
	providerOnce.Do(func() {
		sharedProvider.Store(provider.New(log, getEnumerator(log)))
	})
	return sharedProvider.Load()
}

// Device is one pipeline-facing audio device materialized by the
// DeviceProvider: a capture endpoint becomes one Device, a render
// endpoint becomes both a sink and a loopback-source Device.
type Device = provider.Device

// DeviceEvent is a single add/remove/change notification from
// ListDevices' underlying diff against the previously known device set.
type DeviceEvent = provider.Event

// Element is a single sink or source instance: the pipeline-facing
// ring-buffer contract in front of a Rbuf core.
type Element struct {
	log   *slog.Logger
	class Class
	props Properties

	enum    *enumerate.Enumerator
	manager *devicemanager.Manager
	core    *rbuf.Rbuf

	mu         sync.Mutex
	endpointID string
}

// New creates a sink or source Element. It does not touch WASAPI until
// Open is called.
func New(log *slog.Logger, class Class, props Properties) *Element {
	if log == nil {
		log = slog.Default()
	}
	l := log.With("component", "wasapi2", "class", classString(class))
	e := &Element{
		log:     l,
		class:   class,
		props:   props,
		enum:    getEnumerator(l),
		manager: getManager(l),
	}
	e.core = rbuf.New(l, e.manager, props.ContinueOnError)
	return e
}

// Shutdown tears down the process-wide Enumerator and DeviceManager
// apartment threads. Call it once, after every Element has been shut
// down, typically from the host application's exit path; individual
// Elements do not own these singletons and must not call this
// themselves. The two teardowns are independent (one is the enumerator's
// notification thread, the other the device manager's activation
// thread), so they run concurrently via errgroup rather than in series.
func Shutdown() {
	var g errgroup.Group
	if e := sharedEnum.Load(); e != nil {
		g.Go(func() error {
			e.Stop()
			return nil
		})
	}
	if m := devicemanager.Peek(); m != nil {
		g.Go(func() error {
			m.Shutdown()
			return nil
		})
	}
	_ = g.Wait()
	if c := sharedCache.Load(); c != nil {
		_ = c.Close()
	}
}

func classString(c Class) string {
	if c == ClassSink {
		return "sink"
	}
	return "source"
}

// OnInvalidated registers the callback invoked when the I/O thread
// surfaces a fatal device error it could not swallow or recover from.
func (e *Element) OnInvalidated(fn func(error)) {
	e.core.OnInvalidated(fn)
}

// ListDevices synchronously probes the shared DeviceProvider and
// returns every currently active pipeline-facing device: one Source per
// capture endpoint, and both a Sink and a loopback Source per render
// endpoint.
func (e *Element) ListDevices() ([]Device, error) {
	return getProvider(e.log).Probe()
}

// Open resolves the configured or default endpoint and creates the
// underlying RbufCtx.
func (e *Element) Open() error {
	endpointID, err := e.resolveEndpoint()
	if err != nil {
		return errors.Wrap(err, "wasapi2: resolve endpoint")
	}
	e.mu.Lock()
	e.endpointID = endpointID
	e.mu.Unlock()

	desc := e.describe(endpointID)
	return e.core.OpenDevice(desc)
}

// Close releases the RbufCtx.
func (e *Element) Close() error {
	return e.core.CloseDevice()
}

// Shutdown releases the RbufCtx (if still open) and permanently
// terminates this Element's dedicated I/O thread. The Element cannot be
// reopened afterwards; callers done with an Element entirely should call
// this instead of leaving the I/O goroutine running, which Close alone
// does not stop (Close only tears down the device so a caller can
// OpenDevice again).
func (e *Element) Shutdown() {
	_ = e.core.CloseDevice()
	e.core.Shutdown()
}

// Acquire selects a format matching spec and finishes RbufCtx
// initialisation.
func (e *Element) Acquire(spec AcquireSpec) (Caps, error) {
	return e.core.Acquire(rbuf.AcquireSpec{Format: spec.Format, PeriodFrames: spec.PeriodFrames})
}

// Release frees the ring memory.
func (e *Element) Release() error { return e.core.Release() }

// Start begins I/O.
func (e *Element) Start() error { return e.core.Start() }

// Stop halts I/O.
func (e *Element) Stop() error { return e.core.Stop() }

// Pause is Stop without releasing the acquired ring memory.
func (e *Element) Pause() error { return e.core.Pause() }

// Resume is Start after Pause.
func (e *Element) Resume() error { return e.core.Resume() }

// Delay always returns 0: the WASAPI-side latency does not map cleanly
// onto a frame-accurate value.
func (e *Element) Delay() (uint32, error) { return 0, nil }

// GetCaps returns the currently-known capability snapshot.
func (e *Element) GetCaps() (Caps, error) { return e.core.GetCaps() }

// SetVolume applies mute/volume through the stream (or endpoint)
// volume interface. volume is clamped to [0, 1] before reaching WASAPI.
func (e *Element) SetVolume(volume float32, mute bool) error {
	e.props.Volume = volume
	e.props.Mute = mute
	return e.core.SetVolume(e.props.clampVolume(), mute)
}

// SetDevice updates the target endpoint and, if already open, triggers
// an asynchronous rebuild that re-enters the core as an UpdateDevice
// command once ready.
func (e *Element) SetDevice(endpointID string) error {
	e.mu.Lock()
	wasOpen := e.endpointID != ""
	e.mu.Unlock()

	if err := e.core.SetDevice(endpointID); err != nil {
		return err
	}
	if !wasOpen {
		return nil
	}
	desc := e.describe(endpointID)
	e.manager.CreateCtxAsync(desc, e.core)
	return nil
}

// Write stages host-format audio for a sink's render loop.
func (e *Element) Write(p []byte) int { return e.core.Write(p) }

// Read drains host-format audio a source's capture loop produced.
func (e *Element) Read(p []byte) int { return e.core.Read(p) }

func (e *Element) describe(endpointID string) rbufctx.Desc {
	class := rbufctx.ClassRender
	if e.class == ClassSource {
		class = rbufctx.ClassCapture
	}
	mode := rbufctx.ModeShared
	if e.props.Exclusive {
		mode = rbufctx.ModeExclusive
	}
	loopbackMode := rbufctx.LoopbackDefault
	switch e.props.LoopbackMode {
	case LoopbackIncludeProcessTree:
		loopbackMode = rbufctx.LoopbackIncludeProcessTree
	case LoopbackExcludeProcessTree:
		loopbackMode = rbufctx.LoopbackExcludeProcessTree
	}
	return rbufctx.Desc{
		EndpointID:            endpointID,
		Class:                 class,
		Mode:                  mode,
		LowLatency:            e.props.LowLatency,
		Loopback:              e.props.Loopback,
		LoopbackMode:          loopbackMode,
		LoopbackTargetPID:     e.props.LoopbackTargetPID,
		LoopbackSilenceOnMute: e.props.LoopbackSilenceOnDeviceMute,
		ContinueOnError:       e.props.ContinueOnError,
		AllowDummyRender:      e.props.AllowDummyRender,
	}
}

// resolveEndpoint returns the explicitly configured device, or the
// current default for this Element's class/flow.
func (e *Element) resolveEndpoint() (string, error) {
	if e.props.Device != "" {
		return e.props.Device, nil
	}

	flow := enumerate.FlowCapture
	if e.class == ClassSink || (e.class == ClassSource && e.props.Loopback) {
		flow = enumerate.FlowRender
	}

	endpoints, err := e.enum.Snapshot()
	if err != nil {
		return "", err
	}
	for _, ep := range endpoints {
		if ep.IsDefault && ep.Flow == flow && ep.DefaultRole == "console" {
			return ep.ID, nil
		}
	}
	for _, ep := range endpoints {
		if !ep.IsDefault && ep.Flow == flow {
			return ep.ID, nil
		}
	}
	return "", errors.New("wasapi2: no matching endpoint found")
}
