package rbuf

import (
	"log/slog"
	"sync"

	"github.com/pkg/errors"

	"github.com/go-musicfox/wasapi2/internal/wasapi2/rbufctx"
)

// State is the Rbuf's lifecycle position, mirroring the standard
// open/acquire/start ring-buffer contract.
type State int

const (
	StateIdle State = iota
	StateOpened
	StateAcquired
	StateStarted
	StateStopped
	StateClosed
)

// ErrWrongState is returned when a public method is called out of
// order relative to the open/acquire/start/stop/release/close sequence.
var ErrWrongState = errors.New("rbuf: operation invalid in current state")

// InvalidationFunc is invoked when the I/O thread surfaces a fatal,
// non-swallowed device error (the Rbuf equivalent of a GStreamer
// RESOURCE/WRITE error post).
type InvalidationFunc func(err error)

// engine is implemented per-OS: it owns the dedicated I/O thread/select
// loop and is the sole mutator of RbufCtx and WASAPI handles. Every
// public Rbuf method is a thin wrapper that posts a command and waits.
type engine interface {
	post(cmd *command)
	shutdown()
	write(p []byte) int
	read(p []byte) int
}

// Rbuf is a specialised ring buffer: one dedicated I/O thread, one FIFO
// command queue, sitting in front of a rbufctx.Ctx.
type Rbuf struct {
	log *slog.Logger
	eng engine

	mu            sync.Mutex
	state         State
	continueOnErr bool
	onInvalidated InvalidationFunc
}

// New creates a Rbuf and starts its dedicated I/O thread. manager is
// used by the engine to build and rebuild RbufCtx instances.
func New(log *slog.Logger, manager Manager, continueOnError bool) *Rbuf {
	if log == nil {
		log = slog.Default()
	}
	r := &Rbuf{log: log.With("component", "rbuf"), state: StateIdle, continueOnErr: continueOnError}
	r.eng = newEngine(r, manager)
	return r
}

// Manager is the subset of devicemanager.Manager the engine needs,
// narrowed so rbuf doesn't import devicemanager directly (devicemanager
// already imports rbufctx; rbuf importing devicemanager too is fine,
// but the interface keeps the engine's dependency explicit and testable
// with a fake).
type Manager interface {
	CreateCtx(desc rbufctx.Desc) (*rbufctx.Ctx, error)
}

// OnInvalidated registers the callback invoked when the I/O thread
// surfaces a fatal device error it could not swallow or recover from
// via the fallback timer.
func (r *Rbuf) OnInvalidated(fn InvalidationFunc) {
	r.mu.Lock()
	r.onInvalidated = fn
	r.mu.Unlock()
}

func (r *Rbuf) invalidate(err error) {
	r.mu.Lock()
	fn := r.onInvalidated
	r.mu.Unlock()
	if fn != nil {
		fn(err)
	}
}

func (r *Rbuf) setState(s State) {
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
}

func (r *Rbuf) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Rbuf) submit(cmd *command) (rbufctx.Caps, error) {
	r.eng.post(cmd)
	res := <-cmd.result
	return res.Caps, res.Err
}

// requireState rejects a call made out of order relative to the
// open/acquire/start/stop/release/close sequence; this only guards
// against caller misuse, it does not itself serialise anything (the
// command queue already does that).
func (r *Rbuf) requireState(allowed ...State) error {
	s := r.State()
	for _, a := range allowed {
		if s == a {
			return nil
		}
	}
	return ErrWrongState
}

// OpenDevice creates the RbufCtx synchronously, without a format yet.
func (r *Rbuf) OpenDevice(desc rbufctx.Desc) error {
	if err := r.requireState(StateIdle); err != nil {
		return err
	}
	cmd := newCommand(CmdOpen)
	cmd.Desc = desc
	_, err := r.submit(cmd)
	if err == nil {
		r.setState(StateOpened)
	}
	return err
}

// CloseDevice releases the RbufCtx and reverts to dummy waitables.
func (r *Rbuf) CloseDevice() error {
	cmd := newCommand(CmdClose)
	_, err := r.submit(cmd)
	if err == nil {
		r.setState(StateIdle)
	}
	return err
}

// Acquire selects a format matching spec and finishes RbufCtx
// initialisation, returning the resulting capability snapshot.
func (r *Rbuf) Acquire(spec AcquireSpec) (rbufctx.Caps, error) {
	if err := r.requireState(StateOpened); err != nil {
		return rbufctx.Caps{}, err
	}
	cmd := newCommand(CmdAcquire)
	cmd.Spec = spec
	caps, err := r.submit(cmd)
	if err == nil {
		r.setState(StateAcquired)
	}
	return caps, err
}

// Release frees the ring memory and stops the fallback timer.
func (r *Rbuf) Release() error {
	cmd := newCommand(CmdRelease)
	_, err := r.submit(cmd)
	if err == nil {
		r.setState(StateOpened)
	}
	return err
}

// Start resets FIFO counters and begins I/O.
func (r *Rbuf) Start() error {
	if err := r.requireState(StateAcquired, StateStopped); err != nil {
		return err
	}
	cmd := newCommand(CmdStart)
	_, err := r.submit(cmd)
	if err == nil {
		r.setState(StateStarted)
	}
	return err
}

// Stop halts I/O and clears offsets.
func (r *Rbuf) Stop() error {
	cmd := newCommand(CmdStop)
	_, err := r.submit(cmd)
	if err == nil {
		r.setState(StateStopped)
	}
	return err
}

// Pause is Stop without discarding the acquired ring memory, matching
// the standard ring-buffer contract's pause/resume pair.
func (r *Rbuf) Pause() error { return r.Stop() }

// Resume is Start after a Pause.
func (r *Rbuf) Resume() error { return r.Start() }

// SetDevice updates the stored device identity only. It does not rebuild
// the RbufCtx itself: a new context arrives later through
// PostUpdateDevice once the caller has run CreateCtxAsync.
func (r *Rbuf) SetDevice(endpointID string) error {
	cmd := newCommand(CmdSetDevice)
	cmd.Device = endpointID
	_, err := r.submit(cmd)
	return err
}

// PostUpdateDevice implements devicemanager.UpdateTarget: it folds an
// asynchronously-built RbufCtx into the command queue as an
// UpdateDevice command rather than touching the I/O thread's state
// directly from the DeviceManager goroutine.
func (r *Rbuf) PostUpdateDevice(ctx *rbufctx.Ctx, err error) {
	cmd := newCommand(CmdUpdateDevice)
	cmd.Ctx = ctx
	cmd.CtxErr = err
	r.eng.post(cmd)
}

// GetCaps returns the currently-known capability snapshot.
func (r *Rbuf) GetCaps() (rbufctx.Caps, error) {
	cmd := newCommand(CmdGetCaps)
	return r.submit(cmd)
}

// SetVolume applies mute/volume through the stream (or endpoint)
// volume interface.
func (r *Rbuf) SetVolume(volume float32, mute bool) error {
	cmd := newCommand(CmdUpdateVolume)
	cmd.Volume = volume
	cmd.Mute = mute
	_, err := r.submit(cmd)
	return err
}

// Delay reports the current estimated output/input latency in bytes,
// derived from the last known caps (segment size × seglatency).
func (r *Rbuf) Delay() (uint32, error) {
	caps, err := r.GetCaps()
	if err != nil {
		return 0, err
	}
	return uint32(caps.SegLatency * caps.SegmentSize), nil
}

// Write stages host-format audio into the ring for the render loop to
// consume, returning the number of bytes actually accepted.
func (r *Rbuf) Write(p []byte) int {
	return r.eng.write(p)
}

// Read drains host-format audio the capture loop has produced into the
// ring, returning the number of bytes actually available.
func (r *Rbuf) Read(p []byte) int {
	return r.eng.read(p)
}

// Shutdown terminates the I/O loop. No further commands may be posted
// afterwards.
func (r *Rbuf) Shutdown() {
	r.eng.shutdown()
	r.setState(StateClosed)
}
