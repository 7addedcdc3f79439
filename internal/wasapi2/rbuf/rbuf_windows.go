//go:build windows

package rbuf

import (
	"sync"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/go-musicfox/wasapi2/internal/wasapi2/com"
	"github.com/go-musicfox/wasapi2/internal/wasapi2/rbufctx"
)

const monitorInterval = 15 * time.Millisecond

// winEngine is the Rbuf's dedicated I/O thread. It is modelled as a
// single select loop over Go channels rather than a raw
// WaitForMultipleObjects call: each Win32 auto-reset event (render,
// capture) is relayed into a channel by a small per-generation
// goroutine, and the fallback/monitor timers are plain tickers. Only
// this loop's goroutine ever calls into RbufCtx or touches WASAPI
// handles, preserving the single-mutator invariant.
type winEngine struct {
	rb      *Rbuf
	manager Manager

	cmdCh chan *command
	done  chan struct{}

	ringMu     sync.Mutex
	renderRing *ringBuffer
	captureRing *ringBuffer

	desc rbufctx.Desc
	ctx  *rbufctx.Ctx

	caps rbufctx.Caps

	fallbackEnabled bool
	fallbackTicker  *time.Ticker
	monitorTicker   *time.Ticker

	errorPosted bool
	expectedDevicePos uint64
	firstCapture      bool

	converterStage []byte
	generation     int
}

func newEngine(rb *Rbuf, manager Manager) engine {
	e := &winEngine{
		rb:      rb,
		manager: manager,
		cmdCh:   make(chan *command, 8),
		done:    make(chan struct{}),
	}
	go e.run()
	return e
}

func (e *winEngine) post(cmd *command)  { e.cmdCh <- cmd }
func (e *winEngine) shutdown()          { close(e.done) }

func (e *winEngine) write(p []byte) int {
	e.ringMu.Lock()
	defer e.ringMu.Unlock()
	if e.renderRing == nil {
		return 0
	}
	return e.renderRing.Write(p)
}

func (e *winEngine) read(p []byte) int {
	e.ringMu.Lock()
	defer e.ringMu.Unlock()
	if e.captureRing == nil {
		return 0
	}
	return e.captureRing.Read(p)
}

func (e *winEngine) run() {
	e.monitorTicker = time.NewTicker(monitorInterval)
	defer e.monitorTicker.Stop()

	var renderCh, captureCh, dummyCh <-chan struct{}
	var fallbackCh <-chan time.Time

	for {
		if e.fallbackTicker != nil {
			fallbackCh = e.fallbackTicker.C
		} else {
			fallbackCh = nil
		}

		select {
		case cmd := <-e.cmdCh:
			e.process(cmd)
			if cmd.Kind == CmdShutdown {
				return
			}
			renderCh, captureCh, dummyCh = e.waitables()

		case <-renderCh:
			e.renderTick()

		case <-captureCh:
			e.captureTick()

		case <-dummyCh:
			e.dummyTick()

		case <-fallbackCh:
			e.fallbackTick()

		case <-e.monitorTicker.C:
			e.monitorTick()

		case <-e.done:
			return
		}
	}
}

// waitables (re)builds the render/capture/dummy relay channels for the
// current ctx generation, starting a fresh relay goroutine whenever the
// context has changed since the last rebuild. The dummy channel relays
// the dummy render client's own event, independent of the primary
// render/capture event, so an idle loopback capture's companion render
// stream keeps getting re-primed even though the engine itself only
// ever waits on one of render/capture for the primary class.
func (e *winEngine) waitables() (render, capture, dummy <-chan struct{}) {
	if e.ctx == nil {
		return nil, nil, nil
	}
	gen := e.generation

	if h := e.ctx.DummyEventHandle(); h != 0 {
		dch := make(chan struct{}, 1)
		go relayEvent(h, dch, gen, &e.generation)
		dummy = dch
	}

	if e.desc.Class == rbufctx.ClassRender {
		ch := make(chan struct{}, 1)
		go relayEvent(e.ctx.EventHandle(), ch, gen, &e.generation)
		return ch, nil, dummy
	}
	ch := make(chan struct{}, 1)
	go relayEvent(e.ctx.EventHandle(), ch, gen, &e.generation)
	return nil, ch, dummy
}

// dummyTick re-primes the dummy render client on its own event so a
// loopback capture still produces data while the companion render
// endpoint would otherwise sit idle. Errors here degrade silently to
// the fallback clock rather than tearing down the primary stream, since
// the dummy client is a keepalive, not the caller's actual I/O path.
func (e *winEngine) dummyTick() {
	if e.ctx == nil {
		return
	}
	if err := e.ctx.DummyRender(); err != nil && e.rb.continueOnErr {
		e.armFallback(e.desc.LatencyTime)
	}
}

// relayEvent blocks on a Win32 auto-reset event and forwards each wake
// into ch, exiting once the owning generation has moved on (the handle
// was closed or replaced by UpdateDevice).
func relayEvent(handle uintptr, ch chan struct{}, gen int, current *int) {
	h := windows.Handle(handle)
	for *current == gen {
		ev, err := windows.WaitForSingleObject(h, 200)
		if err != nil {
			return
		}
		if ev == windows.WAIT_OBJECT_0 {
			select {
			case ch <- struct{}{}:
			default:
			}
		}
	}
}

func (e *winEngine) process(cmd *command) {
	switch cmd.Kind {
	case CmdOpen:
		cmd.result <- commandResult{Err: e.handleOpen(cmd.Desc)}
	case CmdAcquire:
		caps, err := e.handleAcquire(cmd.Spec)
		cmd.result <- commandResult{Caps: caps, Err: err}
	case CmdStart:
		cmd.result <- commandResult{Err: e.handleStart()}
	case CmdStop:
		cmd.result <- commandResult{Err: e.handleStop()}
	case CmdRelease:
		cmd.result <- commandResult{Err: e.handleRelease()}
	case CmdClose:
		cmd.result <- commandResult{Err: e.handleClose()}
	case CmdSetDevice:
		cmd.result <- commandResult{Err: e.handleSetDevice(cmd.Device)}
	case CmdUpdateDevice:
		cmd.result <- commandResult{Err: e.handleUpdateDevice(cmd.Ctx, cmd.CtxErr)}
	case CmdGetCaps:
		cmd.result <- commandResult{Caps: e.caps}
	case CmdUpdateVolume:
		cmd.result <- commandResult{Err: e.handleUpdateVolume(cmd.Volume, cmd.Mute)}
	case CmdShutdown:
		e.handleClose()
		cmd.result <- commandResult{}
	}
}

// handleOpen activates the endpoint with no caller-requested format yet
// (desc.RequestedFormat is the zero value): for shared mode this is
// harmless since there is only ever one candidate (the mix/default
// format); for exclusive mode it surfaces activation failures early but
// is superseded by handleAcquire's rebuild once the real format is
// known.
func (e *winEngine) handleOpen(desc rbufctx.Desc) error {
	e.desc = desc
	ctx, err := e.manager.CreateCtx(desc)
	if err != nil {
		if e.rb.continueOnErr {
			e.fallbackEnabled = true
			e.armFallback(desc.LatencyTime)
			return nil
		}
		return err
	}
	e.ctx = ctx
	e.generation++
	return nil
}

// handleAcquire selects a format matching spec and finishes RbufCtx
// initialisation. Open already activated an endpoint and (for shared
// mode) committed to its single mix/default format, but exclusive mode
// has a whole grid of candidate device formats to choose from — Open
// had no caller-requested format to rank them against yet, so exclusive
// contexts are rebuilt here against the real spec.Format now that it is
// known, exactly as the spec's Open/Acquire split intends.
func (e *winEngine) handleAcquire(spec AcquireSpec) (rbufctx.Caps, error) {
	if e.desc.Mode == rbufctx.ModeExclusive {
		if err := e.rebuildForFormat(spec); err != nil {
			if e.rb.continueOnErr {
				e.armFallback(e.desc.LatencyTime)
			} else {
				return rbufctx.Caps{}, err
			}
		}
	}

	period := spec.PeriodFrames
	if e.ctx != nil {
		period = e.ctx.PeriodFrames()
	}
	blockAlign := int(spec.Format.BlockAlign())
	if blockAlign == 0 {
		blockAlign = 4
	}
	segSize := int(period) * blockAlign
	if segSize == 0 {
		segSize = 4096
	}
	rate := spec.Format.SampleRate
	if rate == 0 {
		rate = 48000
	}
	segTotal := int(rate) / 2 / int(period)
	if period == 0 || segTotal < 2 {
		segTotal = 2
	}
	segLatency := 2

	e.ringMu.Lock()
	e.renderRing = newRingBuffer(segSize * segTotal)
	e.captureRing = newRingBuffer(segSize * segTotal)
	e.ringMu.Unlock()

	e.caps = rbufctx.Caps{
		Format:      spec.Format,
		SegmentSize: segSize,
		SegTotal:    segTotal,
		SegLatency:  segLatency,
	}
	if e.ctx != nil {
		e.caps.Volume = 1
	}
	e.firstCapture = true
	return e.caps, nil
}

// rebuildForFormat closes the placeholder context Open built (if any)
// and builds a fresh one with spec.Format as the requested format, so
// the exclusive-mode format grid is ranked against what the caller
// actually asked for rather than the zero-value basis Open used.
func (e *winEngine) rebuildForFormat(spec AcquireSpec) error {
	desc := e.desc
	desc.RequestedFormat = spec.Format
	ctx, err := e.manager.CreateCtx(desc)
	if err != nil {
		return err
	}
	if e.ctx != nil {
		e.ctx.Close()
	}
	e.ctx = ctx
	e.desc = desc
	e.generation++
	return nil
}

func (e *winEngine) handleStart() error {
	e.ringMu.Lock()
	if e.renderRing != nil {
		e.renderRing.Reset()
	}
	if e.captureRing != nil {
		e.captureRing.Reset()
	}
	e.ringMu.Unlock()
	e.firstCapture = true
	e.errorPosted = false

	if e.ctx != nil {
		if err := e.ctx.Start(); err != nil {
			if e.rb.continueOnErr {
				e.armFallback(0)
			}
		}
	}
	return nil
}

func (e *winEngine) handleStop() error {
	e.disarmFallback()
	if e.ctx != nil {
		_ = e.ctx.Stop()
	}
	e.ringMu.Lock()
	if e.renderRing != nil {
		e.renderRing.Reset()
	}
	if e.captureRing != nil {
		e.captureRing.Reset()
	}
	e.ringMu.Unlock()
	return nil
}

func (e *winEngine) handleRelease() error {
	e.disarmFallback()
	e.ringMu.Lock()
	e.renderRing = nil
	e.captureRing = nil
	e.ringMu.Unlock()
	return nil
}

func (e *winEngine) handleClose() error {
	e.disarmFallback()
	if e.ctx != nil {
		e.ctx.Close()
		e.ctx = nil
		e.generation++
	}
	return nil
}

// handleSetDevice only updates the stored device identity; the
// asynchronous rebuild itself is kicked off by the facade layer (which
// holds devicemanager.Manager.CreateCtxAsync) and re-enters here as a
// later UpdateDevice command via Rbuf.PostUpdateDevice.
func (e *winEngine) handleSetDevice(endpointID string) error {
	e.desc.EndpointID = endpointID
	return nil
}

func (e *winEngine) handleUpdateDevice(ctx *rbufctx.Ctx, err error) error {
	if err != nil {
		if e.rb.continueOnErr {
			e.armFallback(0)
		}
		return err
	}
	wasRunning := e.ctx != nil && e.rb.State() == StateStarted
	e.disarmFallback()
	if e.ctx != nil {
		e.ctx.Stop()
		e.ctx.Close()
	}
	e.ctx = ctx
	e.generation++

	if wasRunning {
		_ = ctx.Start()
	}
	return nil
}

func (e *winEngine) handleUpdateVolume(volume float32, mute bool) error {
	e.caps.Muted = mute
	e.caps.Volume = volume
	if e.ctx == nil {
		return nil
	}
	if mute {
		return e.ctx.SetVolume(0)
	}
	return e.ctx.SetVolume(volume)
}

func (e *winEngine) armFallback(latencyMs uint32) {
	if !e.rb.continueOnErr {
		return
	}
	period := time.Duration(latencyMs) * time.Millisecond
	if period <= 0 {
		period = 20 * time.Millisecond
	}
	e.fallbackEnabled = true
	if e.fallbackTicker != nil {
		e.fallbackTicker.Stop()
	}
	e.fallbackTicker = time.NewTicker(period)
}

func (e *winEngine) disarmFallback() {
	e.fallbackEnabled = false
	if e.fallbackTicker != nil {
		e.fallbackTicker.Stop()
		e.fallbackTicker = nil
	}
}

// fallbackTick approximates wall-clock progress via the ticker period
// when the device path has no live I/O: render discards what would
// have played, capture inserts silence, keeping the pipeline clock
// moving rather than stalling downstream consumers.
func (e *winEngine) fallbackTick() {
	if e.caps.SegmentSize == 0 {
		return
	}
	e.ringMu.Lock()
	defer e.ringMu.Unlock()
	switch e.desc.Class {
	case rbufctx.ClassRender:
		if e.renderRing != nil {
			e.renderRing.Discard(e.caps.SegmentSize)
		}
	case rbufctx.ClassCapture:
		if e.captureRing != nil {
			e.captureRing.WriteSilence(e.caps.SegmentSize)
		}
	}
}

// monitorTick detects invalidated devices for non-default endpoints
// where no I/O event would otherwise fire.
func (e *winEngine) monitorTick() {
	if e.ctx == nil || e.errorPosted {
		return
	}
	client := e.ctx.Client()
	if client == nil {
		return
	}
	if _, err := client.GetCurrentPadding(); err != nil {
		if isInvalidated(err) {
			if e.swallowInvalidation() {
				return
			}
			e.errorPosted = true
			e.armFallback(0)
			e.rb.invalidate(err)
		}
	}
}

func isInvalidated(err error) bool {
	h, ok := err.(com.HRESULT)
	return ok && (h == com.AUDCLNT_E_DEVICE_INVALIDATED || h == com.AUDCLNT_E_ENDPOINT_CREATE_FAILED)
}

// swallowInvalidation implements automatic stream routing: for the
// default, non-loopback endpoint, device-invalidated/create-failed
// errors are swallowed since the OS reroutes the stream transparently.
func (e *winEngine) swallowInvalidation() bool {
	return e.desc.EndpointID == "" && !e.desc.Loopback
}

func (e *winEngine) renderTick() {
	if e.ctx == nil || e.ctx.RenderClient() == nil {
		return
	}
	if e.desc.Mode == rbufctx.ModeExclusive {
		e.renderExclusive()
		return
	}
	e.renderShared()
}

func (e *winEngine) renderExclusive() {
	period := e.ctx.PeriodFrames()
	blockAlign := int(e.ctx.DeviceInfo.BlockAlign())
	need := int(period) * blockAlign
	staged := e.stageRender(need)

	data, err := e.ctx.RenderClient().GetBuffer(period)
	if err != nil {
		e.onRenderError(err)
		return
	}
	flags := uint32(0)
	if len(staged) < need {
		flags = com.BufferFlagsSilent
	} else {
		copyToDevice(data, staged)
	}
	if err := e.ctx.RenderClient().ReleaseBuffer(period, flags); err != nil {
		e.onRenderError(err)
	}
}

func (e *winEngine) renderShared() {
	client := e.ctx.Client()
	padding, err := client.GetCurrentPadding()
	if err != nil {
		e.onRenderError(err)
		return
	}
	writable := e.ctx.BufferFrames() - padding
	if writable == 0 {
		return
	}
	blockAlign := int(e.ctx.DeviceInfo.BlockAlign())
	staged := e.stageRender(int(writable) * blockAlign)

	data, err := e.ctx.RenderClient().GetBuffer(writable)
	if err != nil {
		e.onRenderError(err)
		return
	}
	flags := uint32(0)
	if len(staged) == 0 {
		flags = com.BufferFlagsSilent
	} else {
		copyToDevice(data, staged)
	}
	if err := e.ctx.RenderClient().ReleaseBuffer(writable, flags); err != nil {
		e.onRenderError(err)
	}
}

// stageRender pulls up to n bytes of host audio from the render ring,
// converts and S24-in-32 repacks as needed, and returns the device-
// format bytes ready to copy into the WASAPI buffer. A short read (less
// than n) signals an underrun to the caller, which releases the period
// as silent instead of partially filling it.
func (e *winEngine) stageRender(n int) []byte {
	if cap(e.converterStage) < n {
		e.converterStage = make([]byte, n)
	}
	host := e.converterStage[:n]

	e.ringMu.Lock()
	got := 0
	if e.renderRing != nil {
		got = e.renderRing.Read(host)
	}
	e.ringMu.Unlock()
	if got < n {
		return nil
	}

	if e.ctx.Converter != nil {
		return e.ctx.Converter.Convert(host)
	}
	if e.ctx.DeviceInfo.IsS24In32() {
		rbufctx.RepackRenderS24In32(host, host)
	}
	return host
}

func (e *winEngine) onRenderError(err error) {
	if e.rb.continueOnErr {
		e.armFallback(0)
	}
	e.rb.invalidate(err)
}

func (e *winEngine) captureTick() {
	if e.ctx == nil || e.ctx.CaptureClient() == nil {
		return
	}
	data, numFrames, flags, devicePos, _, err := e.ctx.CaptureClient().GetBuffer()
	if err != nil {
		if isInvalidated(err) && e.swallowInvalidation() {
			return
		}
		e.onRenderError(err)
		return
	}
	if numFrames == 0 {
		return
	}

	blockAlign := int(e.ctx.DeviceInfo.BlockAlign())
	e.ringMu.Lock()
	if e.captureRing != nil {
		if e.firstCapture {
			e.expectedDevicePos = devicePos
			e.firstCapture = false
		}
		if devicePos > e.expectedDevicePos {
			gap := int(devicePos-e.expectedDevicePos) * blockAlign
			e.captureRing.WriteSilence(gap)
		}
		e.expectedDevicePos = devicePos + uint64(numFrames)

		silent := flags&com.CaptureFlagsSilent != 0 || e.caps.Muted ||
			(e.desc.LoopbackSilenceOnMute && e.ctx.Mute())
		if silent {
			e.captureRing.WriteSilence(int(numFrames) * blockAlign)
		} else {
			raw := rawBytes(data, int(numFrames)*blockAlign)
			if e.ctx.DeviceInfo.IsS24In32() && e.ctx.Converter == nil {
				rbufctx.RepackCaptureS24In32(raw, raw)
			}
			if e.ctx.Converter != nil {
				e.captureRing.Write(e.ctx.Converter.Convert(raw))
			} else {
				e.captureRing.Write(raw)
			}
		}
	}
	e.ringMu.Unlock()

	if err := e.ctx.CaptureClient().ReleaseBuffer(numFrames); err != nil {
		e.onRenderError(err)
	}
}

func rawBytes(p unsafe.Pointer, n int) []byte {
	return unsafe.Slice((*byte)(p), n)
}

func copyToDevice(dst unsafe.Pointer, src []byte) {
	copy(unsafe.Slice((*byte)(dst), len(src)), src)
}
