//go:build windows

package rbufctx

import (
	"log/slog"
	"unsafe"

	"github.com/pkg/errors"

	"github.com/go-musicfox/wasapi2/internal/wasapi2/com"
	"github.com/go-musicfox/wasapi2/internal/wasapi2/waveformat"
)

const defaultMinPeriodMs = 3

// Ctx is the fully-initialized per-activation WASAPI state: the audio
// client, render-or-capture client, optional stream/endpoint volume,
// and optional dummy render client driving loopback silence.
type Ctx struct {
	log *slog.Logger

	Desc      Desc
	HostInfo  waveformat.Format
	DeviceInfo waveformat.Format
	Converter *Converter

	client       *com.AudioClient3
	renderClient *com.RenderClient
	captureClient *com.CaptureClient
	streamVolume *com.StreamVolume
	endpointVolume *com.EndpointVolume
	volumeCallback *volumeCallback

	dummyClient       *com.AudioClient3
	dummyRenderClient *com.RenderClient

	eventHandle      uintptr
	dummyEventHandle uintptr

	bufferFrames uint32
	periodFrames uint32

	shared sharedState
}

// Open builds a Ctx from an already-activated IAudioClient3 (obtained
// via the activate package or IMMDevice.Activate), following the
// sequence in the RbufCtx initialisation spec.
func Open(log *slog.Logger, client *com.AudioClient3, desc Desc, cached []waveformat.Format) (*Ctx, error) {
	if log == nil {
		log = slog.Default()
	}
	ctx := &Ctx{log: log.With("component", "rbufctx"), Desc: desc, client: client}

	formatSet, err := ctx.probeFormatSet(cached)
	if err != nil {
		return nil, errors.Wrap(err, "rbufctx: probe format set")
	}

	chosen := selectFormat(formatSet, desc.RequestedFormat)
	ctx.HostInfo = desc.RequestedFormat
	ctx.DeviceInfo = chosen
	if !ctx.HostInfo.Equal(ctx.DeviceInfo) {
		ctx.Converter = NewConverter(ctx.HostInfo, ctx.DeviceInfo)
	}

	if err := ctx.initializeClient(chosen); err != nil {
		return nil, errors.Wrap(err, "rbufctx: initialize client")
	}

	if err := ctx.bindEvent(); err != nil {
		return nil, errors.Wrap(err, "rbufctx: bind event")
	}

	if err := ctx.acquireServiceInterfaces(); err != nil {
		return nil, errors.Wrap(err, "rbufctx: acquire service interfaces")
	}

	if err := ctx.openEndpointVolume(); err != nil {
		ctx.log.Warn("endpoint volume activation failed", "error", err)
	}

	if err := ctx.prefillOrWarm(); err != nil {
		return nil, errors.Wrap(err, "rbufctx: prefill/warm")
	}

	return ctx, nil
}

func (c *Ctx) probeFormatSet(cached []waveformat.Format) ([]waveformat.Format, error) {
	if c.Desc.Mode == ModeExclusive {
		if len(cached) > 0 {
			return cached, nil
		}
		return probeExclusiveFormats(&c.client.AudioClient), nil
	}

	wire, err := c.client.GetMixFormat()
	if err != nil {
		return []waveformat.Format{defaultSharedFormat()}, nil
	}
	return []waveformat.Format{waveformat.FromWire(wire, wire.FormatTag == com.WAVE_FORMAT_EXTENSIBLE)}, nil
}

func (c *Ctx) streamFlags() uint32 {
	flags := com.StreamFlagsEventCallback | com.StreamFlagsNoPersist
	if c.Desc.Class == ClassCapture && c.Desc.Loopback {
		flags |= com.StreamFlagsLoopback
	}
	if c.Desc.Mode == ModeShared && c.Converter != nil {
		flags |= com.StreamFlagsAutoConvertPCM | com.StreamFlagsSrcDefaultQuality
	}
	return flags
}

func (c *Ctx) initializeClient(format waveformat.Format) error {
	wire := waveformat.ToWire(format)

	if c.Desc.Mode == ModeExclusive {
		return c.initializeExclusive(&wire)
	}
	return c.initializeShared(&wire)
}

func (c *Ctx) initializeExclusive(wire *com.WaveFormatExtensible) error {
	if closest, err := c.client.IsFormatSupported(com.ShareModeExclusive, wire); err != nil {
		return errors.Wrap(err, "IsFormatSupported(EXCLUSIVE)")
	} else if closest != nil {
		*wire = *closest
	}

	minPeriod, _, err := c.client.GetBufferSizeLimits(wire, true)
	if err != nil {
		minPeriod = defaultMinPeriodMs * com.ReftimesPerSec / 1000
	}
	target := com.ReferenceTime(c.Desc.LatencyTime) * com.ReftimesPerSec / 1000
	if target < minPeriod {
		target = minPeriod
	}

	err = c.client.Initialize(com.ShareModeExclusive, c.streamFlags(), target, target, wire, nil)
	if isBufferSizeNotAligned(err) {
		bufferSize, szErr := c.client.GetBufferSize()
		if szErr != nil {
			return errors.Wrap(err, "exclusive Initialize (unaligned, could not read aligned size)")
		}
		aligned := com.ReferenceTime(bufferSize) * com.ReftimesPerSec / com.ReferenceTime(wire.SamplesPerSec)
		err = c.client.Initialize(com.ShareModeExclusive, c.streamFlags(), aligned, aligned, wire, nil)
	}
	if err != nil {
		return errors.Wrap(err, "exclusive Initialize")
	}

	size, err := c.client.GetBufferSize()
	if err != nil {
		return errors.Wrap(err, "GetBufferSize")
	}
	c.bufferFrames = size
	c.periodFrames = size
	return nil
}

func (c *Ctx) initializeShared(wire *com.WaveFormatExtensible) error {
	if c.Desc.LowLatency {
		_, fundamental, _, _, err := c.client.GetSharedModeEnginePeriod(wire)
		if err == nil {
			if err := c.client.InitializeSharedAudioStream(c.streamFlags(), fundamental, wire, nil); err == nil {
				size, szErr := c.client.GetBufferSize()
				if szErr == nil {
					c.bufferFrames = size
					c.periodFrames = fundamental
					return nil
				}
			}
		}
	}

	bufDuration := com.ReferenceTime(c.Desc.LatencyTime) * com.ReftimesPerSec / 1000
	if bufDuration == 0 {
		bufDuration = 20 * com.ReftimesPerSec / 1000
	}
	if err := c.client.Initialize(com.ShareModeShared, c.streamFlags(), bufDuration, 0, wire, nil); err != nil {
		return errors.Wrap(err, "shared Initialize")
	}

	size, err := c.client.GetBufferSize()
	if err != nil {
		return errors.Wrap(err, "GetBufferSize")
	}
	c.bufferFrames = size
	_, minPeriod, err := c.client.GetDevicePeriod()
	if err == nil {
		c.periodFrames = uint32(int64(minPeriod) * int64(wire.SamplesPerSec) / int64(com.ReftimesPerSec))
	} else {
		c.periodFrames = size
	}
	return nil
}

func isBufferSizeNotAligned(err error) bool {
	h, ok := err.(com.HRESULT)
	return ok && h == com.AUDCLNT_E_BUFFER_SIZE_NOT_ALIGNED
}

func (c *Ctx) bindEvent() error {
	h, err := newAutoResetEvent()
	if err != nil {
		return err
	}
	c.eventHandle = h
	return c.client.SetEventHandle(toWindowsHandle(h))
}

func (c *Ctx) acquireServiceInterfaces() error {
	switch c.Desc.Class {
	case ClassRender:
		iface, err := c.client.GetService(&com.IID_IAudioRenderClient)
		if err != nil {
			return errors.Wrap(err, "GetService(IAudioRenderClient)")
		}
		c.renderClient = (*com.RenderClient)(iface)
	case ClassCapture:
		iface, err := c.client.GetService(&com.IID_IAudioCaptureClient)
		if err != nil {
			return errors.Wrap(err, "GetService(IAudioCaptureClient)")
		}
		c.captureClient = (*com.CaptureClient)(iface)
	}

	if c.Desc.Mode == ModeShared {
		if iface, err := c.client.GetService(&com.IID_IAudioStreamVolume); err == nil {
			c.streamVolume = (*com.StreamVolume)(iface)
		}
	}
	return nil
}

// AttachDummyRender wires in a second IAudioClient3 activated by the
// caller against the same endpoint, used to inject loopback silence on
// an otherwise-idle render device. Only devicemanager calls this: it
// performs the second activation by endpoint id, Ctx itself only ever
// sees an already-activated client.
func (c *Ctx) AttachDummyRender(client *com.AudioClient3, renderClient *com.RenderClient, eventHandle uintptr) {
	c.dummyClient = client
	c.dummyRenderClient = renderClient
	c.dummyEventHandle = eventHandle
}

func (c *Ctx) openEndpointVolume() error {
	iface, err := c.client.GetService(&com.IID_IAudioEndpointVolume)
	if err != nil {
		return err
	}
	c.endpointVolume = (*com.EndpointVolume)(iface)

	cb := newVolumeCallback(&c.shared)
	if err := c.endpointVolume.RegisterControlChangeNotify(unsafe.Pointer(cb)); err != nil {
		return err
	}
	c.volumeCallback = cb

	if muted, err := c.endpointVolume.GetMute(); err == nil {
		c.shared.muted.Store(muted)
	}
	return nil
}

func (c *Ctx) prefillOrWarm() error {
	switch c.Desc.Class {
	case ClassRender:
		if c.Desc.Mode == ModeExclusive {
			if data, err := c.renderClient.GetBuffer(c.bufferFrames); err == nil {
				_ = data
				return c.renderClient.ReleaseBuffer(c.bufferFrames, com.BufferFlagsSilent)
			}
		} else {
			if data, err := c.renderClient.GetBuffer(c.periodFrames); err == nil {
				_ = data
				return c.renderClient.ReleaseBuffer(c.periodFrames, com.BufferFlagsSilent)
			}
		}
	case ClassCapture:
		if err := c.client.Start(); err == nil {
			c.client.Stop()
			c.client.Reset()
		}
	}
	return nil
}

// Start begins I/O on the main client and, if present, the dummy render
// client.
func (c *Ctx) Start() error {
	if err := c.client.Start(); err != nil {
		return err
	}
	if c.dummyClient != nil {
		_ = c.dummyClient.Start()
	}
	return nil
}

// Stop stops and resets both clients.
func (c *Ctx) Stop() error {
	err := c.client.Stop()
	c.client.Reset()
	if c.dummyClient != nil {
		c.dummyClient.Stop()
		c.dummyClient.Reset()
	}
	return err
}

// SetVolume broadcasts v to every channel via IAudioStreamVolume, or
// falls back to the endpoint volume when no stream volume is available
// (exclusive mode has no IAudioStreamVolume).
func (c *Ctx) SetVolume(v float32) error {
	c.shared.setVolume(v)
	if c.streamVolume != nil {
		n, err := c.streamVolume.GetChannelCount()
		if err != nil {
			return err
		}
		volumes := make([]float32, n)
		for i := range volumes {
			volumes[i] = v
		}
		return c.streamVolume.SetAllVolumes(volumes)
	}
	if c.endpointVolume != nil {
		return c.endpointVolume.SetMasterVolumeLevelScalar(v, nil)
	}
	return nil
}

// Mute reports the last-known endpoint mute state without blocking.
func (c *Ctx) Mute() bool {
	return c.shared.muted.Load()
}

// Close releases every owned interface.
func (c *Ctx) Close() {
	if c.volumeCallback != nil && c.endpointVolume != nil {
		c.endpointVolume.UnregisterControlChangeNotify(unsafe.Pointer(c.volumeCallback))
	}
	c.endpointVolume.Release()
	c.streamVolume.Release()
	c.renderClient.Release()
	c.captureClient.Release()
	c.dummyRenderClient.Release()
	if c.dummyClient != nil {
		c.dummyClient.Release()
	}
	c.client.Release()
	closeHandle(c.eventHandle)
	closeHandle(c.dummyEventHandle)
}

// BufferFrames/PeriodFrames expose the device buffer geometry used by
// the Rbuf core to size ring segments.
func (c *Ctx) BufferFrames() uint32 { return c.bufferFrames }
func (c *Ctx) PeriodFrames() uint32 { return c.periodFrames }
func (c *Ctx) EventHandle() uintptr { return c.eventHandle }
func (c *Ctx) RenderClient() *com.RenderClient   { return c.renderClient }
func (c *Ctx) CaptureClient() *com.CaptureClient { return c.captureClient }

// DummyEventHandle returns the dummy render client's event handle, or 0
// if no dummy render client is attached. The Rbuf core relays this
// alongside the primary event so an idle loopback capture's companion
// render stream keeps getting re-primed.
func (c *Ctx) DummyEventHandle() uintptr { return c.dummyEventHandle }

// DummyRender re-primes the dummy render client with a period's worth
// of silence, ported as-is from the original's periodic dummy re-fill:
// AUDCLNT_E_BUFFER_TOO_LARGE means the buffer is already full, which is
// the expected steady-state outcome between fires of the dummy event,
// not an error.
func (c *Ctx) DummyRender() error {
	if c.dummyRenderClient == nil {
		return nil
	}
	data, err := c.dummyRenderClient.GetBuffer(c.periodFrames)
	if err != nil {
		if isBufferTooLarge(err) {
			return nil
		}
		return err
	}
	_ = data
	return c.dummyRenderClient.ReleaseBuffer(c.periodFrames, com.BufferFlagsSilent)
}

func isBufferTooLarge(err error) bool {
	h, ok := err.(com.HRESULT)
	return ok && h == com.AUDCLNT_E_BUFFER_TOO_LARGE
}

// Client exposes the underlying IAudioClient3, used by the Rbuf engine
// for padding queries and by devicemanager to hand a dummy render
// client's IAudioClient3 to AttachDummyRender.
func (c *Ctx) Client() *com.AudioClient3 { return c.client }
