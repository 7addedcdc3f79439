package wasapi2

// LoopbackMode selects process-loopback targeting when Loopback is set
// on a source. Mirrors rbufctx.LoopbackMode so callers of this package
// never need to import the internal tree directly.
type LoopbackMode int

const (
	LoopbackDefault LoopbackMode = iota
	LoopbackIncludeProcessTree
	LoopbackExcludeProcessTree
)

// Dispatcher lets a host hand this package a UI-thread dispatcher for
// activation on platforms that require COM activation to happen on a
// specific thread. Most callers can leave this nil; Activate already
// runs on its own apartment thread.
type Dispatcher interface {
	Invoke(func())
}

// Properties is the recognised configuration bag for a sink or source,
// matching the property table in the external-interfaces section.
type Properties struct {
	// Device is the endpoint identifier; empty selects the system
	// default render or capture device.
	Device string

	// LowLatency prefers IAudioClient3's shared-stream engine period,
	// or the minimum exclusive-mode period when Exclusive is set.
	LowLatency bool

	// Mute gates output by multiplying by zero at the stream-volume
	// layer.
	Mute bool

	// Volume is linear gain in [0, 1] applied to every channel.
	Volume float32

	// Loopback opens the render endpoint named by Device for loopback
	// capture instead of ordinary capture. Source-only.
	Loopback bool

	// LoopbackMode selects whole-system, include-tree or exclude-tree
	// process loopback. Source-only, only meaningful with Loopback.
	LoopbackMode LoopbackMode

	// LoopbackTargetPID is the target process for process-scoped
	// loopback. Zero means whole-system loopback.
	LoopbackTargetPID uint32

	// LoopbackSilenceOnDeviceMute emits silence while the render
	// endpoint backing a loopback capture is muted, rather than
	// passing through whatever WASAPI still delivers.
	LoopbackSilenceOnDeviceMute bool

	// ContinueOnError degrades an open or I/O failure to a warning and
	// a fallback wall-clock instead of a fatal error.
	ContinueOnError bool

	// Exclusive requests exclusive-mode access to the endpoint.
	Exclusive bool

	// Dispatcher is an optional UI-thread dispatcher used for
	// activation on platforms that require it.
	Dispatcher Dispatcher

	// AllowDummyRender primes an otherwise-idle render endpoint with
	// silence so loopback capture keeps producing data.
	AllowDummyRender bool
}

// clampVolume clamps Volume to [0, 1] since a caller-supplied gain outside that
// range would otherwise silently clip or invert at the device layer.
func (p Properties) clampVolume() float32 {
	switch {
	case p.Volume < 0:
		return 0
	case p.Volume > 1:
		return 1
	default:
		return p.Volume
	}
}
