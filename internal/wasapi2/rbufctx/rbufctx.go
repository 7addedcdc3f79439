package rbufctx

import (
	"sync/atomic"

	"github.com/go-musicfox/wasapi2/internal/wasapi2/waveformat"
)

// Mode is the WASAPI share mode requested for a context.
type Mode int

const (
	ModeShared Mode = iota
	ModeExclusive
)

// Class is the stream direction.
type Class int

const (
	ClassRender Class = iota
	ClassCapture
)

// LoopbackMode selects process-loopback targeting when Loopback is set.
type LoopbackMode int

const (
	LoopbackDefault LoopbackMode = iota
	LoopbackIncludeProcessTree
	LoopbackExcludeProcessTree
)

// Desc describes the activation DeviceManager is asked to build a
// RbufCtx for.
type Desc struct {
	EndpointID               string
	Class                    Class
	Mode                     Mode
	LowLatency               bool
	Loopback                 bool
	LoopbackMode             LoopbackMode
	LoopbackTargetPID        uint32
	LoopbackSilenceOnMute    bool
	ContinueOnError          bool
	AllowDummyRender         bool
	RequestedFormat          waveformat.Format
	LatencyTime              uint32 // milliseconds
}

// Caps is the currently-known capability/status snapshot returned by
// GetCaps.
type Caps struct {
	Format       waveformat.Format
	SegmentSize  int
	SegTotal     int
	SegLatency   int
	Muted        bool
	Volume       float32
}

// sharedState holds the values read by public getters without going
// through the command queue (spec: "Get-volume / get-mute return cached
// values under an atomic; they never block").
type sharedState struct {
	muted  atomic.Bool
	volume atomic.Uint32 // math.Float32bits
}

func (s *sharedState) setVolume(v float32) {
	s.volume.Store(float32bits(v))
}

func (s *sharedState) getVolume() float32 {
	return float32frombits(s.volume.Load())
}
