// Package rbuf implements the Rbuf ring buffer core: a single dedicated
// I/O thread and FIFO command queue sitting in front of a rbufctx.Ctx,
// exposing the standard open/acquire/start/stop/release ring-buffer
// contract to callers on any goroutine.
package rbuf

import (
	"github.com/google/uuid"

	"github.com/go-musicfox/wasapi2/internal/wasapi2/rbufctx"
	"github.com/go-musicfox/wasapi2/internal/wasapi2/waveformat"
)

// Kind identifies a command processed by the I/O thread, in the order
// they are documented against the Rbuf command queue.
type Kind int

const (
	CmdOpen Kind = iota
	CmdAcquire
	CmdStart
	CmdStop
	CmdRelease
	CmdClose
	CmdSetDevice
	CmdUpdateDevice
	CmdGetCaps
	CmdUpdateVolume
	CmdShutdown
)

func (k Kind) String() string {
	switch k {
	case CmdOpen:
		return "Open"
	case CmdAcquire:
		return "Acquire"
	case CmdStart:
		return "Start"
	case CmdStop:
		return "Stop"
	case CmdRelease:
		return "Release"
	case CmdClose:
		return "Close"
	case CmdSetDevice:
		return "SetDevice"
	case CmdUpdateDevice:
		return "UpdateDevice"
	case CmdGetCaps:
		return "GetCaps"
	case CmdUpdateVolume:
		return "UpdateVolume"
	case CmdShutdown:
		return "Shutdown"
	default:
		return "Unknown"
	}
}

// AcquireSpec is the caller-requested stream shape passed to Acquire.
type AcquireSpec struct {
	Format       waveformat.Format
	PeriodFrames uint32
}

// command is one entry in the Rbuf's FIFO queue. ID carries a uuid for
// log correlation across the Enumerator/DeviceManager/Rbuf thread
// boundary. result is buffered by one so the I/O thread never blocks
// posting its outcome even if the caller has stopped waiting.
type command struct {
	ID     uuid.UUID
	Kind   Kind
	Desc   rbufctx.Desc
	Spec   AcquireSpec
	Device string
	Ctx    *rbufctx.Ctx
	CtxErr error
	Mute   bool
	Volume float32

	result chan commandResult
}

type commandResult struct {
	Caps rbufctx.Caps
	Err  error
}

func newCommand(kind Kind) *command {
	return &command{ID: uuid.New(), Kind: kind, result: make(chan commandResult, 1)}
}
