//go:build !windows

package rbufctx

import (
	"github.com/pkg/errors"

	"github.com/go-musicfox/wasapi2/internal/wasapi2/waveformat"
)

// ErrUnsupportedPlatform is returned by every Ctx operation on
// non-Windows builds.
var ErrUnsupportedPlatform = errors.New("rbufctx: unsupported platform")

// Ctx is an empty stand-in on non-Windows builds; rbufctx is a
// Windows-only WASAPI state holder.
type Ctx struct {
	DeviceInfo waveformat.Format
}

func (c *Ctx) Start() error     { return ErrUnsupportedPlatform }
func (c *Ctx) Stop() error      { return ErrUnsupportedPlatform }
func (c *Ctx) SetVolume(float32) error { return ErrUnsupportedPlatform }
func (c *Ctx) Mute() bool       { return false }
func (c *Ctx) Close()           {}
func (c *Ctx) BufferFrames() uint32 { return 0 }
func (c *Ctx) PeriodFrames() uint32 { return 0 }
