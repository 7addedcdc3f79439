//go:build windows

package com

import (
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

// AudioClient2 adds SetClientProperties-era IsOffloadCapable semantics;
// it shares AudioClient's vtable layout exactly (no new slots), so it is
// just a type alias for documentation at call sites that specifically
// requested an IAudioClient2.
type AudioClient2 = AudioClient

// AudioClient3 appends the three IAudioClient3-only methods after the
// full IAudioClient vtable.
type AudioClient3 struct {
	AudioClient
}

type audioClient3Vtbl struct {
	audioClientVtbl
	GetSharedModeEnginePeriod        uintptr
	GetCurrentSharedModeEnginePeriod uintptr
	InitializeSharedAudioStream      uintptr
}

func (c *AudioClient3) vtbl3() *audioClient3Vtbl {
	return (*audioClient3Vtbl)(unsafe.Pointer(c.AudioClient.Unknown.vtbl))
}

// GetSharedModeEnginePeriod returns the default, fundamental, minimum and
// maximum shared-mode engine periods, in frames, for format.
func (c *AudioClient3) GetSharedModeEnginePeriod(format *WaveFormatExtensible) (defaultPeriod, fundamentalPeriod, minPeriod, maxPeriod uint32, err error) {
	r, _, _ := syscall.Syscall9(c.vtbl3().GetSharedModeEnginePeriod, 6,
		uintptr(unsafe.Pointer(c)), uintptr(unsafe.Pointer(format)),
		uintptr(unsafe.Pointer(&defaultPeriod)), uintptr(unsafe.Pointer(&fundamentalPeriod)),
		uintptr(unsafe.Pointer(&minPeriod)), uintptr(unsafe.Pointer(&maxPeriod)), 0, 0, 0)
	if e := Check(r); e != nil {
		return 0, 0, 0, 0, e
	}
	return defaultPeriod, fundamentalPeriod, minPeriod, maxPeriod, nil
}

// InitializeSharedAudioStream is the low-latency entry point used when
// periodInFrames equals the device's fundamental period (see
// rbufctx's low-latency negotiation).
func (c *AudioClient3) InitializeSharedAudioStream(streamFlags uint32, periodInFrames uint32, format *WaveFormatExtensible, sessionGUID *windows.GUID) error {
	r, _, _ := syscall.Syscall6(c.vtbl3().InitializeSharedAudioStream, 5,
		uintptr(unsafe.Pointer(c)), uintptr(streamFlags), uintptr(periodInFrames),
		uintptr(unsafe.Pointer(format)), uintptr(unsafe.Pointer(sessionGUID)), 0)
	return Check(r)
}
