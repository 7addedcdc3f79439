//go:build windows

package com

import (
	"runtime"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

type ReferenceTime int64

const ReftimesPerSec = 10000000

type ShareMode int32

const (
	ShareModeShared    ShareMode = 0
	ShareModeExclusive ShareMode = 1
)

const (
	StreamFlagsEventCallback   uint32 = 0x00040000
	StreamFlagsNoPersist       uint32 = 0x00080000
	StreamFlagsAutoConvertPCM uint32 = 0x80000000
	StreamFlagsSrcDefaultQuality uint32 = 0x08000000
	StreamFlagsLoopback        uint32 = 0x00020000
)

// AudioClient wraps IAudioClient/IAudioClient2 (the two share a vtable
// prefix; IAudioClient3's extra methods are appended in
// iaudioclient3.go).
type AudioClient struct {
	Unknown
}

type audioClientVtbl struct {
	unknownVtbl
	Initialize          uintptr
	GetBufferSize       uintptr
	GetStreamLatency    uintptr
	GetCurrentPadding   uintptr
	IsFormatSupported   uintptr
	GetMixFormat        uintptr
	GetDevicePeriod     uintptr
	Start               uintptr
	Stop                uintptr
	Reset               uintptr
	SetEventHandle      uintptr
	GetService          uintptr
	IsOffloadCapable    uintptr
	SetClientProperties uintptr
	GetBufferSizeLimits uintptr
}

func (c *AudioClient) vtbl() *audioClientVtbl {
	return (*audioClientVtbl)(unsafe.Pointer(c.Unknown.vtbl))
}

func (c *AudioClient) Initialize(shareMode ShareMode, streamFlags uint32, bufferDuration, periodicity ReferenceTime, format *WaveFormatExtensible, sessionGUID *windows.GUID) error {
	r, _, _ := syscall.Syscall9(c.vtbl().Initialize, 7,
		uintptr(unsafe.Pointer(c)), uintptr(shareMode), uintptr(streamFlags),
		uintptr(bufferDuration), uintptr(periodicity),
		uintptr(unsafe.Pointer(format)), uintptr(unsafe.Pointer(sessionGUID)), 0, 0)
	runtime.KeepAlive(format)
	runtime.KeepAlive(sessionGUID)
	return Check(r)
}

func (c *AudioClient) GetBufferSize() (uint32, error) {
	var n uint32
	r, _, _ := syscall.Syscall(c.vtbl().GetBufferSize, 2, uintptr(unsafe.Pointer(c)), uintptr(unsafe.Pointer(&n)), 0)
	if err := Check(r); err != nil {
		return 0, err
	}
	return n, nil
}

func (c *AudioClient) GetCurrentPadding() (uint32, error) {
	var n uint32
	r, _, _ := syscall.Syscall(c.vtbl().GetCurrentPadding, 2, uintptr(unsafe.Pointer(c)), uintptr(unsafe.Pointer(&n)), 0)
	if err := Check(r); err != nil {
		return 0, err
	}
	return n, nil
}

// IsFormatSupported returns (closest, nil) on S_FALSE with a suggested
// closest format, (nil, nil) on S_OK (format accepted as-is), or
// (nil, err) when unsupported with no alternative.
func (c *AudioClient) IsFormatSupported(shareMode ShareMode, format *WaveFormatExtensible) (*WaveFormatExtensible, error) {
	var closest *WaveFormatExtensible
	r, _, _ := syscall.Syscall6(c.vtbl().IsFormatSupported, 4,
		uintptr(unsafe.Pointer(c)), uintptr(shareMode), uintptr(unsafe.Pointer(format)), uintptr(unsafe.Pointer(&closest)), 0, 0)
	runtime.KeepAlive(format)
	h := HRESULT(uint32(r))
	switch {
	case h == S_OK:
		return nil, nil
	case h == S_FALSE:
		var out WaveFormatExtensible
		if closest != nil {
			out = *closest
			windows.CoTaskMemFree(unsafe.Pointer(closest))
		}
		return &out, nil
	default:
		return nil, h
	}
}

func (c *AudioClient) GetMixFormat() (*WaveFormatExtensible, error) {
	var p *WaveFormatExtensible
	r, _, _ := syscall.Syscall(c.vtbl().GetMixFormat, 2, uintptr(unsafe.Pointer(c)), uintptr(unsafe.Pointer(&p)), 0)
	if err := Check(r); err != nil {
		return nil, err
	}
	defer windows.CoTaskMemFree(unsafe.Pointer(p))
	out := *p
	return &out, nil
}

func (c *AudioClient) GetDevicePeriod() (def, min ReferenceTime, err error) {
	r, _, _ := syscall.Syscall(c.vtbl().GetDevicePeriod, 3, uintptr(unsafe.Pointer(c)), uintptr(unsafe.Pointer(&def)), uintptr(unsafe.Pointer(&min)))
	if e := Check(r); e != nil {
		return 0, 0, e
	}
	return def, min, nil
}

func (c *AudioClient) Start() error {
	r, _, _ := syscall.Syscall(c.vtbl().Start, 1, uintptr(unsafe.Pointer(c)), 0, 0)
	return Check(r)
}

func (c *AudioClient) Stop() error {
	r, _, _ := syscall.Syscall(c.vtbl().Stop, 1, uintptr(unsafe.Pointer(c)), 0, 0)
	return Check(r)
}

func (c *AudioClient) Reset() error {
	r, _, _ := syscall.Syscall(c.vtbl().Reset, 1, uintptr(unsafe.Pointer(c)), 0, 0)
	return Check(r)
}

func (c *AudioClient) SetEventHandle(h windows.Handle) error {
	r, _, _ := syscall.Syscall(c.vtbl().SetEventHandle, 2, uintptr(unsafe.Pointer(c)), uintptr(h), 0)
	return Check(r)
}

func (c *AudioClient) GetService(riid *windows.GUID) (unsafe.Pointer, error) {
	var v unsafe.Pointer
	r, _, _ := syscall.Syscall(c.vtbl().GetService, 3, uintptr(unsafe.Pointer(c)), uintptr(unsafe.Pointer(riid)), uintptr(unsafe.Pointer(&v)))
	if err := Check(r); err != nil {
		return nil, err
	}
	return v, nil
}

func (c *AudioClient) GetBufferSizeLimits(format *WaveFormatExtensible, eventDriven bool) (min, max ReferenceTime, err error) {
	var ed uintptr
	if eventDriven {
		ed = 1
	}
	r, _, _ := syscall.Syscall6(c.vtbl().GetBufferSizeLimits, 5,
		uintptr(unsafe.Pointer(c)), uintptr(unsafe.Pointer(format)), ed, uintptr(unsafe.Pointer(&min)), uintptr(unsafe.Pointer(&max)), 0)
	if e := Check(r); e != nil {
		return 0, 0, e
	}
	return min, max, nil
}
