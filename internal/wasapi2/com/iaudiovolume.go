//go:build windows

package com

import (
	"runtime"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

// StreamVolume wraps IAudioStreamVolume, used for per-channel stream
// attenuation distinct from the endpoint hardware volume.
type StreamVolume struct {
	Unknown
}

type streamVolumeVtbl struct {
	unknownVtbl
	GetChannelCount uintptr
	SetChannelVolume uintptr
	GetChannelVolume uintptr
	SetAllVolumes   uintptr
	GetAllVolumes   uintptr
}

func (v *StreamVolume) vtbl() *streamVolumeVtbl {
	return (*streamVolumeVtbl)(unsafe.Pointer(v.Unknown.vtbl))
}

func (v *StreamVolume) GetChannelCount() (uint32, error) {
	var n uint32
	r, _, _ := syscall.Syscall(v.vtbl().GetChannelCount, 2, uintptr(unsafe.Pointer(v)), uintptr(unsafe.Pointer(&n)), 0)
	if err := Check(r); err != nil {
		return 0, err
	}
	return n, nil
}

// SetAllVolumes applies per-channel linear gain (0.0-1.0); len(volumes)
// must equal GetChannelCount().
func (v *StreamVolume) SetAllVolumes(volumes []float32) error {
	r, _, _ := syscall.Syscall(v.vtbl().SetAllVolumes, 3,
		uintptr(unsafe.Pointer(v)), uintptr(len(volumes)), uintptr(unsafe.Pointer(&volumes[0])))
	runtime.KeepAlive(volumes)
	return Check(r)
}

func (v *StreamVolume) GetAllVolumes(n uint32) ([]float32, error) {
	volumes := make([]float32, n)
	r, _, _ := syscall.Syscall(v.vtbl().GetAllVolumes, 3,
		uintptr(unsafe.Pointer(v)), uintptr(n), uintptr(unsafe.Pointer(&volumes[0])))
	if err := Check(r); err != nil {
		return nil, err
	}
	return volumes, nil
}

// EndpointVolume wraps IAudioEndpointVolume, the hardware/session-wide
// volume and mute control obtained via IMMDevice.Activate rather than
// through an open IAudioClient.
type EndpointVolume struct {
	Unknown
}

type endpointVolumeVtbl struct {
	unknownVtbl
	RegisterControlChangeNotify   uintptr
	UnregisterControlChangeNotify uintptr
	GetChannelCount                uintptr
	SetMasterVolumeLevel            uintptr
	SetMasterVolumeLevelScalar       uintptr
	GetMasterVolumeLevel             uintptr
	GetMasterVolumeLevelScalar        uintptr
	SetChannelVolumeLevel            uintptr
	SetChannelVolumeLevelScalar       uintptr
	GetChannelVolumeLevel            uintptr
	GetChannelVolumeLevelScalar       uintptr
	SetMute                          uintptr
	GetMute                          uintptr
	GetVolumeStepInfo                uintptr
	VolumeStepUp                     uintptr
	VolumeStepDown                   uintptr
	QueryHardwareSupport              uintptr
	GetVolumeRange                    uintptr
}

func (v *EndpointVolume) vtbl() *endpointVolumeVtbl {
	return (*endpointVolumeVtbl)(unsafe.Pointer(v.Unknown.vtbl))
}

func (v *EndpointVolume) GetMasterVolumeLevelScalar() (float32, error) {
	var f float32
	r, _, _ := syscall.Syscall(v.vtbl().GetMasterVolumeLevelScalar, 2, uintptr(unsafe.Pointer(v)), uintptr(unsafe.Pointer(&f)), 0)
	if err := Check(r); err != nil {
		return 0, err
	}
	return f, nil
}

// SetMasterVolumeLevelScalar sets linear gain (0.0-1.0); the event
// context GUID lets callers recognize their own change notifications and
// suppress feedback loops.
func (v *EndpointVolume) SetMasterVolumeLevelScalar(level float32, eventCtx *windows.GUID) error {
	r, _, _ := syscall.Syscall(v.vtbl().SetMasterVolumeLevelScalar, 3,
		uintptr(unsafe.Pointer(v)), uintptr(mathFloat32bits(level)), uintptr(unsafe.Pointer(eventCtx)))
	runtime.KeepAlive(eventCtx)
	return Check(r)
}

func (v *EndpointVolume) GetMute() (bool, error) {
	var m int32
	r, _, _ := syscall.Syscall(v.vtbl().GetMute, 2, uintptr(unsafe.Pointer(v)), uintptr(unsafe.Pointer(&m)), 0)
	if err := Check(r); err != nil {
		return false, err
	}
	return m != 0, nil
}

func (v *EndpointVolume) SetMute(mute bool, eventCtx *windows.GUID) error {
	var m uintptr
	if mute {
		m = 1
	}
	r, _, _ := syscall.Syscall(v.vtbl().SetMute, 3, uintptr(unsafe.Pointer(v)), m, uintptr(unsafe.Pointer(eventCtx)))
	runtime.KeepAlive(eventCtx)
	return Check(r)
}

// RegisterControlChangeNotify registers an IAudioEndpointVolumeCallback
// COM object (see rbufctx's newVolumeCallback).
func (v *EndpointVolume) RegisterControlChangeNotify(callback unsafe.Pointer) error {
	r, _, _ := syscall.Syscall(v.vtbl().RegisterControlChangeNotify, 2, uintptr(unsafe.Pointer(v)), uintptr(callback), 0)
	return Check(r)
}

func (v *EndpointVolume) UnregisterControlChangeNotify(callback unsafe.Pointer) error {
	r, _, _ := syscall.Syscall(v.vtbl().UnregisterControlChangeNotify, 2, uintptr(unsafe.Pointer(v)), uintptr(callback), 0)
	return Check(r)
}

func mathFloat32bits(f float32) uint32 {
	return *(*uint32)(unsafe.Pointer(&f))
}
