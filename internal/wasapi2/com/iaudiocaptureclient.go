//go:build windows

package com

import (
	"syscall"
	"unsafe"
)

// CaptureClient wraps IAudioCaptureClient.
type CaptureClient struct {
	Unknown
}

type captureClientVtbl struct {
	unknownVtbl
	GetBuffer         uintptr
	ReleaseBuffer     uintptr
	GetNextPacketSize uintptr
}

func (c *CaptureClient) vtbl() *captureClientVtbl {
	return (*captureClientVtbl)(unsafe.Pointer(c.Unknown.vtbl))
}

const (
	CaptureFlagsSilent      uint32 = 0x2
	CaptureFlagsDataDiscontinuity uint32 = 0x1
	CaptureFlagsTimestampError    uint32 = 0x4
)

// GetBuffer returns the captured data pointer, the frame count, the
// AUDCLNT_BUFFERFLAGS bitmask, the device position and the QPC timestamp.
func (c *CaptureClient) GetBuffer() (data unsafe.Pointer, numFrames uint32, flags uint32, devicePosition uint64, qpcPosition uint64, err error) {
	r, _, _ := syscall.Syscall9(c.vtbl().GetBuffer, 6,
		uintptr(unsafe.Pointer(c)), uintptr(unsafe.Pointer(&data)), uintptr(unsafe.Pointer(&numFrames)),
		uintptr(unsafe.Pointer(&flags)), uintptr(unsafe.Pointer(&devicePosition)), uintptr(unsafe.Pointer(&qpcPosition)), 0, 0, 0)
	if e := Check(r); e != nil {
		return nil, 0, 0, 0, 0, e
	}
	return data, numFrames, flags, devicePosition, qpcPosition, nil
}

func (c *CaptureClient) ReleaseBuffer(numFrames uint32) error {
	r, _, _ := syscall.Syscall(c.vtbl().ReleaseBuffer, 2, uintptr(unsafe.Pointer(c)), uintptr(numFrames), 0)
	return Check(r)
}

func (c *CaptureClient) GetNextPacketSize() (uint32, error) {
	var n uint32
	r, _, _ := syscall.Syscall(c.vtbl().GetNextPacketSize, 2, uintptr(unsafe.Pointer(c)), uintptr(unsafe.Pointer(&n)), 0)
	if err := Check(r); err != nil {
		return 0, err
	}
	return n, nil
}
