//go:build windows

package com

import (
	"syscall"
	"unsafe"
)

// RenderClient wraps IAudioRenderClient.
type RenderClient struct {
	Unknown
}

type renderClientVtbl struct {
	unknownVtbl
	GetBuffer     uintptr
	ReleaseBuffer uintptr
}

func (c *RenderClient) vtbl() *renderClientVtbl {
	return (*renderClientVtbl)(unsafe.Pointer(c.Unknown.vtbl))
}

// GetBuffer returns a pointer to numFrames frames of render buffer.
func (c *RenderClient) GetBuffer(numFrames uint32) (unsafe.Pointer, error) {
	var p unsafe.Pointer
	r, _, _ := syscall.Syscall(c.vtbl().GetBuffer, 3, uintptr(unsafe.Pointer(c)), uintptr(numFrames), uintptr(unsafe.Pointer(&p)))
	if err := Check(r); err != nil {
		return nil, err
	}
	return p, nil
}

const (
	BufferFlagsSilent uint32 = 0x2
)

func (c *RenderClient) ReleaseBuffer(numFrames uint32, flags uint32) error {
	r, _, _ := syscall.Syscall(c.vtbl().ReleaseBuffer, 3, uintptr(unsafe.Pointer(c)), uintptr(numFrames), uintptr(flags))
	return Check(r)
}
