//go:build windows

package com

import (
	"runtime"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	ole32                = windows.NewLazySystemDLL("ole32")
	procCoCreateInstance = ole32.NewProc("CoCreateInstance")
)

// CoCreateInstance wraps the Win32 call of the same name. rclsid/riid are
// kept alive across the syscall via runtime.KeepAlive since the Go
// garbage collector has no visibility into the pointers handed to the
// OS, the same discipline the teacher's vendored oto driver follows.
func CoCreateInstance(rclsid *windows.GUID, clsCtx uint32, riid *windows.GUID) (unsafe.Pointer, error) {
	var v unsafe.Pointer
	r, _, _ := procCoCreateInstance.Call(
		uintptr(unsafe.Pointer(rclsid)),
		0,
		uintptr(clsCtx),
		uintptr(unsafe.Pointer(riid)),
		uintptr(unsafe.Pointer(&v)),
	)
	runtime.KeepAlive(rclsid)
	runtime.KeepAlive(riid)
	if err := Check(r); err != nil {
		return nil, err
	}
	return v, nil
}
