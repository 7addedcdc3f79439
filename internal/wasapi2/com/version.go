//go:build windows

package com

import (
	"syscall"
	"unsafe"
)

var (
	ntdll            = syscall.NewLazyDLL("ntdll.dll")
	procRtlGetVersion = ntdll.NewProc("RtlGetVersion")
)

// osVersionInfo mirrors OSVERSIONINFOEXW; only the fields callers need
// (build number) are exposed.
type osVersionInfo struct {
	dwOSVersionInfoSize uint32
	dwMajorVersion      uint32
	dwMinorVersion      uint32
	dwBuildNumber       uint32
	dwPlatformId        uint32
	szCSDVersion        [128]uint16
	wServicePackMajor   uint16
	wServicePackMinor   uint16
	wSuiteMask          uint16
	wProductType        byte
	wReserved           byte
}

// OSBuildNumber returns the running kernel's build number via
// RtlGetVersion, bypassing the GetVersionEx application-compatibility
// shim that misreports anything past Windows 8 unless the calling
// binary carries a matching manifest.
func OSBuildNumber() (uint32, error) {
	var info osVersionInfo
	info.dwOSVersionInfoSize = uint32(unsafe.Sizeof(info))
	r, _, _ := procRtlGetVersion.Call(uintptr(unsafe.Pointer(&info)))
	if r != 0 {
		return 0, HRESULT(uint32(r))
	}
	return info.dwBuildNumber, nil
}
