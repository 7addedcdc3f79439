//go:build windows

// Package com holds the raw COM/WASAPI vtable bindings shared by every
// wasapi2 component: GUIDs, the IUnknown base, and the handful of
// interfaces (IMMDeviceEnumerator, IAudioClient2/3, IAudioRenderClient,
// IAudioCaptureClient, IAudioStreamVolume, IAudioEndpointVolume,
// IActivateAudioInterfaceAsyncOperation) the core touches.
//
// The calling convention mirrors the teacher's vendored
// github.com/ebitengine/oto/v3 WASAPI driver: plain syscall.Syscall over
// a *vtbl struct of uintptr fields, no cgo.
package com

import "golang.org/x/sys/windows"

var (
	CLSID_MMDeviceEnumerator = windows.GUID{Data1: 0xbcde0395, Data2: 0xe52f, Data3: 0x467c, Data4: [8]byte{0x8e, 0x3d, 0xc4, 0x57, 0x92, 0x91, 0x69, 0x2e}}

	IID_IMMDeviceEnumerator           = windows.GUID{Data1: 0xa95664d2, Data2: 0x9614, Data3: 0x4f35, Data4: [8]byte{0xa7, 0x46, 0xde, 0x8d, 0xb6, 0x36, 0x17, 0xe6}}
	IID_IMMNotificationClient         = windows.GUID{Data1: 0x7991eec9, Data2: 0x7e89, Data3: 0x4d85, Data4: [8]byte{0x83, 0x90, 0x6c, 0x70, 0x3c, 0xec, 0x60, 0xc0}}
	IID_IAudioClient                  = windows.GUID{Data1: 0x1cb9ad4c, Data2: 0xdbfa, Data3: 0x4c32, Data4: [8]byte{0xb1, 0x78, 0xc2, 0xf5, 0x68, 0xa7, 0x03, 0xb2}}
	IID_IAudioClient2                 = windows.GUID{Data1: 0x726778cd, Data2: 0xf60a, Data3: 0x4eda, Data4: [8]byte{0x82, 0xde, 0xe4, 0x76, 0x10, 0xcd, 0x78, 0xaa}}
	IID_IAudioClient3                 = windows.GUID{Data1: 0x7ed4ee07, Data2: 0x8e67, Data3: 0x4cd4, Data4: [8]byte{0x8c, 0x1a, 0x2b, 0x7a, 0x59, 0x87, 0xad, 0x42}}
	IID_IAudioRenderClient            = windows.GUID{Data1: 0xf294acfc, Data2: 0x3146, Data3: 0x4483, Data4: [8]byte{0xa7, 0xbf, 0xad, 0xdc, 0xa7, 0xc2, 0x60, 0xe2}}
	IID_IAudioCaptureClient           = windows.GUID{Data1: 0xc8adbd64, Data2: 0xe71e, Data3: 0x48a0, Data4: [8]byte{0xa4, 0xde, 0x18, 0x5c, 0x39, 0x5c, 0xd3, 0x17}}
	IID_IAudioStreamVolume            = windows.GUID{Data1: 0x93014887, Data2: 0x242d, Data3: 0x4068, Data4: [8]byte{0x8a, 0x15, 0xcf, 0x5e, 0x93, 0xb9, 0x0f, 0xe3}}
	IID_IAudioEndpointVolume          = windows.GUID{Data1: 0x5cdf2c82, Data2: 0x841e, Data3: 0x4546, Data4: [8]byte{0x97, 0x22, 0x0c, 0xf7, 0x40, 0x78, 0x22, 0x9a}}
	IID_IAudioEndpointVolumeCallback  = windows.GUID{Data1: 0x657804fa, Data2: 0xd6ad, Data3: 0x4496, Data4: [8]byte{0x8a, 0x60, 0x35, 0x27, 0x52, 0xaf, 0x4f, 0x89}}
	IID_IActivateAudioInterfaceAsyncOperation = windows.GUID{Data1: 0x72a22d78, Data2: 0xcde4, Data3: 0x431d, Data4: [8]byte{0xb8, 0xcc, 0x84, 0x3a, 0x71, 0x19, 0x9b, 0x6d}}
	IID_IActivateAudioInterfaceCompletionHandler = windows.GUID{Data1: 0x41d949ab, Data2: 0x9862, Data3: 0x444a, Data4: [8]byte{0x80, 0xf6, 0xc2, 0x61, 0x33, 0x4d, 0xa5, 0xeb}}

	KSDATAFORMAT_SUBTYPE_PCM        = windows.GUID{Data1: 0x00000001, Data2: 0x0000, Data3: 0x0010, Data4: [8]byte{0x80, 0x00, 0x00, 0xaa, 0x00, 0x38, 0x9b, 0x71}}
	KSDATAFORMAT_SUBTYPE_IEEE_FLOAT = windows.GUID{Data1: 0x00000003, Data2: 0x0000, Data3: 0x0010, Data4: [8]byte{0x80, 0x00, 0x00, 0xaa, 0x00, 0x38, 0x9b, 0x71}}
)

// EDataFlow mirrors the WASAPI enum of the same name.
type EDataFlow int32

const (
	ERender EDataFlow = 0
	ECapture EDataFlow = 1
	EAll     EDataFlow = 2
)

// ERole mirrors the WASAPI enum of the same name.
type ERole int32

const (
	EConsole        ERole = 0
	EMultimedia     ERole = 1
	ECommunications ERole = 2
)

const (
	DEVICE_STATE_ACTIVE     = 0x1
	DEVICE_STATE_DISABLED   = 0x2
	DEVICE_STATE_NOTPRESENT = 0x4
	DEVICE_STATE_UNPLUGGED  = 0x8
)

const (
	CLSCTX_ALL uint32 = 0x1 | 0x2 | 0x4 | 0x10
)
