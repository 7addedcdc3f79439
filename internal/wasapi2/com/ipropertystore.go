//go:build windows

package com

import (
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

// PropertyKey mirrors PROPERTYKEY (fmtid + pid).
type PropertyKey struct {
	FmtID windows.GUID
	PID   uint32
}

var (
	PKEY_Device_FriendlyName     = PropertyKey{FmtID: windows.GUID{Data1: 0xa45c254e, Data2: 0xdf1c, Data3: 0x4efd, Data4: [8]byte{0x80, 0x20, 0x67, 0xd1, 0x46, 0xa8, 0x50, 0xe0}}, PID: 14}
	PKEY_DeviceInterface_FriendlyName = PropertyKey{FmtID: windows.GUID{Data1: 0x026e516e, Data2: 0xb814, Data3: 0x414b, Data4: [8]byte{0x83, 0xcd, 0x85, 0x6d, 0x6f, 0xef, 0x48, 0x22}}, PID: 2}
	PKEY_Device_EnumeratorName    = PropertyKey{FmtID: windows.GUID{Data1: 0xa45c254e, Data2: 0xdf1c, Data3: 0x4efd, Data4: [8]byte{0x80, 0x20, 0x67, 0xd1, 0x46, 0xa8, 0x50, 0xe0}}, PID: 24}
	PKEY_AudioEndpoint_FormFactor = PropertyKey{FmtID: windows.GUID{Data1: 0x1da5d803, Data2: 0xd492, Data3: 0x4edd, Data4: [8]byte{0x8c, 0x23, 0xe0, 0xc0, 0xff, 0xee, 0x7f, 0x0e}}, PID: 0}
)

// propvariant is a minimal PROPVARIANT reader covering the VT_LPWSTR
// and VT_UI4 cases the enumerator needs; other variant types decode to
// their zero value rather than a full union decode.
type propvariant struct {
	vt       uint16
	reserved [3]uint16
	data     [16]byte
}

const (
	vtEmpty  uint16 = 0
	vtUI4    uint16 = 19
	vtLPWSTR uint16 = 31
)

// PropertyStore wraps IPropertyStore, opened via IMMDevice.OpenPropertyStore.
type PropertyStore struct {
	Unknown
}

type propertyStoreVtbl struct {
	unknownVtbl
	GetCount uintptr
	GetAt    uintptr
	GetValue uintptr
	SetValue uintptr
	Commit   uintptr
}

func (p *PropertyStore) vtbl() *propertyStoreVtbl {
	return (*propertyStoreVtbl)(unsafe.Pointer(p.Unknown.vtbl))
}

// GetStringValue reads a VT_LPWSTR property, returning "" if the key is
// absent or holds a different variant type.
func (p *PropertyStore) GetStringValue(key PropertyKey) (string, error) {
	var pv propvariant
	r, _, _ := syscall.Syscall(p.vtbl().GetValue, 3,
		uintptr(unsafe.Pointer(p)), uintptr(unsafe.Pointer(&key)), uintptr(unsafe.Pointer(&pv)))
	if err := Check(r); err != nil {
		return "", err
	}
	if pv.vt != vtLPWSTR {
		return "", nil
	}
	ptr := *(**uint16)(unsafe.Pointer(&pv.data[0]))
	defer windows.CoTaskMemFree(unsafe.Pointer(ptr))
	return windows.UTF16PtrToString(ptr), nil
}

// GetUint32Value reads a VT_UI4 property, returning 0 if absent.
func (p *PropertyStore) GetUint32Value(key PropertyKey) (uint32, error) {
	var pv propvariant
	r, _, _ := syscall.Syscall(p.vtbl().GetValue, 3,
		uintptr(unsafe.Pointer(p)), uintptr(unsafe.Pointer(&key)), uintptr(unsafe.Pointer(&pv)))
	if err := Check(r); err != nil {
		return 0, err
	}
	if pv.vt != vtUI4 {
		return 0, nil
	}
	return *(*uint32)(unsafe.Pointer(&pv.data[0])), nil
}
