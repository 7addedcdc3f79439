//go:build windows

package com

import (
	"runtime"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

// DeviceEnumerator wraps IMMDeviceEnumerator.
type DeviceEnumerator struct {
	Unknown
}

type deviceEnumeratorVtbl struct {
	unknownVtbl
	EnumAudioEndpoints                     uintptr
	GetDefaultAudioEndpoint                uintptr
	GetDevice                              uintptr
	RegisterEndpointNotificationCallback   uintptr
	UnregisterEndpointNotificationCallback uintptr
}

func (e *DeviceEnumerator) vtbl() *deviceEnumeratorVtbl {
	return (*deviceEnumeratorVtbl)(unsafe.Pointer(e.Unknown.vtbl))
}

func NewDeviceEnumerator() (*DeviceEnumerator, error) {
	p, err := CoCreateInstance(&CLSID_MMDeviceEnumerator, CLSCTX_ALL, &IID_IMMDeviceEnumerator)
	if err != nil {
		return nil, err
	}
	return (*DeviceEnumerator)(p), nil
}

// EnumAudioEndpoints returns the collection IUnknown pointer for the
// given data flow/state mask; the collection is walked via
// DeviceCollection.
func (e *DeviceEnumerator) EnumAudioEndpoints(flow EDataFlow, stateMask uint32) (*DeviceCollection, error) {
	var col *DeviceCollection
	r, _, _ := syscall.Syscall6(e.vtbl().EnumAudioEndpoints, 4,
		uintptr(unsafe.Pointer(e)), uintptr(flow), uintptr(stateMask), uintptr(unsafe.Pointer(&col)), 0, 0)
	if err := Check(r); err != nil {
		return nil, err
	}
	return col, nil
}

func (e *DeviceEnumerator) GetDefaultAudioEndpoint(flow EDataFlow, role ERole) (*Device, error) {
	var dev *Device
	r, _, _ := syscall.Syscall6(e.vtbl().GetDefaultAudioEndpoint, 4,
		uintptr(unsafe.Pointer(e)), uintptr(flow), uintptr(role), uintptr(unsafe.Pointer(&dev)), 0, 0)
	if err := Check(r); err != nil {
		return nil, err
	}
	return dev, nil
}

func (e *DeviceEnumerator) GetDevice(id string) (*Device, error) {
	idp, err := windows.UTF16PtrFromString(id)
	if err != nil {
		return nil, err
	}
	var dev *Device
	r, _, _ := syscall.Syscall(e.vtbl().GetDevice, 3,
		uintptr(unsafe.Pointer(e)), uintptr(unsafe.Pointer(idp)), uintptr(unsafe.Pointer(&dev)))
	runtime.KeepAlive(idp)
	if err := Check(r); err != nil {
		return nil, err
	}
	return dev, nil
}

// RegisterEndpointNotificationCallback registers an IMMNotificationClient.
// The client must already have the vtable assembled by enumerate's
// newNotificationClient.
func (e *DeviceEnumerator) RegisterEndpointNotificationCallback(client unsafe.Pointer) error {
	r, _, _ := syscall.Syscall(e.vtbl().RegisterEndpointNotificationCallback, 2,
		uintptr(unsafe.Pointer(e)), uintptr(client), 0)
	return Check(r)
}

func (e *DeviceEnumerator) UnregisterEndpointNotificationCallback(client unsafe.Pointer) error {
	r, _, _ := syscall.Syscall(e.vtbl().UnregisterEndpointNotificationCallback, 2,
		uintptr(unsafe.Pointer(e)), uintptr(client), 0)
	return Check(r)
}

// DeviceCollection wraps IMMDeviceCollection.
type DeviceCollection struct {
	Unknown
}

type deviceCollectionVtbl struct {
	unknownVtbl
	GetCount uintptr
	Item     uintptr
}

func (c *DeviceCollection) vtbl() *deviceCollectionVtbl {
	return (*deviceCollectionVtbl)(unsafe.Pointer(c.Unknown.vtbl))
}

func (c *DeviceCollection) Count() (uint32, error) {
	var n uint32
	r, _, _ := syscall.Syscall(c.vtbl().GetCount, 2, uintptr(unsafe.Pointer(c)), uintptr(unsafe.Pointer(&n)), 0)
	if err := Check(r); err != nil {
		return 0, err
	}
	return n, nil
}

func (c *DeviceCollection) Item(i uint32) (*Device, error) {
	var dev *Device
	r, _, _ := syscall.Syscall(c.vtbl().Item, 3, uintptr(unsafe.Pointer(c)), uintptr(i), uintptr(unsafe.Pointer(&dev)))
	if err := Check(r); err != nil {
		return nil, err
	}
	return dev, nil
}

// Device wraps IMMDevice.
type Device struct {
	Unknown
}

type deviceVtbl struct {
	unknownVtbl
	Activate          uintptr
	OpenPropertyStore uintptr
	GetId             uintptr
	GetState          uintptr
}

func (d *Device) vtbl() *deviceVtbl {
	return (*deviceVtbl)(unsafe.Pointer(d.Unknown.vtbl))
}

// Activate calls IMMDevice::Activate. params may be nil, or a pointer to
// a marshalled PROPVARIANT. Process-loopback activation does not come
// through here: it goes through ActivateAudioInterfaceAsync with
// activate.LoopbackParams.
func (d *Device) Activate(riid *windows.GUID, clsCtx uint32, params unsafe.Pointer) (unsafe.Pointer, error) {
	var v unsafe.Pointer
	r, _, _ := syscall.Syscall6(d.vtbl().Activate, 5,
		uintptr(unsafe.Pointer(d)), uintptr(unsafe.Pointer(riid)), uintptr(clsCtx), uintptr(params), uintptr(unsafe.Pointer(&v)), 0)
	runtime.KeepAlive(riid)
	if err := Check(r); err != nil {
		return nil, err
	}
	return v, nil
}

func (d *Device) GetId() (string, error) {
	var p *uint16
	r, _, _ := syscall.Syscall(d.vtbl().GetId, 2, uintptr(unsafe.Pointer(d)), uintptr(unsafe.Pointer(&p)), 0)
	if err := Check(r); err != nil {
		return "", err
	}
	defer windows.CoTaskMemFree(unsafe.Pointer(p))
	return windows.UTF16PtrToString(p), nil
}

func (d *Device) GetState() (uint32, error) {
	var s uint32
	r, _, _ := syscall.Syscall(d.vtbl().GetState, 2, uintptr(unsafe.Pointer(d)), uintptr(unsafe.Pointer(&s)), 0)
	if err := Check(r); err != nil {
		return 0, err
	}
	return s, nil
}

// OpenPropertyStore returns the IPropertyStore IUnknown pointer; property
// access (friendly name, form factor, mix format) goes through the
// hand-rolled PropertyStore wrapper in ipropertystore.go.
func (d *Device) OpenPropertyStore(stgmAccess uint32) (unsafe.Pointer, error) {
	var v unsafe.Pointer
	r, _, _ := syscall.Syscall(d.vtbl().OpenPropertyStore, 3,
		uintptr(unsafe.Pointer(d)), uintptr(stgmAccess), uintptr(unsafe.Pointer(&v)))
	if err := Check(r); err != nil {
		return nil, err
	}
	return v, nil
}
