//go:build windows

package enumerate

import (
	"sync"
	"syscall"
	"unsafe"

	"github.com/go-musicfox/wasapi2/internal/wasapi2/com"
)

// notificationClient is a hand-assembled IMMNotificationClient COM
// object. onChange is called on every raw OS callback (device
// added/removed/state-changed/default-changed/property-changed); the
// owning Enumerator's scheduleUpdate is responsible for coalescing
// bursts into a single public Updated signal.
type notificationClient struct {
	vtbl     *notificationClientVtbl
	refs     uint32
	onChange func()
}

type notificationClientVtbl struct {
	unknownVtbl          unknownVtblLayout
	OnDeviceStateChanged  uintptr
	OnDeviceAdded         uintptr
	OnDeviceRemoved       uintptr
	OnDefaultDeviceChanged uintptr
	OnPropertyValueChanged uintptr
}

type unknownVtblLayout struct {
	QueryInterface uintptr
	AddRef         uintptr
	Release        uintptr
}

var (
	clientMu    sync.Mutex
	clientTable = map[uintptr]*notificationClient{}

	notifyVtbl = &notificationClientVtbl{
		unknownVtbl: unknownVtblLayout{
			QueryInterface: syscall.NewCallback(notifyQueryInterface),
			AddRef:         syscall.NewCallback(notifyAddRef),
			Release:        syscall.NewCallback(notifyRelease),
		},
		OnDeviceStateChanged:   syscall.NewCallback(notifyOnChange3),
		OnDeviceAdded:          syscall.NewCallback(notifyOnChange2),
		OnDeviceRemoved:        syscall.NewCallback(notifyOnChange2),
		OnDefaultDeviceChanged: syscall.NewCallback(notifyOnChange4),
		OnPropertyValueChanged: syscall.NewCallback(notifyOnChange3),
	}
)

func newNotificationClient(onChange func()) *notificationClient {
	c := &notificationClient{vtbl: notifyVtbl, refs: 1, onChange: onChange}
	clientMu.Lock()
	clientTable[uintptr(unsafe.Pointer(c))] = c
	clientMu.Unlock()
	return c
}

func lookupClient(this uintptr) *notificationClient {
	clientMu.Lock()
	defer clientMu.Unlock()
	return clientTable[this]
}

func notifyQueryInterface(this, riid, out uintptr) uintptr {
	*(*uintptr)(unsafe.Pointer(out)) = this
	notifyAddRef(this)
	return uintptr(com.S_OK)
}

func notifyAddRef(this uintptr) uintptr {
	if c := lookupClient(this); c != nil {
		c.refs++
		return uintptr(c.refs)
	}
	return 1
}

func notifyRelease(this uintptr) uintptr {
	c := lookupClient(this)
	if c == nil {
		return 0
	}
	c.refs--
	if c.refs == 0 {
		clientMu.Lock()
		delete(clientTable, this)
		clientMu.Unlock()
		return 0
	}
	return uintptr(c.refs)
}

func notifyOnChange2(this, _ uintptr) uintptr       { return notifySignal(this) }
func notifyOnChange3(this, _, _ uintptr) uintptr    { return notifySignal(this) }
func notifyOnChange4(this, _, _, _ uintptr) uintptr { return notifySignal(this) }

func notifySignal(this uintptr) uintptr {
	c := lookupClient(this)
	if c == nil {
		return uintptr(com.S_OK)
	}
	if c.onChange != nil {
		c.onChange()
	}
	return uintptr(com.S_OK)
}
