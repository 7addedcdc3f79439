//go:build windows

package com

import (
	"runtime"
	"sync"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	mmdevapi                       = windows.NewLazySystemDLL("mmdevapi.dll")
	procActivateAudioInterfaceAsync = mmdevapi.NewProc("ActivateAudioInterfaceAsync")
)

// ActivateOperation wraps IActivateAudioInterfaceAsyncOperation.
type ActivateOperation struct {
	Unknown
}

type activateOperationVtbl struct {
	unknownVtbl
	GetActivateResult uintptr
}

func (o *ActivateOperation) vtbl() *activateOperationVtbl {
	return (*activateOperationVtbl)(unsafe.Pointer(o.Unknown.vtbl))
}

// GetActivateResult returns the activation HRESULT and the activated
// interface (already QueryInterface'd to the riid passed to
// ActivateAudioInterfaceAsync).
func (o *ActivateOperation) GetActivateResult() (unsafe.Pointer, error) {
	var activateResult uint32
	var iface unsafe.Pointer
	r, _, _ := syscall.Syscall6(o.vtbl().GetActivateResult, 3,
		uintptr(unsafe.Pointer(o)), uintptr(unsafe.Pointer(&activateResult)), uintptr(unsafe.Pointer(&iface)), 0, 0, 0)
	if err := Check(r); err != nil {
		return nil, err
	}
	if err := Check(uintptr(activateResult)); err != nil {
		return nil, err
	}
	return iface, nil
}

// completionHandler is a hand-assembled IActivateAudioInterfaceCompletionHandler
// COM object. Its vtable entries are syscall.NewCallback trampolines
// closing over a done channel, the same technique go-ole callback
// objects use for sink interfaces but spelled out with raw syscalls to
// match the rest of this package.
type completionHandler struct {
	vtbl *completionHandlerVtbl
	refs uint32
	done chan *ActivateOperation
}

type completionHandlerVtbl struct {
	unknownVtbl
	ActivateCompleted uintptr
}

var (
	handlerMu    sync.Mutex
	handlerTable = map[uintptr]*completionHandler{}

	sharedVtbl = &completionHandlerVtbl{
		unknownVtbl: unknownVtbl{
			QueryInterface: syscall.NewCallback(handlerQueryInterface),
			AddRef:         syscall.NewCallback(handlerAddRef),
			Release:        syscall.NewCallback(handlerRelease),
		},
		ActivateCompleted: syscall.NewCallback(handlerActivateCompleted),
	}
)

func newCompletionHandler() *completionHandler {
	h := &completionHandler{vtbl: sharedVtbl, refs: 1, done: make(chan *ActivateOperation, 1)}
	handlerMu.Lock()
	handlerTable[uintptr(unsafe.Pointer(h))] = h
	handlerMu.Unlock()
	return h
}

func (h *completionHandler) release() {
	handlerMu.Lock()
	delete(handlerTable, uintptr(unsafe.Pointer(h)))
	handlerMu.Unlock()
}

func lookupHandler(this uintptr) *completionHandler {
	handlerMu.Lock()
	defer handlerMu.Unlock()
	return handlerTable[this]
}

func handlerQueryInterface(this uintptr, riid uintptr, out uintptr) uintptr {
	*(*uintptr)(unsafe.Pointer(out)) = this
	handlerAddRef(this)
	return uintptr(S_OK)
}

func handlerAddRef(this uintptr) uintptr {
	if h := lookupHandler(this); h != nil {
		h.refs++
		return uintptr(h.refs)
	}
	return 1
}

func handlerRelease(this uintptr) uintptr {
	h := lookupHandler(this)
	if h == nil {
		return 0
	}
	h.refs--
	if h.refs == 0 {
		h.release()
		return 0
	}
	return uintptr(h.refs)
}

func handlerActivateCompleted(this uintptr, op uintptr) uintptr {
	h := lookupHandler(this)
	if h == nil {
		return uintptr(S_OK)
	}
	opPtr := (*ActivateOperation)(unsafe.Pointer(op))
	opPtr.AddRef()
	select {
	case h.done <- opPtr:
	default:
	}
	return uintptr(S_OK)
}

// ActivateAudioInterfaceAsync is the mmdevapi free function used for
// process-loopback and default-device-by-role activation without an
// IMMDevice (e.g. VIRTUAL_AUDIO_DEVICE_PROCESS_LOOPBACK). params, when
// non-nil, is a marshalled PROPVARIANT built by the activate package.
func ActivateAudioInterfaceAsync(deviceID string, riid *windows.GUID, params unsafe.Pointer) (*ActivateOperation, error) {
	idp, err := windows.UTF16PtrFromString(deviceID)
	if err != nil {
		return nil, err
	}
	h := newCompletionHandler()

	var rawOp unsafe.Pointer
	r, _, _ := procActivateAudioInterfaceAsync.Call(
		uintptr(unsafe.Pointer(idp)),
		uintptr(unsafe.Pointer(riid)),
		uintptr(params),
		uintptr(unsafe.Pointer(h)),
		uintptr(unsafe.Pointer(&rawOp)),
	)
	runtime.KeepAlive(idp)
	runtime.KeepAlive(riid)
	if err := Check(r); err != nil {
		h.release()
		return nil, err
	}
	runtime.KeepAlive(rawOp)

	op := <-h.done
	return op, nil
}
