//go:build windows

package rbufctx

import (
	"sync"
	"syscall"
	"unsafe"

	"github.com/go-musicfox/wasapi2/internal/wasapi2/com"
)

// volumeCallback is a hand-assembled IAudioEndpointVolumeCallback COM
// object. It latches the mute flag into the owning Ctx's sharedState
// atomic; it is written only from this callback (a WASAPI-owned
// thread) and read atomically by the I/O thread without further
// synchronisation, per the single-word-atomic concurrency model.
type volumeCallback struct {
	vtbl  *volumeCallbackVtbl
	refs  uint32
	state *sharedState
}

type volumeCallbackVtbl struct {
	unknownVtbl unknownVtblLayout
	OnNotify    uintptr
}

type unknownVtblLayout struct {
	QueryInterface uintptr
	AddRef         uintptr
	Release        uintptr
}

// audioVolumeNotificationData mirrors AUDIO_VOLUME_NOTIFICATION_DATA's
// fixed-size prefix (event context GUID, muted bool, master volume);
// the trailing per-channel array is ignored.
type audioVolumeNotificationData struct {
	eventContext  [16]byte
	muted         int32
	masterVolume  float32
	channels      uint32
}

var (
	volumeMu    sync.Mutex
	volumeTable = map[uintptr]*volumeCallback{}

	sharedVolumeVtbl = &volumeCallbackVtbl{
		unknownVtbl: unknownVtblLayout{
			QueryInterface: syscall.NewCallback(volumeQueryInterface),
			AddRef:         syscall.NewCallback(volumeAddRef),
			Release:        syscall.NewCallback(volumeRelease),
		},
		OnNotify: syscall.NewCallback(volumeOnNotify),
	}
)

func newVolumeCallback(state *sharedState) *volumeCallback {
	cb := &volumeCallback{vtbl: sharedVolumeVtbl, refs: 1, state: state}
	volumeMu.Lock()
	volumeTable[uintptr(unsafe.Pointer(cb))] = cb
	volumeMu.Unlock()
	return cb
}

func volumeQueryInterface(this, riid, out uintptr) uintptr {
	*(*uintptr)(unsafe.Pointer(out)) = this
	volumeAddRef(this)
	return uintptr(com.S_OK)
}

func volumeAddRef(this uintptr) uintptr {
	volumeMu.Lock()
	defer volumeMu.Unlock()
	if cb, ok := volumeTable[this]; ok {
		cb.refs++
		return uintptr(cb.refs)
	}
	return 1
}

func volumeRelease(this uintptr) uintptr {
	volumeMu.Lock()
	defer volumeMu.Unlock()
	cb, ok := volumeTable[this]
	if !ok {
		return 0
	}
	cb.refs--
	if cb.refs == 0 {
		delete(volumeTable, this)
		return 0
	}
	return uintptr(cb.refs)
}

func volumeOnNotify(this, data uintptr) uintptr {
	volumeMu.Lock()
	cb, ok := volumeTable[this]
	volumeMu.Unlock()
	if !ok || data == 0 {
		return uintptr(com.S_OK)
	}
	notif := (*audioVolumeNotificationData)(unsafe.Pointer(data))
	cb.state.muted.Store(notif.muted != 0)
	cb.state.setVolume(notif.masterVolume)
	return uintptr(com.S_OK)
}
