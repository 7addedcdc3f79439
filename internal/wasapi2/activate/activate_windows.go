//go:build windows

package activate

import (
	"unsafe"

	"github.com/pkg/errors"

	"github.com/go-musicfox/wasapi2/internal/wasapi2/com"
)

// LoopbackParams marshals AUDIOCLIENT_ACTIVATION_PARAMS for
// process-loopback activation (VIRTUAL_AUDIO_DEVICE_PROCESS_LOOPBACK).
// The PROPVARIANT wraps a blob pointer per the documented contract for
// ActivateAudioInterfaceAsync's activationParams argument.
type LoopbackParams struct {
	TargetProcessID uint32
	IncludeTree     bool // true = process tree, false = single process
}

type audioclientProcessLoopbackParams struct {
	targetProcessID uint32
	processLoopbackMode uint32
}

const (
	processLoopbackModeIncludeTargetProcessTree uint32 = 0
	processLoopbackModeExcludeTargetProcessTree uint32 = 1

	activationTypeDefault         uint32 = 0
	activationTypeProcessLoopback uint32 = 1
)

type audioclientActivationParams struct {
	activationType uint32
	loopback       audioclientProcessLoopbackParams
}

// propvariantBlob mirrors the PROPVARIANT layout used for VT_BLOB: vt,
// reserved fields, then a blob count + pointer.
type propvariantBlob struct {
	vt       uint16
	reserved [3]uint16
	cbSize   uint32
	pData    uintptr
}

const vtBlob uint16 = 0x41

// ActivateProcessLoopback runs ActivateAudioInterfaceAsync against the
// well-known process-loopback virtual endpoint and returns an
// *com.AudioClient3 (process-loopback streams are always shared-mode).
func ActivateProcessLoopback(params LoopbackParams) (*com.AudioClient3, error) {
	mode := processLoopbackModeExcludeTargetProcessTree
	if params.IncludeTree {
		mode = processLoopbackModeIncludeTargetProcessTree
	}
	payload := audioclientActivationParams{
		activationType: activationTypeProcessLoopback,
		loopback: audioclientProcessLoopbackParams{
			targetProcessID:     params.TargetProcessID,
			processLoopbackMode: mode,
		},
	}
	blob := propvariantBlob{
		vt:     vtBlob,
		cbSize: uint32(unsafe.Sizeof(payload)),
		pData:  uintptr(unsafe.Pointer(&payload)),
	}

	const virtualAudioDeviceProcessLoopback = "VAD\\Process_Loopback"
	op, err := com.ActivateAudioInterfaceAsync(virtualAudioDeviceProcessLoopback, &com.IID_IAudioClient, unsafe.Pointer(&blob))
	if err != nil {
		return nil, errors.Wrap(err, "activate: process-loopback ActivateAudioInterfaceAsync")
	}
	defer op.Release()

	iface, err := op.GetActivateResult()
	if err != nil {
		return nil, errors.Wrap(err, "activate: process-loopback GetActivateResult")
	}
	return (*com.AudioClient3)(iface), nil
}

// ActivateEndpoint activates an ordinary (non-loopback) endpoint by id
// via the async path, used when the caller does not already hold an
// IMMDevice (e.g. default-by-role activation shortcuts).
func ActivateEndpoint(endpointID string) (*com.AudioClient3, error) {
	op, err := com.ActivateAudioInterfaceAsync(endpointID, &com.IID_IAudioClient, nil)
	if err != nil {
		return nil, errors.Wrap(err, "activate: ActivateAudioInterfaceAsync")
	}
	defer op.Release()

	iface, err := op.GetActivateResult()
	if err != nil {
		return nil, errors.Wrap(err, "activate: GetActivateResult")
	}
	return (*com.AudioClient3)(iface), nil
}
