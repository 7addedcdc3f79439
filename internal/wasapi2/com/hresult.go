//go:build windows

package com

import "fmt"

// HRESULT wraps a raw Windows HRESULT so callers can errors.Is/As against
// the well-known AUDCLNT_E_* values while still printing something
// readable for the long tail the OS never names.
type HRESULT uint32

const (
	S_OK    HRESULT = 0x00000000
	S_FALSE HRESULT = 0x00000001

	facilityAudclnt = 0x889
	facilityWin32   = 0x7

	AUDCLNT_E_NOT_INITIALIZED          HRESULT = 0x88890001
	AUDCLNT_E_ALREADY_INITIALIZED      HRESULT = 0x88890002
	AUDCLNT_E_WRONG_ENDPOINT_TYPE      HRESULT = 0x88890003
	AUDCLNT_E_DEVICE_INVALIDATED       HRESULT = 0x88890004
	AUDCLNT_E_NOT_STOPPED              HRESULT = 0x88890005
	AUDCLNT_E_BUFFER_TOO_LARGE         HRESULT = 0x88890006
	AUDCLNT_E_OUT_OF_ORDER             HRESULT = 0x88890007
	AUDCLNT_E_UNSUPPORTED_FORMAT       HRESULT = 0x88890008
	AUDCLNT_E_INVALID_SIZE             HRESULT = 0x88890009
	AUDCLNT_E_DEVICE_IN_USE            HRESULT = 0x8889000a
	AUDCLNT_E_BUFFER_OPERATION_PENDING HRESULT = 0x8889000b
	AUDCLNT_E_BUFFER_SIZE_NOT_ALIGNED  HRESULT = 0x88890019
	AUDCLNT_E_BUFFER_SIZE_ERROR        HRESULT = 0x88890016
	AUDCLNT_E_CPUUSAGE_EXCEEDED        HRESULT = 0x88890017
	AUDCLNT_E_RESOURCES_INVALIDATED    HRESULT = 0x88890026
	AUDCLNT_E_ENDPOINT_CREATE_FAILED   HRESULT = 0x8889000f
	AUDCLNT_E_SERVICE_NOT_RUNNING      HRESULT = 0x88890010

	E_NOTFOUND HRESULT = 0x80070490
)

// names is the fixed name table from spec.md Util (§4.1a). Error renders
// every HRESULT from this table alone: it does not call FormatMessage, and
// codes missing from the table print as a bare hex HRESULT.
var names = map[HRESULT]string{
	AUDCLNT_E_NOT_INITIALIZED:          "AUDCLNT_E_NOT_INITIALIZED",
	AUDCLNT_E_ALREADY_INITIALIZED:      "AUDCLNT_E_ALREADY_INITIALIZED",
	AUDCLNT_E_WRONG_ENDPOINT_TYPE:      "AUDCLNT_E_WRONG_ENDPOINT_TYPE",
	AUDCLNT_E_DEVICE_INVALIDATED:       "AUDCLNT_E_DEVICE_INVALIDATED",
	AUDCLNT_E_NOT_STOPPED:              "AUDCLNT_E_NOT_STOPPED",
	AUDCLNT_E_BUFFER_TOO_LARGE:         "AUDCLNT_E_BUFFER_TOO_LARGE",
	AUDCLNT_E_OUT_OF_ORDER:             "AUDCLNT_E_OUT_OF_ORDER",
	AUDCLNT_E_UNSUPPORTED_FORMAT:       "AUDCLNT_E_UNSUPPORTED_FORMAT",
	AUDCLNT_E_INVALID_SIZE:             "AUDCLNT_E_INVALID_SIZE",
	AUDCLNT_E_DEVICE_IN_USE:            "AUDCLNT_E_DEVICE_IN_USE",
	AUDCLNT_E_BUFFER_OPERATION_PENDING: "AUDCLNT_E_BUFFER_OPERATION_PENDING",
	AUDCLNT_E_BUFFER_SIZE_NOT_ALIGNED:  "AUDCLNT_E_BUFFER_SIZE_NOT_ALIGNED",
	AUDCLNT_E_BUFFER_SIZE_ERROR:        "AUDCLNT_E_BUFFER_SIZE_ERROR",
	AUDCLNT_E_CPUUSAGE_EXCEEDED:        "AUDCLNT_E_CPUUSAGE_EXCEEDED",
	AUDCLNT_E_RESOURCES_INVALIDATED:    "AUDCLNT_E_RESOURCES_INVALIDATED",
	AUDCLNT_E_ENDPOINT_CREATE_FAILED:   "AUDCLNT_E_ENDPOINT_CREATE_FAILED",
	AUDCLNT_E_SERVICE_NOT_RUNNING:      "AUDCLNT_E_SERVICE_NOT_RUNNING",
	E_NOTFOUND:                         "E_NOTFOUND",
}

func (h HRESULT) Error() string {
	if name, ok := names[h]; ok {
		return fmt.Sprintf("%s (0x%08X)", name, uint32(h))
	}
	return fmt.Sprintf("HRESULT(0x%08X)", uint32(h))
}

// Ok reports whether the HRESULT indicates success (S_OK or S_FALSE).
func (h HRESULT) Ok() bool {
	return h == S_OK || h == S_FALSE
}

// IsAudclnt reports whether h belongs to the AUDCLNT facility.
func (h HRESULT) IsAudclnt() bool {
	return (uint32(h)>>16)&0x7ff == facilityAudclnt && uint32(h)>>31 == 1
}

// IsWin32 reports whether h is a wrapped Win32 error code.
func (h HRESULT) IsWin32() bool {
	return (uint32(h)>>16)&0x7ff == facilityWin32 && uint32(h)>>31 == 1
}

// Check converts a raw syscall return value into an error, or nil on
// S_OK/S_FALSE.
func Check(r uintptr) error {
	h := HRESULT(uint32(r))
	if h.Ok() {
		return nil
	}
	return h
}
