//go:build windows

package rbufctx

import "golang.org/x/sys/windows"

// newAutoResetEvent creates an unnamed, manual-reset-false (auto-reset)
// Win32 event that the I/O thread's relay goroutine waits on with
// WaitForSingleObject.
func newAutoResetEvent() (uintptr, error) {
	h, err := windows.CreateEvent(nil, 0, 0, nil)
	if err != nil {
		return 0, err
	}
	return uintptr(h), nil
}

func toWindowsHandle(h uintptr) windows.Handle {
	return windows.Handle(h)
}

func closeHandle(h uintptr) {
	if h == 0 {
		return
	}
	windows.CloseHandle(windows.Handle(h))
}
