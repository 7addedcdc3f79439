// Package activate implements endpoint activation via
// ActivateAudioInterfaceAsync, used for the well-known process-loopback
// virtual endpoint and for default-by-role activation shortcuts where
// the caller does not already hold an IMMDevice. The platform-specific
// calls in activate_windows.go block internally on the completion
// handler, so callers outside this package see a plain synchronous
// call.
package activate
