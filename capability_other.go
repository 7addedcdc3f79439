//go:build !windows

package wasapi2

// SupportsAutomaticStreamRouting always reports false off Windows.
func SupportsAutomaticStreamRouting() bool { return false }

// SupportsProcessLoopback always reports false off Windows.
func SupportsProcessLoopback() bool { return false }
