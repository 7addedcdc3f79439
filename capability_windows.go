//go:build windows

package wasapi2

import (
	"sync"

	"github.com/go-musicfox/wasapi2/internal/wasapi2/com"
)

const (
	buildAutomaticStreamRouting = 14393
	buildProcessLoopback        = 19041
)

var buildNumberOnce = sync.OnceValues(func() (uint32, error) {
	return com.OSBuildNumber()
})

// SupportsAutomaticStreamRouting reports whether the running OS build
// transparently reroutes a default-endpoint stream on invalidation
// (build >= 14393), memoised via a single RtlGetVersion probe.
func SupportsAutomaticStreamRouting() bool {
	build, err := buildNumberOnce()
	return err == nil && build >= buildAutomaticStreamRouting
}

// SupportsProcessLoopback reports whether process-scoped loopback
// capture is available. The documented requirement is build 20348; in
// practice it works from 19041 onward, so this relaxes to match what
// the original implementation actually gated on.
func SupportsProcessLoopback() bool {
	build, err := buildNumberOnce()
	return err == nil && build >= buildProcessLoopback
}
