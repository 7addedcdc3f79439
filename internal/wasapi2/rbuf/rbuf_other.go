//go:build !windows

package rbuf

import "github.com/go-musicfox/wasapi2/internal/wasapi2/rbufctx"

// stubEngine satisfies engine on non-Windows builds: rbuf is a
// Windows-only WASAPI ring buffer core.
type stubEngine struct{}

func newEngine(rb *Rbuf, manager Manager) engine { return stubEngine{} }

func (stubEngine) post(cmd *command) {
	cmd.result <- commandResult{Err: rbufctx.ErrUnsupportedPlatform}
}
func (stubEngine) shutdown()          {}
func (stubEngine) write(p []byte) int { return 0 }
func (stubEngine) read(p []byte) int  { return 0 }
