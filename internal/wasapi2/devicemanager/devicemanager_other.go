//go:build !windows

package devicemanager

import (
	"log/slog"

	"github.com/go-musicfox/wasapi2/internal/wasapi2/rbufctx"
	"github.com/go-musicfox/wasapi2/internal/wasapi2/waveformat"
)

type stubPlatform struct{}

func newPlatform(log *slog.Logger) platform { return stubPlatform{} }

func (stubPlatform) build(rbufctx.Desc, []waveformat.Format) (*rbufctx.Ctx, error) {
	return nil, rbufctx.ErrUnsupportedPlatform
}

func (stubPlatform) close() {}
