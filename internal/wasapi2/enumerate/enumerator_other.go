//go:build !windows

package enumerate

import "github.com/pkg/errors"

// ErrUnsupportedPlatform is returned by every operation on non-Windows
// builds; wasapi2 is a Windows-only audio backend.
var ErrUnsupportedPlatform = errors.New("wasapi2: unsupported platform")

type stubPlatform struct{}

func newPlatform(onUpdate func()) platform {
	return &stubPlatform{}
}

func (s *stubPlatform) start() error { return ErrUnsupportedPlatform }
func (s *stubPlatform) stop()        {}
func (s *stubPlatform) snapshot() ([]Endpoint, error) {
	return nil, ErrUnsupportedPlatform
}
