package devicemanager

import "github.com/pkg/errors"

// ErrManagerClosed is returned by CreateCtx/CreateCtxAsync once Shutdown
// has been called.
var ErrManagerClosed = errors.New("devicemanager: manager is shut down")
