//go:build windows

package devicemanager

import (
	"log/slog"
	"runtime"

	ole "github.com/go-ole/go-ole"
	"github.com/pkg/errors"

	"github.com/go-musicfox/wasapi2/internal/wasapi2/activate"
	"github.com/go-musicfox/wasapi2/internal/wasapi2/com"
	"github.com/go-musicfox/wasapi2/internal/wasapi2/rbufctx"
	"github.com/go-musicfox/wasapi2/internal/wasapi2/waveformat"
)

// buildRequest is posted to the apartment thread's command channel.
type buildRequest struct {
	desc   rbufctx.Desc
	cached []waveformat.Format
	result chan buildResult
}

type buildResult struct {
	ctx *rbufctx.Ctx
	err error
}

// winPlatform owns a single dedicated OS thread with COM initialised as
// MTA, matching the apartment model used by the enumerate package:
// activation and IMMDevice calls are free-threaded, so a shared MTA
// worker avoids the per-call CoInitialize cost of STA marshalling.
type winPlatform struct {
	log     *slog.Logger
	queue   chan buildRequest
	done    chan struct{}
}

func newPlatform(log *slog.Logger) platform {
	p := &winPlatform{
		log:   log,
		queue: make(chan buildRequest),
		done:  make(chan struct{}),
	}
	go p.run()
	return p
}

func (p *winPlatform) run() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := ole.CoInitializeEx(0, ole.COINIT_MULTITHREADED); err != nil {
		p.log.Warn("CoInitializeEx failed on apartment thread", "error", err)
	}
	defer ole.CoUninitialize()

	for {
		select {
		case req := <-p.queue:
			ctx, err := p.activate(req.desc, req.cached)
			req.result <- buildResult{ctx: ctx, err: err}
		case <-p.done:
			return
		}
	}
}

func (p *winPlatform) build(desc rbufctx.Desc, cached []waveformat.Format) (*rbufctx.Ctx, error) {
	req := buildRequest{desc: desc, cached: cached, result: make(chan buildResult, 1)}
	select {
	case p.queue <- req:
	case <-p.done:
		return nil, ErrManagerClosed
	}
	res := <-req.result
	return res.ctx, res.err
}

func (p *winPlatform) close() {
	close(p.done)
}

// activate runs entirely on the apartment thread: it performs the
// primary activation (endpoint or process-loopback), builds the
// RbufCtx, and, when loopback silence-priming is requested, activates a
// second render client on the same endpoint for AttachDummyRender.
func (p *winPlatform) activate(desc rbufctx.Desc, cached []waveformat.Format) (*rbufctx.Ctx, error) {
	client, err := p.activatePrimary(desc)
	if err != nil {
		return nil, errors.Wrap(err, "devicemanager: activate primary client")
	}

	ctx, err := rbufctx.Open(p.log, client, desc, cached)
	if err != nil {
		client.Release()
		return nil, errors.Wrap(err, "devicemanager: open rbufctx")
	}

	if desc.Class == rbufctx.ClassCapture && desc.Loopback && desc.AllowDummyRender {
		if err := p.attachDummyRender(ctx, desc); err != nil {
			p.log.Warn("dummy render priming unavailable", "error", err, "endpoint", desc.EndpointID)
		}
	}

	return ctx, nil
}

func (p *winPlatform) activatePrimary(desc rbufctx.Desc) (*com.AudioClient3, error) {
	if desc.Class == rbufctx.ClassCapture && desc.Loopback && desc.LoopbackTargetPID != 0 {
		client, err := activate.ActivateProcessLoopback(activate.LoopbackParams{
			TargetProcessID: desc.LoopbackTargetPID,
			IncludeTree:     desc.LoopbackMode == rbufctx.LoopbackIncludeProcessTree,
		})
		return client, err
	}
	return activate.ActivateEndpoint(desc.EndpointID)
}

// attachDummyRender activates a second, ordinary (non-loopback) render
// client against the same render endpoint so silence can be pushed into
// it; this keeps loopback capture producing data when the device would
// otherwise sit idle with nothing rendering. Only meaningful when desc
// targets the render-side endpoint backing a loopback capture.
func (p *winPlatform) attachDummyRender(ctx *rbufctx.Ctx, desc rbufctx.Desc) error {
	dummyClient, err := activate.ActivateEndpoint(desc.EndpointID)
	if err != nil {
		return err
	}
	dummyDesc := rbufctx.Desc{
		EndpointID:  desc.EndpointID,
		Class:       rbufctx.ClassRender,
		Mode:        rbufctx.ModeShared,
		LatencyTime: desc.LatencyTime,
	}
	dummyCtx, err := rbufctx.Open(p.log, dummyClient, dummyDesc, nil)
	if err != nil {
		dummyClient.Release()
		return err
	}
	ctx.AttachDummyRender(dummyCtx.Client(), dummyCtx.RenderClient(), dummyCtx.EventHandle())
	return nil
}
