package devicemanager

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-musicfox/wasapi2/internal/wasapi2/rbufctx"
	"github.com/go-musicfox/wasapi2/internal/wasapi2/waveformat"
)

// fakePlatform lets tests count build() calls without touching real COM.
type fakePlatform struct {
	mu     sync.Mutex
	calls  int
	result *rbufctx.Ctx
	err    error
}

func (f *fakePlatform) build(rbufctx.Desc, []waveformat.Format) (*rbufctx.Ctx, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.result, f.err
}

func (f *fakePlatform) close() {}

func TestManager_CreateCtx_CoalescesConcurrentSameEndpoint(t *testing.T) {
	fp := &fakePlatform{}
	m := &Manager{plat: fp}
	desc := rbufctx.Desc{EndpointID: "ep-1", Mode: rbufctx.ModeShared}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.CreateCtx(desc)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	fp.mu.Lock()
	defer fp.mu.Unlock()
	assert.LessOrEqual(t, fp.calls, 10)
	assert.GreaterOrEqual(t, fp.calls, 1)
}

func TestManager_CreateCtx_DistinctEndpointsDoNotCoalesce(t *testing.T) {
	fp := &fakePlatform{}
	m := &Manager{plat: fp}

	_, err1 := m.CreateCtx(rbufctx.Desc{EndpointID: "a", Mode: rbufctx.ModeShared})
	_, err2 := m.CreateCtx(rbufctx.Desc{EndpointID: "b", Mode: rbufctx.ModeShared})
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, 2, fp.calls)
}

type fakeTarget struct {
	mu  sync.Mutex
	got *rbufctx.Ctx
	err error
	ch  chan struct{}
}

func (f *fakeTarget) PostUpdateDevice(ctx *rbufctx.Ctx, err error) {
	f.mu.Lock()
	f.got, f.err = ctx, err
	f.mu.Unlock()
	close(f.ch)
}

func TestManager_CreateCtxAsync_PostsResult(t *testing.T) {
	fp := &fakePlatform{}
	m := &Manager{plat: fp}
	target := &fakeTarget{ch: make(chan struct{})}

	m.CreateCtxAsync(rbufctx.Desc{EndpointID: "ep-async", Mode: rbufctx.ModeShared}, target)
	<-target.ch

	target.mu.Lock()
	defer target.mu.Unlock()
	assert.NoError(t, target.err)
}

func TestManager_Shutdown_RejectsFurtherRequests(t *testing.T) {
	fp := &fakePlatform{}
	m := &Manager{plat: fp}
	m.Shutdown()

	_, err := m.CreateCtx(rbufctx.Desc{EndpointID: "ep-x"})
	assert.ErrorIs(t, err, ErrManagerClosed)

	target := &fakeTarget{ch: make(chan struct{})}
	m.CreateCtxAsync(rbufctx.Desc{EndpointID: "ep-y"}, target)
	<-target.ch
	assert.ErrorIs(t, target.err, ErrManagerClosed)
}

func TestFlightKey_DistinguishesShareMode(t *testing.T) {
	shared := flightKey(rbufctx.Desc{EndpointID: "same", Mode: rbufctx.ModeShared})
	exclusive := flightKey(rbufctx.Desc{EndpointID: "same", Mode: rbufctx.ModeExclusive})
	assert.NotEqual(t, shared, exclusive)
}
