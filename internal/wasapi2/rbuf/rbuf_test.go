package rbuf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-musicfox/wasapi2/internal/wasapi2/rbufctx"
)

// fakeEngine lets rbuf's public-API/state-machine logic be tested
// without a real WASAPI engine; it just echoes back a scripted result
// for whatever command kind it receives.
type fakeEngine struct {
	processed []Kind
	caps      rbufctx.Caps
	err       error
}

func (f *fakeEngine) post(cmd *command) {
	f.processed = append(f.processed, cmd.Kind)
	cmd.result <- commandResult{Caps: f.caps, Err: f.err}
}
func (f *fakeEngine) shutdown()          {}
func (f *fakeEngine) write(p []byte) int { return len(p) }
func (f *fakeEngine) read(p []byte) int  { return 0 }

func newTestRbuf(fe *fakeEngine) *Rbuf {
	r := &Rbuf{state: StateIdle}
	r.eng = fe
	return r
}

func TestRbuf_OpenAcquireStartAdvancesState(t *testing.T) {
	fe := &fakeEngine{}
	r := newTestRbuf(fe)

	require.NoError(t, r.OpenDevice(rbufctx.Desc{EndpointID: "ep"}))
	assert.Equal(t, StateOpened, r.State())

	fe.caps = rbufctx.Caps{SegmentSize: 256, SegLatency: 2}
	caps, err := r.Acquire(AcquireSpec{})
	require.NoError(t, err)
	assert.Equal(t, 256, caps.SegmentSize)
	assert.Equal(t, StateAcquired, r.State())

	require.NoError(t, r.Start())
	assert.Equal(t, StateStarted, r.State())

	require.NoError(t, r.Stop())
	assert.Equal(t, StateStopped, r.State())

	assert.Equal(t, []Kind{CmdOpen, CmdAcquire, CmdStart, CmdStop}, fe.processed)
}

func TestRbuf_StartBeforeAcquireIsRejected(t *testing.T) {
	fe := &fakeEngine{}
	r := newTestRbuf(fe)

	err := r.Start()
	assert.ErrorIs(t, err, ErrWrongState)
	assert.Empty(t, fe.processed)
}

func TestRbuf_FailedOpenDoesNotAdvanceState(t *testing.T) {
	fe := &fakeEngine{err: assert.AnError}
	r := newTestRbuf(fe)

	err := r.OpenDevice(rbufctx.Desc{})
	assert.Error(t, err)
	assert.Equal(t, StateIdle, r.State())
}

func TestRbuf_Delay_DerivesFromCaps(t *testing.T) {
	fe := &fakeEngine{caps: rbufctx.Caps{SegmentSize: 512, SegLatency: 2}}
	r := newTestRbuf(fe)

	delay, err := r.Delay()
	require.NoError(t, err)
	assert.Equal(t, uint32(1024), delay)
}

func TestRbuf_PauseResumeAreStartStopAliases(t *testing.T) {
	fe := &fakeEngine{}
	r := newTestRbuf(fe)
	r.state = StateStarted

	require.NoError(t, r.Pause())
	require.NoError(t, r.Resume())
	assert.Equal(t, []Kind{CmdStop, CmdStart}, fe.processed)
}

func TestRbuf_PostUpdateDeviceDoesNotBlockCaller(t *testing.T) {
	fe := &fakeEngine{}
	r := newTestRbuf(fe)

	r.PostUpdateDevice(nil, nil)
	assert.Equal(t, []Kind{CmdUpdateDevice}, fe.processed)
}

func TestRbuf_OnInvalidated_FiresCallback(t *testing.T) {
	fe := &fakeEngine{}
	r := newTestRbuf(fe)

	var got error
	r.OnInvalidated(func(err error) { got = err })
	r.invalidate(assert.AnError)
	assert.Equal(t, assert.AnError, got)
}

func TestRbuf_WriteRead_DelegateToEngine(t *testing.T) {
	fe := &fakeEngine{}
	r := newTestRbuf(fe)

	n := r.Write([]byte{1, 2, 3})
	assert.Equal(t, 3, n)

	buf := make([]byte, 4)
	assert.Equal(t, 0, r.Read(buf))
}
