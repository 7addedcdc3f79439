package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-musicfox/wasapi2/internal/wasapi2/enumerate"
)

type fakeEnum struct {
	eps []enumerate.Endpoint
	err error
}

func (f *fakeEnum) Snapshot() ([]enumerate.Endpoint, error) { return f.eps, f.err }

func TestProvider_Probe_RenderYieldsSinkAndLoopbackSource(t *testing.T) {
	enum := &fakeEnum{eps: []enumerate.Endpoint{
		{ID: "render-1", Flow: enumerate.FlowRender, FriendlyName: "Speakers"},
	}}
	p := New(nil, enum)

	devices, err := p.Probe()
	require.NoError(t, err)
	require.Len(t, devices, 2)

	var sink, loopback *Device
	for i := range devices {
		d := &devices[i]
		if d.Loopback {
			loopback = d
		} else {
			sink = d
		}
	}
	require.NotNil(t, sink)
	require.NotNil(t, loopback)
	assert.Equal(t, ClassSink, sink.Class)
	assert.Equal(t, ClassSource, loopback.Class)
}

func TestProvider_Probe_CaptureYieldsSourceOnly(t *testing.T) {
	enum := &fakeEnum{eps: []enumerate.Endpoint{
		{ID: "mic-1", Flow: enumerate.FlowCapture},
	}}
	p := New(nil, enum)

	devices, err := p.Probe()
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, ClassSource, devices[0].Class)
	assert.False(t, devices[0].Loopback)
}

func TestProvider_Update_EmitsAddedAndRemoved(t *testing.T) {
	enum := &fakeEnum{eps: []enumerate.Endpoint{{ID: "mic-1", Flow: enumerate.FlowCapture}}}
	p := New(nil, enum)
	_, err := p.Probe()
	require.NoError(t, err)

	enum.eps = []enumerate.Endpoint{{ID: "mic-2", Flow: enumerate.FlowCapture}}
	events, err := p.Update()
	require.NoError(t, err)

	var kinds []EventKind
	for _, e := range events {
		kinds = append(kinds, e.Kind)
	}
	assert.Contains(t, kinds, EventRemoved)
	assert.Contains(t, kinds, EventAdded)
}

func TestProvider_Update_DefaultSwapEmitsChangedNotRemovedAdded(t *testing.T) {
	enum := &fakeEnum{eps: []enumerate.Endpoint{
		{ID: "render-1", Flow: enumerate.FlowRender, IsDefault: true, FriendlyName: "Old Speakers"},
	}}
	p := New(nil, enum)
	_, err := p.Probe()
	require.NoError(t, err)

	enum.eps = []enumerate.Endpoint{
		{ID: "render-2", Flow: enumerate.FlowRender, IsDefault: true, FriendlyName: "New Speakers"},
	}
	events, err := p.Update()
	require.NoError(t, err)

	for _, e := range events {
		assert.NotEqual(t, EventRemoved, e.Kind, "default-identity swap must not emit device-removed")
	}
	var changed int
	for _, e := range events {
		if e.Kind == EventChanged {
			changed++
		}
	}
	assert.Equal(t, 2, changed, "one changed event for the sink, one for the loopback source")
}

func TestProvider_Update_NoChangeEmitsNoEvents(t *testing.T) {
	enum := &fakeEnum{eps: []enumerate.Endpoint{{ID: "mic-1", Flow: enumerate.FlowCapture}}}
	p := New(nil, enum)
	_, err := p.Probe()
	require.NoError(t, err)

	events, err := p.Update()
	require.NoError(t, err)
	assert.Empty(t, events)
}
