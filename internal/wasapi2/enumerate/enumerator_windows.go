//go:build windows

package enumerate

import (
	"runtime"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/go-ole/go-ole"
	"github.com/pkg/errors"

	"github.com/go-musicfox/wasapi2/internal/wasapi2/com"
	"github.com/go-musicfox/wasapi2/internal/wasapi2/waveformat"
)

type winPlatform struct {
	onUpdate func()

	workCh chan func()
	stopCh chan struct{}
	wg     sync.WaitGroup

	mu     sync.Mutex
	enum   *com.DeviceEnumerator
	client *notificationClient
	ready  atomic.Bool
}

func newPlatform(onUpdate func()) platform {
	return &winPlatform{onUpdate: onUpdate, workCh: make(chan func()), stopCh: make(chan struct{})}
}

func (p *winPlatform) start() error {
	errCh := make(chan error, 1)
	p.wg.Add(1)
	go p.run(errCh)
	return <-errCh
}

func (p *winPlatform) run(errCh chan error) {
	defer p.wg.Done()
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := ole.CoInitializeEx(0, ole.COINIT_MULTITHREADED); err != nil {
		errCh <- errors.Wrap(err, "enumerate: CoInitializeEx")
		return
	}
	defer ole.CoUninitialize()

	enum, err := com.NewDeviceEnumerator()
	if err != nil {
		errCh <- errors.Wrap(err, "enumerate: NewDeviceEnumerator")
		return
	}
	p.mu.Lock()
	p.enum = enum
	p.mu.Unlock()

	client := newNotificationClient(p.onUpdate)
	if err := enum.RegisterEndpointNotificationCallback(unsafe.Pointer(client)); err != nil {
		errCh <- errors.Wrap(err, "enumerate: RegisterEndpointNotificationCallback")
		enum.Release()
		return
	}
	p.mu.Lock()
	p.client = client
	p.mu.Unlock()

	p.ready.Store(true)
	errCh <- nil

	for {
		select {
		case fn := <-p.workCh:
			fn()
		case <-p.stopCh:
			enum.UnregisterEndpointNotificationCallback(unsafe.Pointer(client))
			enum.Release()
			return
		}
	}
}

func (p *winPlatform) stop() {
	if !p.ready.Load() {
		return
	}
	close(p.stopCh)
	p.wg.Wait()
}

func (p *winPlatform) snapshot() ([]Endpoint, error) {
	if !p.ready.Load() {
		return nil, errors.New("enumerate: not started")
	}
	type result struct {
		eps []Endpoint
		err error
	}
	resCh := make(chan result, 1)
	p.workCh <- func() {
		eps, err := p.snapshotOnThread()
		resCh <- result{eps, err}
	}
	res := <-resCh
	return res.eps, res.err
}

func (p *winPlatform) snapshotOnThread() ([]Endpoint, error) {
	p.mu.Lock()
	enum := p.enum
	p.mu.Unlock()

	var out []Endpoint
	for _, dir := range []struct {
		comFlow com.EDataFlow
		flow    Flow
	}{
		{com.ERender, FlowRender},
		{com.ECapture, FlowCapture},
	} {
		col, err := enum.EnumAudioEndpoints(dir.comFlow, com.DEVICE_STATE_ACTIVE)
		if err != nil {
			return nil, errors.Wrap(err, "enumerate: EnumAudioEndpoints")
		}

		count, err := col.Count()
		if err != nil {
			col.Release()
			return nil, errors.Wrap(err, "enumerate: Count")
		}

		for i := uint32(0); i < count; i++ {
			dev, err := col.Item(i)
			if err != nil {
				continue
			}
			ep, err := describeDevice(dev)
			dev.Release()
			if err != nil {
				continue
			}
			ep.Flow = dir.flow
			out = append(out, ep)
		}
		col.Release()
	}

	if build, _ := com.OSBuildNumber(); build >= 14393 {
		for _, dir := range []struct {
			comFlow com.EDataFlow
			flow    Flow
		}{
			{com.ERender, FlowRender},
			{com.ECapture, FlowCapture},
		} {
			dev, err := enum.GetDefaultAudioEndpoint(dir.comFlow, com.EConsole)
			if err != nil {
				continue
			}
			ep, err := describeDevice(dev)
			dev.Release()
			if err != nil {
				continue
			}
			ep.Flow = dir.flow
			ep.IsDefault = true
			ep.DefaultRole = "console"
			out = append(out, ep)
		}
	}

	return out, nil
}

func describeDevice(dev *com.Device) (Endpoint, error) {
	id, err := dev.GetId()
	if err != nil {
		return Endpoint{}, err
	}

	ep := Endpoint{ID: id}

	rawIface, err := dev.Activate(&com.IID_IAudioClient, com.CLSCTX_ALL, nil)
	if err == nil {
		client := (*com.AudioClient)(rawIface)
		if wire, err := client.GetMixFormat(); err == nil {
			ep.MixFormat = waveformat.FromWire(wire, wire.FormatTag == com.WAVE_FORMAT_EXTENSIBLE)
		}
		client.Release()
	}

	if ps, err := dev.OpenPropertyStore(0 /* STGM_READ */); err == nil {
		store := (*com.PropertyStore)(ps)
		if name, err := store.GetStringValue(com.PKEY_Device_FriendlyName); err == nil {
			ep.FriendlyName = name
		}
		if enumName, err := store.GetStringValue(com.PKEY_Device_EnumeratorName); err == nil {
			ep.EnumeratorName = enumName
		}
		if ff, err := store.GetUint32Value(com.PKEY_AudioEndpoint_FormFactor); err == nil {
			ep.FormFactor = FormFactor(ff)
		}
		store.Release()
	}

	return ep, nil
}
