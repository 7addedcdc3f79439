// Package provider materializes pipeline-facing devices from the raw
// endpoint list and diffs successive snapshots into added/removed/changed
// events, preserving "default device" identity across hardware swaps.
package provider

import (
	"log/slog"
	"sync"

	"github.com/go-musicfox/wasapi2/internal/wasapi2/enumerate"
)

// Device is one pipeline-facing audio device: a capture endpoint
// becomes one Device (Source); a render endpoint becomes two Devices,
// a Sink and a loopback Source.
type Device struct {
	API            string
	ID             string
	IsDefault      bool
	FriendlyName   string
	FormFactor     enumerate.FormFactor
	EnumeratorName string
	Loopback       bool
	Class          Class
	Endpoint       enumerate.Endpoint
}

// Class is the pipeline role this Device plays.
type Class int

const (
	ClassSource Class = iota
	ClassSink
)

func (c Class) String() string {
	if c == ClassSink {
		return "sink"
	}
	return "source"
}

// key identifies a Device across probes for diffing, deliberately
// distinct from Endpoint.Key since a render endpoint yields two Devices
// (sink + loopback source) that must diff independently.
func (d Device) key() string {
	base := d.Endpoint.Key()
	if d.Loopback {
		return base + "#loopback"
	}
	return base
}

// Event is one entry of the list Update returns.
type Event struct {
	Kind   EventKind
	Device Device
	// Previous is set only for EventChanged, the prior default-flagged
	// device this one replaces.
	Previous Device
}

type EventKind int

const (
	EventAdded EventKind = iota
	EventRemoved
	EventChanged
)

// enumerator is the subset of *enumerate.Enumerator the provider needs,
// kept as an interface so tests can substitute a fake snapshot source.
type enumerator interface {
	Snapshot() ([]enumerate.Endpoint, error)
}

// Provider holds a reference to an Enumerator and the last materialized
// device list, diffing on every probe.
type Provider struct {
	log  *slog.Logger
	enum enumerator

	mu      sync.Mutex
	current map[string]Device
}

func New(log *slog.Logger, enum enumerator) *Provider {
	if log == nil {
		log = slog.Default()
	}
	return &Provider{log: log.With("component", "provider"), enum: enum, current: map[string]Device{}}
}

// Probe synchronously queries the Enumerator and returns the full
// current device list without diffing (used for the initial listing).
func (p *Provider) Probe() ([]Device, error) {
	eps, err := p.enum.Snapshot()
	if err != nil {
		return nil, err
	}
	devices := materialize(eps)

	p.mu.Lock()
	p.current = indexByKey(devices)
	p.mu.Unlock()

	return devices, nil
}

// Update re-probes and diffs against the last known device set.
func (p *Provider) Update() ([]Event, error) {
	eps, err := p.enum.Snapshot()
	if err != nil {
		return nil, err
	}
	next := indexByKey(materialize(eps))

	p.mu.Lock()
	prev := p.current
	p.current = next
	p.mu.Unlock()

	return diff(prev, next), nil
}

func materialize(eps []enumerate.Endpoint) []Device {
	var out []Device
	for _, ep := range eps {
		base := Device{
			API:            "wasapi2",
			ID:             ep.ID,
			IsDefault:      ep.IsDefault,
			FriendlyName:   ep.FriendlyName,
			FormFactor:     ep.FormFactor,
			EnumeratorName: ep.EnumeratorName,
			Endpoint:       ep,
		}
		switch ep.Flow {
		case enumerate.FlowCapture:
			base.Class = ClassSource
			out = append(out, base)
		case enumerate.FlowRender:
			sink := base
			sink.Class = ClassSink
			out = append(out, sink)

			loop := base
			loop.Class = ClassSource
			loop.Loopback = true
			out = append(out, loop)
		}
	}
	return out
}

func indexByKey(devices []Device) map[string]Device {
	m := make(map[string]Device, len(devices))
	for _, d := range devices {
		m[d.key()] = d
	}
	return m
}

// diff compares two device index maps by full property-structure
// equality. A default-flagged entry replaced by a default-flagged entry
// of the same key (the key already encodes class+loopback, so "same
// class" is implicit) is reported as EventChanged rather than a
// remove+add pair, preserving default-device identity.
func diff(prev, next map[string]Device) []Event {
	var events []Event
	for key, n := range next {
		o, existed := prev[key]
		if !existed {
			events = append(events, Event{Kind: EventAdded, Device: n})
			continue
		}
		if o == n {
			continue
		}
		if o.IsDefault && n.IsDefault {
			events = append(events, Event{Kind: EventChanged, Device: n, Previous: o})
			continue
		}
		events = append(events, Event{Kind: EventRemoved, Device: o})
		events = append(events, Event{Kind: EventAdded, Device: n})
	}
	for key, o := range prev {
		if _, stillThere := next[key]; !stillThere {
			events = append(events, Event{Kind: EventRemoved, Device: o})
		}
	}
	return events
}
