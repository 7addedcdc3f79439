// Package enumerate wraps IMMDeviceEnumerator behind a dedicated
// COM-apartment thread, publishing the active endpoint list and
// coalesced change notifications.
package enumerate

import "github.com/go-musicfox/wasapi2/internal/wasapi2/waveformat"

// FormFactor mirrors the WASAPI EndpointFormFactor enum values that
// matter to the pipeline (unrecognized values pass through as
// FormFactorUnknown).
type FormFactor int

const (
	FormFactorUnknown FormFactor = iota
	FormFactorSpeakers
	FormFactorLineLevel
	FormFactorHeadphones
	FormFactorMicrophone
	FormFactorHeadset
	FormFactorHandset
	FormFactorDigital
	FormFactorSPDIF
	FormFactorHDMI
	FormFactorUSBAudio
)

func (f FormFactor) String() string {
	switch f {
	case FormFactorSpeakers:
		return "speakers"
	case FormFactorLineLevel:
		return "line"
	case FormFactorHeadphones:
		return "headphones"
	case FormFactorMicrophone:
		return "microphone"
	case FormFactorHeadset:
		return "headset"
	case FormFactorHandset:
		return "handset"
	case FormFactorDigital:
		return "digital"
	case FormFactorSPDIF:
		return "spdif"
	case FormFactorHDMI:
		return "hdmi"
	case FormFactorUSBAudio:
		return "usb"
	default:
		return "unknown"
	}
}

// Flow is the data-flow direction of an endpoint.
type Flow int

const (
	FlowRender Flow = iota
	FlowCapture
)

// Endpoint is one active audio endpoint as materialized by the
// enumerator: id, friendly name, flow, form factor, enumerator name
// (the audio adapter/driver package name), probed mix format and
// default-device flag.
type Endpoint struct {
	ID              string
	FriendlyName    string
	Flow            Flow
	FormFactor      FormFactor
	EnumeratorName  string
	MixFormat       waveformat.Format
	IsDefault       bool
	DefaultRole     string // "console", "multimedia", "communications", "" when not default
}

// Key identifies an endpoint uniquely for diffing purposes: physical
// endpoints key on ID, synthesized default entries key on flow+"default"
// so the default entry survives a default-device swap underneath it.
func (e Endpoint) Key() string {
	if e.IsDefault {
		if e.Flow == FlowRender {
			return "default-render"
		}
		return "default-capture"
	}
	return e.ID
}
