//go:build windows

package waveformat

import (
	"github.com/google/uuid"
	"golang.org/x/sys/windows"

	"github.com/go-musicfox/wasapi2/internal/wasapi2/com"
)

func guidToUUID(g windows.GUID) uuid.UUID {
	var u uuid.UUID
	u[0] = byte(g.Data1 >> 24)
	u[1] = byte(g.Data1 >> 16)
	u[2] = byte(g.Data1 >> 8)
	u[3] = byte(g.Data1)
	u[4] = byte(g.Data2 >> 8)
	u[5] = byte(g.Data2)
	u[6] = byte(g.Data3 >> 8)
	u[7] = byte(g.Data3)
	copy(u[8:], g.Data4[:])
	return u
}

func uuidToGUID(u uuid.UUID) windows.GUID {
	return windows.GUID{
		Data1: uint32(u[0])<<24 | uint32(u[1])<<16 | uint32(u[2])<<8 | uint32(u[3]),
		Data2: uint16(u[4])<<8 | uint16(u[5]),
		Data3: uint16(u[6])<<8 | uint16(u[7]),
		Data4: [8]byte(u[8:16]),
	}
}

// FromWire converts a WAVEFORMATEXTENSIBLE wire struct into a Format.
// isExtensible must be supplied by the caller (derived from whether
// FormatTag == WAVE_FORMAT_EXTENSIBLE and Size >= ExtensibleExtraSize),
// since the wire struct alone can't tell a plain WAVEFORMATEX from an
// EXTENSIBLE one that happened to zero its tail.
func FromWire(w *com.WaveFormatExtensible, isExtensible bool) Format {
	f := Format{
		Channels:      w.Channels,
		SampleRate:    w.SamplesPerSec,
		BitsPerSample: w.BitsPerSample,
		ValidBits:     w.BitsPerSample,
	}
	switch {
	case isExtensible:
		f.Tag = TagExtensible
		f.ValidBits = w.ValidBitsPerSample
		f.ChannelMask = w.ChannelMask
		f.SubFormat = guidToUUID(w.SubFormat)
		if f.SubFormat == SubformatFloat {
			f.Tag = TagIEEEFloat
		} else {
			f.Tag = TagPCM
		}
	case w.FormatTag == com.WAVE_FORMAT_IEEE_FLOAT:
		f.Tag = TagIEEEFloat
		f.SubFormat = SubformatFloat
	default:
		f.Tag = TagPCM
		f.SubFormat = SubformatPCM
	}
	return f
}

// ToWire renders a Format as a WAVEFORMATEXTENSIBLE wire struct, always
// using the EXTENSIBLE tag so ValidBits/ChannelMask/SubFormat survive
// the round trip even for plain PCM/float formats.
func ToWire(f Format) com.WaveFormatExtensible {
	sub := f.SubFormat
	if sub == (uuid.UUID{}) {
		if f.Tag == TagIEEEFloat {
			sub = SubformatFloat
		} else {
			sub = SubformatPCM
		}
	}
	return com.WaveFormatExtensible{
		FormatTag:          com.WAVE_FORMAT_EXTENSIBLE,
		Channels:           f.Channels,
		SamplesPerSec:      f.SampleRate,
		AvgBytesPerSec:     f.AvgBytesPerSec(),
		BlockAlign:         f.BlockAlign(),
		BitsPerSample:      f.BitsPerSample,
		Size:               com.ExtensibleExtraSize,
		ValidBitsPerSample: f.ValidBits,
		ChannelMask:        f.EffectiveMask(),
		SubFormat:          uuidToGUID(sub),
	}
}
