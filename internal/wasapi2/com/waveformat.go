//go:build windows

package com

import "golang.org/x/sys/windows"

const (
	WAVE_FORMAT_PCM        uint16 = 0x0001
	WAVE_FORMAT_IEEE_FLOAT uint16 = 0x0003
	WAVE_FORMAT_EXTENSIBLE uint16 = 0xfffe
)

// WaveFormatExtensible is the bit-exact wire layout of
// WAVEFORMATEXTENSIBLE. Field order and sizes must match the Windows ABI
// exactly since this struct is passed by pointer across the syscall
// boundary.
type WaveFormatExtensible struct {
	FormatTag      uint16
	Channels       uint16
	SamplesPerSec  uint32
	AvgBytesPerSec uint32
	BlockAlign     uint16
	BitsPerSample  uint16
	Size           uint16
	ValidBitsPerSample uint16 // union with wSamplesPerBlock / wReserved
	ChannelMask    uint32
	SubFormat      windows.GUID
}

// SizeofWaveFormatEx is offsetof(WAVEFORMATEXTENSIBLE, ValidBitsPerSample),
// i.e. sizeof(WAVEFORMATEX) = 18 bytes.
const SizeofWaveFormatEx = 18

// ExtensibleExtraSize is cbSize for a full WAVEFORMATEXTENSIBLE
// (22 = 2-byte union + 4-byte mask + 16-byte subformat).
const ExtensibleExtraSize = 22
