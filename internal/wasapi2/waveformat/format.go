// Package waveformat implements format ↔ caps conversion, channel-mask
// mapping and the similarity comparator used to rank an endpoint's
// probed format set against a basis format.
package waveformat

import (
	"fmt"

	"github.com/google/uuid"
)

// Tag identifies the sample encoding family.
type Tag int

const (
	TagPCM Tag = iota
	TagIEEEFloat
	TagExtensible
)

// Format is the bit-exact description the rest of the module works
// with, decoupled from the WAVEFORMATEXTENSIBLE wire struct.
type Format struct {
	Tag            Tag
	Channels       uint16
	SampleRate     uint32
	BitsPerSample  uint16 // container size
	ValidBits      uint16 // <= BitsPerSample
	ChannelMask    uint32
	SubFormat      uuid.UUID
}

// BlockAlign returns channels * bitsPerSample/8.
func (f Format) BlockAlign() uint16 {
	return f.Channels * (f.BitsPerSample / 8)
}

// AvgBytesPerSec returns rate * BlockAlign.
func (f Format) AvgBytesPerSec() uint32 {
	return f.SampleRate * uint32(f.BlockAlign())
}

// IsS24In32 reports whether this is PCM in a 32-bit container carrying
// only 24 valid bits, the format the comparator demotes to the tail.
func (f Format) IsS24In32() bool {
	return f.Tag != TagIEEEFloat && f.BitsPerSample == 32 && f.ValidBits == 24
}

// Equal reports field-for-field equivalence, per spec.
func (f Format) Equal(o Format) bool {
	return f.Tag == o.Tag && f.Channels == o.Channels && f.SampleRate == o.SampleRate &&
		f.BitsPerSample == o.BitsPerSample && f.ValidBits == o.ValidBits &&
		f.ChannelMask == o.ChannelMask && f.SubFormat == o.SubFormat
}

func (f Format) String() string {
	return fmt.Sprintf("%s %dch@%dHz %d/%dbit mask=0x%x", f.Token(), f.Channels, f.SampleRate, f.ValidBits, f.BitsPerSample, f.ChannelMask)
}

// Well-known KSDATAFORMAT_SUBTYPE GUIDs, mirrored here as uuid.UUID so
// this package stays buildable without the windows-only com package.
var (
	SubformatPCM   = uuid.MustParse("00000001-0000-0010-8000-00aa00389b71")
	SubformatFloat = uuid.MustParse("00000003-0000-0010-8000-00aa00389b71")
)
