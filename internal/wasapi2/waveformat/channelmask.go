package waveformat

// WASAPI SPEAKER_* bit positions (dsound.h / ksmedia.h).
const (
	SpeakerFrontLeft           uint32 = 0x1
	SpeakerFrontRight          uint32 = 0x2
	SpeakerFrontCenter         uint32 = 0x4
	SpeakerLowFrequency        uint32 = 0x8
	SpeakerBackLeft            uint32 = 0x10
	SpeakerBackRight           uint32 = 0x20
	SpeakerFrontLeftOfCenter   uint32 = 0x40
	SpeakerFrontRightOfCenter  uint32 = 0x80
	SpeakerBackCenter          uint32 = 0x100
	SpeakerSideLeft            uint32 = 0x200
	SpeakerSideRight           uint32 = 0x400
	SpeakerTopCenter           uint32 = 0x800
)

// canonicalMasks gives the default SPEAKER_* mask used when a device
// reports mask==0 but a channel count we recognize, per spec's
// "MONO, STEREO, 2.1, QUAD, 5.0, 5.1, 7.0, 7.1" table.
var canonicalMasks = map[uint16]uint32{
	1: SpeakerFrontCenter, // MONO
	2: SpeakerFrontLeft | SpeakerFrontRight, // STEREO
	3: SpeakerFrontLeft | SpeakerFrontRight | SpeakerLowFrequency, // 2.1
	4: SpeakerFrontLeft | SpeakerFrontRight | SpeakerBackLeft | SpeakerBackRight, // QUAD
	5: SpeakerFrontLeft | SpeakerFrontRight | SpeakerFrontCenter | SpeakerSideLeft | SpeakerSideRight, // 5.0
	6: SpeakerFrontLeft | SpeakerFrontRight | SpeakerFrontCenter | SpeakerLowFrequency | SpeakerBackLeft | SpeakerBackRight, // 5.1
	7: SpeakerFrontLeft | SpeakerFrontRight | SpeakerFrontCenter | SpeakerBackLeft | SpeakerBackRight | SpeakerSideLeft | SpeakerSideRight, // 7.0
	8: SpeakerFrontLeft | SpeakerFrontRight | SpeakerFrontCenter | SpeakerLowFrequency | SpeakerBackLeft | SpeakerBackRight | SpeakerFrontLeftOfCenter | SpeakerFrontRightOfCenter, // 7.1
}

// CanonicalMask returns the default mask for channels (1-8) when an
// endpoint reports a zero mask, and ok=false above 8 channels.
func CanonicalMask(channels uint16) (mask uint32, ok bool) {
	m, found := canonicalMasks[channels]
	return m, found
}

// EffectiveMask resolves the mask to use for comparator/position
// purposes: the reported mask, or the canonical one when zero and
// channels <= 8.
func (f Format) EffectiveMask() uint32 {
	if f.ChannelMask != 0 {
		return f.ChannelMask
	}
	if m, ok := CanonicalMask(f.Channels); ok {
		return m
	}
	return 0
}

// positionOrder is the fixed correspondence table from SPEAKER_* bit to
// the pipeline's channel-position vector index, walked low-bit-first.
var positionOrder = []uint32{
	SpeakerFrontLeft, SpeakerFrontRight, SpeakerFrontCenter, SpeakerLowFrequency,
	SpeakerBackLeft, SpeakerBackRight, SpeakerFrontLeftOfCenter, SpeakerFrontRightOfCenter,
	SpeakerBackCenter, SpeakerSideLeft, SpeakerSideRight, SpeakerTopCenter,
}

// Positions decodes a channel mask into ordered position indices (into
// positionOrder) for the pipeline's channel-position vector.
func Positions(mask uint32) []int {
	var out []int
	for i, bit := range positionOrder {
		if mask&bit != 0 {
			out = append(out, i)
		}
	}
	return out
}
