package waveformat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat_BlockAlignAndAvgBytes(t *testing.T) {
	f := Format{Channels: 2, SampleRate: 48000, BitsPerSample: 16}
	assert.EqualValues(t, 4, f.BlockAlign())
	assert.EqualValues(t, 192000, f.AvgBytesPerSec())
}

func TestFormat_Equal(t *testing.T) {
	a := pcm(2, 48000, 16, 16)
	b := pcm(2, 48000, 16, 16)
	assert.True(t, a.Equal(b))
	b.ChannelMask = 3
	assert.False(t, a.Equal(b))
}

func TestFormat_Token(t *testing.T) {
	cases := []struct {
		f    Format
		want string
	}{
		{pcm(2, 48000, 16, 16), "S16LE"},
		{pcm(2, 48000, 32, 24), "S24_32LE"},
		{Format{Tag: TagIEEEFloat, BitsPerSample: 32, ValidBits: 32}, "F32LE"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.f.Token())
	}
}

func TestParseToken_RoundTrip(t *testing.T) {
	for _, tok := range []string{"S16LE", "S24LE", "S24_32LE", "S32LE", "F32LE", "F64LE"} {
		tag, bits, valid, err := ParseToken(tok)
		assert.NoError(t, err)
		f := Format{Tag: tag, BitsPerSample: bits, ValidBits: valid}
		assert.Equal(t, tok, f.Token())
	}
}

func TestParseToken_Unknown(t *testing.T) {
	_, _, _, err := ParseToken("bogus")
	assert.Error(t, err)
}

func TestCanonicalMask(t *testing.T) {
	m, ok := CanonicalMask(2)
	assert.True(t, ok)
	assert.Equal(t, SpeakerFrontLeft|SpeakerFrontRight, m)

	_, ok = CanonicalMask(9)
	assert.False(t, ok)
}

func TestEffectiveMask_FallsBackToCanonical(t *testing.T) {
	f := Format{Channels: 2}
	assert.Equal(t, SpeakerFrontLeft|SpeakerFrontRight, f.EffectiveMask())

	f.ChannelMask = 0x1234
	assert.Equal(t, uint32(0x1234), f.EffectiveMask())
}

func TestPositions_DecodesInOrder(t *testing.T) {
	mask := SpeakerFrontLeft | SpeakerBackLeft
	pos := Positions(mask)
	assert.Equal(t, []int{0, 4}, pos)
}

func TestIsS24In32(t *testing.T) {
	assert.True(t, pcm(2, 48000, 32, 24).IsS24In32())
	assert.False(t, pcm(2, 48000, 32, 32).IsS24In32())
	assert.False(t, pcm(2, 48000, 16, 16).IsS24In32())
}
