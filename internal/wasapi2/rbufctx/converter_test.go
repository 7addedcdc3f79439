package rbufctx

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-musicfox/wasapi2/internal/wasapi2/waveformat"
)

func TestNewConverter_NilWhenEquivalent(t *testing.T) {
	f := waveformat.Format{Tag: waveformat.TagPCM, Channels: 2, SampleRate: 48000, BitsPerSample: 16, ValidBits: 16}
	assert.Nil(t, NewConverter(f, f))
}

func TestConverter_BitDepthUpconvert(t *testing.T) {
	host := waveformat.Format{Tag: waveformat.TagPCM, Channels: 2, SampleRate: 48000, BitsPerSample: 16, ValidBits: 16}
	device := waveformat.Format{Tag: waveformat.TagPCM, Channels: 2, SampleRate: 48000, BitsPerSample: 32, ValidBits: 32}
	c := NewConverter(host, device)
	require.NotNil(t, c)

	src := make([]byte, 4) // one stereo frame at 16-bit
	binary.LittleEndian.PutUint16(src[0:], uint16(int16(16384)))
	binary.LittleEndian.PutUint16(src[2:], uint16(int16(-16384)))

	out := c.Convert(src)
	require.Len(t, out, 8) // one stereo frame at 32-bit

	left := int32(binary.LittleEndian.Uint32(out[0:]))
	right := int32(binary.LittleEndian.Uint32(out[4:]))
	assert.Greater(t, left, int32(0))
	assert.Less(t, right, int32(0))
}

func TestConverter_MonoToStereoDuplicates(t *testing.T) {
	host := waveformat.Format{Tag: waveformat.TagPCM, Channels: 1, SampleRate: 48000, BitsPerSample: 16, ValidBits: 16}
	device := waveformat.Format{Tag: waveformat.TagPCM, Channels: 2, SampleRate: 48000, BitsPerSample: 16, ValidBits: 16}
	c := NewConverter(host, device)
	require.NotNil(t, c)

	src := make([]byte, 2)
	binary.LittleEndian.PutUint16(src, uint16(int16(1000)))

	out := c.Convert(src)
	require.Len(t, out, 4)
	left := int16(binary.LittleEndian.Uint16(out[0:]))
	right := int16(binary.LittleEndian.Uint16(out[2:]))
	assert.Equal(t, left, right)
}

func TestConverter_RateChangeProducesExpectedFrameCount(t *testing.T) {
	host := waveformat.Format{Tag: waveformat.TagPCM, Channels: 1, SampleRate: 44100, BitsPerSample: 16, ValidBits: 16}
	device := waveformat.Format{Tag: waveformat.TagPCM, Channels: 1, SampleRate: 48000, BitsPerSample: 16, ValidBits: 16}
	c := NewConverter(host, device)
	require.NotNil(t, c)

	frames := 4410
	src := make([]byte, frames*2)
	out := c.Convert(src)
	gotFrames := len(out) / 2
	assert.InDelta(t, 4800, gotFrames, 2)
}
