package waveformat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pcm(channels uint16, rate uint32, bits, valid uint16) Format {
	return Format{Tag: TagPCM, Channels: channels, SampleRate: rate, BitsPerSample: bits, ValidBits: valid, SubFormat: SubformatPCM}
}

func TestComparator_S24In32SortsLast(t *testing.T) {
	basis := pcm(2, 48000, 16, 16)
	formats := []Format{
		pcm(2, 48000, 32, 24), // S24-in-32
		pcm(2, 48000, 16, 16),
		pcm(2, 44100, 16, 16),
	}
	Sort(basis, formats)
	assert.True(t, formats[len(formats)-1].IsS24In32())
}

func TestComparator_ChannelDistanceDominates(t *testing.T) {
	basis := pcm(2, 48000, 16, 16)
	closer := pcm(2, 96000, 16, 16)  // channel distance 0
	farther := pcm(6, 48000, 16, 16) // channel distance 4
	assert.Equal(t, -1, Less(basis, closer, farther))
}

func TestComparator_SampleRateTieBreaksHigher(t *testing.T) {
	basis := pcm(2, 48000, 16, 16)
	below := pcm(2, 44100, 16, 16) // distance 3900
	above := pcm(2, 51900, 16, 16) // distance 3900, tie -> prefer higher
	require.Equal(t, absInt64Local(48000-44100), absInt64Local(51900-48000))
	assert.Equal(t, -1, Less(basis, above, below))
}

func absInt64Local(n int) int64 { return absInt64(int64(n)) }

func TestComparator_StrictWeakOrdering(t *testing.T) {
	basis := pcm(2, 48000, 16, 16)
	pool := []Format{
		pcm(2, 48000, 16, 16),
		pcm(2, 44100, 16, 16),
		pcm(1, 48000, 16, 16),
		pcm(2, 48000, 32, 24),
		pcm(6, 48000, 24, 24),
		{Tag: TagIEEEFloat, Channels: 2, SampleRate: 48000, BitsPerSample: 32, ValidBits: 32, SubFormat: SubformatFloat},
	}
	for _, a := range pool {
		for _, b := range pool {
			ab := Less(basis, a, b)
			ba := Less(basis, b, a)
			if ab < 0 {
				assert.GreaterOrEqual(t, ba, 0, "A<B implies not B<A")
			}
		}
	}
	for _, a := range pool {
		for _, b := range pool {
			for _, c := range pool {
				if Less(basis, a, b) < 0 && Less(basis, b, c) < 0 {
					assert.Less(t, Less(basis, a, c), 0, "transitivity violated")
				}
			}
		}
	}
}

func TestComparator_SubformatPreference(t *testing.T) {
	basis := pcm(2, 48000, 16, 16)
	pcmFmt := pcm(2, 48000, 24, 24)
	floatFmt := Format{Tag: TagIEEEFloat, Channels: 2, SampleRate: 48000, BitsPerSample: 24, ValidBits: 24, SubFormat: SubformatFloat}
	assert.Equal(t, -1, Less(basis, pcmFmt, floatFmt))
}

func TestSort_Stable(t *testing.T) {
	basis := pcm(2, 48000, 16, 16)
	formats := []Format{
		pcm(2, 48000, 16, 16),
		pcm(2, 48000, 16, 16),
	}
	formats[0].ChannelMask = 1
	formats[1].ChannelMask = 2
	Sort(basis, formats)
	assert.Equal(t, uint32(1), formats[0].ChannelMask)
}
