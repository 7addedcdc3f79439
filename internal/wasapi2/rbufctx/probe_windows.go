//go:build windows

package rbufctx

import (
	"github.com/go-musicfox/wasapi2/internal/wasapi2/com"
	"github.com/go-musicfox/wasapi2/internal/wasapi2/waveformat"
)

// exclusiveDepths, exclusiveRates and exclusiveChannels form the fixed
// {depth x rate x channels} grid probed
// against IsFormatSupported(EXCLUSIVE) when no cached format set exists
// for the endpoint.
var (
	exclusiveDepths   = []uint16{16, 24, 32}
	exclusiveRates    = []uint32{44100, 48000, 88200, 96000, 176400, 192000}
	exclusiveChannels = []uint16{1, 2, 4, 6, 8}
)

// probeExclusiveFormats iterates the grid, keeping every combination the
// endpoint accepts for EXCLUSIVE mode.
func probeExclusiveFormats(client *com.AudioClient) []waveformat.Format {
	var out []waveformat.Format
	for _, depth := range exclusiveDepths {
		for _, rate := range exclusiveRates {
			for _, channels := range exclusiveChannels {
				f := waveformat.Format{
					Tag:           waveformat.TagPCM,
					Channels:      channels,
					SampleRate:    rate,
					BitsPerSample: depth,
					ValidBits:     depth,
					SubFormat:     waveformat.SubformatPCM,
				}
				wire := waveformat.ToWire(f)
				if closest, err := client.IsFormatSupported(com.ShareModeExclusive, &wire); err == nil && closest == nil {
					out = append(out, f)
				}
			}
		}
	}
	return out
}

// defaultSharedFormat is synthesised when the endpoint mix format is
// unavailable: PCM, 2-channel, 48kHz, 16-bit.
func defaultSharedFormat() waveformat.Format {
	return waveformat.Format{
		Tag:           waveformat.TagPCM,
		Channels:      2,
		SampleRate:    48000,
		BitsPerSample: 16,
		ValidBits:     16,
		SubFormat:     waveformat.SubformatPCM,
	}
}

// selectFormat picks the entry in set closest to requested using the
// similarity comparator, or requested itself if set is empty.
func selectFormat(set []waveformat.Format, requested waveformat.Format) waveformat.Format {
	for _, f := range set {
		if f.Equal(requested) {
			return f
		}
	}
	if len(set) == 0 {
		return requested
	}
	ranked := append([]waveformat.Format(nil), set...)
	waveformat.Sort(requested, ranked)
	return ranked[0]
}
