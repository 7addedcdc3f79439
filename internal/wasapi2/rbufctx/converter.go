package rbufctx

import (
	"encoding/binary"
	"math"

	"github.com/go-musicfox/wasapi2/internal/wasapi2/waveformat"
)

// Converter bridges a host format and a device format that differ in
// sample rate, bit depth, or channel count. It is not a
// resampling-quality research project: rate conversion is linear
// interpolation, channel conversion is drop/duplicate. Good enough to
// keep exclusive-mode streams alive when the closest device format
// isn't an exact match for what the pipeline produces.
type Converter struct {
	Host   waveformat.Format
	Device waveformat.Format
}

// NewConverter returns nil when host and device are equivalent, per
// spec (converter only instantiated when formats differ).
func NewConverter(host, device waveformat.Format) *Converter {
	if host.Equal(device) {
		return nil
	}
	return &Converter{Host: host, Device: device}
}

// Convert renders host-format samples in src into device-format samples,
// returning the converted device-format bytes.
func (c *Converter) Convert(src []byte) []byte {
	hostFrames := len(src) / int(c.Host.BlockAlign())
	floatSamples := toFloat32(src, c.Host, hostFrames)

	floatSamples = remix(floatSamples, hostFrames, int(c.Host.Channels), int(c.Device.Channels))

	if c.Host.SampleRate != c.Device.SampleRate {
		floatSamples = resampleLinear(floatSamples, int(c.Device.Channels), c.Host.SampleRate, c.Device.SampleRate)
	}

	deviceFrames := len(floatSamples) / int(c.Device.Channels)
	return fromFloat32(floatSamples, c.Device, deviceFrames)
}

func toFloat32(src []byte, f waveformat.Format, frames int) []float32 {
	n := frames * int(f.Channels)
	out := make([]float32, n)
	stride := int(f.BitsPerSample) / 8
	for i := 0; i < n; i++ {
		off := i * stride
		switch {
		case f.Tag == waveformat.TagIEEEFloat && f.BitsPerSample == 32:
			out[i] = math.Float32frombits(binary.LittleEndian.Uint32(src[off:]))
		case f.BitsPerSample == 16:
			out[i] = float32(int16(binary.LittleEndian.Uint16(src[off:]))) / 32768.0
		case f.BitsPerSample == 32:
			out[i] = float32(int32(binary.LittleEndian.Uint32(src[off:]))) / 2147483648.0
		default:
			out[i] = 0
		}
	}
	return out
}

func fromFloat32(samples []float32, f waveformat.Format, frames int) []byte {
	n := frames * int(f.Channels)
	stride := int(f.BitsPerSample) / 8
	out := make([]byte, n*stride)
	for i := 0; i < n && i < len(samples); i++ {
		off := i * stride
		v := samples[i]
		switch {
		case f.Tag == waveformat.TagIEEEFloat && f.BitsPerSample == 32:
			binary.LittleEndian.PutUint32(out[off:], math.Float32bits(v))
		case f.BitsPerSample == 16:
			binary.LittleEndian.PutUint16(out[off:], uint16(int16(clampFloat(v)*32767)))
		case f.BitsPerSample == 32:
			binary.LittleEndian.PutUint32(out[off:], uint32(int32(clampFloat(v)*2147483647)))
		}
	}
	return out
}

func clampFloat(v float32) float32 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}

func remix(samples []float32, frames, srcChans, dstChans int) []float32 {
	if srcChans == dstChans {
		return samples
	}
	out := make([]float32, frames*dstChans)
	for frame := 0; frame < frames; frame++ {
		srcOff := frame * srcChans
		dstOff := frame * dstChans
		switch {
		case dstChans < srcChans:
			copy(out[dstOff:dstOff+dstChans], samples[srcOff:srcOff+srcChans])
		default:
			for ch := 0; ch < dstChans; ch++ {
				out[dstOff+ch] = samples[srcOff+ch%srcChans]
			}
		}
	}
	return out
}

func resampleLinear(samples []float32, channels int, srcRate, dstRate uint32) []float32 {
	srcFrames := len(samples) / channels
	if srcFrames == 0 {
		return samples
	}
	ratio := float64(dstRate) / float64(srcRate)
	dstFrames := int(float64(srcFrames) * ratio)
	out := make([]float32, dstFrames*channels)
	for i := 0; i < dstFrames; i++ {
		srcPos := float64(i) / ratio
		i0 := int(srcPos)
		if i0 >= srcFrames-1 {
			i0 = srcFrames - 2
			if i0 < 0 {
				i0 = 0
			}
		}
		frac := float32(srcPos - float64(i0))
		for ch := 0; ch < channels; ch++ {
			a := samples[i0*channels+ch]
			b := samples[(i0+1)*channels+ch]
			out[i*channels+ch] = a + (b-a)*frac
		}
	}
	return out
}
