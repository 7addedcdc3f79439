package waveformat

import "fmt"

// Token renders a GStreamer-style audio-format token, e.g. S16LE,
// F32LE, S24_32LE (24 valid bits in a 32-bit container).
func (f Format) Token() string {
	switch {
	case f.Tag == TagIEEEFloat:
		return fmt.Sprintf("F%dLE", f.BitsPerSample)
	case f.BitsPerSample == f.ValidBits:
		return fmt.Sprintf("S%dLE", f.BitsPerSample)
	default:
		return fmt.Sprintf("S%d_%dLE", f.ValidBits, f.BitsPerSample)
	}
}

// ParseToken maps a GStreamer-style token back to bit depth/valid-bits
// and tag; channel count, sample rate and mask must be supplied
// separately by the caller since the token doesn't carry them.
func ParseToken(token string) (tag Tag, bits, validBits uint16, err error) {
	switch token {
	case "S16LE":
		return TagPCM, 16, 16, nil
	case "S24LE":
		return TagPCM, 24, 24, nil
	case "S24_32LE":
		return TagPCM, 32, 24, nil
	case "S32LE":
		return TagPCM, 32, 32, nil
	case "F32LE":
		return TagIEEEFloat, 32, 32, nil
	case "F64LE":
		return TagIEEEFloat, 64, 64, nil
	default:
		return 0, 0, 0, fmt.Errorf("waveformat: unrecognized token %q", token)
	}
}
