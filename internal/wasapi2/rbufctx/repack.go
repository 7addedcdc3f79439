// Package rbufctx builds and owns the per-activation WASAPI state: the
// audio client, render/capture client, stream/endpoint volume, and the
// optional dummy render client used to drive loopback silence.
package rbufctx

import "encoding/binary"

// RepackCaptureS24In32 shifts each 32-bit sample arithmetically right by
// 8 (device MSB-aligned -> host LSB-aligned), preserving sign for
// negative samples. dst and src may be the same underlying buffer.
func RepackCaptureS24In32(dst, src []byte) {
	n := len(src) / 4
	for i := 0; i < n; i++ {
		off := i * 4
		v := int32(binary.LittleEndian.Uint32(src[off:]))
		v >>= 8
		binary.LittleEndian.PutUint32(dst[off:], uint32(v))
	}
}

// RepackRenderS24In32 shifts each 32-bit sample logically left by 8
// (host LSB-aligned -> device MSB-aligned).
func RepackRenderS24In32(dst, src []byte) {
	n := len(src) / 4
	for i := 0; i < n; i++ {
		off := i * 4
		v := binary.LittleEndian.Uint32(src[off:])
		v <<= 8
		binary.LittleEndian.PutUint32(dst[off:], v)
	}
}
