package rbufctx

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRepackCaptureS24In32_PreservesSign(t *testing.T) {
	src := make([]byte, 8)
	binary.LittleEndian.PutUint32(src[0:], 0x7FFFFF00) // max positive 24-bit, shifted to MSB
	binary.LittleEndian.PutUint32(src[4:], 0x80000000) // negative value, MSB-aligned

	dst := make([]byte, 8)
	RepackCaptureS24In32(dst, src)

	assert.Equal(t, int32(0x007FFFFF), int32(binary.LittleEndian.Uint32(dst[0:])))
	assert.Equal(t, int32(-0x800000), int32(binary.LittleEndian.Uint32(dst[4:])))
}

func TestRepackRenderS24In32_RoundTripsCapture(t *testing.T) {
	original := make([]byte, 4)
	binary.LittleEndian.PutUint32(original, 0x00123456)

	device := make([]byte, 4)
	RepackRenderS24In32(device, original)

	host := make([]byte, 4)
	RepackCaptureS24In32(host, device)

	assert.Equal(t, original, host)
}

func TestRepackInPlace(t *testing.T) {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, 0x00ABCDEF)
	RepackRenderS24In32(buf, buf)
	assert.Equal(t, uint32(0xABCDEF00), binary.LittleEndian.Uint32(buf))
}
