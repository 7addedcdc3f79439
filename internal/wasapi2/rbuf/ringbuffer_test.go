package rbuf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingBuffer_WriteReadRoundTrip(t *testing.T) {
	r := newRingBuffer(8)
	n := r.Write([]byte{1, 2, 3})
	require.Equal(t, 3, n)
	assert.Equal(t, 3, r.Len())
	assert.Equal(t, 5, r.Free())

	out := make([]byte, 3)
	got := r.Read(out)
	assert.Equal(t, 3, got)
	assert.Equal(t, []byte{1, 2, 3}, out)
	assert.Equal(t, 0, r.Len())
}

func TestRingBuffer_WrapsAround(t *testing.T) {
	r := newRingBuffer(4)
	r.Write([]byte{1, 2, 3})
	out := make([]byte, 2)
	r.Read(out)
	assert.Equal(t, []byte{1, 2}, out)

	r.Write([]byte{4, 5, 6})
	assert.Equal(t, 4, r.Len())

	rest := make([]byte, 4)
	got := r.Read(rest)
	assert.Equal(t, 4, got)
	assert.Equal(t, []byte{3, 4, 5, 6}, rest)
}

func TestRingBuffer_WriteTruncatesAtCapacity(t *testing.T) {
	r := newRingBuffer(4)
	n := r.Write([]byte{1, 2, 3, 4, 5, 6})
	assert.Equal(t, 4, n)
	assert.Equal(t, 0, r.Free())
}

func TestRingBuffer_WriteSilenceFillsZero(t *testing.T) {
	r := newRingBuffer(8)
	r.Write([]byte{9, 9})
	n := r.WriteSilence(4)
	assert.Equal(t, 4, n)

	out := make([]byte, 6)
	r.Read(out)
	assert.Equal(t, []byte{9, 9, 0, 0, 0, 0}, out)
}

func TestRingBuffer_Discard(t *testing.T) {
	r := newRingBuffer(8)
	r.Write([]byte{1, 2, 3, 4})
	n := r.Discard(2)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, r.Len())

	out := make([]byte, 2)
	r.Read(out)
	assert.Equal(t, []byte{3, 4}, out)
}

func TestRingBuffer_Reset(t *testing.T) {
	r := newRingBuffer(8)
	r.Write([]byte{1, 2, 3})
	r.Reset()
	assert.Equal(t, 0, r.Len())
	assert.Equal(t, 8, r.Free())
}

func TestRingBuffer_ConservesByteCountAcrossWrapBoundary(t *testing.T) {
	r := newRingBuffer(5)
	total := 0
	for i := 0; i < 20; i++ {
		total += r.Write([]byte{byte(i)})
		if i%3 == 0 {
			out := make([]byte, 1)
			total -= r.Read(out)
		}
	}
	assert.Equal(t, r.Len(), total)
}
