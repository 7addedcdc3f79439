package provider

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-musicfox/wasapi2/internal/wasapi2/waveformat"
)

func TestFormatCache_PutGetInvalidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "formats.db")
	cache, err := OpenFormatCache(path)
	require.NoError(t, err)
	defer cache.Close()

	_, ok, err := cache.Get("endpoint-1")
	require.NoError(t, err)
	assert.False(t, ok)

	formats := []waveformat.Format{
		{Tag: waveformat.TagPCM, Channels: 2, SampleRate: 48000, BitsPerSample: 16, ValidBits: 16, SubFormat: waveformat.SubformatPCM},
	}
	require.NoError(t, cache.Put("endpoint-1", formats))

	got, ok, err := cache.Get("endpoint-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, formats, got)

	require.NoError(t, cache.Invalidate("endpoint-1"))
	_, ok, err = cache.Get("endpoint-1")
	require.NoError(t, err)
	assert.False(t, ok)
}
