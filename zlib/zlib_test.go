package zlib_test

import (
	"bytes"
	"testing"

	"github.com/ossearch/ossearch/zlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	original := bytes.Repeat([]byte("<html><body>hello world</body></html>"), 100)

	compressed, err := zlib.Compress(original)
	require.NoError(t, err)
	assert.Less(t, len(compressed), len(original))

	restored, err := zlib.Decompress(compressed)
	require.NoError(t, err)
	assert.Equal(t, original, restored)
}

func TestDecompress_Garbage(t *testing.T) {
	t.Parallel()

	_, err := zlib.Decompress([]byte("not a zlib stream"))
	assert.Error(t, err)
}
