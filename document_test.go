package ossearch_test

import (
	"testing"

	"github.com/ossearch/ossearch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewURLRecord(t *testing.T) {
	t.Parallel()

	list := ossearch.NewSuffixList("com", "co.uk")

	t.Run("decomposes host and starts uncrawled", func(t *testing.T) {
		t.Parallel()

		doc, err := ossearch.NewURLRecord("https://www.example.com/a/b.html", list)
		require.NoError(t, err)

		assert.Equal(t, "www.example.com/a/b.html", doc.ID)
		assert.True(t, doc.IsHTTPS)
		assert.Equal(t, "www", doc.Subdomain)
		assert.Equal(t, "example", doc.Domain)
		assert.Equal(t, "com", doc.TLD)
		assert.Equal(t, "/a/b.html", doc.Path)
		require.NotNil(t, doc.LastUpdateTime)
		assert.Equal(t, int64(0), doc.LastUpdate())
	})

	t.Run("keeps query string in identity", func(t *testing.T) {
		t.Parallel()

		doc, err := ossearch.NewURLRecord("http://example.com/p.php?id=2", list)
		require.NoError(t, err)

		assert.Equal(t, "example.com/p.php?id=2", doc.ID)
		assert.False(t, doc.IsHTTPS)
		assert.Equal(t, "/p.php?id=2", doc.Path)
	})

	t.Run("domain root has empty path", func(t *testing.T) {
		t.Parallel()

		doc, err := ossearch.NewURLRecord("https://example.co.uk", list)
		require.NoError(t, err)

		assert.Equal(t, "example.co.uk", doc.ID)
		assert.Empty(t, doc.Subdomain)
		assert.Equal(t, "example", doc.Domain)
		assert.Equal(t, "co.uk", doc.TLD)
		assert.Empty(t, doc.Path)
	})

	t.Run("rejects url without host", func(t *testing.T) {
		t.Parallel()

		_, err := ossearch.NewURLRecord("not-a-url", list)
		require.Error(t, err)
		assert.Equal(t, ossearch.EINVALID, ossearch.ErrorCode(err))
	})
}

func TestDocument_URL(t *testing.T) {
	t.Parallel()

	doc := &ossearch.Document{ID: "example.com/a", IsHTTPS: true}
	assert.Equal(t, "https://example.com/a", doc.URL())

	doc.IsHTTPS = false
	assert.Equal(t, "http://example.com/a", doc.URL())
}

func TestDocument_Promotable(t *testing.T) {
	t.Parallel()

	assert.True(t, (&ossearch.Document{Domain: "example", Content: "hello"}).Promotable())
	assert.False(t, (&ossearch.Document{Domain: "example"}).Promotable())
	assert.False(t, (&ossearch.Document{Content: "hello"}).Promotable())
}

func TestDocument_LastUpdate(t *testing.T) {
	t.Parallel()

	var doc ossearch.Document
	assert.Equal(t, int64(0), doc.LastUpdate())
	assert.Nil(t, doc.LastUpdateTime)

	doc.SetLastUpdate(100)
	assert.Equal(t, int64(100), doc.LastUpdate())

	doc.ClearLastUpdate()
	assert.Nil(t, doc.LastUpdateTime)
}
