package ossearch_test

import (
	"strings"
	"testing"

	"github.com/ossearch/ossearch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSuffixList(t *testing.T) {
	t.Parallel()

	input := strings.Join([]string{
		"// comment line",
		"",
		"com",
		"co.uk",
		"*.ck",
		"uk",
	}, "\n")

	list, err := ossearch.ParseSuffixList(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, 3, list.Len())
	assert.True(t, list.Contains("com"))
	assert.True(t, list.Contains("co.uk"))
	assert.False(t, list.Contains("*.ck"))
	assert.False(t, list.Contains("// comment line"))
}

func TestParseSuffixList_Empty(t *testing.T) {
	t.Parallel()

	_, err := ossearch.ParseSuffixList(strings.NewReader("// only comments\n"))
	require.Error(t, err)
	assert.Equal(t, ossearch.EINVALID, ossearch.ErrorCode(err))
}

func TestSuffixList_SplitHost(t *testing.T) {
	t.Parallel()

	list := ossearch.NewSuffixList("com", "uk", "co.uk")

	tests := []struct {
		host      string
		subdomain string
		domain    string
		tld       string
	}{
		{"a.b.example.co.uk", "a.b", "example", "co.uk"},
		{"www.example.com", "www", "example", "com"},
		{"example.com", "", "example", "com"},
		{"example.co.uk", "", "example", "co.uk"},
		{"co.uk", "", "", "co.uk"},
		{"example.dev", "", "example", "dev"}, // unknown suffix falls back to final label
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.host, func(t *testing.T) {
			t.Parallel()
			sub, dom, tld := list.SplitHost(tt.host)
			assert.Equal(t, tt.subdomain, sub)
			assert.Equal(t, tt.domain, dom)
			assert.Equal(t, tt.tld, tld)
		})
	}
}
