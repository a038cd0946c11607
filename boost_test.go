package ossearch_test

import (
	"testing"

	"github.com/ossearch/ossearch"
	"github.com/stretchr/testify/assert"
)

func TestBoostFor(t *testing.T) {
	t.Parallel()

	t.Run("domain root without subdomain", func(t *testing.T) {
		t.Parallel()

		boosts := ossearch.BoostFor(&ossearch.Document{ID: "example.com", Domain: "example"})
		assert.Equal(t, ossearch.Boosts{
			"domain":        5000,
			"meta_keywords": 800,
			"title":         350,
		}, boosts)
	})

	t.Run("www counts as no subdomain", func(t *testing.T) {
		t.Parallel()

		boosts := ossearch.BoostFor(&ossearch.Document{ID: "www.example.com", Subdomain: "www", Domain: "example"})
		assert.Equal(t, ossearch.Boosts{
			"domain":        5000,
			"meta_keywords": 800,
			"title":         350,
		}, boosts)
	})

	t.Run("real subdomain gets subdomain boosts", func(t *testing.T) {
		t.Parallel()

		boosts := ossearch.BoostFor(&ossearch.Document{ID: "blog.example.com", Subdomain: "blog", Domain: "example"})
		assert.Equal(t, ossearch.Boosts{
			"domain":        1000,
			"meta_keywords": 400,
			"subdomain":     600,
		}, boosts)
	})

	t.Run("non-root path is ineligible", func(t *testing.T) {
		t.Parallel()

		boosts := ossearch.BoostFor(&ossearch.Document{ID: "example.com/a", Domain: "example", Path: "/a"})
		assert.Nil(t, boosts)
	})
}
