package http_test

import (
	"context"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"testing"

	osshttp "github.com/ossearch/ossearch/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetcher_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("sends crawler user agent", func(t *testing.T) {
		t.Parallel()

		var gotUA string
		srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
			gotUA = r.Header.Get("User-Agent")
			io.WriteString(w, "<html>ok</html>")
		}))
		t.Cleanup(srv.Close)

		res, err := osshttp.NewFetcher().Fetch(context.Background(), srv.URL)

		require.NoError(t, err)
		assert.Equal(t, "OS-SEARCH-ENGINE-CRAWLER", gotUA)
		assert.Equal(t, srv.URL, res.URL)
		assert.Equal(t, []byte("<html>ok</html>"), res.Body)
	})

	t.Run("reports final URL after redirect", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
			if r.URL.Path == "/old" {
				nethttp.Redirect(w, r, "/new", nethttp.StatusMovedPermanently)
				return
			}
			io.WriteString(w, "landed")
		}))
		t.Cleanup(srv.Close)

		res, err := osshttp.NewFetcher().Fetch(context.Background(), srv.URL+"/old")

		require.NoError(t, err)
		assert.Equal(t, srv.URL+"/old", res.URL)
		assert.Equal(t, srv.URL+"/new", res.FinalURL)
		assert.Equal(t, []byte("landed"), res.Body)
	})

	t.Run("final URL equals URL without redirect", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
			io.WriteString(w, "x")
		}))
		t.Cleanup(srv.Close)

		res, err := osshttp.NewFetcher().Fetch(context.Background(), srv.URL+"/page")

		require.NoError(t, err)
		assert.Equal(t, res.URL, res.FinalURL)
	})

	t.Run("non-200 is an error", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
			nethttp.NotFound(w, r)
		}))
		t.Cleanup(srv.Close)

		_, err := osshttp.NewFetcher().Fetch(context.Background(), srv.URL)
		assert.Error(t, err)
	})

	t.Run("body is capped", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
			io.WriteString(w, "0123456789")
		}))
		t.Cleanup(srv.Close)

		res, err := osshttp.NewFetcher(osshttp.WithMaxBodyBytes(4)).Fetch(context.Background(), srv.URL)

		require.NoError(t, err)
		assert.Equal(t, []byte("0123"), res.Body)
	})
}
