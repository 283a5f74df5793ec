package remote

import (
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benjaminschreck/go-include/pkg/include/source"
)

func remoteRequest(url string) source.Request {
	ref, err := source.Parse(url)
	if err != nil {
		panic(err)
	}
	return source.Request{Ref: ref, Referrer: "wiki://WikiStart"}
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/plain", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("plain body"))
	})
	mux.HandleFunc("/latin1", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/x-trac-wiki; charset=iso-8859-1")
		w.Write([]byte{'c', 'a', 'f', 0xe9})
	})
	mux.HandleFunc("/gzip", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		if r.Header.Get("Accept-Encoding") == "" {
			w.Write([]byte("uncompressed"))
			return
		}
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		gz.Write([]byte("compressed body"))
		gz.Close()
	})
	mux.HandleFunc("/redirect", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/plain", http.StatusFound)
	})
	mux.HandleFunc("/big", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("0123456789"))
	})
	mux.HandleFunc("/fail", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestResolverResolve(t *testing.T) {
	srv := newServer(t)
	r := NewResolver()
	ctx := context.Background()

	doc, err := r.Resolve(ctx, remoteRequest(srv.URL+"/plain"))
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/plain", doc.ID)
	assert.Equal(t, "plain body", doc.Text)
	assert.Equal(t, "text/plain", doc.ContentType)

	doc, err = r.Resolve(ctx, remoteRequest(srv.URL+"/latin1"))
	require.NoError(t, err)
	assert.Equal(t, "café", doc.Text)
	assert.Equal(t, "text/x-trac-wiki", doc.ContentType)

	doc, err = r.Resolve(ctx, remoteRequest(srv.URL+"/gzip"))
	require.NoError(t, err)
	assert.Equal(t, "compressed body", doc.Text)

	doc, err = r.Resolve(ctx, remoteRequest(srv.URL+"/redirect"))
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/plain", doc.ID, "canonical id follows redirects")
}

func TestResolverRequestedContentTypeWins(t *testing.T) {
	srv := newServer(t)
	req := remoteRequest(srv.URL + "/plain")
	req.Ref.ContentType = "text/x-rst"

	doc, err := NewResolver().Resolve(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "text/x-rst", doc.ContentType)
}

func TestResolverMaxBytes(t *testing.T) {
	srv := newServer(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		maxBytes int64
		want     string
		wantErr  string
	}{
		{"over the limit", 4, "", "response exceeds 4 bytes"},
		{"one byte over", 9, "", "response exceeds 9 bytes"},
		{"exactly the limit", 10, "0123456789", ""},
		{"under the limit", 64, "0123456789", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := NewResolver(WithMaxBytes(tt.maxBytes)).Resolve(ctx, remoteRequest(srv.URL+"/big"))
			if tt.wantErr != "" {
				var fetchErr *source.FetchError
				require.ErrorAs(t, err, &fetchErr)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Nil(t, doc)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, doc.Text)
		})
	}
}

func TestResolverErrors(t *testing.T) {
	srv := newServer(t)
	r := NewResolver(WithUserAgent("test"))
	ctx := context.Background()

	_, err := r.Resolve(ctx, remoteRequest(srv.URL+"/missing"))
	assert.True(t, source.IsNotFound(err))

	_, err = r.Resolve(ctx, remoteRequest(srv.URL+"/fail"))
	var fetchErr *source.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, err.Error(), "Error while retrieving file")

	_, err = r.Resolve(ctx, remoteRequest("ftp://example.org/file"))
	assert.EqualError(t, err, "Unsupported realm ftp")
}
