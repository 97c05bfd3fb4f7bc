package vault

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkdownConvertsHTML(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`<html><head><title>Release Notes</title><script>evil()</script></head>
<body><h1>Changes</h1><p>Faster <b>search</b>.</p></body></html>`))
	}))
	defer server.Close()

	f := NewURLFetcher()
	out, err := f.Markdown(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Contains(t, out, "# Release Notes")
	assert.Contains(t, out, "# Changes")
	assert.Contains(t, out, "**search**")
	assert.NotContains(t, out, "evil()")
}

func TestMarkdownPassesThroughPlainText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("just text"))
	}))
	defer server.Close()

	f := NewURLFetcher()
	out, err := f.Markdown(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "just text", out)
}

func TestMarkdownRejectsNonHTTPSchemes(t *testing.T) {
	f := NewURLFetcher()
	_, err := f.Markdown(context.Background(), "ftp://example.test/file")
	assert.Error(t, err)
}

func TestMarkdownReportsErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	f := NewURLFetcher()
	_, err := f.Markdown(context.Background(), server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}
