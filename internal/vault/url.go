package vault

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
)

const (
	maxFetchSize = 5 * 1024 * 1024
	fetchTimeout = 30 * time.Second
)

// URLFetcher fetches web pages and converts them to markdown for prompt
// context and the fetch_urls_content directive.
type URLFetcher struct {
	client    *http.Client
	converter *md.Converter
}

// NewURLFetcher creates a fetcher with sane limits.
func NewURLFetcher() *URLFetcher {
	converter := md.NewConverter("", true, &md.Options{
		HeadingStyle:     "atx",
		BulletListMarker: "-",
		CodeBlockStyle:   "fenced",
	})
	converter.Remove("script", "style", "meta", "link", "noscript")

	return &URLFetcher{
		client:    &http.Client{Timeout: fetchTimeout},
		converter: converter,
	}
}

// Markdown fetches url and returns its content as markdown. Non-HTML
// responses are returned as-is.
func (f *URLFetcher) Markdown(ctx context.Context, url string) (string, error) {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return "", fmt.Errorf("url must start with http:// or https://")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "text/html, text/markdown;q=0.9, text/plain;q=0.8, */*;q=0.1")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("fetch failed with status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchSize+1))
	if err != nil {
		return "", err
	}
	if len(body) > maxFetchSize {
		return "", fmt.Errorf("response exceeds %d byte limit", maxFetchSize)
	}

	content := string(body)
	if !strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
		return content, nil
	}

	out, err := f.converter.ConvertString(content)
	if err != nil {
		return "", fmt.Errorf("html conversion failed: %w", err)
	}
	if title := pageTitle(content); title != "" {
		out = "# " + title + "\n\n" + out
	}
	return out, nil
}

func pageTitle(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}
