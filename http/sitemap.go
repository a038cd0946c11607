package http

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/beevik/etree"
)

// Sitemap discovers page URLs from a site's sitemaps. The seed command uses
// it to expand a single site URL into frontier entries.
type Sitemap struct {
	client *http.Client
}

// NewSitemap creates a Sitemap discoverer. If client is nil,
// http.DefaultClient is used.
func NewSitemap(client *http.Client) *Sitemap {
	if client == nil {
		client = http.DefaultClient
	}
	return &Sitemap{client: client}
}

// Discover returns the deduplicated page URLs listed by the site's
// sitemaps. Sitemap locations come from robots.txt directives, falling back
// to /sitemap.xml. Returns an empty slice when the site has no sitemap.
func (s *Sitemap) Discover(ctx context.Context, site string) ([]string, error) {
	base, err := url.Parse(site)
	if err != nil {
		return nil, fmt.Errorf("invalid site URL: %w", err)
	}
	base.Path = ""

	locations := s.locations(ctx, base)

	var urls []string
	seenMaps := make(map[string]bool)
	seenURLs := make(map[string]bool)
	for _, loc := range locations {
		found, err := s.walk(ctx, loc, seenMaps)
		if err != nil {
			return nil, err
		}
		for _, u := range found {
			if !seenURLs[u] {
				seenURLs[u] = true
				urls = append(urls, u)
			}
		}
	}

	if urls == nil {
		urls = []string{}
	}
	return urls, nil
}

// locations finds sitemap URLs for a site root.
func (s *Sitemap) locations(ctx context.Context, base *url.URL) []string {
	robots := base.ResolveReference(&url.URL{Path: "/robots.txt"})
	if found := s.fromRobots(ctx, robots.String()); len(found) > 0 {
		return found
	}

	fallback := base.ResolveReference(&url.URL{Path: "/sitemap.xml"})
	return []string{fallback.String()}
}

// fromRobots extracts Sitemap: directives from robots.txt.
func (s *Sitemap) fromRobots(ctx context.Context, robotsURL string) []string {
	body, err := s.get(ctx, robotsURL)
	if err != nil {
		return nil
	}
	defer body.Close()

	var found []string
	scanner := bufio.NewScanner(body)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(strings.ToLower(line), "sitemap:") {
			continue
		}
		if loc := strings.TrimSpace(line[len("sitemap:"):]); loc != "" {
			found = append(found, loc)
		}
	}
	return found
}

// walk fetches one sitemap and recurses through index entries.
func (s *Sitemap) walk(ctx context.Context, sitemapURL string, seen map[string]bool) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if seen[sitemapURL] {
		return nil, nil
	}
	seen[sitemapURL] = true

	body, err := s.get(ctx, sitemapURL)
	if err != nil {
		// A missing fallback sitemap is not an error for the site.
		return nil, nil
	}
	defer body.Close()

	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(body); err != nil {
		return nil, fmt.Errorf("parsing sitemap %s: %w", sitemapURL, err)
	}
	root := doc.Root()
	if root == nil {
		return nil, nil
	}

	if root.Tag == "sitemapindex" {
		var urls []string
		for _, child := range locTexts(root, "sitemap") {
			found, err := s.walk(ctx, child, seen)
			if err != nil {
				return nil, err
			}
			urls = append(urls, found...)
		}
		return urls, nil
	}

	return locTexts(root, "url"), nil
}

// locTexts collects non-empty <loc> texts under the named child elements.
func locTexts(root *etree.Element, tag string) []string {
	var out []string
	for _, el := range root.SelectElements(tag) {
		loc := el.SelectElement("loc")
		if loc == nil {
			continue
		}
		if text := strings.TrimSpace(loc.Text()); text != "" {
			out = append(out, text)
		}
	}
	return out
}

func (s *Sitemap) get(ctx context.Context, target string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, target)
	}
	return resp.Body, nil
}
