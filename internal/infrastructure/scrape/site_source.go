package scrape

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"newsbrief/internal/config"
	"newsbrief/internal/domain"
	"newsbrief/internal/ports"
)

const (
	fetchTimeout = 10 * time.Second
	userAgent    = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// SiteSource extracts headline links from one configured website via a
// CSS selector.
type SiteSource struct {
	site   config.SiteConfig
	client *http.Client
	cap    int
}

var _ ports.ItemSource = (*SiteSource)(nil)

// NewSiteSource wires an HTTP client; cap bounds matches per run and
// defaults to 5.
func NewSiteSource(site config.SiteConfig, client *http.Client, cap int) *SiteSource {
	if client == nil {
		client = &http.Client{Timeout: fetchTimeout}
	}
	if cap <= 0 {
		cap = 5
	}
	return &SiteSource{site: site, client: client, cap: cap}
}

// Name identifies the source in logs.
func (s *SiteSource) Name() string {
	return "site:" + s.site.Name
}

// Collect fetches the page and maps the leading selector matches. Headlines
// carry no summary; the published date is the collection time.
func (s *SiteSource) Collect(ctx context.Context) ([]domain.Item, error) {
	doc, err := s.fetchDocument(ctx)
	if err != nil {
		return nil, err
	}

	origin, err := siteOrigin(s.site.URL)
	if err != nil {
		return nil, fmt.Errorf("site url: %w", err)
	}

	now := time.Now()
	items := make([]domain.Item, 0, s.cap)
	doc.Find(s.site.Selector).EachWithBreak(func(i int, sel *goquery.Selection) bool {
		if len(items) >= s.cap {
			return false
		}

		title := strings.TrimSpace(sel.Text())
		href := extractHref(sel)
		if title == "" || href == "" {
			return true
		}
		if strings.HasPrefix(href, "/") {
			href = origin + href
		}

		items = append(items, domain.Item{
			Title:       title,
			URL:         href,
			Source:      s.site.Name,
			PublishedAt: now,
		})
		return true
	})

	return items, nil
}

func (s *SiteSource) fetchDocument(ctx context.Context) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.site.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("site returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	return doc, nil
}

// extractHref takes the href of the matched element itself when it is an
// anchor, otherwise the first anchor inside it.
func extractHref(sel *goquery.Selection) string {
	if goquery.NodeName(sel) == "a" {
		href, _ := sel.Attr("href")
		return strings.TrimSpace(href)
	}
	href, _ := sel.Find("a").First().Attr("href")
	return strings.TrimSpace(href)
}

func siteOrigin(raw string) (string, error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return "", fmt.Errorf("not an absolute url: %s", raw)
	}
	return parsed.Scheme + "://" + parsed.Host, nil
}
