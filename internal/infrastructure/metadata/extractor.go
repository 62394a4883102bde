// Package metadata fetches a web page and reads the title and description it declares.
package metadata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/tastelens/backend/internal/domain"
	"github.com/tastelens/backend/internal/infrastructure/logger"
)

const (
	// DefaultTimeout bounds a single page fetch
	DefaultTimeout = 5 * time.Second

	maxPageBytes = 2 << 20
	userAgent    = "Mozilla/5.0 (compatible; TasteLens/1.0)"
)

// Extractor implements domain.MetadataFetcher with goquery
type Extractor struct {
	client *http.Client
	log    logger.Logger
}

// NewExtractor creates an extractor whose requests time out after timeout
func NewExtractor(timeout time.Duration, log logger.Logger) *Extractor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Extractor{
		client: &http.Client{Timeout: timeout},
		log:    log,
	}
}

// Fetch downloads pageURL and returns its title and description.
// OpenGraph values take priority over <title> and the description meta tag.
func (e *Extractor) Fetch(ctx context.Context, pageURL string) (*domain.PageMetadata, error) {
	u, err := url.Parse(pageURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: invalid page URL %q", domain.ErrInvalidRequest, pageURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d from %s", resp.StatusCode, pageURL)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	meta := &domain.PageMetadata{
		Title:       extractTitle(doc),
		Description: extractDescription(doc),
	}

	e.log.Debug("Fetched page metadata",
		logger.String("url", pageURL),
		logger.String("title", meta.Title),
	)
	return meta, nil
}

func extractTitle(doc *goquery.Document) string {
	if og := metaContent(doc, "meta[property='og:title']"); og != "" {
		return og
	}
	return normalizeSpace(doc.Find("title").First().Text())
}

func extractDescription(doc *goquery.Document) string {
	if og := metaContent(doc, "meta[property='og:description']"); og != "" {
		return og
	}
	return metaContent(doc, "meta[name='description']")
}

func metaContent(doc *goquery.Document, selector string) string {
	content, _ := doc.Find(selector).First().Attr("content")
	return normalizeSpace(content)
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
