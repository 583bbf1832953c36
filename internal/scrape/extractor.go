package scrape

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/kailas-cloud/pageqa/internal/domain"
	"github.com/kailas-cloud/pageqa/internal/metrics"
)

// citationRe matches bracketed numeric citation markers like [5].
var citationRe = regexp.MustCompile(`\[\d+\]`)

// Extractor fetches a page and extracts cleaned paragraph-level text units.
type Extractor struct {
	client    *http.Client
	userAgent string
	logger    *zap.Logger
}

// Config holds page fetch settings.
type Config struct {
	Timeout   time.Duration
	UserAgent string
	Logger    *zap.Logger
}

// NewExtractor creates a page extractor.
func NewExtractor(cfg Config) *Extractor {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{
		client:    &http.Client{Timeout: timeout},
		userAgent: cfg.UserAgent,
		logger:    logger,
	}
}

// Extract fetches url and returns the visible text of every paragraph
// element in document order. Citation markers ([digits]) and surrounding
// whitespace are stripped; paragraphs empty after stripping are dropped.
// Repeated paragraphs are passed through as-is, not deduplicated.
func (e *Extractor) Extract(ctx context.Context, url string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w: %w", url, domain.ErrFetch, err)
	}
	if e.userAgent != "" {
		req.Header.Set("User-Agent", e.userAgent)
	}

	start := time.Now()
	resp, err := e.client.Do(req)
	if err != nil {
		metrics.ScrapeRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("get %s: %w: %w", url, domain.ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.ScrapeRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("get %s: status %s: %w", url, resp.Status, domain.ErrFetch)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		metrics.ScrapeRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("parse %s: %w: %w", url, domain.ErrParse, err)
	}

	paragraphs := collectParagraphs(doc)

	metrics.ScrapeRequestsTotal.WithLabelValues("success").Inc()
	metrics.ScrapeParagraphsTotal.Add(float64(len(paragraphs)))

	e.logger.Debug("page scraped",
		zap.String("url", url),
		zap.Int("paragraphs", len(paragraphs)),
		zap.Duration("latency", time.Since(start)),
	)
	return paragraphs, nil
}

// collectParagraphs walks the tree and returns cleaned <p> texts in document order.
func collectParagraphs(doc *html.Node) []string {
	var paragraphs []string

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "p" {
			if text := cleanText(visibleText(n)); text != "" {
				paragraphs = append(paragraphs, text)
			}
			return // nested <p> cannot occur in parsed HTML
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return paragraphs
}

// visibleText concatenates the text nodes under n, skipping script and style subtrees.
func visibleText(n *html.Node) string {
	var sb strings.Builder

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			sb.WriteString(n.Data)
		case html.ElementNode:
			if n.Data == "script" || n.Data == "style" {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)

	return sb.String()
}

func cleanText(s string) string {
	return strings.TrimSpace(citationRe.ReplaceAllString(s, ""))
}
