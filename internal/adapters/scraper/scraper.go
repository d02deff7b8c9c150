package scraper

import (
	"context"

	"postmetrics/internal/domain"
	"postmetrics/pkg/log"
)

// MetricsScraper reads engagement counters off a rendered post page.
type MetricsScraper struct {
	renderer  Renderer
	selectors *SelectorConfig
	userAgent string
}

// NewMetricsScraper creates a scraper. userAgent is used for platforms
// whose selector set does not pin one.
func NewMetricsScraper(renderer Renderer, selectors *SelectorConfig, userAgent string) *MetricsScraper {
	return &MetricsScraper{
		renderer:  renderer,
		selectors: selectors,
		userAgent: userAgent,
	}
}

// Fetch renders ref.NormalizedURL and runs the extraction cascade on it.
// Render failures abort the fetch; extraction misses only leave zeros.
func (s *MetricsScraper) Fetch(ctx context.Context, ref domain.PostReference) (*domain.Metrics, error) {
	sel, ok := s.selectors.For(ref.Platform)
	if !ok {
		return nil, domain.ErrUnsupportedPlatform
	}

	req := RenderRequest{
		URL:              ref.NormalizedURL,
		Wait:             sel.Wait,
		Timeout:          sel.Timeout,
		UserAgent:        sel.UserAgent,
		Container:        sel.Container,
		ContainerTimeout: sel.ContainerTimeout,
	}
	if req.UserAgent == "" {
		req.UserAgent = s.userAgent
	}

	ctx = log.WithFields(ctx, "platform", string(ref.Platform), "url", ref.NormalizedURL)
	log.GlobalDebugCtx(ctx, "rendering post", "wait", string(req.Wait), "timeout", req.Timeout.String())

	html, err := s.renderer.Render(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &domain.ScrapeError{URL: ref.NormalizedURL, Err: err}
	}

	m := domain.NewMetrics(ref.Platform)
	if err := Extract(ctx, html, sel, m); err != nil {
		return nil, &domain.ScrapeError{URL: ref.NormalizedURL, Err: err}
	}
	if !ref.Platform.HasMediaType() {
		m.MediaType = ""
	}

	log.GlobalInfoCtx(ctx, "post scraped", "comments_collected", len(m.CommentTexts))
	return m, nil
}
