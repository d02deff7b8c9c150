package usecases

import (
	"context"
	"fmt"

	"postmetrics/internal/domain"
)

// MetricsFetcher reads the engagement counters of one post.
type MetricsFetcher interface {
	Fetch(ctx context.Context, ref domain.PostReference) (*domain.Metrics, error)
}

// Source names the path a record was fetched through.
type Source string

const (
	SourceAPI    Source = "api"
	SourceScrape Source = "scrape"
)

// Strategy is how one platform is fetched. The API fetcher is only set
// when its token is configured and always wins over the scraper.
type Strategy struct {
	API     MetricsFetcher
	Scraper MetricsFetcher
}

// Registry maps each platform to its Strategy.
type Registry struct {
	strategies map[domain.Platform]Strategy
}

func NewRegistry() *Registry {
	return &Registry{strategies: make(map[domain.Platform]Strategy)}
}

// WithAPI sets the official-API fetcher of p.
func (r *Registry) WithAPI(p domain.Platform, f MetricsFetcher) *Registry {
	s := r.strategies[p]
	s.API = f
	r.strategies[p] = s
	return r
}

// WithScraper sets the scrape fetcher of p.
func (r *Registry) WithScraper(p domain.Platform, f MetricsFetcher) *Registry {
	s := r.strategies[p]
	s.Scraper = f
	r.strategies[p] = s
	return r
}

// Resolve picks the fetcher for p.
func (r *Registry) Resolve(p domain.Platform) (MetricsFetcher, Source, error) {
	s, ok := r.strategies[p]
	switch {
	case ok && s.API != nil:
		return s.API, SourceAPI, nil
	case ok && s.Scraper != nil:
		return s.Scraper, SourceScrape, nil
	default:
		return nil, "", fmt.Errorf("%w: no fetcher configured for %s", domain.ErrDependencyMissing, p)
	}
}
