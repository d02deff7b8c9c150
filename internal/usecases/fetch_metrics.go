package usecases

import (
	"context"
	"fmt"
	"strings"

	"postmetrics/internal/domain"
	"postmetrics/pkg/log"
)

// FetchResult is the outcome of fetching one link.
type FetchResult struct {
	Reference domain.PostReference
	Source    Source
	Metrics   *domain.Metrics
}

// Failed reports whether the fetch produced an error-only record.
func (r FetchResult) Failed() bool {
	return r.Metrics.Failed()
}

// FetchMetricsUseCase turns a raw link into a metrics record.
type FetchMetricsUseCase struct {
	registry *Registry
}

func NewFetchMetricsUseCase(registry *Registry) *FetchMetricsUseCase {
	return &FetchMetricsUseCase{registry: registry}
}

// Execute classifies, normalizes and identifies the link, then fetches it
// through the platform's strategy. Every failure, a panic in a fetcher
// included, comes back as an error-only record.
func (uc *FetchMetricsUseCase) Execute(ctx context.Context, rawURL string) (result FetchResult) {
	rawURL = strings.TrimSpace(rawURL)
	result.Reference = domain.PostReference{RawURL: rawURL}

	if rawURL == "" {
		result.Metrics = domain.FailedMetrics(domain.ErrEmptyLink)
		return result
	}

	ref, err := domain.NewPostReference(rawURL)
	result.Reference = ref
	if err != nil {
		log.GlobalInfoCtx(ctx, "link rejected", "url", rawURL, "error", err)
		result.Metrics = domain.FailedMetrics(err)
		return result
	}

	fetcher, source, err := uc.registry.Resolve(ref.Platform)
	if err != nil {
		result.Metrics = domain.FailedMetrics(err)
		return result
	}
	result.Source = source

	defer func() {
		if r := recover(); r != nil {
			err := &domain.ScrapeError{URL: ref.NormalizedURL, Err: fmt.Errorf("panic: %v", r)}
			log.GlobalErrorCtx(ctx, "fetcher panicked", "url", ref.NormalizedURL, "panic", fmt.Sprint(r))
			result.Metrics = domain.FailedMetrics(err)
		}
	}()

	ctx = log.WithFields(ctx, "platform", string(ref.Platform), "source", string(source))
	m, err := fetcher.Fetch(ctx, ref)
	switch {
	case err != nil:
		log.GlobalWarnCtx(ctx, "fetch failed", "url", ref.NormalizedURL, "kind", string(domain.KindOf(err)), "error", err)
		result.Metrics = domain.FailedMetrics(err)
	case m == nil:
		result.Metrics = domain.FailedMetrics(&domain.ScrapeError{URL: ref.NormalizedURL, Err: fmt.Errorf("%s fetcher returned no metrics", source)})
	default:
		result.Metrics = m
	}
	return result
}
