package scraper

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"postmetrics/internal/domain"
	"postmetrics/test/fixtures"
)

type fakeRenderer struct {
	mu       sync.Mutex
	html     string
	err      error
	requests []RenderRequest
}

func (f *fakeRenderer) Render(_ context.Context, req RenderRequest) (string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	return f.html, f.err
}

func (f *fakeRenderer) Close() error { return nil }

func mustRef(t *testing.T, raw string) domain.PostReference {
	t.Helper()
	ref, err := domain.NewPostReference(raw)
	if err != nil {
		t.Fatalf("NewPostReference(%q) error = %v", raw, err)
	}
	return ref
}

func TestMetricsScraper_Fetch_BuildsRenderRequestFromSelectors(t *testing.T) {
	// Arrange
	renderer := &fakeRenderer{html: fixtures.TikTokVideo()}
	s := NewMetricsScraper(renderer, DefaultSelectors(), "default-agent")

	// Act
	m, err := s.Fetch(context.Background(), mustRef(t, "https://www.tiktok.com/@someone/video/7301"))

	// Assert
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if likes, _ := m.Get(domain.Likes); likes != 12300 {
		t.Errorf("likes = %d, want 12300", likes)
	}
	req := renderer.requests[0]
	if req.Wait != WaitDOMContentLoaded || req.Timeout != 15*time.Second || req.Container != "main" || req.ContainerTimeout != 5*time.Second {
		t.Errorf("request = %+v", req)
	}
	if req.UserAgent == "" || req.UserAgent == "default-agent" {
		t.Errorf("tiktok should use its pinned user agent, got %q", req.UserAgent)
	}
}

func TestMetricsScraper_Fetch_DefaultUserAgentAndMediaType(t *testing.T) {
	renderer := &fakeRenderer{html: fixtures.InstagramStructuredData()}
	s := NewMetricsScraper(renderer, DefaultSelectors(), "default-agent")

	m, err := s.Fetch(context.Background(), mustRef(t, "https://www.instagram.com/reel/Cxyz123/?igsh=abc"))

	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if renderer.requests[0].URL != "https://www.instagram.com/reel/Cxyz123" {
		t.Errorf("URL = %q, want normalized link", renderer.requests[0].URL)
	}
	if renderer.requests[0].UserAgent != "default-agent" {
		t.Errorf("UserAgent = %q", renderer.requests[0].UserAgent)
	}
	if m.MediaType != "video" {
		t.Errorf("MediaType = %q, want video", m.MediaType)
	}
}

func TestMetricsScraper_Fetch_RenderFailureIsScrapeError(t *testing.T) {
	// Arrange
	renderer := &fakeRenderer{err: errors.New("net::ERR_NAME_NOT_RESOLVED")}
	s := NewMetricsScraper(renderer, DefaultSelectors(), "")

	// Act
	m, err := s.Fetch(context.Background(), mustRef(t, "https://x.com/a/status/1"))

	// Assert
	if m != nil {
		t.Errorf("metrics = %+v, want nil on hard failure", m)
	}
	var se *domain.ScrapeError
	if !errors.As(err, &se) {
		t.Fatalf("error = %T, want *domain.ScrapeError", err)
	}
	if err.Error() != "net::ERR_NAME_NOT_RESOLVED" {
		t.Errorf("message = %q, want the underlying text", err.Error())
	}
	if domain.KindOf(err) != domain.KindScrapeFailure {
		t.Errorf("kind = %s", domain.KindOf(err))
	}
}

func TestMetricsScraper_Fetch_MissingBrowser(t *testing.T) {
	renderer := &fakeRenderer{err: browserMissing(errors.Join(errors.New("exec: \"google-chrome\""), execNotFound()))}
	s := NewMetricsScraper(renderer, DefaultSelectors(), "")

	_, err := s.Fetch(context.Background(), mustRef(t, "https://www.instagram.com/p/abc"))

	if domain.KindOf(err) != domain.KindDependencyMissing {
		t.Errorf("kind = %s, want DependencyMissing (err = %v)", domain.KindOf(err), err)
	}
}

func TestMetricsScraper_Fetch_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	renderer := &fakeRenderer{err: errors.New("context canceled")}
	s := NewMetricsScraper(renderer, DefaultSelectors(), "")

	_, err := s.Fetch(ctx, mustRef(t, "https://x.com/a/status/1"))

	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}
