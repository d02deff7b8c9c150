//go:build integration

package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"postmetrics/internal/domain"
	"postmetrics/test/fixtures"
)

// startHeadlessShell runs chromedp/headless-shell and returns the
// DevTools websocket URL reachable from the host.
func startHeadlessShell(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "chromedp/headless-shell:latest",
			ExposedPorts: []string{"9222/tcp"},
			WaitingFor: wait.ForAll(
				wait.ForLog("DevTools listening").WithStartupTimeout(60*time.Second),
				wait.ForHTTP("/json/version").WithPort("9222/tcp").WithStartupTimeout(60*time.Second),
			),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("start headless-shell: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "9222")
	if err != nil {
		t.Fatalf("container port: %v", err)
	}

	resp, err := http.Get(fmt.Sprintf("http://%s:%s/json/version", host, port.Port()))
	if err != nil {
		t.Fatalf("json/version: %v", err)
	}
	defer resp.Body.Close()

	var version struct {
		WebSocketDebuggerURL string `json:"webSocketDebuggerUrl"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&version); err != nil {
		t.Fatalf("decode json/version: %v", err)
	}

	// Chrome reports its in-container address; swap in the mapped one.
	u, err := url.Parse(version.WebSocketDebuggerURL)
	if err != nil {
		t.Fatalf("parse %q: %v", version.WebSocketDebuggerURL, err)
	}
	u.Host = host + ":" + port.Port()
	return u.String()
}

func dataURL(html string) string {
	return "data:text/html;charset=utf-8," + url.PathEscape(html)
}

func TestIntegration_ChromeRenderer_RendersSnapshot(t *testing.T) {
	// Arrange
	r := NewChromeRenderer(ChromeOptions{RemoteURL: startHeadlessShell(t)})
	defer r.Close()

	for _, wait := range []WaitCondition{WaitNetworkIdle, WaitDOMContentLoaded} {
		t.Run(string(wait), func(t *testing.T) {
			// Act
			html, err := r.Render(context.Background(), RenderRequest{
				URL:              dataURL(fixtures.TikTokVideo()),
				Wait:             wait,
				Timeout:          20 * time.Second,
				UserAgent:        "postmetrics-test",
				Container:        ".never-there",
				ContainerTimeout: 500 * time.Millisecond,
			})

			// Assert
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			if !strings.Contains(html, "comment-item") {
				t.Errorf("snapshot missing fixture content: %.200s", html)
			}
		})
	}
}

func TestIntegration_ChromeRenderer_ConcurrentCallsAllComplete(t *testing.T) {
	r := NewChromeRenderer(ChromeOptions{RemoteURL: startHeadlessShell(t)})
	defer r.Close()

	var wg sync.WaitGroup
	errs := make(chan error, 3)
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := r.Render(context.Background(), RenderRequest{
				URL:     dataURL(fmt.Sprintf("<html><body>page %d</body></html>", i)),
				Wait:    WaitDOMContentLoaded,
				Timeout: 20 * time.Second,
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("Render() error = %v", err)
		}
	}
}

func TestIntegration_ChromeRenderer_FailedNavigationReleasesSlot(t *testing.T) {
	r := NewChromeRenderer(ChromeOptions{RemoteURL: startHeadlessShell(t)})
	defer r.Close()

	_, err := r.Render(context.Background(), RenderRequest{
		URL:     "http://invalid.url.that.does.not.exist.local",
		Wait:    WaitDOMContentLoaded,
		Timeout: 10 * time.Second,
	})
	if err == nil {
		t.Fatal("expected navigation error")
	}

	done := make(chan error, 1)
	go func() {
		_, err := r.Render(context.Background(), RenderRequest{
			URL:     dataURL("<html><body>ok</body></html>"),
			Wait:    WaitDOMContentLoaded,
			Timeout: 10 * time.Second,
		})
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("second Render() error = %v", err)
		}
	case <-time.After(30 * time.Second):
		t.Error("second render blocked: slot not released after failure")
	}
}

func TestIntegration_MetricsScraper_EndToEnd(t *testing.T) {
	// Arrange
	r := NewChromeRenderer(ChromeOptions{RemoteURL: startHeadlessShell(t)})
	defer r.Close()
	s := NewMetricsScraper(r, DefaultSelectors(), "")
	ref := domain.PostReference{
		Platform:      domain.TikTok,
		RawURL:        "https://www.tiktok.com/@someone/video/1",
		NormalizedURL: dataURL(fixtures.TikTokVideo()),
	}

	// Act
	m, err := s.Fetch(context.Background(), ref)

	// Assert
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if likes, _ := m.Get(domain.Likes); likes != 12300 {
		t.Errorf("likes = %d, want 12300", likes)
	}
	if len(m.CommentTexts) != 2 {
		t.Errorf("CommentTexts = %v", m.CommentTexts)
	}
}
