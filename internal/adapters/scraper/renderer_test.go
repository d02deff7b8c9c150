package scraper

import (
	"context"
	"errors"
	"io/fs"
	"os/exec"
	"testing"
	"time"

	"github.com/chromedp/cdproto/network"

	"postmetrics/internal/domain"
)

func execNotFound() error { return exec.ErrNotFound }

func TestBrowserMissing(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		missing bool
	}{
		{"not in PATH", &exec.Error{Name: "google-chrome", Err: exec.ErrNotFound}, true},
		{"bad exec path", &fs.PathError{Op: "fork/exec", Path: "/opt/chrome", Err: fs.ErrNotExist}, true},
		{"crash", errors.New("chrome exited with status 1"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := browserMissing(tt.err)
			if errors.Is(got, domain.ErrDependencyMissing) != tt.missing {
				t.Errorf("browserMissing(%v) = %v, missing want %v", tt.err, got, tt.missing)
			}
		})
	}
}

func TestChromeRenderer_MissingExecPath(t *testing.T) {
	// Arrange
	r := NewChromeRenderer(ChromeOptions{ExecPath: "/nonexistent/chrome-for-tests", Headless: true})
	defer r.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Act
	_, err := r.Render(ctx, RenderRequest{URL: "about:blank", Timeout: time.Second})

	// Assert
	if !errors.Is(err, domain.ErrDependencyMissing) {
		t.Errorf("Render() error = %v, want ErrDependencyMissing", err)
	}
}

func TestChromeRenderer_ClosedRejectsRenders(t *testing.T) {
	r := NewChromeRenderer(ChromeOptions{})
	_ = r.Close()

	_, err := r.Render(context.Background(), RenderRequest{URL: "about:blank"})

	if err == nil {
		t.Error("Render() after Close() should fail")
	}
}

func TestRodRenderer_MissingBin(t *testing.T) {
	r := NewRodRenderer(RodOptions{Bin: "/nonexistent/chromium-for-tests", Headless: true})

	_, err := r.Render(context.Background(), RenderRequest{URL: "about:blank", Timeout: time.Second})

	if !errors.Is(err, domain.ErrDependencyMissing) {
		t.Errorf("Render() error = %v, want ErrDependencyMissing", err)
	}
}

func TestIdleTracker(t *testing.T) {
	tracker := newIdleTracker()
	tracker.last = time.Now().Add(-time.Second)
	if tracker.idleFor() < 500*time.Millisecond {
		t.Fatalf("fresh tracker should be idle")
	}

	tracker.observe(&network.EventRequestWillBeSent{RequestID: "1"})
	if tracker.idleFor() != 0 {
		t.Errorf("tracker with in-flight requests should not be idle")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := tracker.wait(time.Second)(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("wait() error = %v, want deadline exceeded", err)
	}
}

func TestIdleTracker_Requests(t *testing.T) {
	tests := []struct {
		name   string
		events []any
		idle   bool
	}{
		{
			name: "redirect chain settles after one finish",
			events: []any{
				&network.EventRequestWillBeSent{RequestID: "1"},
				&network.EventRequestWillBeSent{RequestID: "1", RedirectResponse: &network.Response{Status: 302}},
				&network.EventLoadingFinished{RequestID: "1"},
			},
			idle: true,
		},
		{
			name: "failed request is no longer in flight",
			events: []any{
				&network.EventRequestWillBeSent{RequestID: "1"},
				&network.EventLoadingFailed{RequestID: "1"},
			},
			idle: true,
		},
		{
			name: "unfinished request keeps the page busy",
			events: []any{
				&network.EventRequestWillBeSent{RequestID: "1"},
				&network.EventRequestWillBeSent{RequestID: "2"},
				&network.EventLoadingFinished{RequestID: "1"},
			},
			idle: false,
		},
		{
			name: "finish for an unknown request is ignored",
			events: []any{
				&network.EventLoadingFinished{RequestID: "9"},
			},
			idle: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			tracker := newIdleTracker()

			// Act
			for _, ev := range tt.events {
				tracker.observe(ev)
			}
			tracker.mu.Lock()
			tracker.last = time.Now().Add(-600 * time.Millisecond)
			tracker.mu.Unlock()

			// Assert
			idle := tracker.idleFor() >= 500*time.Millisecond
			if idle != tt.idle {
				t.Errorf("idle = %v, want %v (in flight: %d)", idle, tt.idle, len(tracker.inflight))
			}
		})
	}
}
