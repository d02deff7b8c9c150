package scraper

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"postmetrics/pkg/log"
)

// ChromeOptions configures ChromeRenderer.
type ChromeOptions struct {
	// ExecPath is the Chrome/Chromium binary. Empty lets chromedp search.
	ExecPath string
	// RemoteURL connects to an already running browser over CDP
	// (ws:// or http://host:9222) instead of starting one.
	RemoteURL string
	Headless  bool
}

// ChromeRenderer renders pages with chromedp. Every Render call gets a
// fresh browser (or a fresh remote target) that is torn down before it
// returns, and only one page is open at a time.
type ChromeRenderer struct {
	opts  ChromeOptions
	flags []chromedp.ExecAllocatorOption

	sem    chan struct{}
	mu     sync.Mutex
	closed bool
}

// NewChromeRenderer builds a renderer. No browser is started until the
// first Render call.
func NewChromeRenderer(opts ChromeOptions) *ChromeRenderer {
	flags := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-notifications", true),
		chromedp.Flag("disable-translate", true),
		chromedp.Flag("disable-features", "Translate,BackForwardCache"),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("no-first-run", true),
		chromedp.WindowSize(1920, 1080),
	)
	if opts.ExecPath != "" {
		flags = append(flags, chromedp.ExecPath(opts.ExecPath))
	}

	return &ChromeRenderer{
		opts:  opts,
		flags: flags,
		sem:   make(chan struct{}, 1),
	}
}

// Render loads req.URL and returns document.documentElement.outerHTML.
func (r *ChromeRenderer) Render(ctx context.Context, req RenderRequest) (string, error) {
	select {
	case r.sem <- struct{}{}:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	defer func() { <-r.sem }()

	r.mu.Lock()
	closed := r.closed
	r.mu.Unlock()
	if closed {
		return "", errors.New("chrome renderer is closed")
	}

	allocCtx, allocCancel := r.allocator(ctx)
	defer allocCancel()

	tabCtx, tabCancel := chromedp.NewContext(allocCtx)
	defer tabCancel()

	// Starts the browser; launch errors surface here.
	if err := chromedp.Run(tabCtx); err != nil {
		return "", browserMissing(err)
	}
	log.GlobalDebugCtx(ctx, "chrome started", "url", req.URL, "remote", r.opts.RemoteURL != "")

	tracker := newIdleTracker()
	chromedp.ListenTarget(tabCtx, tracker.observe)

	setup := []chromedp.Action{network.Enable()}
	if req.UserAgent != "" {
		setup = append(setup, emulation.SetUserAgentOverride(req.UserAgent))
	}
	if err := chromedp.Run(tabCtx, setup...); err != nil {
		return "", err
	}

	if err := r.navigate(tabCtx, req, tracker); err != nil {
		return "", fmt.Errorf("navigate %s: %w", req.URL, err)
	}

	if req.Container != "" && req.ContainerTimeout > 0 {
		waitCtx, cancel := context.WithTimeout(tabCtx, req.ContainerTimeout)
		err := chromedp.Run(waitCtx, chromedp.WaitReady(req.Container, chromedp.ByQuery))
		cancel()
		if err != nil {
			log.GlobalDebugCtx(ctx, "container not found, continuing", "selector", req.Container, "error", err)
		}
	}

	var html string
	if err := chromedp.Run(tabCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("snapshot %s: %w", req.URL, err)
	}
	return html, nil
}

func (r *ChromeRenderer) allocator(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.opts.RemoteURL != "" {
		return chromedp.NewRemoteAllocator(ctx, r.opts.RemoteURL)
	}
	return chromedp.NewExecAllocator(ctx, r.flags...)
}

func (r *ChromeRenderer) navigate(tabCtx context.Context, req RenderRequest, tracker *idleTracker) error {
	navCtx, cancel := context.WithTimeout(tabCtx, req.Timeout)
	defer cancel()

	switch req.Wait {
	case WaitDOMContentLoaded:
		return chromedp.Run(navCtx,
			chromedp.ActionFunc(func(ctx context.Context) error {
				_, _, errorText, err := page.Navigate(req.URL).Do(ctx)
				if err != nil {
					return err
				}
				if errorText != "" {
					return errors.New(errorText)
				}
				return nil
			}),
			chromedp.WaitReady("body", chromedp.ByQuery),
		)
	default:
		if err := chromedp.Run(navCtx, chromedp.Navigate(req.URL)); err != nil {
			return err
		}
		// Pages that keep polling never go idle; the load event is enough.
		if err := chromedp.Run(navCtx, tracker.wait(networkQuiet)); err != nil {
			log.GlobalDebugCtx(tabCtx, "network never went idle", "url", req.URL, "error", err)
		}
		return nil
	}
}

// Close stops future renders. In-flight renders finish normally.
func (r *ChromeRenderer) Close() error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	return nil
}

// idleTracker follows in-flight requests from CDP network events. A
// redirect reuses its request ID, so requests are keyed by ID.
type idleTracker struct {
	mu       sync.Mutex
	inflight map[network.RequestID]struct{}
	last     time.Time
}

func newIdleTracker() *idleTracker {
	return &idleTracker{inflight: make(map[network.RequestID]struct{}), last: time.Now()}
}

func (t *idleTracker) observe(ev any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch e := ev.(type) {
	case *network.EventRequestWillBeSent:
		t.inflight[e.RequestID] = struct{}{}
	case *network.EventLoadingFinished:
		delete(t.inflight, e.RequestID)
	case *network.EventLoadingFailed:
		delete(t.inflight, e.RequestID)
	default:
		return
	}
	t.last = time.Now()
}

func (t *idleTracker) idleFor() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.inflight) > 0 {
		return 0
	}
	return time.Since(t.last)
}

func (t *idleTracker) wait(quiet time.Duration) chromedp.ActionFunc {
	return func(ctx context.Context) error {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			if t.idleFor() >= quiet {
				return nil
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
		}
	}
}
