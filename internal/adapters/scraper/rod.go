package scraper

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"postmetrics/internal/domain"
	"postmetrics/pkg/log"
)

// RodOptions configures RodRenderer.
type RodOptions struct {
	// Bin is the browser binary. Empty falls back to ROD_BROWSER and then
	// to the usual install locations. Rod never downloads a browser here.
	Bin string
	// RemoteURL is a DevTools endpoint of a running browser.
	RemoteURL string
	Headless  bool
}

// RodRenderer renders pages with go-rod and the stealth evasions, which
// get past some of the bot checks TikTok and Instagram apply.
type RodRenderer struct {
	opts RodOptions
	sem  chan struct{}
}

// NewRodRenderer builds a renderer. No browser is started until Render.
func NewRodRenderer(opts RodOptions) *RodRenderer {
	if opts.Bin == "" {
		opts.Bin = os.Getenv("ROD_BROWSER")
	}
	return &RodRenderer{opts: opts, sem: make(chan struct{}, 1)}
}

func (r *RodRenderer) Render(ctx context.Context, req RenderRequest) (string, error) {
	select {
	case r.sem <- struct{}{}:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	defer func() { <-r.sem }()

	controlURL, cleanup, err := r.launch()
	if err != nil {
		return "", err
	}
	defer cleanup()

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return "", fmt.Errorf("connect browser: %w", err)
	}
	if r.opts.RemoteURL == "" {
		defer browser.Close()
	}

	page, err := stealth.Page(browser)
	if err != nil {
		return "", fmt.Errorf("open page: %w", err)
	}
	defer page.Close()

	if req.UserAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: req.UserAgent}); err != nil {
			return "", err
		}
	}

	if err := r.navigate(ctx, page, req); err != nil {
		return "", fmt.Errorf("navigate %s: %w", req.URL, err)
	}

	if req.Container != "" && req.ContainerTimeout > 0 {
		waitContainer(ctx, page, req.Container, req.ContainerTimeout)
	}

	html, err := page.HTML()
	if err != nil {
		return "", fmt.Errorf("snapshot %s: %w", req.URL, err)
	}
	return html, nil
}

// waitContainer gives selector up to timeout to appear. A miss is logged
// and the snapshot is taken anyway.
func waitContainer(ctx context.Context, page *rod.Page, selector string, timeout time.Duration) {
	p := page.Timeout(timeout)
	defer p.CancelTimeout()

	if _, err := p.Element(selector); err != nil {
		log.GlobalDebugCtx(ctx, "container not found, continuing", "selector", selector, "error", err)
	}
}

func (r *RodRenderer) navigate(ctx context.Context, page *rod.Page, req RenderRequest) error {
	p := page.Timeout(req.Timeout)
	defer p.CancelTimeout()

	if req.Wait == WaitDOMContentLoaded {
		if err := p.Navigate(req.URL); err != nil {
			return err
		}
		_, err := p.Element("body")
		return err
	}

	waitIdle := p.WaitRequestIdle(networkQuiet, nil, nil, nil)
	if err := p.Navigate(req.URL); err != nil {
		return err
	}
	if err := p.WaitLoad(); err != nil {
		return err
	}
	waitIdle()
	log.GlobalDebugCtx(ctx, "page settled", "url", req.URL)
	return nil
}

// launch returns a DevTools URL and a cleanup func for it.
func (r *RodRenderer) launch() (string, func(), error) {
	if r.opts.RemoteURL != "" {
		u, err := launcher.ResolveURL(r.opts.RemoteURL)
		if err != nil {
			return "", nil, fmt.Errorf("resolve %s: %w", r.opts.RemoteURL, err)
		}
		return u, func() {}, nil
	}

	bin := r.opts.Bin
	if bin == "" {
		found, ok := launcher.LookPath()
		if !ok {
			return "", nil, fmt.Errorf("%w: no chrome or chromium found for rod", domain.ErrDependencyMissing)
		}
		bin = found
	} else if _, err := os.Stat(bin); err != nil {
		return "", nil, browserMissing(err)
	}

	l := launcher.New().
		Bin(bin).
		Headless(r.opts.Headless).
		Set("no-sandbox").
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Set("disable-extensions").
		Set("disable-background-networking").
		Set("disable-sync").
		Set("no-first-run").
		Set("window-size", "1920,1080")

	u, err := l.Launch()
	if err != nil {
		l.Cleanup()
		return "", nil, browserMissing(err)
	}
	return u, func() {
		l.Kill()
		l.Cleanup()
	}, nil
}

func (r *RodRenderer) Close() error { return nil }
