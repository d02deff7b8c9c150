// Package app wires configuration into the fetchers and use cases shared by
// the HTTP server and the CLI.
package app

import (
	"fmt"

	"postmetrics/internal/adapters/api"
	"postmetrics/internal/adapters/scraper"
	"postmetrics/internal/config"
	"postmetrics/internal/domain"
	"postmetrics/internal/usecases"
	"postmetrics/pkg/log"
)

// App holds the long-lived components built from one Config.
type App struct {
	Config   *config.Config
	Registry *usecases.Registry
	Fetch    *usecases.FetchMetricsUseCase
	Batch    *usecases.RunBatchUseCase

	selectors *scraper.SelectorConfig
	renderer  scraper.Renderer
}

// New builds every component. No browser is started until the first
// scrape.
func New(cfg *config.Config) (*App, error) {
	selectors, err := scraper.LoadSelectors(cfg.Browser.SelectorsPath, cfg.Browser.SelectorReload)
	if err != nil {
		return nil, fmt.Errorf("load selectors: %w", err)
	}

	renderer := NewRenderer(cfg)
	metricsScraper := scraper.NewMetricsScraper(renderer, selectors, cfg.Browser.UserAgent)

	registry := usecases.NewRegistry()
	for _, p := range domain.Platforms() {
		registry.WithScraper(p, metricsScraper)
	}

	if token := cfg.Facebook.AccessToken; token != "" {
		registry.WithAPI(domain.Facebook, api.NewFacebookFetcher(api.Options{
			BaseURL:      cfg.Facebook.GraphURL,
			Token:        token,
			CommentLimit: cfg.API.CommentLimit,
			Timeout:      cfg.API.Timeout,
		}, cfg.Facebook.GraphVersion))
	}
	if token := cfg.Twitter.BearerToken; token != "" {
		registry.WithAPI(domain.Twitter, api.NewTwitterFetcher(api.Options{
			BaseURL:      cfg.Twitter.APIURL,
			Token:        token,
			CommentLimit: cfg.API.CommentLimit,
			Timeout:      cfg.API.Timeout,
		}))
	}

	fetch := usecases.NewFetchMetricsUseCase(registry)
	a := &App{
		Config:    cfg,
		Registry:  registry,
		Fetch:     fetch,
		Batch:     usecases.NewRunBatchUseCase(fetch),
		selectors: selectors,
		renderer:  renderer,
	}

	for _, p := range domain.Platforms() {
		_, source, _ := registry.Resolve(p)
		log.GlobalDebug("fetch strategy", "platform", string(p), "source", string(source))
	}
	log.GlobalInfo("components ready", "engine", cfg.Browser.Engine, "selectors", cfg.Browser.SelectorsPath)
	return a, nil
}

// NewRenderer picks the browser engine named in the config.
func NewRenderer(cfg *config.Config) scraper.Renderer {
	if cfg.Browser.Engine == config.EngineRod {
		return scraper.NewRodRenderer(scraper.RodOptions{
			Bin:       cfg.Browser.ChromePath,
			RemoteURL: cfg.Browser.RemoteURL,
			Headless:  cfg.Browser.Headless,
		})
	}
	return scraper.NewChromeRenderer(scraper.ChromeOptions{
		ExecPath:  cfg.Browser.ChromePath,
		RemoteURL: cfg.Browser.RemoteURL,
		Headless:  cfg.Browser.Headless,
	})
}

// Close stops the selector watcher and the renderer.
func (a *App) Close() error {
	a.selectors.Close()
	return a.renderer.Close()
}
