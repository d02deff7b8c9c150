package scraper

import (
	"fmt"
	"os"
	"regexp"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"postmetrics/internal/domain"
	"postmetrics/pkg/log"
)

// countToken matches a count as it appears in page text: digits with
// optional separators and an optional K/M/B suffix.
const countToken = `([\d][\d.,]*\s?[KkMmBb]?)`

// PlatformSelectors is everything the scraper needs to know about one
// platform's markup.
type PlatformSelectors struct {
	Container        string        `yaml:"container"`
	Wait             WaitCondition `yaml:"wait"`
	Timeout          time.Duration `yaml:"timeout"`
	ContainerTimeout time.Duration `yaml:"container_timeout"`
	UserAgent        string        `yaml:"user_agent"`

	StructuredData string            `yaml:"structured_data"`
	Meta           []string          `yaml:"meta"`
	Patterns       map[string]string `yaml:"patterns"`
	Counters       map[string]string `yaml:"counters"`
	// Comments are tried in order; the first selector that matches any
	// node with text wins.
	Comments []string `yaml:"comments"`

	patterns map[domain.Metric]*regexp.Regexp
}

// Pattern returns the compiled pattern for metric, or nil.
func (s PlatformSelectors) Pattern(metric domain.Metric) *regexp.Regexp {
	return s.patterns[metric]
}

func (s *PlatformSelectors) compile() error {
	s.patterns = make(map[domain.Metric]*regexp.Regexp, len(s.Patterns))
	for name, expr := range s.Patterns {
		re, err := regexp.Compile("(?i)" + expr)
		if err != nil {
			return fmt.Errorf("pattern %s: %w", name, err)
		}
		if re.NumSubexp() < 1 {
			return fmt.Errorf("pattern %s: needs a capture group", name)
		}
		s.patterns[domain.Metric(name)] = re
	}
	return nil
}

// merge overlays the non-zero fields of o onto s.
func (s PlatformSelectors) merge(o PlatformSelectors) PlatformSelectors {
	if o.Container != "" {
		s.Container = o.Container
	}
	if o.Wait != "" {
		s.Wait = o.Wait
	}
	if o.Timeout > 0 {
		s.Timeout = o.Timeout
	}
	if o.ContainerTimeout > 0 {
		s.ContainerTimeout = o.ContainerTimeout
	}
	if o.UserAgent != "" {
		s.UserAgent = o.UserAgent
	}
	if o.StructuredData != "" {
		s.StructuredData = o.StructuredData
	}
	if len(o.Meta) > 0 {
		s.Meta = o.Meta
	}
	if len(o.Comments) > 0 {
		s.Comments = o.Comments
	}
	s.Patterns = mergeMap(s.Patterns, o.Patterns)
	s.Counters = mergeMap(s.Counters, o.Counters)
	return s
}

func mergeMap(base, over map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(over))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range over {
		out[k] = v
	}
	return out
}

var ldJSON = `script[type="application/ld+json"]`

var metaDescription = []string{
	`meta[property="og:description"]`,
	`meta[name="description"]`,
}

func defaultSelectors() map[domain.Platform]PlatformSelectors {
	return map[domain.Platform]PlatformSelectors{
		domain.Facebook: {
			Container:        `[role="main"]`,
			Wait:             WaitNetworkIdle,
			Timeout:          30 * time.Second,
			ContainerTimeout: 8 * time.Second,
			StructuredData:   ldJSON,
			Meta:             metaDescription,
			Patterns: map[string]string{
				"likes":    countToken + `\s+(?:reactions?|likes?)`,
				"comments": countToken + `\s+comments?`,
				"shares":   countToken + `\s+shares?`,
			},
			Comments: []string{`[role="article"] div[dir="auto"]`},
		},
		domain.Twitter: {
			Container:        "article",
			Wait:             WaitDOMContentLoaded,
			Timeout:          15 * time.Second,
			ContainerTimeout: 5 * time.Second,
			StructuredData:   ldJSON,
			Meta:             metaDescription,
			Patterns: map[string]string{
				"likes":    countToken + `\s+likes?`,
				"replies":  countToken + `\s+repl(?:y|ies)`,
				"retweets": countToken + `\s+(?:retweets?|reposts?)`,
				"quotes":   countToken + `\s+quotes?`,
			},
			Counters: map[string]string{
				"likes":    `[data-testid="like"]`,
				"replies":  `[data-testid="reply"]`,
				"retweets": `[data-testid="retweet"]`,
			},
		},
		domain.Instagram: {
			Container:        "article",
			Wait:             WaitNetworkIdle,
			Timeout:          30 * time.Second,
			ContainerTimeout: 8 * time.Second,
			StructuredData:   ldJSON,
			Meta:             metaDescription,
			Patterns: map[string]string{
				"likes":    countToken + `\s+likes?`,
				"comments": countToken + `\s+comments?`,
			},
			Comments: []string{"div.C4VMK > span", "article li"},
		},
		domain.TikTok: {
			Container:        "main",
			Wait:             WaitDOMContentLoaded,
			Timeout:          15 * time.Second,
			ContainerTimeout: 5 * time.Second,
			UserAgent:        "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
			StructuredData:   ldJSON,
			Meta:             metaDescription,
			Patterns: map[string]string{
				"likes":    countToken + `\s+likes?`,
				"comments": countToken + `\s+comments?`,
			},
			Counters: map[string]string{
				"likes":    `[data-e2e="like-count"]`,
				"comments": `[data-e2e="comment-count"]`,
			},
			Comments: []string{"div.comment-item > p", `[data-e2e="comment-level-1"]`},
		},
	}
}

// SelectorConfig holds the per-platform selector sets. Built-in defaults
// can be overridden from a YAML file that is re-read when it changes.
type SelectorConfig struct {
	mu   sync.RWMutex
	sets map[domain.Platform]PlatformSelectors

	filePath    string
	lastModTime time.Time
	stop        chan struct{}
	stopOnce    sync.Once
}

// DefaultSelectors returns the built-in selector sets without any file.
func DefaultSelectors() *SelectorConfig {
	sets := defaultSelectors()
	for p, s := range sets {
		if err := s.compile(); err != nil {
			panic(fmt.Sprintf("default selectors for %s: %v", p, err))
		}
		sets[p] = s
	}
	return &SelectorConfig{sets: sets, stop: make(chan struct{})}
}

// LoadSelectors applies the overrides in filePath on top of the defaults
// and re-reads the file every interval. An empty filePath returns the
// defaults. A non-positive interval disables reloading.
func LoadSelectors(filePath string, interval time.Duration) (*SelectorConfig, error) {
	c := DefaultSelectors()
	if filePath == "" {
		return c, nil
	}

	c.filePath = filePath
	if err := c.reload(); err != nil {
		return nil, err
	}
	if interval > 0 {
		go c.watch(interval)
	}
	return c, nil
}

// For returns the selector set of a platform.
func (c *SelectorConfig) For(p domain.Platform) (PlatformSelectors, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.sets[p]
	return s, ok
}

// Close stops the reload watcher.
func (c *SelectorConfig) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *SelectorConfig) reload() error {
	info, err := os.Stat(c.filePath)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(c.filePath)
	if err != nil {
		return err
	}

	var raw map[string]PlatformSelectors
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse %s: %w", c.filePath, err)
	}

	sets := defaultSelectors()
	for key, override := range raw {
		p, ok := domain.ParsePlatform(key)
		if !ok {
			return fmt.Errorf("%s: unknown platform %q", c.filePath, key)
		}
		sets[p] = sets[p].merge(override)
	}
	for p, s := range sets {
		if err := s.compile(); err != nil {
			return fmt.Errorf("%s: %s: %w", c.filePath, p, err)
		}
		sets[p] = s
	}

	c.mu.Lock()
	c.sets = sets
	c.lastModTime = info.ModTime()
	c.mu.Unlock()
	return nil
}

func (c *SelectorConfig) watch(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
		}

		info, err := os.Stat(c.filePath)
		if err != nil {
			continue
		}
		c.mu.RLock()
		changed := info.ModTime().After(c.lastModTime)
		c.mu.RUnlock()
		if !changed {
			continue
		}
		if err := c.reload(); err != nil {
			log.GlobalWarn("selector reload failed, keeping previous set", "path", c.filePath, "error", err)
			continue
		}
		log.GlobalInfo("selectors reloaded", "path", c.filePath)
	}
}
