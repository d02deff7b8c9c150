package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"postmetrics/pkg/log"
)

// Browser engines accepted in BROWSER_ENGINE.
const (
	EngineChromedp = "chromedp"
	EngineRod      = "rod"
)

// Config is read once at start-up and passed explicitly to every component.
type Config struct {
	Server struct {
		Port          string        `env:"PORT" env-default:"3000"`
		UploadLimitMB int           `env:"UPLOAD_LIMIT_MB" env-default:"10"`
		ReadTimeout   time.Duration `env:"SERVER_READ_TIMEOUT" env-default:"30s"`
		WriteTimeout  time.Duration `env:"SERVER_WRITE_TIMEOUT" env-default:"10m"`
	}
	Log struct {
		Level string `env:"LOG_LEVEL" env-default:"info"`
	}
	Facebook struct {
		AccessToken  string `env:"FACEBOOK_ACCESS_TOKEN"`
		GraphURL     string `env:"FACEBOOK_GRAPH_URL" env-default:"https://graph.facebook.com"`
		GraphVersion string `env:"FACEBOOK_GRAPH_VERSION" env-default:"v18.0"`
	}
	Twitter struct {
		BearerToken string `env:"TWITTER_BEARER_TOKEN"`
		APIURL      string `env:"TWITTER_API_URL" env-default:"https://api.twitter.com"`
	}
	API struct {
		Timeout      time.Duration `env:"API_TIMEOUT" env-default:"15s"`
		CommentLimit int           `env:"API_COMMENT_LIMIT" env-default:"10"`
	}
	Browser struct {
		Engine         string        `env:"BROWSER_ENGINE" env-default:"chromedp"`
		ChromePath     string        `env:"CHROME_PATH"`
		RemoteURL      string        `env:"CHROME_REMOTE_URL"`
		Headless       bool          `env:"BROWSER_HEADLESS" env-default:"true"`
		UserAgent      string        `env:"BROWSER_USER_AGENT" env-default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"`
		SelectorsPath  string        `env:"SELECTORS_PATH"`
		SelectorReload time.Duration `env:"SELECTORS_RELOAD_INTERVAL" env-default:"10s"`
	}
}

// Load reads envFile (if it exists) into the process environment and then
// decodes the environment. An empty envFile skips the .env step.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the components cannot work with.
func (c *Config) Validate() error {
	c.Browser.Engine = strings.ToLower(strings.TrimSpace(c.Browser.Engine))
	switch c.Browser.Engine {
	case EngineChromedp, EngineRod:
	default:
		return fmt.Errorf("BROWSER_ENGINE must be %q or %q, got %q", EngineChromedp, EngineRod, c.Browser.Engine)
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("LOG_LEVEL %q: %w", c.Log.Level, err)
	}
	if c.API.CommentLimit < 1 {
		return errors.New("API_COMMENT_LIMIT must be positive")
	}
	if c.Server.UploadLimitMB < 1 {
		return errors.New("UPLOAD_LIMIT_MB must be positive")
	}
	return nil
}

// LogLevel returns the parsed log level.
func (c *Config) LogLevel() log.Level {
	level, _ := log.ParseLevel(c.Log.Level)
	return level
}

// Description lists every supported variable, for --help output.
func Description() string {
	help, err := cleanenv.GetDescription(&Config{}, nil)
	if err != nil {
		return ""
	}
	return help
}
