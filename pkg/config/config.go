package config

import (
	"fmt"
	"log"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/orgball2608/insta-story-capture/pkg/errors"
)

type Config struct {
	App struct {
		Env       string `env:"APP_ENV" env-default:"development"`
		Port      int    `env:"APP_PORT" env-default:"8080"`
		LogLevel  string `env:"LOG_LEVEL" env-default:"info"`
		SentryUrl string `env:"SENTRY_URL"`
	}
	Input struct {
		Path      string   `env:"INPUT_PATH" env-description:"Apify-style JSON input document"`
		StoryURLs []string `env:"STORY_URLS" env-separator:"," env-description:"Comma-separated story URLs"`
		Cookies   string   `env:"COOKIES" env-description:"Raw cookie string of an authenticated session"`
		ProxyURL  string   `env:"PROXY_URL" env-description:"Proxy endpoint all navigation goes through"`
	}
	Browser struct {
		Driver            string        `env:"BROWSER_DRIVER" env-default:"rod"`
		Headless          bool          `env:"BROWSER_HEADLESS" env-default:"true"`
		NoSandbox         bool          `env:"BROWSER_NO_SANDBOX" env-default:"true"`
		Bin               string        `env:"BROWSER_BIN"`
		Stealth           bool          `env:"BROWSER_STEALTH" env-default:"true"`
		NavigationTimeout time.Duration `env:"BROWSER_NAVIGATION_TIMEOUT" env-default:"60s"`
	}
	Crawler struct {
		Concurrency       int           `env:"CRAWLER_CONCURRENCY" env-default:"3"`
		MaxRetries        uint64        `env:"CRAWLER_MAX_RETRIES" env-default:"3"`
		RequestsPerMinute int           `env:"CRAWLER_REQUESTS_PER_MINUTE" env-default:"30"`
		ScheduleInterval  time.Duration `env:"CRAWLER_SCHEDULE_INTERVAL" env-default:"0s"`
	}
	Story struct {
		CookieDomain   string        `env:"STORY_COOKIE_DOMAIN" env-default:".instagram.com"`
		SelectorsPath  string        `env:"STORY_SELECTORS_PATH"`
		ViewportWidth  int           `env:"STORY_VIEWPORT_WIDTH" env-default:"600"`
		ViewportHeight int           `env:"STORY_VIEWPORT_HEIGHT" env-default:"1000"`
		RevealTimeout  time.Duration `env:"STORY_REVEAL_TIMEOUT" env-default:"5s"`
		RevealSettle   time.Duration `env:"STORY_REVEAL_SETTLE" env-default:"3s"`
		CaptureSettle  time.Duration `env:"STORY_CAPTURE_SETTLE" env-default:"2s"`
		SettleMode     string        `env:"STORY_SETTLE_MODE" env-default:"poll"`
		ScratchDir     string        `env:"STORY_SCRATCH_DIR"`
	}
	Storage struct {
		Blob string `env:"STORAGE_BLOB" env-default:"fs"`
		Sink string `env:"STORAGE_SINK" env-default:"dataset"`
		Dir  string `env:"STORAGE_DIR" env-default:"./storage"`
	}
	S3 struct {
		Bucket          string `env:"S3_BUCKET"`
		Region          string `env:"S3_REGION" env-default:"us-east-1"`
		Endpoint        string `env:"S3_ENDPOINT"`
		AccessKeyID     string `env:"S3_ACCESS_KEY_ID"`
		SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY"`
		UsePathStyle    bool   `env:"S3_USE_PATH_STYLE"`
		KeyPrefix       string `env:"S3_KEY_PREFIX"`
	}
	Postgres struct {
		Port    int    `env:"POSTGRES_PORT" env-default:"5432"`
		Host    string `env:"POSTGRES_HOST" env-default:"localhost"`
		User    string `env:"POSTGRES_USER"`
		Pass    string `env:"POSTGRES_PASS"`
		Name    string `env:"POSTGRES_NAME"`
		SslMode string `env:"POSTGRES_SSL_MODE" env-default:"disable"`
	}
	Telegram struct {
		Token   string `env:"TELEGRAM_TOKEN"`
		Channel string `env:"TELEGRAM_CHANNEL"`
	}
}

var (
	once   sync.Once
	cfg    *Config
	cfgErr error
)

// New returns the process-wide configuration. Input validation errors are
// returned, on every call, so the fx graph fails before any request is
// attempted.
func New() (*Config, error) {
	once.Do(func() {
		_ = godotenv.Load()

		cfg, cfgErr = Load()
		if cfgErr != nil && !errors.IsConfiguration(cfgErr) {
			help, _ := cleanenv.GetDescription(&Config{}, nil)
			log.Fatalf("Failed to read configuration: %v\n%v", cfgErr, help)
		}
	})
	if cfgErr != nil {
		return nil, cfgErr
	}
	return cfg, nil
}

// Load reads the environment, merges the optional input document and
// validates the result.
func Load() (*Config, error) {
	c := &Config{}
	if err := cleanenv.ReadEnv(c); err != nil {
		return nil, fmt.Errorf("failed to read env: %w", err)
	}
	c.Input.StoryURLs = compact(c.Input.StoryURLs)

	if c.Input.Path != "" {
		in, err := ReadInput(c.Input.Path)
		if err != nil {
			return nil, err
		}
		c.mergeInput(in)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadDatabase reads the environment without the story input checks, for
// tools that only talk to postgres.
func LoadDatabase() (*Config, error) {
	c := &Config{}
	if err := cleanenv.ReadEnv(c); err != nil {
		return nil, fmt.Errorf("failed to read env: %w", err)
	}
	return c, nil
}

// compact drops blank entries; an empty STORY_URLS splits into one.
func compact(values []string) []string {
	out := values[:0]
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func (c *Config) mergeInput(in *Input) {
	if len(c.Input.StoryURLs) == 0 {
		c.Input.StoryURLs = in.URLs()
	}
	if c.Input.Cookies == "" {
		c.Input.Cookies = in.Cookies
	}
	if c.Input.ProxyURL == "" {
		c.Input.ProxyURL = in.ProxyURL
	}
}

// Validate checks the startup preconditions. Every failure is a
// configuration error.
func (c *Config) Validate() error {
	var missing []string
	if len(c.Input.StoryURLs) == 0 {
		missing = append(missing, "story URLs")
	}
	if strings.TrimSpace(c.Input.Cookies) == "" {
		missing = append(missing, "cookies")
	}
	if strings.TrimSpace(c.Input.ProxyURL) == "" {
		missing = append(missing, "proxyUrl")
	}
	if len(missing) > 0 {
		return errors.Configuration(fmt.Sprintf("%s must be provided", strings.Join(missing, ", ")))
	}

	if _, err := url.Parse(c.Input.ProxyURL); err != nil {
		return errors.Configuration(fmt.Sprintf("invalid proxyUrl: %v", err))
	}

	switch c.Browser.Driver {
	case "rod", "playwright":
	default:
		return errors.Configuration(fmt.Sprintf("unsupported browser driver %q", c.Browser.Driver))
	}
	switch c.Story.SettleMode {
	case "poll", "fixed":
	default:
		return errors.Configuration(fmt.Sprintf("unsupported settle mode %q", c.Story.SettleMode))
	}
	switch c.Storage.Blob {
	case "fs":
	case "s3":
		if c.S3.Bucket == "" {
			return errors.Configuration("S3_BUCKET is required for the s3 blob store")
		}
	default:
		return errors.Configuration(fmt.Sprintf("unsupported blob store %q", c.Storage.Blob))
	}
	switch c.Storage.Sink {
	case "dataset", "postgres":
	default:
		return errors.Configuration(fmt.Sprintf("unsupported record sink %q", c.Storage.Sink))
	}
	if c.Crawler.Concurrency < 1 {
		return errors.Configuration("CRAWLER_CONCURRENCY must be at least 1")
	}
	return nil
}

func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Postgres.User,
		c.Postgres.Pass,
		c.Postgres.Host,
		c.Postgres.Port,
		c.Postgres.Name,
		c.Postgres.SslMode,
	)
}
