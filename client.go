package snapscan

import (
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	DefaultBaseURL        = "https://pos.snapscan.io"
	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxRetries     = 12
	DefaultRetryDelay     = 5 * time.Second
	DefaultSnapCodeSize   = 125

	apiPath = "/merchant/api/v1"
	qrPath  = "/qr"
)

func New(config Config) (*Client, error) {
	config, err := withDefaults(config)
	if err != nil {
		return nil, err
	}

	return &Client{
		config:      config,
		logger:      newLogger(config),
		retryConfig: newRetryConfig(config),
	}, nil
}

// NewClient returns a client for the production API with the given credentials.
// Either may be empty and set later.
func NewClient(snapcode, apiKey string) (*Client, error) {
	return New(Config{Snapcode: snapcode, APIKey: apiKey})
}

func withDefaults(config Config) (Config, error) {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	u, err := url.Parse(config.BaseURL)
	if err != nil {
		return config, errors.Wrap(err, "invalid base URL")
	}
	if u.Scheme == "" || u.Host == "" {
		return config, errors.Errorf("invalid base URL %q: scheme and host are required", config.BaseURL)
	}

	if config.RequestTimeout <= 0 {
		config.RequestTimeout = DefaultRequestTimeout
	}
	if config.MaxRetries <= 0 {
		config.MaxRetries = DefaultMaxRetries
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = DefaultRetryDelay
	}

	return config, nil
}

func newLogger(config Config) zerolog.Logger {
	if config.Logger != nil {
		return *config.Logger
	}
	if config.Debug {
		return zerolog.New(os.Stderr).With().Timestamp().Str("component", "snapscan").Logger()
	}
	return zerolog.Nop()
}

func newRetryConfig(config Config) *RetryConfig {
	return &RetryConfig{
		MaxAttempts: config.MaxRetries,
		Delay:       config.RetryDelay,
	}
}

// Update replaces the whole configuration, credentials included.
func (c *Client) Update(config Config) error {
	config, err := withDefaults(config)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.config = config
	c.logger = newLogger(config)
	c.retryConfig = newRetryConfig(config)
	c.mu.Unlock()

	return nil
}

func (c *Client) SetSnapcode(snapcode string) {
	c.mu.Lock()
	c.config.Snapcode = snapcode
	c.mu.Unlock()
}

func (c *Client) SetAPIKey(apiKey string) {
	c.mu.Lock()
	c.config.APIKey = apiKey
	c.mu.Unlock()
}

// snapshot returns a consistent copy of the state a single call needs.
func (c *Client) snapshot() (Config, zerolog.Logger, RetryConfig) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config, c.logger, *c.retryConfig
}
