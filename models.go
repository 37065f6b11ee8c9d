package snapscan

import (
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Client is a SnapScan merchant API client.
type Client struct {
	mu     sync.RWMutex
	config Config
	logger zerolog.Logger

	retryConfig *RetryConfig
}

// Config contains runtime client settings and credentials.
type Config struct {
	// BaseURL defaults to DefaultBaseURL.
	BaseURL string
	// Snapcode is required by QRCodeURL.
	Snapcode string
	// APIKey is required by every call that reaches the network.
	APIKey string

	RequestTimeout time.Duration
	// MaxRetries caps the total number of attempts of GetCashUpPayments.
	MaxRetries int
	// RetryDelay is the fixed wait between attempts of GetCashUpPayments.
	RetryDelay time.Duration

	// Debug enables request logging to stderr when Logger is nil.
	Debug  bool
	Logger *zerolog.Logger
	// HTTPClient replaces the per-request client built from RequestTimeout.
	HTTPClient *http.Client
}

// RetryConfig configures the fixed-delay retry of GetCashUpPayments.
type RetryConfig struct {
	MaxAttempts int
	Delay       time.Duration
}

// Pagination selects a page of a listing endpoint. Nil fields are not sent.
type Pagination struct {
	Page    *int
	PerPage *int
	Offset  *int
}

// cashUpRequest is the body of POST cash_ups.
type cashUpRequest struct {
	Date      string `json:"date"`
	Reference string `json:"reference"`
}

// ImageFormat is the file extension of a QR code image.
type ImageFormat string

const (
	ImageFormatPNG ImageFormat = ".png"
	ImageFormatSVG ImageFormat = ".svg"
)

// QRCodeOptions configures a QR code URL.
type QRCodeOptions struct {
	// ID is attached to the resulting payment as its merchant reference.
	// An empty ID is omitted from the URL.
	ID string
	// Amount in major units, sent in cents.
	Amount decimal.NullDecimal
	// Strict rejects payments of a different amount.
	Strict bool
	// Size in pixels, defaults to DefaultSnapCodeSize.
	Size int
	// Format defaults to ImageFormatPNG.
	Format ImageFormat
}

// QRCode is a QR code URL decomposed by ParseQRCodeURL.
type QRCode struct {
	Snapcode string
	Options  QRCodeOptions
}
