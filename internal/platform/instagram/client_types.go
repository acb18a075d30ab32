package instagram

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/PiotrWarzachowski/go-instagram-publisher/internal/platform/instagram/session"
	"github.com/PiotrWarzachowski/go-instagram-publisher/internal/result"
	"github.com/PiotrWarzachowski/go-instagram-publisher/internal/video"
)

const (
	IGAPIBaseURL     = "https://i.instagram.com/"
	IGWebBaseURL     = "https://www.instagram.com/"
	IGBloksVersionID = "ce555e5500576acd8e84a66018f54a05720f2dce29f0bb5a1f97f0c10d6fac48"
	IGAppID          = "567067343352427"
	IGWebAppID       = "936619743392459"
)

// MediaProber inspects video files before a video story upload.
type MediaProber interface {
	Probe(ctx context.Context, path string) (*video.Info, error)
	Cover(ctx context.Context, path, dir string) (string, error)
}

type Client struct {
	mu sync.RWMutex

	Username string
	Password string

	SessionID         string
	AuthorizationData map[string]any
	LastLogin         int64
	Cookies           map[string]string

	DeviceSettings *session.DeviceSettings
	UserAgent      string

	PhoneID           string
	UUID              string
	ClientSessionID   string
	AdvertisingID     string
	AndroidDeviceID   string
	RequestID         string
	TraySessionID     string
	BloksVersioningID string

	Country        string
	CountryCode    int
	Locale         string
	TimezoneOffset int

	Mid        string
	IgURur     string
	IgWwwClaim string

	httpClient *http.Client
	csrfToken  string

	apiBaseURL string
	webBaseURL string

	pollInterval time.Duration
	prober       MediaProber

	log zerolog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the HTTP client. A cookie jar is added when the
// supplied client has none.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			cp := *hc
			c.httpClient = &cp
		}
	}
}

// WithBaseURLs points the client at alternative API and web hosts.
// Both must end with a slash.
func WithBaseURLs(api, web string) Option {
	return func(c *Client) {
		c.apiBaseURL = api
		c.webBaseURL = web
	}
}

func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithPollInterval sets how often a pending story configure is retried
// while Instagram is still transcoding.
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

func WithProber(p MediaProber) Option {
	return func(c *Client) {
		c.prober = p
	}
}

// WithLocale overrides the regional settings sent with requests.
func WithLocale(locale, country string, countryCode, timezoneOffset int) Option {
	return func(c *Client) {
		if locale != "" {
			c.Locale = locale
		}
		if country != "" {
			c.Country = country
		}
		if countryCode != 0 {
			c.CountryCode = countryCode
		}
		c.TimezoneOffset = timezoneOffset
	}
}

type APIResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	ErrorType string `json:"error_type,omitempty"`
}

type APIError struct {
	StatusCode int
	Message    string
	ErrorType  string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("Instagram API error: %s (code: %d, type: %s)", e.Message, e.StatusCode, e.ErrorType)
	}
	return fmt.Sprintf("Instagram API error: status code %d", e.StatusCode)
}

// Kind places the error in the runner failure taxonomy.
func (e *APIError) Kind() result.Kind {
	switch e.ErrorType {
	case "bad_password", "invalid_user", "two_factor_required", "challenge_required",
		"checkpoint_challenge_required", "checkpoint_required", "login_required":
		return result.KindAuth
	case "rate_limit":
		return result.KindNetwork
	}

	if e.Message == "login_required" {
		return result.KindAuth
	}

	switch {
	case e.StatusCode == http.StatusUnauthorized, e.StatusCode == http.StatusForbidden:
		return result.KindAuth
	case e.StatusCode == http.StatusTooManyRequests, e.StatusCode >= 500:
		return result.KindNetwork
	}

	return result.KindUnknown
}

var (
	ErrBadCredentials    = &APIError{Message: "Invalid username or password", ErrorType: "bad_password"}
	ErrTwoFactorRequired = &APIError{Message: "Two factor authentication required", ErrorType: "two_factor_required"}
	ErrChallengeRequired = &APIError{Message: "Challenge required", ErrorType: "challenge_required"}
	ErrRateLimited       = &APIError{StatusCode: http.StatusTooManyRequests, Message: "Rate limited, please wait", ErrorType: "rate_limit"}
	ErrNotLoggedIn       = &APIError{Message: "not logged in", ErrorType: "login_required"}
)
