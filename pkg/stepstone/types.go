package stepstone

import (
	"fmt"
	"net/http"
	"time"

	"github.com/fkoehler/stepscout/pkg/logging"
)

const (
	defaultBaseURL    = "https://www.stepstone.de"
	defaultUserAgent  = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	defaultTimeout    = 10 * time.Second
	defaultMaxRetries = 3
)

// Config defines Stepstone client settings.
type Config struct {
	BaseURL    string
	UserAgent  string
	Timeout    time.Duration // per-request timeout
	MaxRetries int           // retries after the first attempt
	HTTPClient *http.Client
	Logger     *logging.Logger
}

// Client scrapes Stepstone search-result and job-detail pages.
type Client struct {
	baseURL    string
	userAgent  string
	maxRetries int
	httpClient *http.Client
	logger     *logging.Logger
}

// FetchError is a terminal fetch failure: either retries were exhausted on a
// transient error or the request failed permanently (4xx, unusable URL).
type FetchError struct {
	URL      string
	Reason   string
	Status   int // HTTP status, 0 when the request never completed
	Attempts int
	Err      error

	permanent bool
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("stepstone: fetch %s: %s (status %d after %d attempt(s))", e.URL, e.Reason, e.Status, e.Attempts)
	}
	return fmt.Sprintf("stepstone: fetch %s: %s (after %d attempt(s))", e.URL, e.Reason, e.Attempts)
}

func (e *FetchError) Unwrap() error { return e.Err }
