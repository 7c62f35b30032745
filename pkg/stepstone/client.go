package stepstone

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fkoehler/stepscout/internal/domain"
	"github.com/fkoehler/stepscout/pkg/logging"
)

const backoffBase = 500 * time.Millisecond

// NewClient instantiates a Stepstone scraping client.
func NewClient(cfg Config) (*Client, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	} else if maxRetries == 0 {
		maxRetries = defaultMaxRetries
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Nop()
	}

	return &Client{
		baseURL:    baseURL,
		userAgent:  userAgent,
		maxRetries: maxRetries,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// Name identifies the portal behind this client.
func (c *Client) Name() string { return "stepstone" }

// Search fetches and parses the results page for one term. A page with no
// result blocks yields an empty slice, not an error.
func (c *Client) Search(ctx context.Context, term string, loc *domain.Location) ([]domain.JobListing, error) {
	u := c.SearchURL(term, loc)

	body, err := c.fetch(ctx, u)
	if err != nil {
		return nil, err
	}

	listings := c.parseListings(body)
	c.logger.Debug("search page parsed", "term", term, "url", u, "listings", len(listings))
	return listings, nil
}

// Detail fetches a single posting page and parses the enriched record.
// Detail responses are never cached; every call refetches the page.
func (c *Client) Detail(ctx context.Context, link string) (domain.JobDetail, error) {
	body, err := c.fetch(ctx, link)
	if err != nil {
		return domain.JobDetail{}, err
	}
	return parseDetail(body, link)
}

// fetch GETs rawURL, retrying transient failures (transport errors and 5xx
// responses) with exponential backoff. 4xx responses fail immediately. A
// 2xx response with an empty body is returned as-is: "no results", not an
// error.
func (c *Client) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	var last *FetchError

	for attempt := 1; ; attempt++ {
		body, ferr := c.doRequest(ctx, rawURL)
		if ferr == nil {
			return body, nil
		}

		ferr.Attempts = attempt
		last = ferr

		if ferr.permanent || attempt > c.maxRetries {
			return nil, last
		}
		if err := sleepBackoff(ctx, attempt); err != nil {
			// Overall budget exhausted; the last attempt stands.
			return nil, last
		}
		c.logger.Debug("retrying fetch", "url", rawURL, "attempt", attempt+1, "reason", ferr.Reason)
	}
}

func (c *Client) doRequest(ctx context.Context, rawURL string) ([]byte, *FetchError) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Reason: "build request: " + err.Error(), Err: err, permanent: true}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept-Language", "de-DE,de;q=0.9,en;q=0.6")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Reason: "request failed: " + err.Error(), Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &FetchError{URL: rawURL, Reason: "server error", Status: resp.StatusCode}
	case resp.StatusCode >= http.StatusBadRequest:
		return nil, &FetchError{URL: rawURL, Reason: "request rejected", Status: resp.StatusCode, permanent: true}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Reason: "read body: " + err.Error(), Err: err}
	}
	return body, nil
}

// sleepBackoff waits 2^(attempt-1) * 500ms before the next try, honoring
// context cancellation.
func sleepBackoff(ctx context.Context, attempt int) error {
	delay := backoffBase << (attempt - 1)

	t := time.NewTimer(delay)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
