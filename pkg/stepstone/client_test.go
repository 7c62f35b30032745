package stepstone

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServerClient(t *testing.T, handler http.HandlerFunc, maxRetries int) (*Client, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{
		BaseURL:    srv.URL,
		MaxRetries: maxRetries,
		Timeout:    2 * time.Second,
	})
	require.NoError(t, err)
	return c, srv
}

func TestFetchRetriesOnServerError(t *testing.T) {
	var calls atomic.Int32
	c, srv := newTestServerClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("<html>ok</html>"))
	}, 3)

	body, err := c.fetch(context.Background(), srv.URL+"/jobs/test")
	require.NoError(t, err)
	assert.Equal(t, "<html>ok</html>", string(body))
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetchExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	c, srv := newTestServerClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}, 2)

	_, err := c.fetch(context.Background(), srv.URL+"/jobs/test")
	require.Error(t, err)

	var ferr *FetchError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, http.StatusInternalServerError, ferr.Status)
	assert.Equal(t, 3, ferr.Attempts) // initial attempt plus two retries
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetchDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	c, srv := newTestServerClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}, 3)

	_, err := c.fetch(context.Background(), srv.URL+"/jobs/missing")
	require.Error(t, err)

	var ferr *FetchError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, http.StatusNotFound, ferr.Status)
	assert.Equal(t, 1, ferr.Attempts)
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetchEmptyBodyIsNotAnError(t *testing.T) {
	c, srv := newTestServerClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}, 3)

	body, err := c.fetch(context.Background(), srv.URL+"/jobs/empty")
	require.NoError(t, err)
	assert.Empty(t, body)
}

func TestFetchSendsIdentificationHeader(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte("ok"))
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{BaseURL: srv.URL, UserAgent: "stepscout-test/1.0"})
	require.NoError(t, err)

	_, err = c.fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "stepscout-test/1.0", gotUA)
}

func TestFetchStopsBackoffWhenContextExpires(t *testing.T) {
	var calls atomic.Int32
	c, srv := newTestServerClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}, 5)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := c.fetch(ctx, srv.URL+"/jobs/slow")
	require.Error(t, err)
	// First backoff is 500ms, so the deadline fires before a second retry.
	assert.LessOrEqual(t, calls.Load(), int32(2))
}

func TestFetchUnusableURLIsPermanent(t *testing.T) {
	c := testClient(t)

	_, err := c.fetch(context.Background(), "http://[::1]:namedport")
	require.Error(t, err)

	var ferr *FetchError
	require.True(t, errors.As(err, &ferr))
	assert.Equal(t, 1, ferr.Attempts)
}
