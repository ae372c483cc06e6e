// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func suppressBackoff(t *testing.T) {
	t.Helper()
	orig := RetryBaseDelay
	RetryBaseDelay = 0
	t.Cleanup(func() { RetryBaseDelay = orig })
}

func TestDoWithRetrySuccessFirstTry(t *testing.T) {
	suppressBackoff(t)

	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	resp, err := DoWithRetry(context.Background(), http.DefaultClient, req, 0)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(1), calls.Load())
}

func TestDoWithRetryRecoversFromRateLimit(t *testing.T) {
	suppressBackoff(t)

	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	resp, err := DoWithRetry(context.Background(), http.DefaultClient, req, 0)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(3), calls.Load())
}

func TestDoWithRetryReturnsLastRateLimitResponse(t *testing.T) {
	suppressBackoff(t)

	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	resp, err := DoWithRetry(context.Background(), http.DefaultClient, req, 2)
	require.NoError(t, err)
	defer resp.Body.Close()

	// 1 initial attempt plus 2 retries, then the 429 surfaces.
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, int64(3), calls.Load())
}

func TestBackoffDelay(t *testing.T) {
	resp := func(retryAfter string) *http.Response {
		r := &http.Response{Header: http.Header{}}
		if retryAfter != "" {
			r.Header.Set("Retry-After", retryAfter)
		}
		return r
	}

	t.Run("delay seconds win over exponential", func(t *testing.T) {
		assert.Equal(t, 7*time.Second, backoffDelay(resp("7"), 0))
	})

	t.Run("http date wins over exponential", func(t *testing.T) {
		when := time.Now().Add(30 * time.Second).UTC().Format(http.TimeFormat)
		d := backoffDelay(resp(when), 0)
		assert.Greater(t, d, 20*time.Second)
		assert.LessOrEqual(t, d, 30*time.Second)
	})

	t.Run("past http date means no wait", func(t *testing.T) {
		when := time.Now().Add(-time.Minute).UTC().Format(http.TimeFormat)
		assert.Equal(t, time.Duration(0), backoffDelay(resp(when), 0))
	})

	t.Run("garbage header falls back to exponential", func(t *testing.T) {
		assert.Equal(t, 2*RetryBaseDelay, backoffDelay(resp("soon"), 1))
	})

	t.Run("absent header doubles per attempt", func(t *testing.T) {
		assert.Equal(t, RetryBaseDelay, backoffDelay(resp(""), 0))
		assert.Equal(t, 4*RetryBaseDelay, backoffDelay(resp(""), 2))
	})
}

func TestDoWithRetryHonorsRetryAfter(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	// RetryBaseDelay is untouched here: the zero-second Retry-After is
	// what keeps the retry immediate.
	start := time.Now()
	resp, err := DoWithRetry(context.Background(), http.DefaultClient, req, 0)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(2), calls.Load())
	assert.Less(t, time.Since(start), RetryBaseDelay)
}

func TestDoWithRetryHonorsCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	// The cancelled context aborts either the request or the backoff wait.
	_, err = DoWithRetry(ctx, http.DefaultClient, req, 0)
	require.Error(t, err)
}
