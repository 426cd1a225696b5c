package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civicfin/internal/ratelimit"
	"civicfin/pkg/platform/circuit"
)

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (ratelimit.Result, error) {
	return ratelimit.Result{}, errors.New("redis down")
}

type recordingObserver struct {
	mu       sync.Mutex
	outcomes []string
}

func (r *recordingObserver) ObserveUpstream(_, _, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, outcome)
}

func TestJSONClient_Get(t *testing.T) {
	t.Run("decodes body and sends api key as query parameter", func(t *testing.T) {
		var gotKey, gotName string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotKey = r.URL.Query().Get("api_key")
			gotName = r.URL.Query().Get("q")
			_, _ = w.Write([]byte(`{"value":"ok"}`))
		}))
		defer srv.Close()

		obs := &recordingObserver{}
		c := NewJSONClient(Config{ID: "fec", BaseURL: srv.URL + "/", APIKey: "k", APIKeyParam: "api_key"}, WithObserver(obs))

		var out struct{ Value string }
		err := c.Get(context.Background(), "search", "/candidates/search/", url.Values{"q": {"Peters"}}, &out)
		require.NoError(t, err)
		assert.Equal(t, "ok", out.Value)
		assert.Equal(t, "k", gotKey)
		assert.Equal(t, "Peters", gotName)
		assert.Equal(t, []string{"ok"}, obs.outcomes)
	})

	t.Run("sends api key as header when configured", func(t *testing.T) {
		var gotHeader string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotHeader = r.Header.Get("X-API-Key")
			_, _ = w.Write([]byte(`{}`))
		}))
		defer srv.Close()

		c := NewJSONClient(Config{ID: "profile", BaseURL: srv.URL, APIKey: "secret", APIKeyHdr: "X-API-Key"})
		require.NoError(t, c.Get(context.Background(), "member", "members/X.json", nil, &struct{}{}))
		assert.Equal(t, "secret", gotHeader)
	})

	statusCases := []struct {
		status   int
		category ErrorCategory
	}{
		{http.StatusNotFound, ErrorNotFound},
		{http.StatusForbidden, ErrorAuthentication},
		{http.StatusTooManyRequests, ErrorRateLimited},
		{http.StatusBadGateway, ErrorProviderOutage},
		{http.StatusGatewayTimeout, ErrorTimeout},
		{http.StatusUnprocessableEntity, ErrorBadData},
	}
	for _, tc := range statusCases {
		t.Run("maps status "+http.StatusText(tc.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
			}))
			defer srv.Close()

			c := NewJSONClient(Config{ID: "fec", BaseURL: srv.URL})
			err := c.Get(context.Background(), "totals", "/x", nil, &struct{}{})
			require.Error(t, err)
			assert.Equal(t, tc.category, GetCategory(err))
		})
	}

	t.Run("malformed body is bad data", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{not json`))
		}))
		defer srv.Close()

		c := NewJSONClient(Config{ID: "fec", BaseURL: srv.URL})
		err := c.Get(context.Background(), "totals", "/x", nil, &struct{}{})
		assert.Equal(t, ErrorBadData, GetCategory(err))
		assert.False(t, IsRetryable(err))
	})

	t.Run("slow upstream times out", func(t *testing.T) {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer srv.Close()
		defer close(release)

		c := NewJSONClient(Config{ID: "fec", BaseURL: srv.URL, Timeout: 20 * time.Millisecond})
		err := c.Get(context.Background(), "totals", "/x", nil, &struct{}{})
		assert.Equal(t, ErrorTimeout, GetCategory(err))
		assert.True(t, IsRetryable(err))
	})

	t.Run("caller cancellation is not an outage", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		defer srv.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		c := NewJSONClient(Config{ID: "fec", BaseURL: srv.URL})
		err := c.Get(ctx, "totals", "/x", nil, &struct{}{})
		assert.Equal(t, ErrorCanceled, GetCategory(err))
	})
}

func TestJSONClient_Breaker(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	breaker := circuit.New("fec", circuit.WithFailureThreshold(2), circuit.WithCooldown(time.Hour))
	c := NewJSONClient(Config{ID: "fec", BaseURL: srv.URL}, WithBreaker(breaker))

	for range 2 {
		_ = c.Get(context.Background(), "totals", "/x", nil, &struct{}{})
	}
	require.True(t, breaker.IsOpen())

	err := c.Get(context.Background(), "totals", "/x", nil, &struct{}{})
	assert.Equal(t, ErrorProviderOutage, GetCategory(err))
	assert.Equal(t, 2, calls, "open breaker must short-circuit")
}

func TestJSONClient_NotFoundDoesNotTripBreaker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	breaker := circuit.New("fec", circuit.WithFailureThreshold(1))
	c := NewJSONClient(Config{ID: "fec", BaseURL: srv.URL}, WithBreaker(breaker))
	_ = c.Get(context.Background(), "candidate", "/x", nil, &struct{}{})
	assert.False(t, breaker.IsOpen())
}

func TestJSONClient_CallerDeadlineDoesNotTripBreaker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	breaker := circuit.New("fec", circuit.WithFailureThreshold(1), circuit.WithCooldown(time.Hour))
	c := NewJSONClient(Config{ID: "fec", BaseURL: srv.URL, Timeout: 5 * time.Second}, WithBreaker(breaker))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := c.Get(ctx, "candidates.search", "/x", nil, &struct{}{})

	assert.Equal(t, ErrorCanceled, GetCategory(err))
	assert.False(t, breaker.IsOpen(), "the caller's own budget says nothing about upstream health")
}

func TestJSONClient_Limiter(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	t.Run("exhausted quota short-circuits without tripping the breaker", func(t *testing.T) {
		calls = 0
		breaker := circuit.New("fec", circuit.WithFailureThreshold(1))
		limiter := ratelimit.NewMemory(ratelimit.Quota{Limit: 2, Window: time.Hour})
		c := NewJSONClient(Config{ID: "fec", BaseURL: srv.URL}, WithBreaker(breaker), WithLimiter(limiter))

		for range 2 {
			require.NoError(t, c.Get(context.Background(), "totals", "/x", nil, &struct{}{}))
		}
		err := c.Get(context.Background(), "totals", "/x", nil, &struct{}{})
		assert.Equal(t, ErrorRateLimited, GetCategory(err))
		assert.Equal(t, 2, calls)
		assert.False(t, breaker.IsOpen())
	})

	t.Run("limiter failure lets the call through", func(t *testing.T) {
		calls = 0
		c := NewJSONClient(Config{ID: "fec", BaseURL: srv.URL}, WithLimiter(failingLimiter{}))
		require.NoError(t, c.Get(context.Background(), "totals", "/x", nil, &struct{}{}))
		assert.Equal(t, 1, calls)
	})
}

func TestProviderError(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := NewProviderError(ErrorProviderOutage, "fec", "request failed", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "provider fec [provider_outage]")
	assert.True(t, err.Retryable)
	assert.Equal(t, ErrorInternal, GetCategory(errors.New("plain")))
}
