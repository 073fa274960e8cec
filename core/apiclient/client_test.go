package apiclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type recordingSleeper struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (r *recordingSleeper) Sleep(_ context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delays = append(r.delays, d)
	return nil
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.RateLimitMs = 0
	return cfg
}

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) (*Client, *recordingSleeper) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	s := &recordingSleeper{}
	opts = append([]Option{WithSleeper(s.Sleep)}, opts...)
	return New("retail", srv.URL, "tok", testConfig(), opts...), s
}

func TestClient_Do_Success(t *testing.T) {
	var gotAuth, gotQuery string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"Item":{"itemID":"100"}}`))
	})

	resp, err := c.Get(context.Background(), "/Account/1/Item.json", url.Values{"customSku": {"A1"}})
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "customSku=A1", gotQuery)
	assert.True(t, resp.Parsed)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Data, "Item")

	var typed struct {
		Item struct {
			ItemID string `json:"itemID"`
		} `json:"Item"`
	}
	require.NoError(t, resp.Decode(&typed))
	assert.Equal(t, "100", typed.Item.ItemID)
}

func TestClient_Do_RawFallback(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte("queued"))
	})

	resp, err := c.Post(context.Background(), "jobs", map[string]string{"a": "b"})
	require.NoError(t, err)
	assert.False(t, resp.Parsed)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, "queued", string(resp.Raw))
	assert.Empty(t, resp.Data)
}

func TestClient_Do_EmptyBody(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	resp, err := c.Delete(context.Background(), "products/1/images/2.json")
	require.NoError(t, err)
	assert.True(t, resp.Parsed)
	assert.Empty(t, resp.Data)
}

func TestClient_Do_Classification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		kind   error
		calls  int32
	}{
		{"Unauthorized", http.StatusUnauthorized, ErrAuthentication, 1},
		{"NotFound", http.StatusNotFound, ErrNotFound, 1},
		{"BadRequest", http.StatusBadRequest, ErrAPI, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			c, sleeper := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"message":"nope"}`))
			})

			_, err := c.Get(context.Background(), "x", nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)
			assert.Equal(t, tt.calls, calls.Load())
			assert.Empty(t, sleeper.delays)

			var apiErr *Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Contains(t, apiErr.Body, "nope")
		})
	}
}

func TestClient_Do_RateLimitExhaustsAttempts(t *testing.T) {
	var calls atomic.Int32
	core, logs := observer.New(zapcore.WarnLevel)
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	c, sleeper := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}, WithLogger(zap.New(core)), WithMetrics(m))

	_, err = c.Get(context.Background(), "x", nil)
	require.Error(t, err)

	assert.Equal(t, int32(3), calls.Load())
	assert.ErrorIs(t, err, ErrAPI)
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, []time.Duration{4 * time.Second, 8 * time.Second}, sleeper.delays)

	assert.Equal(t, 2, logs.Len())
	for _, entry := range logs.All() {
		assert.Equal(t, "Retrying backend request", entry.Message)
	}

	assert.Equal(t, float64(2), testutil.ToFloat64(m.retries.WithLabelValues("retail")))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.requests.WithLabelValues("retail", "GET", "429")))
}

func TestClient_Do_ServerErrorRetried(t *testing.T) {
	var calls atomic.Int32
	c, sleeper := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	resp, err := c.Get(context.Background(), "x", nil)
	require.NoError(t, err)
	assert.Equal(t, true, resp.Data["ok"])
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, []time.Duration{4 * time.Second}, sleeper.delays)
}

func TestClient_Do_ServerErrorExhausted(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := c.Get(context.Background(), "x", nil)
	require.Error(t, err)
	assert.Equal(t, int32(3), calls.Load())
	assert.ErrorIs(t, err, ErrAPI)
	assert.ErrorIs(t, err, ErrServer)
}

func TestClient_Do_RetryAfterHonoredWithinWindow(t *testing.T) {
	var calls atomic.Int32
	c, sleeper := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		switch n {
		case 1:
			w.Header().Set("Retry-After", "6")
			w.WriteHeader(http.StatusTooManyRequests)
		case 2:
			w.Header().Set("Retry-After", "120")
			w.WriteHeader(http.StatusTooManyRequests)
		default:
			_, _ = w.Write([]byte(`{"ok":true}`))
		}
	})

	resp, err := c.Get(context.Background(), "x", nil)
	require.NoError(t, err)
	assert.Equal(t, true, resp.Data["ok"])
	assert.Equal(t, []time.Duration{6 * time.Second, 10 * time.Second}, sleeper.delays)
}

func TestClient_Do_TransportErrorRetried(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := srv.URL
	srv.Close()

	s := &recordingSleeper{}
	c := New("ecom", addr, "", testConfig(), WithSleeper(s.Sleep))

	_, err := c.Get(context.Background(), "products.json", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)
	assert.ErrorIs(t, err, ErrAPI)
	assert.Len(t, s.delays, 2)
}

func TestClient_Do_ContextCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}, WithSleeper(func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}))

	_, err := c.Get(ctx, "x", nil)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestClient_RequestSpacing(t *testing.T) {
	var mu sync.Mutex
	var stamps []time.Time
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		stamps = append(stamps, time.Now())
		mu.Unlock()
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.RateLimitMs = 50
	c := New("retail", srv.URL, "", cfg)

	for i := 0; i < 3; i++ {
		_, err := c.Get(context.Background(), "x", nil)
		require.NoError(t, err)
	}

	require.Len(t, stamps, 3)
	for i := 1; i < len(stamps); i++ {
		assert.GreaterOrEqual(t, stamps[i].Sub(stamps[i-1]), 40*time.Millisecond)
	}
}

func TestConfig_Backoff(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 4*time.Second, cfg.backoff(1, 0))
	assert.Equal(t, 8*time.Second, cfg.backoff(2, 0))
	assert.Equal(t, 10*time.Second, cfg.backoff(3, 0))
	assert.Equal(t, 10*time.Second, cfg.backoff(40, 0))
	assert.Equal(t, 4*time.Second, cfg.backoff(1, time.Second))
	assert.Equal(t, 7*time.Second, cfg.backoff(1, 7*time.Second))
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 5*time.Second, parseRetryAfter("5", now))
	assert.Equal(t, time.Duration(0), parseRetryAfter("", now))
	assert.Equal(t, time.Duration(0), parseRetryAfter("-3", now))
	assert.Equal(t, time.Duration(0), parseRetryAfter("soon", now))
	assert.Equal(t, 30*time.Second, parseRetryAfter(now.Add(30*time.Second).Format(http.TimeFormat), now))
}

func TestTruncate(t *testing.T) {
	short := "  upstream said no  "
	assert.Equal(t, "upstream said no", truncate([]byte(short)))

	// 511 ASCII bytes put the two-byte rune across the cut.
	long := strings.Repeat("a", maxBodyInError-1) + strings.Repeat("é", 10)
	got := truncate([]byte(long))
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("a", maxBodyInError-1)+"...", got)

	multi := strings.Repeat("日本", 400)
	got = truncate([]byte(multi))
	assert.True(t, utf8.ValidString(got))
	assert.LessOrEqual(t, len(got), maxBodyInError+len("..."))
}
