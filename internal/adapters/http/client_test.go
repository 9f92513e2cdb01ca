package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pvectl/internal/testutil"
)

func newTestAdapter(t *testing.T, handler http.Handler) *Adapter {
	t.Helper()

	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	return NewAdapter(Options{BaseURL: ts.URL}, testutil.Logger())
}

func TestAdapter_DispatchesRequests(t *testing.T) {
	adapter := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))

	resp, err := adapter.R(context.Background()).Get("/")
	require.NoError(t, err)
	defer resp.RawBody().Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode())
}

func TestAdapter_SetRateLimitConcurrentWithRequests(t *testing.T) {
	adapter := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))

	// The limiter may be swapped while requests are in flight; the race
	// detector flags any unguarded access.
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				adapter.SetRateLimit(100, 50)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				resp, err := adapter.R(context.Background()).Get("/")
				if err == nil {
					_ = resp.RawBody().Close()
				}
			}
		}()
	}
	wg.Wait()
}
