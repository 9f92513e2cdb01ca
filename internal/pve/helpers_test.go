package pve

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"pvectl/internal/testutil"
)

// newTestClient builds a client against a local test server.
func newTestClient(t *testing.T, handler http.Handler, cred Credential) *Client {
	t.Helper()

	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	client, err := testOptions(t, ts).WithCredential(cred).Build(context.Background())
	require.NoError(t, err)

	return client
}

// testOptions derives client options pointing at the test server.
func testOptions(t *testing.T, ts *httptest.Server) *Options {
	t.Helper()

	u, err := url.Parse(ts.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)

	return NewOptions(u.Hostname()).
		WithScheme("http").
		WithPort(port).
		WithLogger(testutil.Logger())
}

// newFixedServer serves a fixed status and body for every request.
func newFixedServer(t *testing.T, statusCode int, body string) *httptest.Server {
	t.Helper()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(statusCode)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(ts.Close)
	return ts
}

// writeData writes a {"data": ...} envelope with the given raw payload.
func writeData(t *testing.T, w http.ResponseWriter, payload string) {
	t.Helper()

	w.Header().Set("Content-Type", "application/json")
	_, err := w.Write([]byte(`{"data":` + payload + `}`))
	require.NoError(t, err)
}
