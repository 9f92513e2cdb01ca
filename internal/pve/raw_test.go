package pve

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRawGet(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api2/json/pools", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("full"))
		writeData(t, w, `[{"poolid":"production"}]`)
	}), NoCredential())

	raw, err := client.RawGet(context.Background(), "/pools", NewParams().SetBool("full", true))
	require.NoError(t, err)
	assert.JSONEq(t, `[{"poolid":"production"}]`, string(raw))
}

func TestRawPost_SignsLikeAnyWrite(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api2/json/pools", r.URL.Path)
		assert.Equal(t, "CSRF456", r.Header.Get("CSRFPreventionToken"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "staging", r.PostFormValue("poolid"))
		writeData(t, w, `null`)
	}), TicketCredential("TICKET123", "CSRF456"))

	_, err := client.RawPost(context.Background(), "/pools", NewParams().Set("poolid", "staging"))
	require.NoError(t, err)
}
