package platform

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adboard-sync/internal/config/configs"
	"adboard-sync/internal/core/port"
)

func testClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	return NewClient(configs.Platform{
		Addr:    *u,
		APIKey:  "secret-key",
		Timeout: 5 * time.Second,
	}, NewRateLimitedGateway(1000, 1000))
}

func TestClientFindAdvertiserByNameExactMatch(t *testing.T) {
	var gotPath, gotKey, gotName string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-Api-Key")
		gotName = r.URL.Query().Get("name")
		json.NewEncoder(w).Encode([]port.RemoteEntity{
			{ID: 1, Name: "Acme Corp"},
			{ID: 2, Name: "Acme"},
		})
	}))
	defer srv.Close()

	c := testClient(t, srv)
	e, err := c.FindAdvertiserByName(context.Background(), 7, "Acme")
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, 2, e.ID, "only the exact name matches, not prefixes")

	assert.Equal(t, "/api/v1/networks/7/advertisers", gotPath)
	assert.Equal(t, "secret-key", gotKey)
	assert.Equal(t, "Acme", gotName)
}

func TestClientFindAdvertiserByNameMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]port.RemoteEntity{})
	}))
	defer srv.Close()

	c := testClient(t, srv)
	e, err := c.FindAdvertiserByName(context.Background(), 7, "Nobody")
	require.NoError(t, err)
	assert.Nil(t, e)

	exists, err := c.AdvertiserExists(context.Background(), 7, "Nobody")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestClientCreateAdvertiser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/advertisers", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var p port.AdvertiserPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
		assert.Equal(t, "Acme", p.Name)
		assert.Equal(t, 7, p.NetworkID)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(port.RemoteEntity{ID: 42, Name: p.Name})
	}))
	defer srv.Close()

	c := testClient(t, srv)
	e, err := c.CreateAdvertiser(context.Background(), port.AdvertiserPayload{NetworkID: 7, Name: "Acme"})
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, 42, e.ID)
}

func TestClientStatusErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]string{"error": "validation", "message": "name is required"})
	}))
	defer srv.Close()

	c := testClient(t, srv)
	_, err := c.CreateZone(context.Background(), port.ZonePayload{NetworkID: 7})
	require.Error(t, err)

	var pe *port.PlatformError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, http.StatusUnprocessableEntity, pe.StatusCode)
	assert.Equal(t, "name is required", pe.Message)
}

func TestClientStatusErrorPlainBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := testClient(t, srv)
	_, err := c.GetNetwork(context.Background(), 7)
	require.Error(t, err)

	var pe *port.PlatformError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, http.StatusBadGateway, pe.StatusCode)
	assert.Contains(t, pe.Message, "upstream exploded")
}

func TestClientConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	c := testClient(t, srv)
	srv.Close()

	_, err := c.GetNetwork(context.Background(), 7)
	require.Error(t, err)

	var pe *port.PlatformError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, port.TransportRefused, pe.TransportCode)
}

func TestClientTimeout(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	c := NewClient(configs.Platform{
		Addr:    *u,
		APIKey:  "secret-key",
		Timeout: 50 * time.Millisecond,
	}, NewRateLimitedGateway(1000, 1000))

	_, err = c.GetNetwork(context.Background(), 7)
	require.Error(t, err)

	var pe *port.PlatformError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, port.TransportTimeout, pe.TransportCode)
}
