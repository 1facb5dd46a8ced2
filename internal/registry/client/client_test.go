package client_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketfactory/internal/registry/client"
	"marketfactory/internal/registry/handler"
	"marketfactory/internal/registry/models"
	"marketfactory/internal/registry/service"
	"marketfactory/internal/registry/store"
)

func newServer(t *testing.T, ids ...models.MarketID) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler.New(service.New(store.NewInMemoryStore(ids...)), logger, 50).Register(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestClientAgainstHandler(t *testing.T) {
	ctx := context.Background()
	srv := newServer(t, "a", "b", "c", "d", "e")
	c := client.New(srv.URL+"/", srv.Client())

	n, err := c.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.U64(5), n)

	all, err := c.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.MarketID{"a", "b", "c", "d", "e"}, all)

	page, err := c.ListPage(ctx, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, []models.MarketID{"c", "d"}, page)

	page, err = c.ListPage(ctx, math.MaxUint64, math.MaxUint64)
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestClientDecodesErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"service_unavailable","error_description":"registry store unavailable"}`))
	}))
	defer srv.Close()

	_, err := client.New(srv.URL, nil).Count(context.Background())

	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.Status)
	assert.Equal(t, "service_unavailable", apiErr.Code)
	assert.Contains(t, apiErr.Error(), "registry store unavailable")
}
