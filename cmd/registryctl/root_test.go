package main

import (
	"bytes"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketfactory/internal/registry/handler"
	"marketfactory/internal/registry/service"
	"marketfactory/internal/registry/store"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	r := chi.NewRouter()
	handler.New(service.New(store.NewInMemoryStore("a", "b", "c", "d", "e")),
		slog.New(slog.NewTextHandler(io.Discard, nil)), 50).Register(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"--addr", srv.URL}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestCountCommand(t *testing.T) {
	out, err := runCmd(t, "count")
	require.NoError(t, err)
	assert.Equal(t, "5\n", out)
}

func TestPageCommand(t *testing.T) {
	out, err := runCmd(t, "page", "4", "18446744073709551615")
	require.NoError(t, err)
	assert.JSONEq(t, `["e"]`, out)
}

func TestListCommand(t *testing.T) {
	out, err := runCmd(t, "list")
	require.NoError(t, err)
	assert.JSONEq(t, `["a","b","c","d","e"]`, out)
}

func TestPageCommandRejectsBadArgs(t *testing.T) {
	_, err := runCmd(t, "page", "-1", "2")
	assert.Error(t, err)

	_, err = runCmd(t, "page", "1")
	assert.Error(t, err)
}
