package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchSuccess(t *testing.T) {
	payload := []byte{0xFF, 0xD8, 0xFF, 0xE0}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write(payload)
	}))
	defer server.Close()

	body, err := New(0).Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, payload, body)
}

func TestFetchNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := New(0).Fetch(context.Background(), server.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrImageFetch)
	assert.Contains(t, err.Error(), "Erro ao baixar imagem")
	assert.Contains(t, err.Error(), "404")
}

func TestFetchTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	_, err := New(20 * time.Millisecond).Fetch(context.Background(), server.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrImageFetch)
}
