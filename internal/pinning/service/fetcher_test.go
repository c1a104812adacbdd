package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zedanazad43/stampcoin-platform/internal/config"
	"github.com/zedanazad43/stampcoin-platform/internal/pinning/domain"
)

func newTestFetcher(maxBytes int64) domain.AssetFetcher {
	cfg := config.DefaultEconomyConfig()
	if maxBytes > 0 {
		cfg.Pin.MaxAssetBytes = maxBytes
	}
	return NewFetcher(config.NewStaticEconomyHolder(cfg))
}

func TestFetch_ReturnsPayloadAndMime(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/PNG; charset=binary")
		w.Write([]byte("image-bytes"))
	}))
	defer srv.Close()

	payload, mimeType, err := newTestFetcher(0).Fetch(context.Background(), srv.URL+"/stamp.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("image-bytes"), payload)
	assert.Equal(t, "image/png", mimeType)
}

func TestFetch_RejectsOversizePayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(make([]byte, 100))
	}))
	defer srv.Close()

	_, _, err := newTestFetcher(99).Fetch(context.Background(), srv.URL)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestFetch_RejectsEmptyAndNonHTTPReferences(t *testing.T) {
	fetcher := newTestFetcher(0)

	_, _, err := fetcher.Fetch(context.Background(), "  ")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, _, err = fetcher.Fetch(context.Background(), "ftp://example.com/stamp.png")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestFetch_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, _, err := newTestFetcher(0).Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrValidation)
}
