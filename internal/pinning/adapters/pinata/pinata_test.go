package pinata

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zedanazad43/stampcoin-platform/internal/pinning/domain"
)

func newProvider(t *testing.T, baseURL string) domain.Provider {
	t.Helper()

	factory := NewFactory()
	provider, err := factory.New(domain.ProviderConfig{
		BaseURL: baseURL,
		Token:   "test-token",
		Timeout: 5 * time.Second,
	})
	require.NoError(t, err)
	return provider
}

func TestFactory_RequiresToken(t *testing.T) {
	_, err := NewFactory().New(domain.ProviderConfig{})
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestPin_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/pinning/pinFileToIPFS", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "stamp-fr-1930", header.Filename)

		var meta map[string]string
		require.NoError(t, json.Unmarshal([]byte(r.FormValue("pinataMetadata")), &meta))
		assert.Equal(t, "stamp-fr-1930", meta["name"])

		json.NewEncoder(w).Encode(pinResponse{IpfsHash: "QmTestHash"})
	}))
	defer srv.Close()

	provider := newProvider(t, srv.URL)

	uri, err := provider.Pin(context.Background(), "stamp-fr-1930", []byte("payload"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "ipfs://QmTestHash", uri)
}

func TestPin_RetriesOnceOnServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(pinResponse{IpfsHash: "QmRetryHash"})
	}))
	defer srv.Close()

	provider := newProvider(t, srv.URL)

	uri, err := provider.Pin(context.Background(), "asset", []byte("payload"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "ipfs://QmRetryHash", uri)
	assert.Equal(t, int32(2), calls.Load())
}

func TestPin_ClientErrorIsFinal(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"reason": "INVALID_CREDENTIALS"},
		})
	}))
	defer srv.Close()

	provider := newProvider(t, srv.URL)

	_, err := provider.Pin(context.Background(), "asset", []byte("payload"), "image/png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INVALID_CREDENTIALS")
	assert.Equal(t, int32(1), calls.Load())
}

func TestPin_EmptyHashRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(pinResponse{})
	}))
	defer srv.Close()

	provider := newProvider(t, srv.URL)

	_, err := provider.Pin(context.Background(), "asset", []byte("payload"), "image/png")
	assert.Error(t, err)
}
