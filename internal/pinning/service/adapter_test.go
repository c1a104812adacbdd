package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/zedanazad43/stampcoin-platform/internal/config"
	"github.com/zedanazad43/stampcoin-platform/internal/pinning/domain"
)

type stubProvider struct {
	id    string
	uri   string
	err   error
	calls atomic.Int32
}

func (s *stubProvider) ID() string { return s.id }

func (s *stubProvider) Pin(ctx context.Context, name string, payload []byte, mimeType string) (string, error) {
	s.calls.Add(1)
	if s.err != nil {
		return "", s.err
	}
	return s.uri, nil
}

func newTestAdapter(primary, secondary domain.Provider) domain.Adapter {
	return New(Params{
		Log:       zap.NewNop(),
		Economy:   config.NewStaticEconomyHolder(config.DefaultEconomyConfig()),
		Primary:   primary,
		Secondary: secondary,
	})
}

func testMeta() domain.AssetMetadata {
	return domain.AssetMetadata{
		Name:        "France 1930 50c",
		Description: "classic issue",
		Attributes:  map[string]string{"country": "FR"},
	}
}

func TestPin_BothProvidersSucceed(t *testing.T) {
	primary := &stubProvider{id: "pinata", uri: "ipfs://primary"}
	secondary := &stubProvider{id: "filebase", uri: "ipfs://secondary"}
	adapter := newTestAdapter(primary, secondary)

	result, err := adapter.Pin(context.Background(), []byte("img"), "image/png", testMeta())
	require.NoError(t, err)

	assert.Equal(t, domain.StatusOK, result.Primary.Status)
	assert.Equal(t, domain.StatusOK, result.Secondary.Status)
	assert.Equal(t, "ipfs://primary", result.ImageURI)
	assert.Equal(t, "ipfs://primary", result.MetadataURI)

	// Asset plus metadata document on the primary, asset only on the secondary.
	assert.Equal(t, int32(2), primary.calls.Load())
	assert.Equal(t, int32(1), secondary.calls.Load())
}

func TestPin_SecondaryFailureIsTolerated(t *testing.T) {
	primary := &stubProvider{id: "pinata", uri: "ipfs://primary"}
	secondary := &stubProvider{id: "filebase", err: errors.New("filebase down")}
	adapter := newTestAdapter(primary, secondary)

	result, err := adapter.Pin(context.Background(), []byte("img"), "image/png", testMeta())
	require.NoError(t, err)

	assert.Equal(t, domain.StatusOK, result.Primary.Status)
	assert.Equal(t, domain.StatusFailed, result.Secondary.Status)
	assert.Contains(t, result.Secondary.Err, "filebase down")
	assert.Equal(t, "ipfs://primary", result.ImageURI)
}

func TestPin_NoSecondaryIsSkipped(t *testing.T) {
	primary := &stubProvider{id: "pinata", uri: "ipfs://primary"}
	adapter := newTestAdapter(primary, nil)

	result, err := adapter.Pin(context.Background(), []byte("img"), "image/png", testMeta())
	require.NoError(t, err)

	assert.Equal(t, domain.StatusSkipped, result.Secondary.Status)
}

func TestPin_PrimaryFailureFailsThePin(t *testing.T) {
	primary := &stubProvider{id: "pinata", err: errors.New("pinata down")}
	secondary := &stubProvider{id: "filebase", uri: "ipfs://secondary"}
	adapter := newTestAdapter(primary, secondary)

	_, err := adapter.Pin(context.Background(), []byte("img"), "image/png", testMeta())
	assert.ErrorIs(t, err, domain.ErrPinningFailed)
}

func TestPin_ValidationRejectsBeforeAnyProviderCall(t *testing.T) {
	primary := &stubProvider{id: "pinata", uri: "ipfs://primary"}
	adapter := newTestAdapter(primary, nil)

	cases := []struct {
		name     string
		payload  []byte
		mimeType string
	}{
		{"empty payload", nil, "image/png"},
		{"disallowed mime type", []byte("img"), "application/pdf"},
		{"oversize payload", make([]byte, (5<<20)+1), "image/png"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := adapter.Pin(context.Background(), tc.payload, tc.mimeType, testMeta())
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}

	assert.Equal(t, int32(0), primary.calls.Load())
}

func TestPin_MimeParametersAreStripped(t *testing.T) {
	primary := &stubProvider{id: "pinata", uri: "ipfs://primary"}
	adapter := newTestAdapter(primary, nil)

	_, err := adapter.Pin(context.Background(), []byte("img"), "image/png; charset=binary", testMeta())
	assert.NoError(t, err)
}
