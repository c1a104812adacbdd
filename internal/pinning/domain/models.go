package domain

import (
	"context"
	"errors"
	"time"
)

// Status is the per-provider outcome of a pin attempt.
type Status string

const (
	StatusOK      Status = "ok"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// ProviderOutcome reports one provider's result. A failed secondary outcome
// travels inside a successful Result; it is data, not an error.
type ProviderOutcome struct {
	Status     Status `json:"status"`
	ProviderID string `json:"provider_id,omitempty"`
	URI        string `json:"uri,omitempty"`
	Err        string `json:"error,omitempty"`
}

// Result is the combined outcome of pinning one asset and its metadata
// document. Primary and Secondary describe the asset upload; MetadataURI is
// always served by the primary provider.
type Result struct {
	Primary     ProviderOutcome `json:"primary"`
	Secondary   ProviderOutcome `json:"secondary"`
	ImageURI    string          `json:"image_uri"`
	MetadataURI string          `json:"metadata_uri"`
}

// AssetMetadata describes the asset being pinned.
type AssetMetadata struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Attributes  map[string]string `json:"attributes,omitempty"`
}

// Provider uploads one payload to a content-addressed store and returns a
// retrievable URI.
type Provider interface {
	ID() string
	Pin(ctx context.Context, name string, payload []byte, mimeType string) (string, error)
}

// ProviderConfig carries provider credentials and endpoint overrides.
type ProviderConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// ProviderFactory builds a Provider from its config.
type ProviderFactory interface {
	Provider() string
	New(cfg ProviderConfig) (Provider, error)
}

// Adapter pins an asset (and a derived metadata document) through the
// configured providers.
type Adapter interface {
	Pin(ctx context.Context, asset []byte, mimeType string, meta AssetMetadata) (*Result, error)
}

// AssetFetcher loads an asset's bytes and MIME type from its catalog
// reference.
type AssetFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, string, error)
}

var (
	// ErrValidation rejects payloads locally, before any network call.
	ErrValidation = errors.New("pin_validation")
	// ErrPinningFailed means the mandatory primary provider (or the
	// metadata upload) failed; the caller must not proceed to minting.
	ErrPinningFailed    = errors.New("pinning_failed")
	ErrInvalidConfig    = errors.New("invalid_pin_provider_config")
	ErrProviderNotFound = errors.New("pin_provider_not_found")
)
