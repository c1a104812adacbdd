package service

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/zedanazad43/stampcoin-platform/internal/config"
	"github.com/zedanazad43/stampcoin-platform/internal/pinning/domain"
)

// Fetcher loads catalog image bytes over HTTP so they can be pinned. The
// configured payload cap is enforced while reading, not after.
type Fetcher struct {
	economy *config.EconomyHolder
	client  *http.Client
}

func NewFetcher(economy *config.EconomyHolder) domain.AssetFetcher {
	return &Fetcher{
		economy: economy,
		client:  &http.Client{Timeout: 20 * time.Second},
	}
}

func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, "", fmt.Errorf("%w: catalog item has no image reference", domain.ErrValidation)
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return nil, "", fmt.Errorf("%w: unsupported image reference %q", domain.ErrValidation, url)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch asset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("fetch asset: status %d", resp.StatusCode)
	}

	maxBytes := f.economy.Current().Pin.MaxAssetBytes
	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("fetch asset: %w", err)
	}
	if int64(len(payload)) > maxBytes {
		return nil, "", fmt.Errorf("%w: asset exceeds %d bytes", domain.ErrValidation, maxBytes)
	}

	mimeType := resp.Header.Get("Content-Type")
	if parsed, _, err := mime.ParseMediaType(mimeType); err == nil {
		mimeType = parsed
	}

	return payload, strings.ToLower(strings.TrimSpace(mimeType)), nil
}
