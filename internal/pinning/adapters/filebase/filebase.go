package filebase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/zedanazad43/stampcoin-platform/internal/pinning/domain"
)

const defaultBaseURL = "https://rpc.filebase.io"

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Provider() string {
	return "filebase"
}

func (f *Factory) New(cfg domain.ProviderConfig) (domain.Provider, error) {
	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, domain.ErrInvalidConfig
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Provider{
		token:   token,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

// Provider pins payloads through Filebase's IPFS RPC add endpoint.
type Provider struct {
	token   string
	baseURL string
	client  *http.Client
}

func (p *Provider) ID() string { return "filebase" }

type addResponse struct {
	Name string `json:"Name"`
	Hash string `json:"Hash"`
	Size string `json:"Size"`
}

func (p *Provider) Pin(ctx context.Context, name string, payload []byte, mimeType string) (string, error) {
	uri, retry, err := p.pinOnce(ctx, name, payload, mimeType)
	if err == nil {
		return uri, nil
	}
	if !retry {
		return "", err
	}
	uri, _, err = p.pinOnce(ctx, name, payload, mimeType)
	return uri, err
}

func (p *Provider) pinOnce(ctx context.Context, name string, payload []byte, mimeType string) (string, bool, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, name))
	header.Set("Content-Type", mimeType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return "", false, err
	}
	if _, err := part.Write(payload); err != nil {
		return "", false, err
	}
	if err := writer.Close(); err != nil {
		return "", false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/v0/add?cid-version=1", body)
	if err != nil {
		return "", false, err
	}
	req.Header.Set("Authorization", "Bearer "+p.token)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := p.client.Do(req)
	if err != nil {
		return "", true, fmt.Errorf("filebase: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		err := fmt.Errorf("filebase: status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
		return "", resp.StatusCode >= http.StatusInternalServerError, err
	}

	var added addResponse
	if err := json.NewDecoder(resp.Body).Decode(&added); err != nil {
		return "", false, err
	}
	if strings.TrimSpace(added.Hash) == "" {
		return "", false, fmt.Errorf("filebase: empty content hash in response")
	}

	return "ipfs://" + added.Hash, false, nil
}
