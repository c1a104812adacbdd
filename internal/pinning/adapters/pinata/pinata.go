package pinata

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/zedanazad43/stampcoin-platform/internal/pinning/domain"
)

const defaultBaseURL = "https://api.pinata.cloud"

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Provider() string {
	return "pinata"
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

// Provider pins payloads through Pinata's pinFileToIPFS endpoint.
type Provider struct {
	token   string
	baseURL string
	client  *http.Client
}

func (p *Provider) ID() string { return "pinata" }

type pinResponse struct {
	IpfsHash  string `json:"IpfsHash"`
	PinSize   int64  `json:"PinSize"`
	Timestamp string `json:"Timestamp"`
}

type errorResponse struct {
	Error struct {
		Reason  string `json:"reason"`
		Details string `json:"details"`
	} `json:"error"`
}

func (p *Provider) Pin(ctx context.Context, name string, payload []byte, mimeType string) (string, error) {
	// One retry on transport errors and 5xx; 4xx responses are final.
	uri, err := p.pinOnce(ctx, name, payload, mimeType)
	if err == nil {
		return uri, nil
	}
	if !retryable(err) {
		return "", err
	}
	return p.pinOnce(ctx, name, payload, mimeType)
}

func (p *Provider) pinOnce(ctx context.Context, name string, payload []byte, mimeType string) (string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, name))
	header.Set("Content-Type", mimeType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(payload); err != nil {
		return "", err
	}

	metaJSON, err := json.Marshal(map[string]string{"name": name})
	if err != nil {
		return "", err
	}
	if err := writer.WriteField("pinataMetadata", string(metaJSON)); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/pinning/pinFileToIPFS", body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+p.token)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := p.client.Do(req)
	if err != nil {
		return "", &transportError{err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var pinErr errorResponse
		_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&pinErr)
		reason := strings.TrimSpace(pinErr.Error.Reason)
		if reason == "" {
			reason = resp.Status
		}
		return "", &statusError{status: resp.StatusCode, reason: reason}
	}

	var pinned pinResponse
	if err := json.NewDecoder(resp.Body).Decode(&pinned); err != nil {
		return "", err
	}
	if strings.TrimSpace(pinned.IpfsHash) == "" {
		return "", fmt.Errorf("pinata: empty content hash in response")
	}

	return "ipfs://" + pinned.IpfsHash, nil
}

type transportError struct {
	err error
}

func (e *transportError) Error() string { return "pinata: " + e.err.Error() }
func (e *transportError) Unwrap() error { return e.err }

type statusError struct {
	status int
	reason string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("pinata: status %d: %s", e.status, e.reason)
}

func retryable(err error) bool {
	var tErr *transportError
	if errors.As(err, &tErr) {
		return true
	}
	var sErr *statusError
	if errors.As(err, &sErr) {
		return sErr.status >= http.StatusInternalServerError
	}
	return false
}
