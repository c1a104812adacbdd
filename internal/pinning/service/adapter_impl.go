package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/zedanazad43/stampcoin-platform/internal/config"
	"github.com/zedanazad43/stampcoin-platform/internal/observability/metrics"
	"github.com/zedanazad43/stampcoin-platform/internal/pinning/domain"
)

type Params struct {
	fx.In

	Log       *zap.Logger
	Economy   *config.EconomyHolder
	Metrics   *metrics.Metrics `optional:"true"`
	Primary   domain.Provider  `name:"pin_primary"`
	Secondary domain.Provider  `name:"pin_secondary" optional:"true"`
}

type adapter struct {
	log       *zap.Logger
	economy   *config.EconomyHolder
	metrics   *metrics.Metrics
	primary   domain.Provider
	secondary domain.Provider
}

func New(p Params) domain.Adapter {
	return &adapter{
		log:       p.Log.Named("pinning"),
		economy:   p.Economy,
		metrics:   p.Metrics,
		primary:   p.Primary,
		secondary: p.Secondary,
	}
}

// metadataDoc is the JSON document pinned alongside the asset. Its image
// field always references the primary provider's copy.
type metadataDoc struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Image       string            `json:"image"`
	Attributes  map[string]string `json:"attributes,omitempty"`
}

func (a *adapter) Pin(ctx context.Context, asset []byte, mimeType string, meta domain.AssetMetadata) (*domain.Result, error) {
	limits := a.economy.Current().Pin
	if err := validatePayload(asset, mimeType, limits); err != nil {
		return nil, err
	}

	name := domain.SanitizeAssetName(meta.Name)
	timeout := time.Duration(limits.ProviderTimeoutSeconds) * time.Second

	result := &domain.Result{
		Primary:   domain.ProviderOutcome{Status: domain.StatusSkipped},
		Secondary: domain.ProviderOutcome{Status: domain.StatusSkipped},
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		result.Primary = a.pinOne(ctx, a.primary, name, asset, mimeType, timeout)
	}()
	if a.secondary != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result.Secondary = a.pinOne(ctx, a.secondary, name, asset, mimeType, timeout)
		}()
	}
	wg.Wait()

	if result.Primary.Status != domain.StatusOK {
		return nil, fmt.Errorf("%w: primary provider %s: %s",
			domain.ErrPinningFailed, result.Primary.ProviderID, result.Primary.Err)
	}
	result.ImageURI = result.Primary.URI

	if result.Secondary.Status == domain.StatusFailed {
		a.log.Warn("secondary pin failed",
			zap.String("provider", result.Secondary.ProviderID),
			zap.String("error", result.Secondary.Err),
		)
	}

	doc, err := json.Marshal(metadataDoc{
		Name:        meta.Name,
		Description: meta.Description,
		Image:       result.ImageURI,
		Attributes:  meta.Attributes,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: encode metadata: %v", domain.ErrPinningFailed, err)
	}

	metaOutcome := a.pinOne(ctx, a.primary, name+"-metadata", doc, "application/json", timeout)
	if metaOutcome.Status != domain.StatusOK {
		return nil, fmt.Errorf("%w: metadata upload to %s: %s",
			domain.ErrPinningFailed, metaOutcome.ProviderID, metaOutcome.Err)
	}
	result.MetadataURI = metaOutcome.URI

	return result, nil
}

func (a *adapter) pinOne(ctx context.Context, provider domain.Provider, name string, payload []byte, mimeType string, timeout time.Duration) domain.ProviderOutcome {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	uri, err := provider.Pin(ctx, name, payload, mimeType)
	if err != nil {
		a.metrics.RecordPin(provider.ID(), metrics.OutcomeFailed)
		return domain.ProviderOutcome{
			Status:     domain.StatusFailed,
			ProviderID: provider.ID(),
			Err:        err.Error(),
		}
	}

	a.metrics.RecordPin(provider.ID(), metrics.OutcomeOK)
	return domain.ProviderOutcome{
		Status:     domain.StatusOK,
		ProviderID: provider.ID(),
		URI:        uri,
	}
}

func validatePayload(asset []byte, mimeType string, limits config.PinLimits) error {
	if len(asset) == 0 {
		return fmt.Errorf("%w: empty asset payload", domain.ErrValidation)
	}
	if int64(len(asset)) > limits.MaxAssetBytes {
		return fmt.Errorf("%w: asset exceeds %d bytes", domain.ErrValidation, limits.MaxAssetBytes)
	}

	normalized := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.Index(normalized, ";"); i >= 0 {
		normalized = strings.TrimSpace(normalized[:i])
	}
	for _, allowed := range limits.AllowedMimeTypes {
		if normalized == strings.ToLower(allowed) {
			return nil
		}
	}
	return fmt.Errorf("%w: mime type %q not allowed", domain.ErrValidation, mimeType)
}
