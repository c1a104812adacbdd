package pinning

import (
	"fmt"
	"time"

	"go.uber.org/fx"

	"github.com/zedanazad43/stampcoin-platform/internal/config"
	"github.com/zedanazad43/stampcoin-platform/internal/pinning/adapters"
	"github.com/zedanazad43/stampcoin-platform/internal/pinning/adapters/filebase"
	"github.com/zedanazad43/stampcoin-platform/internal/pinning/adapters/pinata"
	"github.com/zedanazad43/stampcoin-platform/internal/pinning/domain"
	"github.com/zedanazad43/stampcoin-platform/internal/pinning/service"
)

var Module = fx.Module("pinning",
	fx.Provide(
		provideRegistry,
		fx.Annotate(providePrimary, fx.ResultTags(`name:"pin_primary"`)),
		fx.Annotate(provideSecondary, fx.ResultTags(`name:"pin_secondary"`)),
		service.NewFetcher,
		service.New,
	),
)

func provideRegistry() *adapters.Registry {
	return adapters.NewRegistry(
		&pinata.Factory{},
		&filebase.Factory{},
	)
}

func providePrimary(cfg config.Config, economy *config.EconomyHolder, registry *adapters.Registry) (domain.Provider, error) {
	provider, err := registry.New(cfg.PinPrimaryProvider, domain.ProviderConfig{
		BaseURL: cfg.PinPrimaryBaseURL,
		Token:   cfg.PinPrimaryToken,
		Timeout: providerTimeout(economy),
	})
	if err != nil {
		return nil, fmt.Errorf("primary pin provider %q: %w", cfg.PinPrimaryProvider, err)
	}
	return provider, nil
}

// provideSecondary returns nil when no secondary provider is configured;
// the adapter treats a nil secondary as skipped.
func provideSecondary(cfg config.Config, economy *config.EconomyHolder, registry *adapters.Registry) (domain.Provider, error) {
	if cfg.PinSecondaryProvider == "" {
		return nil, nil
	}
	provider, err := registry.New(cfg.PinSecondaryProvider, domain.ProviderConfig{
		BaseURL: cfg.PinSecondaryBaseURL,
		Token:   cfg.PinSecondaryToken,
		Timeout: providerTimeout(economy),
	})
	if err != nil {
		return nil, fmt.Errorf("secondary pin provider %q: %w", cfg.PinSecondaryProvider, err)
	}
	return provider, nil
}

func providerTimeout(economy *config.EconomyHolder) time.Duration {
	return time.Duration(economy.Current().Pin.ProviderTimeoutSeconds) * time.Second
}
