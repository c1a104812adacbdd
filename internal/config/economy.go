package config

import (
	"errors"
	"log"
	"math"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// EconomyConfig holds the tunable economy tables. Multiplier values and the
// reward rate are operator-adjustable; the aggregate supply cap seeded from
// MaxSupply is the hard invariant enforced by the ledger.
type EconomyConfig struct {
	RarityMultipliers    map[string]float64 `mapstructure:"rarityMultipliers"`
	ConditionMultipliers map[string]float64 `mapstructure:"conditionMultipliers"`
	RewardRate           float64            `mapstructure:"rewardRate"`
	MaxSupply            int64              `mapstructure:"maxSupply"`
	DefaultSerialScope   string             `mapstructure:"defaultSerialScope"`
	Pin                  PinLimits          `mapstructure:"pin"`
}

// PinLimits bounds what the pinning adapter accepts and how long it waits
// per provider.
type PinLimits struct {
	MaxAssetBytes          int64    `mapstructure:"maxAssetBytes"`
	AllowedMimeTypes       []string `mapstructure:"allowedMimeTypes"`
	ProviderTimeoutSeconds int      `mapstructure:"providerTimeoutSeconds"`
}

func DefaultEconomyConfig() EconomyConfig {
	return EconomyConfig{
		RarityMultipliers: map[string]float64{
			"common":    1.0,
			"uncommon":  1.5,
			"rare":      3.0,
			"very_rare": 7.0,
			"legendary": 15.0,
		},
		ConditionMultipliers: map[string]float64{
			"mint":      1.2,
			"very_fine": 1.0,
			"fine":      0.8,
			"used":      0.5,
		},
		RewardRate:         100,
		MaxSupply:          1_000_000_000,
		DefaultSerialScope: "WW",
		Pin: PinLimits{
			MaxAssetBytes:          5 << 20,
			AllowedMimeTypes:       []string{"image/jpeg", "image/png", "image/gif", "image/webp"},
			ProviderTimeoutSeconds: 15,
		},
	}
}

// RewardAmount converts a valuation into currency smallest units.
func (c EconomyConfig) RewardAmount(finalValue float64) int64 {
	if finalValue <= 0 {
		return 0
	}
	return int64(math.Round(finalValue * c.RewardRate))
}

// EconomyHolder exposes the current economy config, hot-reloaded when the
// backing file changes.
type EconomyHolder struct {
	current atomic.Value // holds EconomyConfig
}

func (h *EconomyHolder) Current() EconomyConfig {
	return h.current.Load().(EconomyConfig)
}

// NewEconomyHolder reads economy.yml when present, falling back to defaults,
// and watches the file for changes. Invalid reloads are ignored.
func NewEconomyHolder() (*EconomyHolder, error) {
	v := viper.New()

	v.SetConfigName("economy")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/stampcoin")
	v.AddConfigPath(".")

	v.SetEnvPrefix("STAMPCOIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setEconomyDefaults(v)

	fileFound := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		fileFound = false
	}

	var cfg EconomyConfig
	if err := v.UnmarshalKey("economy", &cfg); err != nil {
		return nil, err
	}
	if err := validateEconomyConfig(cfg); err != nil {
		return nil, err
	}

	holder := &EconomyHolder{}
	holder.current.Store(cfg)

	if fileFound {
		v.WatchConfig()
		v.OnConfigChange(func(e fsnotify.Event) {
			var updated EconomyConfig
			if err := v.UnmarshalKey("economy", &updated); err != nil {
				log.Printf("[economy-config] reload failed: %v", err)
				return
			}
			if err := validateEconomyConfig(updated); err != nil {
				log.Printf("[economy-config] invalid config ignored: %v", err)
				return
			}
			holder.current.Store(updated)
		})
	}

	return holder, nil
}

// NewStaticEconomyHolder wraps a fixed config; used by tests.
func NewStaticEconomyHolder(cfg EconomyConfig) *EconomyHolder {
	holder := &EconomyHolder{}
	holder.current.Store(cfg)
	return holder
}

func setEconomyDefaults(v *viper.Viper) {
	defaults := DefaultEconomyConfig()
	v.SetDefault("economy.rarityMultipliers", defaults.RarityMultipliers)
	v.SetDefault("economy.conditionMultipliers", defaults.ConditionMultipliers)
	v.SetDefault("economy.rewardRate", defaults.RewardRate)
	v.SetDefault("economy.maxSupply", defaults.MaxSupply)
	v.SetDefault("economy.defaultSerialScope", defaults.DefaultSerialScope)
	v.SetDefault("economy.pin.maxAssetBytes", defaults.Pin.MaxAssetBytes)
	v.SetDefault("economy.pin.allowedMimeTypes", defaults.Pin.AllowedMimeTypes)
	v.SetDefault("economy.pin.providerTimeoutSeconds", defaults.Pin.ProviderTimeoutSeconds)
}

func validateEconomyConfig(cfg EconomyConfig) error {
	if len(cfg.RarityMultipliers) == 0 {
		return errors.New("economy: rarity multipliers must not be empty")
	}
	if len(cfg.ConditionMultipliers) == 0 {
		return errors.New("economy: condition multipliers must not be empty")
	}
	for tier, m := range cfg.RarityMultipliers {
		if m <= 0 {
			return errors.New("economy: rarity multiplier must be positive: " + tier)
		}
	}
	for grade, m := range cfg.ConditionMultipliers {
		if m <= 0 {
			return errors.New("economy: condition multiplier must be positive: " + grade)
		}
	}
	if cfg.RewardRate <= 0 {
		return errors.New("economy: reward rate must be positive")
	}
	if cfg.MaxSupply <= 0 {
		return errors.New("economy: max supply must be positive")
	}
	if strings.TrimSpace(cfg.DefaultSerialScope) == "" {
		return errors.New("economy: default serial scope must not be empty")
	}
	if cfg.Pin.MaxAssetBytes <= 0 {
		return errors.New("economy: pin max asset bytes must be positive")
	}
	if len(cfg.Pin.AllowedMimeTypes) == 0 {
		return errors.New("economy: pin mime allow-list must not be empty")
	}
	if cfg.Pin.ProviderTimeoutSeconds <= 0 {
		return errors.New("economy: pin provider timeout must be positive")
	}
	return nil
}
