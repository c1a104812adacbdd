package valuation

import (
	catalogdomain "github.com/zedanazad43/stampcoin-platform/internal/catalog/domain"
	"github.com/zedanazad43/stampcoin-platform/internal/config"
	"github.com/zedanazad43/stampcoin-platform/internal/valuation/domain"
	"github.com/zedanazad43/stampcoin-platform/internal/valuation/service"
	"go.uber.org/fx"
)

var Module = fx.Module("valuation.service",
	fx.Provide(provideEngine),
)

func provideEngine(holder *config.EconomyHolder) domain.Engine {
	return service.NewEngine(TablesFromEconomy(holder.Current()))
}

// TablesFromEconomy maps the string-keyed economy config onto the typed
// multiplier tables the engine prices against.
func TablesFromEconomy(cfg config.EconomyConfig) domain.Tables {
	tables := domain.Tables{
		Rarity:    make(map[catalogdomain.RarityTier]float64, len(cfg.RarityMultipliers)),
		Condition: make(map[catalogdomain.ConditionGrade]float64, len(cfg.ConditionMultipliers)),
	}
	for tier, m := range cfg.RarityMultipliers {
		tables.Rarity[catalogdomain.RarityTier(tier)] = m
	}
	for grade, m := range cfg.ConditionMultipliers {
		tables.Condition[catalogdomain.ConditionGrade(grade)] = m
	}
	return tables
}
