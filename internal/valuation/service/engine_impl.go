package service

import (
	"math"

	catalogdomain "github.com/zedanazad43/stampcoin-platform/internal/catalog/domain"
	"github.com/zedanazad43/stampcoin-platform/internal/valuation/domain"
)

// Engine prices catalog items from fixed multiplier tables. It does no I/O
// and holds no mutable state; the tables are snapshotted at construction so
// a config reload never changes an in-flight valuation.
type Engine struct {
	tables         domain.Tables
	rarityFloor    float64
	conditionFloor float64
}

func NewEngine(tables domain.Tables) *Engine {
	return &Engine{
		tables:         tables,
		rarityFloor:    floorOfRarity(tables.Rarity),
		conditionFloor: floorOfCondition(tables.Condition),
	}
}

// Valuate computes base × rarity × condition with a single rounding step at
// the end. Unknown rarity or condition falls back to the lowest multiplier
// in its table.
func (e *Engine) Valuate(item catalogdomain.Item) domain.Valuation {
	base := item.Denomination
	if base < 0 {
		base = 0
	}

	rarity, ok := e.tables.Rarity[item.Rarity]
	if !ok {
		rarity = e.rarityFloor
	}
	condition, ok := e.tables.Condition[item.Condition]
	if !ok {
		condition = e.conditionFloor
	}

	return domain.Valuation{
		BaseValue:           base,
		RarityMultiplier:    rarity,
		ConditionMultiplier: condition,
		FinalValue:          round2(base * rarity * condition),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func floorOfRarity(table map[catalogdomain.RarityTier]float64) float64 {
	floor := math.Inf(1)
	for _, m := range table {
		if m < floor {
			floor = m
		}
	}
	if math.IsInf(floor, 1) {
		return 1
	}
	return floor
}

func floorOfCondition(table map[catalogdomain.ConditionGrade]float64) float64 {
	floor := math.Inf(1)
	for _, m := range table {
		if m < floor {
			floor = m
		}
	}
	if math.IsInf(floor, 1) {
		return 1
	}
	return floor
}

var _ domain.Engine = (*Engine)(nil)
