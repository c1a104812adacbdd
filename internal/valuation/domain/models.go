package domain

import (
	catalogdomain "github.com/zedanazad43/stampcoin-platform/internal/catalog/domain"
)

// Valuation is derived from catalog attributes on demand and never persisted.
// Identical inputs must produce identical valuations.
type Valuation struct {
	BaseValue           float64 `json:"base_value"`
	RarityMultiplier    float64 `json:"rarity_multiplier"`
	ConditionMultiplier float64 `json:"condition_multiplier"`
	FinalValue          float64 `json:"final_value"`
}

// Tables holds the multiplier tables the engine prices against.
type Tables struct {
	Rarity    map[catalogdomain.RarityTier]float64
	Condition map[catalogdomain.ConditionGrade]float64
}

type Engine interface {
	Valuate(item catalogdomain.Item) Valuation
}
