package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// DistributionKind classifies a ledger movement.
type DistributionKind string

const (
	KindMintReward DistributionKind = "mint_reward"
	KindAdjustment DistributionKind = "adjustment"
	KindBurn       DistributionKind = "burn"
)

// DistributionStatus tracks a movement's lifecycle. Completed rows are
// immutable.
type DistributionStatus string

const (
	StatusPending   DistributionStatus = "pending"
	StatusCompleted DistributionStatus = "completed"
	StatusFailed    DistributionStatus = "failed"
)

// Distribution is an append-only ledger row. Amounts are in the currency's
// smallest unit.
type Distribution struct {
	ID           snowflake.ID       `gorm:"primaryKey" json:"id"`
	UserID       snowflake.ID       `gorm:"not null;index" json:"user_id"`
	MintRecordID *snowflake.ID      `gorm:"index" json:"mint_record_id,omitempty"`
	Amount       int64              `gorm:"not null" json:"amount"`
	Kind         DistributionKind   `gorm:"type:text;not null" json:"kind"`
	Status       DistributionStatus `gorm:"type:text;not null" json:"status"`
	Reason       string             `gorm:"type:text" json:"reason,omitempty"`
	CreatedAt    time.Time          `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Distribution) TableName() string { return "currency_distributions" }

// AggregateRowID is the primary key of the singleton supply row.
const AggregateRowID = 1

// Aggregate is the singleton supply record. circulating_supply never
// exceeds max_supply; both invariants are enforced by guarded updates, not
// application reads.
type Aggregate struct {
	ID                int64     `gorm:"primaryKey" json:"-"`
	TotalSupply       int64     `gorm:"not null" json:"total_supply"`
	CirculatingSupply int64     `gorm:"not null" json:"circulating_supply"`
	BurnedSupply      int64     `gorm:"not null" json:"burned_supply"`
	MaxSupply         int64     `gorm:"not null" json:"max_supply"`
	UpdatedAt         time.Time `gorm:"not null" json:"updated_at"`
}

// TableName sets the database table name.
func (Aggregate) TableName() string { return "ledger_aggregates" }

var (
	// ErrSupplyExhausted rejects a credit that would push circulating
	// supply above the cap. The credit is rejected outright, never clamped.
	ErrSupplyExhausted    = errors.New("supply_exhausted")
	ErrInsufficientSupply = errors.New("insufficient_supply")
	ErrInvalidAmount      = errors.New("invalid_amount")
	ErrAggregateMissing   = errors.New("ledger_aggregate_missing")
)

type Service interface {
	// CreditTx inserts a completed mint-reward distribution and credits the
	// aggregate inside the caller's transaction. The whole transaction must
	// be rolled back when it fails.
	CreditTx(ctx context.Context, tx *gorm.DB, userID snowflake.ID, mintRecordID snowflake.ID, amount int64) (*Distribution, error)

	// Burn moves circulating supply to burned supply in its own transaction.
	Burn(ctx context.Context, userID snowflake.ID, amount int64, reason string) (*Distribution, error)

	GetAggregate(ctx context.Context) (*Aggregate, error)
	ListDistributions(ctx context.Context, userID snowflake.ID, limit int) ([]Distribution, error)
}
