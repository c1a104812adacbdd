package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"

	ledgerdomain "github.com/zedanazad43/stampcoin-platform/internal/ledger/domain"
	pinningdomain "github.com/zedanazad43/stampcoin-platform/internal/pinning/domain"
	valuationdomain "github.com/zedanazad43/stampcoin-platform/internal/valuation/domain"
)

// Record is the persisted link between a catalog item and its minted token.
// The unique index on catalog_item_id is the at-most-one-mint invariant; the
// one on serial_number guards against allocator regressions.
type Record struct {
	ID              snowflake.ID `gorm:"primaryKey" json:"id"`
	CatalogItemID   snowflake.ID `gorm:"not null;uniqueIndex" json:"catalog_item_id"`
	OwnerID         snowflake.ID `gorm:"not null;index" json:"owner_id"`
	SerialNumber    string       `gorm:"type:text;not null;uniqueIndex" json:"serial_number"`
	TokenIdentifier *string      `gorm:"type:text" json:"token_identifier,omitempty"`
	MetadataURI     string       `gorm:"type:text;not null" json:"metadata_uri"`
	ImageURI        string       `gorm:"type:text;not null" json:"image_uri"`
	FinalValue      float64      `gorm:"not null" json:"final_value"`
	CreatedAt       time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Record) TableName() string { return "mint_records" }

// MintRequest asks for a catalog item to be minted on behalf of an owner.
type MintRequest struct {
	CatalogItemID snowflake.ID
	OwnerID       snowflake.ID
}

// MintResult is the full outcome of a successful mint.
type MintResult struct {
	Record            *Record                    `json:"record"`
	Valuation         valuationdomain.Valuation  `json:"valuation"`
	Distribution      *ledgerdomain.Distribution `json:"distribution"`
	DistributedAmount int64                      `json:"distributed_amount"`
	Pin               pinningdomain.Result       `json:"pin"`
}

var (
	ErrNotFound = errors.New("mint_record_not_found")
	// ErrAlreadyMinted means the catalog item already has a mint record,
	// whether detected up front or by the unique constraint at commit.
	ErrAlreadyMinted     = errors.New("already_minted")
	ErrAlreadyReconciled = errors.New("token_already_reconciled")
	// ErrContention is returned when bounded retries against transient
	// database conflicts are exhausted, or another mint for the same item
	// is in flight.
	ErrContention = errors.New("mint_contention")
)

type Service interface {
	// Mint runs the full pipeline: valuation, asset pinning, serial
	// allocation, then an atomic record insert plus currency credit.
	Mint(ctx context.Context, req MintRequest) (*MintResult, error)

	// ReconcileToken records the on-chain token identifier for a mint
	// record. Idempotent for the same identifier; a different identifier
	// on an already reconciled record is rejected.
	ReconcileToken(ctx context.Context, recordID snowflake.ID, tokenIdentifier string) (*Record, error)

	Get(ctx context.Context, id string) (*Record, error)
	GetByCatalogItem(ctx context.Context, catalogItemID snowflake.ID) (*Record, error)
	ListByOwner(ctx context.Context, ownerID snowflake.ID, limit int) ([]Record, error)
}
