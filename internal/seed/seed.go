package seed

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	ledgerdomain "github.com/zedanazad43/stampcoin-platform/internal/ledger/domain"
)

// EnsureLedgerAggregate creates the singleton supply row when absent. The
// insert is idempotent; an existing row, including its max_supply, is never
// rewritten here because the cap must not move underneath live credits.
func EnsureLedgerAggregate(db *gorm.DB, maxSupply int64) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}
	if maxSupply <= 0 {
		return errors.New("seed max supply must be positive")
	}

	ctx := context.Background()
	return db.WithContext(ctx).Exec(
		`INSERT INTO ledger_aggregates (id, total_supply, circulating_supply, burned_supply, max_supply, updated_at)
		 VALUES (?, 0, 0, 0, ?, ?)
		 ON CONFLICT (id) DO NOTHING`,
		ledgerdomain.AggregateRowID,
		maxSupply,
		time.Now().UTC(),
	).Error
}
