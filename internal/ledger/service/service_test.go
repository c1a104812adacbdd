package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/zedanazad43/stampcoin-platform/internal/clock"
	"github.com/zedanazad43/stampcoin-platform/internal/ledger/domain"
	"github.com/zedanazad43/stampcoin-platform/pkg/repository"
)

func newTestService(t *testing.T, maxSupply int64) (*Service, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&domain.Distribution{}, &domain.Aggregate{}))
	require.NoError(t, db.Create(&domain.Aggregate{
		ID:        domain.AggregateRowID,
		MaxSupply: maxSupply,
		UpdatedAt: time.Now().UTC(),
	}).Error)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := &Service{
		db:    db,
		log:   zap.NewNop(),
		genID: node,
		clock: clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)),
		store: repository.ProvideStore[domain.Distribution](db),
	}
	return svc, db
}

func credit(t *testing.T, svc *Service, db *gorm.DB, userID snowflake.ID, amount int64) (*domain.Distribution, error) {
	t.Helper()

	var dist *domain.Distribution
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		dist, err = svc.CreditTx(context.Background(), tx, userID, svc.genID.Generate(), amount)
		return err
	})
	return dist, err
}

func TestCreditTx_UpdatesAggregateAndWritesDistribution(t *testing.T) {
	svc, db := newTestService(t, 1_000)
	userID := svc.genID.Generate()

	dist, err := credit(t, svc, db, userID, 400)
	require.NoError(t, err)
	assert.Equal(t, domain.KindMintReward, dist.Kind)
	assert.Equal(t, domain.StatusCompleted, dist.Status)
	assert.Equal(t, int64(400), dist.Amount)

	agg, err := svc.GetAggregate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(400), agg.CirculatingSupply)
	assert.Equal(t, int64(400), agg.TotalSupply)
}

func TestCreditTx_RejectsCreditCrossingCap(t *testing.T) {
	svc, db := newTestService(t, 1_000)
	userID := svc.genID.Generate()

	_, err := credit(t, svc, db, userID, 900)
	require.NoError(t, err)

	_, err = credit(t, svc, db, userID, 101)
	assert.ErrorIs(t, err, domain.ErrSupplyExhausted)

	// The rejected credit left no trace.
	agg, err := svc.GetAggregate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(900), agg.CirculatingSupply)

	var count int64
	require.NoError(t, db.Model(&domain.Distribution{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCreditTx_ExactFitReachesCap(t *testing.T) {
	svc, db := newTestService(t, 1_000)
	userID := svc.genID.Generate()

	_, err := credit(t, svc, db, userID, 1_000)
	require.NoError(t, err)

	agg, err := svc.GetAggregate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, agg.MaxSupply, agg.CirculatingSupply)

	_, err = credit(t, svc, db, userID, 1)
	assert.ErrorIs(t, err, domain.ErrSupplyExhausted)
}

func TestCreditTx_RejectsInvalidAmounts(t *testing.T) {
	svc, db := newTestService(t, 1_000)
	userID := svc.genID.Generate()

	_, err := credit(t, svc, db, userID, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = credit(t, svc, db, userID, -5)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestCreditTx_MissingAggregate(t *testing.T) {
	svc, db := newTestService(t, 1_000)
	require.NoError(t, db.Exec(`DELETE FROM ledger_aggregates`).Error)

	_, err := credit(t, svc, db, svc.genID.Generate(), 10)
	assert.ErrorIs(t, err, domain.ErrAggregateMissing)
}

func TestBurn_MovesCirculatingToBurned(t *testing.T) {
	svc, db := newTestService(t, 1_000)
	userID := svc.genID.Generate()

	_, err := credit(t, svc, db, userID, 500)
	require.NoError(t, err)

	dist, err := svc.Burn(context.Background(), userID, 200, "redemption")
	require.NoError(t, err)
	assert.Equal(t, domain.KindBurn, dist.Kind)

	agg, err := svc.GetAggregate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(300), agg.CirculatingSupply)
	assert.Equal(t, int64(200), agg.BurnedSupply)
	assert.Equal(t, int64(500), agg.TotalSupply)
}

func TestBurn_RejectsOverdraw(t *testing.T) {
	svc, db := newTestService(t, 1_000)
	userID := svc.genID.Generate()

	_, err := credit(t, svc, db, userID, 100)
	require.NoError(t, err)

	_, err = svc.Burn(context.Background(), userID, 101, "")
	assert.ErrorIs(t, err, domain.ErrInsufficientSupply)

	agg, err := svc.GetAggregate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(100), agg.CirculatingSupply)
	assert.Equal(t, int64(0), agg.BurnedSupply)
}

func TestListDistributions_FiltersByUserNewestFirst(t *testing.T) {
	svc, db := newTestService(t, 10_000)
	alice := svc.genID.Generate()
	bob := svc.genID.Generate()

	for i := 0; i < 3; i++ {
		_, err := credit(t, svc, db, alice, int64(10+i))
		require.NoError(t, err)
	}
	_, err := credit(t, svc, db, bob, 99)
	require.NoError(t, err)

	rows, err := svc.ListDistributions(context.Background(), alice, 10)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for _, row := range rows {
		assert.Equal(t, alice, row.UserID)
	}
}
