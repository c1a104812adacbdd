package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/zedanazad43/stampcoin-platform/internal/config"
	"github.com/zedanazad43/stampcoin-platform/internal/serial/domain"
)

func newTestAllocator(t *testing.T) *Allocator {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&domain.Counter{}))

	return &Allocator{
		db:      db,
		log:     zap.NewNop(),
		economy: config.NewStaticEconomyHolder(config.DefaultEconomyConfig()),
	}
}

func TestAllocate_Format(t *testing.T) {
	allocator := newTestAllocator(t)
	ctx := context.Background()

	serial, err := allocator.Allocate(ctx, "FR")
	require.NoError(t, err)
	assert.Equal(t, "FR-000001", serial)

	serial, err = allocator.Allocate(ctx, "FR")
	require.NoError(t, err)
	assert.Equal(t, "FR-000002", serial)
}

func TestAllocate_ScopesAreIndependent(t *testing.T) {
	allocator := newTestAllocator(t)
	ctx := context.Background()

	first, err := allocator.Allocate(ctx, "FR")
	require.NoError(t, err)
	second, err := allocator.Allocate(ctx, "DE")
	require.NoError(t, err)

	assert.Equal(t, "FR-000001", first)
	assert.Equal(t, "DE-000001", second)
}

func TestAllocate_NormalizesScope(t *testing.T) {
	allocator := newTestAllocator(t)
	ctx := context.Background()

	serial, err := allocator.Allocate(ctx, "  fr ance! ")
	require.NoError(t, err)
	assert.Equal(t, "FRANCE-000001", serial)

	// Empty and non-alphanumeric scopes fall back to the default.
	serial, err = allocator.Allocate(ctx, "***")
	require.NoError(t, err)
	assert.Equal(t, "WW-000001", serial)
}

func TestAllocate_TruncatesLongScope(t *testing.T) {
	allocator := newTestAllocator(t)

	serial, err := allocator.Allocate(context.Background(), "ABCDEFGHIJKLMNOP")
	require.NoError(t, err)
	assert.Equal(t, "ABCDEFGHIJKL-000001", serial)
}

func TestAllocate_ConcurrentCallersGetDistinctSerials(t *testing.T) {
	allocator := newTestAllocator(t)
	ctx := context.Background()

	const workers = 50
	const perWorker = 20

	var (
		mu      sync.Mutex
		serials = make(map[string]struct{}, workers*perWorker)
		wg      sync.WaitGroup
	)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				serial, err := allocator.Allocate(ctx, "US")
				assert.NoError(t, err)

				mu.Lock()
				_, dup := serials[serial]
				serials[serial] = struct{}{}
				mu.Unlock()
				assert.False(t, dup, "serial %s issued twice", serial)
			}
		}()
	}
	wg.Wait()

	require.Len(t, serials, workers*perWorker)

	// Sequences are dense: every value from 1 to N was issued exactly once.
	for seq := 1; seq <= workers*perWorker; seq++ {
		_, ok := serials[fmt.Sprintf("US-%06d", seq)]
		assert.True(t, ok, "missing sequence %d", seq)
	}
}
