package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsDuplicateKeyErr(t *testing.T) {
	assert.True(t, IsDuplicateKeyErr(gorm.ErrDuplicatedKey))
	assert.True(t, IsDuplicateKeyErr(errors.New(`ERROR: duplicate key value violates unique constraint "idx_mint_records_catalog_item_id" (SQLSTATE 23505)`)))
	assert.True(t, IsDuplicateKeyErr(errors.New("Error 1062 (23000): Duplicate entry 'FR-000001' for key 'serial_number'")))
	assert.True(t, IsDuplicateKeyErr(errors.New("UNIQUE constraint failed: mint_records.catalog_item_id")))
	assert.True(t, IsDuplicateKeyErr(fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey)))

	assert.False(t, IsDuplicateKeyErr(nil))
	assert.False(t, IsDuplicateKeyErr(errors.New("connection refused")))
}

func TestIsRetryableErr(t *testing.T) {
	assert.True(t, IsRetryableErr(errors.New("database is locked")))
	assert.True(t, IsRetryableErr(errors.New("ERROR: could not serialize access due to concurrent update (SQLSTATE 40001)")))
	assert.True(t, IsRetryableErr(errors.New("Error 1213 (40001): Deadlock found when trying to get lock")))

	assert.False(t, IsRetryableErr(nil))
	assert.False(t, IsRetryableErr(gorm.ErrDuplicatedKey))
	assert.False(t, IsRetryableErr(errors.New("syntax error")))
}
