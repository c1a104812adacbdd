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

	"github.com/zedanazad43/stampcoin-platform/internal/catalog/domain"
	"github.com/zedanazad43/stampcoin-platform/internal/catalog/repository"
	"github.com/zedanazad43/stampcoin-platform/internal/clock"
)

func newTestCatalog(t *testing.T) *Service {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&domain.Item{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return &Service{
		db:    db,
		log:   zap.NewNop(),
		genID: node,
		clock: clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)),
		repo:  repository.Provide(),
	}
}

func validImport() domain.ImportRequest {
	return domain.ImportRequest{
		Country:          "fr",
		IssueYear:        1930,
		Denomination:     0.5,
		DenominationText: "50c",
		Rarity:           "Rare",
		Condition:        "Mint",
		Description:      "classic issue",
		ImageURL:         "https://example.com/stamp.png",
	}
}

func TestImport_NormalizesFields(t *testing.T) {
	svc := newTestCatalog(t)

	item, err := svc.Import(context.Background(), validImport())
	require.NoError(t, err)

	assert.Equal(t, "FR", item.Country)
	assert.Equal(t, domain.RarityRare, item.Rarity)
	assert.Equal(t, domain.ConditionMint, item.Condition)
	assert.NotZero(t, item.ID)
}

func TestImport_Validation(t *testing.T) {
	svc := newTestCatalog(t)

	cases := []struct {
		name   string
		mutate func(*domain.ImportRequest)
	}{
		{"missing country", func(r *domain.ImportRequest) { r.Country = "  " }},
		{"zero denomination", func(r *domain.ImportRequest) { r.Denomination = 0 }},
		{"negative denomination", func(r *domain.ImportRequest) { r.Denomination = -1 }},
		{"missing issue year", func(r *domain.ImportRequest) { r.IssueYear = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validImport()
			tc.mutate(&req)
			_, err := svc.Import(context.Background(), req)
			assert.ErrorIs(t, err, domain.ErrInvalidItem)
		})
	}
}

func TestGet(t *testing.T) {
	svc := newTestCatalog(t)

	item, err := svc.Import(context.Background(), validImport())
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), item.ID.String())
	require.NoError(t, err)
	assert.Equal(t, item.ID, got.ID)

	_, err = svc.Get(context.Background(), "999999999999999999")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Get(context.Background(), "garbage")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestList_FiltersByCountry(t *testing.T) {
	svc := newTestCatalog(t)

	_, err := svc.Import(context.Background(), validImport())
	require.NoError(t, err)

	other := validImport()
	other.Country = "de"
	_, err = svc.Import(context.Background(), other)
	require.NoError(t, err)

	items, err := svc.List(context.Background(), domain.ListRequest{Country: "fr"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "FR", items[0].Country)

	items, err = svc.List(context.Background(), domain.ListRequest{})
	require.NoError(t, err)
	assert.Len(t, items, 2)
}
