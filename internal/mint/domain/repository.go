package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, record *Record) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Record, error)
	FindByCatalogItem(ctx context.Context, db *gorm.DB, catalogItemID snowflake.ID) (*Record, error)
	ListByOwner(ctx context.Context, db *gorm.DB, ownerID snowflake.ID, limit int) ([]Record, error)
	SetTokenIdentifier(ctx context.Context, db *gorm.DB, id snowflake.ID, tokenIdentifier string) (int64, error)
}
