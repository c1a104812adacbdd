package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListRequest struct {
	Country string
	Limit   int
	Offset  int
}

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, item *Item) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Item, error)
	List(ctx context.Context, db *gorm.DB, filter ListRequest) ([]Item, error)
}
