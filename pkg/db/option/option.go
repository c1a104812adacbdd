package option

import (
	"strings"

	"gorm.io/gorm"
)

// QueryOption mutates a gorm statement before execution.
type QueryOption interface {
	Apply(db *gorm.DB) *gorm.DB
}

type optionFunc func(db *gorm.DB) *gorm.DB

func (f optionFunc) Apply(db *gorm.DB) *gorm.DB { return f(db) }

func WithLimit(limit int) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		if limit <= 0 {
			return db
		}
		return db.Limit(limit)
	})
}

func WithOffset(offset int) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		if offset <= 0 {
			return db
		}
		return db.Offset(offset)
	})
}

// WithSortBy orders by the given column when it is in the allow-list,
// defaulting to descending created_at.
func WithSortBy(column, direction string, allowed map[string]bool) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		column = strings.TrimSpace(column)
		if column == "" || !allowed[column] {
			column = "created_at"
		}
		if !strings.EqualFold(direction, "asc") {
			direction = "desc"
		}
		return db.Order(column + " " + direction)
	})
}
