package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/zedanazad43/stampcoin-platform/internal/catalog/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, item *domain.Item) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO catalog_items (id, country, issue_year, denomination, denomination_text, rarity, condition, description, image_url, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID,
		item.Country,
		item.IssueYear,
		item.Denomination,
		item.DenominationText,
		item.Rarity,
		item.Condition,
		item.Description,
		item.ImageURL,
		item.CreatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Item, error) {
	var item domain.Item
	err := db.WithContext(ctx).Raw(
		`SELECT id, country, issue_year, denomination, denomination_text, rarity, condition, description, image_url, created_at
		 FROM catalog_items WHERE id = ?`,
		id,
	).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListRequest) ([]domain.Item, error) {
	stmt := db.WithContext(ctx).Model(&domain.Item{})
	if filter.Country != "" {
		stmt = stmt.Where("country = ?", filter.Country)
	}

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	stmt = stmt.Order("created_at DESC").Limit(limit)
	if filter.Offset > 0 {
		stmt = stmt.Offset(filter.Offset)
	}

	var items []domain.Item
	if err := stmt.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
