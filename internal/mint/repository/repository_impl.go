package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/zedanazad43/stampcoin-platform/internal/mint/domain"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, record *domain.Record) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO mint_records (id, catalog_item_id, owner_id, serial_number, token_identifier, metadata_uri, image_uri, final_value, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.CatalogItemID,
		record.OwnerID,
		record.SerialNumber,
		record.TokenIdentifier,
		record.MetadataURI,
		record.ImageURI,
		record.FinalValue,
		record.CreatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Record, error) {
	return r.findOne(ctx, db, "id = ?", id)
}

func (r *repo) FindByCatalogItem(ctx context.Context, db *gorm.DB, catalogItemID snowflake.ID) (*domain.Record, error) {
	return r.findOne(ctx, db, "catalog_item_id = ?", catalogItemID)
}

func (r *repo) findOne(ctx context.Context, db *gorm.DB, cond string, arg any) (*domain.Record, error) {
	var record domain.Record
	err := db.WithContext(ctx).Raw(
		`SELECT id, catalog_item_id, owner_id, serial_number, token_identifier, metadata_uri, image_uri, final_value, created_at
		 FROM mint_records WHERE `+cond,
		arg,
	).Scan(&record).Error
	if err != nil {
		return nil, err
	}
	if record.ID == 0 {
		return nil, nil
	}
	return &record, nil
}

func (r *repo) ListByOwner(ctx context.Context, db *gorm.DB, ownerID snowflake.ID, limit int) ([]domain.Record, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var records []domain.Record
	err := db.WithContext(ctx).
		Model(&domain.Record{}).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// SetTokenIdentifier writes the token identifier only when none is set yet.
// Returns the number of rows updated so the caller can distinguish an
// already reconciled record from a fresh write.
func (r *repo) SetTokenIdentifier(ctx context.Context, db *gorm.DB, id snowflake.ID, tokenIdentifier string) (int64, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE mint_records SET token_identifier = ? WHERE id = ? AND token_identifier IS NULL`,
		tokenIdentifier,
		id,
	)
	return result.RowsAffected, result.Error
}
