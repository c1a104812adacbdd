package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

// RarityTier classifies how scarce a stamp is. Unknown tiers are priced at
// the lowest multiplier rather than rejected.
type RarityTier string

const (
	RarityCommon    RarityTier = "common"
	RarityUncommon  RarityTier = "uncommon"
	RarityRare      RarityTier = "rare"
	RarityVeryRare  RarityTier = "very_rare"
	RarityLegendary RarityTier = "legendary"
)

// ConditionGrade describes the physical state of a stamp.
type ConditionGrade string

const (
	ConditionMint     ConditionGrade = "mint"
	ConditionVeryFine ConditionGrade = "very_fine"
	ConditionFine     ConditionGrade = "fine"
	ConditionUsed     ConditionGrade = "used"
)

// Item is a catalogued physical-stamp record. Immutable after creation,
// never deleted, only referenced by mint records.
type Item struct {
	ID               snowflake.ID   `gorm:"primaryKey" json:"id"`
	Country          string         `gorm:"type:text;not null;index" json:"country"`
	IssueYear        int            `gorm:"not null" json:"issue_year"`
	Denomination     float64        `gorm:"not null" json:"denomination"`
	DenominationText string         `gorm:"type:text" json:"denomination_text"`
	Rarity           RarityTier     `gorm:"type:text;not null" json:"rarity"`
	Condition        ConditionGrade `gorm:"type:text;not null" json:"condition"`
	Description      string         `gorm:"type:text" json:"description"`
	ImageURL         string         `gorm:"type:text" json:"image_url"`
	CreatedAt        time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Item) TableName() string { return "catalog_items" }

var (
	ErrNotFound    = errors.New("catalog_item_not_found")
	ErrInvalidItem = errors.New("invalid_catalog_item")
)
