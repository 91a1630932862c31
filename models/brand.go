package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Brand names are unique per store; the composite index is the actual
// guarantee, the handler pre-check only produces a friendlier message.
type Brand struct {
	ID           uuid.UUID   `gorm:"type:uuid;primary_key" json:"id"`
	StoreID      uuid.UUID   `gorm:"type:uuid;uniqueIndex:idx_brand_store_name;not null" json:"storeId"`
	Name         string      `gorm:"uniqueIndex:idx_brand_store_name;not null" json:"name"`
	ImageURLs    StringSlice `gorm:"type:text" json:"imageUrls"`
	ThumbnailURL string      `json:"thumbnailUrl"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`

	// Computed per response, never persisted.
	ProductCount int64 `gorm:"-" json:"productCount"`
}

func (b *Brand) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
