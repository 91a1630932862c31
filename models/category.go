package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Category struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	StoreID   uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_category_store_name;not null" json:"storeId"`
	Name      string    `gorm:"uniqueIndex:idx_category_store_name;not null" json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	ProductCount int64 `gorm:"-" json:"productCount"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
