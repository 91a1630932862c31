package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BrandRef is the denormalized brand snapshot embedded in products and
// transaction items.
type BrandRef struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	ThumbnailURL string    `json:"thumbnailUrl,omitempty"`
}

// CategoryRef is the denormalized category snapshot.
type CategoryRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// Product keeps flat snapshot columns of its brand and category so that
// snapshot cascades stay a single UPDATE, and renders them as nested
// objects on the wire.
type Product struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	StoreID       uuid.UUID `gorm:"type:uuid;index;not null" json:"storeId"`
	Name          string    `gorm:"not null" json:"name"`
	Description   string    `json:"description"`
	Barcode       string    `json:"barcode"`
	Note          string    `json:"note"`
	PurchasePrice float64   `json:"purchasePrice"`
	SellingPrice  float64   `gorm:"not null" json:"sellingPrice"`
	DiscountPrice float64   `json:"discountPrice"`
	StockQuantity int       `gorm:"default:0" json:"stockQuantity"`
	Status        bool      `gorm:"default:true" json:"status"`
	AvatarURL     string    `json:"avatarUrl"`
	ThumbnailURL  string    `json:"thumbnailUrl"`

	BrandID           *uuid.UUID `gorm:"type:uuid;index" json:"-"`
	BrandName         string     `json:"-"`
	BrandThumbnailURL string     `json:"-"`
	CategoryID        *uuid.UUID `gorm:"type:uuid;index" json:"-"`
	CategoryName      string     `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Brand returns the embedded brand snapshot, or nil if the product has none.
func (p *Product) Brand() *BrandRef {
	if p.BrandID == nil {
		return nil
	}
	return &BrandRef{ID: *p.BrandID, Name: p.BrandName, ThumbnailURL: p.BrandThumbnailURL}
}

// Category returns the embedded category snapshot, or nil.
func (p *Product) Category() *CategoryRef {
	if p.CategoryID == nil {
		return nil
	}
	return &CategoryRef{ID: *p.CategoryID, Name: p.CategoryName}
}

func (p Product) MarshalJSON() ([]byte, error) {
	type productAlias Product
	return json.Marshal(struct {
		productAlias
		Brand    *BrandRef    `json:"brand"`
		Category *CategoryRef `json:"category"`
	}{
		productAlias: productAlias(p),
		Brand:        p.Brand(),
		Category:     p.Category(),
	})
}
