package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Customer struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	StoreID   uuid.UUID  `gorm:"type:uuid;index;not null" json:"storeId"`
	Name      string     `gorm:"not null" json:"name"`
	Phone     string     `json:"phone"`
	Email     string     `json:"email"`
	Address   string     `json:"address"`
	DOB       *time.Time `json:"dob,omitempty"`
	ImageURL  string     `json:"imageUrl"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
