package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Membership roles within a store.
const (
	RoleOwner = "owner"
	RoleStaff = "staffs"
)

// User mirrors an identity-provider account. The primary key is the
// provider's opaque uid, not a locally generated uuid.
type User struct {
	ID          string        `gorm:"primaryKey" json:"id"`
	Email       string        `gorm:"uniqueIndex;not null" json:"email"`
	ContactName string        `json:"contactName"`
	Phone       string        `json:"phone"`
	ImageURL    string        `json:"imageUrl"`
	Active      bool          `gorm:"default:true" json:"active"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
	Memberships []StoreMember `gorm:"foreignKey:UserID" json:"stores,omitempty"`
}

// StoreMember links a user to a store with a role. Serialized as the
// {id, role} entries of a user's stores list.
type StoreMember struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"-"`
	UserID    string    `gorm:"uniqueIndex:idx_member_user_store;not null" json:"-"`
	StoreID   uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_member_user_store;not null" json:"id"`
	Role      string    `gorm:"not null" json:"role"`
	CreatedAt time.Time `json:"-"`
}

func (m *StoreMember) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
