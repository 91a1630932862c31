package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Payment methods accepted at the point of sale.
const (
	PaymentCash          = "CASH"
	PaymentCreditCard    = "CREDIT_CARD"
	PaymentMobileBanking = "MOBILE_BANKING"
	PaymentDigitalWallet = "DIGITAL_WALLET"
)

// DefaultRetailCustomerName is used when a sale has no registered customer.
const DefaultRetailCustomerName = "Khách lẻ"

// ValidPaymentMethod reports whether m is one of the accepted methods.
func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentCash, PaymentCreditCard, PaymentMobileBanking, PaymentDigitalWallet:
		return true
	}
	return false
}

// TransactionCustomer is the customer snapshot taken at sale time. A nil ID
// marks the default walk-in retail customer.
type TransactionCustomer struct {
	ID    *uuid.UUID `json:"id"`
	Name  string     `json:"name"`
	Phone string     `json:"phone,omitempty"`
	Email string     `json:"email"`
}

// TransactionStaff is the staff snapshot taken at sale time.
type TransactionStaff struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Transaction is immutable once written; all referenced entities are stored
// as snapshots so later edits never change historical sales.
type Transaction struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	StoreID uuid.UUID `gorm:"type:uuid;index;not null" json:"storeId"`

	CustomerID    *uuid.UUID `gorm:"type:uuid;index" json:"-"`
	CustomerName  string     `json:"-"`
	CustomerPhone string     `json:"-"`
	CustomerEmail string     `json:"-"`

	StaffID    *string `gorm:"index" json:"-"`
	StaffName  string  `json:"-"`
	StaffPhone string  `json:"-"`
	StaffEmail string  `json:"-"`
	StaffRole  string  `json:"-"`

	TotalItems          int     `json:"totalItems"`
	TotalSellingPrices  float64 `json:"totalSellingPrices"`
	TotalPurchasePrices float64 `json:"totalPurchasePrices"`
	TotalDiscountPrices float64 `json:"totalDiscountPrices"`
	FinalPrices         float64 `json:"finalPrices"`
	PaymentMethod       string  `gorm:"not null" json:"paymentMethod"`
	Note                string  `json:"note,omitempty"`

	Items []TransactionItem `gorm:"foreignKey:TransactionID" json:"items"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// Customer returns the customer snapshot, or nil if none was recorded.
func (t *Transaction) Customer() *TransactionCustomer {
	if t.CustomerName == "" {
		return nil
	}
	return &TransactionCustomer{ID: t.CustomerID, Name: t.CustomerName, Phone: t.CustomerPhone, Email: t.CustomerEmail}
}

// Staff returns the staff snapshot, or nil if none was recorded.
func (t *Transaction) Staff() *TransactionStaff {
	if t.StaffID == nil {
		return nil
	}
	return &TransactionStaff{ID: *t.StaffID, Name: t.StaffName, Phone: t.StaffPhone, Email: t.StaffEmail, Role: t.StaffRole}
}

func (t Transaction) MarshalJSON() ([]byte, error) {
	type transactionAlias Transaction
	return json.Marshal(struct {
		transactionAlias
		Customer *TransactionCustomer `json:"customer"`
		Staff    *TransactionStaff    `json:"staff"`
	}{
		transactionAlias: transactionAlias(t),
		Customer:         t.Customer(),
		Staff:            t.Staff(),
	})
}

// TransactionItem is a line-item product snapshot.
type TransactionItem struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key" json:"-"`
	TransactionID uuid.UUID `gorm:"type:uuid;index;not null" json:"-"`
	ProductID     uuid.UUID `gorm:"type:uuid;not null" json:"id"`
	Name          string    `json:"name"`
	ThumbnailURL  string    `json:"thumbnailUrl,omitempty"`
	SellingPrice  float64   `json:"sellingPrice"`
	PurchasePrice float64   `json:"purchasePrice"`
	DiscountPrice float64   `json:"discountPrice"`
	Quantity      int       `json:"quantity"`
	Barcode       string    `json:"barcode,omitempty"`

	BrandID      *uuid.UUID `gorm:"type:uuid" json:"-"`
	BrandName    string     `json:"-"`
	CategoryID   *uuid.UUID `gorm:"type:uuid" json:"-"`
	CategoryName string     `json:"-"`
}

func (i *TransactionItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (i TransactionItem) MarshalJSON() ([]byte, error) {
	type itemAlias TransactionItem
	aux := struct {
		itemAlias
		Brand    *BrandRef    `json:"brand"`
		Category *CategoryRef `json:"category"`
	}{itemAlias: itemAlias(i)}
	if i.BrandID != nil {
		aux.Brand = &BrandRef{ID: *i.BrandID, Name: i.BrandName}
	}
	if i.CategoryID != nil {
		aux.Category = &CategoryRef{ID: *i.CategoryID, Name: i.CategoryName}
	}
	return json.Marshal(aux)
}
