package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"banhangso-backend/cache"
	"banhangso-backend/middleware"
	"banhangso-backend/models"
	"banhangso-backend/search"
	"banhangso-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TransactionHandler struct {
	DB    *gorm.DB
	Cache *cache.Cache
}

const maxTransactionPageSize = 100

type transactionItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

type transactionRequest struct {
	CustomerID    string                   `json:"customerId"`
	StaffID       string                   `json:"staffId"`
	PaymentMethod string                   `json:"paymentMethod" binding:"required"`
	Note          string                   `json:"note"`
	Items         []transactionItemRequest `json:"items" binding:"required,min=1,dive"`
}

// transactionSummary is the lean row returned by list and search.
type transactionSummary struct {
	ID           uuid.UUID `json:"id"`
	CustomerName string    `json:"customerName"`
	StaffName    string    `json:"staffName"`
	Price        float64   `json:"price"`
	CreatedAt    string    `json:"createdAt"`
}

func toSummary(t models.Transaction) transactionSummary {
	return transactionSummary{
		ID:           t.ID,
		CustomerName: t.CustomerName,
		StaffName:    t.StaffName,
		Price:        t.FinalPrices,
		CreatedAt:    t.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

// Create turns a cart into an immutable transaction. Products, the customer,
// and the acting staff are snapshotted at sale time; stock is decremented
// afterwards in the background with no compensation, which is the accepted
// consistency window for inventory.
func (h *TransactionHandler) Create(c *gin.Context) {
	storeID := middleware.StoreID(c)

	var req transactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Fail(c, http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	if !models.ValidPaymentMethod(req.PaymentMethod) {
		utils.Fail(c, http.StatusBadRequest, gin.H{"message": "Invalid payment method"})
		return
	}

	txn := models.Transaction{
		StoreID:       storeID,
		PaymentMethod: req.PaymentMethod,
		Note:          req.Note,
		CustomerName:  models.DefaultRetailCustomerName,
	}

	if req.CustomerID != "" {
		customerID, err := uuid.Parse(req.CustomerID)
		var customer models.Customer
		if err == nil {
			err = h.DB.Where("id = ? AND store_id = ?", customerID, storeID).First(&customer).Error
		}
		if err != nil {
			utils.Fail(c, http.StatusNotFound, gin.H{"message": "Customer not found"})
			return
		}
		txn.CustomerID = &customer.ID
		txn.CustomerName = customer.Name
		txn.CustomerPhone = customer.Phone
		txn.CustomerEmail = customer.Email
	}

	staffID := req.StaffID
	if staffID == "" {
		staffID = c.GetString("uid")
	}
	var member models.StoreMember
	err := h.DB.Where("user_id = ? AND store_id = ?", staffID, storeID).First(&member).Error
	if err == nil {
		var staff models.User
		if err := h.DB.First(&staff, "id = ?", staffID).Error; err == nil {
			txn.StaffID = &staff.ID
			txn.StaffName = staff.ContactName
			txn.StaffPhone = staff.Phone
			txn.StaffEmail = staff.Email
			txn.StaffRole = member.Role
		}
	} else if req.StaffID != "" {
		utils.Fail(c, http.StatusNotFound, gin.H{"message": "Staff not found"})
		return
	}

	type decrement struct {
		productID uuid.UUID
		quantity  int
	}
	var decrements []decrement

	for _, line := range req.Items {
		productID, err := uuid.Parse(line.ProductID)
		var product models.Product
		if err == nil {
			err = h.DB.Where("id = ? AND store_id = ?", productID, storeID).First(&product).Error
		}
		if err != nil {
			utils.Fail(c, http.StatusNotFound, gin.H{"message": "Product not found: " + line.ProductID})
			return
		}

		item := models.TransactionItem{
			ProductID:     product.ID,
			Name:          product.Name,
			ThumbnailURL:  product.ThumbnailURL,
			SellingPrice:  product.SellingPrice,
			PurchasePrice: product.PurchasePrice,
			DiscountPrice: product.DiscountPrice,
			Quantity:      line.Quantity,
			Barcode:       product.Barcode,
			BrandID:       product.BrandID,
			BrandName:     product.BrandName,
			CategoryID:    product.CategoryID,
			CategoryName:  product.CategoryName,
		}
		txn.Items = append(txn.Items, item)

		qty := float64(line.Quantity)
		txn.TotalItems += line.Quantity
		txn.TotalSellingPrices += product.SellingPrice * qty
		txn.TotalPurchasePrices += product.PurchasePrice * qty
		txn.TotalDiscountPrices += product.DiscountPrice * qty
		unit := product.SellingPrice
		if product.DiscountPrice > 0 {
			unit = product.DiscountPrice
		}
		txn.FinalPrices += unit * qty

		decrements = append(decrements, decrement{productID: product.ID, quantity: line.Quantity})
	}

	if err := h.DB.Create(&txn).Error; err != nil {
		utils.Error(c, http.StatusInternalServerError, "Failed to create transaction")
		return
	}

	// Stock is adjusted after the sale is durable. No retry: a crash here
	// leaves inventory high until corrected manually.
	go func() {
		for _, d := range decrements {
			err := h.DB.Model(&models.Product{}).
				Where("id = ?", d.productID).
				Update("stock_quantity", gorm.Expr(
					"CASE WHEN stock_quantity > ? THEN stock_quantity - ? ELSE 0 END",
					d.quantity, d.quantity)).Error
			if err != nil {
				log.Printf("Stock decrement failed for product %s: %v", d.productID, err)
			}
		}
		if h.Cache != nil {
			h.Cache.Invalidate(context.Background(), "sale:products:"+storeID.String()+":*")
		}
	}()

	utils.Success(c, http.StatusCreated, txn)
}

// List returns transaction summaries, newest first, with optional filters.
func (h *TransactionHandler) List(c *gin.Context) {
	storeID := middleware.StoreID(c)
	page, size := pageParams(c, maxTransactionPageSize)

	q := h.DB.Model(&models.Transaction{}).Where("store_id = ?", storeID)

	if customerID := c.Query("customer_id"); customerID != "" {
		q = q.Where("customer_id = ?", customerID)
	}
	if staffID := c.Query("staff_id"); staffID != "" {
		q = q.Where("staff_id = ?", staffID)
	}
	if method := c.Query("payment_method"); method != "" {
		q = q.Where("payment_method = ?", method)
	}

	loc := utils.ReportLocation()
	if raw := c.Query("start_date"); raw != "" {
		start, _, err := utils.ParseDateRange(raw, loc)
		if err != nil {
			utils.Fail(c, http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		q = q.Where("created_at >= ?", start)
	}
	if raw := c.Query("end_date"); raw != "" {
		_, end, err := utils.ParseDateRange(raw, loc)
		if err != nil {
			utils.Fail(c, http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		q = q.Where("created_at < ?", end)
	}

	if raw := c.Query("min_amount"); raw != "" {
		if min, err := strconv.ParseFloat(raw, 64); err == nil {
			q = q.Where("final_prices >= ?", min)
		}
	}
	if raw := c.Query("max_amount"); raw != "" {
		if max, err := strconv.ParseFloat(raw, 64); err == nil {
			q = q.Where("final_prices <= ?", max)
		}
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		utils.Error(c, http.StatusInternalServerError, "Failed to count transactions")
		return
	}

	var transactions []models.Transaction
	err := q.Order("created_at desc, id").
		Offset((page - 1) * size).Limit(size).
		Find(&transactions).Error
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, "Failed to load transactions")
		return
	}

	items := make([]transactionSummary, len(transactions))
	for i, t := range transactions {
		items[i] = toSummary(t)
	}

	utils.Success(c, http.StatusOK, listPayload(items, int(total), page, size))
}

// Search matches the query as a substring of the transaction id, customer
// name, or staff name.
func (h *TransactionHandler) Search(c *gin.Context) {
	query := search.Normalize(c.Query("q"))
	if query == "" {
		h.List(c)
		return
	}

	storeID := middleware.StoreID(c)
	page, size := pageParams(c, maxTransactionPageSize)

	var transactions []models.Transaction
	err := h.DB.Where("store_id = ?", storeID).
		Order("created_at desc, id").
		Find(&transactions).Error
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, "Failed to load transactions")
		return
	}

	var matched []transactionSummary
	for _, t := range transactions {
		if strings.Contains(strings.ToLower(t.ID.String()), query) ||
			strings.Contains(strings.ToLower(t.CustomerName), query) ||
			strings.Contains(strings.ToLower(t.StaffName), query) {
			matched = append(matched, toSummary(t))
		}
	}

	utils.Success(c, http.StatusOK, listPayload(search.Page(matched, page, size), len(matched), page, size))
}

func (h *TransactionHandler) Get(c *gin.Context) {
	storeID := middleware.StoreID(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.Fail(c, http.StatusNotFound, gin.H{"message": "Transaction not found"})
		return
	}

	var txn models.Transaction
	err = h.DB.Preload("Items").Where("id = ? AND store_id = ?", id, storeID).First(&txn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Fail(c, http.StatusNotFound, gin.H{"message": "Transaction not found"})
		} else {
			utils.Error(c, http.StatusInternalServerError, "Failed to load transaction")
		}
		return
	}

	utils.Success(c, http.StatusOK, txn)
}
