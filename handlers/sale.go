package handlers

import (
	"fmt"
	"net/http"
	"time"

	"banhangso-backend/cache"
	"banhangso-backend/middleware"
	"banhangso-backend/models"
	"banhangso-backend/search"
	"banhangso-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SaleHandler serves the point-of-sale product views: a lean projection of
// active products, cached read-through since the sales screen polls it
// constantly.
type SaleHandler struct {
	DB    *gorm.DB
	Cache *cache.Cache
}

const maxSalePageSize = 1000

type saleProduct struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Barcode       string    `json:"barcode"`
	ThumbnailURL  string    `json:"thumbnailUrl"`
	SellingPrice  float64   `json:"sellingPrice"`
	PurchasePrice float64   `json:"purchasePrice"`
	DiscountPrice float64   `json:"discountPrice"`
	Status        bool      `json:"status"`
}

func toSaleProduct(p models.Product) saleProduct {
	return saleProduct{
		ID:            p.ID,
		Name:          p.Name,
		Barcode:       p.Barcode,
		ThumbnailURL:  p.ThumbnailURL,
		SellingPrice:  p.SellingPrice,
		PurchasePrice: p.PurchasePrice,
		DiscountPrice: p.DiscountPrice,
		Status:        p.Status,
	}
}

func (h *SaleHandler) Products(c *gin.Context) {
	storeID := middleware.StoreID(c)
	page, size := pageParams(c, maxSalePageSize)

	key := fmt.Sprintf("sale:products:%s:list:%d:%d", storeID, page, size)
	var cached gin.H
	if h.Cache.GetJSON(c.Request.Context(), key, &cached) {
		utils.Success(c, http.StatusOK, cached)
		return
	}

	var total int64
	err := h.DB.Model(&models.Product{}).
		Where("store_id = ? AND status = ?", storeID, true).
		Count(&total).Error
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, "Failed to count products")
		return
	}

	var products []models.Product
	err = h.DB.Where("store_id = ? AND status = ?", storeID, true).
		Order("name, id").
		Offset((page - 1) * size).Limit(size).
		Find(&products).Error
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, "Failed to load products")
		return
	}

	items := make([]saleProduct, len(products))
	for i, p := range products {
		items[i] = toSaleProduct(p)
	}

	payload := listPayload(items, int(total), page, size)
	h.Cache.SetJSON(c.Request.Context(), key, payload,
		cache.TTLFromEnv("STORE_PRODUCTS_TTL", 30*time.Minute))
	utils.Success(c, http.StatusOK, payload)
}

func (h *SaleHandler) SearchProducts(c *gin.Context) {
	query := search.Normalize(c.Query("q"))
	if query == "" {
		h.Products(c)
		return
	}

	storeID := middleware.StoreID(c)
	page, size := pageParams(c, maxSalePageSize)

	key := fmt.Sprintf("sale:products:%s:search:%s:%d:%d", storeID, query, page, size)
	var cached gin.H
	if h.Cache.GetJSON(c.Request.Context(), key, &cached) {
		utils.Success(c, http.StatusOK, cached)
		return
	}

	var products []models.Product
	err := h.DB.Where("store_id = ? AND status = ?", storeID, true).Find(&products).Error
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, "Failed to load products")
		return
	}

	var scored []search.Scored[saleProduct]
	for _, p := range products {
		score := search.Tiered(p.Name, query, 15, 12, 10) +
			search.Contains(p.Barcode, query, 8) +
			search.Contains(p.BrandName, query, 5) +
			search.Contains(p.CategoryName, query, 3) +
			search.Contains(p.Description, query, 1)
		if score == 0 {
			continue
		}
		scored = append(scored, search.Scored[saleProduct]{
			Item: toSaleProduct(p), Score: score, Key: p.Name, ID: p.ID.String(),
		})
	}
	search.Rank(scored)

	ranked := search.Items(scored)
	payload := listPayload(search.Page(ranked, page, size), len(ranked), page, size)
	h.Cache.SetJSON(c.Request.Context(), key, payload,
		cache.TTLFromEnv("CACHE_TTL", 10*time.Minute))
	utils.Success(c, http.StatusOK, payload)
}
