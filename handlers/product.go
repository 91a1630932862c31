package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"banhangso-backend/cache"
	"banhangso-backend/firebase"
	"banhangso-backend/middleware"
	"banhangso-backend/models"
	"banhangso-backend/search"
	"banhangso-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductHandler struct {
	DB      *gorm.DB
	Storage firebase.StorageClient
	Cache   *cache.Cache
}

const maxProductPageSize = 1000

var productSortColumns = map[string]string{
	"name":           "name",
	"selling_price":  "selling_price",
	"stock_quantity": "stock_quantity",
	"created_at":     "created_at",
}

type productRequest struct {
	Name          string  `json:"name" binding:"required"`
	Description   string  `json:"description"`
	Barcode       string  `json:"barcode"`
	Note          string  `json:"note"`
	PurchasePrice float64 `json:"purchasePrice"`
	SellingPrice  float64 `json:"sellingPrice" binding:"required"`
	DiscountPrice float64 `json:"discountPrice"`
	StockQuantity int     `json:"stockQuantity"`
	Status        *bool   `json:"status"`
	AvatarURL     string  `json:"avatarUrl"`
	ThumbnailURL  string  `json:"thumbnailUrl"`
	BrandID       *string `json:"brandId"`
	CategoryID    *string `json:"categoryId"`
}

type productUpdateRequest struct {
	Name          *string  `json:"name"`
	Description   *string  `json:"description"`
	Barcode       *string  `json:"barcode"`
	Note          *string  `json:"note"`
	PurchasePrice *float64 `json:"purchasePrice"`
	SellingPrice  *float64 `json:"sellingPrice"`
	DiscountPrice *float64 `json:"discountPrice"`
	StockQuantity *int     `json:"stockQuantity"`
	Status        *bool    `json:"status"`
	AvatarURL     *string  `json:"avatarUrl"`
	ThumbnailURL  *string  `json:"thumbnailUrl"`
	BrandID       *string  `json:"brandId"`
	CategoryID    *string  `json:"categoryId"`
}

func (h *ProductHandler) List(c *gin.Context) {
	storeID := middleware.StoreID(c)
	page, size := pageParams(c, maxProductPageSize)

	var total int64
	if err := h.DB.Model(&models.Product{}).Where("store_id = ?", storeID).Count(&total).Error; err != nil {
		utils.Error(c, http.StatusInternalServerError, "Failed to count products")
		return
	}

	var products []models.Product
	err := h.DB.Where("store_id = ?", storeID).
		Order(sortClause(c, productSortColumns, "created_at desc, id")).
		Offset((page - 1) * size).Limit(size).
		Find(&products).Error
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, "Failed to load products")
		return
	}

	utils.Success(c, http.StatusOK, listPayload(products, int(total), page, size))
}

// Search ranks the store's products against q. Name matches dominate, then
// barcode, brand, category, and description.
func (h *ProductHandler) Search(c *gin.Context) {
	query := search.Normalize(c.Query("q"))
	if query == "" {
		h.List(c)
		return
	}

	storeID := middleware.StoreID(c)
	page, size := pageParams(c, maxProductPageSize)

	var products []models.Product
	if err := h.DB.Where("store_id = ?", storeID).Find(&products).Error; err != nil {
		utils.Error(c, http.StatusInternalServerError, "Failed to load products")
		return
	}

	var scored []search.Scored[models.Product]
	for _, p := range products {
		score := search.Tiered(p.Name, query, 15, 12, 10) +
			search.Contains(p.Barcode, query, 8) +
			search.Contains(p.BrandName, query, 5) +
			search.Contains(p.CategoryName, query, 3) +
			search.Contains(p.Description, query, 1)
		if score == 0 {
			continue
		}
		scored = append(scored, search.Scored[models.Product]{
			Item: p, Score: score, Key: p.Name, ID: p.ID.String(),
		})
	}
	search.Rank(scored)

	ranked := search.Items(scored)
	utils.Success(c, http.StatusOK, listPayload(search.Page(ranked, page, size), len(ranked), page, size))
}

func (h *ProductHandler) Get(c *gin.Context) {
	storeID := middleware.StoreID(c)

	product, err := h.findProduct(c, storeID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, product)
}

func (h *ProductHandler) Create(c *gin.Context) {
	storeID := middleware.StoreID(c)

	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Fail(c, http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	product := models.Product{
		StoreID:       storeID,
		Name:          req.Name,
		Description:   req.Description,
		Barcode:       req.Barcode,
		Note:          req.Note,
		PurchasePrice: req.PurchasePrice,
		SellingPrice:  req.SellingPrice,
		DiscountPrice: req.DiscountPrice,
		StockQuantity: req.StockQuantity,
		Status:        true,
		AvatarURL:     req.AvatarURL,
		ThumbnailURL:  req.ThumbnailURL,
	}
	if req.Status != nil {
		product.Status = *req.Status
	}

	if err := h.applySnapshots(storeID, &product, req.BrandID, req.CategoryID); err != nil {
		utils.HandleError(c, err)
		return
	}

	if err := h.DB.Create(&product).Error; err != nil {
		utils.Error(c, http.StatusInternalServerError, "Failed to create product")
		return
	}

	h.markImagesPermanent(c, product.AvatarURL, product.ThumbnailURL)
	h.invalidateSaleCache(c, storeID)
	utils.Success(c, http.StatusCreated, product)
}

func (h *ProductHandler) Update(c *gin.Context) {
	storeID := middleware.StoreID(c)

	product, err := h.findProduct(c, storeID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	var req productUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Fail(c, http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	oldAvatar, oldThumb := product.AvatarURL, product.ThumbnailURL

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Barcode != nil {
		product.Barcode = *req.Barcode
	}
	if req.Note != nil {
		product.Note = *req.Note
	}
	if req.PurchasePrice != nil {
		product.PurchasePrice = *req.PurchasePrice
	}
	if req.SellingPrice != nil {
		product.SellingPrice = *req.SellingPrice
	}
	if req.DiscountPrice != nil {
		product.DiscountPrice = *req.DiscountPrice
	}
	if req.StockQuantity != nil {
		product.StockQuantity = *req.StockQuantity
	}
	if req.Status != nil {
		product.Status = *req.Status
	}
	if req.AvatarURL != nil {
		product.AvatarURL = *req.AvatarURL
	}
	if req.ThumbnailURL != nil {
		product.ThumbnailURL = *req.ThumbnailURL
	}

	if err := h.applySnapshots(storeID, &product, req.BrandID, req.CategoryID); err != nil {
		utils.HandleError(c, err)
		return
	}

	if err := h.DB.Save(&product).Error; err != nil {
		utils.Error(c, http.StatusInternalServerError, "Failed to update product")
		return
	}

	if product.AvatarURL != oldAvatar {
		h.markImagesPermanent(c, product.AvatarURL)
		h.deleteImages(oldAvatar)
	}
	if product.ThumbnailURL != oldThumb {
		h.markImagesPermanent(c, product.ThumbnailURL)
		h.deleteImages(oldThumb)
	}

	h.invalidateSaleCache(c, storeID)
	utils.Success(c, http.StatusOK, product)
}

func (h *ProductHandler) Delete(c *gin.Context) {
	storeID := middleware.StoreID(c)

	product, err := h.findProduct(c, storeID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	if err := h.DB.Delete(&product).Error; err != nil {
		utils.Error(c, http.StatusInternalServerError, "Failed to delete product")
		return
	}

	h.deleteImages(product.AvatarURL, product.ThumbnailURL)
	h.invalidateSaleCache(c, storeID)
	utils.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// findProduct loads the :id product and re-checks it belongs to the store.
func (h *ProductHandler) findProduct(c *gin.Context, storeID uuid.UUID) (models.Product, error) {
	var product models.Product

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return product, utils.NewAPIError(http.StatusNotFound, "Product not found")
	}

	err = h.DB.Where("id = ? AND store_id = ?", id, storeID).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return product, utils.NewAPIError(http.StatusNotFound, "Product not found")
		}
		return product, utils.NewAPIError(http.StatusInternalServerError, "Failed to load product")
	}
	return product, nil
}

// applySnapshots resolves brandId/categoryId references within the store and
// copies their display fields onto the product. An empty string clears the
// reference.
func (h *ProductHandler) applySnapshots(storeID uuid.UUID, product *models.Product, brandID, categoryID *string) error {
	if brandID != nil {
		if *brandID == "" {
			product.BrandID = nil
			product.BrandName = ""
			product.BrandThumbnailURL = ""
		} else {
			id, err := uuid.Parse(*brandID)
			var brand models.Brand
			if err == nil {
				err = h.DB.Where("id = ? AND store_id = ?", id, storeID).First(&brand).Error
			}
			if err != nil {
				return utils.NewAPIError(http.StatusNotFound, "Brand not found")
			}
			product.BrandID = &brand.ID
			product.BrandName = brand.Name
			product.BrandThumbnailURL = brand.ThumbnailURL
		}
	}

	if categoryID != nil {
		if *categoryID == "" {
			product.CategoryID = nil
			product.CategoryName = ""
		} else {
			id, err := uuid.Parse(*categoryID)
			var category models.Category
			if err == nil {
				err = h.DB.Where("id = ? AND store_id = ?", id, storeID).First(&category).Error
			}
			if err != nil {
				return utils.NewAPIError(http.StatusNotFound, "Category not found")
			}
			product.CategoryID = &category.ID
			product.CategoryName = category.Name
		}
	}

	return nil
}

func (h *ProductHandler) markImagesPermanent(c *gin.Context, urls ...string) {
	if h.Storage == nil {
		return
	}
	for _, u := range urls {
		if u == "" {
			continue
		}
		if err := h.Storage.MarkPermanent(c.Request.Context(), u); err != nil {
			log.Printf("Failed to mark %s permanent: %v", u, err)
		}
	}
}

func (h *ProductHandler) deleteImages(urls ...string) {
	if h.Storage == nil {
		return
	}
	go func() {
		for _, u := range urls {
			if u == "" {
				continue
			}
			if err := h.Storage.DeleteByURL(context.Background(), u); err != nil {
				log.Printf("Failed to delete image %s: %v", u, err)
			}
		}
	}()
}

func (h *ProductHandler) invalidateSaleCache(c *gin.Context, storeID uuid.UUID) {
	if h.Cache == nil {
		return
	}
	h.Cache.Invalidate(c.Request.Context(), "sale:products:"+storeID.String()+":*")
}
