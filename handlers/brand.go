package handlers

import (
	"errors"
	"log"
	"net/http"

	"banhangso-backend/firebase"
	"banhangso-backend/middleware"
	"banhangso-backend/models"
	"banhangso-backend/search"
	"banhangso-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BrandHandler struct {
	DB      *gorm.DB
	Storage firebase.StorageClient
}

const maxBrandPageSize = 1000

var brandSortColumns = map[string]string{
	"name":       "name",
	"created_at": "created_at",
}

type brandRequest struct {
	Name         string   `json:"name" binding:"required"`
	ImageURLs    []string `json:"imageUrls"`
	ThumbnailURL string   `json:"thumbnailUrl"`
}

type brandUpdateRequest struct {
	Name         *string   `json:"name"`
	ImageURLs    *[]string `json:"imageUrls"`
	ThumbnailURL *string   `json:"thumbnailUrl"`
}

func (h *BrandHandler) List(c *gin.Context) {
	storeID := middleware.StoreID(c)
	page, size := pageParams(c, maxBrandPageSize)

	var total int64
	if err := h.DB.Model(&models.Brand{}).Where("store_id = ?", storeID).Count(&total).Error; err != nil {
		utils.Error(c, http.StatusInternalServerError, "Failed to count brands")
		return
	}

	var brands []models.Brand
	err := h.DB.Where("store_id = ?", storeID).
		Order(sortClause(c, brandSortColumns, "name")).
		Offset((page - 1) * size).Limit(size).
		Find(&brands).Error
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, "Failed to load brands")
		return
	}

	if !h.attachProductCounts(c, storeID, brands) {
		return
	}
	utils.Success(c, http.StatusOK, listPayload(brands, int(total), page, size))
}

func (h *BrandHandler) Search(c *gin.Context) {
	query := search.Normalize(c.Query("q"))
	if query == "" {
		h.List(c)
		return
	}

	storeID := middleware.StoreID(c)
	page, size := pageParams(c, maxBrandPageSize)

	var brands []models.Brand
	if err := h.DB.Where("store_id = ?", storeID).Find(&brands).Error; err != nil {
		utils.Error(c, http.StatusInternalServerError, "Failed to load brands")
		return
	}

	var scored []search.Scored[models.Brand]
	for _, b := range brands {
		score := search.Tiered(b.Name, query, 15, 12, 10)
		if score == 0 {
			continue
		}
		scored = append(scored, search.Scored[models.Brand]{
			Item: b, Score: score, Key: b.Name, ID: b.ID.String(),
		})
	}
	search.Rank(scored)

	ranked := search.Items(scored)
	pageItems := search.Page(ranked, page, size)
	if !h.attachProductCounts(c, storeID, pageItems) {
		return
	}
	utils.Success(c, http.StatusOK, listPayload(pageItems, len(ranked), page, size))
}

func (h *BrandHandler) Get(c *gin.Context) {
	storeID := middleware.StoreID(c)

	brand, err := h.findBrand(c, storeID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	brands := []models.Brand{brand}
	if !h.attachProductCounts(c, storeID, brands) {
		return
	}
	utils.Success(c, http.StatusOK, brands[0])
}

func (h *BrandHandler) Create(c *gin.Context) {
	storeID := middleware.StoreID(c)

	var req brandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Fail(c, http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	brand := models.Brand{
		StoreID:      storeID,
		Name:         req.Name,
		ImageURLs:    req.ImageURLs,
		ThumbnailURL: req.ThumbnailURL,
	}
	if brand.ThumbnailURL == "" {
		if len(brand.ImageURLs) > 0 {
			brand.ThumbnailURL = brand.ImageURLs[0]
		} else {
			brand.ThumbnailURL = utils.DefaultAvatarURL(brand.Name)
		}
	}

	if err := h.DB.Create(&brand).Error; err != nil {
		if isDuplicateErr(err) {
			utils.Fail(c, http.StatusConflict, gin.H{"message": "Brand name already exists in this store"})
			return
		}
		utils.Error(c, http.StatusInternalServerError, "Failed to create brand")
		return
	}

	if h.Storage != nil {
		uploads := append([]string{}, brand.ImageURLs...)
		if req.ThumbnailURL != "" && !containsString(uploads, req.ThumbnailURL) {
			uploads = append(uploads, req.ThumbnailURL)
		}
		for _, img := range uploads {
			if err := h.Storage.MarkPermanent(c.Request.Context(), img); err != nil {
				log.Printf("Failed to mark %s permanent: %v", img, err)
			}
		}
	}

	utils.Success(c, http.StatusCreated, brand)
}

// Update edits a brand and cascades name/thumbnail changes onto product
// snapshots in the same transaction.
func (h *BrandHandler) Update(c *gin.Context) {
	storeID := middleware.StoreID(c)

	brand, err := h.findBrand(c, storeID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	var req brandUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Fail(c, http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	if req.Name != nil {
		brand.Name = *req.Name
	}
	if req.ImageURLs != nil {
		brand.ImageURLs = *req.ImageURLs
	}
	if req.ThumbnailURL != nil {
		brand.ThumbnailURL = *req.ThumbnailURL
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&brand).Error; err != nil {
			return err
		}
		return tx.Model(&models.Product{}).
			Where("store_id = ? AND brand_id = ?", storeID, brand.ID).
			Updates(map[string]interface{}{
				"brand_name":          brand.Name,
				"brand_thumbnail_url": brand.ThumbnailURL,
			}).Error
	})
	if err != nil {
		if isDuplicateErr(err) {
			utils.Fail(c, http.StatusConflict, gin.H{"message": "Brand name already exists in this store"})
			return
		}
		utils.Error(c, http.StatusInternalServerError, "Failed to update brand")
		return
	}

	utils.Success(c, http.StatusOK, brand)
}

// Delete refuses to remove a brand still referenced by products.
func (h *BrandHandler) Delete(c *gin.Context) {
	storeID := middleware.StoreID(c)

	brand, err := h.findBrand(c, storeID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	var referenced int64
	err = h.DB.Model(&models.Product{}).
		Where("store_id = ? AND brand_id = ?", storeID, brand.ID).
		Count(&referenced).Error
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, "Failed to check brand usage")
		return
	}
	if referenced > 0 {
		utils.Fail(c, http.StatusConflict, gin.H{"message": "Brand is referenced by products"})
		return
	}

	if err := h.DB.Delete(&brand).Error; err != nil {
		utils.Error(c, http.StatusInternalServerError, "Failed to delete brand")
		return
	}

	utils.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *BrandHandler) findBrand(c *gin.Context, storeID uuid.UUID) (models.Brand, error) {
	var brand models.Brand

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return brand, utils.NewAPIError(http.StatusNotFound, "Brand not found")
	}

	err = h.DB.Where("id = ? AND store_id = ?", id, storeID).First(&brand).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return brand, utils.NewAPIError(http.StatusNotFound, "Brand not found")
		}
		return brand, utils.NewAPIError(http.StatusInternalServerError, "Failed to load brand")
	}
	return brand, nil
}

func (h *BrandHandler) attachProductCounts(c *gin.Context, storeID uuid.UUID, brands []models.Brand) bool {
	if len(brands) == 0 {
		return true
	}

	ids := make([]uuid.UUID, len(brands))
	for i, b := range brands {
		ids[i] = b.ID
	}

	var rows []struct {
		BrandID uuid.UUID
		Count   int64
	}
	err := h.DB.Model(&models.Product{}).
		Select("brand_id, COUNT(*) AS count").
		Where("store_id = ? AND brand_id IN ?", storeID, ids).
		Group("brand_id").
		Scan(&rows).Error
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, "Failed to count products")
		return false
	}

	counts := make(map[uuid.UUID]int64, len(rows))
	for _, row := range rows {
		counts[row.BrandID] = row.Count
	}
	for i := range brands {
		brands[i].ProductCount = counts[brands[i].ID]
	}
	return true
}
