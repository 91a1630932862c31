package handlers

import (
	"errors"
	"net/http"

	"banhangso-backend/middleware"
	"banhangso-backend/models"
	"banhangso-backend/search"
	"banhangso-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CategoryHandler struct {
	DB *gorm.DB
}

const maxCategoryPageSize = 1000

var categorySortColumns = map[string]string{
	"name":       "name",
	"created_at": "created_at",
}

type categoryRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *CategoryHandler) List(c *gin.Context) {
	storeID := middleware.StoreID(c)
	page, size := pageParams(c, maxCategoryPageSize)

	var total int64
	if err := h.DB.Model(&models.Category{}).Where("store_id = ?", storeID).Count(&total).Error; err != nil {
		utils.Error(c, http.StatusInternalServerError, "Failed to count categories")
		return
	}

	var categories []models.Category
	err := h.DB.Where("store_id = ?", storeID).
		Order(sortClause(c, categorySortColumns, "name")).
		Offset((page - 1) * size).Limit(size).
		Find(&categories).Error
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, "Failed to load categories")
		return
	}

	if !h.attachProductCounts(c, storeID, categories) {
		return
	}
	utils.Success(c, http.StatusOK, listPayload(categories, int(total), page, size))
}

func (h *CategoryHandler) Search(c *gin.Context) {
	query := search.Normalize(c.Query("q"))
	if query == "" {
		h.List(c)
		return
	}

	storeID := middleware.StoreID(c)
	page, size := pageParams(c, maxCategoryPageSize)

	var categories []models.Category
	if err := h.DB.Where("store_id = ?", storeID).Find(&categories).Error; err != nil {
		utils.Error(c, http.StatusInternalServerError, "Failed to load categories")
		return
	}

	var scored []search.Scored[models.Category]
	for _, cat := range categories {
		score := search.Tiered(cat.Name, query, 15, 12, 10)
		if score == 0 {
			continue
		}
		scored = append(scored, search.Scored[models.Category]{
			Item: cat, Score: score, Key: cat.Name, ID: cat.ID.String(),
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

func (h *CategoryHandler) Get(c *gin.Context) {
	storeID := middleware.StoreID(c)

	category, err := h.findCategory(c, storeID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	counts := []models.Category{category}
	if !h.attachProductCounts(c, storeID, counts) {
		return
	}
	utils.Success(c, http.StatusOK, counts[0])
}

func (h *CategoryHandler) Create(c *gin.Context) {
	storeID := middleware.StoreID(c)

	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Fail(c, http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	category := models.Category{StoreID: storeID, Name: req.Name}
	if err := h.DB.Create(&category).Error; err != nil {
		if isDuplicateErr(err) {
			utils.Fail(c, http.StatusConflict, gin.H{"message": "Category name already exists in this store"})
			return
		}
		utils.Error(c, http.StatusInternalServerError, "Failed to create category")
		return
	}

	utils.Success(c, http.StatusCreated, category)
}

// Update renames a category and cascades the new name onto product
// snapshots in the same transaction.
func (h *CategoryHandler) Update(c *gin.Context) {
	storeID := middleware.StoreID(c)

	category, err := h.findCategory(c, storeID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Fail(c, http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	category.Name = req.Name
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&category).Error; err != nil {
			return err
		}
		return tx.Model(&models.Product{}).
			Where("store_id = ? AND category_id = ?", storeID, category.ID).
			Update("category_name", category.Name).Error
	})
	if err != nil {
		if isDuplicateErr(err) {
			utils.Fail(c, http.StatusConflict, gin.H{"message": "Category name already exists in this store"})
			return
		}
		utils.Error(c, http.StatusInternalServerError, "Failed to update category")
		return
	}

	utils.Success(c, http.StatusOK, category)
}

// Delete refuses to remove a category still referenced by products.
func (h *CategoryHandler) Delete(c *gin.Context) {
	storeID := middleware.StoreID(c)

	category, err := h.findCategory(c, storeID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	var referenced int64
	err = h.DB.Model(&models.Product{}).
		Where("store_id = ? AND category_id = ?", storeID, category.ID).
		Count(&referenced).Error
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, "Failed to check category usage")
		return
	}
	if referenced > 0 {
		utils.Fail(c, http.StatusConflict, gin.H{"message": "Category is referenced by products"})
		return
	}

	if err := h.DB.Delete(&category).Error; err != nil {
		utils.Error(c, http.StatusInternalServerError, "Failed to delete category")
		return
	}

	utils.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *CategoryHandler) findCategory(c *gin.Context, storeID uuid.UUID) (models.Category, error) {
	var category models.Category

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return category, utils.NewAPIError(http.StatusNotFound, "Category not found")
	}

	err = h.DB.Where("id = ? AND store_id = ?", id, storeID).First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return category, utils.NewAPIError(http.StatusNotFound, "Category not found")
		}
		return category, utils.NewAPIError(http.StatusInternalServerError, "Failed to load category")
	}
	return category, nil
}

// attachProductCounts fills the transient ProductCount for each category in
// a single grouped query.
func (h *CategoryHandler) attachProductCounts(c *gin.Context, storeID uuid.UUID, categories []models.Category) bool {
	if len(categories) == 0 {
		return true
	}

	ids := make([]uuid.UUID, len(categories))
	for i, cat := range categories {
		ids[i] = cat.ID
	}

	var rows []struct {
		CategoryID uuid.UUID
		Count      int64
	}
	err := h.DB.Model(&models.Product{}).
		Select("category_id, COUNT(*) AS count").
		Where("store_id = ? AND category_id IN ?", storeID, ids).
		Group("category_id").
		Scan(&rows).Error
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, "Failed to count products")
		return false
	}

	counts := make(map[uuid.UUID]int64, len(rows))
	for _, row := range rows {
		counts[row.CategoryID] = row.Count
	}
	for i := range categories {
		categories[i].ProductCount = counts[categories[i].ID]
	}
	return true
}
