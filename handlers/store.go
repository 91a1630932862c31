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
	"banhangso-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type StoreHandler struct {
	DB      *gorm.DB
	Auth    firebase.AuthClient
	Storage firebase.StorageClient
	Cache   *cache.Cache
}

type storeRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
}

type storeUpdateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	ImageURL    *string `json:"imageUrl"`
}

// GetUserStores lists every store the caller belongs to, with their role in
// each.
func (h *StoreHandler) GetUserStores(c *gin.Context) {
	uid := c.GetString("uid")

	var members []models.StoreMember
	if err := h.DB.Where("user_id = ?", uid).Find(&members).Error; err != nil {
		utils.Error(c, http.StatusInternalServerError, "Failed to load stores")
		return
	}

	items := make([]gin.H, 0, len(members))
	for _, m := range members {
		var store models.Store
		if err := h.DB.First(&store, "id = ?", m.StoreID).Error; err != nil {
			continue
		}
		items = append(items, gin.H{
			"id":          store.ID,
			"name":        store.Name,
			"description": store.Description,
			"imageUrl":    store.ImageURL,
			"role":        m.Role,
			"createdAt":   store.CreatedAt,
		})
	}

	utils.Success(c, http.StatusOK, gin.H{"items": items})
}

// CreateStore creates a store and makes the caller its owner.
func (h *StoreHandler) CreateStore(c *gin.Context) {
	uid := c.GetString("uid")

	var req storeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Fail(c, http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	store := models.Store{
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&store).Error; err != nil {
			return err
		}
		member := models.StoreMember{UserID: uid, StoreID: store.ID, Role: models.RoleOwner}
		return tx.Create(&member).Error
	})
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, "Failed to create store")
		return
	}

	if h.Storage != nil && store.ImageURL != "" {
		if err := h.Storage.MarkPermanent(c.Request.Context(), store.ImageURL); err != nil {
			log.Printf("Failed to mark %s permanent: %v", store.ImageURL, err)
		}
	}

	utils.Success(c, http.StatusCreated, store)
}

// UpdateStore edits store attributes. Owner only.
func (h *StoreHandler) UpdateStore(c *gin.Context) {
	storeID := middleware.StoreID(c)

	var req storeUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Fail(c, http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	var store models.Store
	if err := h.DB.First(&store, "id = ?", storeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Fail(c, http.StatusNotFound, gin.H{"message": "Store not found"})
		} else {
			utils.Error(c, http.StatusInternalServerError, "Failed to load store")
		}
		return
	}

	oldImage := store.ImageURL
	if req.Name != nil {
		store.Name = *req.Name
	}
	if req.Description != nil {
		store.Description = *req.Description
	}
	if req.ImageURL != nil {
		store.ImageURL = *req.ImageURL
	}

	if err := h.DB.Save(&store).Error; err != nil {
		utils.Error(c, http.StatusInternalServerError, "Failed to update store")
		return
	}

	if h.Storage != nil && req.ImageURL != nil && *req.ImageURL != oldImage {
		ctx := c.Request.Context()
		if store.ImageURL != "" {
			if err := h.Storage.MarkPermanent(ctx, store.ImageURL); err != nil {
				log.Printf("Failed to mark %s permanent: %v", store.ImageURL, err)
			}
		}
		if oldImage != "" {
			if err := h.Storage.DeleteByURL(ctx, oldImage); err != nil {
				log.Printf("Failed to delete %s: %v", oldImage, err)
			}
		}
	}

	utils.Success(c, http.StatusOK, store)
}

// DeleteStore removes the store and everything scoped to it in one database
// transaction. Provider accounts of staff left with no stores are cleaned up
// afterwards, best-effort.
func (h *StoreHandler) DeleteStore(c *gin.Context) {
	storeID := middleware.StoreID(c)

	var memberIDs []string
	if err := h.DB.Model(&models.StoreMember{}).
		Where("store_id = ?", storeID).
		Pluck("user_id", &memberIDs).Error; err != nil {
		utils.Error(c, http.StatusInternalServerError, "Failed to load store members")
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		itemIDs := tx.Model(&models.Transaction{}).Select("id").Where("store_id = ?", storeID)
		if err := tx.Where("transaction_id IN (?)", itemIDs).Delete(&models.TransactionItem{}).Error; err != nil {
			return err
		}
		for _, m := range []interface{}{
			&models.Transaction{},
			&models.Product{},
			&models.Brand{},
			&models.Category{},
			&models.Customer{},
			&models.StoreMember{},
		} {
			if err := tx.Where("store_id = ?", storeID).Delete(m).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Store{}, "id = ?", storeID).Error
	})
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, "Failed to delete store")
		return
	}

	if h.Cache != nil {
		h.Cache.Invalidate(c.Request.Context(), "sale:products:"+storeID.String()+":*")
	}

	// Staff accounts that belonged only to this store are orphaned now.
	callerUID := c.GetString("uid")
	for _, uid := range memberIDs {
		if uid == callerUID {
			continue
		}
		h.removeOrphanedUser(uid)
	}

	utils.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *StoreHandler) removeOrphanedUser(uid string) {
	var remaining int64
	if err := h.DB.Model(&models.StoreMember{}).Where("user_id = ?", uid).Count(&remaining).Error; err != nil {
		log.Printf("Failed to count memberships for %s: %v", uid, err)
		return
	}
	if remaining > 0 {
		return
	}
	if err := h.DB.Delete(&models.User{}, "id = ?", uid).Error; err != nil {
		log.Printf("Failed to delete orphaned user %s: %v", uid, err)
		return
	}
	if h.Auth != nil {
		if err := h.Auth.DeleteUser(context.Background(), uid); err != nil {
			log.Printf("Failed to delete auth account %s: %v", uid, err)
		}
	}
}
