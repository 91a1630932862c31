package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"banhangso-backend/firebase"
	"banhangso-backend/models"
	"banhangso-backend/saga"
	"banhangso-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuthHandler struct {
	DB      *gorm.DB
	Auth    firebase.AuthClient
	Storage firebase.StorageClient
}

type storeInfoRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
}

type signupRequest struct {
	Email       string            `json:"email" binding:"required,email"`
	Password    string            `json:"password" binding:"required,min=6"`
	ContactName string            `json:"contactName" binding:"required"`
	Phone       string            `json:"phone"`
	ImageURL    string            `json:"imageUrl"`
	Role        string            `json:"role" binding:"required"`
	StoreID     string            `json:"storeId"`
	StoreInfo   *storeInfoRequest `json:"storeInfo"`
}

// Signup creates an identity-provider account plus the backing user record.
// Owners get a brand new store with an owner membership; staff join an
// existing store. The provider account is created first and compensated away
// if the database writes fail.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Fail(c, http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	if req.Role != models.RoleOwner && req.Role != models.RoleStaff {
		utils.Fail(c, http.StatusBadRequest, gin.H{"message": "role must be owner or staffs"})
		return
	}

	ctx := c.Request.Context()
	var store models.Store

	// Resolve the target store before the provider account exists, so a bad
	// request leaves nothing behind.
	if req.Role == models.RoleOwner {
		if req.StoreInfo == nil {
			utils.Fail(c, http.StatusBadRequest, gin.H{"message": "storeInfo is required for owner signup"})
			return
		}
	} else {
		storeID, err := uuid.Parse(req.StoreID)
		if err != nil {
			utils.Fail(c, http.StatusNotFound, gin.H{"message": "Store not found"})
			return
		}
		if err := h.DB.First(&store, "id = ?", storeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.Fail(c, http.StatusNotFound, gin.H{"message": "Store not found"})
			} else {
				utils.Error(c, http.StatusInternalServerError, "Failed to look up store")
			}
			return
		}
	}

	comp := saga.New()

	uid, err := h.Auth.CreateUser(ctx, firebase.CreateUserParams{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.ContactName,
		PhotoURL:    req.ImageURL,
	})
	if err != nil {
		if errors.Is(err, firebase.ErrEmailExists) {
			utils.Fail(c, http.StatusConflict, gin.H{"message": "Email already in use"})
			return
		}
		utils.Error(c, http.StatusInternalServerError, "Failed to create account")
		return
	}
	comp.Add("delete auth account", func() error {
		return h.Auth.DeleteUser(context.Background(), uid)
	})

	user := models.User{
		ID:          uid,
		Email:       req.Email,
		ContactName: req.ContactName,
		Phone:       req.Phone,
		ImageURL:    req.ImageURL,
		Active:      true,
	}
	if user.ImageURL == "" {
		user.ImageURL = utils.DefaultAvatarURL(req.ContactName)
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if req.Role == models.RoleOwner {
			store = models.Store{
				Name:        req.StoreInfo.Name,
				Description: req.StoreInfo.Description,
				ImageURL:    req.StoreInfo.ImageURL,
			}
			if err := tx.Create(&store).Error; err != nil {
				return err
			}
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		member := models.StoreMember{UserID: uid, StoreID: store.ID, Role: req.Role}
		return tx.Create(&member).Error
	})
	if err != nil {
		comp.Compensate()
		if isDuplicateErr(err) {
			utils.Fail(c, http.StatusConflict, gin.H{"message": "Email already in use"})
			return
		}
		utils.Error(c, http.StatusInternalServerError, "Failed to complete signup")
		return
	}

	if h.Storage != nil {
		for _, img := range []string{store.ImageURL, user.ImageURL} {
			if img == "" {
				continue
			}
			if err := h.Storage.MarkPermanent(ctx, img); err != nil {
				log.Printf("Failed to mark %s permanent: %v", img, err)
			}
		}
	}

	user.Memberships = []models.StoreMember{{UserID: uid, StoreID: store.ID, Role: req.Role}}
	utils.Success(c, http.StatusCreated, gin.H{"user": user, "store": store})
}

// Me returns the caller's profile with store memberships.
func (h *AuthHandler) Me(c *gin.Context) {
	uid := c.GetString("uid")

	var user models.User
	if err := h.DB.Preload("Memberships").First(&user, "id = ?", uid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Fail(c, http.StatusNotFound, gin.H{"message": "User not found"})
		} else {
			utils.Error(c, http.StatusInternalServerError, "Failed to load user")
		}
		return
	}

	utils.Success(c, http.StatusOK, user)
}
