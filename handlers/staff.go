package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"banhangso-backend/firebase"
	"banhangso-backend/middleware"
	"banhangso-backend/models"
	"banhangso-backend/saga"
	"banhangso-backend/search"
	"banhangso-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StaffHandler struct {
	DB   *gorm.DB
	Auth firebase.AuthClient
}

const maxStaffPageSize = 100

type staffCreateRequest struct {
	Email       string `json:"email" binding:"required,email"`
	ContactName string `json:"contactName" binding:"required"`
	Phone       string `json:"phone"`
	ImageURL    string `json:"imageUrl"`
}

type staffUpdateRequest struct {
	ContactName *string `json:"contactName"`
	Phone       *string `json:"phone"`
	ImageURL    *string `json:"imageUrl"`
	Active      *bool   `json:"active"`
}

// Create provisions a staff account: a provider account with a generated
// password, the backing user row, a staffs membership, and a credentials
// email. The provider account is compensated away if the database writes
// fail.
func (h *StaffHandler) Create(c *gin.Context) {
	storeID := middleware.StoreID(c)

	var req staffCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Fail(c, http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	var store models.Store
	if err := h.DB.First(&store, "id = ?", storeID).Error; err != nil {
		utils.Fail(c, http.StatusNotFound, gin.H{"message": "Store not found"})
		return
	}

	password := utils.GeneratePassword(12)
	imageURL := req.ImageURL
	if imageURL == "" {
		imageURL = utils.DefaultAvatarURL(req.ContactName)
	}

	comp := saga.New()

	uid, err := h.Auth.CreateUser(c.Request.Context(), firebase.CreateUserParams{
		Email:       req.Email,
		Password:    password,
		DisplayName: req.ContactName,
		PhotoURL:    imageURL,
	})
	if err != nil {
		if errors.Is(err, firebase.ErrEmailExists) {
			utils.Fail(c, http.StatusConflict, gin.H{"message": "Email already in use"})
			return
		}
		utils.Error(c, http.StatusInternalServerError, "Failed to create staff account")
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
		ImageURL:    imageURL,
		Active:      true,
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		member := models.StoreMember{UserID: uid, StoreID: storeID, Role: models.RoleStaff}
		return tx.Create(&member).Error
	})
	if err != nil {
		comp.Compensate()
		if isDuplicateErr(err) {
			utils.Fail(c, http.StatusConflict, gin.H{"message": "Email already in use"})
			return
		}
		utils.Error(c, http.StatusInternalServerError, "Failed to create staff")
		return
	}

	utils.SendStaffCredentials(req.Email, req.ContactName, store.Name, password)

	user.Memberships = []models.StoreMember{{UserID: uid, StoreID: storeID, Role: models.RoleStaff}}
	utils.Success(c, http.StatusCreated, user)
}

func (h *StaffHandler) List(c *gin.Context) {
	storeID := middleware.StoreID(c)
	page, size := pageParams(c, maxStaffPageSize)

	staff, ok := h.loadStaff(c, storeID)
	if !ok {
		return
	}

	utils.Success(c, http.StatusOK, listPayload(search.Page(staff, page, size), len(staff), page, size))
}

// Search ranks staff by email, display name, and phone matches.
func (h *StaffHandler) Search(c *gin.Context) {
	query := search.Normalize(c.Query("q"))
	if query == "" {
		h.List(c)
		return
	}

	storeID := middleware.StoreID(c)
	page, size := pageParams(c, maxStaffPageSize)

	staff, ok := h.loadStaff(c, storeID)
	if !ok {
		return
	}

	var scored []search.Scored[models.User]
	for _, u := range staff {
		score := search.Tiered(u.Email, query, 15, 12, 10) +
			search.Tiered(u.ContactName, query, 12, 10, 8) +
			search.Contains(u.Phone, query, 5)
		if score == 0 {
			continue
		}
		scored = append(scored, search.Scored[models.User]{
			Item: u, Score: score, Key: u.Email, ID: u.ID,
		})
	}
	search.Rank(scored)

	ranked := search.Items(scored)
	utils.Success(c, http.StatusOK, listPayload(search.Page(ranked, page, size), len(ranked), page, size))
}

func (h *StaffHandler) Get(c *gin.Context) {
	storeID := middleware.StoreID(c)

	user, _, err := h.findStaff(c, storeID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, user)
}

// Update edits staff attributes and mirrors them to the identity provider,
// best-effort.
func (h *StaffHandler) Update(c *gin.Context) {
	storeID := middleware.StoreID(c)

	user, _, err := h.findStaff(c, storeID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	var req staffUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Fail(c, http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	if req.ContactName != nil {
		user.ContactName = *req.ContactName
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.ImageURL != nil {
		user.ImageURL = *req.ImageURL
	}
	if req.Active != nil {
		user.Active = *req.Active
	}

	if err := h.DB.Save(&user).Error; err != nil {
		utils.Error(c, http.StatusInternalServerError, "Failed to update staff")
		return
	}

	if h.Auth != nil {
		params := firebase.UpdateUserParams{
			DisplayName: req.ContactName,
			PhotoURL:    req.ImageURL,
		}
		if req.Active != nil {
			disabled := !*req.Active
			params.Disabled = &disabled
		}
		if err := h.Auth.UpdateUser(context.Background(), user.ID, params); err != nil {
			log.Printf("Failed to mirror staff update to provider for %s: %v", user.ID, err)
		}
	}

	utils.Success(c, http.StatusOK, user)
}

// Delete removes the staff member from this store. When no memberships
// remain the user row and provider account are removed as well.
func (h *StaffHandler) Delete(c *gin.Context) {
	storeID := middleware.StoreID(c)

	user, member, err := h.findStaff(c, storeID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	if err := h.DB.Delete(&member).Error; err != nil {
		utils.Error(c, http.StatusInternalServerError, "Failed to remove staff")
		return
	}

	var remaining int64
	if err := h.DB.Model(&models.StoreMember{}).Where("user_id = ?", user.ID).Count(&remaining).Error; err != nil {
		log.Printf("Failed to count memberships for %s: %v", user.ID, err)
		remaining = 1
	}
	if remaining == 0 {
		if err := h.DB.Delete(&models.User{}, "id = ?", user.ID).Error; err != nil {
			log.Printf("Failed to delete user %s: %v", user.ID, err)
		}
		if h.Auth != nil {
			if err := h.Auth.DeleteUser(context.Background(), user.ID); err != nil {
				log.Printf("Failed to delete auth account %s: %v", user.ID, err)
			}
		}
	}

	utils.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// loadStaff returns the store's staff members ordered by email.
func (h *StaffHandler) loadStaff(c *gin.Context, storeID uuid.UUID) ([]models.User, bool) {
	var members []models.StoreMember
	err := h.DB.Where("store_id = ? AND role = ?", storeID, models.RoleStaff).Find(&members).Error
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, "Failed to load staff")
		return nil, false
	}

	if len(members) == 0 {
		return []models.User{}, true
	}

	ids := make([]string, len(members))
	for i, m := range members {
		ids[i] = m.UserID
	}

	var staff []models.User
	if err := h.DB.Where("id IN ?", ids).Order("email").Find(&staff).Error; err != nil {
		utils.Error(c, http.StatusInternalServerError, "Failed to load staff")
		return nil, false
	}
	return staff, true
}

func (h *StaffHandler) findStaff(c *gin.Context, storeID uuid.UUID) (models.User, models.StoreMember, error) {
	var user models.User
	var member models.StoreMember

	uid := c.Param("id")
	err := h.DB.Where("user_id = ? AND store_id = ? AND role = ?", uid, storeID, models.RoleStaff).First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user, member, utils.NewAPIError(http.StatusNotFound, "Staff not found")
		}
		return user, member, utils.NewAPIError(http.StatusInternalServerError, "Failed to load staff")
	}

	if err := h.DB.First(&user, "id = ?", uid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user, member, utils.NewAPIError(http.StatusNotFound, "Staff not found")
		}
		return user, member, utils.NewAPIError(http.StatusInternalServerError, "Failed to load staff")
	}
	return user, member, nil
}
