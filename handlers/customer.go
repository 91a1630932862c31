package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"banhangso-backend/firebase"
	"banhangso-backend/middleware"
	"banhangso-backend/models"
	"banhangso-backend/search"
	"banhangso-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CustomerHandler struct {
	DB      *gorm.DB
	Storage firebase.StorageClient
}

const maxCustomerPageSize = 100

var customerSortColumns = map[string]string{
	"name":       "name",
	"created_at": "created_at",
}

type customerRequest struct {
	Name     string `json:"name" binding:"required"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Address  string `json:"address"`
	DOB      string `json:"dob"`
	ImageURL string `json:"imageUrl"`
}

type customerUpdateRequest struct {
	Name     *string `json:"name"`
	Phone    *string `json:"phone"`
	Email    *string `json:"email"`
	Address  *string `json:"address"`
	DOB      *string `json:"dob"`
	ImageURL *string `json:"imageUrl"`
}

// parseDOB accepts a calendar date or a full ISO timestamp, keeping only the
// date part.
func parseDOB(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	if idx := strings.Index(value, "T"); idx > 0 {
		value = value[:idx]
	}
	t, err := utils.ParseDate(value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (h *CustomerHandler) List(c *gin.Context) {
	storeID := middleware.StoreID(c)
	page, size := pageParams(c, maxCustomerPageSize)

	var total int64
	if err := h.DB.Model(&models.Customer{}).Where("store_id = ?", storeID).Count(&total).Error; err != nil {
		utils.Error(c, http.StatusInternalServerError, "Failed to count customers")
		return
	}

	var customers []models.Customer
	err := h.DB.Where("store_id = ?", storeID).
		Order(sortClause(c, customerSortColumns, "created_at desc, id")).
		Offset((page - 1) * size).Limit(size).
		Find(&customers).Error
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, "Failed to load customers")
		return
	}

	utils.Success(c, http.StatusOK, listPayload(customers, int(total), page, size))
}

// Search ranks customers by name, then phone, email, and address matches.
func (h *CustomerHandler) Search(c *gin.Context) {
	query := search.Normalize(c.Query("q"))
	if query == "" {
		h.List(c)
		return
	}

	storeID := middleware.StoreID(c)
	page, size := pageParams(c, maxCustomerPageSize)

	var customers []models.Customer
	if err := h.DB.Where("store_id = ?", storeID).Find(&customers).Error; err != nil {
		utils.Error(c, http.StatusInternalServerError, "Failed to load customers")
		return
	}

	var scored []search.Scored[models.Customer]
	for _, cust := range customers {
		score := search.Tiered(cust.Name, query, 15, 12, 10) +
			search.Contains(cust.Phone, query, 8) +
			search.Contains(cust.Email, query, 5) +
			search.Contains(cust.Address, query, 3)
		if score == 0 {
			continue
		}
		scored = append(scored, search.Scored[models.Customer]{
			Item: cust, Score: score, Key: cust.Name, ID: cust.ID.String(),
		})
	}
	search.Rank(scored)

	ranked := search.Items(scored)
	utils.Success(c, http.StatusOK, listPayload(search.Page(ranked, page, size), len(ranked), page, size))
}

func (h *CustomerHandler) Get(c *gin.Context) {
	storeID := middleware.StoreID(c)

	customer, err := h.findCustomer(c, storeID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, customer)
}

func (h *CustomerHandler) Create(c *gin.Context) {
	storeID := middleware.StoreID(c)

	var req customerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Fail(c, http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	dob, err := parseDOB(req.DOB)
	if err != nil {
		utils.Fail(c, http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	customer := models.Customer{
		StoreID:  storeID,
		Name:     req.Name,
		Phone:    req.Phone,
		Email:    req.Email,
		Address:  req.Address,
		DOB:      dob,
		ImageURL: req.ImageURL,
	}
	if customer.ImageURL == "" {
		customer.ImageURL = utils.DefaultAvatarURL(customer.Name)
	} else if h.Storage != nil {
		if err := h.Storage.MarkPermanent(c.Request.Context(), customer.ImageURL); err != nil {
			log.Printf("Failed to mark %s permanent: %v", customer.ImageURL, err)
		}
	}

	if err := h.DB.Create(&customer).Error; err != nil {
		utils.Error(c, http.StatusInternalServerError, "Failed to create customer")
		return
	}

	utils.Success(c, http.StatusCreated, customer)
}

func (h *CustomerHandler) Update(c *gin.Context) {
	storeID := middleware.StoreID(c)

	customer, err := h.findCustomer(c, storeID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	var req customerUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Fail(c, http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	if req.Name != nil {
		customer.Name = *req.Name
	}
	if req.Phone != nil {
		customer.Phone = *req.Phone
	}
	if req.Email != nil {
		customer.Email = *req.Email
	}
	if req.Address != nil {
		customer.Address = *req.Address
	}
	if req.DOB != nil {
		dob, err := parseDOB(*req.DOB)
		if err != nil {
			utils.Fail(c, http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		customer.DOB = dob
	}
	if req.ImageURL != nil {
		customer.ImageURL = *req.ImageURL
		if h.Storage != nil && customer.ImageURL != "" {
			if err := h.Storage.MarkPermanent(c.Request.Context(), customer.ImageURL); err != nil {
				log.Printf("Failed to mark %s permanent: %v", customer.ImageURL, err)
			}
		}
	}

	if err := h.DB.Save(&customer).Error; err != nil {
		utils.Error(c, http.StatusInternalServerError, "Failed to update customer")
		return
	}

	utils.Success(c, http.StatusOK, customer)
}

func (h *CustomerHandler) Delete(c *gin.Context) {
	storeID := middleware.StoreID(c)

	customer, err := h.findCustomer(c, storeID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	if err := h.DB.Delete(&customer).Error; err != nil {
		utils.Error(c, http.StatusInternalServerError, "Failed to delete customer")
		return
	}

	utils.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *CustomerHandler) findCustomer(c *gin.Context, storeID uuid.UUID) (models.Customer, error) {
	var customer models.Customer

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return customer, utils.NewAPIError(http.StatusNotFound, "Customer not found")
	}

	err = h.DB.Where("id = ? AND store_id = ?", id, storeID).First(&customer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return customer, utils.NewAPIError(http.StatusNotFound, "Customer not found")
		}
		return customer, utils.NewAPIError(http.StatusInternalServerError, "Failed to load customer")
	}
	return customer, nil
}
