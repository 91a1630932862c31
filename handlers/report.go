package handlers

import (
	"net/http"
	"time"

	"banhangso-backend/middleware"
	"banhangso-backend/models"
	"banhangso-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ReportHandler struct {
	DB *gorm.DB
}

// Summary aggregates revenue, sale count, and distinct customers over a date
// range. With no arguments the range is today in the report timezone.
func (h *ReportHandler) Summary(c *gin.Context) {
	storeID := middleware.StoreID(c)
	loc := utils.ReportLocation()

	now := time.Now().In(loc)
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1)

	if raw := c.Query("date"); raw != "" {
		s, e, err := utils.ParseDateRange(raw, loc)
		if err != nil {
			utils.Fail(c, http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		start, end = s, e
	}
	if raw := c.Query("start_date"); raw != "" {
		s, _, err := utils.ParseDateRange(raw, loc)
		if err != nil {
			utils.Fail(c, http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		start = s
	}
	if raw := c.Query("end_date"); raw != "" {
		_, e, err := utils.ParseDateRange(raw, loc)
		if err != nil {
			utils.Fail(c, http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		end = e
	}

	var row struct {
		Revenue      float64
		Transactions int64
		Customers    int64
	}
	err := h.DB.Model(&models.Transaction{}).
		Select("COALESCE(SUM(total_selling_prices), 0) AS revenue, COUNT(*) AS transactions, COUNT(DISTINCT customer_id) AS customers").
		Where("store_id = ? AND created_at >= ? AND created_at < ?", storeID, start, end).
		Scan(&row).Error
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, "Failed to build report")
		return
	}

	utils.Success(c, http.StatusOK, gin.H{
		"revenue":          row.Revenue,
		"transactionCount": row.Transactions,
		"uniqueCustomers":  row.Customers,
		"startDate":        start.Format(time.RFC3339),
		"endDate":          end.Format(time.RFC3339),
	})
}
