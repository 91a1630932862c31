package handlers

import (
	"errors"
	"strconv"
	"strings"

	"banhangso-backend/search"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// pageParams reads the page and size query params. Size is clamped to
// maxSize, page defaults to 1.
func pageParams(c *gin.Context, maxSize int) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	size, err := strconv.Atoi(c.DefaultQuery("size", "10"))
	if err != nil || size < 1 {
		size = 10
	}
	if size > maxSize {
		size = maxSize
	}
	return page, size
}

// sortClause builds an ORDER BY from sort_by and sort_order, allowing only
// columns named in the allowlist.
func sortClause(c *gin.Context, columns map[string]string, def string) string {
	col, ok := columns[c.Query("sort_by")]
	if !ok {
		col = def
	}
	order := strings.ToLower(c.DefaultQuery("sort_order", "asc"))
	if order != "asc" && order != "desc" {
		order = "asc"
	}
	return col + " " + order
}

func listPayload(items interface{}, total int, page, size int) gin.H {
	return gin.H{
		"items": items,
		"total": total,
		"page":  page,
		"size":  size,
		"pages": search.Pages(total, size),
	}
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

// isDuplicateErr reports whether err is a unique-constraint violation, in a
// form that covers both the postgres and sqlite drivers.
func isDuplicateErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint")
}
