package handlers

import (
	"net/http"
	"strings"

	"banhangso-backend/firebase"
	"banhangso-backend/utils"

	"github.com/gin-gonic/gin"
)

type UploadHandler struct {
	Storage firebase.StorageClient
}

// UploadImage accepts a multipart image and stores it marked temporary. The
// handler that later attaches the URL to a record promotes it; unattached
// uploads are swept by the background cleanup.
func (h *UploadHandler) UploadImage(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		utils.Fail(c, http.StatusBadRequest, gin.H{"message": "file is required"})
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		utils.Fail(c, http.StatusBadRequest, gin.H{"message": "only image uploads are accepted"})
		return
	}

	folder := c.DefaultQuery("folder", "uploads")

	f, err := fileHeader.Open()
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, "Failed to read upload")
		return
	}
	defer f.Close()

	url, err := h.Storage.UploadImage(c.Request.Context(), folder, fileHeader.Filename, contentType, f)
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, "Failed to store upload")
		return
	}

	utils.Success(c, http.StatusCreated, gin.H{"url": url})
}
