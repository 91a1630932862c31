package utils

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIError is an error with an HTTP status attached. Handlers return it from
// helper functions and let HandleError translate it into the response
// envelope.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

func NewAPIError(code int, message string) *APIError {
	return &APIError{Code: code, Message: message}
}

// Success writes a JSend success envelope.
func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"status": "success",
		"data":   data,
	})
}

// Fail writes a JSend fail envelope for client-side problems. The data value
// explains what was rejected.
func Fail(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"status": "fail",
		"data":   data,
	})
}

// Error writes a JSend error envelope for server-side problems.
func Error(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"status":  "error",
		"message": message,
		"code":    status,
	})
}

// HandleError maps an error to the envelope: APIErrors keep their status,
// with 4xx rendered as fail and 5xx as error. Anything else becomes a 500.
func HandleError(c *gin.Context, err error) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code >= 500 {
			log.Printf("Internal error: %v", apiErr.Message)
			Error(c, apiErr.Code, apiErr.Message)
			return
		}
		Fail(c, apiErr.Code, gin.H{"message": apiErr.Message})
		return
	}

	log.Printf("Unhandled error: %v", err)
	Error(c, http.StatusInternalServerError, "Internal server error")
}
