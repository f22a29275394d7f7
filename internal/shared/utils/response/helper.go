// Package response defines the JSON envelope shared by parkwise middleware
// and the rate limiter.
package response

import "github.com/gin-gonic/gin"

// RespondJSON writes the full envelope with an explicit status label
func RespondJSON(c *gin.Context, status string, code int, message string, data interface{}, errors interface{}) {
	c.JSON(code, APIResponse{
		Status:     status,
		StatusCode: code,
		Message:    message,
		Data:       data,
		Errors:     errors,
	})
}

// Error writes an error envelope with no payload or detail, the common form
// for middleware rejections
func Error(c *gin.Context, code int, message string) {
	RespondJSON(c, StatusError, code, message, nil, nil)
}
