package pkg

import (
	"github.com/gin-gonic/gin"
)

// GetUserEmail reads the authenticated user email set by the auth middleware,
// empty when unauthenticated.
func GetUserEmail(c *gin.Context) string {
	v, exists := c.Get("userEmail")
	if !exists {
		return ""
	}
	email, _ := v.(string)
	return email
}
