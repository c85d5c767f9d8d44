package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// DriverIDHeader carries the caller's driver ID.
	DriverIDHeader = "X-Driver-ID"

	// DriverIDKey is the gin context key holding the validated driver ID.
	DriverIDKey = "driverID"
)

// DriverIdentity requires a well-formed driver ID header and stores it in
// the request context.
func DriverIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(DriverIDHeader)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing " + DriverIDHeader + " header"})
			return
		}

		id, err := uuid.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid driver id"})
			return
		}

		c.Set(DriverIDKey, id.String())
		c.Next()
	}
}
