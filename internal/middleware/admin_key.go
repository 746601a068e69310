package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bughuntlab/bughunt-backend/internal/response"
)

// AdminKeyHeader is the header carrying the shared organizer key.
const AdminKeyHeader = "X-Admin-Key"

// RequireAdminKey guards organizer routes with the shared admin key. The
// comparison is constant-time.
func RequireAdminKey(adminKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		provided := c.GetHeader(AdminKeyHeader)
		if provided == "" {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrAdminKeyRequired)
			return
		}
		if subtle.ConstantTimeCompare([]byte(provided), []byte(adminKey)) != 1 {
			response.AbortFail(c, http.StatusForbidden, response.ErrAdminKeyInvalid)
			return
		}
		c.Next()
	}
}

// IsAdmin reports whether the request carries the valid admin key. Used by
// routes that behave differently for organizers without rejecting others.
func IsAdmin(c *gin.Context, adminKey string) bool {
	provided := c.GetHeader(AdminKeyHeader)
	if provided == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(provided), []byte(adminKey)) == 1
}
