package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/issue-tracker-api/internal/errors"
)

const contextKeyID = "path_id"

// RequireIDParam parses the :id path parameter as a positive integer.
// label names the resource in the error message.
func RequireIDParam(label string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil || id == 0 {
			apierrors.BadRequest(c, "Invalid "+label+" ID")
			c.Abort()
			return
		}

		c.Set(contextKeyID, id)
		c.Next()
	}
}

// GetID returns the id parsed by RequireIDParam.
func GetID(c *gin.Context) uint64 {
	return c.GetUint64(contextKeyID)
}
