package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/kurtarapp/kurtar-backend/internal/requestdata"
	"github.com/kurtarapp/kurtar-backend/internal/services"
)

// SchemaGuard runs the lazy profile migration before business logic sees the
// request. It never blocks the request: the guard swallows its own failures.
func SchemaGuard(guard services.ProfileGuard) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rd := requestdata.GetRequestData(c.Request.Context()); rd != nil && !rd.UserID.IsZero() {
			guard.EnsureSchema(c.Request.Context(), rd.UserID)
		}
		c.Next()
	}
}
