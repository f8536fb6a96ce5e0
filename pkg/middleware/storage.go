package middleware

import (
	"github.com/gin-gonic/gin"

	ctxPkg "github.com/yeisme/tempshare/pkg/context"
	"github.com/yeisme/tempshare/pkg/internal/storage"
)

// StorageMiddleware 将 storage manager 注入请求 context，供 service 层取用.
func StorageMiddleware(mgr *storage.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(ctxPkg.WithStorageManager(c.Request.Context(), mgr))
		c.Next()
	}
}
