package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/tempshare/pkg/internal/service"
	"github.com/yeisme/tempshare/pkg/internal/types"
)

// ForceExpiry 处理 POST /__debug__/force-expiry：立即执行一轮过期清扫.
func ForceExpiry(c *gin.Context) {
	svc := service.NewSessionService(c.Request.Context())

	result := svc.SweepExpired(c.Request.Context())

	respondSuccess(c, http.StatusOK, "OK", types.SweepResponse{Deleted: result.Sessions})
}
