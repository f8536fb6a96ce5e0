// Package handle 健康检查处理器实现.
package handle

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	ctxPkg "github.com/yeisme/tempshare/pkg/context"
	"github.com/yeisme/tempshare/pkg/internal/service"
	"github.com/yeisme/tempshare/pkg/internal/types"
)

const healthTimeout = 2 * time.Second

// Health 处理 GET /health：整体健康状态与当前有效会话数.
func Health(c *gin.Context) {
	svc := service.NewSessionService(c.Request.Context())

	c.JSON(http.StatusOK, types.HealthResponse{
		Status:    "ok",
		Timestamp: float64(time.Now().UnixNano()) / float64(time.Second),
		Sessions:  svc.SessionCount(c.Request.Context()),
	})
}

// HealthS3 S3/对象存储健康检查.
func HealthS3(c *gin.Context) {
	s3c := ctxPkg.GetS3Client(c.Request.Context())
	if s3c == nil || s3c.Client == nil { // s3c.Client 为底层 *minio.Client
		c.JSON(http.StatusServiceUnavailable, gin.H{"component": "s3", "status": "unhealthy", "error": "s3 client not initialized"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	if err := s3c.HealthCheck(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"component": "s3", "status": "unhealthy", "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"component": "s3", "status": "ok"})
}

// HealthMQ 消息队列健康检查. MQ 为可选组件，未启用时视为降级而非故障.
func HealthMQ(c *gin.Context) {
	mqc := ctxPkg.GetMQClient(c.Request.Context())
	if mqc == nil {
		c.JSON(http.StatusOK, gin.H{"component": "mq", "status": "disabled"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"component": "mq", "status": "ok"})
}

// HealthMeta 元数据存储健康检查.
func HealthMeta(c *gin.Context) {
	store := ctxPkg.GetMetaStore(c.Request.Context())
	if store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"component": "meta", "status": "unhealthy", "error": "meta store not initialized"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"component": "meta", "status": "ok", "sessions": store.SessionCount(c.Request.Context())})
}
