// Package router 管理路由配置，负责将路径绑定到 handle 包提供的处理器.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/tempshare/pkg/configs"
	"github.com/yeisme/tempshare/pkg/internal/handle"
	"github.com/yeisme/tempshare/pkg/middleware"
)

// RegisterShare 绑定文件分享相关的路由：
//
//	POST   /upload                     -> 上传文件并创建会话
//	GET    /access/:code               -> 按访问码查询会话
//	GET    /owner/:owner_code          -> 按所有者码查询会话
//	DELETE /owner/:owner_code/delete   -> 按所有者码删除会话
//	DELETE /delete/:code               -> 按访问码删除会话
//	GET    /download/:code             -> 下载首个文件（兼容旧版）
//	GET    /download/:code/:file_id    -> 下载指定文件
//	POST   /download/batch             -> 批量打包下载
//	GET    /preview/:code/:file_id     -> 内联预览
func RegisterShare(group *gin.RouterGroup) {
	cfg := configs.GetConfig()

	group.POST("/upload", middleware.CircuitBreakerMiddleware(cfg.Breaker), handle.Upload)

	group.GET("/access/:code", handle.Access)
	group.GET("/owner/:owner_code", handle.OwnerGet)
	group.DELETE("/owner/:owner_code/delete", handle.OwnerDelete)
	group.DELETE("/delete/:code", handle.Delete)

	group.GET("/download/:code", handle.DownloadLegacy)
	group.GET("/download/:code/:file_id", handle.DownloadFile)
	group.POST("/download/batch", handle.DownloadBatch)

	group.GET("/preview/:code/:file_id", handle.Preview)
}

// RegisterHealth 绑定健康检查路由.
func RegisterHealth(group *gin.RouterGroup) {
	group.GET("", handle.Health)
	group.GET("/s3", handle.HealthS3)
	group.GET("/mq", handle.HealthMQ)
	group.GET("/meta", handle.HealthMeta)
}

// RegisterDebug 绑定调试与运维路由.
func RegisterDebug(group *gin.RouterGroup) {
	group.POST("/force-expiry", handle.ForceExpiry)

	group.GET("/scheduler/jobs", handle.SchedulerJobs)
	group.DELETE("/scheduler/jobs/:name", handle.SchedulerRemoveJob)
}
