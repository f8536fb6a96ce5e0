// Package api 将 HTTP 路由组注册到 gin 引擎.
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/tempshare/pkg/internal/router"
)

// RegisterGroup 注册文件分享相关的路由组到传入的 gin 引擎.
func RegisterGroup(e *gin.Engine) *gin.Engine {
	router.RegisterShare(e.Group("/"))
	router.RegisterHealth(e.Group("/health"))
	router.RegisterDebug(e.Group("/__debug__"))

	return e
}
