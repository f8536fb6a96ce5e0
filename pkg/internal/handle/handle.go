// Package handle 提供请求处理器的实现，所有响应采用统一信封格式：
// 成功 {"success":true,"message":...,"data":...}，失败 {"success":false,"error":...}.
package handle

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/tempshare/pkg/internal/service"
)

// respondSuccess 输出成功信封. data 为 nil 时省略 data 字段.
func respondSuccess(c *gin.Context, status int, message string, data any) {
	payload := gin.H{"success": true, "message": message}
	if data != nil {
		payload["data"] = data
	}

	c.JSON(status, payload)
}

// respondError 输出失败信封.
func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "error": message})
}

// abortWithServiceError 按业务错误映射 HTTP 状态码.
func abortWithServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidAccessCode):
		respondError(c, http.StatusBadRequest, "Invalid access code")
	case errors.Is(err, service.ErrNotFound):
		respondError(c, http.StatusNotFound, "Not found")
	case errors.Is(err, service.ErrFileNotFound):
		respondError(c, http.StatusNotFound, "File not found in session")
	case errors.Is(err, service.ErrNoFilesInSession):
		respondError(c, http.StatusNotFound, "No files in session")
	case errors.Is(err, service.ErrNoFiles):
		respondError(c, http.StatusBadRequest, "No files provided")
	case errors.Is(err, service.ErrNoMatchingFiles):
		respondError(c, http.StatusBadRequest, "No matching files in session")
	case errors.Is(err, service.ErrTooLarge):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrPreviewUnsupported):
		respondError(c, http.StatusUnsupportedMediaType, "Preview not supported")
	default:
		respondError(c, http.StatusInternalServerError, "Internal error")
	}
}
