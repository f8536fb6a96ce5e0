package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/tempshare/pkg/internal/service"
	"github.com/yeisme/tempshare/pkg/internal/types"
	"github.com/yeisme/tempshare/pkg/log"
)

// DownloadFile 处理 GET /download/:code/:file_id：重定向到带附件头的预签名下载链接.
func DownloadFile(c *gin.Context) {
	svc := service.NewSessionService(c.Request.Context())

	url, err := svc.DownloadURL(c.Request.Context(), c.Param("code"), c.Param("file_id"))
	if err != nil {
		abortWithServiceError(c, err)

		return
	}

	c.Redirect(http.StatusFound, url)
}

// DownloadLegacy 处理 GET /download/:code：兼容旧版，下载会话中的首个文件.
func DownloadLegacy(c *gin.Context) {
	svc := service.NewSessionService(c.Request.Context())

	url, err := svc.DownloadFirstURL(c.Request.Context(), c.Param("code"))
	if err != nil {
		abortWithServiceError(c, err)

		return
	}

	c.Redirect(http.StatusFound, url)
}

// DownloadBatch 处理 POST /download/batch：打包选中文件并返回压缩包下载链接.
func DownloadBatch(c *gin.Context) {
	l := log.Logger()

	var req types.BatchDownloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid batch download request")
		respondError(c, http.StatusBadRequest, "file_ids must be a non-empty array")

		return
	}

	svc := service.NewSessionService(c.Request.Context())

	resp, err := svc.BatchArchive(c.Request.Context(), &req)
	if err != nil {
		abortWithServiceError(c, err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "archive_url": resp.ArchiveURL})
}
