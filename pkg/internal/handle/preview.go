package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/tempshare/pkg/internal/service"
)

// Preview 处理 GET /preview/:code/:file_id：重定向到内联预览链接.
// 不递增下载计数；仅图片、视频与 PDF 支持.
func Preview(c *gin.Context) {
	svc := service.NewSessionService(c.Request.Context())

	url, err := svc.PreviewURL(c.Request.Context(), c.Param("code"), c.Param("file_id"))
	if err != nil {
		abortWithServiceError(c, err)

		return
	}

	c.Redirect(http.StatusFound, url)
}
