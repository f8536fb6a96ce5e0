package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/tempshare/pkg/internal/service"
	"github.com/yeisme/tempshare/pkg/log"
)

// Access 处理 GET /access/:code：按访问码返回会话元数据与文件列表.
func Access(c *gin.Context) {
	svc := service.NewSessionService(c.Request.Context())

	info, err := svc.GetByAccessCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		abortWithServiceError(c, err)

		return
	}

	respondSuccess(c, http.StatusOK, "OK", info)
}

// OwnerGet 处理 GET /owner/:owner_code：按所有者码返回会话信息.
// 输入容忍连字符与小写，服务层负责归一化.
func OwnerGet(c *gin.Context) {
	svc := service.NewSessionService(c.Request.Context())

	info, err := svc.GetByOwnerCode(c.Request.Context(), c.Param("owner_code"))
	if err != nil {
		abortWithServiceError(c, err)

		return
	}

	respondSuccess(c, http.StatusOK, "OK", info)
}

// OwnerDelete 处理 DELETE /owner/:owner_code/delete：所有者删除整个会话.
func OwnerDelete(c *gin.Context) {
	l := log.Logger()
	svc := service.NewSessionService(c.Request.Context())

	resp, err := svc.DeleteByOwnerCode(c.Request.Context(), c.Param("owner_code"))
	if err != nil {
		abortWithServiceError(c, err)

		return
	}

	l.Info().Str("access_code", resp.AccessCode).Int("files_deleted", resp.FilesDeleted).Msg("owner delete done")
	respondSuccess(c, http.StatusOK, "Deleted", resp)
}

// Delete 处理 DELETE /delete/:code：按访问码删除会话.
func Delete(c *gin.Context) {
	svc := service.NewSessionService(c.Request.Context())

	resp, err := svc.DeleteByAccessCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		abortWithServiceError(c, err)

		return
	}

	respondSuccess(c, http.StatusOK, "Deleted", resp)
}
