package handle

import (
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/tempshare/pkg/internal/service"
	"github.com/yeisme/tempshare/pkg/internal/types"
	"github.com/yeisme/tempshare/pkg/log"
)

// uploadFieldNames 兼容多种前端的表单字段名.
var uploadFieldNames = []string{"files", "files[]", "file"}

// Upload 处理 POST /upload：接收一个或多个文件，创建单个分享会话.
func Upload(c *gin.Context) {
	l := log.Logger()

	form, err := c.MultipartForm()
	if err != nil {
		l.Warn().Err(err).Msg("invalid multipart form")
		respondError(c, http.StatusBadRequest, "No files provided")

		return
	}

	var headers []*multipart.FileHeader
	for _, field := range uploadFieldNames {
		headers = append(headers, form.File[field]...)
	}

	files := make([]*types.UploadFile, 0, len(headers))

	for _, fh := range headers {
		if fh.Filename == "" {
			continue
		}

		files = append(files, &types.UploadFile{
			Filename: fh.Filename,
			Size:     fh.Size,
			MimeType: fh.Header.Get("Content-Type"),
			Open: func() (io.ReadCloser, error) {
				return fh.Open()
			},
		})
	}

	svc := service.NewSessionService(c.Request.Context())

	resp, err := svc.CreateSession(c.Request.Context(), files)
	if err != nil {
		l.Warn().Err(err).Int("files", len(files)).Msg("upload failed")
		abortWithServiceError(c, err)

		return
	}

	respondSuccess(c, http.StatusCreated, "Uploaded", resp)
}
