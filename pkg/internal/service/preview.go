package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/yeisme/tempshare/pkg/internal/model"
	"github.com/yeisme/tempshare/pkg/internal/storage/s3"
	"github.com/yeisme/tempshare/pkg/rule"
)

// PreviewURL 生成指定文件的内联预览链接. 不递增下载计数.
// 仅图片、视频与 PDF 支持预览，其余类型返回 ErrPreviewUnsupported.
func (s *SessionService) PreviewURL(ctx context.Context, accessCode, fileID string) (string, error) {
	if !rule.ValidAccessCode(accessCode) {
		return "", ErrInvalidAccessCode
	}

	sess, err := s.metaStore.GetSession(ctx, accessCode)
	if err != nil {
		return "", ErrNotFound
	}

	rec := sess.FindFile(fileID)
	if rec == nil {
		return "", ErrFileNotFound
	}

	if !previewable(rec) {
		return "", ErrPreviewUnsupported
	}

	url, err := s.assets.PresignPreview(ctx, rec.ObjectKey)
	if err != nil {
		return "", fmt.Errorf("presign preview: %w", err)
	}

	return url, nil
}

// previewable 判断文件能否内联预览：图片、视频或 PDF.
func previewable(rec *model.FileRecord) bool {
	switch rec.Kind {
	case s3.KindImage, s3.KindVideo:
		return true
	}

	if strings.Contains(strings.ToLower(rec.MimeType), "pdf") {
		return true
	}

	return strings.HasSuffix(strings.ToLower(rec.Filename), ".pdf")
}
