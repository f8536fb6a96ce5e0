package service

import (
	"fmt"
	"path"
	"strings"

	"github.com/yeisme/tempshare/pkg/internal/storage/s3"
	"github.com/yeisme/tempshare/pkg/internal/types"
)

// SanitizeFilename 清洗文件名：丢弃路径部分，非安全字符替换为下划线.
// 空结果回退为 "file".
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(name)

	var b strings.Builder

	b.Grow(len(name))

	for _, ch := range name {
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9':
			b.WriteRune(ch)
		case ch == '.' || ch == '-' || ch == '_':
			b.WriteRune(ch)
		default:
			b.WriteByte('_')
		}
	}

	out := strings.Trim(b.String(), "._")
	if out == "" {
		return "file"
	}

	return out
}

// sanitizeRelPath 清洗目录上传中的相对路径，逐段处理并去掉前导分隔符.
func sanitizeRelPath(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = strings.TrimLeft(name, "/")

	segs := strings.Split(name, "/")
	out := make([]string, 0, len(segs))

	for _, seg := range segs {
		if seg == "" || seg == "." || seg == ".." {
			continue
		}

		out = append(out, SanitizeFilename(seg))
	}

	if len(out) == 0 {
		return "file"
	}

	return strings.Join(out, "/")
}

// checkFileSize 按资产类别校验单文件大小限制.
func (s *SessionService) checkFileSize(f *types.UploadFile) error {
	limits := s.cfg.Store

	switch s3.ClassifyKind(f.MimeType) {
	case s3.KindVideo:
		if f.Size > limits.MaxVideoBytes {
			return fmt.Errorf("%w: video exceeds 2GB limit", ErrTooLarge)
		}
	case s3.KindAudio:
		if f.Size > limits.MaxAudioBytes {
			return fmt.Errorf("%w: audio exceeds 50MB limit", ErrTooLarge)
		}
	default:
		if f.Size > limits.MaxFileBytes {
			return fmt.Errorf("%w: file exceeds 100MB limit", ErrTooLarge)
		}
	}

	return nil
}

// isDirectoryUpload 任一文件名携带路径即视为目录上传.
func isDirectoryUpload(files []*types.UploadFile) bool {
	for _, f := range files {
		if strings.ContainsAny(f.Filename, "/\\") {
			return true
		}
	}

	return false
}

// directoryName 从首个带路径的文件名推断目录名.
func directoryName(files []*types.UploadFile) string {
	for _, f := range files {
		name := strings.ReplaceAll(f.Filename, "\\", "/")
		if i := strings.Index(name, "/"); i > 0 {
			return SanitizeFilename(name[:i])
		}
	}

	return "folder"
}
