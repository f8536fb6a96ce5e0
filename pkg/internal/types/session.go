// Package types 定义 HTTP 层的请求与响应结构体.
package types

// FileInfo 会话内单个文件的对外信息. 不暴露对象存储键.
type FileInfo struct {
	FileID        string `json:"file_id"`
	Filename      string `json:"filename"`
	Size          int64  `json:"size"`
	MimeType      string `json:"mime_type"`
	DownloadCount int    `json:"download_count"`
}

// SessionInfoResponse 按访问码查询会话的响应.
type SessionInfoResponse struct {
	UploadID      string     `json:"upload_id"`
	AccessCode    string     `json:"access_code"`
	OwnerCode     string     `json:"owner_code"`
	UploadedAt    float64    `json:"uploaded_at"`
	ExpiresAt     float64    `json:"expires_at"`
	DownloadCount int        `json:"download_count"`
	PreviewFileID string     `json:"preview_file_id,omitempty"`
	Files         []FileInfo `json:"files"`
}

// OwnerSessionResponse 按所有者码查询会话的响应.
// 末尾的单文件字段为兼容旧版 UI 保留，取自首个文件.
type OwnerSessionResponse struct {
	SessionInfoResponse

	Filename string `json:"filename,omitempty"`
	Size     int64  `json:"size,omitempty"`
	Type     string `json:"type,omitempty"`
	Status   string `json:"status"`
}

// OwnerDeleteResponse 所有者删除会话的响应.
type OwnerDeleteResponse struct {
	OwnerCode    string `json:"owner_code"`
	AccessCode   string `json:"access_code"`
	FilesDeleted int    `json:"files_deleted"`
}

// DeleteResponse 按访问码删除会话的响应.
type DeleteResponse struct {
	AccessCode   string `json:"access_code"`
	FilesDeleted int    `json:"files_deleted"`
}

// BatchDownloadRequest 批量打包下载请求.
type BatchDownloadRequest struct {
	AccessCode string   `json:"access_code" rule:"required,min=6,max=8,sharecode"`
	FileIDs    []string `json:"file_ids"    rule:"required,min=1"`
}

// BatchDownloadResponse 批量打包下载响应.
type BatchDownloadResponse struct {
	ArchiveURL string `json:"archive_url"`
}

// SweepResponse 手动触发过期清扫的响应.
type SweepResponse struct {
	Deleted int `json:"deleted"`
}

// HealthResponse 健康检查响应.
type HealthResponse struct {
	Status    string  `json:"status"`
	Timestamp float64 `json:"timestamp"`
	Sessions  int     `json:"sessions"`
}
