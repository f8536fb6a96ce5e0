package types

import "io"

// UploadFile 上传请求中的一个文件，由 HTTP 层从 multipart 表单解出.
type UploadFile struct {
	// Filename 原始文件名，目录上传时可能含相对路径
	Filename string
	Size     int64
	MimeType string
	Open     func() (io.ReadCloser, error)
}

// UploadedFileInfo 上传响应中单个文件的摘要.
type UploadedFileInfo struct {
	FileID   string `json:"file_id"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	MimeType string `json:"mime_type"`
}

// UploadResponse 上传成功的响应. 所有者码仅在此处返回一次.
type UploadResponse struct {
	UploadID   string             `json:"upload_id"`
	AccessCode string             `json:"access_code"`
	OwnerCode  string             `json:"owner_code"`
	AccessURL  string             `json:"access_url"`
	ExpiresIn  string             `json:"expires_in"`
	Files      []UploadedFileInfo `json:"files"`
}
