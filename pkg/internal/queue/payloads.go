package queue

import "time"

// EventHeader 定义所有事件的通用头部元数据.
// 建议在发布消息时填充 TraceID、OccurredAt、Producer 等，便于追踪链路与审计.
type EventHeader struct {
	// Topic 冗余记录消息主题，便于离线处理或转储后定位来源主题.
	Topic string `json:"topic"`
	// TraceID 分布式追踪/关联 ID，可来自中间件或业务生成.
	TraceID string `json:"trace_id,omitempty"`
	// Producer 生产者服务名或节点标识.
	Producer string `json:"producer,omitempty"`
	// OccurredAt 事件发生时间（UTC，RFC3339）.
	OccurredAt time.Time `json:"occurred_at"`
	// Version 事件负载版本，便于向后兼容演进.
	Version string `json:"version,omitempty"`
}

// Message 是统一的消息封装，Header + Payload.
// T 即不同主题对应的负载结构体.
type Message[T any] struct {
	Header  EventHeader `json:"header"`
	Payload T           `json:"payload"`
}

// -------------------------- 会话领域 --------------------------

// SessionRef 标识一个分享会话. 不携带所有者码.
type SessionRef struct {
	UploadID   string  `json:"upload_id"`
	AccessCode string  `json:"access_code"`
	ExpiresAt  float64 `json:"expires_at,omitempty"`
	FileCount  int     `json:"file_count,omitempty"`
	TotalSize  int64   `json:"total_size,omitempty"`
}

// SessionCreatedPayload 新会话创建完成.
type SessionCreatedPayload struct {
	Session     SessionRef `json:"session"`
	IsDirectory bool       `json:"is_directory,omitempty"`
}

// SessionDeletedPayload 会话被删除.
type SessionDeletedPayload struct {
	Session SessionRef `json:"session"`
	// Reason 删除原因：owner_request / legacy_delete / expired
	Reason       string `json:"reason"`
	FilesDeleted int    `json:"files_deleted"`
}

// SessionSweptPayload 一轮过期清扫的统计.
type SessionSweptPayload struct {
	Sessions int `json:"sessions"`
	Assets   int `json:"assets"`
	Failures int `json:"failures,omitempty"`
}

// SessionAccessedPayload 会话被访问码命中.
type SessionAccessedPayload struct {
	Session SessionRef `json:"session"`
}

// -------------------------- 文件领域 --------------------------

// FileRef 标识会话内的一个文件资产.
type FileRef struct {
	FileID    string `json:"file_id"`
	Filename  string `json:"filename"`
	Size      int64  `json:"size,omitempty"`
	MimeType  string `json:"mime_type,omitempty"`
	ObjectKey string `json:"object_key,omitempty"`
	Kind      string `json:"kind,omitempty"`
}

// FileAddedPayload 文件加入会话.
type FileAddedPayload struct {
	Session SessionRef `json:"session"`
	File    FileRef    `json:"file"`
}

// FileDownloadedPayload 文件被下载.
type FileDownloadedPayload struct {
	Session SessionRef `json:"session"`
	// File 为空表示批量（整会话打包）下载
	File          *FileRef `json:"file,omitempty"`
	DownloadCount int      `json:"download_count"`
}
