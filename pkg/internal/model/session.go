// Package model 定义分享会话与文件记录的数据模型，字段与元数据文件中的持久化格式一一对应.
package model

// FileRecord 会话中单个文件的记录.
type FileRecord struct {
	FileID    string `json:"file_id"`
	Filename  string `json:"filename"`
	Size      int64  `json:"size"`
	MimeType  string `json:"mime_type"`
	// ObjectKey 对象存储中的键，文件删除时据此定位资产
	ObjectKey string `json:"object_key"`
	// Kind 资产类别：image / video / raw，决定预览方式与大小上限
	Kind          string `json:"kind"`
	FileURL       string `json:"file_url"`
	DownloadCount int    `json:"download_count"`
}

// Session 一次上传产生的分享会话.
type Session struct {
	UploadID   string  `json:"upload_id"`
	AccessCode string  `json:"access_code"`
	OwnerCode  string  `json:"owner_code"`
	UploadedAt float64 `json:"uploaded_at"`
	ExpiresAt  float64 `json:"expires_at"`
	// IsDirectory 目录上传打包为单个 zip 资产
	IsDirectory   bool          `json:"is_directory,omitempty"`
	Files         []*FileRecord `json:"files"`
	PreviewFileID string        `json:"preview_file_id,omitempty"`
	DownloadCount int           `json:"download_count"`
	// ArchiveKeys 批量下载生成的打包资产，会话删除时一并清理
	ArchiveKeys []string `json:"archive_keys,omitempty"`
}

// FindFile 按文件 ID 查找记录，未找到时返回 nil.
func (s *Session) FindFile(fileID string) *FileRecord {
	for _, f := range s.Files {
		if f.FileID == fileID {
			return f
		}
	}

	return nil
}

// TotalSize 会话内所有文件的字节总和.
func (s *Session) TotalSize() int64 {
	var total int64
	for _, f := range s.Files {
		total += f.Size
	}

	return total
}

// Clone 返回会话的深拷贝，文件记录逐个复制.
func (s *Session) Clone() *Session {
	cp := *s

	cp.Files = make([]*FileRecord, len(s.Files))
	for i, f := range s.Files {
		rec := *f
		cp.Files[i] = &rec
	}

	if s.ArchiveKeys != nil {
		cp.ArchiveKeys = append([]string(nil), s.ArchiveKeys...)
	}

	return &cp
}

// Document 元数据文件的顶层结构：会话表 + 所有者码反向索引.
type Document struct {
	Sessions   map[string]*Session `json:"_sessions"`
	OwnerIndex map[string]string   `json:"_owner_index"`
}

// NewDocument 创建带已初始化容器的空文档.
func NewDocument() *Document {
	return &Document{
		Sessions:   make(map[string]*Session),
		OwnerIndex: make(map[string]string),
	}
}

// Normalize 补齐缺失的容器键，防御损坏或手工编辑过的元数据文件.
func (d *Document) Normalize() {
	if d.Sessions == nil {
		d.Sessions = make(map[string]*Session)
	}

	if d.OwnerIndex == nil {
		d.OwnerIndex = make(map[string]string)
	}
}
