package configs

import (
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultStorePath          = "data/metadata.json" // 会话元数据文件路径
	DefaultExpirySeconds      = 3600                 // 会话固定有效期（秒）
	DefaultExpiryHuman        = "1 Hour"             // 有效期的展示文案
	DefaultSweepEnabled       = true                 // 是否启用后台定时清理（请求路径上的内联清理始终开启）
	DefaultSweepCron          = "*/10 * * * *"       // 后台清理的 cron 表达式
	DefaultAccessCodeLength   = 6                    // 访问码长度
	DefaultOwnerCodeLength    = 12                   // 所有者码长度
	DefaultMaxFileBytes       = 100 << 20            // 普通文件上限 100MB
	DefaultMaxAudioBytes      = 50 << 20             // 音频上限 50MB
	DefaultMaxVideoBytes      = 2 << 30              // 视频上限 2GB
	DefaultMaxDirectoryBytes  = 2 << 30              // 目录（多文件）合计上限 2GB
	DefaultMaxContentLength   = 2 << 30              // 单请求体上限 2GB
	DefaultUploadChunkSize    = 6_000_000            // 分片上传的分片大小（字节）
)

type (
	// StoreConfig 会话元数据存储与过期策略配置.
	StoreConfig struct {
		Path              string `mapstructure:"path"`
		ExpirySeconds     int    `mapstructure:"expiry_seconds"     rule:"min=1"`
		ExpiryHuman       string `mapstructure:"expiry_human"`
		SweepEnabled      bool   `mapstructure:"sweep_enabled"`
		SweepCron         string `mapstructure:"sweep_cron"`
		AccessCodeLength  int    `mapstructure:"access_code_length" rule:"min=6,max=8"`
		OwnerCodeLength   int    `mapstructure:"owner_code_length"  rule:"min=8,max=16"`
		MaxFileBytes      int64  `mapstructure:"max_file_bytes"`
		MaxAudioBytes     int64  `mapstructure:"max_audio_bytes"`
		MaxVideoBytes     int64  `mapstructure:"max_video_bytes"`
		MaxDirectoryBytes int64  `mapstructure:"max_directory_bytes"`
		MaxContentLength  int64  `mapstructure:"max_content_length"`
		UploadChunkSize   int64  `mapstructure:"upload_chunk_size"`
	}
)

// GetExpiryDuration 返回会话有效期作为 time.Duration.
func (s *StoreConfig) GetExpiryDuration() time.Duration {
	return time.Duration(s.ExpirySeconds) * time.Second
}

// setDefaults 设置存储配置的默认值.
func (s *StoreConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("store.path", DefaultStorePath)
	v.SetDefault("store.expiry_seconds", DefaultExpirySeconds)
	v.SetDefault("store.expiry_human", DefaultExpiryHuman)
	v.SetDefault("store.sweep_enabled", DefaultSweepEnabled)
	v.SetDefault("store.sweep_cron", DefaultSweepCron)
	v.SetDefault("store.access_code_length", DefaultAccessCodeLength)
	v.SetDefault("store.owner_code_length", DefaultOwnerCodeLength)
	v.SetDefault("store.max_file_bytes", DefaultMaxFileBytes)
	v.SetDefault("store.max_audio_bytes", DefaultMaxAudioBytes)
	v.SetDefault("store.max_video_bytes", DefaultMaxVideoBytes)
	v.SetDefault("store.max_directory_bytes", DefaultMaxDirectoryBytes)
	v.SetDefault("store.max_content_length", DefaultMaxContentLength)
	v.SetDefault("store.upload_chunk_size", DefaultUploadChunkSize)
}
