package configs

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// S3Config 对象存储（资产存储）配置，基于 MinIO S3 协议.
type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	BucketName      string `mapstructure:"bucket_name"`
	Region          string `mapstructure:"region"`
	// PresignExpiry 预签名 URL 的有效期（秒）；资产本身的生命周期由会话过期策略决定
	PresignExpiry int `mapstructure:"presign_expiry" rule:"min=60,max=86400"`
}

const (
	DefaultS3Endpoint        = "localhost:9000" // 默认S3端点
	DefaultS3AccessKeyID     = "minioadmin"     // 默认访问密钥ID
	DefaultS3SecretAccessKey = "minioadmin"     // 默认秘密访问密钥
	DefaultS3UseSSL          = false            // 默认是否使用SSL
	DefaultS3BucketName      = "tempshare"      // 默认存储桶名称
	DefaultS3Region          = "us-east-1"      // 默认区域
	DefaultS3PresignExpiry   = 3600             // 默认预签名有效期（秒）
)

// GetEndpointURL 获取完整的端点URL.
func (c *S3Config) GetEndpointURL() string {
	scheme := "http"
	if c.UseSSL {
		scheme = "https"
	}

	return fmt.Sprintf("%s://%s", scheme, c.Endpoint)
}

// GetPresignExpiry 获取预签名有效期.
func (c *S3Config) GetPresignExpiry() time.Duration {
	if c.PresignExpiry <= 0 {
		return time.Duration(DefaultS3PresignExpiry) * time.Second
	}

	return time.Duration(c.PresignExpiry) * time.Second
}

// setDefaults 设置 S3 配置的默认值.
func (c *S3Config) setDefaults(v *viper.Viper) {
	v.SetDefault("s3.endpoint", DefaultS3Endpoint)
	v.SetDefault("s3.access_key_id", DefaultS3AccessKeyID)
	v.SetDefault("s3.secret_access_key", DefaultS3SecretAccessKey)
	v.SetDefault("s3.use_ssl", DefaultS3UseSSL)
	v.SetDefault("s3.bucket_name", DefaultS3BucketName)
	v.SetDefault("s3.region", DefaultS3Region)
	v.SetDefault("s3.presign_expiry", DefaultS3PresignExpiry)
}
