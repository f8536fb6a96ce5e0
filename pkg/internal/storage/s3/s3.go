// Package s3 处理对象存储操作：上传、删除与下载分享会话的文件资产.
package s3

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	minio "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/yeisme/tempshare/pkg/configs"
	tlog "github.com/yeisme/tempshare/pkg/log"
)

// 资产类别，决定大小上限与预览方式.
const (
	KindImage = "image"
	KindVideo = "video"
	KindAudio = "audio"
	KindRaw   = "raw"
)

// Client 包装 MinIO 客户端.
type Client struct {
	*minio.Client

	bucket        string
	presignExpiry time.Duration
}

// New 初始化 MinIO 客户端，若 bucket 不存在则尝试创建.
func New(ctx context.Context) (*Client, error) {
	cfg := configs.GetConfig().S3
	endpoint := cfg.Endpoint
	// 允许用户传完整 schema endpoint（http:// 或 https://）
	if u, err := url.Parse(endpoint); err == nil && u.Host != "" {
		endpoint = u.Host
		if u.Scheme == "https" {
			cfg.UseSSL = true
		}
	}

	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	cli.SetAppInfo("tempshare", configs.AppVersion)

	exists, err := cli.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.BucketName, err)
	}

	if !exists {
		if err := cli.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.BucketName, err)
		}

		tlog.Logger().Info().Str("bucket", cfg.BucketName).Msg("bucket created")
	}

	tlog.Logger().Info().Str("endpoint", cfg.Endpoint).Str("bucket", cfg.BucketName).Msg("s3 connected")

	return &Client{
		Client:        cli,
		bucket:        cfg.BucketName,
		presignExpiry: cfg.GetPresignExpiry(),
	}, nil
}

// Bucket 返回资产所在的 bucket 名称.
func (c *Client) Bucket() string {
	return c.bucket
}

// PutAsset 上传一个资产，返回对象键. 对象键形如 temp-share/<uploadID>/<fileID>.
func (c *Client) PutAsset(ctx context.Context, objectKey string, r io.Reader, size int64, contentType string) error {
	opts := minio.PutObjectOptions{ContentType: contentType}
	// 大文件走分片上传
	if size > configs.GetConfig().Store.UploadChunkSize {
		opts.PartSize = uint64(configs.GetConfig().Store.UploadChunkSize)
	}

	if _, err := c.PutObject(ctx, c.bucket, objectKey, r, size, opts); err != nil {
		return fmt.Errorf("put asset %s: %w", objectKey, err)
	}

	return nil
}

// RemoveAsset 删除资产. 幂等：对象不存在时返回 nil.
func (c *Client) RemoveAsset(ctx context.Context, objectKey string, _ string) error {
	err := c.RemoveObject(ctx, c.bucket, objectKey, minio.RemoveObjectOptions{})
	if err == nil {
		return nil
	}

	resp := minio.ToErrorResponse(err)
	if resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket" {
		return nil
	}

	return fmt.Errorf("remove asset %s: %w", objectKey, err)
}

// GetAsset 打开资产的读取流，调用方负责 Close.
func (c *Client) GetAsset(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	obj, err := c.GetObject(ctx, c.bucket, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get asset %s: %w", objectKey, err)
	}

	return obj, nil
}

// PresignDownload 生成带附件文件名的预签名下载链接.
func (c *Client) PresignDownload(ctx context.Context, objectKey, filename string) (string, error) {
	params := url.Values{}
	params.Set("response-content-disposition", fmt.Sprintf("attachment; filename=%q", filename))

	u, err := c.PresignedGetObject(ctx, c.bucket, objectKey, c.presignExpiry, params)
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", objectKey, err)
	}

	return u.String(), nil
}

// PresignPreview 生成内联展示的预签名链接，供浏览器直接渲染.
func (c *Client) PresignPreview(ctx context.Context, objectKey string) (string, error) {
	params := url.Values{}
	params.Set("response-content-disposition", "inline")

	u, err := c.PresignedGetObject(ctx, c.bucket, objectKey, c.presignExpiry, params)
	if err != nil {
		return "", fmt.Errorf("presign preview %s: %w", objectKey, err)
	}

	return u.String(), nil
}

// HealthCheck 简单的健康检查，通过探测 bucket 来验证连接.
func (c *Client) HealthCheck(ctx context.Context) error {
	_, err := c.BucketExists(ctx, c.bucket)

	return err
}

// Close 关闭 S3 客户端连接（无实际操作，接口兼容）.
func (c *Client) Close() error {
	return nil
}

// ClassifyKind 根据 MIME 类型归类资产.
func ClassifyKind(mimeType string) string {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return KindImage
	case strings.HasPrefix(mimeType, "video/"):
		return KindVideo
	case strings.HasPrefix(mimeType, "audio/"):
		return KindAudio
	default:
		return KindRaw
	}
}
