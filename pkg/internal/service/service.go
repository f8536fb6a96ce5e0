// Package service 实现分享会话的业务逻辑：上传建会话、按码查询、下载、预览与删除.
package service

import (
	"context"
	crand "crypto/rand"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/oklog/ulid"
	"github.com/rs/zerolog"

	"github.com/yeisme/tempshare/pkg/configs"
	ctxPkg "github.com/yeisme/tempshare/pkg/context"
	"github.com/yeisme/tempshare/pkg/internal/expiry"
	"github.com/yeisme/tempshare/pkg/internal/model"
	"github.com/yeisme/tempshare/pkg/internal/storage/meta"
	"github.com/yeisme/tempshare/pkg/internal/storage/mq"
	tlog "github.com/yeisme/tempshare/pkg/log"
)

// 业务错误，HTTP 层据此映射状态码.
var (
	ErrInvalidAccessCode  = errors.New("invalid access code")
	ErrNotFound           = errors.New("not found")
	ErrNoFiles            = errors.New("no files provided")
	ErrNoFilesInSession   = errors.New("no files in session")
	ErrFileNotFound       = errors.New("file not found in session")
	ErrNoMatchingFiles    = errors.New("no matching files in session")
	ErrPreviewUnsupported = errors.New("preview not supported")
	// ErrTooLarge 以 %w 包装具体的大小限制提示.
	ErrTooLarge = errors.New("size limit exceeded")
)

// 全局单例的 ULID 熵源，使用单调递增策略，确保同一毫秒内生成的 ULID 具有排序稳定性.
var ulidEntropy = ulid.Monotonic(crand.Reader, 0)

// MetaStore 会话元数据存储的行为集合，便于在测试中替换.
type MetaStore interface {
	CreateSession(ctx context.Context, sess *model.Session) error
	AddFile(ctx context.Context, accessCode string, rec *model.FileRecord) error
	GetSession(ctx context.Context, accessCode string) (*model.Session, error)
	GetSessionByOwner(ctx context.Context, ownerCode string) (*model.Session, error)
	DeleteSession(ctx context.Context, accessCode string) (int, error)
	RemoveOwnerMapping(ctx context.Context, ownerCode string) error
	IncrementDownloadCount(ctx context.Context, accessCode, fileID string) (int, error)
	AddArchiveKey(ctx context.Context, accessCode, objectKey string) error
	SweepExpired(ctx context.Context) meta.SweepResult
	ListAccessCodes(ctx context.Context) map[string]struct{}
	ListOwnerCodes(ctx context.Context) map[string]struct{}
	SessionCount(ctx context.Context) int
}

// AssetStore 对象存储的行为集合.
type AssetStore interface {
	PutAsset(ctx context.Context, objectKey string, r io.Reader, size int64, contentType string) error
	RemoveAsset(ctx context.Context, objectKey string, kind string) error
	GetAsset(ctx context.Context, objectKey string) (io.ReadCloser, error)
	PresignDownload(ctx context.Context, objectKey, filename string) (string, error)
	PresignPreview(ctx context.Context, objectKey string) (string, error)
}

// SessionService 分享会话业务.
type SessionService struct {
	metaStore MetaStore
	assets    AssetStore
	mqc       *mq.Client
	policy    *expiry.Policy
	cfg       *configs.AppConfig
	logger    *zerolog.Logger
}

// NewSessionService 创建并返回一个新的 SessionService 实例，依赖从 context 中的存储管理器取得.
func NewSessionService(c context.Context) *SessionService {
	svc := &SessionService{
		cfg:    configs.GetConfig(),
		logger: tlog.Logger(),
	}

	if mgr := ctxPkg.GetManager(c); mgr != nil {
		svc.metaStore = mgr.GetMetaStore()
		svc.assets = mgr.GetS3Client()
		svc.mqc = mgr.GetMQClient()
		svc.policy = mgr.GetExpiryPolicy()
	}

	if svc.metaStore == nil {
		tlog.Logger().Warn().Msg("meta store not initialized, session features unavailable")
	}

	if svc.assets == nil {
		tlog.Logger().Warn().Msg("S3 client not initialized, asset features unavailable")
	}

	return svc
}

// newUploadID 生成形如 upl_<ULID> 的上传会话 ID.
func newUploadID(now time.Time) string {
	return "upl_" + ulid.MustNew(ulid.Timestamp(now), ulidEntropy).String()
}

// accessURL 拼出分享页地址.
func (s *SessionService) accessURL(accessCode string) string {
	base := strings.TrimRight(s.cfg.Server.BaseURL, "/")

	return base + "/access/" + accessCode
}
