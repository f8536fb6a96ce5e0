// Package meta 实现会话元数据存储：单个 JSON 文档承载全部会话与所有者码索引，
// 每次变更先落盘再返回，读路径在主逻辑前清扫过期会话.
package meta

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog"

	"github.com/yeisme/tempshare/pkg/internal/expiry"
	"github.com/yeisme/tempshare/pkg/internal/model"
	"github.com/yeisme/tempshare/pkg/log"
)

var (
	// ErrSessionNotFound 访问码没有对应的有效会话.
	ErrSessionNotFound = errors.New("session not found")
	// ErrFileNotFound 会话中没有对应的文件记录.
	ErrFileNotFound = errors.New("file not found in session")
	// ErrSessionExists 访问码已被占用.
	ErrSessionExists = errors.New("session already exists")
)

// AssetRemover 删除对象存储中的资产. 删除需幂等：资产不存在时返回 nil.
type AssetRemover interface {
	RemoveAsset(ctx context.Context, objectKey string, kind string) error
}

// SweepResult 一次清扫的统计.
type SweepResult struct {
	Sessions int // 清除的会话数
	Assets   int // 尝试删除的资产数
	Failures int // 资产删除失败数（会话仍会被移除）
}

// Store 会话元数据存储. 所有读写在同一把互斥锁内完成读-改-写-落盘，
// 保证写后读一致；资产删除失败只记日志不回滚，避免元数据与对象存储互相阻塞.
type Store struct {
	mu     sync.Mutex
	path   string
	doc    *model.Document
	policy *expiry.Policy
	assets AssetRemover
	logger *zerolog.Logger
}

// NewStore 打开指定路径的元数据文档. 文件不存在或损坏时从空文档开始.
func NewStore(path string, policy *expiry.Policy, assets AssetRemover) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create metadata dir: %w", err)
	}

	s := &Store{
		path:   path,
		doc:    model.NewDocument(),
		policy: policy,
		assets: assets,
		logger: log.Logger(),
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var doc model.Document
		if uerr := sonic.Unmarshal(data, &doc); uerr != nil {
			s.logger.Warn().Err(uerr).Str("path", path).Msg("Metadata file corrupted, starting empty")
		} else {
			doc.Normalize()
			s.doc = &doc
		}
	case os.IsNotExist(err):
		// 首次启动，空文档
	default:
		return nil, fmt.Errorf("read metadata: %w", err)
	}

	return s, nil
}

// persistLocked 原子落盘：写临时文件后 rename 覆盖. 调用方需持有 s.mu.
func (s *Store) persistLocked() error {
	data, err := sonic.Marshal(s.doc)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write metadata tmp: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace metadata: %w", err)
	}

	return nil
}

// sweepLocked 清除所有已过期会话. 幂等，调用方需持有 s.mu.
// 有清除动作时落盘一次.
func (s *Store) sweepLocked(ctx context.Context) SweepResult {
	var result SweepResult

	expired := make([]string, 0)
	for code, sess := range s.doc.Sessions {
		if s.policy.IsExpired(sess.ExpiresAt) {
			expired = append(expired, code)
		}
	}

	for _, code := range expired {
		r := s.removeSessionLocked(ctx, code)
		result.Sessions++
		result.Assets += r.Assets
		result.Failures += r.Failures
	}

	if result.Sessions > 0 {
		if err := s.persistLocked(); err != nil {
			s.logger.Error().Err(err).Msg("Persist after sweep failed")
		}

		s.logger.Info().
			Int("sessions", result.Sessions).
			Int("assets", result.Assets).
			Int("failures", result.Failures).
			Msg("Swept expired sessions")
	}

	return result
}

// removeSessionLocked 级联移除一个会话：先逐个尝试删除资产，再摘除所有者索引，
// 最后删除会话本体. 单个资产删除失败不阻断后续删除. 不落盘，由调用方负责.
func (s *Store) removeSessionLocked(ctx context.Context, accessCode string) SweepResult {
	var result SweepResult

	sess, ok := s.doc.Sessions[accessCode]
	if !ok {
		return result
	}

	for _, f := range sess.Files {
		if f.ObjectKey == "" {
			continue
		}

		result.Assets++

		if err := s.assets.RemoveAsset(ctx, f.ObjectKey, f.Kind); err != nil {
			result.Failures++
			s.logger.Warn().Err(err).
				Str("access_code", accessCode).
				Str("object_key", f.ObjectKey).
				Msg("Asset delete failed, session removal continues")
		}
	}

	for _, key := range sess.ArchiveKeys {
		result.Assets++

		if err := s.assets.RemoveAsset(ctx, key, "raw"); err != nil {
			result.Failures++
			s.logger.Warn().Err(err).
				Str("access_code", accessCode).
				Str("object_key", key).
				Msg("Archive delete failed, session removal continues")
		}
	}

	if sess.OwnerCode != "" {
		if mapped, ok := s.doc.OwnerIndex[sess.OwnerCode]; ok && mapped == accessCode {
			delete(s.doc.OwnerIndex, sess.OwnerCode)
		}
	}

	delete(s.doc.Sessions, accessCode)

	return result
}

// CreateSession 写入新会话并建立所有者码索引.
func (s *Store) CreateSession(ctx context.Context, sess *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked(ctx)

	if _, exists := s.doc.Sessions[sess.AccessCode]; exists {
		return ErrSessionExists
	}

	if sess.Files == nil {
		sess.Files = make([]*model.FileRecord, 0)
	}

	s.doc.Sessions[sess.AccessCode] = sess.Clone()
	s.doc.OwnerIndex[sess.OwnerCode] = sess.AccessCode

	return s.persistLocked()
}

// AddFile 向会话追加文件记录. 首个文件成为预览文件.
func (s *Store) AddFile(ctx context.Context, accessCode string, rec *model.FileRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked(ctx)

	sess, ok := s.doc.Sessions[accessCode]
	if !ok {
		return ErrSessionNotFound
	}

	cp := *rec
	sess.Files = append(sess.Files, &cp)

	if sess.PreviewFileID == "" {
		sess.PreviewFileID = rec.FileID
	}

	return s.persistLocked()
}

// GetSession 按访问码读取会话快照. 过期会话在读取前已被清扫，统一表现为不存在.
func (s *Store) GetSession(ctx context.Context, accessCode string) (*model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked(ctx)

	sess, ok := s.doc.Sessions[accessCode]
	if !ok {
		return nil, ErrSessionNotFound
	}

	return sess.Clone(), nil
}

// GetSessionByOwner 按所有者码读取会话快照. 索引指向已消失的会话时摘除悬空索引.
func (s *Store) GetSessionByOwner(ctx context.Context, ownerCode string) (*model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked(ctx)

	accessCode, ok := s.doc.OwnerIndex[ownerCode]
	if !ok {
		return nil, ErrSessionNotFound
	}

	sess, ok := s.doc.Sessions[accessCode]
	if !ok {
		delete(s.doc.OwnerIndex, ownerCode)

		if err := s.persistLocked(); err != nil {
			s.logger.Error().Err(err).Msg("Persist after dangling owner index removal failed")
		}

		return nil, ErrSessionNotFound
	}

	return sess.Clone(), nil
}

// DeleteSession 级联删除会话，返回删除的文件数. 会话不存在时返回 0 且无错误.
func (s *Store) DeleteSession(ctx context.Context, accessCode string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked(ctx)

	sess, ok := s.doc.Sessions[accessCode]
	if !ok {
		return 0, nil
	}

	deleted := len(sess.Files)
	s.removeSessionLocked(ctx, accessCode)

	return deleted, s.persistLocked()
}

// RemoveOwnerMapping 摘除所有者码索引，会话本体保留.
func (s *Store) RemoveOwnerMapping(ctx context.Context, ownerCode string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.doc.OwnerIndex[ownerCode]; !ok {
		return nil
	}

	delete(s.doc.OwnerIndex, ownerCode)

	return s.persistLocked()
}

// SetOwnerMapping 建立或覆盖所有者码到访问码的索引.
func (s *Store) SetOwnerMapping(ctx context.Context, ownerCode, accessCode string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.doc.OwnerIndex[ownerCode] = accessCode

	return s.persistLocked()
}

// IncrementDownloadCount 递增会话级下载计数；fileID 非空时同时递增该文件的计数.
// 会话级计数总是递增，fileID 未命中只影响文件级计数并返回 ErrFileNotFound.
// 返回递增后的会话级计数.
func (s *Store) IncrementDownloadCount(ctx context.Context, accessCode, fileID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked(ctx)

	sess, ok := s.doc.Sessions[accessCode]
	if !ok {
		return 0, ErrSessionNotFound
	}

	sess.DownloadCount++

	if fileID != "" {
		f := sess.FindFile(fileID)
		if f == nil {
			if err := s.persistLocked(); err != nil {
				return sess.DownloadCount, err
			}

			return sess.DownloadCount, ErrFileNotFound
		}

		f.DownloadCount++
	}

	return sess.DownloadCount, s.persistLocked()
}

// AddArchiveKey 记录批量下载生成的打包资产，随会话删除一并清理.
func (s *Store) AddArchiveKey(ctx context.Context, accessCode, objectKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.doc.Sessions[accessCode]
	if !ok {
		return ErrSessionNotFound
	}

	sess.ArchiveKeys = append(sess.ArchiveKeys, objectKey)

	return s.persistLocked()
}

// SweepExpired 立即清扫过期会话，供定时任务与调试接口调用.
func (s *Store) SweepExpired(ctx context.Context) SweepResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sweepLocked(ctx)
}

// ListAccessCodes 返回当前全部访问码，供生成新码时做排除集合.
func (s *Store) ListAccessCodes(ctx context.Context) map[string]struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked(ctx)

	codes := make(map[string]struct{}, len(s.doc.Sessions))
	for code := range s.doc.Sessions {
		codes[code] = struct{}{}
	}

	return codes
}

// ListOwnerCodes 返回当前全部所有者码，供生成新码时做排除集合.
func (s *Store) ListOwnerCodes(ctx context.Context) map[string]struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked(ctx)

	codes := make(map[string]struct{}, len(s.doc.OwnerIndex))
	for code := range s.doc.OwnerIndex {
		codes[code] = struct{}{}
	}

	return codes
}

// SessionCount 当前有效会话数，供健康检查上报.
func (s *Store) SessionCount(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked(ctx)

	return len(s.doc.Sessions)
}

// Snapshot 返回全部会话快照（按访问码排序），供运维排查.
func (s *Store) Snapshot(ctx context.Context) []*model.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked(ctx)

	out := make([]*model.Session, 0, len(s.doc.Sessions))
	for _, sess := range s.doc.Sessions {
		out = append(out, sess.Clone())
	}

	sort.Slice(out, func(i, j int) bool { return out[i].AccessCode < out[j].AccessCode })

	return out
}
