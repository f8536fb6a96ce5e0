package service

import (
	"context"
	"fmt"

	"github.com/yeisme/tempshare/pkg/internal/code"
	"github.com/yeisme/tempshare/pkg/internal/model"
	"github.com/yeisme/tempshare/pkg/internal/types"
	"github.com/yeisme/tempshare/pkg/rule"
)

// sessionInfo 将会话模型映射为对外响应.
func sessionInfo(sess *model.Session) *types.SessionInfoResponse {
	files := make([]types.FileInfo, 0, len(sess.Files))
	for _, f := range sess.Files {
		files = append(files, types.FileInfo{
			FileID:        f.FileID,
			Filename:      f.Filename,
			Size:          f.Size,
			MimeType:      f.MimeType,
			DownloadCount: f.DownloadCount,
		})
	}

	return &types.SessionInfoResponse{
		UploadID:      sess.UploadID,
		AccessCode:    sess.AccessCode,
		OwnerCode:     sess.OwnerCode,
		UploadedAt:    sess.UploadedAt,
		ExpiresAt:     sess.ExpiresAt,
		DownloadCount: sess.DownloadCount,
		PreviewFileID: sess.PreviewFileID,
		Files:         files,
	}
}

// GetByAccessCode 按访问码查询会话信息. 过期会话已被清扫，统一表现为不存在.
func (s *SessionService) GetByAccessCode(ctx context.Context, accessCode string) (*types.SessionInfoResponse, error) {
	if !rule.ValidAccessCode(accessCode) {
		return nil, ErrInvalidAccessCode
	}

	sess, err := s.metaStore.GetSession(ctx, accessCode)
	if err != nil {
		return nil, ErrNotFound
	}

	s.publishSessionAccessed(sess)

	return sessionInfo(sess), nil
}

// GetByOwnerCode 按所有者码查询会话信息. 输入先归一化，容忍连字符与小写.
func (s *SessionService) GetByOwnerCode(ctx context.Context, ownerCodeRaw string) (*types.OwnerSessionResponse, error) {
	cleaned := code.NormalizeOwnerCode(ownerCodeRaw)
	if cleaned == "" {
		return nil, ErrNotFound
	}

	sess, err := s.metaStore.GetSessionByOwner(ctx, cleaned)
	if err != nil {
		s.logger.Debug().Str("owner_code", cleaned).Msg("Owner lookup miss")

		return nil, ErrNotFound
	}

	resp := &types.OwnerSessionResponse{
		SessionInfoResponse: *sessionInfo(sess),
		Status:              "active",
	}

	// 旧版 UI 的单文件字段，取自首个文件
	if len(sess.Files) > 0 {
		first := sess.Files[0]
		resp.Filename = first.Filename
		resp.Size = first.Size
		resp.Type = first.MimeType
	}

	return resp, nil
}

// DeleteByOwnerCode 所有者删除会话：级联删除资产、摘除所有者索引、移除会话.
func (s *SessionService) DeleteByOwnerCode(ctx context.Context, ownerCodeRaw string) (*types.OwnerDeleteResponse, error) {
	cleaned := code.NormalizeOwnerCode(ownerCodeRaw)
	if cleaned == "" {
		return nil, ErrNotFound
	}

	sess, err := s.metaStore.GetSessionByOwner(ctx, cleaned)
	if err != nil {
		return nil, ErrNotFound
	}

	deleted, err := s.metaStore.DeleteSession(ctx, sess.AccessCode)
	if err != nil {
		return nil, fmt.Errorf("delete session: %w", err)
	}

	// 级联删除已摘索引，这里兜底清理归一化前后不一致的残留
	if err := s.metaStore.RemoveOwnerMapping(ctx, cleaned); err != nil {
		s.logger.Warn().Err(err).Str("owner_code", cleaned).Msg("Owner mapping cleanup failed")
	}

	s.logger.Info().
		Str("owner_code", cleaned).
		Str("access_code", sess.AccessCode).
		Int("files_deleted", deleted).
		Msg("Session deleted by owner")

	s.publishSessionDeleted(sess, "owner_request", deleted)

	return &types.OwnerDeleteResponse{
		OwnerCode:    cleaned,
		AccessCode:   sess.AccessCode,
		FilesDeleted: deleted,
	}, nil
}

// DeleteByAccessCode 按访问码删除会话.
func (s *SessionService) DeleteByAccessCode(ctx context.Context, accessCode string) (*types.DeleteResponse, error) {
	if !rule.ValidAccessCode(accessCode) {
		return nil, ErrInvalidAccessCode
	}

	sess, err := s.metaStore.GetSession(ctx, accessCode)
	if err != nil {
		return nil, ErrNotFound
	}

	deleted, err := s.metaStore.DeleteSession(ctx, accessCode)
	if err != nil {
		return nil, fmt.Errorf("delete session: %w", err)
	}

	s.logger.Info().
		Str("access_code", accessCode).
		Int("files_deleted", deleted).
		Msg("Session deleted by access code")

	s.publishSessionDeleted(sess, "legacy_delete", deleted)

	return &types.DeleteResponse{
		AccessCode:   accessCode,
		FilesDeleted: deleted,
	}, nil
}

// SessionCount 当前有效会话数.
func (s *SessionService) SessionCount(ctx context.Context) int {
	return s.metaStore.SessionCount(ctx)
}
