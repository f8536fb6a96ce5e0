package service

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/oklog/ulid"

	"github.com/yeisme/tempshare/pkg/internal/model"
	"github.com/yeisme/tempshare/pkg/internal/types"
	"github.com/yeisme/tempshare/pkg/metrics"
	"github.com/yeisme/tempshare/pkg/rule"
)

// DownloadURL 生成指定文件的下载链接并递增下载计数.
func (s *SessionService) DownloadURL(ctx context.Context, accessCode, fileID string) (string, error) {
	if !rule.ValidAccessCode(accessCode) {
		return "", ErrInvalidAccessCode
	}

	sess, err := s.metaStore.GetSession(ctx, accessCode)
	if err != nil {
		return "", ErrNotFound
	}

	rec := sess.FindFile(fileID)
	if rec == nil {
		return "", ErrFileNotFound
	}

	count, err := s.metaStore.IncrementDownloadCount(ctx, accessCode, fileID)
	if err != nil {
		// 计数失败不阻断下载
		s.logger.Warn().Err(err).Str("access_code", accessCode).Msg("Download count increment failed")
	}

	url, err := s.assets.PresignDownload(ctx, rec.ObjectKey, rec.Filename)
	if err != nil {
		return "", fmt.Errorf("presign download: %w", err)
	}

	metrics.Downloads.Inc()

	s.publishFileDownloaded(sess, rec, count)

	return url, nil
}

// DownloadFirstURL 兼容旧版：下载会话中的首个文件.
func (s *SessionService) DownloadFirstURL(ctx context.Context, accessCode string) (string, error) {
	if !rule.ValidAccessCode(accessCode) {
		return "", ErrInvalidAccessCode
	}

	sess, err := s.metaStore.GetSession(ctx, accessCode)
	if err != nil {
		return "", ErrNotFound
	}

	if len(sess.Files) == 0 {
		return "", ErrNoFilesInSession
	}

	return s.DownloadURL(ctx, accessCode, sess.Files[0].FileID)
}

// BatchArchive 将会话内选中的文件打包为 zip 资产并返回下载链接.
// 会话级下载计数只递增一次；打包资产登记到会话上，随会话删除一并清理.
func (s *SessionService) BatchArchive(ctx context.Context, req *types.BatchDownloadRequest) (*types.BatchDownloadResponse, error) {
	if !rule.ValidAccessCode(req.AccessCode) {
		return nil, ErrInvalidAccessCode
	}

	if len(req.FileIDs) == 0 {
		return nil, ErrNoMatchingFiles
	}

	sess, err := s.metaStore.GetSession(ctx, req.AccessCode)
	if err != nil {
		return nil, ErrNotFound
	}

	wanted := make(map[string]struct{}, len(req.FileIDs))
	for _, id := range req.FileIDs {
		wanted[id] = struct{}{}
	}

	selected := make([]*model.FileRecord, 0, len(req.FileIDs))
	for _, f := range sess.Files {
		if _, ok := wanted[f.FileID]; ok {
			selected = append(selected, f)
		}
	}

	if len(selected) == 0 {
		return nil, ErrNoMatchingFiles
	}

	archiveName := req.AccessCode + ".zip"
	objectKey, err := s.buildArchive(ctx, sess, selected)
	if err != nil {
		return nil, err
	}

	if err := s.metaStore.AddArchiveKey(ctx, req.AccessCode, objectKey); err != nil {
		s.logger.Warn().Err(err).Str("object_key", objectKey).Msg("Archive key registration failed")
	}

	if _, err := s.metaStore.IncrementDownloadCount(ctx, req.AccessCode, ""); err != nil {
		s.logger.Warn().Err(err).Str("access_code", req.AccessCode).Msg("Batch download count increment failed")
	}

	url, err := s.assets.PresignDownload(ctx, objectKey, archiveName)
	if err != nil {
		return nil, fmt.Errorf("presign archive: %w", err)
	}

	metrics.Downloads.Inc()

	s.publishFileDownloaded(sess, nil, sess.DownloadCount+1)

	return &types.BatchDownloadResponse{ArchiveURL: url}, nil
}

// buildArchive 将选中资产流式写入临时 zip，再作为新资产上传，返回对象键.
func (s *SessionService) buildArchive(ctx context.Context, sess *model.Session, selected []*model.FileRecord) (string, error) {
	tmp, err := os.CreateTemp("", "tempshare-batch-*.zip")
	if err != nil {
		return "", fmt.Errorf("create temp zip: %w", err)
	}

	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	zw := zip.NewWriter(tmp)

	for _, rec := range selected {
		w, err := zw.Create(rec.Filename)
		if err != nil {
			return "", fmt.Errorf("zip entry %s: %w", rec.Filename, err)
		}

		rc, err := s.assets.GetAsset(ctx, rec.ObjectKey)
		if err != nil {
			return "", fmt.Errorf("fetch %s: %w", rec.FileID, err)
		}

		if _, err := io.Copy(w, rc); err != nil {
			rc.Close()

			return "", fmt.Errorf("zip copy %s: %w", rec.FileID, err)
		}

		rc.Close()
	}

	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("finish zip: %w", err)
	}

	stat, err := tmp.Stat()
	if err != nil {
		return "", fmt.Errorf("stat zip: %w", err)
	}

	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind zip: %w", err)
	}

	archiveID := ulid.MustNew(ulid.Timestamp(time.Now()), ulidEntropy).String()
	objectKey := fmt.Sprintf("temp-share/%s/archives/%s.zip", sess.UploadID, archiveID)

	if err := s.assets.PutAsset(ctx, objectKey, tmp, stat.Size(), "application/zip"); err != nil {
		return "", err
	}

	return objectKey, nil
}
