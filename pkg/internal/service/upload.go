package service

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yeisme/tempshare/pkg/internal/code"
	"github.com/yeisme/tempshare/pkg/internal/model"
	"github.com/yeisme/tempshare/pkg/internal/storage/s3"
	"github.com/yeisme/tempshare/pkg/internal/types"
	"github.com/yeisme/tempshare/pkg/metrics"
)

// uploadConcurrency 并发写入对象存储的上限.
const uploadConcurrency = 4

// CreateSession 接收一批文件，创建一个分享会话并上传全部资产.
// 任一环节失败时回滚：已上传的资产与会话元数据一并清除.
func (s *SessionService) CreateSession(ctx context.Context, files []*types.UploadFile) (*types.UploadResponse, error) {
	valid := make([]*types.UploadFile, 0, len(files))
	for _, f := range files {
		if f != nil && f.Filename != "" {
			valid = append(valid, f)
		}
	}

	if len(valid) == 0 {
		return nil, ErrNoFiles
	}

	isDirectory := isDirectoryUpload(valid)

	if isDirectory {
		var total int64
		for _, f := range valid {
			total += f.Size
			if total > s.cfg.Store.MaxDirectoryBytes {
				return nil, fmt.Errorf("%w: directory exceeds 2GB limit", ErrTooLarge)
			}
		}
	}

	for _, f := range valid {
		if err := s.checkFileSize(f); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	uploadID := newUploadID(now)
	accessCode := code.Generate(s.cfg.Store.AccessCodeLength, s.metaStore.ListAccessCodes(ctx))
	ownerCode := code.Generate(s.cfg.Store.OwnerCodeLength, s.metaStore.ListOwnerCodes(ctx))

	sess := &model.Session{
		UploadID:    uploadID,
		AccessCode:  accessCode,
		OwnerCode:   ownerCode,
		UploadedAt:  s.policy.NowTS(),
		ExpiresAt:   s.policy.ComputeExpiry(),
		IsDirectory: isDirectory,
	}

	if err := s.metaStore.CreateSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	var (
		uploaded []types.UploadedFileInfo
		err      error
	)

	if isDirectory {
		uploaded, err = s.uploadDirectory(ctx, uploadID, accessCode, valid)
	} else {
		uploaded, err = s.uploadFiles(ctx, uploadID, accessCode, valid)
	}

	if err != nil {
		// 回滚：级联删除会清掉已记录的资产与会话本体
		if _, derr := s.metaStore.DeleteSession(ctx, accessCode); derr != nil {
			s.logger.Error().Err(derr).Str("access_code", accessCode).Msg("Rollback delete failed")
		}

		return nil, err
	}

	metrics.SessionsCreated.Inc()

	s.logger.Info().
		Str("upload_id", uploadID).
		Str("access_code", accessCode).
		Int("files", len(uploaded)).
		Bool("directory", isDirectory).
		Msg("Session created")

	s.publishSessionCreated(sess, len(uploaded), isDirectory)

	return &types.UploadResponse{
		UploadID:   uploadID,
		AccessCode: accessCode,
		OwnerCode:  ownerCode,
		AccessURL:  s.accessURL(accessCode),
		ExpiresIn:  s.cfg.Store.ExpiryHuman,
		Files:      uploaded,
	}, nil
}

// uploadFiles 并发上传资产，随后按原始顺序登记文件记录.
func (s *SessionService) uploadFiles(ctx context.Context, uploadID, accessCode string, files []*types.UploadFile) ([]types.UploadedFileInfo, error) {
	records := make([]*model.FileRecord, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uploadConcurrency)

	for i, f := range files {
		g.Go(func() error {
			fileID := fmt.Sprintf("f%d_%s", i+1, code.Random(4))
			objectKey := fmt.Sprintf("temp-share/%s/%s", uploadID, fileID)

			rc, err := f.Open()
			if err != nil {
				return fmt.Errorf("open %s: %w", f.Filename, err)
			}
			defer rc.Close()

			if err := s.assets.PutAsset(gctx, objectKey, rc, f.Size, f.MimeType); err != nil {
				return err
			}

			records[i] = &model.FileRecord{
				FileID:    fileID,
				Filename:  SanitizeFilename(f.Filename),
				Size:      f.Size,
				MimeType:  f.MimeType,
				ObjectKey: objectKey,
				Kind:      s3.ClassifyKind(f.MimeType),
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		// 已上传但尚未登记的资产不会被级联删除，这里单独清理
		for _, rec := range records {
			if rec == nil {
				continue
			}

			if rerr := s.assets.RemoveAsset(ctx, rec.ObjectKey, rec.Kind); rerr != nil {
				s.logger.Warn().Err(rerr).Str("object_key", rec.ObjectKey).Msg("Orphan asset cleanup failed")
			}
		}

		return nil, err
	}

	infos := make([]types.UploadedFileInfo, 0, len(records))
	for _, rec := range records {
		if err := s.metaStore.AddFile(ctx, accessCode, rec); err != nil {
			return nil, fmt.Errorf("record file %s: %w", rec.FileID, err)
		}

		s.publishFileAdded(uploadID, accessCode, rec)

		infos = append(infos, types.UploadedFileInfo{
			FileID:   rec.FileID,
			Filename: rec.Filename,
			Size:     rec.Size,
			MimeType: rec.MimeType,
		})
	}

	return infos, nil
}

// uploadDirectory 目录上传：全部文件打包为单个 zip 资产，保留相对路径.
func (s *SessionService) uploadDirectory(ctx context.Context, uploadID, accessCode string, files []*types.UploadFile) ([]types.UploadedFileInfo, error) {
	zipName := directoryName(files) + ".zip"

	tmp, err := os.CreateTemp("", "tempshare-dir-*.zip")
	if err != nil {
		return nil, fmt.Errorf("create temp zip: %w", err)
	}

	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	zw := zip.NewWriter(tmp)

	for _, f := range files {
		w, err := zw.Create(sanitizeRelPath(f.Filename))
		if err != nil {
			return nil, fmt.Errorf("zip entry %s: %w", f.Filename, err)
		}

		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", f.Filename, err)
		}

		if _, err := io.Copy(w, rc); err != nil {
			rc.Close()

			return nil, fmt.Errorf("zip copy %s: %w", f.Filename, err)
		}

		rc.Close()
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finish zip: %w", err)
	}

	stat, err := tmp.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat zip: %w", err)
	}

	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind zip: %w", err)
	}

	fileID := "f1_" + code.Random(4)
	objectKey := fmt.Sprintf("temp-share/%s/%s", uploadID, fileID)

	if err := s.assets.PutAsset(ctx, objectKey, tmp, stat.Size(), "application/zip"); err != nil {
		return nil, err
	}

	rec := &model.FileRecord{
		FileID:    fileID,
		Filename:  zipName,
		Size:      stat.Size(),
		MimeType:  "application/zip",
		ObjectKey: objectKey,
		Kind:      s3.KindRaw,
	}

	if err := s.metaStore.AddFile(ctx, accessCode, rec); err != nil {
		if rerr := s.assets.RemoveAsset(ctx, objectKey, rec.Kind); rerr != nil {
			s.logger.Warn().Err(rerr).Str("object_key", objectKey).Msg("Orphan zip cleanup failed")
		}

		return nil, fmt.Errorf("record zip: %w", err)
	}

	s.publishFileAdded(uploadID, accessCode, rec)

	return []types.UploadedFileInfo{{
		FileID:   rec.FileID,
		Filename: rec.Filename,
		Size:     rec.Size,
		MimeType: rec.MimeType,
	}}, nil
}
