package service

import (
	"github.com/yeisme/tempshare/pkg/internal/model"
	"github.com/yeisme/tempshare/pkg/internal/queue"
	"github.com/yeisme/tempshare/pkg/internal/storage/meta"
)

const eventProducer = "tempshare"

// sessionRef 构造事件用的会话引用，不携带所有者码.
func sessionRef(sess *model.Session) queue.SessionRef {
	return queue.SessionRef{
		UploadID:   sess.UploadID,
		AccessCode: sess.AccessCode,
		ExpiresAt:  sess.ExpiresAt,
		FileCount:  len(sess.Files),
		TotalSize:  sess.TotalSize(),
	}
}

// publishSessionCreated 发布会话创建事件. MQ 未启用或发布失败时仅记日志.
func (s *SessionService) publishSessionCreated(sess *model.Session, fileCount int, isDirectory bool) {
	if s.mqc == nil || !s.cfg.Events.Enabled || !s.cfg.Events.Session.Created {
		return
	}

	ref := sessionRef(sess)
	ref.FileCount = fileCount

	err := queue.PublishSessionCreated(s.mqc.Publisher(), queue.SessionCreatedPayload{
		Session:     ref,
		IsDirectory: isDirectory,
	}, queue.WithProducer(eventProducer))
	if err != nil {
		s.logger.Warn().Err(err).Str("access_code", sess.AccessCode).Msg("Publish session created failed")
	}
}

// publishFileAdded 发布文件加入事件.
func (s *SessionService) publishFileAdded(uploadID, accessCode string, rec *model.FileRecord) {
	if s.mqc == nil || !s.cfg.Events.Enabled || !s.cfg.Events.Session.FileAdded {
		return
	}

	err := queue.PublishFileAdded(s.mqc.Publisher(), queue.FileAddedPayload{
		Session: queue.SessionRef{UploadID: uploadID, AccessCode: accessCode},
		File: queue.FileRef{
			FileID:    rec.FileID,
			Filename:  rec.Filename,
			Size:      rec.Size,
			MimeType:  rec.MimeType,
			ObjectKey: rec.ObjectKey,
			Kind:      rec.Kind,
		},
	}, queue.WithProducer(eventProducer))
	if err != nil {
		s.logger.Warn().Err(err).Str("file_id", rec.FileID).Msg("Publish file added failed")
	}
}

// publishSessionAccessed 发布会话命中事件.
func (s *SessionService) publishSessionAccessed(sess *model.Session) {
	if s.mqc == nil || !s.cfg.Events.Enabled {
		return
	}

	err := queue.PublishSessionAccessed(s.mqc.Publisher(), queue.SessionAccessedPayload{
		Session: sessionRef(sess),
	}, queue.WithProducer(eventProducer))
	if err != nil {
		s.logger.Debug().Err(err).Str("access_code", sess.AccessCode).Msg("Publish session accessed failed")
	}
}

// publishSessionDeleted 发布会话删除事件.
func (s *SessionService) publishSessionDeleted(sess *model.Session, reason string, filesDeleted int) {
	if s.mqc == nil || !s.cfg.Events.Enabled || !s.cfg.Events.Session.Deleted {
		return
	}

	err := queue.PublishSessionDeleted(s.mqc.Publisher(), queue.SessionDeletedPayload{
		Session:      sessionRef(sess),
		Reason:       reason,
		FilesDeleted: filesDeleted,
	}, queue.WithProducer(eventProducer))
	if err != nil {
		s.logger.Warn().Err(err).Str("access_code", sess.AccessCode).Msg("Publish session deleted failed")
	}
}

// publishFileDownloaded 发布下载事件. rec 为空表示批量打包下载.
func (s *SessionService) publishFileDownloaded(sess *model.Session, rec *model.FileRecord, count int) {
	if s.mqc == nil || !s.cfg.Events.Enabled {
		return
	}

	payload := queue.FileDownloadedPayload{
		Session:       sessionRef(sess),
		DownloadCount: count,
	}

	if rec != nil {
		payload.File = &queue.FileRef{
			FileID:   rec.FileID,
			Filename: rec.Filename,
			Size:     rec.Size,
			MimeType: rec.MimeType,
			Kind:     rec.Kind,
		}
	}

	err := queue.PublishFileDownloaded(s.mqc.Publisher(), payload, queue.WithProducer(eventProducer))
	if err != nil {
		s.logger.Debug().Err(err).Str("access_code", sess.AccessCode).Msg("Publish file downloaded failed")
	}
}

// publishSessionSwept 发布清扫统计事件.
func (s *SessionService) publishSessionSwept(result meta.SweepResult) {
	if s.mqc == nil || !s.cfg.Events.Enabled || !s.cfg.Events.Session.Swept {
		return
	}

	err := queue.PublishSessionSwept(s.mqc.Publisher(), queue.SessionSweptPayload{
		Sessions: result.Sessions,
		Assets:   result.Assets,
		Failures: result.Failures,
	}, queue.WithProducer(eventProducer))
	if err != nil {
		s.logger.Warn().Err(err).Msg("Publish session swept failed")
	}
}
