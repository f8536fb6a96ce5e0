// Package storage 聚合存储资源：对象存储（文件资产）、元数据存储（会话文档）与消息队列.
//
// Example:
//
// 初始化
//
//	 ctx := context.Background()
//	 mgr, err := storage.Init(ctx)
//
//		if err != nil {
//		    // 处理错误
//		}
//
// 获取存储客户端
//
//	s3Client := mgr.GetS3Client()
//	metaStore := mgr.GetMetaStore()
package storage

import (
	"context"
	"sync"

	"github.com/yeisme/tempshare/pkg/configs"
	"github.com/yeisme/tempshare/pkg/internal/expiry"
	metac "github.com/yeisme/tempshare/pkg/internal/storage/meta"
	mqc "github.com/yeisme/tempshare/pkg/internal/storage/mq"
	s3c "github.com/yeisme/tempshare/pkg/internal/storage/s3"
	tlog "github.com/yeisme/tempshare/pkg/log"
)

// Manager 聚合所有存储资源.
type Manager struct {
	S3     *s3c.Client
	Meta   *metac.Store
	MQ     *mqc.Client
	Policy *expiry.Policy
}

var (
	mgr     *Manager
	mgrOnce sync.Once
)

// Init 初始化默认存储，使用全局配置. 重复调用只返回已初始化实例.
func Init(ctx context.Context) (*Manager, error) {
	var err error

	mgrOnce.Do(func() {
		cfg := configs.GetConfig()
		m := &Manager{}

		m.Policy = expiry.NewPolicy(cfg.Store.GetExpiryDuration(), nil)

		// S3
		s3i, e := s3c.New(ctx)
		if e != nil {
			err = e

			return
		}

		m.S3 = s3i

		// Meta（级联删除资产时回调 S3）
		metai, e := metac.NewStore(cfg.Store.Path, m.Policy, s3i)
		if e != nil {
			err = e

			return
		}

		m.Meta = metai

		// MQ（可选，未启用时为 nil）
		mqi, e := mqc.New(ctx)
		if e != nil {
			// 事件系统不可用不阻断启动，仅降级
			tlog.Logger().Warn().Err(e).Msg("MQ init failed, continuing without events")
		} else {
			m.MQ = mqi
		}

		mgr = m

		tlog.Logger().Info().Msg("storage manager initialized")
	})

	return mgr, err
}

// GetS3Client 获取 S3 客户端.
func (m *Manager) GetS3Client() *s3c.Client {
	return m.S3
}

// GetMetaStore 获取会话元数据存储.
func (m *Manager) GetMetaStore() *metac.Store {
	return m.Meta
}

// GetMQClient 获取 MQ 客户端，未启用时为 nil.
func (m *Manager) GetMQClient() *mqc.Client {
	return m.MQ
}

// GetExpiryPolicy 获取会话过期策略.
func (m *Manager) GetExpiryPolicy() *expiry.Policy {
	return m.Policy
}

// Close 关闭全部存储资源.
func (m *Manager) Close() error {
	var err error

	if m.S3 != nil {
		if e := m.S3.Close(); e != nil {
			err = e
		}
	}

	if m.MQ != nil {
		if e := m.MQ.Close(); e != nil {
			err = e
		}
	}

	return err
}
