package service

import (
	"context"

	"github.com/yeisme/tempshare/pkg/internal/storage/meta"
	"github.com/yeisme/tempshare/pkg/metrics"
)

// SweepExpired 立即清扫过期会话并上报指标，供定时任务与调试接口调用.
func (s *SessionService) SweepExpired(ctx context.Context) meta.SweepResult {
	result := s.metaStore.SweepExpired(ctx)

	if result.Sessions > 0 {
		metrics.SessionsSwept.Add(float64(result.Sessions))
		metrics.AssetsDeleted.WithLabelValues("ok").Add(float64(result.Assets - result.Failures))

		if result.Failures > 0 {
			metrics.AssetsDeleted.WithLabelValues("failed").Add(float64(result.Failures))
		}

		s.publishSessionSwept(result)
	}

	return result
}
