// Package jobs 负责注册与实现业务定时任务（基于 scheduler）。
package jobs

import (
	"context"
	"fmt"

	"github.com/yeisme/tempshare/pkg/configs"
	ctxPkg "github.com/yeisme/tempshare/pkg/context"
	"github.com/yeisme/tempshare/pkg/internal/service"
	"github.com/yeisme/tempshare/pkg/internal/storage"
	"github.com/yeisme/tempshare/pkg/log"
)

// RegisterCronJobs 配置业务定时任务：
//   - 按 store.sweep_cron 周期执行过期会话清扫（默认每 10 分钟）
//
// 请求路径上的内联清扫始终开启，后台任务只是兜底，保证无流量时过期资产也会被回收.
func RegisterCronJobs(sched SchedulerRegistrar, mgr *storage.Manager) error {
	if sched == nil {
		return fmt.Errorf("scheduler is nil")
	}

	if mgr == nil {
		return fmt.Errorf("storage manager is nil")
	}

	cfg := configs.GetConfig()
	if !cfg.Store.SweepEnabled {
		log.Logger().Info().Msg("background sweep disabled by config")

		return nil
	}

	// 将 storage manager 注入到 context，便于 service 使用
	baseCtx := ctxPkg.WithStorageManager(context.Background(), mgr)

	return sched.AddCron(JobSessionSweep, cfg.Store.SweepCron, runSessionSweep, baseCtx)
}

// SchedulerRegistrar 是 jobs 对调度器的最小依赖.
type SchedulerRegistrar interface {
	AddCron(name string, cronExpr string, job func(ctx context.Context), ctx context.Context) error
}

// runSessionSweep 执行一轮过期会话清扫.
func runSessionSweep(ctx context.Context) {
	l := log.Logger().With().Str("job", JobSessionSweep).Logger()

	svc := service.NewSessionService(ctx)

	result := svc.SweepExpired(ctx)
	if result.Sessions == 0 {
		return
	}

	l.Info().
		Int("sessions", result.Sessions).
		Int("assets", result.Assets).
		Int("failures", result.Failures).
		Msg("swept expired sessions")
}
