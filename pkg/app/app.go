// Package app 提供应用程序的初始化和启动.
package app

import (
	contextPkg "context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yeisme/tempshare/pkg/api"
	"github.com/yeisme/tempshare/pkg/configs"
	"github.com/yeisme/tempshare/pkg/internal/jobs"
	"github.com/yeisme/tempshare/pkg/internal/storage"
	"github.com/yeisme/tempshare/pkg/log"
	"github.com/yeisme/tempshare/pkg/metrics"
	"github.com/yeisme/tempshare/pkg/middleware"
	"github.com/yeisme/tempshare/pkg/scheduler"
	"github.com/yeisme/tempshare/pkg/tracing"
)

type App struct {
	Engine *gin.Engine

	config  *configs.AppConfig
	sched   *scheduler.Scheduler
	manager *storage.Manager
}

func NewApp(configPath string) *App {
	ctx := contextPkg.Background()

	// 初始化配置
	if err := configs.InitConfig(configPath); err != nil {
		fmt.Printf("Error initializing config: %v\n", err)
		os.Exit(1)
	}

	config := configs.GetConfig()

	// 初始化追踪
	if err := tracing.InitTracer(config.Tracing); err != nil {
		fmt.Printf("Error initializing tracing: %v\n", err)
		os.Exit(1)
	}

	// 初始化监控
	if err := metrics.InitMetrics(config.Metrics); err != nil {
		fmt.Printf("Error initializing metrics: %v\n", err)
		os.Exit(1)
	}

	manager, err := storage.Init(ctx)
	if err != nil {
		fmt.Printf("Error initializing storage: %v\n", err)
		os.Exit(1)
	}

	l := log.Logger()
	gin.DefaultWriter = log.NewGinWriter(l, zerolog.InfoLevel)
	gin.DefaultErrorWriter = log.NewGinWriter(l, zerolog.ErrorLevel)

	if !config.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	sched, err := scheduler.NewScheduler()
	if err != nil {
		fmt.Printf("Error initializing scheduler: %v\n", err)
		os.Exit(1)
	}

	engine := gin.New()
	engine.MaxMultipartMemory = config.Store.UploadChunkSize

	engine.Use(
		gin.Recovery(),
		middleware.CORSMiddleware(config.Server),
		middleware.GinLoggerMiddleware(),
		middleware.TracingMiddleware(),
		middleware.PrometheusMiddleware(),
		middleware.BodyLimitMiddleware(config.Store.MaxContentLength),
		gzip.Gzip(gzip.DefaultCompression),
		middleware.StorageMiddleware(manager),
		middleware.SchedulerMiddleware(sched),
	)

	api.RegisterGroup(engine)

	if err := jobs.RegisterCronJobs(sched, manager); err != nil {
		l.Warn().Err(err).Msg("register cron jobs failed")
	}

	sched.Start()

	if config.Metrics.Enabled {
		_ = metrics.StartMetricsServer(config.Metrics, engine)
	}

	return &App{
		Engine:  engine,
		config:  config,
		sched:   sched,
		manager: manager,
	}
}

// Run 启动 HTTP 服务并阻塞，收到 SIGINT/SIGTERM 后优雅退出.
func (a *App) Run() error {
	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.config.Server.Host, a.config.Server.Port),
		Handler:           a.Engine,
		ReadHeaderTimeout: a.config.Server.GetTimeoutDuration(),
	}

	errCh := make(chan error, 1)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	log.Logger().Info().Str("addr", srv.Addr).Msg("server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		a.Close()

		return err
	case sig := <-quit:
		log.Logger().Info().Str("signal", sig.String()).Msg("shutting down")
	}

	ctx, cancel := contextPkg.WithTimeout(contextPkg.Background(), a.config.Server.GetTimeoutDuration())
	defer cancel()

	err := srv.Shutdown(ctx)

	a.Close()

	return err
}

// Close 释放调度器、存储与追踪资源.
func (a *App) Close() {
	if a.sched != nil {
		if err := a.sched.Stop(); err != nil {
			log.Logger().Warn().Err(err).Msg("scheduler stop failed")
		}
	}

	if a.manager != nil {
		if err := a.manager.Close(); err != nil {
			log.Logger().Warn().Err(err).Msg("storage close failed")
		}
	}

	ctx, cancel := contextPkg.WithTimeout(contextPkg.Background(), a.config.Server.GetTimeoutDuration())
	defer cancel()

	if err := tracing.ShutdownTracer(ctx); err != nil {
		log.Logger().Warn().Err(err).Msg("tracer shutdown failed")
	}
}
