// Package log 提供基于 zerolog 的日志工具，支持控制台与文件输出（lumberjack 轮转）.
// 调试模式下输出彩色控制台格式，否则输出原始 JSON 便于采集.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/natefinch/lumberjack"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/yeisme/tempshare/pkg/configs"
)

const serviceName = "tempshare"

var (
	logger   zerolog.Logger
	initOnce sync.Once
)

// Init 初始化全局 logger.
func Init() {
	initOnce.Do(initLogger)
}

// Logger 返回全局 logger，首次调用时完成初始化.
func Logger() *zerolog.Logger {
	initOnce.Do(initLogger)

	return &logger
}

func initLogger() {
	cfg := configs.GetConfig()

	lvl, err := zerolog.ParseLevel(strings.ToLower(cfg.Log.Level))
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid log level %q, defaulting to info\n", cfg.Log.Level)

		lvl = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(lvl)

	output := io.MultiWriter(buildWriters(cfg)...)

	ctx := zerolog.New(output).With().
		Timestamp().
		Str("service", serviceName)

	if cfg.Server.Debug {
		ctx = ctx.Caller()
	}

	logger = ctx.Logger()
	log.Logger = logger
}

// buildWriters 组装输出目标：调试模式用控制台格式，否则保持 JSON；可选文件轮转.
func buildWriters(cfg *configs.AppConfig) []io.Writer {
	var writers []io.Writer

	if cfg.Server.Debug {
		writers = append(writers, zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
			w.Out = os.Stderr
			w.TimeFormat = time.Kitchen
		}))
	} else {
		writers = append(writers, os.Stderr)
	}

	if cfg.Log.EnableFile {
		writers = append(writers, &lumberjack.Logger{
			Filename:   cfg.Log.FilePath,
			MaxSize:    cfg.Log.MaxSize,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAge:     cfg.Log.MaxAge,
			Compress:   cfg.Log.Compress,
		})
	}

	return writers
}

// GinWriter 把 Gin 的文本日志行转发为固定级别的 zerolog 事件.
type GinWriter struct {
	logger *zerolog.Logger
	level  zerolog.Level
}

func NewGinWriter(logger *zerolog.Logger, level zerolog.Level) *GinWriter {
	return &GinWriter{logger: logger, level: level}
}

func (w *GinWriter) Write(p []byte) (int, error) {
	if msg := strings.TrimSpace(string(p)); msg != "" {
		w.logger.WithLevel(w.level).Msg(msg)
	}

	return len(p), nil
}
