// Package configs 管理应用程序配置，包括服务器、存储和消息队列的配置信息.
// configs 包支持多种配置格式（YAML、JSON、TOML、dotenv）并启用热重载.
//
// Example:
//
//	err := configs.InitConfig("./")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	config := configs.GetConfig()
//	fmt.Println(config.Server.Port)
package configs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// AppVersion 应用版本号.
const AppVersion = "0.3.0"

type (
	// AppConfig 全局应用程序配置.
	AppConfig struct {
		Server  ServerConfig         `mapstructure:"server"`  // 服务器端口、调试等
		Store   StoreConfig          `mapstructure:"store"`   // 会话元数据存储与过期策略
		S3      S3Config             `mapstructure:"s3"`      // 对象存储（资产存储）配置
		MQ      MQConfig             `mapstructure:"mq"`      // 消息队列配置
		Events  EventsConfig         `mapstructure:"events"`  // 事件发布开关
		Log     LogConfig            `mapstructure:"log"`     // 日志相关配置
		Metrics MetricsConfig        `mapstructure:"metrics"` // 监控指标配置
		Tracing TracingConfig        `mapstructure:"tracing"` // 分布式追踪配置
		Breaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
	}
)

var (
	// globalConfig 全局配置实例.
	globalConfig AppConfig
	// appViper 全局 Viper 实例.
	appViper *viper.Viper
)

// InitConfig 加载应用程序配置，支持多种格式(yaml、json、toml、dotenv)并启用热重载.
func InitConfig(path string) error {
	appViper = viper.New()
	setAllDefaults(appViper)

	// path 可以是配置文件也可以是目录
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		appViper.SetConfigFile(path)
	} else {
		appViper.SetConfigName("config")
		appViper.AddConfigPath(path)
		appViper.AddConfigPath(path + "/configs")

		exts := []string{"yaml", "yml", "json", "toml", "env", "dotenv"}

		for _, ext := range exts {
			cfg := filepath.Join(path, "config."+ext)
			if _, err := os.Stat(cfg); err == nil {
				appViper.SetConfigFile(cfg)

				break
			}
		}
	}

	appViper.AutomaticEnv()
	appViper.SetEnvPrefix("TEMPSHARE")

	if err := appViper.ReadInConfig(); err != nil {
		// 缺省配置文件不是错误，环境变量与默认值足够启动
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := appViper.Unmarshal(&globalConfig); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	reloadConfigs(appViper, globalConfig.Server.ReloadConfig)

	return nil
}

// setAllDefaults 设置所有配置的默认值.
func setAllDefaults(v *viper.Viper) {
	var serverConfig ServerConfig

	var storeConfig StoreConfig

	var s3Config S3Config

	var mqConfig MQConfig

	var eventsConfig EventsConfig

	var logConfig LogConfig

	var metricsConfig MetricsConfig

	var tracingConfig TracingConfig

	var breakerConfig CircuitBreakerConfig

	serverConfig.setDefaults(v)
	storeConfig.setDefaults(v)
	s3Config.setDefaults(v)
	mqConfig.setDefaults(v)
	eventsConfig.setDefaults(v)
	logConfig.setDefaults(v)
	metricsConfig.setDefaults(v)
	tracingConfig.setDefaults(v)
	breakerConfig.setDefaults(v)
}

func reloadConfigs(v *viper.Viper, isHotReload bool) {
	if !isHotReload {
		return
	}
	// 启用配置热重载
	v.OnConfigChange(func(e fsnotify.Event) {
		fmt.Println("Config file changed:", e.Name)
		fmt.Println("Reloading configuration...")

		if err := v.Unmarshal(&globalConfig); err != nil {
			fmt.Printf("Error reloading config: %v\n", err)
		}
	})
	v.WatchConfig()
}

// GetConfig 返回全局配置实例.
func GetConfig() *AppConfig {
	return &globalConfig
}

func GetViper() *viper.Viper {
	return appViper
}
