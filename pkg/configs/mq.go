package configs

import (
	"github.com/spf13/viper"
)

const (
	DefaultMQEnabled     = false // 默认不启用消息队列，单机部署可完全离线运行
	DefaultMQURL         = "localhost:4222"
	DefaultMQClientID    = "tempshare-app"
	DefaultMaxReconnects = 5 // 默认最大重连次数
	DefaultReconnectWait = 5 // 默认重连等待时间（秒）

	// JetStream 流配置常量.

	DefaultStreamMaxMsgs  = 100000            // 默认流最大消息数
	DefaultStreamMaxBytes = 256 * 1024 * 1024 // 默认流最大字节数 (256MB)
	DefaultStreamMaxAge   = 24                // 默认流最大年龄 (小时)
)

// MQConfig 消息队列配置（NATS）.
type MQConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	URL           string `mapstructure:"url"            rule:"omitempty,hostname_port"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	ClientID      string `mapstructure:"client_id"`
	MaxReconnects int    `mapstructure:"max_reconnects" rule:"min=0,max=100"`
	ReconnectWait int    `mapstructure:"reconnect_wait" rule:"min=1,max=300"`

	JetStreamEnabled bool   `mapstructure:"jetstream_enabled"`
	StreamName       string `mapstructure:"stream_name"`
	SubjectPrefix    string `mapstructure:"subject_prefix"`
	StreamMaxMsgs    int64  `mapstructure:"stream_max_msgs"`
	StreamMaxBytes   int64  `mapstructure:"stream_max_bytes"`
	StreamMaxAge     int    `mapstructure:"stream_max_age"`
}

// setDefaults 设置MQ配置的默认值.
func (c *MQConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("mq.enabled", DefaultMQEnabled)
	v.SetDefault("mq.url", DefaultMQURL)
	v.SetDefault("mq.user", "")
	v.SetDefault("mq.password", "")
	v.SetDefault("mq.client_id", DefaultMQClientID)
	v.SetDefault("mq.max_reconnects", DefaultMaxReconnects)
	v.SetDefault("mq.reconnect_wait", DefaultReconnectWait)

	v.SetDefault("mq.jetstream_enabled", false)
	v.SetDefault("mq.stream_name", "tempshare-stream")
	v.SetDefault("mq.subject_prefix", "tempshare.")
	v.SetDefault("mq.stream_max_msgs", DefaultStreamMaxMsgs)
	v.SetDefault("mq.stream_max_bytes", DefaultStreamMaxBytes)
	v.SetDefault("mq.stream_max_age", DefaultStreamMaxAge)
}
