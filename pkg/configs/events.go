package configs

import "github.com/spf13/viper"

// EventsConfig 控制事件发布的开关（全局与分主题）。
type EventsConfig struct {
	Enabled bool                `mapstructure:"enabled"` // 总开关
	Session SessionEventsConfig `mapstructure:"session"`
}

// SessionEventsConfig 针对会话领域的事件开关。
type SessionEventsConfig struct {
	Created   bool `mapstructure:"created"`
	FileAdded bool `mapstructure:"file_added"`
	Deleted   bool `mapstructure:"deleted"`
	Swept     bool `mapstructure:"swept"`
}

func (c *EventsConfig) setDefaults(v *viper.Viper) {
	// 总开关：默认启用事件系统（MQ 未启用时自动降级为空操作）
	v.SetDefault("events.enabled", true)

	v.SetDefault("events.session.created", true)
	v.SetDefault("events.session.file_added", false)
	v.SetDefault("events.session.deleted", true)
	v.SetDefault("events.session.swept", true)
}
