// Package queue 定义消息主题常量，供发布/订阅使用.
package queue

// 主题命名规范：ts.<域>.<动作>，尽量稳定且向后兼容.
// 域：session(分享会话)、file(会话内文件)
// 动作：created/deleted/swept/added/downloaded

const (
	// 会话领域.
	TopicSessionCreated  = "ts.session.created"  // 新会话已创建并落盘
	TopicSessionDeleted  = "ts.session.deleted"  // 会话被删除（所有者主动或过期清扫）
	TopicSessionSwept    = "ts.session.swept"    // 一轮过期清扫完成（含统计）
	TopicSessionAccessed = "ts.session.accessed" // 会话被访问码查询命中

	// 文件领域.
	TopicFileAdded      = "ts.file.added"      // 文件加入会话（资产已写入对象存储）
	TopicFileDownloaded = "ts.file.downloaded" // 文件被下载（计数已递增）
)

// 主题分组，用于批量订阅.
var (
	// 会话相关主题集合.
	SessionTopics = []string{
		TopicSessionCreated, TopicSessionDeleted,
		TopicSessionSwept, TopicSessionAccessed,
	}

	// 文件相关主题集合.
	FileTopics = []string{
		TopicFileAdded, TopicFileDownloaded,
	}
)
