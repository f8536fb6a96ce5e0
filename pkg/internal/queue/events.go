package queue

import "github.com/ThreeDotsLabs/watermill/message"

// -------------------------- 基于业务封装 events --------------------------

// PublishSessionCreated 发布 ts.session.created 事件.
// 会话元数据已落盘后调用，通知下游（统计、审计等）.
func PublishSessionCreated(pub message.Publisher, payload SessionCreatedPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicSessionCreated, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicSessionCreated, msg)
}

// PublishSessionDeleted 发布 ts.session.deleted 事件.
func PublishSessionDeleted(pub message.Publisher, payload SessionDeletedPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicSessionDeleted, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicSessionDeleted, msg)
}

// PublishSessionSwept 发布 ts.session.swept 事件，一轮清扫有移除动作时调用.
func PublishSessionSwept(pub message.Publisher, payload SessionSweptPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicSessionSwept, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicSessionSwept, msg)
}

// PublishSessionAccessed 发布 ts.session.accessed 事件.
func PublishSessionAccessed(pub message.Publisher, payload SessionAccessedPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicSessionAccessed, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicSessionAccessed, msg)
}

// PublishFileAdded 发布 ts.file.added 事件.
func PublishFileAdded(pub message.Publisher, payload FileAddedPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicFileAdded, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicFileAdded, msg)
}

// PublishFileDownloaded 发布 ts.file.downloaded 事件.
func PublishFileDownloaded(pub message.Publisher, payload FileDownloadedPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicFileDownloaded, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicFileDownloaded, msg)
}

// ParseSessionDeleted 将 Watermill 消息解析为强类型 Envelope（SessionDeletedPayload）.
func ParseSessionDeleted(msg *message.Message) (Message[SessionDeletedPayload], error) {
	return ParseWatermillMessage[SessionDeletedPayload](msg)
}

// ParseSessionCreated 将 Watermill 消息解析为强类型 Envelope（SessionCreatedPayload）.
func ParseSessionCreated(msg *message.Message) (Message[SessionCreatedPayload], error) {
	return ParseWatermillMessage[SessionCreatedPayload](msg)
}
