// Package mq 提供基于 Watermill 库的消息队列操作接口，NATS 实现.
// 消息队列为可选能力：未启用时 Client 为 nil，发布方需容忍并降级为仅记日志.
//
// 使用示例：
//
//	ctx := context.Background()
//	client, err := mq.New(ctx)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	// 发布消息
//	msg := message.NewMessage(watermill.NewUUID(), []byte("hello world"))
//	err = client.Publish(ctx, "topic", msg)
//
//	// 订阅主题
//	ch, err := client.Subscribe(ctx, "topic")
package mq

import (
	"context"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/yeisme/tempshare/pkg/configs"
	tlog "github.com/yeisme/tempshare/pkg/log"
)

// Client 封装 watermill Publisher 与 Subscriber.
type Client struct {
	publisher  message.Publisher
	subscriber message.Subscriber
}

// Publish 便捷发布. Client 为 nil（MQ 未启用）时返回错误，调用方决定是否忽略.
func (c *Client) Publish(ctx context.Context, topic string, msgs ...*message.Message) error {
	if c == nil || c.publisher == nil {
		return fmt.Errorf("mq publisher not initialized")
	}

	for _, m := range msgs {
		if err := c.publisher.Publish(topic, m); err != nil {
			return err
		}
	}

	return nil
}

// Publisher 暴露底层 Publisher，供 queue 包的业务封装使用.
func (c *Client) Publisher() message.Publisher {
	if c == nil {
		return nil
	}

	return c.publisher
}

// Subscribe 便捷订阅.
func (c *Client) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	if c == nil || c.subscriber == nil {
		return nil, fmt.Errorf("mq subscriber not initialized")
	}

	ch, err := c.subscriber.Subscribe(ctx, topic)
	if err != nil {
		return nil, err
	}

	return ch, nil
}

// Close 关闭资源.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}

	var err error

	if c.publisher != nil {
		if e := c.publisher.Close(); e != nil {
			err = e
		}
	}

	if c.subscriber != nil {
		if e := c.subscriber.Close(); e != nil {
			err = e
		}
	}

	return err
}

var (
	mqOnce sync.Once
	mqInst *Client
	mqErr  error
)

// New 初始化消息队列（单例）. 配置未启用时返回 (nil, nil).
func New(ctx context.Context) (*Client, error) {
	mqOnce.Do(func() {
		cfg := configs.GetConfig().MQ
		if !cfg.Enabled {
			tlog.Logger().Info().Msg("MQ disabled, events will be logged only")
			return
		}

		logger := &zerologAdapter{l: tlog.Logger()}

		pub, sub, err := newNATSClient(ctx, &cfg, logger)
		if err != nil {
			mqErr = fmt.Errorf("init mq: %w", err)
			return
		}

		mqInst = &Client{publisher: pub, subscriber: sub}

		tlog.Logger().Info().Str("url", cfg.URL).Msg("MQ client initialized")
	})

	return mqInst, mqErr
}
