// Package expiry 提供固定有效期策略：计算过期时间戳并判断是否已过期.
package expiry

import "time"

// Policy 固定有效期策略. 时间戳使用秒级浮点（Unix epoch），与元数据文件中的持久化格式一致.
type Policy struct {
	duration time.Duration
	now      func() time.Time
}

// NewPolicy 创建固定有效期策略. now 为空时使用 time.Now.
func NewPolicy(duration time.Duration, now func() time.Time) *Policy {
	if now == nil {
		now = time.Now
	}

	return &Policy{duration: duration, now: now}
}

// NowTS 返回当前时间的秒级浮点时间戳.
func (p *Policy) NowTS() float64 {
	return toTS(p.now())
}

// ComputeExpiry 返回 now + duration 的时间戳.
func (p *Policy) ComputeExpiry() float64 {
	return toTS(p.now().Add(p.duration))
}

// IsExpired 判断给定时间戳是否已过期. 零值（未设置过期时间）永不过期，
// 仅作为防御性兜底，正常创建的会话总是带有过期时间.
func (p *Policy) IsExpired(expiresAt float64) bool {
	if expiresAt == 0 {
		return false
	}

	return toTS(p.now()) >= expiresAt
}

// Duration 返回固定有效期.
func (p *Policy) Duration() time.Duration {
	return p.duration
}

func toTS(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
