package expiry_test

import (
	"testing"
	"time"

	"github.com/yeisme/tempshare/pkg/internal/expiry"
)

// TestComputeExpiry 测试过期时间戳随时间单调推进.
func TestComputeExpiry(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	current := base

	p := expiry.NewPolicy(time.Hour, func() time.Time { return current })

	expires := p.ComputeExpiry()

	// 刚创建时未过期
	if p.IsExpired(expires) {
		t.Error("expiry should not have passed at creation time")
	}

	// 刚好差一秒也未过期
	current = base.Add(time.Hour - time.Second)
	if p.IsExpired(expires) {
		t.Error("expiry should not have passed one second early")
	}

	// 到达边界即过期（now >= expires_at）
	current = base.Add(time.Hour)
	if !p.IsExpired(expires) {
		t.Error("expiry should have passed exactly at the deadline")
	}

	current = base.Add(time.Hour + time.Second)
	if !p.IsExpired(expires) {
		t.Error("expiry should have passed after the deadline")
	}
}

// TestIsExpiredZeroValue 测试零值时间戳永不过期.
func TestIsExpiredZeroValue(t *testing.T) {
	p := expiry.NewPolicy(time.Hour, nil)

	if p.IsExpired(0) {
		t.Error("zero timestamp must never expire")
	}
}
