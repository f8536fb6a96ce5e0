// Package code 生成访问码与所有者码：固定字符集随机短码，带有限次数的碰撞重试.
package code

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// Alphabet 码字符集：大写字母 + 数字，共 36 个符号.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

const (
	// AccessCodeLength 访问码默认长度.
	AccessCodeLength = 6
	// OwnerCodeLength 所有者码默认长度.
	OwnerCodeLength = 12

	// maxAttempts 碰撞重试的上限. 超过后直接返回最后一次随机结果，
	// 调用方需容忍理论上（天文数字级小概率）的重复.
	maxAttempts = 100
)

// Generate 生成指定长度的随机码，避开 existing 中已有的值.
// 重试 maxAttempts 次仍碰撞时返回未复查的最终随机结果.
func Generate(length int, existing map[string]struct{}) string {
	if length < 6 || length > 16 {
		length = AccessCodeLength
	}

	for range maxAttempts {
		c := Random(length)
		if _, used := existing[c]; !used {
			return c
		}
	}

	// fallback（几乎不可能走到）
	return Random(length)
}

// Random 均匀随机地生成一个长度为 length 的码，不做长度约束与排除检查.
// 用于文件 ID 等不要求全局唯一的短后缀.
func Random(length int) string {
	var b strings.Builder

	b.Grow(length)

	alphabetLen := big.NewInt(int64(len(Alphabet)))
	for range length {
		n, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			// crypto/rand 不可用属于环境级故障，直接 panic 比静默弱随机更安全
			panic("code: crypto/rand failed: " + err.Error())
		}

		b.WriteByte(Alphabet[n.Int64()])
	}

	return b.String()
}

// NormalizeOwnerCode 归一化所有者码：剔除非字母数字字符并转为大写.
// 人工抄写常带连字符或空格，访问码则保持精确匹配，两者有意不对称.
func NormalizeOwnerCode(raw string) string {
	var b strings.Builder

	b.Grow(len(raw))

	for _, ch := range strings.ToUpper(raw) {
		if (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') {
			b.WriteRune(ch)
		}
	}

	return b.String()
}
