package code_test

import (
	"strings"
	"testing"

	"github.com/yeisme/tempshare/pkg/internal/code"
)

// TestGenerateShape 测试生成码的长度与字符集.
func TestGenerateShape(t *testing.T) {
	c := code.Generate(code.AccessCodeLength, nil)

	if len(c) != code.AccessCodeLength {
		t.Fatalf("expected length %d, got %d (%q)", code.AccessCodeLength, len(c), c)
	}

	for _, ch := range c {
		if !strings.ContainsRune(code.Alphabet, ch) {
			t.Errorf("character %q not in alphabet", ch)
		}
	}
}

// TestGenerateUniqueness 测试连续生成的码两两不同.
func TestGenerateUniqueness(t *testing.T) {
	const n = 1000

	seen := make(map[string]struct{}, n)

	for range n {
		c := code.Generate(code.OwnerCodeLength, seen)
		if _, dup := seen[c]; dup {
			t.Fatalf("duplicate code generated: %s", c)
		}

		seen[c] = struct{}{}
	}
}

// TestGenerateAvoidsExisting 测试生成时避开排除集合.
func TestGenerateAvoidsExisting(t *testing.T) {
	existing := map[string]struct{}{}

	for range 500 {
		existing[code.Generate(6, existing)] = struct{}{}
	}

	c := code.Generate(6, existing)
	if _, used := existing[c]; used {
		t.Errorf("generated code %s collides with exclusion set", c)
	}
}

// TestGenerateClampsLength 测试非法长度回退为默认访问码长度.
func TestGenerateClampsLength(t *testing.T) {
	for _, bad := range []int{0, -3, 5, 17} {
		if got := len(code.Generate(bad, nil)); got != code.AccessCodeLength {
			t.Errorf("length %d: expected clamp to %d, got %d", bad, code.AccessCodeLength, got)
		}
	}
}

// TestNormalizeOwnerCode 测试所有者码归一化.
func TestNormalizeOwnerCode(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"own1-2345-678", "OWN12345678"},
		{"abc DEF 123", "ABCDEF123"},
		{"A1B2C3D4E5F6", "A1B2C3D4E5F6"},
		{"--__!!", ""},
	}

	for _, tc := range cases {
		if got := code.NormalizeOwnerCode(tc.in); got != tc.want {
			t.Errorf("NormalizeOwnerCode(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
