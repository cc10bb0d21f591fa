package pow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/13x-tech/snort/internal/core/nostr"
)

// 🧪 测试前导零位统计
func TestLeadingZeroBits(t *testing.T) {
	tests := []struct {
		name     string
		digest   []byte
		expected uint32
	}{
		{"首字节最高位为1", []byte{0x80, 0x00}, 0},
		{"首字节为1", []byte{0x01, 0xff}, 7},
		{"一个零字节", []byte{0x00, 0xff}, 8},
		{"零字节后接半零字节", []byte{0x00, 0x0f}, 12},
		{"全零摘要", []byte{0x00, 0x00, 0x00}, 24},
		{"空摘要", []byte{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, LeadingZeroBits(tt.digest))
		})
	}
}

// 🧪 测试难度判定的边界行为
func TestCheckDifficulty(t *testing.T) {
	digest := []byte{0x00, 0x0f, 0xff} // 12个前导零位

	assert.True(t, CheckDifficulty(digest, 0), "目标难度0恒满足")
	assert.True(t, CheckDifficulty(digest, 1))
	assert.True(t, CheckDifficulty(digest, 12))
	assert.False(t, CheckDifficulty(digest, 13))
	assert.False(t, CheckDifficulty(digest, 25), "目标超过摘要总位数恒不满足")

	allZero := []byte{0x00, 0x00, 0x00}
	assert.True(t, CheckDifficulty(allZero, 24))
	assert.False(t, CheckDifficulty(allZero, 25))

	assert.True(t, CheckDifficulty([]byte{}, 0))
	assert.False(t, CheckDifficulty([]byte{}, 1))
}

// 🧪 测试声明难度提取
func TestExtractDeclaredDifficulty(t *testing.T) {
	record := &nostr.Record{
		Tags: [][]string{
			{"e", "ref"},
			{"nonce", "12345", "20"},
			{"nonce", "999", "42"},
		},
	}

	declared, ok := ExtractDeclaredDifficulty(record)
	assert.True(t, ok)
	assert.Equal(t, uint32(20), declared, "应取首个合规nonce标签")
}

// 🧪 测试缺失或畸形nonce标签
func TestExtractDeclaredDifficultyMissing(t *testing.T) {
	_, ok := ExtractDeclaredDifficulty(nil)
	assert.False(t, ok)

	_, ok = ExtractDeclaredDifficulty(&nostr.Record{})
	assert.False(t, ok)

	// 元素不足的nonce标签被跳过
	_, ok = ExtractDeclaredDifficulty(&nostr.Record{
		Tags: [][]string{{"nonce", "12345"}},
	})
	assert.False(t, ok)

	// 元素过多的nonce标签同样视为未声明
	_, ok = ExtractDeclaredDifficulty(&nostr.Record{
		Tags: [][]string{{"nonce", "12345", "20", "extra"}},
	})
	assert.False(t, ok)

	// 难度字段非数字
	_, ok = ExtractDeclaredDifficulty(&nostr.Record{
		Tags: [][]string{{"nonce", "12345", "abc"}},
	})
	assert.False(t, ok)
}
