package nostr

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 🧪 测试规范化序列化的精确输出
func TestRecordSerialize(t *testing.T) {
	record := &Record{
		PubKey:    "abc123",
		CreatedAt: 1700000000,
		Kind:      1,
		Tags:      [][]string{{"e", "ref1"}, {"p", "ref2"}},
		Content:   "hello world",
	}

	serialized, err := record.Serialize()
	require.NoError(t, err)

	expected := `[0,"abc123",1700000000,1,[["e","ref1"],["p","ref2"]],"hello world"]`
	assert.Equal(t, expected, string(serialized))
}

// 🧪 测试空标签序列化为空数组而非null
func TestRecordSerializeNilTags(t *testing.T) {
	record := &Record{
		PubKey:    "abc",
		CreatedAt: 1,
		Kind:      1,
		Content:   "",
	}

	serialized, err := record.Serialize()
	require.NoError(t, err)
	assert.Equal(t, `[0,"abc",1,1,[],""]`, string(serialized))
}

// 🧪 测试HTML敏感字符不被转义
func TestRecordSerializeNoHTMLEscape(t *testing.T) {
	record := &Record{
		PubKey:    "abc",
		CreatedAt: 1,
		Kind:      1,
		Tags:      [][]string{},
		Content:   `a<b>&"c"`,
	}

	serialized, err := record.Serialize()
	require.NoError(t, err)
	assert.Equal(t, `[0,"abc",1,1,[],"a<b>&\"c\""]`, string(serialized))
}

// 🧪 测试标识计算的确定性与字段敏感性
func TestRecordComputeID(t *testing.T) {
	record := &Record{
		PubKey:    "deadbeef",
		CreatedAt: 1700000000,
		Kind:      1,
		Tags:      [][]string{},
		Content:   "test",
	}

	id1, err := record.ComputeID()
	require.NoError(t, err)
	assert.Len(t, id1, IDSize)

	id2, err := record.ComputeID()
	require.NoError(t, err)
	assert.Equal(t, id1, id2, "相同事件应产生相同标识")

	// 手工验证摘要
	serialized, err := record.Serialize()
	require.NoError(t, err)
	expected := sha256.Sum256(serialized)
	assert.Equal(t, expected[:], id1)

	// 任一字段变化都应改变标识
	modified := record.Clone()
	modified.Content = "test2"
	id3, err := modified.ComputeID()
	require.NoError(t, err)
	assert.NotEqual(t, id1, id3)

	modified = record.Clone()
	modified.CreatedAt = 1700000001
	id4, err := modified.ComputeID()
	require.NoError(t, err)
	assert.NotEqual(t, id1, id4)
}

// 🧪 测试十六进制标识编码与解码往返
func TestRecordComputeIDHex(t *testing.T) {
	record := &Record{PubKey: "ab", CreatedAt: 1, Kind: 1, Content: "x"}

	idHex, err := record.ComputeIDHex()
	require.NoError(t, err)
	assert.Len(t, idHex, IDSize*2)

	record.ID = idHex
	idBytes, err := record.IDBytes()
	require.NoError(t, err)

	decoded, err := hex.DecodeString(idHex)
	require.NoError(t, err)
	assert.Equal(t, decoded, idBytes)
}

// 🧪 测试克隆的深拷贝语义
func TestRecordClone(t *testing.T) {
	record := &Record{
		PubKey:    "ab",
		CreatedAt: 1,
		Kind:      1,
		Tags:      [][]string{{"e", "ref"}},
		Content:   "x",
	}

	clone := record.Clone()
	clone.Tags[0][1] = "changed"
	clone.Content = "y"

	assert.Equal(t, "ref", record.Tags[0][1], "克隆修改不应影响原事件")
	assert.Equal(t, "x", record.Content)
}

// 🧪 测试nonce标签替换与位置约定
func TestRecordSetNonce(t *testing.T) {
	record := &Record{
		PubKey:    "ab",
		CreatedAt: 1,
		Kind:      1,
		Tags:      [][]string{{"e", "ref"}, {"nonce", "5", "10"}},
		Content:   "x",
	}

	record.SetNonce(42, 20)

	require.Len(t, record.Tags, 2)
	assert.Equal(t, []string{"e", "ref"}, record.Tags[0])
	assert.Equal(t, []string{"nonce", "42", "20"}, record.Tags[1], "nonce标签应位于末尾且替换旧值")
}

// 🧪 测试无标签事件上的nonce写入
func TestRecordSetNonceEmptyTags(t *testing.T) {
	record := &Record{PubKey: "ab", CreatedAt: 1, Kind: 1, Content: "x"}

	record.SetNonce(0, 8)

	require.Len(t, record.Tags, 1)
	assert.Equal(t, []string{"nonce", "0", "8"}, record.Tags[0])
}
