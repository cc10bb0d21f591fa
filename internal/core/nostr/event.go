// Package nostr 提供内容寻址事件的数据模型与规范化序列化实现
//
// 🧾 **事件身份组件 (Event Identity Component)**
//
// 本文件实现事件的规范化序列化和标识计算，专注于：
// - 规范化序列化：固定字段顺序的数组元组编码
// - 标识计算：UTF-8编码后的SHA-256摘要
// - 互操作性：与其他实现字节级一致
//
// 🎯 **职责边界**：
// - 专门负责事件结构与标识计算
// - 不涉及难度判定（由pow包负责）
// - 不涉及挖矿逻辑（由pow包负责）
//
// ⚠️ **互操作性约束**：
// 规范化元组为 (0, 作者公钥, 创建时间, 类型, 标签, 内容)，
// 创建时间必须以整数写出，任何字段顺序、数值格式或标签结构的
// 偏差都会破坏与其他一致实现之间的证明验证。
package nostr

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
)

// TagNonce 挖矿nonce标签的名称
const TagNonce = "nonce"

// IDSize 事件标识的字节长度（SHA-256摘要）
const IDSize = sha256.Size

// Record 内容寻址事件
//
// 事件一旦定稿即不可变；挖矿过程只修改私有副本上的nonce标签
// 和创建时间，再重新计算标识。
type Record struct {
	ID        string     `json:"id"`
	PubKey    string     `json:"pubkey"`
	CreatedAt int64      `json:"created_at"`
	Kind      int        `json:"kind"`
	Tags      [][]string `json:"tags"`
	Content   string     `json:"content"`
	Sig       string     `json:"sig,omitempty"`
}

// Serialize 构建事件的规范化序列化
//
// 输出为UTF-8编码的JSON数组：[0,"<pubkey>",<created_at>,<kind>,[...tags],"<content>"]
// 禁用HTML转义以保持与JSON.stringify的字节级一致。
func (r *Record) Serialize() ([]byte, error) {
	tags := r.Tags
	if tags == nil {
		tags = [][]string{}
	}

	payload := []interface{}{
		0,
		r.PubKey,
		r.CreatedAt,
		r.Kind,
		tags,
		r.Content,
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(payload); err != nil {
		return nil, fmt.Errorf("序列化事件失败: %w", err)
	}

	// Encode会追加换行符，规范化形式不包含它
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// ComputeID 计算事件的内容寻址标识（32字节摘要）
func (r *Record) ComputeID() ([]byte, error) {
	serialized, err := r.Serialize()
	if err != nil {
		return nil, err
	}

	digest := sha256.Sum256(serialized)
	return digest[:], nil
}

// ComputeIDHex 计算事件标识并编码为十六进制字符串
func (r *Record) ComputeIDHex() (string, error) {
	digest, err := r.ComputeID()
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(digest), nil
}

// IDBytes 解码事件携带的标识字段
func (r *Record) IDBytes() ([]byte, error) {
	digest, err := hex.DecodeString(r.ID)
	if err != nil {
		return nil, fmt.Errorf("解码事件标识失败: %w", err)
	}
	return digest, nil
}

// Clone 深拷贝事件
// 挖矿等修改性操作必须在副本上进行，原事件保持不可变
func (r *Record) Clone() *Record {
	clone := *r
	if r.Tags != nil {
		clone.Tags = make([][]string, len(r.Tags))
		for i, tag := range r.Tags {
			clone.Tags[i] = append([]string(nil), tag...)
		}
	}
	return &clone
}

// SetNonce 写入nonce标签
//
// 移除已有的nonce标签后，将 (nonce, 计数器, 目标难度) 作为最后一个
// 标签追加，计数器与目标难度均以十进制字符串写出。
func (r *Record) SetNonce(nonce uint64, target uint32) {
	tags := r.Tags[:0]
	for _, tag := range r.Tags {
		if len(tag) > 0 && tag[0] == TagNonce {
			continue
		}
		tags = append(tags, tag)
	}

	r.Tags = append(tags, []string{
		TagNonce,
		strconv.FormatUint(nonce, 10),
		strconv.FormatUint(uint64(target), 10),
	})
}
