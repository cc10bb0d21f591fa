// Package pow 提供基于前导零位的工作量证明实现
//
// 📊 **难度判定组件 (Difficulty Checker Component)**
//
// 本文件专门实现工作量证明的难度判定算法，专注于：
// - 前导零位统计：逐字节统计事件标识的前导零位数
// - 难度判定：前导零位数与目标难度的比较
// - 声明难度提取：从nonce标签解析承诺的目标难度
//
// 🎯 **职责边界**：
// - 专门负责难度相关的纯函数计算
// - 不涉及挖矿逻辑（由native.go/wasm.go负责）
// - 不涉及后端管理（由engine.go负责）
//
// ⚠️ **判定约定**：
// - 目标难度0恒满足（零位要求为空）
// - 摘要位数不足目标难度时恒不满足
// - 摘要全零时前导零位数等于总位数
package pow

import (
	"math/bits"
	"strconv"

	"github.com/13x-tech/snort/internal/core/nostr"
)

// LeadingZeroBits 统计摘要的前导零位数
//
// 从最高位字节开始累计，遇到首个非零字节时
// 加上该字节自身的前导零位数后停止。
func LeadingZeroBits(digest []byte) uint32 {
	var count uint32
	for _, b := range digest {
		if b == 0 {
			count += 8
			continue
		}
		count += uint32(bits.LeadingZeros8(b))
		break
	}
	return count
}

// CheckDifficulty 判定摘要是否满足目标难度
//
// 满足条件：摘要的前导零位数 >= target。
// target为0时恒返回true；target超过摘要总位数时恒返回false。
func CheckDifficulty(digest []byte, target uint32) bool {
	if target == 0 {
		return true
	}
	if target > uint32(len(digest))*8 {
		return false
	}
	return LeadingZeroBits(digest) >= target
}

// ExtractDeclaredDifficulty 提取事件声明的目标难度
//
// 扫描首个恰好3元素的nonce标签，解析其第3个元素为十进制难度值。
// 元素数不为3的nonce标签视为未声明；没有合规nonce标签或
// 解析失败时第二个返回值为false。
func ExtractDeclaredDifficulty(r *nostr.Record) (uint32, bool) {
	if r == nil {
		return 0, false
	}
	for _, tag := range r.Tags {
		if len(tag) != 3 || tag[0] != nostr.TagNonce {
			continue
		}
		declared, err := strconv.ParseUint(tag[2], 10, 32)
		if err != nil {
			return 0, false
		}
		return uint32(declared), true
	}
	return 0, false
}
