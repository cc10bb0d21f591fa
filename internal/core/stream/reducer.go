// Package stream 提供订阅流的归并与发布实现
//
// 🌊 **流归并组件 (Stream Reducer Component)**
//
// 本文件实现订阅流状态的归并逻辑，专注于：
// - 去重累积：按事件标识去重，保持首次出现顺序追加
// - 难度过滤：声明难度缺失、不足或未经证明的事件被静默丢弃
// - 恒等优化：批次归并后无实际变化时状态保持不变
//
// 🎯 **职责边界**：
// - 专门负责状态归并的纯逻辑
// - 去抖发布由subscription.go负责
// - 难度判定复用pow包的纯函数
//
// ⚠️ **过滤约定**：
// 难度过滤丢弃的事件没有任何错误信号，缺席即是唯一可观察结果；
// 仅声明难度而摘要不满足声明值的事件同样被丢弃。
package stream

import (
	"sync"

	"github.com/13x-tech/snort/internal/core/nostr"
	"github.com/13x-tech/snort/internal/core/pow"
)

// Snapshot 归并状态的只读快照
type Snapshot struct {
	// Records 按首次出现顺序排列的去重事件
	Records []*nostr.Record

	// Complete 上游是否已通知批次结束
	Complete bool
}

// Reducer 订阅流状态归并器
//
// 📝 **字段说明**：
// - records: 累积的去重事件，仅追加
// - seen: 已收录的事件标识
// - complete: 上游结束标志
type Reducer struct {
	mu       sync.Mutex
	records  []*nostr.Record
	seen     map[string]struct{}
	complete bool
}

// NewReducer 创建归并器
func NewReducer() *Reducer {
	return &Reducer{seen: make(map[string]struct{})}
}

// ApplyBatch 归并一个批次
//
// 📋 **归并流程**：
// 1. minDifficulty > 0时按声明难度过滤（声明值须有证明支撑）
// 2. 丢弃已收录标识的事件
// 3. 剩余事件按批次顺序追加到现有顺序之后
//
// 返回状态是否发生变化；批次被完全过滤或去重时状态保持不变。
func (r *Reducer) ApplyBatch(batch []*nostr.Record, minDifficulty uint32) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	var changed bool
	for _, record := range batch {
		if record == nil || record.ID == "" {
			continue
		}
		if minDifficulty > 0 && !provenAtLeast(record, minDifficulty) {
			continue
		}
		if _, dup := r.seen[record.ID]; dup {
			continue
		}

		r.seen[record.ID] = struct{}{}
		r.records = append(r.records, record)
		changed = true
	}
	return changed
}

// SetEnd 设置上游结束标志
// 返回标志是否发生变化
func (r *Reducer) SetEnd(end bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.complete == end {
		return false
	}
	r.complete = end
	return true
}

// Clear 清空累积事件
// 结束标志保持原值不变
func (r *Reducer) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records = nil
	r.seen = make(map[string]struct{})
}

// Snapshot 获取当前状态快照
// 事件列表为副本，事件本身共享引用（事件不可变）
func (r *Reducer) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	records := make([]*nostr.Record, len(r.records))
	copy(records, r.records)
	return Snapshot{
		Records:  records,
		Complete: r.complete,
	}
}

// IDs 获取累积事件的标识列表（首次出现顺序）
func (r *Reducer) IDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, 0, len(r.records))
	for _, record := range r.records {
		ids = append(ids, record.ID)
	}
	return ids
}

// Len 当前累积的事件数
func (r *Reducer) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

// provenAtLeast 判定事件是否携带不低于阈值的已证明难度
//
// 事件须声明难度且声明值不低于阈值，同时其携带的标识
// 必须在声明难度下通过摘要复核，否则视为未经证明。
func provenAtLeast(record *nostr.Record, minDifficulty uint32) bool {
	declared, ok := pow.ExtractDeclaredDifficulty(record)
	if !ok || declared < minDifficulty {
		return false
	}

	digest, err := record.IDBytes()
	if err != nil {
		return false
	}
	return pow.CheckDifficulty(digest, declared)
}
