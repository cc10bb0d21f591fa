// Package pending 提供工作量证明任务的注册与编排实现
//
// 📋 **任务注册表组件 (Task Registry Component)**
//
// 本文件实现待处理任务的有序注册表，专注于：
// - 有序登记：任务按登记顺序维护，终态任务移至队尾
// - 终态迁移：仅允许从进行中状态迁移到终态，保证恰好一次
// - 变更通知：每次结构变化经事件总线发布pending.changed
//
// 🎯 **职责边界**：
// - 专门负责任务状态的登记与查询
// - 不涉及挖矿调度（由orchestrator.go负责）
// - 不涉及难度判定（由pow包负责）
//
// ⚠️ **并发约定**：
// 所有公开方法持锁执行，返回的任务均为副本，
// 调用方不会观察到注册表内部的可变状态。
package pending

import (
	"sort"
	"sync"
	"time"

	"github.com/13x-tech/snort/internal/core/nostr"
	"github.com/13x-tech/snort/pkg/interfaces/infrastructure/event"
	"github.com/13x-tech/snort/pkg/types"
)

// Status 任务状态
type Status string

const (
	// StatusPending 任务进行中，挖矿尚未结束
	StatusPending Status = "pending"

	// StatusSent 求解成功且结果已交付
	StatusSent Status = "sent"

	// StatusTimedOut 在超时窗口内未找到解
	StatusTimedOut Status = "timed out"

	// StatusInvalid 后端结果未通过校验
	StatusInvalid Status = "invalid"

	// StatusCanceled 任务被外部取消
	StatusCanceled Status = "canceled"

	// StatusError 挖矿过程的其他内部故障
	StatusError Status = "unknown error"
)

// IsTerminal 判断状态是否为终态
func (s Status) IsTerminal() bool {
	return s != StatusPending
}

// Task 待处理的工作量证明任务
//
// ID为事件求解前的内容标识（pendingId），在整个任务
// 生命周期内保持稳定，求解后的事件携带新标识。
type Task struct {
	ID        string        // 求解前的事件标识（十六进制）
	Kind      int           // 事件类型
	Target    uint32        // 目标难度
	Record    *nostr.Record // 登记时的事件快照
	Status    Status        // 当前状态
	Message   string        // 终态附加说明
	StartedAt time.Time     // 登记时间

	// gen 任务代次，区分同一事件标识下被替换的新旧任务。
	// 旧任务协程的信号因代次不匹配而被拒绝。
	gen uint64
}

// clone 复制任务（事件深拷贝）
func (t *Task) clone() Task {
	copied := *t
	if t.Record != nil {
		copied.Record = t.Record.Clone()
	}
	return copied
}

// Registry 有序任务注册表
//
// 📝 **字段说明**：
// - bus: 事件总线，发布pending.changed变更通知
// - tasks: 按登记顺序排列的任务列表，终态任务移至队尾
type Registry struct {
	mu    sync.RWMutex
	bus   event.EventBus
	tasks []*Task
}

// NewRegistry 创建任务注册表
func NewRegistry(bus event.EventBus) *Registry {
	return &Registry{bus: bus}
}

// Add 登记新任务
// 同一标识的旧任务（无论状态）会被替换，新任务追加到队尾。
func (r *Registry) Add(task *Task) {
	r.mu.Lock()
	r.removeLocked(task.ID)
	r.tasks = append(r.tasks, task)
	r.mu.Unlock()

	r.notify(task.ID)
}

// Transition 将任务迁移到终态
//
// 仅当任务存在且仍处于进行中状态时迁移成功，
// 迁移后任务被移至队尾（最近结束的任务排在最后）。
// 返回值指示迁移是否发生，调用方据此保证终态处理恰好一次。
func (r *Registry) Transition(id string, status Status, message string) bool {
	return r.transitionMatch(id, func(*Task) bool { return true }, status, message)
}

// transitionOwned 代次受限的终态迁移
// 仅当登记任务的代次与调用方持有的代次一致时迁移，
// 被替换任务的协程信号因此不会落到同标识的新任务上。
func (r *Registry) transitionOwned(id string, gen uint64, status Status, message string) bool {
	return r.transitionMatch(id, func(t *Task) bool { return t.gen == gen }, status, message)
}

func (r *Registry) transitionMatch(id string, match func(*Task) bool, status Status, message string) bool {
	if !status.IsTerminal() {
		return false
	}

	r.mu.Lock()
	idx := r.indexLocked(id)
	if idx < 0 || r.tasks[idx].Status != StatusPending || !match(r.tasks[idx]) {
		r.mu.Unlock()
		return false
	}

	task := r.tasks[idx]
	task.Status = status
	task.Message = message

	// 移至队尾
	r.tasks = append(r.tasks[:idx], r.tasks[idx+1:]...)
	r.tasks = append(r.tasks, task)
	r.mu.Unlock()

	r.notify(id)
	return true
}

// Remove 删除任务
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	removed := r.removeLocked(id)
	r.mu.Unlock()

	if removed {
		r.notify(id)
	}
	return removed
}

// removeOwned 代次受限的任务删除
// 用于宽限期清除，避免误删同标识的替换任务
func (r *Registry) removeOwned(id string, gen uint64) bool {
	r.mu.Lock()
	idx := r.indexLocked(id)
	if idx < 0 || r.tasks[idx].gen != gen {
		r.mu.Unlock()
		return false
	}
	r.tasks = append(r.tasks[:idx], r.tasks[idx+1:]...)
	r.mu.Unlock()

	r.notify(id)
	return true
}

// Get 查询任务副本
func (r *Registry) Get(id string) (Task, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx := r.indexLocked(id)
	if idx < 0 {
		return Task{}, false
	}
	return r.tasks[idx].clone(), true
}

// Snapshot 获取全部任务的有序副本
func (r *Registry) Snapshot() []Task {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot := make([]Task, 0, len(r.tasks))
	for _, task := range r.tasks {
		snapshot = append(snapshot, task.clone())
	}
	return snapshot
}

// SortedByStart 获取按登记时间排序的任务副本
// 用于展示层按开始时间呈现任务列表，不受终态移位影响
func (r *Registry) SortedByStart() []Task {
	tasks := r.Snapshot()
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].StartedAt.Before(tasks[j].StartedAt)
	})
	return tasks
}

// Pending 获取仍在进行中的任务标识
func (r *Registry) Pending() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var ids []string
	for _, task := range r.tasks {
		if task.Status == StatusPending {
			ids = append(ids, task.ID)
		}
	}
	return ids
}

// FailAllPending 将所有进行中任务批量迁移到指定终态
// 用于关停时统一收尾，返回迁移的任务数。
func (r *Registry) FailAllPending(status Status, message string) int {
	if !status.IsTerminal() {
		return 0
	}

	r.mu.Lock()
	var count int
	for _, task := range r.tasks {
		if task.Status == StatusPending {
			task.Status = status
			task.Message = message
			count++
		}
	}
	r.mu.Unlock()

	if count > 0 {
		r.notify("")
	}
	return count
}

// Len 当前登记的任务数
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tasks)
}

// indexLocked 查找任务下标，须持锁调用
func (r *Registry) indexLocked(id string) int {
	for i, task := range r.tasks {
		if task.ID == id {
			return i
		}
	}
	return -1
}

// removeLocked 删除任务，须持锁调用
func (r *Registry) removeLocked(id string) bool {
	idx := r.indexLocked(id)
	if idx < 0 {
		return false
	}
	r.tasks = append(r.tasks[:idx], r.tasks[idx+1:]...)
	return true
}

// notify 发布注册表变更通知
func (r *Registry) notify(id string) {
	if r.bus != nil {
		r.bus.Publish(types.EventTypePendingChanged, id)
	}
}
