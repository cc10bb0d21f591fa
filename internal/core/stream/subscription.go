// 订阅流封装
//
// 📡 **订阅流组件 (Stream Subscription Component)**
//
// 本文件实现单个订阅流的完整生命周期，专注于：
// - 上游信号接收：OnBatch/OnEnd由外部订阅源驱动
// - 去抖发布：状态变更合并后经事件总线对外发布
// - 旁路追踪：累积ID列表与时间窗口独立去抖后写入缓存
//
// 🎯 **职责边界**：
// - 不主动发起或终止上游订阅，仅消费其信号
// - 归并逻辑委托给reducer.go
//
// ⚠️ **去抖约定**：
// 发布与追踪使用相互独立的去抖窗口，窗口内的连续变更
// 只产生一次对外效果；窗口为尾沿触发，每次变更重置计时。
package stream

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	streamconfig "github.com/13x-tech/snort/internal/config/stream"
	"github.com/13x-tech/snort/internal/core/nostr"
	"github.com/13x-tech/snort/pkg/interfaces/infrastructure/event"
	"github.com/13x-tech/snort/pkg/interfaces/infrastructure/log"
	"github.com/13x-tech/snort/pkg/interfaces/infrastructure/storage"
	"github.com/13x-tech/snort/pkg/types"
)

// feedKeyPrefix 追踪同步的缓存键前缀
const feedKeyPrefix = "feed:"

// FeedTrack 追踪同步写入缓存的内容
//
// 记录订阅流累积的事件标识与时间窗口边界，
// 供外部协作方在重建订阅时恢复已见集合。
type FeedTrack struct {
	IDs   []string `json:"ids"`
	Since int64    `json:"since"`
	Until int64    `json:"until"`
}

// debouncer 尾沿去抖器
// 每次触发重置计时，窗口静默后执行一次回调
type debouncer struct {
	mu     sync.Mutex
	window time.Duration
	fn     func()
	timer  *time.Timer
	closed bool
}

func newDebouncer(window time.Duration, fn func()) *debouncer {
	return &debouncer{window: window, fn: fn}
}

// trigger 触发去抖器，重置静默窗口
// 窗口为零时立即同步执行
func (d *debouncer) trigger() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	if d.window <= 0 {
		d.mu.Unlock()
		d.fn()
		return
	}
	if d.timer == nil {
		d.timer = time.AfterFunc(d.window, d.fire)
	} else {
		d.timer.Reset(d.window)
	}
	d.mu.Unlock()
}

func (d *debouncer) fire() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.mu.Unlock()
	d.fn()
}

// stop 停止去抖器，丢弃未触达的回调
func (d *debouncer) stop() {
	d.mu.Lock()
	d.closed = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.mu.Unlock()
}

// Subscription 单个订阅流
//
// 📝 **字段说明**：
// - id: 订阅标识，决定发布主题与追踪缓存键
// - reducer: 状态归并器
// - publishDeb: 状态发布去抖器
// - trackDeb: ID追踪同步去抖器
type Subscription struct {
	id      types.SubscriptionID
	logger  log.Logger
	bus     event.EventBus
	store   storage.MemoryStore
	options *streamconfig.StreamOptions
	reducer *Reducer

	publishDeb *debouncer
	trackDeb   *debouncer
}

// NewSubscription 创建订阅流
// 新订阅周期从未完成状态开始
func NewSubscription(logger log.Logger, bus event.EventBus, store storage.MemoryStore,
	options *streamconfig.StreamOptions, id types.SubscriptionID) *Subscription {

	sub := &Subscription{
		id:      id,
		logger:  logger,
		bus:     bus,
		store:   store,
		options: options,
		reducer: NewReducer(),
	}
	sub.publishDeb = newDebouncer(options.PublishDebounce(), sub.publish)
	sub.trackDeb = newDebouncer(options.TrackDebounce(), sub.track)
	return sub
}

// ID 返回订阅标识
func (s *Subscription) ID() types.SubscriptionID {
	return s.id
}

// OnBatch 接收上游批次
// 归并产生实际变化时才触发发布与追踪去抖器
func (s *Subscription) OnBatch(records []*nostr.Record) {
	if !s.reducer.ApplyBatch(records, s.options.MinDifficulty) {
		return
	}
	s.publishDeb.trigger()
	s.trackDeb.trigger()
}

// OnEnd 接收上游结束信号
func (s *Subscription) OnEnd() {
	if s.reducer.SetEnd(true) {
		s.publishDeb.trigger()
	}
}

// Clear 清空累积状态（结束标志保持不变）
func (s *Subscription) Clear() {
	s.reducer.Clear()
	s.publishDeb.trigger()
	s.trackDeb.trigger()
}

// Snapshot 获取当前归并状态
func (s *Subscription) Snapshot() Snapshot {
	return s.reducer.Snapshot()
}

// Close 停止去抖器并做最后一次追踪同步
func (s *Subscription) Close() {
	s.publishDeb.stop()
	s.trackDeb.stop()
	s.track()
}

// publish 对外发布当前状态快照
func (s *Subscription) publish() {
	snapshot := s.reducer.Snapshot()
	s.bus.Publish(types.StreamUpdatedTopic(s.id), snapshot)
	s.logger.Debugf("发布订阅流状态: 订阅=%s, 事件数=%d, 完成=%v",
		s.id, len(snapshot.Records), snapshot.Complete)
}

// track 将累积ID列表与时间窗口同步到缓存
// 本周期的ID并入先前追踪的集合，时间窗口取合并后的边界
func (s *Subscription) track() {
	if s.store == nil {
		return
	}

	key := feedKeyPrefix + string(s.id)
	trackData := s.loadTrack(key)
	known := make(map[string]struct{}, len(trackData.IDs))
	for _, id := range trackData.IDs {
		known[id] = struct{}{}
	}

	snapshot := s.reducer.Snapshot()
	for _, record := range snapshot.Records {
		if _, ok := known[record.ID]; !ok {
			known[record.ID] = struct{}{}
			trackData.IDs = append(trackData.IDs, record.ID)
		}
		if trackData.Since == 0 || record.CreatedAt < trackData.Since {
			trackData.Since = record.CreatedAt
		}
		if record.CreatedAt > trackData.Until {
			trackData.Until = record.CreatedAt
		}
	}

	payload, err := json.Marshal(trackData)
	if err != nil {
		s.logger.Errorf("编码追踪数据失败: 订阅=%s, 错误=%v", s.id, err)
		return
	}

	if err := s.store.Set(context.Background(), key, payload, 0); err != nil {
		s.logger.Warnf("追踪同步失败: 订阅=%s, 错误=%v", s.id, err)
	}
}

// loadTrack 读取先前追踪的集合，不存在或损坏时从空集开始
func (s *Subscription) loadTrack(key string) FeedTrack {
	var trackData FeedTrack

	payload, ok, err := s.store.Get(context.Background(), key)
	if err != nil || !ok {
		return trackData
	}
	if err := json.Unmarshal(payload, &trackData); err != nil {
		s.logger.Warnf("解析历史追踪数据失败: 订阅=%s, 错误=%v", s.id, err)
		return FeedTrack{}
	}
	return trackData
}
