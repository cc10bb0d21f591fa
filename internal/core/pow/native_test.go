package pow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	clockimpl "github.com/13x-tech/snort/internal/core/infrastructure/clock"
	logimpl "github.com/13x-tech/snort/internal/core/infrastructure/log"
	"github.com/13x-tech/snort/internal/core/nostr"
	powif "github.com/13x-tech/snort/pkg/interfaces/pow"
)

func newTestMiner(t *testing.T) *NativeMiner {
	t.Helper()
	return NewNativeMiner(logimpl.GetLogger(), clockimpl.NewSystemClock(), 2)
}

func testRecord() *nostr.Record {
	return &nostr.Record{
		PubKey:    "deadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef",
		CreatedAt: 1700000000,
		Kind:      1,
		Tags:      [][]string{{"e", "ref"}},
		Content:   "mining test",
	}
}

// 🧪 测试低难度挖矿成功路径
func TestNativeMinerMine(t *testing.T) {
	miner := newTestMiner(t)
	original := testRecord()

	solved, err := miner.Mine(context.Background(), powif.Request{
		Threads:   2,
		TimeoutMs: 30000,
		Target:    8,
		Record:    original,
	})
	require.NoError(t, err)
	require.NotNil(t, solved)

	// 求解事件标识必须与内容一致且满足难度
	idHex, err := solved.ComputeIDHex()
	require.NoError(t, err)
	assert.Equal(t, idHex, solved.ID, "标识必须与序列化内容一致")

	digest, err := solved.IDBytes()
	require.NoError(t, err)
	assert.True(t, CheckDifficulty(digest, 8))

	// nonce标签声明的难度等于请求目标
	declared, ok := ExtractDeclaredDifficulty(solved)
	require.True(t, ok)
	assert.Equal(t, uint32(8), declared)

	// 原事件保持不可变
	assert.Empty(t, original.ID)
	assert.Len(t, original.Tags, 1)
}

// 🧪 测试目标难度为零的同步拒绝
func TestNativeMinerZeroTarget(t *testing.T) {
	miner := newTestMiner(t)

	_, err := miner.Mine(context.Background(), powif.Request{
		Target: 0,
		Record: testRecord(),
	})
	assert.ErrorIs(t, err, ErrZeroTarget)
}

// 🧪 测试目标超过摘要总位数
func TestNativeMinerTargetTooHigh(t *testing.T) {
	miner := newTestMiner(t)

	_, err := miner.Mine(context.Background(), powif.Request{
		Target: nostr.IDSize*8 + 1,
		Record: testRecord(),
	})
	assert.ErrorIs(t, err, ErrTargetTooHigh)
}

// 🧪 测试缺少事件的请求
func TestNativeMinerNilRecord(t *testing.T) {
	miner := newTestMiner(t)

	_, err := miner.Mine(context.Background(), powif.Request{Target: 8})
	assert.Error(t, err)
}

// 🧪 测试不可达难度下的超时分类
func TestNativeMinerTimeout(t *testing.T) {
	miner := newTestMiner(t)

	start := time.Now()
	_, err := miner.Mine(context.Background(), powif.Request{
		Threads:   2,
		TimeoutMs: 50,
		Target:    200, // 实际不可达
		Record:    testRecord(),
	})
	elapsed := time.Since(start)

	assert.ErrorIs(t, err, ErrMiningTimeout)
	assert.Less(t, elapsed, 5*time.Second, "超时后应快速返回")
}

// 🧪 测试外部取消分类
func TestNativeMinerCancel(t *testing.T) {
	miner := newTestMiner(t)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := miner.Mine(ctx, powif.Request{
		Threads:   2,
		TimeoutMs: 30000,
		Target:    200,
		Record:    testRecord(),
	})
	assert.True(t, errors.Is(err, ErrMiningCanceled))
}
