package pow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	powconfig "github.com/13x-tech/snort/internal/config/pow"
	clockimpl "github.com/13x-tech/snort/internal/core/infrastructure/clock"
	logimpl "github.com/13x-tech/snort/internal/core/infrastructure/log"
	"github.com/13x-tech/snort/pkg/types"
)

func newPowOptions(t *testing.T, engine string) *powconfig.PowOptions {
	t.Helper()
	return powconfig.New(&types.UserPowConfig{Engine: &engine}).GetOptions()
}

// 🧪 测试none模式下的后端访问
func TestEngineNoBackend(t *testing.T) {
	engine, err := NewEngine(logimpl.GetLogger(), clockimpl.NewSystemClock(),
		newPowOptions(t, "none"))
	require.NoError(t, err)

	_, err = engine.Backend()
	assert.ErrorIs(t, err, ErrNoBackend)
	assert.NoError(t, engine.Close())
}

// 🧪 测试native后端装配
func TestEngineNativeBackend(t *testing.T) {
	engine, err := NewEngine(logimpl.GetLogger(), clockimpl.NewSystemClock(),
		newPowOptions(t, "native"))
	require.NoError(t, err)
	defer engine.Close()

	backend, err := engine.Backend()
	require.NoError(t, err)
	assert.Equal(t, "native", backend.Name())
}

// 🧪 测试wasm模块缺失时回退到native
func TestEngineWasmFallback(t *testing.T) {
	engineType := "wasm"
	modulePath := "/nonexistent/miner.wasm"
	options := powconfig.New(&types.UserPowConfig{
		Engine:         &engineType,
		WasmModulePath: &modulePath,
	}).GetOptions()

	engine, err := NewEngine(logimpl.GetLogger(), clockimpl.NewSystemClock(), options)
	require.NoError(t, err)
	defer engine.Close()

	backend, err := engine.Backend()
	require.NoError(t, err)
	assert.Equal(t, "native", backend.Name(), "模块文件缺失时应回退到native")
}

// 🧪 测试无效配置被拒绝
func TestEngineInvalidOptions(t *testing.T) {
	_, err := NewEngine(logimpl.GetLogger(), clockimpl.NewSystemClock(), nil)
	assert.Error(t, err)

	badEngine := "gpu"
	_, err = NewEngine(logimpl.GetLogger(), clockimpl.NewSystemClock(),
		powconfig.New(&types.UserPowConfig{Engine: &badEngine}).GetOptions())
	assert.Error(t, err)
}
