package pow

import "errors"

// 挖矿流程的哨兵错误，调用方用errors.Is区分结果类别
var (
	// ErrZeroTarget 目标难度为零，任何事件都满足，拒绝启动挖矿
	ErrZeroTarget = errors.New("目标难度不能为零")

	// ErrTargetTooHigh 目标难度超过配置上限
	ErrTargetTooHigh = errors.New("目标难度超过上限")

	// ErrNoBackend 未配置可用的挖矿后端
	ErrNoBackend = errors.New("没有可用的挖矿后端")

	// ErrMiningTimeout 在超时窗口内未找到满足难度的nonce
	ErrMiningTimeout = errors.New("挖矿超时")

	// ErrMiningCanceled 挖矿被外部取消
	ErrMiningCanceled = errors.New("挖矿已取消")

	// ErrInvalidResult 后端返回的事件未通过难度或标识校验
	ErrInvalidResult = errors.New("挖矿结果无效")
)
