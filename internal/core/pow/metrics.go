// 挖矿指标采集
//
// 📈 使用prometheus默认注册表暴露挖矿过程的运行指标，
// 供编排器和CLI按需聚合展示。
package pow

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// miningAttemptsTotal 累计nonce尝试次数
	miningAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "snort",
		Subsystem: "pow",
		Name:      "mining_attempts_total",
		Help:      "累计尝试的nonce数量",
	}, []string{"backend"})

	// miningResultsTotal 按结果分类的挖矿任务计数
	miningResultsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "snort",
		Subsystem: "pow",
		Name:      "mining_results_total",
		Help:      "按结果分类的挖矿任务总数",
	}, []string{"backend", "result"})

	// miningDurationSeconds 挖矿任务耗时分布
	miningDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "snort",
		Subsystem: "pow",
		Name:      "mining_duration_seconds",
		Help:      "挖矿任务耗时分布（秒）",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 14),
	}, []string{"backend"})
)

// 挖矿结果标签值
const (
	resultSuccess  = "success"
	resultTimeout  = "timeout"
	resultCanceled = "canceled"
	resultError    = "error"
)

// observeMiningResult 记录单次挖矿任务的结果与耗时
func observeMiningResult(backend, result string, seconds float64, attempts uint64) {
	miningResultsTotal.WithLabelValues(backend, result).Inc()
	miningDurationSeconds.WithLabelValues(backend).Observe(seconds)
	miningAttemptsTotal.WithLabelValues(backend).Add(float64(attempts))
}
