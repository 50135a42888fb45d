// Package metrics 定义引擎的 Prometheus 指标。
// 指标注册到默认 Registry，由宿主进程决定如何暴露（本模块不含 HTTP 面）。
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal 按命中策略统计推荐请求量。
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hybrec",
		Subsystem: "engine",
		Name:      "requests_total",
		Help:      "Recommendation requests served, by strategy.",
	}, []string{"strategy"})

	// UnderfillTotal 统计结果欠额（返回条数 < 请求条数）的请求量。
	UnderfillTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "hybrec",
		Subsystem: "engine",
		Name:      "underfill_total",
		Help:      "Requests that returned fewer recommendations than requested.",
	})

	// ExplainFallbackTotal 按失败分类统计解释服务降级到模板的次数。
	ExplainFallbackTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hybrec",
		Subsystem: "explain",
		Name:      "fallback_total",
		Help:      "Explanation calls that fell back to the deterministic template.",
	}, []string{"reason"})

	// CollaboratorErrorTotal 统计目录读失败（请求内降级，不对外暴露）的次数。
	CollaboratorErrorTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hybrec",
		Subsystem: "engine",
		Name:      "collaborator_errors_total",
		Help:      "Catalog read failures recovered locally.",
	}, []string{"op"})
)
