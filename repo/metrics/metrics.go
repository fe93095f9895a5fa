package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 查询结果
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

var (
	queriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "indus_queries_total",
			Help: "Total number of AI queries by outcome",
		},
		[]string{"outcome"},
	)
	queryDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "indus_query_duration_seconds",
			Help:    "AI query duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
	stepDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "indus_agent_step_duration_seconds",
			Help:    "Agent step duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"step"},
	)
	stepErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "indus_agent_step_errors_total",
			Help: "Total number of failed agent steps",
		},
		[]string{"step"},
	)
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "indus_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
)

func init() {
	prometheus.MustRegister(queriesTotal)
	prometheus.MustRegister(queryDuration)
	prometheus.MustRegister(stepDuration)
	prometheus.MustRegister(stepErrors)
	prometheus.MustRegister(httpRequestsTotal)
}

// ObserveQuery 记录一次查询
func ObserveQuery(outcome string, elapsed time.Duration) {
	queriesTotal.WithLabelValues(outcome).Inc()
	queryDuration.Observe(elapsed.Seconds())
}

// ObserveStep 记录一次 agent 步骤，err 不为空时计入失败
func ObserveStep(step string, elapsed time.Duration, err error) {
	stepDuration.WithLabelValues(step).Observe(elapsed.Seconds())
	if err != nil {
		stepErrors.WithLabelValues(step).Inc()
	}
}

// ObserveHTTP 记录一次 HTTP 请求，path 应为路由模板而非原始路径
func ObserveHTTP(method, path string, status int) {
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
}

// Handler 暴露 prometheus 指标
func Handler() http.Handler {
	return promhttp.Handler()
}
