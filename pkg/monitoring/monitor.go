package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	GradesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grades_total",
			Help: "Total number of graded attempts",
		},
		[]string{"passed"},
	)

	JudgeFallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "judge_fallbacks_total",
			Help: "Short answers graded by exact match because the AI judge was unavailable",
		},
		[]string{"reason"},
	)

	RewardAwards = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reward_awards_total",
			Help: "Reward award attempts by claim type and outcome",
		},
		[]string{"claim_type", "outcome"},
	)

	MasteryUnlocks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mastery_unlocks_total",
			Help: "Exam categories unlocked by mastery",
		},
	)
)

var registerOnce sync.Once

// Init registers the collectors with the default registry. Safe to call
// more than once.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			RequestCounter,
			RequestDuration,
			GradesTotal,
			JudgeFallbacks,
			RewardAwards,
			MasteryUnlocks,
		)
	})
}

// 未匹配路由统一归类，避免任意路径撑爆标签基数
func routeLabel(c *gin.Context) string {
	if p := c.FullPath(); p != "" {
		return p
	}
	return "unmatched"
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := routeLabel(c)
		RequestCounter.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		RequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
