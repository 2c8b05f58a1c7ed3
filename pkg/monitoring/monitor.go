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

	// ExerciseRuns verdict 取值 correct / incorrect / ungraded
	ExerciseRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exercise_runs_total",
			Help: "Total number of exercise runs by language and verdict",
		},
		[]string{"language", "verdict"},
	)

	ExerciseRunDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "exercise_run_duration_seconds",
			Help:    "Duration of code execution for exercises and playground runs",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 15},
		},
		[]string{"language"},
	)

	LessonCompletions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "lesson_completions_total",
			Help: "Total number of first-time lesson completions",
		},
	)

	TutorRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tutor_requests_total",
			Help: "Total number of AI tutor requests by outcome",
		},
		[]string{"outcome"},
	)
)

var initOnce sync.Once

func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestCounter)
		prometheus.MustRegister(RequestDuration)
		prometheus.MustRegister(ExerciseRuns)
		prometheus.MustRegister(ExerciseRunDuration)
		prometheus.MustRegister(LessonCompletions)
		prometheus.MustRegister(TutorRequests)
	})
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
