package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ProjectTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "project_status_transitions_total",
			Help: "Total number of project status transitions",
		},
		[]string{"from", "to", "role"},
	)

	ProjectAssignments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "project_assignments_total",
			Help: "Total number of assignment attempts",
		},
		[]string{"trigger", "result"}, // result: success, conflict, rejected
	)

	EventHandled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "event_handler_results_total",
			Help: "Total number of event handler invocations",
		},
		[]string{"handler", "result"},
	)

	EventDispatchLag = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "event_dispatch_lag_seconds",
			Help:    "Delay between event creation and successful dispatch",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
		},
	)

	NotificationsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_created_total",
			Help: "Total number of notifications created",
		},
		[]string{"type"},
	)

	RealtimePublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "realtime_messages_published_total",
			Help: "Total number of realtime messages published",
		},
		[]string{"type", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)
)

func RecordTransition(from, to, role string) {
	ProjectTransitions.WithLabelValues(from, to, role).Inc()
}

func RecordAssignment(trigger, result string) {
	ProjectAssignments.WithLabelValues(trigger, result).Inc()
}

func RecordEventHandled(handler string, success bool) {
	result := "success"
	if !success {
		result = "failed"
	}
	EventHandled.WithLabelValues(handler, result).Inc()
}

func RecordNotificationCreated(notificationType string) {
	NotificationsCreated.WithLabelValues(notificationType).Inc()
}

func RecordRealtimePublish(messageType string, err error) {
	status := "success"
	if err != nil {
		status = "failed"
	}
	RealtimePublished.WithLabelValues(messageType, status).Inc()
}

// GinMiddleware observes request durations by route pattern.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		HTTPRequestDuration.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

func RegisterMetricsAPI(r *gin.Engine) {
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
