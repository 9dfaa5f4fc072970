package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// 进度日志提交结果计数
	LogSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "project_log_submissions_total",
			Help: "Total number of project log submissions by outcome",
		},
		[]string{"work_phase", "outcome"}, // outcome: created, invalid, phase_locked, not_found, upload_failed, persistence_failed
	)

	// 阶段切换计数
	PhaseTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "project_phase_transitions_total",
			Help: "Total number of DEVELOPMENT -> MAINTENANCE transitions",
		},
		[]string{"source"}, // source: auto, manual
	)

	// 事务乐观锁冲突重试
	CommitRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "project_log_commit_retries_total",
			Help: "Total number of pipeline transaction retries caused by version conflicts",
		},
	)

	// 媒体上传延迟（秒）
	MediaUploadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_upload_duration_seconds",
			Help:    "Object storage upload duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
		},
		[]string{"status"},
	)

	// 通知发送计数
	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "client_notifications_total",
			Help: "Total number of outbound client notifications",
		},
		[]string{"provider", "status"}, // status: success, failed
	)

	// HTTP 请求延迟（秒）
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// 孤儿对象清理计数
	OrphansRemoved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_orphans_removed_total",
			Help: "Total number of orphaned storage objects removed by reconciliation",
		},
	)
)

// RecordLogSubmission 记录日志提交结果
func RecordLogSubmission(workPhase, outcome string) {
	LogSubmissions.WithLabelValues(workPhase, outcome).Inc()
}

// RecordPhaseTransition 记录阶段切换
func RecordPhaseTransition(source string) {
	PhaseTransitions.WithLabelValues(source).Inc()
}

// RecordMediaUpload 记录单个对象上传耗时
func RecordMediaUpload(status string, duration time.Duration) {
	MediaUploadDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordNotification 记录通知发送结果
func RecordNotification(provider, status string) {
	NotificationsSent.WithLabelValues(provider, status).Inc()
}

// RecordHTTPRequest 记录 HTTP 请求耗时
func RecordHTTPRequest(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordOrphansRemoved 记录清理的孤儿对象数量
func RecordOrphansRemoved(n int) {
	OrphansRemoved.Add(float64(n))
}
