package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Manager struct {
	// counters
	CounterRequests             *prometheus.CounterVec
	CounterWorkoutsCompleted    prometheus.Counter
	CounterNotificationsSent    *prometheus.CounterVec
	CounterNotificationsDeduped *prometheus.CounterVec
	CounterJobUserFailures      *prometheus.CounterVec
	CounterTelegramCommands     *prometheus.CounterVec
	CounterAchievementsUnlocked prometheus.Counter

	// gauges
	GaugeRequests prometheus.Gauge

	// histograms
	HistRequestDuration prometheus.Histogram
	HistJobDuration     *prometheus.HistogramVec
}

func NewTestManager() *Manager {
	return NewManager("getsfit", "test_server", prometheus.NewRegistry())
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("getsfit", "test_server", reg), reg
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	return &Manager{
		CounterRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request",
			Help:      "The total number of incoming requests",
		}, []string{"method", "status"}),
		CounterWorkoutsCompleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "workouts_completed",
			Help:      "The total number of completed workouts",
		}),
		CounterNotificationsSent: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "notifications_sent",
			Help:      "Scheduled notifications delivered, by kind",
		}, []string{"kind"}),
		CounterNotificationsDeduped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "notifications_suppressed",
			Help:      "Scheduled notifications suppressed because they were already sent today, by kind",
		}, []string{"kind"}),
		CounterJobUserFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "job_user_failures",
			Help:      "Per-user failures inside batch jobs, by job",
		}, []string{"job"}),
		CounterTelegramCommands: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "telegram_commands",
			Help:      "Inbound bot commands, by command",
		}, []string{"command"}),
		CounterAchievementsUnlocked: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "achievements_unlocked",
			Help:      "The total number of unlocked achievements",
		}),
		GaugeRequests: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "current_requests",
			Help:      "Current number of requests served",
		}),
		HistRequestDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			Name:      "request_duration_seconds",
			Help:      "Total duration of requests in seconds",
		}),
		HistJobDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Buckets:   []float64{0.01, 0.1, 0.5, 1, 5, 10, 30, 60, 120},
			Name:      "job_duration_seconds",
			Help:      "Duration of a batch job run in seconds",
		}, []string{"job"}),
	}
}
