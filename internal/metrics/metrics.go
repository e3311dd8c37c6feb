package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SchedulerRuns = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "classtrack", Name: "scheduler_runs_total", Help: "Completed reminder scheduler passes",
	})
	SchedulerSkips = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "classtrack", Name: "scheduler_skips_total", Help: "Scheduler passes skipped because another run held the lock",
	})
	EmailsSent = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "classtrack", Name: "reminder_emails_sent_total", Help: "Reminder emails sent",
	})
	RemindersDeleted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "classtrack", Name: "reminders_deleted_total", Help: "Reminders deleted after dispatch",
	})
	SchedulerErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "classtrack", Name: "scheduler_errors_total", Help: "Per-unit scheduler errors (timezone or user)",
	})
	SchedulerDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "classtrack", Name: "scheduler_duration_seconds", Help: "Scheduler pass duration",
		Buckets: prometheus.DefBuckets,
	})
	DBPing = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "classtrack", Name: "db_ping_seconds", Help: "DB ping latency",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(
		SchedulerRuns, SchedulerSkips, EmailsSent, RemindersDeleted,
		SchedulerErrors, SchedulerDuration, DBPing,
	)
}

func Handler() http.Handler { return promhttp.Handler() }

func ObserveDBPing(d time.Duration) { DBPing.Observe(d.Seconds()) }
