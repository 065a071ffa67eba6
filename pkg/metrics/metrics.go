package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service-level collectors shared by the scheduler,
// alarm sessions and the outbox worker.
type Metrics struct {
	SchedulerTicks          prometheus.Counter
	AlarmsTriggered         prometheus.Counter
	AlarmsSuppressed        prometheus.Counter
	AlarmSessionsActive     prometheus.Gauge
	AlarmDispositions       *prometheus.CounterVec
	AnalysisRequests        *prometheus.CounterVec
	AnalysisLatency         prometheus.Histogram
	ChatRequests            *prometheus.CounterVec
	OutboxEventsProcessed   prometheus.Counter
	OutboxEventsFailed      prometheus.Counter
	OutboxProcessingLatency prometheus.Histogram
}

func New(prefix string) *Metrics {
	return &Metrics{
		SchedulerTicks: promauto.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_scheduler_ticks_total",
			Help: "Total scheduler ticks executed",
		}),
		AlarmsTriggered: promauto.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_alarms_triggered_total",
			Help: "Total reminders promoted to the presented alarm state",
		}),
		AlarmsSuppressed: promauto.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_alarms_suppressed_total",
			Help: "Candidates suppressed because an alarm was already presented",
		}),
		AlarmSessionsActive: promauto.NewGauge(prometheus.GaugeOpts{
			Name: prefix + "_alarm_sessions_active",
			Help: "Alarm sessions currently presenting",
		}),
		AlarmDispositions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_alarm_dispositions_total",
			Help: "Alarm dismissals by action",
		}, []string{"action"}),
		AnalysisRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_analysis_requests_total",
			Help: "Analysis provider calls by outcome",
		}, []string{"outcome"}),
		AnalysisLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    prefix + "_analysis_latency_seconds",
			Help:    "Analysis provider call latency",
			Buckets: prometheus.DefBuckets,
		}),
		ChatRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_chat_requests_total",
			Help: "Chat sends by outcome",
		}, []string{"outcome"}),
		OutboxEventsProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_outbox_events_processed_total",
			Help: "Outbox events published to the broker",
		}),
		OutboxEventsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_outbox_events_failed_total",
			Help: "Outbox events that exhausted publish retries",
		}),
		OutboxProcessingLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    prefix + "_outbox_processing_latency_seconds",
			Help:    "Time spent draining one outbox batch",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
