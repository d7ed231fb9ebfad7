package metrics

import "github.com/prometheus/client_golang/prometheus"

var MessagesSentTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "campaign_messages_sent_total",
		Help: "Total number of campaign messages successfully dispatched",
	},
	[]string{"action"},
)

var MessagesFailedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "campaign_messages_failed_total",
		Help: "Total number of campaign message dispatch failures",
	},
	[]string{"action", "reason"},
)

var QuotaDenialsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "quota_denials_total",
		Help: "Total number of sends refused by the quota ledger",
	},
	[]string{"action"},
)

var QueueEntriesProcessedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "queue_entries_processed_total",
		Help: "Total number of claimed queue entries by final status",
	},
	[]string{"status"},
)

var ProviderCallsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "provider_calls_total",
		Help: "Total number of messaging provider API calls",
	},
	[]string{"operation", "outcome"},
)

var ProviderCallDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "provider_call_duration_seconds",
		Help:    "Duration of messaging provider API calls in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"operation"},
)

func InitWorkerMetrics() {
	prometheus.MustRegister(MessagesSentTotal)
	prometheus.MustRegister(MessagesFailedTotal)
	prometheus.MustRegister(QuotaDenialsTotal)
	prometheus.MustRegister(QueueEntriesProcessedTotal)
	prometheus.MustRegister(ProviderCallsTotal)
	prometheus.MustRegister(ProviderCallDuration)
}
