package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Latency per engine call, labeled by engine name
	EngineCallDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "engine_call_latency_seconds",
		Help:    "Latency of intelligence engine calls",
		Buckets: prometheus.DefBuckets,
	}, []string{"engine"})

	// Total engine calls served
	EngineCallTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "engine_call_total",
		Help: "Total number of intelligence engine calls",
	}, []string{"engine"})

	// Events accepted by the collector
	EventsRecorded = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "engine_events_recorded_total",
		Help: "Total number of events accepted by the collector",
	})

	// Event writes that failed and were swallowed
	EventWriteFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "engine_event_write_failures_total",
		Help: "Event writes dropped after a storage failure",
	})
)

func Init() {
	prometheus.MustRegister(
		EngineCallDuration,
		EngineCallTotal,
		EventsRecorded,
		EventWriteFailures,
	)
}
