// Package metrics exports prometheus gauges/counters mirroring the fields
// already carried by the SSA, so an operator can alert on fleet health
// without reading the shared status area directly. Grounded on the
// prometheus/client_golang wiring style used for service-level
// gauges/counters elsewhere in the retrieval pack (etalazz-vsa's churn
// telemetry, cuemby-warren's pkg/metrics).
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Registry is the set of fleet-health metrics mirroring SSA fields. No
// other package in this module imports metrics, so neither the
// supervisor nor the aggregator updates a Registry. One instance per
// process; per-site values are distinguished by the
// "alias" label rather than by a metric-per-site, to keep cardinality
// bounded by the (small, configuration-driven) site count.
type Registry struct {
	ConnectStatus  *prometheus.GaugeVec
	BytesPending   *prometheus.GaugeVec
	FilesPending   *prometheus.GaugeVec
	TransferRate   *prometheus.GaugeVec
	QueueDepth     *prometheus.GaugeVec
	Restarts       *prometheus.CounterVec
	ParseErrors    *prometheus.CounterVec
	Reshuffles     *prometheus.CounterVec
	CounterOverflows *prometheus.CounterVec
}

// New builds and registers a Registry against reg. Passing a fresh
// prometheus.NewRegistry() in tests avoids colliding with the default
// global registry across test runs.
func New(reg prometheus.Registerer) *Registry {
	r := &Registry{
		ConnectStatus: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "afdmon",
			Name:      "site_connect_status",
			Help:      "Current connect_status code for a site.",
		}, []string{"alias"}),
		BytesPending: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "afdmon",
			Name:      "site_bytes_pending",
			Help:      "Bytes pending transfer as last reported by the remote.",
		}, []string{"alias"}),
		FilesPending: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "afdmon",
			Name:      "site_files_pending",
			Help:      "Files pending transfer as last reported by the remote.",
		}, []string{"alias"}),
		TransferRate: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "afdmon",
			Name:      "site_transfer_rate",
			Help:      "Transfer rate as last reported by the remote.",
		}, []string{"alias"}),
		QueueDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "afdmon",
			Name:      "site_queue_depth",
			Help:      "Jobs in queue as last reported by the remote.",
		}, []string{"alias"}),
		Restarts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "afdmon",
			Name:      "worker_restarts_total",
			Help:      "Polling Client / Log Forwarder restarts by the supervisor.",
		}, []string{"alias", "task"}),
		ParseErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "afdmon",
			Name:      "tag_parse_errors_total",
			Help:      "Protocol lines that failed to classify (spec §4.1 unknown tags).",
		}, []string{"alias"}),
		Reshuffles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "afdmon",
			Name:      "snapshot_reshuffles_total",
			Help:      "Completed snapshot reshuffle operations by list kind.",
		}, []string{"alias", "list"}),
		CounterOverflows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "afdmon",
			Name:      "counter_overflows_total",
			Help:      "Rollup periods where a ring-slot delta was negative (remote counter rollover).",
		}, []string{"alias", "slot"}),
	}

	for _, c := range []prometheus.Collector{
		r.ConnectStatus, r.BytesPending, r.FilesPending, r.TransferRate,
		r.QueueDepth, r.Restarts, r.ParseErrors, r.Reshuffles, r.CounterOverflows,
	} {
		_ = reg.Register(c)
	}

	return r
}
