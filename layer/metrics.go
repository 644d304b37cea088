package layer

import "github.com/prometheus/client_golang/prometheus"

var counterMetadataErrors = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "geolayer",
		Subsystem: "layer",
		Name:      "metadata_errors_total",
		Help:      "Feature class metadata bootstraps that failed.",
	},
	[]string{
		"reason",
	},
)

var counterStateChanges = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "geolayer",
		Subsystem: "layer",
		Name:      "state_changes_total",
		Help:      "Record state notifications, by state.",
	},
	[]string{
		"state",
	},
)

func init() {
	prometheus.MustRegister(counterMetadataErrors)
	prometheus.MustRegister(counterStateChanges)
}
