package attribs

import "github.com/prometheus/client_golang/prometheus"

var (
	counterPages = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "geolayer",
		Subsystem: "attribs",
		Name:      "pages_total",
		Help:      "Attribute query pages received.",
	})
	counterRecords = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "geolayer",
		Subsystem: "attribs",
		Name:      "records_total",
		Help:      "Attribute records received.",
	})
	counterFetchErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "geolayer",
		Subsystem: "attribs",
		Name:      "fetch_errors_total",
		Help:      "Attribute fetches that failed.",
	})
	counterAborts = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "geolayer",
		Subsystem: "attribs",
		Name:      "aborts_total",
		Help:      "Attribute fetches stopped by abort.",
	})
)

func init() {
	prometheus.MustRegister(counterPages)
	prometheus.MustRegister(counterRecords)
	prometheus.MustRegister(counterFetchErrors)
	prometheus.MustRegister(counterAborts)
}
