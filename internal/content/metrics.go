package content

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	kindProofs = "proofs"
	kindWeeks  = "weeks"
)

var (
	// loadsTotal counts full loads by collection and result.
	loadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kholles_content_loads_total",
		Help: "Total content loads by collection and result",
	}, []string{"kind", "result"})

	loadDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "kholles_content_load_duration_seconds",
		Help:    "Content load duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14), // 0.5ms to ~4s
	}, []string{"kind"})

	filesParsed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kholles_content_files_parsed_total",
		Help: "Total content files parsed successfully",
	}, []string{"kind"})
)

func observeLoad(kind string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	loadsTotal.WithLabelValues(kind, result).Inc()
	loadDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}
