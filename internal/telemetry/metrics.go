package telemetry

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	BatchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "datasync",
		Name:      "batches_total",
		Help:      "Journal batches processed by the transform pipeline, by outcome.",
	}, []string{"table", "result"})

	RowsDerived = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "datasync",
		Name:      "rows_derived_total",
		Help:      "Derived column values written, by transformer.",
	}, []string{"table", "transformer"})

	RowsSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "datasync",
		Name:      "rows_skipped_total",
		Help:      "Rows left untouched because their payload could not be decoded.",
	}, []string{"table", "reason"})

	BatchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "datasync",
		Name:      "batch_duration_seconds",
		Help:      "Time spent transforming one batch.",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
	}, []string{"table"})
)

// Result label values for BatchesTotal.
const (
	ResultOK          = "ok"
	ResultPassThrough = "pass_through"
	ResultFailed      = "failed"
)

func Expose(port int) {
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		_ = http.ListenAndServe(fmt.Sprintf(":%d", port), mux)
	}()
}
