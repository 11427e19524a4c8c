// Package metrics exposes run counters for the batch pipeline. The job
// is short-lived, so instead of serving an HTTP endpoint the counters
// are written in textfile-collector format at the end of a run.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const metricPrefix = "gridhistory_"

var (
	registerOnce sync.Once

	workbooks  *prometheus.CounterVec
	sheets     *prometheus.CounterVec
	dropped    prometheus.Counter
	priceFiles *prometheus.CounterVec
	outputRows prometheus.Counter
)

// Init registers the pipeline counters.
func Init() {
	registerOnce.Do(func() {
		workbooks = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "workbooks_total",
				Help: "Source workbooks by result",
			},
			[]string{"result"},
		)
		sheets = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "sheets_total",
				Help: "Report sheets by result",
			},
			[]string{"result"},
		)
		dropped = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "interval_records_dropped_total",
				Help: "Interval records dropped for unparseable timestamps or values",
			},
		)
		priceFiles = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "price_files_total",
				Help: "Yearly price files by result",
			},
			[]string{"result"},
		)
		outputRows = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "output_rows_total",
				Help: "Hourly rows written to the final table",
			},
		)

		prometheus.MustRegister(workbooks, sheets, dropped, priceFiles, outputRows)
	})
}

// ObserveIngest records workbook and sheet scan results.
func ObserveIngest(workbooksRead, workbooksSkipped, sheetsRead, sheetsSkipped int) {
	if workbooks == nil {
		return
	}
	workbooks.WithLabelValues("read").Add(float64(workbooksRead))
	workbooks.WithLabelValues("skipped").Add(float64(workbooksSkipped))
	sheets.WithLabelValues("read").Add(float64(sheetsRead))
	sheets.WithLabelValues("skipped").Add(float64(sheetsSkipped))
}

// ObserveDropped records dropped interval records.
func ObserveDropped(n int) {
	if dropped == nil {
		return
	}
	dropped.Add(float64(n))
}

// ObservePrices records price-file results.
func ObservePrices(loaded, missing, skipped int) {
	if priceFiles == nil {
		return
	}
	priceFiles.WithLabelValues("loaded").Add(float64(loaded))
	priceFiles.WithLabelValues("missing").Add(float64(missing))
	priceFiles.WithLabelValues("skipped").Add(float64(skipped))
}

// ObserveOutputRows records the size of the written table.
func ObserveOutputRows(n int) {
	if outputRows == nil {
		return
	}
	outputRows.Add(float64(n))
}

// WriteTextfile dumps the registered counters for the node-exporter
// textfile collector.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
