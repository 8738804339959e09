// Package export renders pipeline output for consumers outside the process.
//
// WriteJSON emits the enriched rows as one JSON array. Summarize reduces the
// rows to one DeviceSummary per device. Collector keeps Prometheus gauges of
// the latest run on a private registry and writes them in the text
// exposition format. WriteFile swaps an output file atomically.
package export
