package export

import (
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"

	"github.com/sensorpipe/sensorpipe/pkg/types"
)

// Collector exposes the latest pipeline run as Prometheus metrics on a
// private registry.
type Collector struct {
	reg *prometheus.Registry

	deviceHealth    *prometheus.GaugeVec
	deviceAnomaly   *prometheus.GaugeVec
	deviceOffline   *prometheus.GaugeVec
	deviceSinceLast *prometheus.GaugeVec
	alerts          *prometheus.GaugeVec
	runs            prometheus.Counter
	rows            prometheus.Gauge
	duration        prometheus.Histogram
}

// NewCollector registers every sensorpipe metric on a fresh registry.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Collector{
		reg: reg,
		deviceHealth: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "sensorpipe_device_health",
			Help: "Health score of the device's newest reading.",
		}, []string{"device_id"}),
		deviceAnomaly: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "sensorpipe_device_anomaly_score",
			Help: "Anomaly score of the device's newest reading.",
		}, []string{"device_id"}),
		deviceOffline: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "sensorpipe_device_offline",
			Help: "1 if the device is considered offline, else 0.",
		}, []string{"device_id"}),
		deviceSinceLast: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "sensorpipe_device_seconds_since_last",
			Help: "Seconds between the newest reading overall and the device's newest reading.",
		}, []string{"device_id"}),
		alerts: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "sensorpipe_alerts",
			Help: "Rows in the latest run on which the rule fired.",
		}, []string{"rule"}),
		runs: f.NewCounter(prometheus.CounterOpts{
			Name: "sensorpipe_pipeline_runs_total",
			Help: "Total number of pipeline runs observed.",
		}),
		rows: f.NewGauge(prometheus.GaugeOpts{
			Name: "sensorpipe_pipeline_rows",
			Help: "Rows produced by the latest pipeline run.",
		}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "sensorpipe_pipeline_duration_seconds",
			Help:    "Pipeline run duration in seconds.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// Observe replaces the per-device and per-rule gauges with the result of one
// pipeline run that took took.
func (c *Collector) Observe(rows []types.EnrichedReading, took time.Duration) {
	c.runs.Inc()
	c.rows.Set(float64(len(rows)))
	c.duration.Observe(took.Seconds())

	// Devices that dropped out of the store must not linger.
	c.deviceHealth.Reset()
	c.deviceAnomaly.Reset()
	c.deviceOffline.Reset()
	c.deviceSinceLast.Reset()
	c.alerts.Reset()

	totals := make(map[string]int)
	for _, s := range Summarize(rows) {
		c.deviceHealth.WithLabelValues(s.DeviceID).Set(float64(s.Health))
		c.deviceAnomaly.WithLabelValues(s.DeviceID).Set(s.AnomalyScore)
		c.deviceOffline.WithLabelValues(s.DeviceID).Set(b2f(s.Offline))
		c.deviceSinceLast.WithLabelValues(s.DeviceID).Set(s.SecondsSinceLast)
		for rule, n := range s.Alerts {
			totals[rule] += n
		}
	}
	for rule, n := range totals {
		c.alerts.WithLabelValues(rule).Set(float64(n))
	}
}

// WriteText gathers the registry and writes it in the Prometheus text
// exposition format.
func (c *Collector) WriteText(w io.Writer) error {
	mfs, err := c.reg.Gather()
	if err != nil {
		return fmt.Errorf("export: gather: %w", err)
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range mfs {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("export: encode %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

func b2f(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
