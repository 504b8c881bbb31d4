package driver

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records Ensure outcomes. A nil *Metrics records nothing.
type Metrics struct {
	ensures   *prometheus.CounterVec
	duration  prometheus.Histogram
	downloads prometheus.Counter
	installed *prometheus.GaugeVec
}

// NewMetrics creates the driver metrics and registers them with reg when
// reg is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ensures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "driverman",
			Name:      "ensure_total",
			Help:      "Number of ensure runs by outcome state.",
		}, []string{"state"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "driverman",
			Name:      "ensure_duration_seconds",
			Help:      "Duration of ensure runs.",
			Buckets:   []float64{0.01, 0.1, 0.5, 1, 5, 15, 60},
		}),
		downloads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "driverman",
			Name:      "downloads_total",
			Help:      "Number of driver archives downloaded.",
		}),
		installed: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "driverman",
			Name:      "installed_info",
			Help:      "Driver version currently recorded in the store.",
		}, []string{"version"}),
	}

	if reg != nil {
		reg.MustRegister(m.ensures, m.duration, m.downloads, m.installed)
	}
	return m
}

func (m *Metrics) observeEnsure(res *Result) {
	if m == nil || res == nil {
		return
	}
	m.ensures.WithLabelValues(res.State.String()).Inc()
	m.duration.Observe(res.Duration.Seconds())
	if res.State != StateFailed && !res.Version.IsZero() {
		m.installed.Reset()
		m.installed.WithLabelValues(res.Version.String()).Set(1)
	}
}

func (m *Metrics) observeDownload() {
	if m == nil {
		return
	}
	m.downloads.Inc()
}
