package binder

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/go-binder/binder/internal/interfaces"
)

// Observer is the telemetry contract a Connection reports transaction and
// proxy lifecycle events to. Aliased from internal/interfaces so callers
// implementing a custom one don't need to import an internal package.
type Observer = interfaces.Observer

// NoOpObserver discards every event. It is the default when no observer
// is configured via WithObserver.
type NoOpObserver struct{}

func (NoOpObserver) ObserveTransaction(code uint32, handle uint32, outcome string, durationSeconds float64) {
}
func (NoOpObserver) ObserveProxyCreated(handle uint32)  {}
func (NoOpObserver) ObserveProxyReleased(handle uint32) {}

var _ Observer = NoOpObserver{}

// PrometheusObserver reports Connection telemetry as Prometheus metrics.
// Register it against a prometheus.Registerer of the caller's choosing
// (or prometheus.DefaultRegisterer via NewPrometheusObserver).
type PrometheusObserver struct {
	transactions   *prometheus.CounterVec
	transactionDur *prometheus.HistogramVec
	proxiesLive    prometheus.Gauge
}

// NewPrometheusObserver creates a PrometheusObserver and registers its
// collectors against reg. Pass prometheus.DefaultRegisterer for the
// global registry, or a fresh prometheus.NewRegistry() in tests.
func NewPrometheusObserver(reg prometheus.Registerer) (*PrometheusObserver, error) {
	o := &PrometheusObserver{
		transactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "binder",
			Name:      "transactions_total",
			Help:      "Total number of Binder transactions by code and outcome.",
		}, []string{"code", "outcome"}),
		transactionDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "binder",
			Name:      "transaction_duration_seconds",
			Help:      "Binder transaction round-trip latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"code"}),
		proxiesLive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "binder",
			Name:      "proxies_live",
			Help:      "Number of strong Proxy references currently held.",
		}),
	}
	for _, c := range []prometheus.Collector{o.transactions, o.transactionDur, o.proxiesLive} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func (o *PrometheusObserver) ObserveTransaction(code uint32, handle uint32, outcome string, durationSeconds float64) {
	codeLabel := fourCCLabel(code)
	o.transactions.WithLabelValues(codeLabel, outcome).Inc()
	o.transactionDur.WithLabelValues(codeLabel).Observe(durationSeconds)
}

func (o *PrometheusObserver) ObserveProxyCreated(handle uint32)  { o.proxiesLive.Inc() }
func (o *PrometheusObserver) ObserveProxyReleased(handle uint32) { o.proxiesLive.Dec() }

var _ Observer = (*PrometheusObserver)(nil)

// fourCCLabel renders a transaction code as its FourCC string when it
// looks like one (the well-known meta-transactions), or as a decimal
// otherwise, to keep the Prometheus label cardinality sane for ordinary
// per-interface call codes.
func fourCCLabel(code uint32) string {
	b := [4]byte{byte(code >> 24), byte(code >> 16), byte(code >> 8), byte(code)}
	if b[0] == '_' {
		return string(b[:])
	}
	return prometheusCodeFallback(code)
}

func prometheusCodeFallback(code uint32) string {
	return "code_" + strconv.FormatUint(uint64(code), 10)
}
