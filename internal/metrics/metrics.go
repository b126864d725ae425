package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector counts engine operations by kind and outcome. A nil *Collector
// is a no-op so services can be wired without metrics in tests.
type Collector struct {
	registry     *prometheus.Registry
	opsTotal     *prometheus.CounterVec
	opsRejected  *prometheus.CounterVec
	feesRetained prometheus.Counter
}

func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	return &Collector{
		registry: registry,
		opsTotal: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_operations_total",
			Help: "Completed ledger engine operations by kind",
		}, []string{"kind"}),
		opsRejected: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_operations_rejected_total",
			Help: "Ledger engine operations rejected by a business rule",
		}, []string{"kind"}),
		feesRetained: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "fx_fees_retained_cents_total",
			Help: "Conversion commission retained, in source-currency cents",
		}),
	}
}

func (c *Collector) RecordOperation(kind string, err error) {
	if c == nil {
		return
	}
	if err != nil {
		c.opsRejected.WithLabelValues(kind).Inc()
		return
	}
	c.opsTotal.WithLabelValues(kind).Inc()
}

func (c *Collector) RecordFee(cents int64) {
	if c == nil {
		return
	}
	c.feesRetained.Add(float64(cents))
}

func (c *Collector) Handler() http.Handler {
	if c == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
