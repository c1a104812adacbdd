package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Outcome labels recorded on mint and pin counters.
const (
	OutcomeOK              = "ok"
	OutcomeFailed          = "failed"
	OutcomeSkipped         = "skipped"
	OutcomeAlreadyMinted   = "already_minted"
	OutcomeNotFound        = "not_found"
	OutcomeValidation      = "validation"
	OutcomePinningFailed   = "pinning_failed"
	OutcomeSupplyExhausted = "supply_exhausted"
	OutcomeContention      = "contention"
	OutcomeInternal        = "internal"
)

// Metrics exposes application-level instruments.
type Metrics struct {
	mints    *prometheus.CounterVec
	pins     *prometheus.CounterVec
	credited prometheus.Counter
	burned   prometheus.Counter
}

// NewRegistry builds the prometheus registry served on /metrics.
func NewRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return registry
}

// New registers the domain instruments on the given registry.
func New(registry *prometheus.Registry) (*Metrics, error) {
	m := &Metrics{
		mints: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stampcoin_mints_total",
			Help: "Mint attempts by outcome.",
		}, []string{"outcome"}),
		pins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stampcoin_pins_total",
			Help: "Pin attempts by provider and outcome.",
		}, []string{"provider", "outcome"}),
		credited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stampcoin_currency_credited_total",
			Help: "Currency credited to owners, in smallest units.",
		}),
		burned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stampcoin_currency_burned_total",
			Help: "Currency burned, in smallest units.",
		}),
	}

	for _, c := range []prometheus.Collector{m.mints, m.pins, m.credited, m.burned} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) RecordMint(outcome string) {
	if m == nil {
		return
	}
	m.mints.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordPin(provider, outcome string) {
	if m == nil {
		return
	}
	m.pins.WithLabelValues(provider, outcome).Inc()
}

func (m *Metrics) RecordCredit(amount int64) {
	if m == nil || amount <= 0 {
		return
	}
	m.credited.Add(float64(amount))
}

func (m *Metrics) RecordBurn(amount int64) {
	if m == nil || amount <= 0 {
		return
	}
	m.burned.Add(float64(amount))
}
