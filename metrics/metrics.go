// Package metrics exposes Prometheus counters for dividend engine activity.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "dividend"

// Payout kinds.
const (
	KindClaim  = "claim"
	KindCustom = "custom"
)

// Lock change operations.
const (
	OpLock   = "lock"
	OpUnlock = "unlock"
)

// Collector holds the engine's metrics. A nil *Collector is valid and
// records nothing.
type Collector struct {
	Claims         *prometheus.CounterVec
	Distributions  *prometheus.CounterVec
	LockChanges    *prometheus.CounterVec
	Payouts        *prometheus.CounterVec
	BatchTruncated *prometheus.CounterVec
	Pools          prometheus.Gauge
}

// NewCollector creates the metrics and registers them on reg. A nil reg
// leaves them unregistered.
func NewCollector(reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)
	return &Collector{
		Claims: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "claims_total",
			Help:      "Total number of dividend claims paid",
		}, []string{"mode"}),
		Distributions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "distributions_total",
			Help:      "Total number of distributions created",
		}, []string{"mode"}),
		LockChanges: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lock_changes_total",
			Help:      "Total number of lock and unlock operations",
		}, []string{"op"}),
		Payouts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payouts_total",
			Help:      "Total number of transfers out of custody",
		}, []string{"kind"}),
		BatchTruncated: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_truncated_total",
			Help:      "Total number of batches stopped early by the resource budget",
		}, []string{"op"}),
		Pools: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pools",
			Help:      "Number of pools",
		}),
	}
}

// ClaimPaid records one paid claim.
func (c *Collector) ClaimPaid(mode string) {
	if c == nil {
		return
	}
	c.Claims.WithLabelValues(mode).Inc()
	c.Payouts.WithLabelValues(KindClaim).Inc()
}

// CustomPaid records one custom distribution payout.
func (c *Collector) CustomPaid() {
	if c == nil {
		return
	}
	c.Payouts.WithLabelValues(KindCustom).Inc()
}

// DistributionCreated records a new distribution.
func (c *Collector) DistributionCreated(mode string) {
	if c == nil {
		return
	}
	c.Distributions.WithLabelValues(mode).Inc()
}

// LockChanged records a lock or unlock.
func (c *Collector) LockChanged(op string) {
	if c == nil {
		return
	}
	c.LockChanges.WithLabelValues(op).Inc()
}

// Truncated records a batch stopped by the budget.
func (c *Collector) Truncated(op string) {
	if c == nil {
		return
	}
	c.BatchTruncated.WithLabelValues(op).Inc()
}

// SetPools sets the pool gauge.
func (c *Collector) SetPools(n int) {
	if c == nil {
		return
	}
	c.Pools.Set(float64(n))
}
