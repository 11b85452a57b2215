// Package budget meters work done by batch operations. A Meter stands in for
// an execution gas limit: batches charge it per item and stop taking new
// items once a configured fraction of the limit has been consumed.
package budget

import (
	"errors"
	"fmt"
	"math/bits"
)

var (
	// ErrZeroLimit indicates a budget with no capacity.
	ErrZeroLimit = errors.New("budget: limit must be positive")

	// ErrInvalidFraction indicates a threshold fraction outside (0, 1].
	ErrInvalidFraction = errors.New("budget: threshold fraction must be in (0, 1]")
)

// Default budget parameters.
const (
	DefaultLimit       uint64 = 30_000_000
	DefaultNumerator   uint64 = 2
	DefaultDenominator uint64 = 3
	DefaultClaimCost   uint64 = 50_000
	DefaultPayoutCost  uint64 = 35_000
)

// Config describes the budget available to one call.
type Config struct {
	Limit       uint64 // total work units available to the call
	Numerator   uint64 // threshold fraction numerator
	Denominator uint64 // threshold fraction denominator
	ClaimCost   uint64 // units charged per claimed distribution
	PayoutCost  uint64 // units charged per custom payout
}

// DefaultConfig returns a two-thirds threshold over DefaultLimit.
func DefaultConfig() Config {
	return Config{
		Limit:       DefaultLimit,
		Numerator:   DefaultNumerator,
		Denominator: DefaultDenominator,
		ClaimCost:   DefaultClaimCost,
		PayoutCost:  DefaultPayoutCost,
	}
}

// Validate checks that the limit and fraction are usable.
func (c Config) Validate() error {
	if c.Limit == 0 {
		return ErrZeroLimit
	}
	if c.Denominator == 0 || c.Numerator == 0 || c.Numerator > c.Denominator {
		return fmt.Errorf("%w: %d/%d", ErrInvalidFraction, c.Numerator, c.Denominator)
	}
	return nil
}

// Meter tracks consumption against a Config. A Meter is used by a single
// call and is not safe for concurrent use.
type Meter struct {
	cfg  Config
	used uint64
}

// NewMeter creates a meter for cfg.
func NewMeter(cfg Config) (*Meter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Meter{cfg: cfg}, nil
}

// Items returns a meter that admits exactly n unit-cost items before it is
// exhausted. The threshold is (n-1)/n of a limit of n, so the meter tips
// over on the n-th charge. A zero n admits one item.
func Items(n uint64) *Meter {
	if n == 0 {
		n = 1
	}
	return &Meter{cfg: Config{Limit: n, Numerator: n - 1, Denominator: n, ClaimCost: 1, PayoutCost: 1}}
}

// Config returns the meter configuration.
func (m *Meter) Config() Config { return m.cfg }

// Charge records units of consumption. Saturates instead of wrapping.
func (m *Meter) Charge(units uint64) {
	if m.used+units < m.used {
		m.used = ^uint64(0)
		return
	}
	m.used += units
}

// ChargeClaim charges the configured cost of one claim.
func (m *Meter) ChargeClaim() { m.Charge(m.cfg.ClaimCost) }

// ChargePayout charges the configured cost of one payout.
func (m *Meter) ChargePayout() { m.Charge(m.cfg.PayoutCost) }

// Used returns the units consumed so far.
func (m *Meter) Used() uint64 { return m.used }

// Remaining returns the units left before the hard limit.
func (m *Meter) Remaining() uint64 {
	if m.used >= m.cfg.Limit {
		return 0
	}
	return m.cfg.Limit - m.used
}

// Exhausted reports whether consumption has passed the threshold, i.e.
// used/limit > numerator/denominator. Reaching the fraction exactly still
// admits another item. A fresh meter is never exhausted.
func (m *Meter) Exhausted() bool {
	return mulCmp(m.used, m.cfg.Denominator, m.cfg.Limit, m.cfg.Numerator) > 0
}

// mulCmp compares a*b with c*d without overflowing.
func mulCmp(a, b, c, d uint64) int {
	hi1, lo1 := bits.Mul64(a, b)
	hi2, lo2 := bits.Mul64(c, d)
	switch {
	case hi1 != hi2:
		if hi1 < hi2 {
			return -1
		}
		return 1
	case lo1 < lo2:
		return -1
	case lo1 > lo2:
		return 1
	}
	return 0
}
