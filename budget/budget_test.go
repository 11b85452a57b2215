package budget

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, uint64(2), cfg.Numerator)
	assert.Equal(t, uint64(3), cfg.Denominator)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{"zero limit", Config{Limit: 0, Numerator: 2, Denominator: 3}, ErrZeroLimit},
		{"zero denominator", Config{Limit: 10, Numerator: 1, Denominator: 0}, ErrInvalidFraction},
		{"zero numerator", Config{Limit: 10, Numerator: 0, Denominator: 3}, ErrInvalidFraction},
		{"fraction above one", Config{Limit: 10, Numerator: 4, Denominator: 3}, ErrInvalidFraction},
		{"full budget", Config{Limit: 10, Numerator: 1, Denominator: 1}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestMeter_TwoThirdsThreshold(t *testing.T) {
	m, err := NewMeter(Config{Limit: 300, Numerator: 2, Denominator: 3, ClaimCost: 50})
	require.NoError(t, err)

	assert.False(t, m.Exhausted(), "fresh meter")
	for i := 0; i < 3; i++ {
		m.ChargeClaim()
	}
	assert.False(t, m.Exhausted(), "150 of 300 is below two thirds")

	m.ChargeClaim()
	assert.False(t, m.Exhausted(), "200 of 300 is exactly two thirds")
	assert.Equal(t, uint64(200), m.Used())
	assert.Equal(t, uint64(100), m.Remaining())

	m.Charge(1)
	assert.True(t, m.Exhausted(), "201 of 300 is more than two thirds")
}

func TestMeter_DefaultAdmitsFourHundredOneClaims(t *testing.T) {
	m, err := NewMeter(DefaultConfig())
	require.NoError(t, err)

	claims := 0
	for !m.Exhausted() {
		m.ChargeClaim()
		claims++
	}
	assert.Equal(t, 401, claims)
}

func TestMeter_Items(t *testing.T) {
	m := Items(3)
	processed := 0
	for i := 0; i < 10; i++ {
		if m.Exhausted() {
			break
		}
		processed++
		m.ChargePayout()
	}
	assert.Equal(t, 3, processed)
}

func TestMeter_ItemsOne(t *testing.T) {
	m := Items(1)
	assert.False(t, m.Exhausted())
	m.ChargePayout()
	assert.True(t, m.Exhausted())
}

func TestMeter_ItemsZeroAdmitsOne(t *testing.T) {
	m := Items(0)
	assert.False(t, m.Exhausted())
	m.ChargeClaim()
	assert.True(t, m.Exhausted())
}

func TestMeter_ChargeSaturates(t *testing.T) {
	m, err := NewMeter(Config{Limit: math.MaxUint64 - 1, Numerator: 1, Denominator: 1})
	require.NoError(t, err)
	m.Charge(math.MaxUint64 - 1)
	m.Charge(10)
	assert.Equal(t, uint64(math.MaxUint64), m.Used())
	assert.True(t, m.Exhausted())
	assert.Zero(t, m.Remaining())
}

func TestMulCmp_LargeOperands(t *testing.T) {
	assert.Equal(t, 0, mulCmp(math.MaxUint64, 2, 2, math.MaxUint64))
	assert.Equal(t, 1, mulCmp(math.MaxUint64, 3, math.MaxUint64, 2))
	assert.Equal(t, -1, mulCmp(1, 1, math.MaxUint64, math.MaxUint64))
}
