// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// validLogLevels lists the accepted log level strings.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// ValidateConfig checks that all configuration values are within acceptable
// ranges and returns the first error encountered, or nil if valid.
func ValidateConfig(cfg Config) error {
	if cfg.DataDir == "" {
		return ErrEmptyDataDir
	}

	if !validLogLevels[strings.ToLower(cfg.LogLevel)] {
		return ErrInvalidLogLevel
	}

	if _, err := cfg.CustodyAddress(); err != nil {
		return err
	}

	if err := cfg.Budget().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidBudget, err)
	}
	if cfg.ClaimCost == 0 || cfg.PayoutCost == 0 {
		return fmt.Errorf("%w: item costs must be positive", ErrInvalidBudget)
	}

	return nil
}

// CustodyAddress parses the custody account.
func (c Config) CustodyAddress() (common.Address, error) {
	if !common.IsHexAddress(c.Custody) {
		return common.Address{}, fmt.Errorf("%w: %q", ErrInvalidCustody, c.Custody)
	}
	addr := common.HexToAddress(c.Custody)
	if addr == (common.Address{}) {
		return common.Address{}, fmt.Errorf("%w: zero address", ErrInvalidCustody)
	}
	return addr, nil
}
