// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

// Package config loads and saves divledger settings. Values come from, in
// increasing precedence: defaults, the config file, DIVLEDGER_* environment
// variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/bitfsorg/libdividend-go/budget"
)

// EnvPrefix prefixes environment overrides, e.g. DIVLEDGER_LOG_LEVEL.
const EnvPrefix = "DIVLEDGER"

// Config keys, shared by the config file, environment and flags.
const (
	KeyDataDir           = "data-dir"
	KeyLogLevel          = "log-level"
	KeyLogFile           = "log-file"
	KeyCustody           = "custody"
	KeyBudgetLimit       = "budget-limit"
	KeyBudgetNumerator   = "budget-numerator"
	KeyBudgetDenominator = "budget-denominator"
	KeyClaimCost         = "claim-cost"
	KeyPayoutCost        = "payout-cost"
)

// DefaultCustody is the custody account used when none is configured.
const DefaultCustody = "0x000000000000000000000000000000000000c057"

// Config holds divledger settings.
type Config struct {
	DataDir           string // directory holding the database and config file
	LogLevel          string // debug, info, warn, error
	LogFile           string // empty logs to stderr
	Custody           string // hex address of the custody account
	BudgetLimit       uint64
	BudgetNumerator   uint64
	BudgetDenominator uint64
	ClaimCost         uint64
	PayoutCost        uint64
}

// DefaultDataDir returns ~/.divledger, or .divledger if the home directory
// cannot be determined.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".divledger"
	}
	return filepath.Join(home, ".divledger")
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	b := budget.DefaultConfig()
	return Config{
		DataDir:           DefaultDataDir(),
		LogLevel:          "info",
		Custody:           DefaultCustody,
		BudgetLimit:       b.Limit,
		BudgetNumerator:   b.Numerator,
		BudgetDenominator: b.Denominator,
		ClaimCost:         b.ClaimCost,
		PayoutCost:        b.PayoutCost,
	}
}

// ConfigPath returns the config file path inside dataDir.
func ConfigPath(dataDir string) string {
	return filepath.Join(dataDir, "config.yaml")
}

// DBPath returns the ledger database path inside dataDir.
func DBPath(dataDir string) string {
	return filepath.Join(dataDir, "ledger.db")
}

// Budget returns the batch budget described by c.
func (c Config) Budget() budget.Config {
	return budget.Config{
		Limit:       c.BudgetLimit,
		Numerator:   c.BudgetNumerator,
		Denominator: c.BudgetDenominator,
		ClaimCost:   c.ClaimCost,
		PayoutCost:  c.PayoutCost,
	}
}

func newViper(defaults Config) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyDataDir, defaults.DataDir)
	v.SetDefault(KeyLogLevel, defaults.LogLevel)
	v.SetDefault(KeyLogFile, defaults.LogFile)
	v.SetDefault(KeyCustody, defaults.Custody)
	v.SetDefault(KeyBudgetLimit, defaults.BudgetLimit)
	v.SetDefault(KeyBudgetNumerator, defaults.BudgetNumerator)
	v.SetDefault(KeyBudgetDenominator, defaults.BudgetDenominator)
	v.SetDefault(KeyClaimCost, defaults.ClaimCost)
	v.SetDefault(KeyPayoutCost, defaults.PayoutCost)
	return v
}

func fromViper(v *viper.Viper) Config {
	return Config{
		DataDir:           v.GetString(KeyDataDir),
		LogLevel:          v.GetString(KeyLogLevel),
		LogFile:           v.GetString(KeyLogFile),
		Custody:           v.GetString(KeyCustody),
		BudgetLimit:       v.GetUint64(KeyBudgetLimit),
		BudgetNumerator:   v.GetUint64(KeyBudgetNumerator),
		BudgetDenominator: v.GetUint64(KeyBudgetDenominator),
		ClaimCost:         v.GetUint64(KeyClaimCost),
		PayoutCost:        v.GetUint64(KeyPayoutCost),
	}
}

// LoadConfig reads the config file at path over the defaults. Keys absent
// from the file keep their default values; unknown keys are ignored.
func LoadConfig(path string) (Config, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return Config{}, fmt.Errorf("config: stat %s: %w", path, err)
	}

	v := newViper(DefaultConfig())
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return fromViper(v), nil
}

// Load merges defaults, the config file at path if it exists, environment
// variables and flags. Only flags the user actually set override the file.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	v := newViper(DefaultConfig())

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("config: bind flags: %w", err)
		}
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return Config{}, fmt.Errorf("config: read %s: %w", path, err)
			}
		}
	}

	return fromViper(v), nil
}

// SaveConfig writes cfg to path, creating parent directories as needed.
func SaveConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}

	v := viper.New()
	v.Set(KeyDataDir, cfg.DataDir)
	v.Set(KeyLogLevel, cfg.LogLevel)
	v.Set(KeyLogFile, cfg.LogFile)
	v.Set(KeyCustody, cfg.Custody)
	v.Set(KeyBudgetLimit, cfg.BudgetLimit)
	v.Set(KeyBudgetNumerator, cfg.BudgetNumerator)
	v.Set(KeyBudgetDenominator, cfg.BudgetDenominator)
	v.Set(KeyClaimCost, cfg.ClaimCost)
	v.Set(KeyPayoutCost, cfg.PayoutCost)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return os.Chmod(path, 0600)
}
