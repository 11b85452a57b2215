// Command divledger runs a dividend ledger stored in a local data directory.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bitfsorg/libdividend-go/asset"
	"github.com/bitfsorg/libdividend-go/budget"
	"github.com/bitfsorg/libdividend-go/config"
	"github.com/bitfsorg/libdividend-go/dividend"
	"github.com/bitfsorg/libdividend-go/events"
	"github.com/bitfsorg/libdividend-go/logger"
	"github.com/bitfsorg/libdividend-go/session"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	defaults := config.DefaultConfig()

	root := &cobra.Command{
		Use:          "divledger",
		Short:        "Lock tokens, distribute dividends and claim them",
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "config file path (default <data-dir>/config.yaml)")
	pf.Bool("wait", false, "wait for another divledger process to finish instead of failing")
	pf.String(config.KeyDataDir, defaults.DataDir, "data directory")
	pf.String(config.KeyLogLevel, defaults.LogLevel, "log level (debug, info, warn, error)")
	pf.String(config.KeyLogFile, defaults.LogFile, "log file (default stderr)")
	pf.String(config.KeyCustody, defaults.Custody, "custody account address")
	pf.Uint64(config.KeyBudgetLimit, defaults.BudgetLimit, "resource budget for one batch call")
	pf.Uint64(config.KeyBudgetNumerator, defaults.BudgetNumerator, "numerator of the fraction of the budget a batch may use")
	pf.Uint64(config.KeyBudgetDenominator, defaults.BudgetDenominator, "denominator of the fraction of the budget a batch may use")
	pf.Uint64(config.KeyClaimCost, defaults.ClaimCost, "budget units charged per claim")
	pf.Uint64(config.KeyPayoutCost, defaults.PayoutCost, "budget units charged per custom payout")

	root.AddCommand(
		newInitCmd(),
		newPoolCmd(),
		newLockCmd(),
		newUnlockCmd(),
		newDistributeCmd(),
		newDistributeCustomCmd(),
		newClaimCmd(),
		newClaimableCmd(),
		newShareCmd(),
		newDistCmd(),
		newMintCmd(),
		newBalanceCmd(),
		newAdminCmd(),
	)
	return root
}

// loadConfig resolves the data directory first so that the default config
// file location follows --data-dir.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		cfg, err := config.Load("", cmd.Flags())
		if err != nil {
			return config.Config{}, err
		}
		path = config.ConfigPath(cfg.DataDir)
	}
	return config.Load(path, cmd.Flags())
}

func openSession(cmd *cobra.Command) (*session.Session, *zap.Logger, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return nil, nil, err
	}
	log, err := logger.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return nil, nil, err
	}

	opts := []session.Option{session.WithLogger(log)}
	if wait, _ := cmd.Flags().GetBool("wait"); wait {
		opts = append(opts, session.WithWait())
	}
	s, err := session.Open(cfg, opts...)
	if err != nil {
		_ = log.Sync()
		return nil, nil, err
	}
	return s, log, nil
}

// view runs a read-only command.
func view(cmd *cobra.Command, fn func(s *session.Session, out io.Writer) error) error {
	s, log, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck
	defer s.Close()
	return fn(s, cmd.OutOrStdout())
}

// update runs a mutating command, saves the result and prints its events.
func update(cmd *cobra.Command, fn func(s *session.Session, out io.Writer) error) error {
	s, log, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck
	defer s.Close()

	out := cmd.OutOrStdout()
	err = s.Update(func(s *session.Session) error { return fn(s, out) })
	printEvents(out, s.Events())
	return err
}

func printEvents(out io.Writer, evs []events.Event) {
	for _, ev := range evs {
		fmt.Fprintf(out, "event %s %+v\n", ev.Name(), ev)
	}
}

// parseAddress accepts a hex address or "native" for the native asset.
func parseAddress(s string) (common.Address, error) {
	if strings.EqualFold(s, "native") {
		return asset.Native, nil
	}
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("invalid address %q", s)
	}
	return common.HexToAddress(s), nil
}

func parseAmount(s string) (*uint256.Int, error) {
	amt, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return amt, nil
}

func parseSeq(s string) (uint64, error) {
	amt, err := uint256.FromDecimal(s)
	if err != nil || !amt.IsUint64() {
		return 0, fmt.Errorf("invalid distribution id %q", s)
	}
	return amt.Uint64(), nil
}

func callerFlag(cmd *cobra.Command) {
	cmd.Flags().String("caller", "", "address the call is made as (required)")
	_ = cmd.MarkFlagRequired("caller")
}

func caller(cmd *cobra.Command) (common.Address, error) {
	s, _ := cmd.Flags().GetString("caller")
	return parseAddress(s)
}

func maxItemsFlag(cmd *cobra.Command) {
	cmd.Flags().Uint64("max-items", 0, "process at most this many items (default: the configured budget)")
}

func callOptions(cmd *cobra.Command) []dividend.CallOption {
	n, _ := cmd.Flags().GetUint64("max-items")
	if n == 0 {
		return nil
	}
	return []dividend.CallOption{dividend.WithCallBudget(budget.Items(n))}
}
