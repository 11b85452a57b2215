package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/spf13/cobra"

	"github.com/bitfsorg/libdividend-go/distribution"
	"github.com/bitfsorg/libdividend-go/session"
)

func newDistributeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "distribute <source-asset> <payout-asset> <amount>",
		Short: "Distribute an amount among the lockers of a pool",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			admin, err := caller(cmd)
			if err != nil {
				return err
			}
			source, err := parseAddress(args[0])
			if err != nil {
				return err
			}
			payout, err := parseAddress(args[1])
			if err != nil {
				return err
			}
			amt, err := parseAmount(args[2])
			if err != nil {
				return err
			}
			modeName, _ := cmd.Flags().GetString("mode")
			mode, err := distribution.ParseMode(modeName)
			if err != nil {
				return err
			}

			return update(cmd, func(s *session.Session, out io.Writer) error {
				d, err := s.Engine.DistributeDividends(admin, source, payout, amt, mode)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "distribution %d created\n", d.Sequence)
				return nil
			})
		},
	}
	callerFlag(cmd)
	cmd.Flags().String("mode", distribution.ModeWeighted.String(), "share mode (equal, weighted)")
	return cmd
}

func newDistributeCustomCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "distribute-custom <payout-asset> <total> <user=amount>...",
		Short: "Pay explicit amounts to a list of users",
		Long: "Pull <total> from the caller and pay each listed user the given amount.\n" +
			"Anything left over stays in custody.",
		Args: cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := caller(cmd)
			if err != nil {
				return err
			}
			payout, err := parseAddress(args[0])
			if err != nil {
				return err
			}
			total, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			users, amounts, err := parsePayouts(args[2:])
			if err != nil {
				return err
			}
			opts := callOptions(cmd)

			return update(cmd, func(s *session.Session, out io.Writer) error {
				res, err := s.Engine.DistributeDividendsCustom(from, payout, users, amounts, total, opts...)
				if err != nil && res.Processed == 0 {
					return err
				}
				fmt.Fprintf(out, "paid %d of %d\n", res.Processed, res.Total)
				return err
			})
		},
	}
	callerFlag(cmd)
	maxItemsFlag(cmd)
	return cmd
}

func parsePayouts(args []string) ([]common.Address, []*uint256.Int, error) {
	users := make([]common.Address, 0, len(args))
	amounts := make([]*uint256.Int, 0, len(args))
	for _, arg := range args {
		user, amount, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, nil, fmt.Errorf("invalid payout %q, want user=amount", arg)
		}
		addr, err := parseAddress(user)
		if err != nil {
			return nil, nil, err
		}
		amt, err := parseAmount(amount)
		if err != nil {
			return nil, nil, err
		}
		users = append(users, addr)
		amounts = append(amounts, amt)
	}
	return users, amounts, nil
}
