package main

import (
	"fmt"
	"io"

	"github.com/holiman/uint256"
	"github.com/spf13/cobra"

	"github.com/bitfsorg/libdividend-go/dividend"
	"github.com/bitfsorg/libdividend-go/session"
)

func newLockCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lock <asset> <amount|all>",
		Short: "Lock tokens into an asset's pool",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := caller(cmd)
			if err != nil {
				return err
			}
			a, err := parseAddress(args[0])
			if err != nil {
				return err
			}
			if args[1] == "all" {
				return update(cmd, func(s *session.Session, out io.Writer) error {
					amt, err := s.Engine.LockAllTokens(user, a)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "locked %s\n", amt.Dec())
					return nil
				})
			}
			amt, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			return update(cmd, func(s *session.Session, out io.Writer) error {
				return s.Engine.LockTokens(user, a, amt)
			})
		},
	}
	callerFlag(cmd)
	return cmd
}

func newUnlockCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unlock <asset> <amount|all>",
		Short: "Claim pending dividends and unlock tokens",
		Long: "Claim every pending dividend of the asset's pool, then return the tokens.\n" +
			"If the budget runs out first the lock is unchanged; run the command again.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := caller(cmd)
			if err != nil {
				return err
			}
			a, err := parseAddress(args[0])
			if err != nil {
				return err
			}
			all := args[1] == "all"
			var amt *uint256.Int
			if !all {
				if amt, err = parseAmount(args[1]); err != nil {
					return err
				}
			}
			opts := callOptions(cmd)

			return update(cmd, func(s *session.Session, out io.Writer) error {
				var res dividend.UnlockResult
				var err error
				if all {
					res, err = s.Engine.UnlockAllTokens(user, a, opts...)
				} else {
					res, err = s.Engine.UnlockTokens(user, a, amt, opts...)
				}
				if err != nil {
					if res.Claimed > 0 {
						fmt.Fprintf(out, "claimed %d before failing, %d still pending\n", res.Claimed, res.Pending)
					}
					return err
				}
				if !res.Unlocked {
					fmt.Fprintf(out, "claimed %d, %d still pending; run unlock again\n", res.Claimed, res.Pending)
					return nil
				}
				fmt.Fprintf(out, "unlocked %s (claimed %d)\n", res.Amount.Dec(), res.Claimed)
				return nil
			})
		},
	}
	callerFlag(cmd)
	maxItemsFlag(cmd)
	return cmd
}
