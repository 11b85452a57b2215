package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/bitfsorg/libdividend-go/session"
)

func newClaimCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "claim <distribution-id>...",
		Short: "Claim dividends",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := caller(cmd)
			if err != nil {
				return err
			}
			seqs := make([]uint64, len(args))
			for i, arg := range args {
				if seqs[i], err = parseSeq(arg); err != nil {
					return err
				}
			}

			if len(seqs) == 1 {
				return update(cmd, func(s *session.Session, out io.Writer) error {
					paid, err := s.Engine.ClaimDividends(user, seqs[0])
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "claimed %s\n", paid.Dec())
					return nil
				})
			}

			opts := callOptions(cmd)
			return update(cmd, func(s *session.Session, out io.Writer) error {
				res, err := s.Engine.ClaimMultipleDividends(user, seqs, opts...)
				if err != nil && res.Processed == 0 {
					return err
				}
				fmt.Fprintf(out, "claimed %d of %d\n", res.Processed, res.Total)
				return err
			})
		},
	}
	callerFlag(cmd)
	maxItemsFlag(cmd)
	return cmd
}

func newClaimableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "claimable <user> <asset>",
		Short: "List distributions the user can still claim from an asset's pool",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := parseAddress(args[0])
			if err != nil {
				return err
			}
			a, err := parseAddress(args[1])
			if err != nil {
				return err
			}
			return view(cmd, func(s *session.Session, out io.Writer) error {
				seqs, err := s.Engine.GetParticipatedNotClaimed(user, a)
				if err != nil {
					return err
				}
				for _, seq := range seqs {
					share, err := s.Engine.GetMyShare(seq, user)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "%d %s\n", seq, share.Dec())
				}
				return nil
			})
		},
	}
}
