package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/bitfsorg/libdividend-go/distribution"
	"github.com/bitfsorg/libdividend-go/session"
)

func newDistCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dist",
		Short: "Inspect distributions",
	}

	show := &cobra.Command{
		Use:   "show <distribution-id>",
		Short: "Show a distribution",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seq, err := parseSeq(args[0])
			if err != nil {
				return err
			}
			preview, _ := cmd.Flags().GetBool("payouts")
			return view(cmd, func(s *session.Session, out io.Writer) error {
				d, err := s.Engine.GetDistribution(seq)
				if err != nil {
					return err
				}
				printDistribution(out, d)
				if !preview {
					return nil
				}
				payouts, remainder, err := s.Engine.PreviewDistribution(seq)
				if err != nil {
					return err
				}
				for _, p := range payouts {
					claimed, err := s.Engine.HasClaimed(seq, p.Address)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "  %s %s claimed=%t\n", p.Address.Hex(), p.Amount.Dec(), claimed)
				}
				fmt.Fprintf(out, "  remainder %s\n", remainder.Dec())
				return nil
			})
		},
	}
	show.Flags().Bool("payouts", false, "list every locker's share")
	cmd.AddCommand(show)

	list := &cobra.Command{
		Use:   "list",
		Short: "List distributions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			adminFlag, _ := cmd.Flags().GetString("admin")
			return view(cmd, func(s *session.Session, out io.Writer) error {
				if adminFlag != "" {
					admin, err := parseAddress(adminFlag)
					if err != nil {
						return err
					}
					for _, d := range s.Engine.GetDistributions(admin) {
						printDistribution(out, d)
					}
					return nil
				}
				for seq := uint64(1); seq <= s.Engine.DistributionCount(); seq++ {
					d, err := s.Engine.GetDistribution(seq)
					if err != nil {
						return err
					}
					printDistribution(out, d)
				}
				return nil
			})
		},
	}
	list.Flags().String("admin", "", "only distributions started by this address")
	cmd.AddCommand(list)
	return cmd
}

func newShareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "share <distribution-id> <user>",
		Short: "Show a user's share of a distribution",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			seq, err := parseSeq(args[0])
			if err != nil {
				return err
			}
			user, err := parseAddress(args[1])
			if err != nil {
				return err
			}
			return view(cmd, func(s *session.Session, out io.Writer) error {
				share, err := s.Engine.GetMyShare(seq, user)
				if err != nil {
					return err
				}
				claimed, err := s.Engine.HasClaimed(seq, user)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s claimed=%t\n", share.Dec(), claimed)
				return nil
			})
		},
	}
}

func printDistribution(out io.Writer, d distribution.Distribution) {
	fmt.Fprintf(out, "distribution %d %s source=%s payout=%s amount=%s lockers=%d locked=%s by=%s at=%s\n",
		d.Sequence, d.Mode, d.SourceAsset.Hex(), d.PayoutAsset.Hex(), d.TotalAmount.Dec(),
		d.SnapshotLockerCount, d.SnapshotTotalLocked.Dec(), d.Initiator.Hex(), d.CreatedAt.UTC().Format(time.RFC3339))
}
