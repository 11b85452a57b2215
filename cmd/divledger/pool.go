package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/bitfsorg/libdividend-go/pool"
	"github.com/bitfsorg/libdividend-go/session"
)

func newPoolCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pool",
		Short: "Manage lock pools",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "create <asset>",
		Short: "Create the pool for an asset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := parseAddress(args[0])
			if err != nil {
				return err
			}
			return update(cmd, func(s *session.Session, out io.Writer) error {
				return s.Engine.CreatePool(a)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show <asset>",
		Short: "Show a pool and its lockers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := parseAddress(args[0])
			if err != nil {
				return err
			}
			return view(cmd, func(s *session.Session, out io.Writer) error {
				info, err := s.Engine.GetPool(a)
				if err != nil {
					return err
				}
				printPool(out, info)
				lockers, err := s.Engine.GetLockers(a)
				if err != nil {
					return err
				}
				for _, user := range lockers {
					lock, err := s.Engine.GetCurrentLock(a, user)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "  %s %s\n", user.Hex(), lock.Dec())
				}
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List pools in creation order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return view(cmd, func(s *session.Session, out io.Writer) error {
				for _, info := range s.Engine.ListPools() {
					printPool(out, info)
				}
				return nil
			})
		},
	})
	return cmd
}

func printPool(out io.Writer, info pool.Info) {
	fmt.Fprintf(out, "pool %s lockers=%d locked=%s\n", info.Asset.Hex(), info.LockerCount, info.TotalLocked.Dec())
}
