package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/bitfsorg/libdividend-go/session"
)

func newMintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mint <asset> <account> <amount>",
		Short: "Credit an account in the local asset ledger",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := parseAddress(args[0])
			if err != nil {
				return err
			}
			account, err := parseAddress(args[1])
			if err != nil {
				return err
			}
			amt, err := parseAmount(args[2])
			if err != nil {
				return err
			}
			return update(cmd, func(s *session.Session, out io.Writer) error {
				return s.Ledger.Mint(a, account, amt)
			})
		},
	}
}

func newBalanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance <asset> <account|custody>",
		Short: "Show a balance in the local asset ledger",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := parseAddress(args[0])
			if err != nil {
				return err
			}
			return view(cmd, func(s *session.Session, out io.Writer) error {
				account := s.Ledger.Custody()
				if args[1] != "custody" {
					if account, err = parseAddress(args[1]); err != nil {
						return err
					}
				}
				bal, err := s.Ledger.BalanceOf(a, account)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, bal.Dec())
				return nil
			})
		},
	}
}

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage project admins",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "grant <admin> <asset>",
		Short: "Allow an address to distribute for an asset",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return updateGrant(cmd, args, true)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "revoke <admin> <asset>",
		Short: "Revoke an admin grant",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return updateGrant(cmd, args, false)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List admin grants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return view(cmd, func(s *session.Session, out io.Writer) error {
				for _, g := range s.Auth.Grants() {
					fmt.Fprintf(out, "%s %s\n", g.Admin.Hex(), g.Asset.Hex())
				}
				return nil
			})
		},
	})
	return cmd
}

func updateGrant(cmd *cobra.Command, args []string, grant bool) error {
	admin, err := parseAddress(args[0])
	if err != nil {
		return err
	}
	a, err := parseAddress(args[1])
	if err != nil {
		return err
	}
	return update(cmd, func(s *session.Session, _ io.Writer) error {
		if grant {
			s.Auth.Grant(admin, a)
		} else {
			s.Auth.Revoke(admin, a)
		}
		return nil
	})
}
