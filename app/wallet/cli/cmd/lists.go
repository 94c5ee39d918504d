package cmd

import (
	"fmt"
	"io"

	"github.com/ardanlabs/simwallet/business/core/wallet"
	"github.com/spf13/cobra"
)

func balancesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "balances",
		Short: "Print the balance of every wallet.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listRun(cmd, opts, func(c *client) (bool, wallet.List, any) {
				ok := c.session.Wallet.RefreshBalances(cmd.Context())
				return ok, c.session.Wallet.BalancesView(), c.session.Wallet.Balances()
			})
		},
	}
}

func historyCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Print the confirmed transactions.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listRun(cmd, opts, func(c *client) (bool, wallet.List, any) {
				ok := c.session.Wallet.RefreshHistory(cmd.Context())
				return ok, c.session.Wallet.HistoryView(), c.session.Wallet.HistoryView()
			})
		},
	}
}

func pendingCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "Print the transactions waiting to be mined.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listRun(cmd, opts, func(c *client) (bool, wallet.List, any) {
				ok := c.session.Wallet.RefreshPending(cmd.Context())
				return ok, c.session.Wallet.PendingView(), c.session.Wallet.PendingView()
			})
		},
	}
}

// listRun refreshes one list and prints it. The structured output carries
// the raw value where one exists.
func listRun(cmd *cobra.Command, opts *options, fn func(c *client) (bool, wallet.List, any)) error {
	c, err := newClient(cmd, opts, false)
	if err != nil {
		return err
	}
	defer c.close()

	if opts.username != "" {
		if err := c.login(cmd.Context()); err != nil {
			return err
		}
	}

	ok, list, raw := fn(c)
	if !ok {
		return fmt.Errorf("%s failed", cmd.Name())
	}

	return c.print(raw, func(w io.Writer) {
		printLines(w, list.Lines, list.Placeholder)
	})
}
