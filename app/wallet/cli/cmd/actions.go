package cmd

import (
	"fmt"
	"io"

	"github.com/ardanlabs/simwallet/business/core/dashboard"
	"github.com/spf13/cobra"
)

func sendCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "send <sender> <recipient> <amount>",
		Short: "Send an amount from one wallet to another.",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(cmd, opts, false)
			if err != nil {
				return err
			}
			defer c.close()

			ctx := cmd.Context()
			if err := c.login(ctx); err != nil {
				return err
			}

			if !c.session.Wallet.Send(ctx, args[0], args[1], args[2]) {
				return fmt.Errorf("send failed")
			}

			list := c.session.Wallet.PendingView()
			return c.print(list, func(w io.Writer) {
				printLines(w, list.Lines, list.Placeholder)
			})
		},
	}
}

func mineCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "mine <miner>",
		Short: "Mine the pending transactions, rewarding the miner wallet.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(cmd, opts, false)
			if err != nil {
				return err
			}
			defer c.close()

			ctx := cmd.Context()
			if err := c.login(ctx); err != nil {
				return err
			}

			if !c.session.Wallet.Mine(ctx, args[0]) {
				return fmt.Errorf("mine failed")
			}

			blocks := c.session.Cache.Blocks()
			if len(blocks) == 0 {
				return nil
			}
			last := blocks[len(blocks)-1]
			return c.print(last, func(w io.Writer) {
				fmt.Fprintf(w, "Block #%d %s\n", last.Index, last.Hash)
			})
		},
	}
}

func walletCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "wallet",
		Short: "Create a new wallet.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(cmd, opts, false)
			if err != nil {
				return err
			}
			defer c.close()

			ctx := cmd.Context()
			if opts.username != "" {
				if err := c.login(ctx); err != nil {
					return err
				}
			}

			id, ok := c.session.Wallet.CreateWallet(ctx)
			if !ok {
				return fmt.Errorf("wallet failed")
			}

			v := struct {
				Wallet string `json:"wallet" yaml:"wallet"`
			}{
				Wallet: id,
			}
			return c.print(v, func(w io.Writer) {
				fmt.Fprintln(w, id)
			})
		},
	}
}

func signupCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "signup",
		Short: "Register the user named by --username and --password.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.username == "" || opts.password == "" {
				return fmt.Errorf("signup needs --username and --password")
			}

			c, err := newClient(cmd, opts, false)
			if err != nil {
				return err
			}
			defer c.close()

			if !c.session.Signup(cmd.Context(), opts.username, opts.password) {
				return fmt.Errorf("signup failed")
			}

			return nil
		},
	}
}

func themeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:       "theme [dark|light]",
		Short:     "Print or switch the saved theme.",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{string(dashboard.ThemeDark), string(dashboard.ThemeLight)},
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(cmd, opts, true)
			if err != nil {
				return err
			}
			defer c.close()

			c.session.LoadTheme()

			if len(args) == 1 {
				if err := c.session.ToggleTheme(args[0] == string(dashboard.ThemeDark)); err != nil {
					return err
				}
			}

			theme := c.session.Theme()
			v := struct {
				Theme dashboard.Theme `json:"theme" yaml:"theme"`
			}{
				Theme: theme,
			}
			return c.print(v, func(w io.Writer) {
				fmt.Fprintln(w, theme)
			})
		},
	}
}
