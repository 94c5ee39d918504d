package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ardanlabs/simwallet/business/core/dashboard"
	"github.com/ardanlabs/simwallet/business/core/explorer"
	"github.com/spf13/cobra"
)

func chainCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "chain",
		Short: "Print a summary card for every block.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(cmd, opts, false)
			if err != nil {
				return err
			}
			defer c.close()

			if !c.session.Cache.Refresh(cmd.Context()) {
				return fmt.Errorf("chain failed")
			}

			return c.print(c.session.Cache.Blocks(), func(w io.Writer) {
				printCards(w, c.session.Grid.Cards())
			})
		},
	}
}

const exploreHelp = `commands:
  l        list the blocks
  o <n>    open block n
  n, p     next or previous block
  c        close the block
  r        reload the chain
  q        quit`

func exploreCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "explore",
		Short: "Browse the chain one block at a time.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(cmd, opts, false)
			if err != nil {
				return err
			}
			defer c.close()

			ctx := cmd.Context()
			c.session.ShowTab(ctx, dashboard.TabExplorer)

			fmt.Fprintln(c.out, exploreHelp)
			printCards(c.out, c.session.Grid.Cards())

			input := bufio.NewScanner(cmd.InOrStdin())
			for {
				fmt.Fprint(c.out, "> ")
				if !input.Scan() {
					return input.Err()
				}

				fields := strings.Fields(input.Text())
				if len(fields) == 0 {
					continue
				}

				switch fields[0] {
				case "q":
					return nil

				case "l":
					printCards(c.out, c.session.Grid.Cards())

				case "r":
					c.session.Cache.Refresh(ctx)
					printCards(c.out, c.session.Grid.Cards())

				case "o":
					if len(fields) != 2 {
						fmt.Fprintln(c.out, "usage: o <n>")
						continue
					}
					index, err := strconv.Atoi(fields[1])
					if err != nil {
						fmt.Fprintln(c.out, "usage: o <n>")
						continue
					}
					if err := c.session.Grid.Select(index); err != nil {
						fmt.Fprintln(c.out, err)
						continue
					}
					printModal(c.out, c.session.Modal.View())

				case "n", "p":
					dir := explorer.Next
					if fields[0] == "p" {
						dir = explorer.Prev
					}
					moved, err := c.session.Modal.Navigate(dir)
					if err != nil {
						if errors.Is(err, explorer.ErrNotOpen) {
							fmt.Fprintln(c.out, "open a block first")
							continue
						}
						return err
					}
					if moved {
						printModal(c.out, c.session.Modal.View())
					}

				case "c":
					c.session.Modal.Close()

				default:
					fmt.Fprintln(c.out, exploreHelp)
				}
			}
		},
	}
}

func printCards(w io.Writer, cards []explorer.Card) {
	if len(cards) == 0 {
		fmt.Fprintln(w, "No blocks.")
		return
	}

	for _, card := range cards {
		fmt.Fprintf(w, "%-10s %-14s %s\n", card.Title, card.ShortHash, card.TxLabel)
	}
}

func printModal(w io.Writer, mv explorer.ModalView) {
	d := mv.Detail

	fmt.Fprintln(w, d.Title)
	fmt.Fprintf(w, "  Hash:          %s\n", d.Hash)
	fmt.Fprintf(w, "  Previous Hash: %s\n", d.PreviousHash)
	fmt.Fprintf(w, "  Nonce:         %d\n", d.Nonce)

	if len(d.Transactions) == 0 {
		fmt.Fprintf(w, "  %s\n", d.Placeholder)
		return
	}

	for _, tx := range d.Transactions {
		fmt.Fprintf(w, "  %s\n", tx.Text)
	}
}
