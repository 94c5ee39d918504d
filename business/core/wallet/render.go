package wallet

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/ardanlabs/simwallet/business/sys/backend"
	"github.com/ardanlabs/simwallet/foundation/nameservice"
)

// List is the view model of a rendered list. Placeholder is set when there
// is nothing to show.
type List struct {
	Lines       []string `json:"lines"`
	Placeholder string   `json:"placeholder,omitempty"`
}

// RenderBalances renders one line per wallet ordered by wallet id.
func RenderBalances(bals backend.Balances, ns *nameservice.NameService) List {
	wallets := make([]string, 0, len(bals))
	for wallet := range bals {
		wallets = append(wallets, wallet)
	}
	sort.Strings(wallets)

	lines := make([]string, len(wallets))
	for i, wallet := range wallets {
		lines[i] = fmt.Sprintf("%s: %.2f SIM", label(ns, wallet), bals[wallet])
	}

	return newList(lines, "No balances yet.")
}

// RenderHistory renders the committed transactions in chain order.
func RenderHistory(txs []backend.HistoryTx, ns *nameservice.NameService) List {
	lines := make([]string, len(txs))
	for i, tx := range txs {
		lines[i] = fmt.Sprintf("%s → %s: %s SIM (Block #%d)", label(ns, tx.Sender), label(ns, tx.Recipient), amount(tx.Amount), tx.Block)
	}

	return newList(lines, "No transactions yet.")
}

// RenderPending renders the transactions waiting to be mined.
func RenderPending(txs []backend.Tx, ns *nameservice.NameService) List {
	lines := make([]string, len(txs))
	for i, tx := range txs {
		lines[i] = fmt.Sprintf("%s → %s: %s SIM", label(ns, tx.Sender), label(ns, tx.Recipient), amount(tx.Amount))
	}

	return newList(lines, "No pending transactions.")
}

func newList(lines []string, placeholder string) List {
	if len(lines) == 0 {
		return List{Lines: []string{}, Placeholder: placeholder}
	}
	return List{Lines: lines}
}

// label shows the owner's name next to the wallet id when it is known.
func label(ns *nameservice.NameService, wallet string) string {
	if ns == nil {
		return wallet
	}

	name := ns.Lookup(wallet)
	if name == wallet {
		return wallet
	}
	return fmt.Sprintf("%s (%s)", name, wallet)
}

func amount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
