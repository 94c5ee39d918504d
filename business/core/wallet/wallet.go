// Package wallet provides the wallet side of the dashboard: balances,
// transfers, mining, history and wallet creation.
package wallet

import (
	"context"
	"sync"

	"github.com/ardanlabs/simwallet/business/sys/backend"
	"github.com/ardanlabs/simwallet/foundation/events"
	"github.com/ardanlabs/simwallet/foundation/nameservice"
)

// Backend is the set of backend calls the wallet depends on.
type Backend interface {
	Balances(ctx context.Context) (backend.Balances, error)
	Transactions(ctx context.Context) ([]backend.HistoryTx, error)
	Pending(ctx context.Context) ([]backend.Tx, error)
	CreateWallet(ctx context.Context) (string, error)
	Send(ctx context.Context, sender string, recipient string, amount string) (backend.SendResult, error)
	Mine(ctx context.Context, miner string) (bool, error)
}

// ChainRefresher is the behavior required to reload the chain after a
// block is mined.
type ChainRefresher interface {
	Refresh(ctx context.Context) bool
}

// EventHandler defines a function that is called when events
// occur in the processing of the wallet.
type EventHandler func(v string, args ...any)

// Config represents the configuration required to construct a wallet.
type Config struct {
	Backend   Backend
	Chain     ChainRefresher
	Notifier  events.Notifier
	NS        *nameservice.NameService
	EvHandler EventHandler
}

// Wallet keeps the last known balances, history and pending transactions.
type Wallet struct {
	backend   Backend
	chain     ChainRefresher
	notifier  events.Notifier
	ns        *nameservice.NameService
	evHandler EventHandler

	mu         sync.RWMutex
	balances   backend.Balances
	history    []backend.HistoryTx
	pending    []backend.Tx
	lastWallet string
}

// New constructs a wallet with no known balances.
func New(cfg Config) *Wallet {
	ev := cfg.EvHandler
	if ev == nil {
		ev = func(v string, args ...any) {}
	}

	ns := cfg.NS
	if ns == nil {
		ns, _ = nameservice.New("")
	}

	return &Wallet{
		backend:   cfg.Backend,
		chain:     cfg.Chain,
		notifier:  cfg.Notifier,
		ns:        ns,
		evHandler: ev,
		balances:  backend.Balances{},
	}
}

// RefreshBalances reloads the balances of every wallet.
func (w *Wallet) RefreshBalances(ctx context.Context) bool {
	bals, err := w.backend.Balances(ctx)
	if err != nil {
		w.evHandler("wallet: RefreshBalances: ERROR: %s", err)
		w.notifier.Notify(events.Failure("Failed to load balances."))
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.balances = bals
	w.evHandler("wallet: RefreshBalances: completed: wallets[%d]", len(bals))

	return true
}

// RefreshHistory reloads the committed transactions.
func (w *Wallet) RefreshHistory(ctx context.Context) bool {
	txs, err := w.backend.Transactions(ctx)
	if err != nil {
		w.evHandler("wallet: RefreshHistory: ERROR: %s", err)
		w.notifier.Notify(events.Failure("Failed to load transactions."))
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.history = txs
	return true
}

// RefreshPending reloads the transactions waiting to be mined.
func (w *Wallet) RefreshPending(ctx context.Context) bool {
	txs, err := w.backend.Pending(ctx)
	if err != nil {
		w.evHandler("wallet: RefreshPending: ERROR: %s", err)
		w.notifier.Notify(events.Failure("Failed to load pending transactions."))
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending = txs
	return true
}

// Balance returns the last known balance of the wallet and whether the
// wallet is known.
func (w *Wallet) Balance(wallet string) (float64, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	bal, exists := w.balances[wallet]
	return bal, exists
}

// Balances returns a copy of the last known balances.
func (w *Wallet) Balances() backend.Balances {
	w.mu.RLock()
	defer w.mu.RUnlock()

	cpy := make(backend.Balances, len(w.balances))
	for wallet, bal := range w.balances {
		cpy[wallet] = bal
	}
	return cpy
}

// BalancesView renders the last known balances.
func (w *Wallet) BalancesView() List {
	return RenderBalances(w.Balances(), w.ns)
}

// HistoryView renders the last known committed transactions.
func (w *Wallet) HistoryView() List {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return RenderHistory(w.history, w.ns)
}

// PendingView renders the last known pending transactions.
func (w *Wallet) PendingView() List {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return RenderPending(w.pending, w.ns)
}

// =============================================================================

// Send transfers an amount between two wallets. The request is checked
// against the last known balances first and is not sent when the check
// fails. The backend remains the authority on the transfer. It reports
// whether the backend accepted the transfer.
func (w *Wallet) Send(ctx context.Context, sender string, recipient string, amount string) bool {
	if err := w.CheckSend(sender, recipient, amount); err != nil {
		w.evHandler("wallet: Send: rejected: %s", err)
		w.notifier.Notify(events.Failure(err.Error()))
		return false
	}

	res, err := w.backend.Send(ctx, trim(sender), trim(recipient), trim(amount))
	if err != nil {
		w.evHandler("wallet: Send: ERROR: %s", err)
		w.notifier.Notify(events.Failure("Error sending transaction."))
		return false
	}

	if !res.Success {
		msg := res.Message
		if msg == "" {
			msg = "Transaction failed."
		}
		w.notifier.Notify(events.Failure(msg))
		return false
	}

	w.notifier.Notify(events.Success(res.Message, events.ColorSuccess))
	w.RefreshBalances(ctx)
	w.RefreshPending(ctx)

	return true
}

// Mine asks the backend to mine a block for the miner. The miner must be a
// known wallet with a balance. It reports whether a block was mined.
func (w *Wallet) Mine(ctx context.Context, miner string) bool {
	if err := w.CheckMine(miner); err != nil {
		w.evHandler("wallet: Mine: rejected: %s", err)
		w.notifier.Notify(events.Failure(err.Error()))
		return false
	}

	ok, err := w.backend.Mine(ctx, trim(miner))
	if err != nil {
		w.evHandler("wallet: Mine: ERROR: %s", err)
		w.notifier.Notify(events.Failure("Error mining block."))
		return false
	}

	if !ok {
		w.notifier.Notify(events.Failure("Mining failed."))
		return false
	}

	w.notifier.Notify(events.Success("Block mined successfully", events.ColorMined))

	w.RefreshBalances(ctx)
	if w.chain != nil {
		w.chain.Refresh(ctx)
	}
	w.RefreshHistory(ctx)
	w.RefreshPending(ctx)

	return true
}

// CreateWallet asks the backend for a new wallet and remembers it.
func (w *Wallet) CreateWallet(ctx context.Context) (string, bool) {
	wallet, err := w.backend.CreateWallet(ctx)
	if err != nil {
		w.evHandler("wallet: CreateWallet: ERROR: %s", err)
		w.notifier.Notify(events.Failure("Failed to create wallet."))
		return "", false
	}

	w.mu.Lock()
	w.lastWallet = wallet
	w.mu.Unlock()

	w.RefreshBalances(ctx)
	w.notifier.Notify(events.Success("Wallet created: "+wallet, events.ColorSuccess))

	return wallet, true
}

// CopyWallet returns the last created wallet for the clipboard.
func (w *Wallet) CopyWallet() (string, bool) {
	w.mu.RLock()
	wallet := w.lastWallet
	w.mu.RUnlock()

	if wallet == "" {
		w.notifier.Notify(events.Failure("No wallet address to copy."))
		return "", false
	}

	w.notifier.Notify(events.Info("Wallet address copied", events.ColorInfo))
	return wallet, true
}

// LastWallet returns the last created wallet, if any.
func (w *Wallet) LastWallet() string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return w.lastWallet
}
