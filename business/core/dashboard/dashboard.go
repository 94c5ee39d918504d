// Package dashboard provides the page session of the front end. A session
// owns the explorer and the wallet for one user and handles the tabs, the
// login and signup forms and the theme.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ardanlabs/simwallet/business/core/explorer"
	"github.com/ardanlabs/simwallet/business/core/wallet"
	"github.com/ardanlabs/simwallet/business/sys/backend"
	"github.com/ardanlabs/simwallet/foundation/events"
	"github.com/ardanlabs/simwallet/foundation/nameservice"
)

// ErrUnknownTab is returned when a tab does not exist.
var ErrUnknownTab = errors.New("unknown tab")

// Tab identifies a pane of the dashboard.
type Tab string

// Set of tabs.
const (
	TabSend     Tab = "send"
	TabBalances Tab = "balances"
	TabExplorer Tab = "explorer"
	TabHistory  Tab = "history"
	TabPending  Tab = "pending"
	TabWallet   Tab = "wallet"
	TabMine     Tab = "mine"
)

// Tabs lists the tabs in display order.
var Tabs = []Tab{TabSend, TabBalances, TabExplorer, TabHistory, TabPending, TabWallet, TabMine}

// ParseTab converts a string into a Tab.
func ParseTab(s string) (Tab, error) {
	for _, tab := range Tabs {
		if string(tab) == s {
			return tab, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTab, s)
}

// =============================================================================

// Client is the set of backend calls a session depends on.
type Client interface {
	wallet.Backend
	explorer.Fetcher
	Login(ctx context.Context, username string, password string) (backend.AuthResult, error)
	Signup(ctx context.Context, username string, password string) (backend.AuthResult, error)
}

// Storage is the persisted client side state.
type Storage interface {
	Get(key string) (string, bool, error)
	Set(key string, value string) error
}

// EventHandler defines a function that is called when events
// occur in the processing of the session.
type EventHandler func(v string, args ...any)

// Config represents the configuration required to construct a session.
type Config struct {
	ID        string
	Client    Client
	Storage   Storage
	NS        *nameservice.NameService
	Notifier  events.Notifier
	EvHandler EventHandler
	AfterFunc explorer.AfterFunc
}

// View is the view model of the session level state.
type View struct {
	ID            string `json:"id"`
	Tab           Tab    `json:"tab"`
	Authenticated bool   `json:"authenticated"`
	Username      string `json:"username,omitempty"`
	Wallet        string `json:"wallet,omitempty"`
	Theme         Theme  `json:"theme"`
}

// Session is one user's dashboard. It lives until it is shut down.
type Session struct {
	ID     string
	Events *events.Events
	Cache  *explorer.Cache
	Modal  *explorer.Modal
	Grid   *explorer.Grid
	Wallet *wallet.Wallet

	client    Client
	storage   Storage
	ns        *nameservice.NameService
	notifier  events.Notifier
	evHandler EventHandler

	mu            sync.Mutex
	tab           Tab
	authenticated bool
	username      string
	wallet        string
	theme         Theme
}

// New constructs a session. Start must be called to load the initial state.
func New(cfg Config) *Session {
	ev := cfg.EvHandler
	if ev == nil {
		ev = func(v string, args ...any) {}
	}

	ns := cfg.NS
	if ns == nil {
		ns, _ = nameservice.New("")
	}

	evts := events.NewEvents()
	notifier := events.NotifierFunc(func(e events.Event) {
		ev("session[%s]: notify: %s", cfg.ID, e)
		evts.Send(e)
		if cfg.Notifier != nil {
			cfg.Notifier.Notify(e)
		}
	})

	cache := explorer.NewCache(explorer.CacheConfig{
		Fetcher:   cfg.Client,
		Notifier:  notifier,
		EvHandler: explorer.EventHandler(ev),
	})

	modal := explorer.NewModal(cache, notifier)

	grid := explorer.NewGrid(explorer.GridConfig{
		Cache:     cache,
		Modal:     modal,
		AfterFunc: cfg.AfterFunc,
	})

	w := wallet.New(wallet.Config{
		Backend:   cfg.Client,
		Chain:     cache,
		Notifier:  notifier,
		NS:        ns,
		EvHandler: wallet.EventHandler(ev),
	})

	return &Session{
		ID:        cfg.ID,
		Events:    evts,
		Cache:     cache,
		Modal:     modal,
		Grid:      grid,
		Wallet:    w,
		client:    cfg.Client,
		storage:   cfg.Storage,
		ns:        ns,
		notifier:  notifier,
		evHandler: ev,
		tab:       TabSend,
		theme:     ThemeLight,
	}
}

// Start loads the saved theme and performs the initial read of the chain.
func (s *Session) Start(ctx context.Context) {
	s.LoadTheme()
	s.Cache.Refresh(ctx)
}

// Shutdown releases every receiver of the session's notifications.
func (s *Session) Shutdown() {
	s.Events.Shutdown()
}

// Notify raises a notification on the session.
func (s *Session) Notify(e events.Event) {
	s.notifier.Notify(e)
}

// View returns the view model of the session.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	return View{
		ID:            s.ID,
		Tab:           s.tab,
		Authenticated: s.authenticated,
		Username:      s.username,
		Wallet:        s.wallet,
		Theme:         s.theme,
	}
}

// ShowTab activates the tab and refreshes the data shown on it.
func (s *Session) ShowTab(ctx context.Context, tab Tab) {
	s.activate(tab)

	switch tab {
	case TabBalances:
		s.Wallet.RefreshBalances(ctx)
	case TabExplorer:
		s.Cache.Refresh(ctx)
	case TabHistory:
		s.Wallet.RefreshHistory(ctx)
	case TabPending:
		s.Wallet.RefreshPending(ctx)
	}
}

func (s *Session) activate(tab Tab) {
	s.mu.Lock()
	s.tab = tab
	s.mu.Unlock()

	s.notifier.Notify(events.Info("Opened "+string(tab), events.ColorInfo))
}

// =============================================================================

// Login authenticates the user. On success the dashboard is loaded and the
// send tab is shown.
func (s *Session) Login(ctx context.Context, username string, password string) bool {
	res, err := s.client.Login(ctx, trim(username), trim(password))
	if err != nil {
		s.evHandler("session[%s]: Login: ERROR: %s", s.ID, err)
		s.notifier.Notify(events.Failure("Error during login."))
		return false
	}

	if !res.Success {
		msg := res.Message
		if msg == "" {
			msg = "Login failed."
		}
		s.notifier.Notify(events.Failure(msg))
		return false
	}

	s.mu.Lock()
	s.authenticated = true
	s.username = trim(username)
	s.wallet = res.Wallet
	s.mu.Unlock()

	s.ns.Add(trim(username), res.Wallet)

	s.Wallet.RefreshBalances(ctx)
	s.Cache.Refresh(ctx)
	s.Wallet.RefreshHistory(ctx)
	s.activate(TabSend)

	return true
}

// Signup registers a new user. The user still has to login afterwards.
func (s *Session) Signup(ctx context.Context, username string, password string) bool {
	res, err := s.client.Signup(ctx, trim(username), trim(password))
	if err != nil {
		s.evHandler("session[%s]: Signup: ERROR: %s", s.ID, err)
		s.notifier.Notify(events.Failure("Error during signup."))
		return false
	}

	if !res.Success {
		msg := res.Message
		if msg == "" {
			msg = "Signup failed."
		}
		s.notifier.Notify(events.Failure(msg))
		return false
	}

	s.ns.Add(trim(username), res.Wallet)
	s.notifier.Notify(events.Success("Signup Successful! Please login.", events.ColorSuccess))

	return true
}
