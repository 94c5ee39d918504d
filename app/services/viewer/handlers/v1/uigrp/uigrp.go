// Package uigrp maintains the group of handlers the dashboard page calls.
// Every call runs against the caller's session, which is found by the
// session cookie and created on first use.
package uigrp

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/ardanlabs/simwallet/business/core/dashboard"
	"github.com/ardanlabs/simwallet/business/core/explorer"
	"github.com/ardanlabs/simwallet/business/web/errs"
	"github.com/ardanlabs/simwallet/foundation/validate"
	"github.com/ardanlabs/simwallet/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Session identification.
const (
	CookieName = "simwallet_session"
	HeaderName = "X-Session-ID"
)

// Handlers manages the set of dashboard endpoints.
type Handlers struct {
	Log      *zap.SugaredLogger
	Sessions *dashboard.Registry
	WS       websocket.Upgrader
	Page     *template.Template
}

// Index renders the dashboard page.
func (h Handlers) Index(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	s, err := h.session(ctx, w, r)
	if err != nil {
		return err
	}

	data := struct {
		View  dashboard.View
		Tabs  []dashboard.Tab
		Cards []explorer.Card
	}{
		View:  s.View(),
		Tabs:  dashboard.Tabs,
		Cards: s.Grid.Cards(),
	}

	var b bytes.Buffer
	if err := h.Page.Execute(&b, data); err != nil {
		return fmt.Errorf("render index page: %w", err)
	}

	web.SetStatusCode(ctx, http.StatusOK)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(b.Bytes()); err != nil {
		return err
	}

	return nil
}

// Events handles a web socket to provide the session's notifications.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	s, err := h.session(ctx, w, r)
	if err != nil {
		return err
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := s.Events.Acquire(v.TraceID)
	defer s.Events.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case evt, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteJSON(evt); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// Session returns the session level state.
func (h Handlers) Session(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	s, err := h.session(ctx, w, r)
	if err != nil {
		return err
	}

	return web.Respond(ctx, w, s.View(), http.StatusOK)
}

// Login authenticates the session's user.
func (h Handlers) Login(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	s, err := h.session(ctx, w, r)
	if err != nil {
		return err
	}

	var cred credentials
	if err := decode(r, &cred); err != nil {
		return err
	}

	ok := s.Login(ctx, cred.Username, cred.Password)

	return web.Respond(ctx, w, result{Success: ok, Session: s.View()}, http.StatusOK)
}

// Signup registers a new user.
func (h Handlers) Signup(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	s, err := h.session(ctx, w, r)
	if err != nil {
		return err
	}

	var cred credentials
	if err := decode(r, &cred); err != nil {
		return err
	}

	ok := s.Signup(ctx, cred.Username, cred.Password)

	return web.Respond(ctx, w, result{Success: ok, Session: s.View()}, http.StatusOK)
}

// ShowTab activates a tab and refreshes its data.
func (h Handlers) ShowTab(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	s, err := h.session(ctx, w, r)
	if err != nil {
		return err
	}

	tab, err := dashboard.ParseTab(web.Param(r, "tab"))
	if err != nil {
		return errs.FromCore(err)
	}

	s.ShowTab(ctx, tab)

	return web.Respond(ctx, w, result{Success: true, Session: s.View()}, http.StatusOK)
}

// Theme switches the session's theme.
func (h Handlers) Theme(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	s, err := h.session(ctx, w, r)
	if err != nil {
		return err
	}

	var req themeRequest
	if err := decode(r, &req); err != nil {
		return err
	}

	// The theme is applied even if it could not be saved.
	ok := true
	if err := s.ToggleTheme(*req.Dark); err != nil {
		h.Log.Errorw("theme", "traceid", web.GetTraceID(ctx), "session", s.ID, "ERROR", err)
		ok = false
	}

	return web.Respond(ctx, w, result{Success: ok, Session: s.View()}, http.StatusOK)
}

// =============================================================================

// Balances returns the rendered balances.
func (h Handlers) Balances(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	s, err := h.session(ctx, w, r)
	if err != nil {
		return err
	}

	s.Wallet.RefreshBalances(ctx)

	return web.Respond(ctx, w, s.Wallet.BalancesView(), http.StatusOK)
}

// History returns the rendered confirmed transactions.
func (h Handlers) History(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	s, err := h.session(ctx, w, r)
	if err != nil {
		return err
	}

	s.Wallet.RefreshHistory(ctx)

	return web.Respond(ctx, w, s.Wallet.HistoryView(), http.StatusOK)
}

// Pending returns the rendered pending transactions.
func (h Handlers) Pending(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	s, err := h.session(ctx, w, r)
	if err != nil {
		return err
	}

	s.Wallet.RefreshPending(ctx)

	return web.Respond(ctx, w, s.Wallet.PendingView(), http.StatusOK)
}

// Send transfers an amount between two wallets.
func (h Handlers) Send(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	s, err := h.session(ctx, w, r)
	if err != nil {
		return err
	}

	var req sendRequest
	if err := decode(r, &req); err != nil {
		return err
	}

	resp := sendResult{
		Success:  s.Wallet.Send(ctx, req.Sender, req.Recipient, req.Amount),
		Balances: s.Wallet.BalancesView(),
		Pending:  s.Wallet.PendingView(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Mine asks the backend to mine the pending transactions.
func (h Handlers) Mine(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	s, err := h.session(ctx, w, r)
	if err != nil {
		return err
	}

	var req mineRequest
	if err := decode(r, &req); err != nil {
		return err
	}

	resp := mineResult{
		Success:  s.Wallet.Mine(ctx, req.Miner),
		Balances: s.Wallet.BalancesView(),
		History:  s.Wallet.HistoryView(),
		Pending:  s.Wallet.PendingView(),
		Cards:    s.Grid.Cards(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// CreateWallet asks the backend for a new wallet.
func (h Handlers) CreateWallet(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	s, err := h.session(ctx, w, r)
	if err != nil {
		return err
	}

	wallet, ok := s.Wallet.CreateWallet(ctx)

	return web.Respond(ctx, w, walletResult{Success: ok, Wallet: wallet}, http.StatusOK)
}

// CopyWallet returns the last created wallet for the clipboard.
func (h Handlers) CopyWallet(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	s, err := h.session(ctx, w, r)
	if err != nil {
		return err
	}

	wallet, ok := s.Wallet.CopyWallet()

	return web.Respond(ctx, w, walletResult{Success: ok, Wallet: wallet}, http.StatusOK)
}

// =============================================================================

// Explorer returns the cards of the grid and the state of the modal.
func (h Handlers) Explorer(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	s, err := h.session(ctx, w, r)
	if err != nil {
		return err
	}

	return web.Respond(ctx, w, explorerView{Grid: s.Grid.View(), Modal: s.Modal.View()}, http.StatusOK)
}

// Scroll shifts the grid by one step.
func (h Handlers) Scroll(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	s, err := h.session(ctx, w, r)
	if err != nil {
		return err
	}

	dir, err := explorer.ParseScrollDirection(web.Param(r, "direction"))
	if err != nil {
		return errs.FromCore(err)
	}

	s.Grid.Scroll(dir)

	return web.Respond(ctx, w, s.Grid.View(), http.StatusOK)
}

// Viewport records the geometry measured by the page.
func (h Handlers) Viewport(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	s, err := h.session(ctx, w, r)
	if err != nil {
		return err
	}

	var req viewportRequest
	if err := decode(r, &req); err != nil {
		return err
	}

	s.Grid.Measure(req.toViewport())

	return web.Respond(ctx, w, s.Grid.View(), http.StatusOK)
}

// Open shows the block of the selected card.
func (h Handlers) Open(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	s, err := h.session(ctx, w, r)
	if err != nil {
		return err
	}

	index, err := strconv.Atoi(web.Param(r, "index"))
	if err != nil {
		return errs.NewTrusted(fmt.Errorf("invalid block index: %w", err), http.StatusBadRequest)
	}

	if err := s.Grid.Select(index); err != nil {
		return errs.FromCore(fmt.Errorf("open: %w", err))
	}

	return web.Respond(ctx, w, s.Modal.View(), http.StatusOK)
}

// Navigate moves the modal to the adjacent block.
func (h Handlers) Navigate(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	s, err := h.session(ctx, w, r)
	if err != nil {
		return err
	}

	dir, err := explorer.ParseDirection(web.Param(r, "direction"))
	if err != nil {
		return errs.FromCore(err)
	}

	moved, err := s.Modal.Navigate(dir)
	if err != nil {
		return errs.FromCore(fmt.Errorf("navigate: %w", err))
	}

	return web.Respond(ctx, w, navResult{Moved: moved, Modal: s.Modal.View()}, http.StatusOK)
}

// Click handles a click on the overlay or the content of the modal.
func (h Handlers) Click(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	s, err := h.session(ctx, w, r)
	if err != nil {
		return err
	}

	target, err := explorer.ParseTarget(web.Param(r, "target"))
	if err != nil {
		return errs.FromCore(err)
	}

	s.Modal.Click(target)

	return web.Respond(ctx, w, s.Modal.View(), http.StatusOK)
}

// Close hides the modal.
func (h Handlers) Close(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	s, err := h.session(ctx, w, r)
	if err != nil {
		return err
	}

	s.Modal.Close()

	return web.Respond(ctx, w, s.Modal.View(), http.StatusOK)
}

// =============================================================================

// session returns the caller's session, creating one on first use.
func (h Handlers) session(ctx context.Context, w http.ResponseWriter, r *http.Request) (*dashboard.Session, error) {
	id := r.Header.Get(HeaderName)
	if id == "" {
		if c, err := r.Cookie(CookieName); err == nil {
			id = c.Value
		}
	}

	s, err := h.Sessions.Resume(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}

	if s.ID != id {
		h.Log.Infow("session", "traceid", web.GetTraceID(ctx), "status", "created", "session", s.ID)
		http.SetCookie(w, &http.Cookie{
			Name:     CookieName,
			Value:    s.ID,
			Path:     "/",
			MaxAge:   int((365 * 24 * time.Hour).Seconds()),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}

	return s, nil
}

// decode reads the request body. A body that is not valid JSON is the
// caller's fault.
func decode(r *http.Request, val any) error {
	if err := web.Decode(r, val); err != nil {
		if validate.IsFieldErrors(err) {
			return err
		}
		return errs.NewTrusted(err, http.StatusBadRequest)
	}
	return nil
}
