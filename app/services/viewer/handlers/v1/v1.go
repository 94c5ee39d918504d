// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"html/template"
	"net/http"

	"github.com/ardanlabs/simwallet/app/services/viewer/handlers/v1/uigrp"
	"github.com/ardanlabs/simwallet/business/core/dashboard"
	"github.com/ardanlabs/simwallet/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log      *zap.SugaredLogger
	Sessions *dashboard.Registry
	Page     *template.Template
}

// Routes binds all the version 1 routes.
func Routes(app *web.App, cfg Config) {
	ui := uigrp.Handlers{
		Log:      cfg.Log,
		Sessions: cfg.Sessions,
		WS:       websocket.Upgrader{},
		Page:     cfg.Page,
	}

	app.Handle(http.MethodGet, "", "/", ui.Index)

	app.Handle(http.MethodGet, version, "/events", ui.Events)
	app.Handle(http.MethodGet, version, "/session", ui.Session)
	app.Handle(http.MethodPost, version, "/login", ui.Login)
	app.Handle(http.MethodPost, version, "/signup", ui.Signup)
	app.Handle(http.MethodPost, version, "/tabs/:tab", ui.ShowTab)
	app.Handle(http.MethodPost, version, "/theme", ui.Theme)

	app.Handle(http.MethodGet, version, "/balances", ui.Balances)
	app.Handle(http.MethodGet, version, "/history", ui.History)
	app.Handle(http.MethodGet, version, "/pending", ui.Pending)
	app.Handle(http.MethodPost, version, "/send", ui.Send)
	app.Handle(http.MethodPost, version, "/mine", ui.Mine)
	app.Handle(http.MethodPost, version, "/wallet", ui.CreateWallet)
	app.Handle(http.MethodGet, version, "/wallet/copy", ui.CopyWallet)

	app.Handle(http.MethodGet, version, "/explorer", ui.Explorer)
	app.Handle(http.MethodPost, version, "/explorer/scroll/:direction", ui.Scroll)
	app.Handle(http.MethodPost, version, "/explorer/viewport", ui.Viewport)
	app.Handle(http.MethodPost, version, "/explorer/open/:index", ui.Open)
	app.Handle(http.MethodPost, version, "/explorer/nav/:direction", ui.Navigate)
	app.Handle(http.MethodPost, version, "/explorer/click/:target", ui.Click)
	app.Handle(http.MethodPost, version, "/explorer/close", ui.Close)
}
