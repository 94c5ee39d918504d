package uigrp

import (
	"github.com/ardanlabs/simwallet/business/core/dashboard"
	"github.com/ardanlabs/simwallet/business/core/explorer"
	"github.com/ardanlabs/simwallet/business/core/wallet"
)

type credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// The amount is kept as text so the wallet can report a malformed value
// the same way it reports an insufficient one.
type sendRequest struct {
	Sender    string `json:"sender"`
	Recipient string `json:"recipient"`
	Amount    string `json:"amount"`
}

type mineRequest struct {
	Miner string `json:"miner"`
}

type themeRequest struct {
	Dark *bool `json:"dark" validate:"required"`
}

type viewportRequest struct {
	Offset      float64 `json:"offset" validate:"gte=0"`
	ClientWidth float64 `json:"client_width" validate:"gte=0"`
	ScrollWidth float64 `json:"scroll_width" validate:"gte=0"`
}

func (v viewportRequest) toViewport() explorer.Viewport {
	return explorer.Viewport{
		Offset:      v.Offset,
		ClientWidth: v.ClientWidth,
		ScrollWidth: v.ScrollWidth,
	}
}

// =============================================================================

type result struct {
	Success bool           `json:"success"`
	Session dashboard.View `json:"session"`
}

type walletResult struct {
	Success bool   `json:"success"`
	Wallet  string `json:"wallet,omitempty"`
}

type sendResult struct {
	Success  bool        `json:"success"`
	Balances wallet.List `json:"balances"`
	Pending  wallet.List `json:"pending"`
}

type mineResult struct {
	Success  bool            `json:"success"`
	Balances wallet.List     `json:"balances"`
	History  wallet.List     `json:"history"`
	Pending  wallet.List     `json:"pending"`
	Cards    []explorer.Card `json:"cards"`
}

type explorerView struct {
	Grid  explorer.GridView  `json:"grid"`
	Modal explorer.ModalView `json:"modal"`
}

type navResult struct {
	Moved bool               `json:"moved"`
	Modal explorer.ModalView `json:"modal"`
}
