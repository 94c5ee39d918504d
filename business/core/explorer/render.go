package explorer

import (
	"fmt"
	"strconv"
)

// shortHashLen is the number of hash characters shown on a summary card.
const shortHashLen = 10

// NoTransactions is shown in place of the list for a block without any.
const NoTransactions = "No Transactions"

// TxLine is the display form of a transaction.
type TxLine struct {
	Sender    string `json:"sender"`
	Recipient string `json:"recipient"`
	Amount    string `json:"amount"`
	Text      string `json:"text"`
}

// BlockDetail is the view model for the full detail of a block.
type BlockDetail struct {
	Title        string   `json:"title"`
	Index        int      `json:"index"`
	Hash         string   `json:"hash"`
	PreviousHash string   `json:"previous_hash"`
	Nonce        int64    `json:"nonce"`
	Transactions []TxLine `json:"transactions"`
	Placeholder  string   `json:"placeholder,omitempty"`
}

// RenderBlockDetail produces the detail view model for a block. Every call
// builds the whole body.
func RenderBlockDetail(blk BlockRecord) BlockDetail {
	lines := make([]TxLine, len(blk.Transactions))
	for i, tx := range blk.Transactions {
		amount := FormatAmount(tx.Amount)
		lines[i] = TxLine{
			Sender:    tx.Sender,
			Recipient: tx.Recipient,
			Amount:    amount,
			Text:      fmt.Sprintf("%s → %s: %s", tx.Sender, tx.Recipient, amount),
		}
	}

	bd := BlockDetail{
		Title:        fmt.Sprintf("Block #%d", blk.Index),
		Index:        blk.Index,
		Hash:         blk.Hash,
		PreviousHash: blk.PreviousHash,
		Nonce:        blk.Nonce,
		Transactions: lines,
	}

	if len(lines) == 0 {
		bd.Placeholder = NoTransactions
	}

	return bd
}

// =============================================================================

// Card is the view model for a block summary in the grid.
type Card struct {
	Index     int    `json:"index"`
	Title     string `json:"title"`
	ShortHash string `json:"short_hash"`
	TxCount   int    `json:"tx_count"`
	TxLabel   string `json:"tx_label"`
}

// RenderCard produces the summary card for a block.
func RenderCard(blk BlockRecord) Card {
	return Card{
		Index:     blk.Index,
		Title:     fmt.Sprintf("Block #%d", blk.Index),
		ShortHash: ShortHash(blk.Hash),
		TxCount:   len(blk.Transactions),
		TxLabel:   fmt.Sprintf("Txns: %d", len(blk.Transactions)),
	}
}

// RenderCards produces one card per block in snapshot order.
func RenderCards(blks []BlockRecord) []Card {
	cards := make([]Card, len(blks))
	for i, blk := range blks {
		cards[i] = RenderCard(blk)
	}
	return cards
}

// ShortHash truncates a hash to its leading characters followed by an
// ellipsis.
func ShortHash(hash string) string {
	if len(hash) > shortHashLen {
		hash = hash[:shortHashLen]
	}
	return hash + "..."
}

// FormatAmount renders an amount with the fewest digits needed.
func FormatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', -1, 64)
}
