package wallet

import (
	"math"
	"strconv"
	"strings"
)

// ValidationError is returned when a request fails the checks done against
// the last known balances.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (ve *ValidationError) Error() string {
	return ve.Message
}

// Set of validation failures.
var (
	ErrUnknownSender    = &ValidationError{Field: "sender", Message: "Sender wallet does not exist."}
	ErrUnknownRecipient = &ValidationError{Field: "recipient", Message: "Recipient wallet does not exist."}
	ErrInsufficient     = &ValidationError{Field: "amount", Message: "Insufficient balance."}
	ErrUnknownMiner     = &ValidationError{Field: "miner", Message: "Miner wallet does not exist."}
)

// CheckSend validates a transfer against the last known balances. These
// balances can be stale, so this is only a fast path for obvious mistakes.
func (w *Wallet) CheckSend(sender string, recipient string, amount string) error {
	sender, recipient, amount = trim(sender), trim(recipient), trim(amount)

	w.mu.RLock()
	defer w.mu.RUnlock()

	bal, exists := w.balances[sender]
	if !exists {
		return ErrUnknownSender
	}

	if _, exists := w.balances[recipient]; !exists {
		return ErrUnknownRecipient
	}

	value, err := strconv.ParseFloat(amount, 64)
	if err != nil || math.IsNaN(value) || bal < value {
		return ErrInsufficient
	}

	return nil
}

// CheckMine validates that the miner is a known wallet with a balance.
func (w *Wallet) CheckMine(miner string) error {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if bal := w.balances[trim(miner)]; bal == 0 {
		return ErrUnknownMiner
	}

	return nil
}

func trim(s string) string {
	return strings.TrimSpace(s)
}
