package backend

// Tx represents a transaction as returned by the backend.
type Tx struct {
	Sender    string  `json:"sender"`
	Recipient string  `json:"recipient"`
	Amount    float64 `json:"amount"`
	Timestamp float64 `json:"timestamp,omitempty"`
}

// Block represents a mined block as returned by the chain endpoint.
type Block struct {
	Index        int     `json:"index"`
	Timestamp    float64 `json:"timestamp"`
	Transactions []Tx    `json:"transactions"`
	PreviousHash string  `json:"previous_hash"`
	Nonce        int64   `json:"nonce"`
	Hash         string  `json:"hash"`
}

// HistoryTx is a committed transaction tagged with the block holding it.
type HistoryTx struct {
	Tx
	Block int `json:"block"`
}

// Balances maps a wallet to its balance.
type Balances map[string]float64

// AuthResult is the response of the login and signup endpoints.
type AuthResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Wallet  string `json:"wallet,omitempty"`
}

// SendResult is the response of the send endpoint.
type SendResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type newWallet struct {
	Wallet string `json:"wallet"`
}
