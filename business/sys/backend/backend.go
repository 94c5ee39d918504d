// Package backend provides a client for the endpoints of the simulated chain
// backend. Each client carries its own cookie jar since the backend tracks
// the logged in user with a session cookie.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

// TransportError is returned when a request could not be completed or its
// response could not be understood.
type TransportError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (te *TransportError) Error() string {
	return fmt.Sprintf("%s: %s", te.Op, te.Err)
}

// Unwrap provides access to the underlying error.
func (te *TransportError) Unwrap() error {
	return te.Err
}

// IsTransport checks if an error of type TransportError exists.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// =============================================================================

// Config represents the settings for a backend client.
type Config struct {
	Host    string
	Timeout time.Duration
}

// Client provides access to the backend endpoints.
type Client struct {
	host string
	http *http.Client
}

// New constructs a client for the backend at the configured host.
func New(cfg Config) (*Client, error) {
	u, err := url.Parse(cfg.Host)
	if err != nil {
		return nil, fmt.Errorf("parsing host: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("host %q must be an absolute url", cfg.Host)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("constructing cookie jar: %w", err)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	c := Client{
		host: strings.TrimSuffix(cfg.Host, "/"),
		http: &http.Client{
			Jar:     jar,
			Timeout: timeout,
		},
	}

	return &c, nil
}

// Host returns the backend this client talks to.
func (c *Client) Host() string {
	return c.host
}

// Login authenticates the user and starts a backend session.
func (c *Client) Login(ctx context.Context, username string, password string) (AuthResult, error) {
	form := url.Values{
		"username": {username},
		"password": {password},
	}

	var res AuthResult
	if _, err := c.post(ctx, "login", "/login", form, &res); err != nil {
		return AuthResult{}, err
	}

	return res, nil
}

// Signup registers a new user.
func (c *Client) Signup(ctx context.Context, username string, password string) (AuthResult, error) {
	form := url.Values{
		"username": {username},
		"password": {password},
	}

	var res AuthResult
	if _, err := c.post(ctx, "signup", "/signup", form, &res); err != nil {
		return AuthResult{}, err
	}

	return res, nil
}

// Balances returns the balance of every known wallet.
func (c *Client) Balances(ctx context.Context) (Balances, error) {
	var bals Balances
	if err := c.get(ctx, "balances", "/balances", &bals); err != nil {
		return nil, err
	}

	if bals == nil {
		bals = Balances{}
	}

	return bals, nil
}

// Chain returns the full ordered sequence of blocks.
func (c *Client) Chain(ctx context.Context) ([]Block, error) {
	var blocks []Block
	if err := c.get(ctx, "chain", "/chain", &blocks); err != nil {
		return nil, err
	}

	return blocks, nil
}

// Transactions returns the committed transactions in chain order.
func (c *Client) Transactions(ctx context.Context) ([]HistoryTx, error) {
	var txs []HistoryTx
	if err := c.get(ctx, "transactions", "/transactions", &txs); err != nil {
		return nil, err
	}

	return txs, nil
}

// Pending returns the transactions waiting to be mined.
func (c *Client) Pending(ctx context.Context) ([]Tx, error) {
	var txs []Tx
	if err := c.get(ctx, "pending", "/pending", &txs); err != nil {
		return nil, err
	}

	return txs, nil
}

// CreateWallet asks the backend for a new funded wallet.
func (c *Client) CreateWallet(ctx context.Context) (string, error) {
	var nw newWallet
	if err := c.get(ctx, "create wallet", "/create_wallet", &nw); err != nil {
		return "", err
	}

	if nw.Wallet == "" {
		return "", &TransportError{Op: "create wallet", Err: errors.New("response is missing the wallet")}
	}

	return nw.Wallet, nil
}

// Send submits a transfer between two wallets. The backend answers with a
// result document even when it refuses the transfer.
func (c *Client) Send(ctx context.Context, sender string, recipient string, amount string) (SendResult, error) {
	form := url.Values{
		"sender":    {sender},
		"recipient": {recipient},
		"amount":    {amount},
	}

	var res SendResult
	if _, err := c.post(ctx, "send", "/api/send", form, &res); err != nil {
		return SendResult{}, err
	}

	return res, nil
}

// Mine asks the backend to mine the pending transactions, crediting the
// miner. Only the response status is meaningful.
func (c *Client) Mine(ctx context.Context, miner string) (bool, error) {
	form := url.Values{
		"miner": {miner},
	}

	status, err := c.post(ctx, "mine", "/mine", form, nil)
	if err != nil {
		return false, err
	}

	return status >= 200 && status < 300, nil
}

// =============================================================================

func (c *Client) get(ctx context.Context, op string, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.host+path, nil)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return &TransportError{Op: op, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("decoding response: %w", err)}
	}

	return nil
}

func (c *Client) post(ctx context.Context, op string, path string, form url.Values, v any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+path, strings.NewReader(form.Encode()))
	if err != nil {
		return 0, &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if v == nil {
		io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return resp.StatusCode, &TransportError{Op: op, Err: fmt.Errorf("decoding response: %w", err)}
	}

	return resp.StatusCode, nil
}
