// Package backendtest provides an in memory stand in for the simulated chain
// backend so the front end can be tested end to end.
package backendtest

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"

	"github.com/ardanlabs/simwallet/business/sys/backend"
	"github.com/google/uuid"
)

const sessionCookie = "session"

type user struct {
	password string
	wallet   string
}

// Server is a running fake backend. Close must be called when done.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	users    map[string]user
	sessions map[string]string
	balances backend.Balances
	chain    []backend.Block
	pending  []backend.Tx
	broken   map[string]bool
	hits     map[string]int
}

// New starts a fake backend holding only the genesis block.
func New() *Server {
	s := Server{
		users:    make(map[string]user),
		sessions: make(map[string]string),
		balances: backend.Balances{},
		broken:   make(map[string]bool),
		hits:     make(map[string]int),
	}

	genesis := backend.Block{Index: 0, Timestamp: 1700000000, PreviousHash: "0", Transactions: []backend.Tx{}}
	genesis.Hash = hash(genesis)
	s.chain = []backend.Block{genesis}

	mux := http.NewServeMux()
	mux.HandleFunc("/login", s.login)
	mux.HandleFunc("/signup", s.signup)
	mux.HandleFunc("/balances", s.getBalances)
	mux.HandleFunc("/chain", s.getChain)
	mux.HandleFunc("/transactions", s.getTransactions)
	mux.HandleFunc("/pending", s.getPending)
	mux.HandleFunc("/create_wallet", s.createWallet)
	mux.HandleFunc("/api/send", s.send)
	mux.HandleFunc("/mine", s.mine)
	mux.HandleFunc("/", s.home)

	s.Server = httptest.NewServer(s.count(mux))
	return &s
}

// AddUser registers a user owning the wallet.
func (s *Server) AddUser(username string, password string, wallet string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users[username] = user{password: password, wallet: wallet}
}

// SetBalances replaces the balances.
func (s *Server) SetBalances(bals backend.Balances) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.balances = backend.Balances{}
	for wallet, bal := range bals {
		s.balances[wallet] = bal
	}
}

// SetChain replaces the chain.
func (s *Server) SetChain(blocks []backend.Block) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.chain = append([]backend.Block(nil), blocks...)
}

// Break makes the endpoint at path answer with a document that can't be
// parsed, or a server error for status only endpoints.
func (s *Server) Break(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.broken[path] = true
}

// Fix undoes a previous Break.
func (s *Server) Fix(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.broken, path)
}

// Hits returns the number of requests received for the method and path.
func (s *Server) Hits(method string, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.hits[method+" "+path]
}

// ChainLen returns the number of blocks in the chain.
func (s *Server) ChainLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.chain)
}

// Chain builds a linked chain of n blocks, each after the genesis block
// carrying one transfer and its mining reward.
func Chain(n int) []backend.Block {
	blocks := make([]backend.Block, 0, n)
	prev := "0"
	for i := 0; i < n; i++ {
		blk := backend.Block{
			Index:        i,
			Timestamp:    float64(1700000000 + i),
			PreviousHash: prev,
			Nonce:        int64(i * 97),
			Transactions: []backend.Tx{},
		}
		if i > 0 {
			blk.Transactions = []backend.Tx{
				{Sender: "alice", Recipient: "bob", Amount: float64(i)},
				{Sender: "MINER", Recipient: "alice", Amount: 10},
			}
		}
		blk.Hash = hash(blk)
		prev = blk.Hash
		blocks = append(blocks, blk)
	}
	return blocks
}

// =============================================================================

func (s *Server) count(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits[r.Method+" "+r.URL.Path]++
		s.mu.Unlock()

		h.ServeHTTP(w, r)
	})
}

func (s *Server) isBroken(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.broken[path]
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if s.isBroken(r.URL.Path) {
		w.Write([]byte(`{"broken":`))
		return
	}

	json.NewEncoder(w).Encode(v)
}

func (s *Server) loggedIn(r *http.Request) bool {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, exists := s.sessions[c.Value]
	return exists
}

func (s *Server) home(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	w.Write([]byte("<html></html>"))
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	username, password := r.FormValue("username"), r.FormValue("password")

	s.mu.Lock()
	u, exists := s.users[username]
	s.mu.Unlock()

	switch {
	case !exists:
		s.respond(w, r, http.StatusOK, backend.AuthResult{Message: "User does not exist."})
		return
	case u.password != password:
		s.respond(w, r, http.StatusOK, backend.AuthResult{Message: "Incorrect password."})
		return
	}

	id := uuid.NewString()
	s.mu.Lock()
	s.sessions[id] = username
	s.mu.Unlock()

	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: id, Path: "/"})
	s.respond(w, r, http.StatusOK, backend.AuthResult{Success: true, Wallet: u.wallet})
}

func (s *Server) signup(w http.ResponseWriter, r *http.Request) {
	username, password := r.FormValue("username"), r.FormValue("password")

	s.mu.Lock()
	if _, exists := s.users[username]; exists {
		s.mu.Unlock()
		s.respond(w, r, http.StatusOK, backend.AuthResult{Message: "Username already exists."})
		return
	}

	wallet := uuid.NewString()[:16]
	s.users[username] = user{password: password, wallet: wallet}
	s.balances[wallet] = 10
	s.mu.Unlock()

	s.respond(w, r, http.StatusOK, backend.AuthResult{Success: true, Wallet: wallet})
}

func (s *Server) getBalances(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	bals := backend.Balances{}
	for wallet, bal := range s.balances {
		bals[wallet] = bal
	}
	s.mu.Unlock()

	s.respond(w, r, http.StatusOK, bals)
}

func (s *Server) getChain(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	blocks := append([]backend.Block(nil), s.chain...)
	s.mu.Unlock()

	s.respond(w, r, http.StatusOK, blocks)
}

func (s *Server) getTransactions(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	history := []backend.HistoryTx{}
	for _, blk := range s.chain {
		for _, tx := range blk.Transactions {
			history = append(history, backend.HistoryTx{Tx: tx, Block: blk.Index})
		}
	}
	s.mu.Unlock()

	s.respond(w, r, http.StatusOK, history)
}

func (s *Server) getPending(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	pending := append([]backend.Tx{}, s.pending...)
	s.mu.Unlock()

	s.respond(w, r, http.StatusOK, pending)
}

func (s *Server) createWallet(w http.ResponseWriter, r *http.Request) {
	wallet := uuid.NewString()[:16]

	s.mu.Lock()
	s.balances[wallet] = 10
	s.mu.Unlock()

	s.respond(w, r, http.StatusOK, map[string]string{"wallet": wallet})
}

func (s *Server) send(w http.ResponseWriter, r *http.Request) {
	if !s.loggedIn(r) {
		s.respond(w, r, http.StatusUnauthorized, backend.SendResult{Message: "User not logged in."})
		return
	}

	sender, recipient := r.FormValue("sender"), r.FormValue("recipient")
	amount, err := strconv.ParseFloat(r.FormValue("amount"), 64)
	if err != nil {
		http.Error(w, "bad amount", http.StatusBadRequest)
		return
	}

	if !s.addTransaction(sender, recipient, amount) {
		s.respond(w, r, http.StatusOK, backend.SendResult{Message: "Insufficient funds!"})
		return
	}

	s.respond(w, r, http.StatusOK, backend.SendResult{Success: true, Message: "Transaction successful."})
}

func (s *Server) mine(w http.ResponseWriter, r *http.Request) {
	if !s.loggedIn(r) {
		http.Redirect(w, r, "/login_page", http.StatusFound)
		return
	}

	if s.isBroken(r.URL.Path) {
		http.Error(w, "mining failed", http.StatusInternalServerError)
		return
	}

	s.mu.Lock()
	if len(s.pending) == 0 {
		s.mu.Unlock()
		w.Write([]byte("Nothing to mine!"))
		return
	}
	s.mu.Unlock()

	s.addTransaction("MINER", r.FormValue("miner"), 10)

	s.mu.Lock()
	last := s.chain[len(s.chain)-1]
	blk := backend.Block{
		Index:        last.Index + 1,
		Timestamp:    last.Timestamp + 1,
		Transactions: s.pending,
		PreviousHash: last.Hash,
		Nonce:        int64(len(s.chain) * 31),
	}
	blk.Hash = hash(blk)
	s.chain = append(s.chain, blk)
	s.pending = nil
	s.mu.Unlock()

	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) addTransaction(sender string, recipient string, amount float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sender != "MINER" && s.balances[sender] < amount {
		return false
	}

	s.pending = append(s.pending, backend.Tx{Sender: sender, Recipient: recipient, Amount: amount})
	if sender != "MINER" {
		s.balances[sender] -= amount
	}
	s.balances[recipient] += amount

	return true
}

func hash(blk backend.Block) string {
	data := fmt.Sprintf("%d|%f|%s|%d|%v", blk.Index, blk.Timestamp, blk.PreviousHash, blk.Nonce, blk.Transactions)
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}
