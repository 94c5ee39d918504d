// Package nameservice maintains a lookup of wallet ids to the usernames that
// own them, so balances and history can be shown with readable names. Names
// are loaded from a yaml book file and learned from logins.
package nameservice

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// NameService maintains a map of wallets for name lookup.
type NameService struct {
	mu      sync.RWMutex
	wallets map[string]string
}

// New constructs a name service with the names found in the book file. The
// book maps a username to its wallet id. A missing book is not an error.
func New(book string) (*NameService, error) {
	ns := NameService{
		wallets: make(map[string]string),
	}

	if book == "" {
		return &ns, nil
	}

	data, err := os.ReadFile(book)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &ns, nil
		}
		return nil, fmt.Errorf("reading book: %w", err)
	}

	var names map[string]string
	if err := yaml.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("decoding book: %w", err)
	}

	for name, wallet := range names {
		ns.wallets[wallet] = name
	}

	return &ns, nil
}

// Add records the username that owns the wallet.
func (ns *NameService) Add(name string, wallet string) {
	if name == "" || wallet == "" {
		return
	}

	ns.mu.Lock()
	defer ns.mu.Unlock()

	ns.wallets[wallet] = name
}

// Lookup returns the name for the specified wallet, or the wallet itself
// when no name is known.
func (ns *NameService) Lookup(wallet string) string {
	ns.mu.RLock()
	defer ns.mu.RUnlock()

	name, exists := ns.wallets[wallet]
	if !exists {
		return wallet
	}
	return name
}

// Copy returns a copy of the map of wallets and names.
func (ns *NameService) Copy() map[string]string {
	ns.mu.RLock()
	defer ns.mu.RUnlock()

	cpy := make(map[string]string, len(ns.wallets))
	for wallet, name := range ns.wallets {
		cpy[wallet] = name
	}
	return cpy
}

// Save writes the known names to the book file.
func (ns *NameService) Save(book string) error {
	names := make(map[string]string)
	for wallet, name := range ns.Copy() {
		names[name] = wallet
	}

	data, err := yaml.Marshal(names)
	if err != nil {
		return fmt.Errorf("encoding book: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(book), 0755); err != nil {
		return fmt.Errorf("creating book folder: %w", err)
	}

	if err := os.WriteFile(book, data, 0600); err != nil {
		return fmt.Errorf("writing book: %w", err)
	}

	return nil
}
