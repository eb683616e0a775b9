package smsc

import (
	"errors"
	"sort"
	"sync"

	"github.com/go-smsc/emi-smsc/lib/util"
)

// ErrAccountNotFound is returned when attempting to remove a non-existent account.
var ErrAccountNotFound = errors.New("account not found")

// ErrEmptyAccount is returned when attempting to add an account with an empty name.
var ErrEmptyAccount = errors.New("account cannot be empty")

// AuthStore holds the large accounts allowed to open a session.
// It implements session.Authenticator and can be changed at runtime.
//
// An empty store accepts every session open. An account stored with an
// empty password accepts any password.
type AuthStore struct {
	mu       sync.RWMutex
	accounts map[string]string
}

// NewAuthStore creates an empty store.
func NewAuthStore() *AuthStore {
	return &AuthStore{accounts: make(map[string]string)}
}

// NewAuthStoreFromConfig creates an AuthStore initialized from configured accounts.
func NewAuthStoreFromConfig(accounts map[string]string) *AuthStore {
	s := NewAuthStore()
	for k, v := range accounts {
		s.accounts[k] = v
	}
	return s
}

// IsAuthEnabled returns true if at least one account is configured.
func (s *AuthStore) IsAuthEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.accounts) > 0
}

// AddAccount adds or updates an account with the given password.
// Returns ErrEmptyAccount if the account is empty.
func (s *AuthStore) AddAccount(account, password string) error {
	if account == "" {
		return ErrEmptyAccount
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[account] = password
	return nil
}

// RemoveAccount removes an account.
// Returns ErrAccountNotFound if the account does not exist.
func (s *AuthStore) RemoveAccount(account string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[account]; !exists {
		return ErrAccountNotFound
	}
	delete(s.accounts, account)
	return nil
}

// HasAccount returns true if the account exists.
func (s *AuthStore) HasAccount(account string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.accounts[account]
	return exists
}

// ListAccounts returns a sorted slice of all account names.
// Passwords are never exposed through this method.
func (s *AuthStore) ListAccounts() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	accounts := make([]string, 0, len(s.accounts))
	for account := range s.accounts {
		accounts = append(accounts, account)
	}
	sort.Strings(accounts)
	return accounts
}

// CheckPassword verifies the password for an account.
func (s *AuthStore) CheckPassword(account, password string) bool {
	return s.Authenticate(account, password) == nil
}

// Authenticate implements session.Authenticator.
func (s *AuthStore) Authenticate(account, password string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.accounts) == 0 {
		return nil
	}
	stored, ok := s.accounts[account]
	if !ok {
		return util.ErrAuthFailed
	}
	if stored != "" && stored != password {
		return util.ErrAuthFailed
	}
	return nil
}

// AccountCount returns the number of configured accounts.
func (s *AuthStore) AccountCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.accounts)
}

// ToConfig exports the accounts as an independent copy.
func (s *AuthStore) ToConfig() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	accounts := make(map[string]string, len(s.accounts))
	for k, v := range s.accounts {
		accounts[k] = v
	}
	return accounts
}
