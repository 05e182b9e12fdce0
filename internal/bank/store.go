package bank

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mo0hamed-shoaib/Bankist-Dashboard/internal/models"
)

// Store is the ordered, in-memory list of accounts. Accounts are handed out
// by pointer so sessions can refer to them by identity; their fields are
// only read or written under the store lock.
type Store struct {
	mu       sync.RWMutex
	accounts []*models.Account
}

// NewStore takes ownership of accounts. Order is preserved.
func NewStore(accounts []*models.Account) *Store {
	return &Store{accounts: accounts}
}

// Lookup returns the first account whose username matches exactly.
func (s *Store) Lookup(username string) *models.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lookup(username)
}

func (s *Store) lookup(username string) *models.Account {
	for _, acc := range s.accounts {
		if acc.Username == username {
			return acc
		}
	}
	return nil
}

func (s *Store) indexOf(acc *models.Account) int {
	for i, a := range s.accounts {
		if a == acc {
			return i
		}
	}
	return -1
}

// Snapshot copies acc. ok is false once the account has been removed.
func (s *Store) Snapshot(acc *models.Account) (models.Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.indexOf(acc) < 0 {
		return models.Account{}, false
	}
	return acc.Clone(), true
}

// Accounts copies every account in store order.
func (s *Store) Accounts() []models.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Account, 0, len(s.accounts))
	for _, acc := range s.accounts {
		out = append(out, acc.Clone())
	}
	return out
}

// Len returns the number of accounts.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.accounts)
}

// Authenticate checks pin against acc's credential.
func (s *Store) Authenticate(acc *models.Account, pin string) bool {
	s.mu.RLock()
	hash := acc.PINHash
	s.mu.RUnlock()
	return CheckPIN(hash, pin)
}

// Remove deletes acc, keeping the order of the others.
func (s *Store) Remove(acc *models.Account) (models.Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(acc)
	if i < 0 {
		return models.Account{}, false
	}
	removed := acc.Clone()
	s.accounts = append(s.accounts[:i], s.accounts[i+1:]...)
	return removed, true
}

// Deposit appends a movement of amount dated at to acc.
func (s *Store) Deposit(acc *models.Account, amount decimal.Decimal, at time.Time) (models.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(acc) < 0 {
		return models.LedgerEntry{}, ErrAccountNotFound
	}
	return apply(acc, amount, at), nil
}

// Transfer moves amount from one account to another. Both legs share the
// timestamp and are applied under one lock. The sender's balance is checked
// again here since it may have changed since the request was accepted.
func (s *Store) Transfer(from, to *models.Account, amount decimal.Decimal, at time.Time) ([]models.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(from) < 0 {
		return nil, ErrAccountNotFound
	}
	if s.indexOf(to) < 0 {
		return nil, ErrRecipientNotFound
	}
	if err := checkBalance(from.Balance(), amount); err != nil {
		return nil, err
	}
	return []models.LedgerEntry{
		apply(from, amount.Neg(), at),
		apply(to, amount, at),
	}, nil
}

func checkBalance(balance, amount decimal.Decimal) error {
	if !balance.IsPositive() || balance.LessThan(amount) {
		return ErrInsufficientBalance
	}
	return nil
}

func apply(acc *models.Account, amount decimal.Decimal, at time.Time) models.LedgerEntry {
	m := models.Movement{ID: uuid.NewString(), Amount: amount, Date: at}
	acc.AddMovement(m)
	return models.LedgerEntry{Username: acc.Username, Currency: acc.Currency, Movement: m}
}
