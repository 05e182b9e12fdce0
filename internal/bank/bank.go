// Package bank implements the account store and the actions a logged-in
// user can take: transfer, loan, closure and sorting.
package bank

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mo0hamed-shoaib/Bankist-Dashboard/internal/countdown"
	"github.com/mo0hamed-shoaib/Bankist-Dashboard/internal/models"
)

// loanRatio is the share of a requested loan that some movement must cover.
var loanRatio = decimal.RequireFromString("0.1")

// Events receives the outcome of completed actions. Implementations must
// not block for long; they run on settlement and timer goroutines.
type Events interface {
	MovementsApplied(ctx context.Context, entries []models.LedgerEntry)
	AccountClosed(ctx context.Context, acc models.Account)
	SessionEnded(ctx context.Context, username string, reason EndReason)
}

// NopEvents discards every event.
type NopEvents struct{}

func (NopEvents) MovementsApplied(context.Context, []models.LedgerEntry) {}
func (NopEvents) AccountClosed(context.Context, models.Account)          {}
func (NopEvents) SessionEnded(context.Context, string, EndReason)        {}

// View is a consistent copy of what a session shows.
type View struct {
	Account models.Account
	Sorted  bool
	Timer   string
}

// Bank ties the store to the live sessions.
type Bank struct {
	cfg    Config
	store  *Store
	events Events

	mu       sync.Mutex
	sessions map[string]*Session
}

// New returns a Bank over store. A nil events discards notifications.
func New(store *Store, cfg Config, events Events) *Bank {
	if events == nil {
		events = NopEvents{}
	}
	if cfg.Now == nil {
		cfg.Now = DefaultConfig().Now
	}
	return &Bank{
		cfg:      cfg,
		store:    store,
		events:   events,
		sessions: make(map[string]*Session),
	}
}

// Store exposes the underlying account store.
func (b *Bank) Store() *Store {
	return b.store
}

// Sessions returns the number of live sessions.
func (b *Bank) Sessions() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.sessions)
}

// Login authenticates username and pin and opens a session. previous, if
// set, is the caller's current session; it is ended once the new login
// succeeds so only one countdown runs per client.
func (b *Bank) Login(previous, username, pin string) (*Session, error) {
	acc := b.store.Lookup(username)
	if acc == nil {
		return nil, ErrAccountNotFound
	}
	if !b.store.Authenticate(acc, pin) {
		return nil, ErrIncorrectPIN
	}

	if previous != "" {
		b.end(previous, EndRelogin)
	}

	s := newSession(uuid.NewString(), acc)
	s.mu.Lock()
	s.timer = countdown.Start(b.cfg.Timer, countdown.Hooks{
		OnExpire: func() { b.expire(s) },
	})
	s.mu.Unlock()

	b.mu.Lock()
	b.sessions[s.ID] = s
	b.mu.Unlock()

	slog.Info("login", "username", username, "session", s.ID)
	return s, nil
}

// Session returns the live session with the given id.
func (b *Bank) Session(id string) (*Session, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.sessions[id]
	if !ok {
		return nil, ErrNotAuthenticated
	}
	return s, nil
}

// View copies the session's account, sort flag and countdown.
func (b *Bank) View(id string) (View, error) {
	s, err := b.Session(id)
	if err != nil {
		return View{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return View{}, ErrNotAuthenticated
	}
	acc, ok := b.store.Snapshot(s.account)
	if !ok {
		return View{}, ErrNotAuthenticated
	}
	return View{Account: acc, Sorted: s.sorted, Timer: s.timer.String()}, nil
}

// Transfer validates a transfer to the account named to and schedules it
// after the settlement delay. Checks run in order: own account, unknown
// recipient, balance, negative amount.
func (b *Bank) Transfer(id, to, amount string) error {
	s, err := b.Session(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	sender, err := b.live(s)
	if err != nil {
		return err
	}
	if to == sender.Username {
		return ErrSelfTransfer
	}
	recipient := b.store.Lookup(to)
	if recipient == nil {
		return ErrRecipientNotFound
	}
	// An unreadable amount fails the balance check like any other bad amount.
	value, err := parseAmount(amount)
	if err != nil {
		return ErrInsufficientBalance
	}
	if err := checkBalance(sender.Balance(), value); err != nil {
		return err
	}
	if value.IsNegative() {
		return ErrNegativeAmount
	}

	s.resetTimer()
	s.after(b.cfg.SettlementDelay, func(acc *models.Account) []models.LedgerEntry {
		entries, err := b.store.Transfer(acc, recipient, value, b.cfg.Now())
		if err != nil {
			slog.Warn("transfer dropped at settlement", "from", sender.Username, "to", to, "error", err)
			return nil
		}
		slog.Info("transfer settled", "from", sender.Username, "to", to, "amount", value.String())
		return entries
	}, b.publish)
	return nil
}

// RequestLoan grants a loan when the whole-number amount is positive and at
// least one movement is worth 10% of it. The deposit lands after the
// settlement delay.
func (b *Bank) RequestLoan(id, amount string) error {
	s, err := b.Session(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, err := b.live(s)
	if err != nil {
		return err
	}
	value, err := parseAmount(amount)
	if err != nil {
		return ErrLoanDenied
	}
	value = value.Floor()
	if !value.IsPositive() || !acc.HasMovementAtLeast(value.Mul(loanRatio)) {
		return ErrLoanDenied
	}

	s.resetTimer()
	s.after(b.cfg.SettlementDelay, func(acc *models.Account) []models.LedgerEntry {
		entry, err := b.store.Deposit(acc, value, b.cfg.Now())
		if err != nil {
			slog.Warn("loan dropped at settlement", "error", err)
			return nil
		}
		slog.Info("loan settled", "username", entry.Username, "amount", value.String())
		return []models.LedgerEntry{entry}
	}, b.publish)
	return nil
}

// Close removes the session's account when username and pin both match it,
// then ends the session.
func (b *Bank) Close(id, username, pin string) error {
	s, err := b.Session(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	acc, err := b.live(s)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if username != acc.Username || !b.store.Authenticate(s.account, pin) {
		s.mu.Unlock()
		return ErrWrongCredentials
	}
	removed, ok := b.store.Remove(s.account)
	s.endLocked()
	s.mu.Unlock()

	b.forget(id)
	if !ok {
		return ErrNotAuthenticated
	}

	slog.Info("account closed", "username", removed.Username, "remaining", b.store.Len())
	ctx := context.Background()
	b.events.AccountClosed(ctx, removed)
	b.events.SessionEnded(ctx, removed.Username, EndClosed)
	return nil
}

// ToggleSort flips the movement order of the session and returns the new
// flag. The account is untouched.
func (b *Bank) ToggleSort(id string) (bool, error) {
	s, err := b.Session(id)
	if err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return false, ErrNotAuthenticated
	}
	s.sorted = !s.sorted
	return s.sorted, nil
}

// Logout ends the session.
func (b *Bank) Logout(id string) error {
	if !b.end(id, EndLogout) {
		return ErrNotAuthenticated
	}
	return nil
}

// Shutdown ends every live session.
func (b *Bank) Shutdown() {
	b.mu.Lock()
	ids := make([]string, 0, len(b.sessions))
	for id := range b.sessions {
		ids = append(ids, id)
	}
	b.mu.Unlock()

	for _, id := range ids {
		b.end(id, EndLogout)
	}
}

// live returns a copy of the session account. Caller holds s.mu.
func (b *Bank) live(s *Session) (models.Account, error) {
	// Once the countdown hits zero the logout is only waiting on the hide delay.
	if s.ended || s.timer.Expired() {
		return models.Account{}, ErrNotAuthenticated
	}
	acc, ok := b.store.Snapshot(s.account)
	if !ok {
		return models.Account{}, ErrNotAuthenticated
	}
	return acc, nil
}

func (b *Bank) end(id string, reason EndReason) bool {
	s := b.forget(id)
	if s == nil {
		return false
	}
	username := b.username(s)
	if !s.end() {
		return false
	}
	slog.Info("session ended", "session", id, "reason", string(reason))
	b.events.SessionEnded(context.Background(), username, reason)
	return true
}

func (b *Bank) expire(s *Session) {
	username := b.username(s)
	if !s.expire() {
		return
	}
	b.forget(s.ID)
	slog.Info("session ended", "session", s.ID, "reason", string(EndTimeout))
	b.events.SessionEnded(context.Background(), username, EndTimeout)
}

func (b *Bank) username(s *Session) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.account == nil {
		return ""
	}
	acc, ok := b.store.Snapshot(s.account)
	if !ok {
		return ""
	}
	return acc.Username
}

func (b *Bank) forget(id string) *Session {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.sessions[id]
	if !ok {
		return nil
	}
	delete(b.sessions, id)
	return s
}

func (b *Bank) publish(entries []models.LedgerEntry) {
	b.events.MovementsApplied(context.Background(), entries)
}

// parseAmount reads a typed amount. Blank input reads as zero.
func parseAmount(input string) (decimal.Decimal, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(input)
}
