package bank

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mo0hamed-shoaib/Bankist-Dashboard/internal/countdown"
	"github.com/mo0hamed-shoaib/Bankist-Dashboard/internal/models"
)

func TestMain(m *testing.M) {
	pinCost = bcrypt.MinCost
	os.Exit(m.Run())
}

var testNow = time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)

type recordedEnd struct {
	username string
	reason   EndReason
}

type recordingEvents struct {
	mu      sync.Mutex
	applied []models.LedgerEntry
	closed  []models.Account
	ended   []recordedEnd
}

func (r *recordingEvents) MovementsApplied(_ context.Context, entries []models.LedgerEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.applied = append(r.applied, entries...)
}

func (r *recordingEvents) AccountClosed(_ context.Context, acc models.Account) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = append(r.closed, acc)
}

func (r *recordingEvents) SessionEnded(_ context.Context, username string, reason EndReason) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ended = append(r.ended, recordedEnd{username, reason})
}

func (r *recordingEvents) endings() []recordedEnd {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recordedEnd(nil), r.ended...)
}

func testConfig() Config {
	return Config{
		Timer:           countdown.Config{Timeout: time.Minute, Tick: time.Second, HideDelay: time.Second},
		SettlementDelay: 10 * time.Millisecond,
		Now:             func() time.Time { return testNow },
	}
}

func newTestBank(t *testing.T, cfg Config) (*Bank, *recordingEvents) {
	t.Helper()
	accounts, err := BuildAccounts(DefaultSeed())
	require.NoError(t, err)
	events := &recordingEvents{}
	b := New(NewStore(accounts), cfg, events)
	t.Cleanup(b.Shutdown)
	return b, events
}

func login(t *testing.T, b *Bank, username, pin string) *Session {
	t.Helper()
	s, err := b.Login("", username, pin)
	require.NoError(t, err)
	return s
}

func balanceOf(t *testing.T, b *Bank, username string) decimal.Decimal {
	t.Helper()
	acc := b.Store().Lookup(username)
	require.NotNil(t, acc)
	snap, ok := b.Store().Snapshot(acc)
	require.True(t, ok)
	return snap.Balance()
}

func TestBuildAccounts_DefaultSeed(t *testing.T) {
	accounts, err := BuildAccounts(DefaultSeed())
	require.NoError(t, err)
	require.Len(t, accounts, 3)

	assert.Equal(t, "js", accounts[0].Username)
	assert.Equal(t, "jd", accounts[1].Username)
	assert.Equal(t, "mg", accounts[2].Username)
	assert.True(t, accounts[0].Balance().Equal(decimal.RequireFromString("25952.59")))
	assert.True(t, accounts[1].Balance().Equal(decimal.NewFromInt(11720)))
	assert.True(t, accounts[2].Balance().Equal(decimal.NewFromInt(15710)))
	assert.Len(t, accounts[2].Movements, 8)

	// Seeded ids are stable.
	again, err := BuildAccounts(DefaultSeed())
	require.NoError(t, err)
	assert.Equal(t, accounts[0].Movements[3].ID, again[0].Movements[3].ID)
	assert.NotEqual(t, accounts[0].Movements[3].ID, accounts[0].Movements[4].ID)
}

func TestLogin(t *testing.T) {
	b, _ := newTestBank(t, testConfig())

	s := login(t, b, "js", "1111")
	view, err := b.View(s.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jonas Schmedtmann", view.Account.Owner)
	assert.False(t, view.Sorted)
	assert.Equal(t, "01:00", view.Timer)
}

func TestLogin_PINReadAsNumber(t *testing.T) {
	b, _ := newTestBank(t, testConfig())

	for _, pin := range []string{"1111", " 1111 ", "01111", "1111.0"} {
		_, err := b.Login("", "js", pin)
		assert.NoError(t, err, pin)
	}
	for _, pin := range []string{"", "abc", "1112", "11 11"} {
		_, err := b.Login("", "js", pin)
		assert.ErrorIs(t, err, ErrIncorrectPIN, pin)
	}
}

func TestLogin_Denials(t *testing.T) {
	b, _ := newTestBank(t, testConfig())

	_, err := b.Login("", "xx", "1111")
	assert.ErrorIs(t, err, ErrAccountNotFound)
	assert.Equal(t, []string{FieldLoginUsername, FieldLoginPIN}, ClearFields(err))

	_, err = b.Login("", "JS", "1111")
	assert.ErrorIs(t, err, ErrAccountNotFound, "usernames match exactly")

	_, err = b.Login("", "js", "2222")
	assert.ErrorIs(t, err, ErrIncorrectPIN)
	assert.Equal(t, []string{FieldLoginPIN}, ClearFields(err))
	assert.Zero(t, b.Sessions())
}

func TestLogin_ReplacesPreviousSession(t *testing.T) {
	b, events := newTestBank(t, testConfig())

	first := login(t, b, "js", "1111")
	second, err := b.Login(first.ID, "jd", "2222")
	require.NoError(t, err)

	assert.True(t, first.Ended())
	assert.False(t, second.Ended())
	assert.Equal(t, 1, b.Sessions())
	_, err = b.View(first.ID)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Equal(t, []recordedEnd{{"js", EndRelogin}}, events.endings())
}

func TestLogin_FailureKeepsPreviousSession(t *testing.T) {
	b, _ := newTestBank(t, testConfig())

	first := login(t, b, "js", "1111")
	_, err := b.Login(first.ID, "jd", "9999")
	require.ErrorIs(t, err, ErrIncorrectPIN)
	assert.False(t, first.Ended())
}

func TestTransfer_Validation(t *testing.T) {
	b, _ := newTestBank(t, testConfig())
	s := login(t, b, "jd", "2222")

	cases := []struct {
		name   string
		to     string
		amount string
		err    error
		clear  []string
	}{
		{"self", "jd", "100", ErrSelfTransfer, []string{FieldTransferTo}},
		{"self beats bad amount", "jd", "abc", ErrSelfTransfer, []string{FieldTransferTo}},
		{"unknown recipient", "zz", "100", ErrRecipientNotFound, []string{FieldTransferTo}},
		{"not a number", "js", "abc", ErrInsufficientBalance, []string{FieldTransferAmount}},
		{"more than balance", "js", "11720.01", ErrInsufficientBalance, []string{FieldTransferAmount}},
		{"negative", "js", "-5", ErrNegativeAmount, []string{FieldTransferAmount}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := b.Transfer(s.ID, c.to, c.amount)
			assert.ErrorIs(t, err, c.err)
			assert.Equal(t, c.clear, ClearFields(err))
		})
	}

	s.Wait()
	assert.True(t, balanceOf(t, b, "jd").Equal(decimal.NewFromInt(11720)))
	assert.True(t, balanceOf(t, b, "js").Equal(decimal.RequireFromString("25952.59")))
}

func TestTransfer_SettlesAfterDelay(t *testing.T) {
	b, events := newTestBank(t, testConfig())
	s := login(t, b, "jd", "2222")

	require.NoError(t, b.Transfer(s.ID, "js", "720"))
	s.Wait()

	assert.True(t, balanceOf(t, b, "jd").Equal(decimal.NewFromInt(11000)))
	assert.True(t, balanceOf(t, b, "js").Equal(decimal.RequireFromString("26672.59")))

	events.mu.Lock()
	defer events.mu.Unlock()
	require.Len(t, events.applied, 2)
	sent, received := events.applied[0], events.applied[1]
	assert.Equal(t, "jd", sent.Username)
	assert.True(t, sent.Movement.Amount.Equal(decimal.NewFromInt(-720)))
	assert.Equal(t, "js", received.Username)
	assert.True(t, received.Movement.Amount.Equal(decimal.NewFromInt(720)))
	assert.Equal(t, testNow, sent.Movement.Date)
	assert.Equal(t, sent.Movement.Date, received.Movement.Date)
}

func TestTransfer_WholeBalanceAndZero(t *testing.T) {
	b, _ := newTestBank(t, testConfig())
	s := login(t, b, "jd", "2222")

	require.NoError(t, b.Transfer(s.ID, "js", "0"))
	require.NoError(t, b.Transfer(s.ID, "js", "11720"))
	s.Wait()
	assert.True(t, balanceOf(t, b, "jd").IsZero())

	// A zero balance refuses any further transfer.
	assert.ErrorIs(t, b.Transfer(s.ID, "js", "0"), ErrInsufficientBalance)
}

func TestTransfer_BlankAmountIsZero(t *testing.T) {
	b, events := newTestBank(t, testConfig())
	s := login(t, b, "jd", "2222")

	require.NoError(t, b.Transfer(s.ID, "js", "  "))
	s.Wait()

	assert.True(t, balanceOf(t, b, "jd").Equal(decimal.NewFromInt(11720)))
	events.mu.Lock()
	defer events.mu.Unlock()
	require.Len(t, events.applied, 2)
	assert.True(t, events.applied[0].Movement.Amount.IsZero())
	assert.True(t, events.applied[1].Movement.Amount.IsZero())
}

func TestTransfer_RecheckedAtSettlement(t *testing.T) {
	b, events := newTestBank(t, testConfig())
	s := login(t, b, "jd", "2222")

	// Both are accepted against the same balance; only the first settles.
	require.NoError(t, b.Transfer(s.ID, "js", "10000"))
	require.NoError(t, b.Transfer(s.ID, "mg", "10000"))
	s.Wait()

	assert.True(t, balanceOf(t, b, "jd").Equal(decimal.NewFromInt(1720)))
	events.mu.Lock()
	assert.Len(t, events.applied, 2)
	events.mu.Unlock()
}

func TestTransfer_CancelledByLogout(t *testing.T) {
	cfg := testConfig()
	cfg.SettlementDelay = 50 * time.Millisecond
	b, events := newTestBank(t, cfg)
	s := login(t, b, "jd", "2222")

	require.NoError(t, b.Transfer(s.ID, "js", "100"))
	require.NoError(t, b.Logout(s.ID))
	s.Wait()

	assert.True(t, balanceOf(t, b, "jd").Equal(decimal.NewFromInt(11720)))
	events.mu.Lock()
	assert.Empty(t, events.applied)
	events.mu.Unlock()
	assert.ErrorIs(t, b.Logout(s.ID), ErrNotAuthenticated)
}

func TestTransfer_ResetsTimer(t *testing.T) {
	cfg := testConfig()
	cfg.Timer = countdown.Config{Timeout: time.Second, Tick: 10 * time.Millisecond, HideDelay: time.Second}
	b, _ := newTestBank(t, cfg)
	s := login(t, b, "jd", "2222")

	time.Sleep(120 * time.Millisecond)
	assert.Less(t, s.timer.Remaining(), 95)

	require.NoError(t, b.Transfer(s.ID, "js", "1"))
	s.mu.Lock()
	remaining := s.timer.Remaining()
	s.mu.Unlock()
	assert.GreaterOrEqual(t, remaining, 95)
}

func TestRequestLoan(t *testing.T) {
	b, _ := newTestBank(t, testConfig())
	s := login(t, b, "js", "1111")

	// The largest movement is 25000, which covers 10% of 250000.
	require.NoError(t, b.RequestLoan(s.ID, "250000.9"))
	s.Wait()
	assert.True(t, balanceOf(t, b, "js").Equal(decimal.RequireFromString("275952.59")))

	view, err := b.View(s.ID)
	require.NoError(t, err)
	last := view.Account.Movements[len(view.Account.Movements)-1]
	assert.True(t, last.Amount.Equal(decimal.NewFromInt(250000)))
	assert.Equal(t, testNow, last.Date)
}

func TestRequestLoan_Denied(t *testing.T) {
	b, _ := newTestBank(t, testConfig())
	s := login(t, b, "jd", "2222")

	// Largest movement is 8500.
	for _, amount := range []string{"85001", "0", "0.9", "-100", "abc", ""} {
		err := b.RequestLoan(s.ID, amount)
		assert.ErrorIs(t, err, ErrLoanDenied, amount)
		assert.Equal(t, []string{FieldLoanAmount}, ClearFields(err))
	}
	require.NoError(t, b.RequestLoan(s.ID, "85000"))
	s.Wait()
	assert.True(t, balanceOf(t, b, "jd").Equal(decimal.NewFromInt(96720)))
}

func TestClose(t *testing.T) {
	b, events := newTestBank(t, testConfig())
	s := login(t, b, "jd", "2222")

	err := b.Close(s.ID, "jd", "1111")
	assert.ErrorIs(t, err, ErrWrongCredentials)
	assert.Empty(t, ClearFields(err))
	assert.ErrorIs(t, b.Close(s.ID, "js", "2222"), ErrWrongCredentials)
	assert.Equal(t, 3, b.Store().Len())
	assert.False(t, s.Ended())

	require.NoError(t, b.Close(s.ID, "jd", "02222"))
	assert.True(t, s.Ended())
	assert.Zero(t, b.Sessions())

	accounts := b.Store().Accounts()
	require.Len(t, accounts, 2)
	assert.Equal(t, "js", accounts[0].Username)
	assert.Equal(t, "mg", accounts[1].Username)
	assert.Nil(t, b.Store().Lookup("jd"))

	_, err = b.Login("", "jd", "2222")
	assert.ErrorIs(t, err, ErrAccountNotFound)

	events.mu.Lock()
	defer events.mu.Unlock()
	require.Len(t, events.closed, 1)
	assert.Equal(t, "John Doe", events.closed[0].Owner)
	assert.Equal(t, []recordedEnd{{"jd", EndClosed}}, events.ended)
}

func TestClose_CancelsPendingLoan(t *testing.T) {
	cfg := testConfig()
	cfg.SettlementDelay = 50 * time.Millisecond
	b, events := newTestBank(t, cfg)
	s := login(t, b, "jd", "2222")

	require.NoError(t, b.RequestLoan(s.ID, "100"))
	require.NoError(t, b.Close(s.ID, "jd", "2222"))
	s.Wait()

	events.mu.Lock()
	defer events.mu.Unlock()
	assert.Empty(t, events.applied)
}

func TestToggleSort(t *testing.T) {
	b, _ := newTestBank(t, testConfig())
	s := login(t, b, "js", "1111")
	before, err := b.View(s.ID)
	require.NoError(t, err)

	sorted, err := b.ToggleSort(s.ID)
	require.NoError(t, err)
	assert.True(t, sorted)
	sorted, err = b.ToggleSort(s.ID)
	require.NoError(t, err)
	assert.False(t, sorted)

	after, err := b.View(s.ID)
	require.NoError(t, err)
	assert.Equal(t, before.Account.Movements, after.Account.Movements)

	// The flag belongs to the session.
	_, err = b.ToggleSort(s.ID)
	require.NoError(t, err)
	again := login(t, b, "js", "1111")
	assert.False(t, again.Sorted())
}

func TestSession_Timeout(t *testing.T) {
	cfg := testConfig()
	cfg.Timer = countdown.Config{Timeout: 30 * time.Millisecond, Tick: 10 * time.Millisecond, HideDelay: 10 * time.Millisecond}
	b, events := newTestBank(t, cfg)
	s := login(t, b, "mg", "3333")

	assert.Eventually(t, s.Ended, time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return b.Sessions() == 0 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []recordedEnd{{"mg", EndTimeout}}, events.endings())

	assert.ErrorIs(t, b.Transfer(s.ID, "js", "1"), ErrNotAuthenticated)
	_, err := b.ToggleSort(s.ID)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestSession_ActionsRefusedDuringHideDelay(t *testing.T) {
	cfg := testConfig()
	cfg.Timer = countdown.Config{Timeout: 20 * time.Millisecond, Tick: 10 * time.Millisecond, HideDelay: 300 * time.Millisecond}
	b, events := newTestBank(t, cfg)
	s := login(t, b, "js", "1111")

	assert.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.timer.Expired()
	}, time.Second, 2*time.Millisecond)
	require.False(t, s.Ended())

	assert.ErrorIs(t, b.RequestLoan(s.ID, "1000"), ErrNotAuthenticated)
	assert.ErrorIs(t, b.Transfer(s.ID, "jd", "1"), ErrNotAuthenticated)
	assert.ErrorIs(t, b.Close(s.ID, "js", "1111"), ErrNotAuthenticated)

	view, err := b.View(s.ID)
	require.NoError(t, err)
	assert.Equal(t, "00:00", view.Timer)

	assert.Eventually(t, s.Ended, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, []recordedEnd{{"js", EndTimeout}}, events.endings())
	assert.NotNil(t, b.Store().Lookup("js"))
}

func TestActions_RequireSession(t *testing.T) {
	b, _ := newTestBank(t, testConfig())

	assert.ErrorIs(t, b.Transfer("nope", "js", "1"), ErrNotAuthenticated)
	assert.ErrorIs(t, b.RequestLoan("nope", "1"), ErrNotAuthenticated)
	assert.ErrorIs(t, b.Close("nope", "js", "1111"), ErrNotAuthenticated)
	assert.ErrorIs(t, b.Logout("nope"), ErrNotAuthenticated)
	_, err := b.View("nope")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}
