package bank

import (
	"context"
	"sync"
	"time"

	"github.com/mo0hamed-shoaib/Bankist-Dashboard/internal/countdown"
	"github.com/mo0hamed-shoaib/Bankist-Dashboard/internal/models"
)

// EndReason records why a session ended.
type EndReason string

const (
	EndLogout  EndReason = "logout"
	EndTimeout EndReason = "timeout"
	EndClosed  EndReason = "closed"
	EndRelogin EndReason = "relogin"
)

// Session is one authenticated login. It owns the account reference, the
// inactivity countdown, the sort flag and any pending settlements.
type Session struct {
	ID string

	mu      sync.Mutex
	account *models.Account
	sorted  bool
	timer   *countdown.Countdown
	ended   bool

	ctx    context.Context
	cancel context.CancelFunc
	tasks  sync.WaitGroup
}

func newSession(id string, acc *models.Account) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{ID: id, account: acc, ctx: ctx, cancel: cancel}
}

// Sorted reports the current sort flag.
func (s *Session) Sorted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sorted
}

// Remaining returns the seconds left on the inactivity countdown.
func (s *Session) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer.Seconds()
}

// Timer renders the countdown as MM:SS.
func (s *Session) Timer() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer.String()
}

// Ended reports whether the session is over.
func (s *Session) Ended() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ended
}

// Wait blocks until every scheduled settlement has run or been cancelled.
func (s *Session) Wait() {
	s.tasks.Wait()
}

// resetTimer must be called with s.mu held.
func (s *Session) resetTimer() {
	s.timer = countdown.Reset(s.timer)
}

// end stops the countdown and cancels pending work. It returns false if the
// session had already ended.
func (s *Session) end() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.endLocked()
}

func (s *Session) endLocked() bool {
	if s.ended {
		return false
	}
	s.ended = true
	s.account = nil
	s.timer.Stop()
	s.cancel()
	return true
}

// after runs settle once delay has passed, unless the session ends first.
// settle is called with s.mu held and only while the session is live; its
// entries are then handed to publish without the lock.
func (s *Session) after(delay time.Duration, settle func(acc *models.Account) []models.LedgerEntry, publish func([]models.LedgerEntry)) {
	s.tasks.Add(1)
	go func() {
		defer s.tasks.Done()

		t := time.NewTimer(delay)
		defer t.Stop()
		select {
		case <-s.ctx.Done():
			return
		case <-t.C:
		}

		if entries := s.settle(settle); len(entries) > 0 && publish != nil {
			publish(entries)
		}
	}()
}

func (s *Session) settle(fn func(acc *models.Account) []models.LedgerEntry) []models.LedgerEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return nil
	}
	return fn(s.account)
}

// expire ends the session when its countdown ran out. An expiry raced by a
// timer reset is ignored.
func (s *Session) expire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer.State() == countdown.Running {
		return false
	}
	return s.endLocked()
}
