package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ClosedAccount is the archived record of a closed account.
type ClosedAccount struct {
	Username  string          `json:"username"`
	Owner     string          `json:"owner"`
	Currency  string          `json:"currency"`
	Locale    string          `json:"locale"`
	Balance   decimal.Decimal `json:"balance"`
	Movements int             `json:"movements"`
	ClosedAt  time.Time       `json:"closed_at"`
}

// ClosureEvent is queued when an account is closed so the archive and the
// operator notice can be handled out of band.
type ClosureEvent struct {
	Account   ClosedAccount `json:"account"`
	Movements []Movement    `json:"movements"`
}

// NewClosureEvent captures acc as it was when closed.
func NewClosureEvent(acc Account, at time.Time) ClosureEvent {
	return ClosureEvent{
		Account: ClosedAccount{
			Username:  acc.Username,
			Owner:     acc.Owner,
			Currency:  acc.Currency,
			Locale:    acc.Locale,
			Balance:   acc.Balance(),
			Movements: len(acc.Movements),
			ClosedAt:  at.UTC(),
		},
		Movements: append([]Movement(nil), acc.Movements...),
	}
}

// Archived rebuilds the account fields a statement needs.
func (e ClosureEvent) Archived() Account {
	return Account{
		Owner:     e.Account.Owner,
		Username:  e.Account.Username,
		Currency:  e.Account.Currency,
		Locale:    e.Account.Locale,
		Movements: e.Movements,
	}
}
