// Package view turns an account into the rows and figures a front end
// displays.
package view

import (
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mo0hamed-shoaib/Bankist-Dashboard/internal/bank"
	"github.com/mo0hamed-shoaib/Bankist-Dashboard/internal/format"
	"github.com/mo0hamed-shoaib/Bankist-Dashboard/internal/models"
)

// LoggedOutWelcome is shown while no session is active.
const LoggedOutWelcome = "Log in to get started"

// Row is one rendered movement.
type Row struct {
	Index  int             `json:"index"`
	Kind   string          `json:"type"`
	Date   string          `json:"date"`
	Amount decimal.Decimal `json:"amount"`
	Value  string          `json:"value"`
}

// Dashboard is the whole logged-in screen.
type Dashboard struct {
	Welcome   string `json:"welcome"`
	Visible   bool   `json:"visible"`
	Owner     string `json:"owner,omitempty"`
	Username  string `json:"username,omitempty"`
	Date      string `json:"date,omitempty"`
	Balance   string `json:"balance,omitempty"`
	In        string `json:"in,omitempty"`
	Out       string `json:"out,omitempty"`
	Interest  string `json:"interest,omitempty"`
	Timer     string `json:"timer,omitempty"`
	Sorted    bool   `json:"sorted"`
	Movements []Row  `json:"movements"`
}

// Movements renders the account's movements. Index is the 1-based position
// in chronological order. The default order is newest first; sorted orders
// by ascending amount, keeping chronological order between equal amounts.
// The account is not modified.
func Movements(acc models.Account, sorted bool) []Row {
	rows := make([]Row, len(acc.Movements))
	for i, m := range acc.Movements {
		rows[i] = Row{
			Index:  i + 1,
			Kind:   m.Kind(),
			Date:   format.Date(m.Date, acc.Locale),
			Amount: m.Amount,
			Value:  format.Currency(m.Amount, acc.Locale, acc.Currency),
		}
	}
	if sorted {
		slices.SortStableFunc(rows, func(a, b Row) int {
			return a.Amount.Cmp(b.Amount)
		})
	} else {
		slices.Reverse(rows)
	}
	return rows
}

// Welcome greets the owner by first name.
func Welcome(acc models.Account) string {
	return fmt.Sprintf("Welcome back, %s ❤️", acc.FirstName())
}

// Build renders v with now as the current date label.
func Build(v bank.View, now time.Time) Dashboard {
	acc := v.Account
	sum := acc.Summary()
	money := func(d decimal.Decimal) string {
		return format.Currency(d, acc.Locale, acc.Currency)
	}
	return Dashboard{
		Welcome:   Welcome(acc),
		Visible:   true,
		Owner:     acc.Owner,
		Username:  acc.Username,
		Date:      format.Date(now, acc.Locale),
		Balance:   money(sum.Balance),
		In:        money(sum.Deposits),
		Out:       money(sum.Withdrawals),
		Interest:  money(sum.Interest),
		Timer:     v.Timer,
		Sorted:    v.Sorted,
		Movements: Movements(acc, v.Sorted),
	}
}

// Hidden is the logged-out screen.
func Hidden() Dashboard {
	return Dashboard{Welcome: LoggedOutWelcome, Movements: []Row{}}
}
