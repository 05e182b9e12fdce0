package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// interestThreshold is the smallest per-deposit interest that counts towards the total.
var interestThreshold = decimal.NewFromInt(1)

// Movement is a single signed transaction on an account.
// Positive amounts are deposits, everything else is a withdrawal.
type Movement struct {
	ID     string          `json:"id"`
	Amount decimal.Decimal `json:"amount"`
	Date   time.Time       `json:"date"`
}

// Kind classifies the movement for display. A zero amount is a withdrawal.
func (m Movement) Kind() string {
	if m.Amount.IsPositive() {
		return "deposit"
	}
	return "withdrawal"
}

// Account is a bank account with its chronological movements.
type Account struct {
	Owner        string          `json:"owner"`
	Username     string          `json:"username"`
	PINHash      []byte          `json:"-"`
	Movements    []Movement      `json:"movements"`
	InterestRate decimal.Decimal `json:"interestRate"`
	Currency     string          `json:"currency"`
	Locale       string          `json:"locale"`
}

// Summary holds the figures derived from an account's movements.
type Summary struct {
	Balance     decimal.Decimal `json:"balance"`
	Deposits    decimal.Decimal `json:"deposits"`
	Withdrawals decimal.Decimal `json:"withdrawals"`
	Interest    decimal.Decimal `json:"interest"`
}

// FirstName returns the first space-separated token of the owner's name.
func (a *Account) FirstName() string {
	for _, name := range splitName(a.Owner) {
		return name
	}
	return a.Owner
}

// Balance is the sum of all movements. It is never stored.
func (a *Account) Balance() decimal.Decimal {
	total := decimal.Zero
	for _, m := range a.Movements {
		total = total.Add(m.Amount)
	}
	return total
}

// Deposits sums the positive movements.
func (a *Account) Deposits() decimal.Decimal {
	total := decimal.Zero
	for _, m := range a.Movements {
		if m.Amount.IsPositive() {
			total = total.Add(m.Amount)
		}
	}
	return total
}

// Withdrawals returns the absolute value of the sum of the negative movements.
func (a *Account) Withdrawals() decimal.Decimal {
	total := decimal.Zero
	for _, m := range a.Movements {
		if m.Amount.IsNegative() {
			total = total.Add(m.Amount)
		}
	}
	return total.Abs()
}

// Interest computes amount * rate / 100 for every deposit and sums the
// results that reach the threshold. The filter applies to the computed
// interest, not to the deposit.
func (a *Account) Interest() decimal.Decimal {
	hundred := decimal.NewFromInt(100)
	total := decimal.Zero
	for _, m := range a.Movements {
		if !m.Amount.IsPositive() {
			continue
		}
		interest := m.Amount.Mul(a.InterestRate).Div(hundred)
		if interest.GreaterThanOrEqual(interestThreshold) {
			total = total.Add(interest)
		}
	}
	return total
}

// Summary derives all figures in one call.
func (a *Account) Summary() Summary {
	return Summary{
		Balance:     a.Balance(),
		Deposits:    a.Deposits(),
		Withdrawals: a.Withdrawals(),
		Interest:    a.Interest(),
	}
}

// HasMovementAtLeast reports whether any movement is >= min.
func (a *Account) HasMovementAtLeast(min decimal.Decimal) bool {
	for _, m := range a.Movements {
		if m.Amount.GreaterThanOrEqual(min) {
			return true
		}
	}
	return false
}

// AddMovement appends a movement. Movements are never edited or removed.
func (a *Account) AddMovement(m Movement) {
	a.Movements = append(a.Movements, m)
}

// Clone returns a deep copy that callers may read without holding the store lock.
func (a *Account) Clone() Account {
	out := *a
	out.Movements = append([]Movement(nil), a.Movements...)
	out.PINHash = append([]byte(nil), a.PINHash...)
	return out
}

// LedgerEntry ties a settled movement to the account it was applied to.
type LedgerEntry struct {
	Username string   `json:"username"`
	Currency string   `json:"currency"`
	Movement Movement `json:"movement"`
}
