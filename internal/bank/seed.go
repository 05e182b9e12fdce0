package bank

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mo0hamed-shoaib/Bankist-Dashboard/internal/models"
)

// SeedAccount describes an account loaded at startup. PIN is plain text and
// is hashed by BuildAccounts.
type SeedAccount struct {
	Owner        string
	PIN          string
	InterestRate decimal.Decimal
	Currency     string
	Locale       string
	Movements    []SeedMovement
}

// SeedMovement is one historical movement of a seeded account.
type SeedMovement struct {
	Amount decimal.Decimal
	Date   time.Time
}

// seedNamespace keeps seeded movement ids stable across restarts.
var seedNamespace = uuid.MustParse("6f1b0f3c-5d43-4b8e-9a3e-0c2f8f4f1a11")

// BuildAccounts hashes the PINs, assigns movement ids and derives usernames.
func BuildAccounts(seeds []SeedAccount) ([]*models.Account, error) {
	accounts := make([]*models.Account, 0, len(seeds))
	for _, seed := range seeds {
		hash, err := HashPIN(seed.PIN)
		if err != nil {
			return nil, fmt.Errorf("failed to hash PIN for %q: %w", seed.Owner, err)
		}
		acc := &models.Account{
			Owner:        seed.Owner,
			PINHash:      hash,
			InterestRate: seed.InterestRate,
			Currency:     seed.Currency,
			Locale:       seed.Locale,
			Movements:    make([]models.Movement, 0, len(seed.Movements)),
		}
		for i, m := range seed.Movements {
			id := uuid.NewSHA1(seedNamespace, fmt.Appendf(nil, "%s/%d", seed.Owner, i))
			acc.AddMovement(models.Movement{ID: id.String(), Amount: m.Amount, Date: m.Date})
		}
		accounts = append(accounts, acc)
	}
	models.CreateUsernames(accounts)
	return accounts, nil
}

// DefaultSeed returns the three demo accounts.
func DefaultSeed() []SeedAccount {
	return []SeedAccount{
		{
			Owner:        "Jonas Schmedtmann",
			PIN:          "1111",
			InterestRate: decimal.RequireFromString("1.2"),
			Currency:     "EUR",
			Locale:       "pt-PT",
			Movements: movements(
				[]string{"200", "455.23", "-306.5", "25000", "-642.21", "-133.9", "79.97", "1300"},
				[]string{
					"2024-08-18T21:31:17.178Z",
					"2024-09-23T07:42:02.383Z",
					"2024-10-28T09:15:04.904Z",
					"2024-11-01T10:17:24.185Z",
					"2024-12-08T14:11:59.604Z",
					"2025-01-08T17:01:17.194Z",
					"2025-01-09T23:36:17.929Z",
					"2025-01-10T10:51:36.790Z",
				},
			),
		},
		{
			Owner:        "John Doe",
			PIN:          "2222",
			InterestRate: decimal.RequireFromString("1.5"),
			Currency:     "USD",
			Locale:       "en-US",
			Movements: movements(
				[]string{"5000", "3400", "-150", "-790", "-3210", "-1000", "8500", "-30"},
				[]string{
					"2024-08-20T13:15:33.035Z",
					"2024-09-25T09:48:16.867Z",
					"2024-11-05T06:04:23.907Z",
					"2024-11-25T14:18:46.235Z",
					"2024-12-13T16:33:06.386Z",
					"2025-01-08T14:43:26.374Z",
					"2025-01-09T18:49:59.371Z",
					"2025-01-10T12:01:20.894Z",
				},
			),
		},
		{
			Owner:        "Mohamed Gamal",
			PIN:          "3333",
			InterestRate: decimal.RequireFromString("1.8"),
			Currency:     "EGP",
			Locale:       "ar-EG",
			Movements: movements(
				[]string{"4500", "6400", "-1500", "-900", "-2200", "-500", "10000", "-90"},
				[]string{
					"2024-09-25T13:15:33.035Z",
					"2024-10-27T09:48:16.867Z",
					"2024-12-09T06:04:23.907Z",
					"2024-12-15T14:18:46.235Z",
					"2025-01-02T16:33:06.386Z",
					"2025-01-06T14:43:26.374Z",
					"2025-01-08T18:49:59.371Z",
					"2025-01-10T12:01:20.894Z",
				},
			),
		},
	}
}

func movements(amounts, dates []string) []SeedMovement {
	out := make([]SeedMovement, len(amounts))
	for i := range amounts {
		date, err := time.Parse(time.RFC3339Nano, dates[i])
		if err != nil {
			panic(err)
		}
		out[i] = SeedMovement{Amount: decimal.RequireFromString(amounts[i]), Date: date}
	}
	return out
}
