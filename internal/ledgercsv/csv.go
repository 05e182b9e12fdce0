// Package ledgercsv reads account seed files and writes movement statements.
package ledgercsv

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mo0hamed-shoaib/Bankist-Dashboard/internal/bank"
	"github.com/mo0hamed-shoaib/Bankist-Dashboard/internal/models"
)

// StatementHeader is the first row of every statement.
var StatementHeader = []string{"Username", "Owner", "Currency", "ID", "Date", "Amount", "Type"}

// ParseSeed parses accounts from a CSV string with the columns
// Owner, PIN, Interest Rate, Currency, Locale, Date and Amount, one row per
// movement. Rows are grouped by owner in order of first appearance.
// It returns the accounts and a list of error messages for invalid rows.
func ParseSeed(content string) ([]bank.SeedAccount, []string) {
	reader := csv.NewReader(strings.NewReader(content))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, []string{fmt.Sprintf("Failed to read CSV: %v", err)}
	}

	if len(records) < 2 {
		return []bank.SeedAccount{}, nil
	}

	headers := parseHeaders(records[0])
	var accounts []bank.SeedAccount
	byOwner := make(map[string]int)
	var errors []string

	for i, record := range records[1:] {
		rowNum := i + 2
		if len(record) < len(headers) {
			errors = append(errors, fmt.Sprintf("Row %d: Not enough fields", rowNum))
			continue
		}

		rowMap := make(map[string]string)
		for j, header := range headers {
			rowMap[header] = strings.TrimSpace(record[j])
		}

		acc, mov, err := mapToSeed(rowMap)
		if err != nil {
			errors = append(errors, fmt.Sprintf("Row %d: %v", rowNum, err))
			continue
		}

		idx, seen := byOwner[acc.Owner]
		if !seen {
			byOwner[acc.Owner] = len(accounts)
			accounts = append(accounts, acc)
			idx = len(accounts) - 1
		} else if err := sameAccount(accounts[idx], acc); err != nil {
			errors = append(errors, fmt.Sprintf("Row %d: %v", rowNum, err))
			continue
		}
		if mov != nil {
			accounts[idx].Movements = append(accounts[idx].Movements, *mov)
		}
	}

	return accounts, errors
}

func parseHeaders(row []string) []string {
	headers := make([]string, len(row))
	for i, h := range row {
		headers[i] = strings.TrimSpace(h)
	}
	return headers
}

// mapToSeed reads one row. A row with neither Date nor Amount declares an
// account without movements.
func mapToSeed(row map[string]string) (bank.SeedAccount, *bank.SeedMovement, error) {
	owner := row["Owner"]
	if owner == "" {
		return bank.SeedAccount{}, nil, fmt.Errorf("missing Owner")
	}

	pin := row["PIN"]
	if _, err := bank.CanonicalPIN(pin); err != nil {
		return bank.SeedAccount{}, nil, fmt.Errorf("invalid PIN for %s", owner)
	}

	rateStr := row["Interest Rate"]
	rate, err := decimal.NewFromString(rateStr)
	if err != nil {
		return bank.SeedAccount{}, nil, fmt.Errorf("invalid Interest Rate: %s", rateStr)
	}

	currency := strings.ToUpper(row["Currency"])
	if len(currency) != 3 {
		return bank.SeedAccount{}, nil, fmt.Errorf("invalid Currency: %s", row["Currency"])
	}

	locale := row["Locale"]
	if locale == "" {
		return bank.SeedAccount{}, nil, fmt.Errorf("missing Locale")
	}

	acc := bank.SeedAccount{
		Owner:        owner,
		PIN:          pin,
		InterestRate: rate,
		Currency:     currency,
		Locale:       locale,
	}

	dateStr, amountStr := row["Date"], row["Amount"]
	if dateStr == "" && amountStr == "" {
		return acc, nil, nil
	}

	date, err := parseDate(dateStr)
	if err != nil {
		return bank.SeedAccount{}, nil, fmt.Errorf("invalid Date format: %s", dateStr)
	}
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return bank.SeedAccount{}, nil, fmt.Errorf("invalid Amount: %s", amountStr)
	}
	return acc, &bank.SeedMovement{Amount: amount, Date: date}, nil
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

func sameAccount(a, b bank.SeedAccount) error {
	switch {
	case a.PIN != b.PIN:
		return fmt.Errorf("PIN differs from earlier rows for %s", a.Owner)
	case !a.InterestRate.Equal(b.InterestRate):
		return fmt.Errorf("Interest Rate differs from earlier rows for %s", a.Owner)
	case a.Currency != b.Currency:
		return fmt.Errorf("Currency differs from earlier rows for %s", a.Owner)
	case a.Locale != b.Locale:
		return fmt.Errorf("Locale differs from earlier rows for %s", a.Owner)
	}
	return nil
}

// WriteStatement writes every movement of the given accounts in
// chronological order per account.
func WriteStatement(w io.Writer, accounts ...models.Account) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(StatementHeader); err != nil {
		return err
	}
	for _, acc := range accounts {
		for _, m := range acc.Movements {
			err := cw.Write([]string{
				acc.Username,
				acc.Owner,
				acc.Currency,
				m.ID,
				m.Date.UTC().Format(time.RFC3339Nano),
				m.Amount.String(),
				m.Kind(),
			})
			if err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
