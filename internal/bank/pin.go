package bank

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

var errEmptyPIN = errors.New("empty PIN")

// pinCost is the bcrypt cost used when hashing seeded PINs.
var pinCost = bcrypt.DefaultCost

// CanonicalPIN reads a PIN the way a numeric form field does: surrounding
// whitespace is ignored and leading zeros do not matter, so "01111" and
// " 1111 " both read as "1111".
func CanonicalPIN(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", errEmptyPIN
	}
	d, err := decimal.NewFromString(input)
	if err != nil {
		return "", err
	}
	return d.String(), nil
}

// HashPIN returns the bcrypt hash of the canonical form of pin.
func HashPIN(pin string) ([]byte, error) {
	canonical, err := CanonicalPIN(pin)
	if err != nil {
		return nil, err
	}
	return bcrypt.GenerateFromPassword([]byte(canonical), pinCost)
}

// CheckPIN reports whether input matches hash. Input that does not read as
// a number never matches.
func CheckPIN(hash []byte, input string) bool {
	canonical, err := CanonicalPIN(input)
	if err != nil {
		return false
	}
	return bcrypt.CompareHashAndPassword(hash, []byte(canonical)) == nil
}
