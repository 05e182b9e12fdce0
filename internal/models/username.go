package models

import (
	"strings"
	"unicode/utf8"
)

// DeriveUsername builds a login handle from the initials of each
// space-separated token of the owner's name, lowercased.
//
//	"Jonas Schmedtmann" -> "js"
func DeriveUsername(owner string) string {
	var b strings.Builder
	for _, name := range splitName(strings.ToLower(owner)) {
		r, _ := utf8.DecodeRuneInString(name)
		b.WriteRune(r)
	}
	return b.String()
}

// CreateUsernames sets Username on every account in place.
// Collisions are not detected.
func CreateUsernames(accounts []*Account) {
	for _, acc := range accounts {
		acc.Username = DeriveUsername(acc.Owner)
	}
}

// splitName splits on single spaces and drops empty tokens.
func splitName(owner string) []string {
	parts := strings.Split(owner, " ")
	names := parts[:0]
	for _, p := range parts {
		if p != "" {
			names = append(names, p)
		}
	}
	return names
}
