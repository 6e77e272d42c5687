// internal/app/system/normalize/normalize.go

// Package normalize canonicalizes user-supplied identifiers before they
// are validated, stored, or compared.
package normalize

import "strings"

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// RegistrationNumber trims and uppercases an NGO registration number so
// the unique index treats "r-1" and "R-1" as the same registration.
func RegistrationNumber(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Phone strips spaces, dashes, dots, and parentheses from a phone number,
// keeping digits and a leading plus.
func Phone(s string) string {
	s = strings.TrimSpace(s)
	var b strings.Builder
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}
