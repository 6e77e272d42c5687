// internal/app/system/inputval/inputval.go

// Package inputval validates user-supplied identifiers. Normalize first
// (see the normalize package), then validate.
package inputval

import "strings"

// IsValidEmail reports whether s is a plausible email address.
//
// This is deliberately stricter than RFC 5322's full grammar and looser
// than production mail delivery: exactly one @, a dot-separated local
// part with no empty segments, and a domain with no empty labels.
// Single-label domains are accepted (useful for dev/test relays).
// Display-name forms ("Name <a@b>") are rejected.
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	at := strings.IndexByte(s, '@')
	if at <= 0 || at != strings.LastIndexByte(s, '@') {
		return false
	}
	local, domain := s[:at], s[at+1:]
	if domain == "" {
		return false
	}
	if strings.ContainsAny(s, " \t<>") {
		return false
	}
	if !validDotted(local) || !validDotted(domain) {
		return false
	}
	return true
}

// validDotted rejects leading/trailing dots and empty segments.
func validDotted(s string) bool {
	for _, seg := range strings.Split(s, ".") {
		if seg == "" {
			return false
		}
	}
	return true
}

// IsValidPhone reports whether s is a plausible phone number after
// normalization: an optional leading plus followed by 7 to 15 digits.
func IsValidPhone(s string) bool {
	s = strings.TrimPrefix(s, "+")
	if len(s) < 7 || len(s) > 15 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
