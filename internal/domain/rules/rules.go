// Package rules holds the pure validation rules of the account domain.
// Everything here is deterministic and side-effect free.
package rules

import (
	"net/mail"
	"regexp"
	"time"
)

// phonePattern accepts E.164-style numbers: a leading + followed by 1-15
// digits. No spaces, parentheses, or separators.
var phonePattern = regexp.MustCompile(`^\+\d{1,15}$`)

const minUsernameLen = 4

// ValidPhone reports whether s is an acceptable phone number. The field is
// optional, so the empty string is valid.
func ValidPhone(s string) bool {
	if s == "" {
		return true
	}
	return phonePattern.MatchString(s)
}

// ValidEmail reports whether s parses as a bare address (no display name).
func ValidEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

// ValidUsername reports whether s meets the minimum length. Comparison is
// case-sensitive throughout the domain, so no normalization happens here.
func ValidUsername(s string) bool {
	return len(s) >= minUsernameLen
}

// PasswordsMatch reports exact equality of a password and its confirmation.
func PasswordsMatch(a, b string) bool {
	return a == b
}

// VerifyFunc checks a plaintext candidate against a stored hash.
type VerifyFunc func(hash, plain string) bool

// IsSamePassword reports whether candidate is the password already stored
// behind currentHash. Verification runs against the stored hash, so the
// check keeps working across hash algorithm upgrades.
func IsSamePassword(candidate, currentHash string, verify VerifyFunc) bool {
	return verify(currentHash, candidate)
}

// BirthDateValid reports whether t is absent or not in the future.
func BirthDateValid(t *time.Time, now time.Time) bool {
	return t == nil || !t.After(now)
}
