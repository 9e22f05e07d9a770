package auth

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Strength grades a password.
type Strength int

const (
	StrengthNone Strength = iota
	StrengthWeak
	StrengthMedium
	StrengthStrong
)

func (s Strength) String() string {
	switch s {
	case StrengthWeak:
		return "weak"
	case StrengthMedium:
		return "medium"
	case StrengthStrong:
		return "strong"
	}
	return ""
}

const specialChars = `!@#$%^&*(),.?":{}|<>`

// PasswordScore awards one point each for: at least 8 characters, at least
// 12 characters, a lowercase letter, an uppercase letter, a digit and a
// special character.
func PasswordScore(pw string) int {
	var lower, upper, digit, special bool
	for _, r := range pw {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(specialChars, r):
			special = true
		}
	}
	n := utf8.RuneCountInString(pw)
	score := 0
	for _, ok := range []bool{n >= 8, n >= 12, lower, upper, digit, special} {
		if ok {
			score++
		}
	}
	return score
}

// PasswordStrength grades pw: a score up to 2 is weak, 3 or 4 medium and
// 5 or 6 strong. The empty password has no strength.
func PasswordStrength(pw string) Strength {
	if pw == "" {
		return StrengthNone
	}
	switch score := PasswordScore(pw); {
	case score <= 2:
		return StrengthWeak
	case score <= 4:
		return StrengthMedium
	default:
		return StrengthStrong
	}
}

// PasswordAcceptable reports whether pw is at least of medium strength.
func PasswordAcceptable(pw string) bool {
	return PasswordStrength(pw) >= StrengthMedium
}
