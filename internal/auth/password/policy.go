// Package password implements the portal's password policy: a stateless
// validator that collects every rule violation, plus an advisory strength
// score that never gates anything.
package password

import (
	"strings"
	"unicode"
)

const (
	MinLength = 8
	MaxLength = 128

	// SpecialChars is the set a password must draw at least one character from.
	SpecialChars = `!@#$%^&*(),.?":{}|<>`
)

// commonPasswords is matched case-insensitively against the whole password.
var commonPasswords = []string{
	"password", "password123", "123456", "123456789", "qwerty",
	"abc123", "password1", "admin", "letmein", "welcome",
	"monkey", "1234567890", "dragon", "master", "shadow",
	"sunshine", "football", "iloveyou", "princess", "rockyou",
}

type Result struct {
	IsValid bool
	Errors  []string
}

// Validate checks every rule independently and reports all violations.
// Only the empty-password check short-circuits; there is nothing else to
// say about an empty password.
func Validate(pw string) Result {
	if pw == "" {
		return Result{IsValid: false, Errors: []string{"Password is required"}}
	}

	var errs []string

	runes := []rune(pw)
	if len(runes) < MinLength {
		errs = append(errs, "Password must be at least 8 characters long")
	}
	if len(runes) > MaxLength {
		errs = append(errs, "Password must be no more than 128 characters long")
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range runes {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
		if strings.ContainsRune(SpecialChars, r) {
			hasSpecial = true
		}
	}
	if !hasUpper {
		errs = append(errs, "Password must contain at least one uppercase letter")
	}
	if !hasLower {
		errs = append(errs, "Password must contain at least one lowercase letter")
	}
	if !hasDigit {
		errs = append(errs, "Password must contain at least one number")
	}
	if !hasSpecial {
		errs = append(errs, `Password must contain at least one special character (!@#$%^&*(),.?":{}|<>)`)
	}

	lowered := strings.ToLower(pw)
	for _, common := range commonPasswords {
		if lowered == common {
			errs = append(errs, "Password is too common. Please choose a more secure password")
			break
		}
	}

	if hasRepeatRun(runes, 3) {
		errs = append(errs, "Password cannot contain more than 2 consecutive identical characters")
	}

	return Result{IsValid: len(errs) == 0, Errors: errs}
}

// hasRepeatRun reports whether the password contains a run of at least n
// identical consecutive characters.
func hasRepeatRun(runes []rune, n int) bool {
	run := 1
	for i := 1; i < len(runes); i++ {
		if runes[i] == runes[i-1] {
			run++
			if run >= n {
				return true
			}
		} else {
			run = 1
		}
	}
	return false
}

// StrengthScore rates a password 0 through 5 for advisory display.
// Length earns points at 8, 12 and 16 characters, each character class earns
// one, and characters outside every known class earn a bonus.
func StrengthScore(pw string) int {
	if pw == "" {
		return 0
	}

	score := 0
	runes := []rune(pw)

	if len(runes) >= 8 {
		score++
	}
	if len(runes) >= 12 {
		score++
	}
	if len(runes) >= 16 {
		score++
	}

	var hasUpper, hasLower, hasDigit, hasSpecial, hasOther bool
	for _, r := range runes {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(SpecialChars, r):
			hasSpecial = true
		default:
			hasOther = true
		}
	}
	for _, present := range []bool{hasUpper, hasLower, hasDigit, hasSpecial, hasOther} {
		if present {
			score++
		}
	}

	if score > 5 {
		return 5
	}
	return score
}

// StrengthLevel maps a score onto the label shown next to the password field.
func StrengthLevel(pw string) string {
	switch score := StrengthScore(pw); {
	case score <= 2:
		return "Weak"
	case score == 3:
		return "Fair"
	case score == 4:
		return "Good"
	default:
		return "Strong"
	}
}
