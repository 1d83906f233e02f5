// Package policy validates password strength and field hygiene before
// anything reaches the cipher or the durable stores.
package policy

import (
	"fmt"
	"regexp"
	"unicode"

	"github.com/dmitrijs2005/passvault/internal/common"
)

const (
	// MinPasswordLength is the minimum accepted password length.
	MinPasswordLength = 12

	// MaxFieldLength bounds every stored field value.
	MaxFieldLength = 256

	// MaxUsernameLength bounds usernames, which also become file names.
	MaxUsernameLength = 64
)

// usernames become part of on-disk paths, so the charset is restricted
var usernameRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateUsername checks that a username is non-empty, within
// MaxUsernameLength and limited to letters, digits, '.', '_' and '-',
// starting with a letter or digit. Failures wrap common.ErrorValidation.
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("%w: username must not be empty", common.ErrorValidation)
	}
	if len(username) > MaxUsernameLength {
		return fmt.Errorf("%w: username exceeds %d characters", common.ErrorValidation, MaxUsernameLength)
	}
	if !usernameRe.MatchString(username) {
		return fmt.Errorf("%w: username contains disallowed characters", common.ErrorValidation)
	}
	return nil
}

// Validate checks password composition: length at least MinPasswordLength
// and at least one uppercase letter, one lowercase letter, one digit and one
// punctuation character. Failures wrap common.ErrorValidation.
func Validate(password string) error {
	runes := []rune(password)
	if len(runes) < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", common.ErrorValidation, MinPasswordLength)
	}

	var hasUpper, hasLower, hasDigit, hasPunct bool
	for _, r := range runes {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasPunct = true
		}
	}

	switch {
	case !hasUpper:
		return fmt.Errorf("%w: password must contain an uppercase letter", common.ErrorValidation)
	case !hasLower:
		return fmt.Errorf("%w: password must contain a lowercase letter", common.ErrorValidation)
	case !hasDigit:
		return fmt.Errorf("%w: password must contain a digit", common.ErrorValidation)
	case !hasPunct:
		return fmt.Errorf("%w: password must contain a punctuation character", common.ErrorValidation)
	}
	return nil
}

// ValidateFields checks every value for storage hygiene: at most
// MaxFieldLength characters and no control characters. Control characters
// cover the record delimiter, so the check holds regardless of the on-disk
// encoding. Failures wrap common.ErrorValidation and name the field.
func ValidateFields(fields map[string]string) error {
	for name, value := range fields {
		runes := []rune(value)
		if len(runes) > MaxFieldLength {
			return fmt.Errorf("%w: field %q exceeds %d characters", common.ErrorValidation, name, MaxFieldLength)
		}
		for _, r := range runes {
			if unicode.IsControl(r) {
				return fmt.Errorf("%w: field %q contains a control character", common.ErrorValidation, name)
			}
		}
	}
	return nil
}
