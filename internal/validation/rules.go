// Package validation holds the jellydator rules shared by identity inputs, request DTOs and
// configuration.
package validation

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/identity/internal/errors"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

	// phoneRegex accepts an optional leading + followed by 7 to 15 digits
	phoneRegex = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
)

// MinPasswordLength is the shortest password accepted anywhere a password is set, in characters.
const MinPasswordLength = 8

// WrapValidationError turns a jellydator error into ErrInvalidInput, keeping the field messages.
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// Password is the account password policy. Only length is enforced; passphrases are welcome.
var Password = validation.By(func(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_password_type", "password must be a string")
	}
	if utf8.RuneCountInString(s) < MinPasswordLength {
		return validation.NewError(
			"validation_password_min_length",
			"password must be at least "+strconv.Itoa(MinPasswordLength)+" characters",
		)
	}
	return nil
})

// Email checks the address shape only; deliverability is proven by the reset and claim flows.
var Email = validation.NewStringRuleWithError(
	emailRegex.MatchString,
	validation.NewError("validation_email_format", "must be a valid email address"),
)

// NotBlank rejects strings made only of whitespace.
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool { return strings.TrimSpace(s) != "" },
	validation.NewError("validation_not_blank", "must not be blank"),
)

// Phone validates a phone number made of digits with an optional leading +
var Phone = validation.NewStringRuleWithError(
	phoneRegex.MatchString,
	validation.NewError("validation_phone_format", "must be a valid phone number"),
)

// NumericCode validates that a string is exactly length ASCII digits
func NumericCode(length int) validation.StringRule {
	return validation.NewStringRuleWithError(
		func(s string) bool {
			if len(s) != length {
				return false
			}
			for _, r := range s {
				if r < '0' || r > '9' {
					return false
				}
			}
			return true
		},
		validation.NewError(
			"validation_numeric_code",
			"must be a "+strconv.Itoa(length)+"-digit code",
		),
	)
}
