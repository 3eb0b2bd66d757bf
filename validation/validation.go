// Package validation holds the field grammars gating every state-changing
// request. Validators are pure; callers sanitize first, then check, and all
// fields of a request are checked before any error is reported.
package validation

import (
	"html"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"payment-portal/apperr"
	"payment-portal/models"
)

// Field tags a request field with its validation grammar.
type Field string

const (
	FieldFullName      Field = "fullName"
	FieldIDNumber      Field = "idNumber"
	FieldAccountNumber Field = "accountNumber"
	FieldUsername      Field = "username"
	FieldPassword      Field = "password"
	FieldAmount        Field = "amount"
	FieldCurrency      Field = "currency"
	FieldProvider      Field = "provider"
	FieldPayeeAccount  Field = "payeeAccount"
	FieldSwiftCode     Field = "swiftCode"
)

var (
	fullNamePattern      = regexp.MustCompile(`^[a-zA-Z\s]{2,50}$`)
	idNumberPattern      = regexp.MustCompile(`^\d{13}$`)
	accountNumberPattern = regexp.MustCompile(`^\d{10,16}$`)
	usernamePattern      = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)
	passwordPattern      = regexp.MustCompile(`^[A-Za-z\d@$!%*?&]{8,}$`)
	amountPattern        = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)
	swiftCodePattern     = regexp.MustCompile(`^\d{8,11}$`)
)

// validators is the complete field-kind to predicate mapping. Every Field
// constant has an entry here.
var validators = map[Field]func(string) bool{
	FieldFullName:      fullNamePattern.MatchString,
	FieldIDNumber:      idNumberPattern.MatchString,
	FieldAccountNumber: accountNumberPattern.MatchString,
	FieldUsername:      usernamePattern.MatchString,
	FieldPassword:      validPassword,
	FieldAmount:        validAmount,
	FieldCurrency:      func(v string) bool { return v == models.Currency },
	FieldProvider:      func(v string) bool { return v == models.Provider },
	FieldPayeeAccount:  accountNumberPattern.MatchString,
	FieldSwiftCode:     swiftCodePattern.MatchString,
}

var messages = map[Field]string{
	FieldFullName:      "must be 2-50 letters and spaces",
	FieldIDNumber:      "must be exactly 13 digits",
	FieldAccountNumber: "must be 10-16 digits",
	FieldUsername:      "must be 3-20 letters, digits or underscores",
	FieldPassword:      "must be at least 8 characters with upper, lower, digit and special character",
	FieldAmount:        "must be a positive amount with at most 2 decimal places",
	FieldCurrency:      "unsupported currency",
	FieldProvider:      "unsupported provider",
	FieldPayeeAccount:  "must be 10-16 digits",
	FieldSwiftCode:     "must be 8-11 digits",
}

// checkOrder fixes the order violations are reported in.
var checkOrder = []Field{
	FieldFullName, FieldIDNumber, FieldAccountNumber, FieldUsername,
	FieldPassword, FieldAmount, FieldCurrency, FieldProvider,
	FieldPayeeAccount, FieldSwiftCode,
}

// Sanitize trims surrounding whitespace and HTML-escapes the value before it
// reaches pattern matching or storage. Passwords are trimmed but never
// escaped: they are hashed, not rendered.
func Sanitize(f Field, value string) string {
	value = strings.TrimSpace(value)
	if f == FieldPassword {
		return value
	}
	return html.EscapeString(value)
}

// Check reports whether a sanitized value satisfies the field's grammar.
func Check(f Field, value string) bool {
	validate, ok := validators[f]
	if !ok {
		return false
	}
	return validate(value)
}

// CheckAll validates every given field and returns the complete set of
// violations, not just the first.
func CheckAll(fields map[Field]string) []apperr.FieldError {
	var violations []apperr.FieldError
	for _, f := range checkOrder {
		value, ok := fields[f]
		if !ok {
			continue
		}
		if !Check(f, value) {
			violations = append(violations, apperr.FieldError{
				Field:   string(f),
				Message: messages[f],
			})
		}
	}
	return violations
}

// validPassword requires length, a restricted character set, and at least
// one lowercase letter, uppercase letter, digit and special character.
func validPassword(v string) bool {
	if !passwordPattern.MatchString(v) {
		return false
	}
	var lower, upper, digit, special bool
	for _, c := range v {
		switch {
		case c >= 'a' && c <= 'z':
			lower = true
		case c >= 'A' && c <= 'Z':
			upper = true
		case c >= '0' && c <= '9':
			digit = true
		case strings.ContainsRune("@$!%*?&", c):
			special = true
		}
	}
	return lower && upper && digit && special
}

// validAmount is a double gate: the string must match the decimal grammar,
// and the parsed value must be strictly positive. The grammar alone admits
// zero, so the positivity check is a separate mandatory step.
func validAmount(v string) bool {
	if !amountPattern.MatchString(v) {
		return false
	}
	amount, err := decimal.NewFromString(v)
	if err != nil {
		return false
	}
	return amount.IsPositive()
}

// Amount parses a validated amount string. Callers must have passed the
// value through Check(FieldAmount, ...) first.
func Amount(v string) (decimal.Decimal, error) {
	return decimal.NewFromString(v)
}
