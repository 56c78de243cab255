// Package validate provides shared validation functions.
package validate

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/hay-kot/criterio"

	"github.com/hay-kot/bookreview/internal/core/review"
)

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 6

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Field names used in field errors. They match the form variable names so
// the UI can place messages next to the right input.
const (
	FieldName     = "name"
	FieldEmail    = "email"
	FieldPassword = "password"
	FieldTitle    = "title"
	FieldURL      = "url"
	FieldReviewer = "reviewer"
	FieldBody     = "body"
)

// Required validates a value is non-empty after trimming whitespace.
func Required(value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("is required")
	}
	return nil
}

// Email validates an address has the user@host.tld shape.
func Email(value string) error {
	if err := Required(value); err != nil {
		return err
	}
	if !emailPattern.MatchString(strings.TrimSpace(value)) {
		return fmt.Errorf("must be a valid email address")
	}
	return nil
}

// Password validates a registration password.
func Password(value string) error {
	if value == "" {
		return fmt.Errorf("is required")
	}
	if utf8.RuneCountInString(value) < MinPasswordLength {
		return fmt.Errorf("must be at least %d characters", MinPasswordLength)
	}
	return nil
}

// HTTPURL validates an absolute http or https URL.
func HTTPURL(value string) error {
	if err := Required(value); err != nil {
		return err
	}
	u, err := url.Parse(strings.TrimSpace(value))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("must be an http(s) URL")
	}
	return nil
}

// Credentials validates sign-in input. Sign-in only checks presence; the
// server decides whether the credentials are good.
func Credentials(email, password string) error {
	var errs criterio.FieldErrorsBuilder
	if err := Required(email); err != nil {
		errs = errs.Append(FieldEmail, err)
	}
	if password == "" {
		errs = errs.Append(FieldPassword, fmt.Errorf("is required"))
	}
	return errs.ToError()
}

// Registration validates new-account input.
func Registration(name, email, password string) error {
	var errs criterio.FieldErrorsBuilder
	if err := Required(name); err != nil {
		errs = errs.Append(FieldName, err)
	}
	if err := Email(email); err != nil {
		errs = errs.Append(FieldEmail, err)
	}
	if err := Password(password); err != nil {
		errs = errs.Append(FieldPassword, err)
	}
	return errs.ToError()
}

// Draft validates a review before submission.
func Draft(d review.Draft) error {
	var errs criterio.FieldErrorsBuilder
	if err := Required(d.Title); err != nil {
		errs = errs.Append(FieldTitle, err)
	}
	if err := HTTPURL(d.URL); err != nil {
		errs = errs.Append(FieldURL, err)
	}
	if err := Required(d.ReviewerName); err != nil {
		errs = errs.Append(FieldReviewer, err)
	}
	if err := Required(d.BodyText); err != nil {
		errs = errs.Append(FieldBody, err)
	}
	return errs.ToError()
}

// IsValidationError reports whether err carries field errors.
func IsValidationError(err error) bool {
	var fieldErrs criterio.FieldErrors
	return errors.As(err, &fieldErrs)
}

// FieldMessages flattens field errors into a field -> message map. The first
// error for a field wins. Returns nil when err has no field errors.
func FieldMessages(err error) map[string]string {
	var fieldErrs criterio.FieldErrors
	if !errors.As(err, &fieldErrs) {
		return nil
	}

	out := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		if _, ok := out[fe.Field]; ok {
			continue
		}
		out[fe.Field] = fe.Err.Error()
	}
	return out
}
